// Command autoplay plays one memory match game against a running server
// through the REST API. It has perfect memory: every card it has seen is
// remembered, so it never flips a known pair wrong twice.
//
//	autoplay --url http://localhost:8080 --name Robot
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
)

var errStuck = errors.New("no card can be flipped")

// Outcome summarizes a finished game
type Outcome struct {
	Phase  engine.Phase
	Moves  int
	Result *leaderboard.Entry
}

// Bot drives one session to completion
type Bot struct {
	client *Client
	player *Player
	name   string
	delay  time.Duration
	poll   time.Duration
}

func NewBot(client *Client, name string, delay time.Duration) *Bot {
	return &Bot{
		client: client,
		player: NewPlayer(),
		name:   name,
		delay:  delay,
		poll:   50 * time.Millisecond,
	}
}

// Play starts a game, flips until it ends and submits the name on a win
func (b *Bot) Play(ctx context.Context) (*Outcome, error) {
	started, err := b.client.Start()
	if err != nil {
		return nil, err
	}
	state := started.GameState
	log.Info().
		Str("session", b.client.SessionID()).
		Int("cards", len(state.Cards)).
		Int("seconds", state.TimeRemaining).
		Msg(started.Message)

	for state.Phase == engine.PhasePlaying {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if state.Resolving {
			time.Sleep(b.poll)
			if state, err = b.client.State(); err != nil {
				return nil, err
			}
			continue
		}

		index := b.player.Next(state)
		if index < 0 {
			return nil, errStuck
		}

		result, err := b.client.Flip(index)
		if err != nil {
			return nil, err
		}
		state = result.GameState
		b.player.Observe(state)

		log.Debug().
			Int("index", index).
			Bool("applied", result.Applied).
			Int("moves", state.Moves).
			Int("known", b.player.Known()).
			Msg(result.Message)

		if b.delay > 0 {
			time.Sleep(b.delay)
		}
	}

	outcome := &Outcome{Phase: state.Phase, Moves: state.Moves}
	if state.Phase != engine.PhaseAwaitingName {
		return outcome, nil
	}

	named, err := b.client.SubmitName(b.name)
	if err != nil {
		return nil, err
	}
	outcome.Phase = named.GameState.Phase
	outcome.Result = named.Result
	return outcome, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "play one game against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "session", Usage: "play an existing session instead of creating one"},
			&cli.StringFlag{Name: "name", Value: "Autoplay", Usage: "name submitted on a win"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between flips"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log every flip"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client := NewClient(cmd.String("url"))
	if id := cmd.String("session"); id != "" {
		client.UseSession(id)
	} else {
		info, err := client.CreateSession()
		if err != nil {
			return err
		}
		log.Info().Str("session", info.ID).Str("config", info.ConfigName).Msg("session created")
	}

	outcome, err := NewBot(client, cmd.String("name"), cmd.Duration("delay")).Play(ctx)
	if err != nil {
		return err
	}

	switch {
	case outcome.Result != nil:
		fmt.Fprintf(cmd.Root().Writer, "🎉 Won: %s in %ds with %d moves\n",
			outcome.Result.Name, outcome.Result.ElapsedSeconds, outcome.Result.Moves)
	case outcome.Phase == engine.PhaseLost:
		fmt.Fprintf(cmd.Root().Writer, "⏰ Time ran out after %d moves\n", outcome.Moves)
	default:
		fmt.Fprintf(cmd.Root().Writer, "Game ended in phase %s after %d moves\n", outcome.Phase, outcome.Moves)
	}
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
}
