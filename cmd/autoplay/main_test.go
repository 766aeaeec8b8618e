package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/memory-match-game/api"
	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
	"github.com/wricardo/memory-match-game/game/service"
	"github.com/wricardo/memory-match-game/game/session"
	"github.com/wricardo/memory-match-game/storage/memory"
	"github.com/wricardo/memory-match-game/transport/websocket"
)

type stubConfigs struct {
	config *engine.GameConfig
}

func (s stubConfigs) GetDefault() *engine.GameConfig { return s.config }

func maskedState(cards ...engine.Card) *engine.GameState {
	state := &engine.GameState{Phase: engine.PhasePlaying, Flipped: []int{}}
	for i, c := range cards {
		c.ID = i
		if c.IsFlipped && !c.IsMatched {
			state.Flipped = append(state.Flipped, i)
		}
		if !c.IsFlipped && !c.IsMatched {
			c.ImageID = -1
			c.Image = ""
		}
		state.Cards = append(state.Cards, c)
	}
	return state
}

func TestPlayer_Next(t *testing.T) {
	hidden := engine.Card{}
	up := func(image string) engine.Card { return engine.Card{Image: image, IsFlipped: true} }
	matched := func(image string) engine.Card { return engine.Card{Image: image, IsFlipped: true, IsMatched: true} }

	t.Run("explores first unseen card", func(t *testing.T) {
		p := NewPlayer()
		state := maskedState(matched("sun"), matched("sun"), hidden, hidden)
		p.Observe(state)
		if got := p.Next(state); got != 2 {
			t.Errorf("Expected 2, got %d", got)
		}
	})

	t.Run("flips remembered partner", func(t *testing.T) {
		p := NewPlayer()
		p.Observe(maskedState(hidden, up("moon"), hidden, hidden))

		state := maskedState(hidden, hidden, hidden, up("moon"))
		p.Observe(state)
		if got := p.Next(state); got != 1 {
			t.Errorf("Expected remembered partner 1, got %d", got)
		}
	})

	t.Run("completes known pair before exploring", func(t *testing.T) {
		p := NewPlayer()
		p.Observe(maskedState(hidden, hidden, up("star"), up("moon")))
		p.Observe(maskedState(hidden, up("star"), hidden, hidden))

		state := maskedState(hidden, hidden, hidden, hidden)
		if got := p.Next(state); got != 1 {
			t.Errorf("Expected first card of the known pair, got %d", got)
		}
	})

	t.Run("second flip explores when partner unknown", func(t *testing.T) {
		p := NewPlayer()
		state := maskedState(up("sun"), hidden, hidden, hidden)
		p.Observe(state)
		if got := p.Next(state); got != 1 {
			t.Errorf("Expected 1, got %d", got)
		}
	})

	t.Run("waits while resolving", func(t *testing.T) {
		p := NewPlayer()
		state := maskedState(up("sun"), up("moon"), hidden, hidden)
		state.Resolving = true
		if got := p.Next(state); got != -1 {
			t.Errorf("Expected -1, got %d", got)
		}
	})

	t.Run("nothing to do outside playing", func(t *testing.T) {
		p := NewPlayer()
		state := maskedState(hidden, hidden)
		state.Phase = engine.PhaseStart
		if got := p.Next(state); got != -1 {
			t.Errorf("Expected -1, got %d", got)
		}
	})
}

func newTestServer(t *testing.T, config *engine.GameConfig) (*httptest.Server, *leaderboard.Book) {
	t.Helper()
	ctx := context.Background()

	book := leaderboard.Open(ctx, leaderboard.NewKVStore(memory.New(), leaderboard.DefaultKey))
	sessions := session.NewManager(session.Options{Recorder: book})
	t.Cleanup(sessions.Close)

	gameService := service.NewGameService(sessions, stubConfigs{config}, book)
	server := httptest.NewServer(api.NewServer(gameService, websocket.NewHub()))
	t.Cleanup(server.Close)
	return server, book
}

func TestBot_PlaysToVictory(t *testing.T) {
	config := &engine.GameConfig{
		Name:            "quick",
		Rows:            3,
		Cols:            4,
		DurationSeconds: 600,
		MismatchDelayMs: 20,
		Images:          []string{"sun", "moon", "star", "cloud", "rain", "snow"},
	}
	server, book := newTestServer(t, config)

	client := NewClient(server.URL + "/")
	if _, err := client.CreateSession(); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	bot := NewBot(client, "  Robot  ", 0)
	bot.poll = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome, err := bot.Play(ctx)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if outcome.Phase != engine.PhaseWon {
		t.Fatalf("Expected won, got %s", outcome.Phase)
	}
	if outcome.Result == nil || outcome.Result.Name != "Robot" {
		t.Fatalf("Expected recorded result for Robot, got %+v", outcome.Result)
	}
	// 6 pairs need at least 6 moves; perfect memory needs at most 12
	if outcome.Moves < 6 || outcome.Moves > 12 {
		t.Errorf("Expected 6 to 12 moves, got %d", outcome.Moves)
	}

	entries := book.Entries()
	if len(entries) != 1 || entries[0].Moves != outcome.Moves {
		t.Errorf("Expected leaderboard entry with %d moves, got %v", outcome.Moves, entries)
	}
}

func TestClient_Errors(t *testing.T) {
	server, _ := newTestServer(t, engine.DefaultGameConfig())

	client := NewClient(server.URL)
	client.UseSession("missing")

	_, err := client.Start()
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected 404 error, got %v", err)
	}

	down := NewClient("http://127.0.0.1:1")
	if _, err := down.CreateSession(); err == nil {
		t.Error("Expected connection error")
	}
}

func TestRun_UnknownSession(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out

	err := cmd.Run(context.Background(), []string{"autoplay", "--url", ts.URL, "--session", "nope"})
	if err == nil {
		t.Error("Expected error for unknown session")
	}
}
