package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
)

// ErrSessionClosed is returned for commands sent to a closed session
var ErrSessionClosed = errors.New("session closed")

// Notifier receives a snapshot after every applied command or clock event
type Notifier interface {
	Publish(sessionID string, state *engine.GameState, signals []engine.Signal)
}

// Recorder ranks finished games
type Recorder interface {
	Record(ctx context.Context, entry leaderboard.Entry) leaderboard.Ledger
}

type result struct {
	transition engine.Transition
	err        error
}

type request struct {
	apply func(*engine.GameEngine) (engine.Transition, error)
	reply chan result // nil for clock events
	event string
}

// Session is one running game. A single goroutine owns the engine; player
// commands and clock events are queued on the same inbox and applied one
// at a time, so a tick can never interleave with a flip.
type Session struct {
	ID        string
	Config    *engine.GameConfig
	CreatedAt time.Time

	engine    *engine.GameEngine
	scheduler Scheduler
	notifier  Notifier
	recorder  Recorder

	inbox     chan request
	done      chan struct{}
	closeOnce sync.Once

	// owned by the run loop
	ticker   Timer
	resolver Timer

	mu             sync.RWMutex
	lastAccessedAt time.Time
}

func newSession(id string, eng *engine.GameEngine, opts Options) *Session {
	now := time.Now()
	s := &Session{
		ID:             id,
		Config:         eng.GetConfig(),
		CreatedAt:      now,
		engine:         eng,
		scheduler:      opts.Scheduler,
		notifier:       opts.Notifier,
		recorder:       opts.Recorder,
		inbox:          make(chan request),
		done:           make(chan struct{}),
		lastAccessedAt: now,
	}
	if s.scheduler == nil {
		s.scheduler = ClockScheduler{}
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer s.stopTimers()

	for {
		select {
		case req := <-s.inbox:
			t, err := req.apply(s.engine)
			if err != nil {
				log.Error().Err(err).Str("session", s.ID).Msg("command failed")
			} else {
				s.handle(req.event, t)
			}
			if req.reply != nil {
				req.reply <- result{transition: t, err: err}
			}

		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(event string, t engine.Transition) {
	if !t.Applied {
		if event != "" {
			log.Debug().Str("session", s.ID).Str("event", event).
				Uint64("generation", s.engine.GetGeneration()).Msg("dropped stale event")
		}
		return
	}

	for _, e := range t.Effects {
		switch e.Kind {
		case engine.EffectStartTimer:
			s.stopTicker()
			gen := e.Generation
			s.ticker = s.scheduler.Every(time.Second, func() {
				s.post("tick", func(eng *engine.GameEngine) (engine.Transition, error) {
					return eng.Tick(gen), nil
				})
			})

		case engine.EffectStopTimer:
			s.stopTicker()

		case engine.EffectScheduleResolve:
			s.stopResolver()
			gen, ids := e.Generation, e.CardIDs
			s.resolver = s.scheduler.AfterFunc(e.Delay, func() {
				s.post("resolve", func(eng *engine.GameEngine) (engine.Transition, error) {
					return eng.ResolveMismatch(gen, ids), nil
				})
			})

		case engine.EffectCancelResolve:
			s.stopResolver()

		case engine.EffectRecordResult:
			if s.recorder != nil && e.Result != nil {
				s.recorder.Record(context.Background(), *e.Result)
				log.Info().Str("session", s.ID).Str("name", e.Result.Name).
					Int("elapsed_seconds", e.Result.ElapsedSeconds).Int("moves", e.Result.Moves).
					Msg("result recorded")
			}
		}
	}

	if s.notifier != nil {
		s.notifier.Publish(s.ID, t.State.Masked(), t.Signals)
	}
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Session) stopResolver() {
	if s.resolver != nil {
		s.resolver.Stop()
		s.resolver = nil
	}
}

func (s *Session) stopTimers() {
	s.stopTicker()
	s.stopResolver()
}

// post queues a clock event. It gives up once the session is closed.
func (s *Session) post(event string, apply func(*engine.GameEngine) (engine.Transition, error)) {
	select {
	case s.inbox <- request{apply: apply, event: event}:
	case <-s.done:
	}
}

func (s *Session) do(ctx context.Context, apply func(*engine.GameEngine) (engine.Transition, error)) (engine.Transition, error) {
	req := request{apply: apply, reply: make(chan result, 1)}

	select {
	case s.inbox <- req:
	case <-s.done:
		return engine.Transition{}, ErrSessionClosed
	case <-ctx.Done():
		return engine.Transition{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.transition, r.err
	case <-s.done:
		return engine.Transition{}, ErrSessionClosed
	case <-ctx.Done():
		return engine.Transition{}, ctx.Err()
	}
}

// Start deals a new board and starts the countdown
func (s *Session) Start(ctx context.Context) (engine.Transition, error) {
	return s.do(ctx, func(eng *engine.GameEngine) (engine.Transition, error) {
		return eng.Start()
	})
}

// Flip turns the card at index face up
func (s *Session) Flip(ctx context.Context, index int) (engine.Transition, error) {
	return s.do(ctx, func(eng *engine.GameEngine) (engine.Transition, error) {
		return eng.FlipCard(index), nil
	})
}

// SubmitName records the finished game under name
func (s *Session) SubmitName(ctx context.Context, name string) (engine.Transition, error) {
	return s.do(ctx, func(eng *engine.GameEngine) (engine.Transition, error) {
		return eng.SubmitName(name), nil
	})
}

// Reset abandons the current game
func (s *Session) Reset(ctx context.Context) (engine.Transition, error) {
	return s.do(ctx, func(eng *engine.GameEngine) (engine.Transition, error) {
		return eng.Reset(), nil
	})
}

// State returns the current unmasked state. It is queued behind any
// pending command or clock event.
func (s *Session) State(ctx context.Context) (*engine.GameState, error) {
	t, err := s.do(ctx, func(eng *engine.GameEngine) (engine.Transition, error) {
		return engine.Transition{State: eng.GetState()}, nil
	})
	if err != nil {
		return nil, err
	}
	return t.State, nil
}

// Close stops the run loop and every pending timer
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Touch marks the session as used now
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastAccessedAt = time.Now()
	s.mu.Unlock()
}

// LastAccessedAt returns when the session was last used
func (s *Session) LastAccessedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessedAt
}
