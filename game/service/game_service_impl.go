package service

import (
	"context"
	"fmt"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
	"github.com/wricardo/memory-match-game/game/session"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	board    Leaderboard
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, board Leaderboard) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		board:    board,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context) (*SessionInfo, error) {
	sess, err := s.sessions.Create("", s.configs.GetDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.info(ctx, sess)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(ctx, sess)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		info, err := s.info(ctx, sess)
		if err != nil {
			// Closed between List and State
			continue
		}
		result = append(result, info)
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// Start deals a new board and starts the clock
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "start", func(sess *session.Session) (engine.Transition, error) {
		return sess.Start(ctx)
	})
}

// Flip turns one card face up
func (s *gameServiceImpl) Flip(ctx context.Context, sessionID string, index int) (*CommandResult, error) {
	return s.command(ctx, sessionID, "flip", func(sess *session.Session) (engine.Transition, error) {
		return sess.Flip(ctx, index)
	})
}

// SubmitName records a finished game under name
func (s *gameServiceImpl) SubmitName(ctx context.Context, sessionID, name string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "name", func(sess *session.Session) (engine.Transition, error) {
		return sess.SubmitName(ctx, name)
	})
}

// Reset abandons the current game
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "reset", func(sess *session.Session) (engine.Transition, error) {
		return sess.Reset(ctx)
	})
}

// GetGameState returns the masked state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	state, err := sess.State(ctx)
	if err != nil {
		return nil, err
	}
	return state.Masked(), nil
}

// GetLeaderboard returns the current high scores
func (s *gameServiceImpl) GetLeaderboard(ctx context.Context) (leaderboard.Ledger, error) {
	if s.board == nil {
		return leaderboard.Ledger{}, nil
	}
	return s.board.Entries(), nil
}

// GetConfig returns the configuration new sessions use
func (s *gameServiceImpl) GetConfig(ctx context.Context) (*engine.GameConfig, error) {
	return s.configs.GetDefault(), nil
}

func (s *gameServiceImpl) session(sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) info(ctx context.Context, sess *session.Session) (*SessionInfo, error) {
	state, err := sess.State(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.Config.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GameState:      state.Masked(),
		GameConfig:     sess.Config,
	}, nil
}

func (s *gameServiceImpl) command(ctx context.Context, sessionID, name string, run func(*session.Session) (engine.Transition, error)) (*CommandResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	t, err := run(sess)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	result := &CommandResult{
		Applied:   t.Applied,
		GameState: t.State.Masked(),
		Signals:   t.Signals,
		Message:   describe(name, t),
	}
	if e, ok := t.Effect(engine.EffectRecordResult); ok {
		result.Result = e.Result
	}
	return result, nil
}

// describe turns a transition into a short human-readable message
func describe(command string, t engine.Transition) string {
	st := t.State
	if !t.Applied {
		switch command {
		case "start":
			return "A game is already in progress"
		case "flip":
			switch {
			case st.Phase != engine.PhasePlaying:
				return "No game in progress"
			case st.Resolving:
				return "Wait for the wrong pair to turn back over"
			default:
				return "That card cannot be flipped"
			}
		case "name":
			if st.Phase != engine.PhaseAwaitingName {
				return "No finished game is waiting for a name"
			}
			return "Name must not be empty"
		}
		return "Command ignored"
	}

	switch {
	case t.HasSignal(engine.SignalWin):
		return fmt.Sprintf("All pairs found in %d moves and %d seconds! Enter your name", st.Moves, st.ElapsedSeconds())
	case t.HasSignal(engine.SignalCorrectPair):
		return fmt.Sprintf("Pair found! %d of %d", st.MatchedPairs(), len(st.Cards)/2)
	case t.HasSignal(engine.SignalWrongPair):
		return "Not a match"
	case t.HasSignal(engine.SignalLoss):
		return "Time's up!"
	}

	switch command {
	case "start":
		return fmt.Sprintf("Game started: find %d pairs in %d seconds", len(st.Cards)/2, st.TimeRemaining)
	case "name":
		return "Result recorded"
	case "reset":
		return "Game reset"
	}
	return "Card flipped"
}
