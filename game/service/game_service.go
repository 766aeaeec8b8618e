package service

import (
	"context"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
	"github.com/wricardo/memory-match-game/game/session"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Start(ctx context.Context, sessionID string) (*CommandResult, error)
	Flip(ctx context.Context, sessionID string, index int) (*CommandResult, error)
	SubmitName(ctx context.Context, sessionID, name string) (*CommandResult, error)
	Reset(ctx context.Context, sessionID string) (*CommandResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetLeaderboard(ctx context.Context) (leaderboard.Ledger, error)

	// Configuration
	GetConfig(ctx context.Context) (*engine.GameConfig, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*session.Session, error)
	Get(id string) (*session.Session, error)
	List() []*session.Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager provides the configuration new sessions are created with
type ConfigManager interface {
	GetDefault() *engine.GameConfig
}

// Leaderboard exposes the ranked results
type Leaderboard interface {
	Entries() leaderboard.Ledger
}
