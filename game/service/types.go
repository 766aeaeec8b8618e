package service

import (
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult contains the result of a player command
type CommandResult struct {
	// Applied is false when the command was not valid in the current state.
	// Such commands are ignored and leave the game unchanged.
	Applied   bool               `json:"applied"`
	GameState *engine.GameState  `json:"game_state"`
	Signals   []engine.Signal    `json:"signals,omitempty"`
	Message   string             `json:"message"`
	Result    *leaderboard.Entry `json:"result,omitempty"`
}
