package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	ErrInvalidConfig     = errors.New("invalid game configuration")
	ErrImagePoolTooSmall = errors.New("image pool too small")
)

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Rows            int      `json:"rows"`
	Cols            int      `json:"cols"`
	DurationSeconds int      `json:"duration_seconds"`
	MismatchDelayMs int      `json:"mismatch_delay_ms,omitempty"`
	Images          []string `json:"images"`
}

// Cells is the number of cards on the board
func (c *GameConfig) Cells() int {
	return c.Rows * c.Cols
}

// PairsNeeded is the number of distinct images dealt
func (c *GameConfig) PairsNeeded() int {
	return c.Cells() / 2
}

// MismatchDelay is how long a wrong pair stays face up
func (c *GameConfig) MismatchDelay() time.Duration {
	if c.MismatchDelayMs <= 0 {
		return DefaultMismatchDelayMs * time.Millisecond
	}
	return time.Duration(c.MismatchDelayMs) * time.Millisecond
}

// DefaultImages is the built-in image pool
var DefaultImages = []string{
	"apple", "banana", "cherry", "grape", "kiwi", "lemon",
	"mango", "orange", "peach", "pear", "plum", "strawberry",
}

// DefaultGameConfig returns the standard 5x4 board with a three minute timer
func DefaultGameConfig() *GameConfig {
	images := make([]string, len(DefaultImages))
	copy(images, DefaultImages)
	return &GameConfig{
		Name:            "classic",
		Description:     "Find all ten pairs before the clock runs out",
		Rows:            DefaultRows,
		Cols:            DefaultCols,
		DurationSeconds: DefaultDurationSeconds,
		MismatchDelayMs: DefaultMismatchDelayMs,
		Images:          images,
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	// Validate grid
	if config.Rows < 1 || config.Rows > MaxGridSide {
		return fmt.Errorf("%w: rows must be between 1 and %d, got %d", ErrInvalidConfig, MaxGridSide, config.Rows)
	}
	if config.Cols < 1 || config.Cols > MaxGridSide {
		return fmt.Errorf("%w: cols must be between 1 and %d, got %d", ErrInvalidConfig, MaxGridSide, config.Cols)
	}
	if config.Cells()%2 != 0 {
		return fmt.Errorf("%w: rows x cols must be even, got %dx%d", ErrInvalidConfig, config.Rows, config.Cols)
	}

	// Validate timing
	if config.DurationSeconds < 1 || config.DurationSeconds > MaxDurationSeconds {
		return fmt.Errorf("%w: duration_seconds must be between 1 and %d, got %d",
			ErrInvalidConfig, MaxDurationSeconds, config.DurationSeconds)
	}
	if config.MismatchDelayMs < 0 || config.MismatchDelayMs > MaxMismatchDelayMs {
		return fmt.Errorf("%w: mismatch_delay_ms must be between 0 and %d, got %d",
			ErrInvalidConfig, MaxMismatchDelayMs, config.MismatchDelayMs)
	}

	// Validate image pool
	if len(config.Images) < config.PairsNeeded() {
		return fmt.Errorf("%w: need %d images for a %dx%d board, have %d",
			ErrImagePoolTooSmall, config.PairsNeeded(), config.Rows, config.Cols, len(config.Images))
	}
	seen := make(map[string]int, len(config.Images))
	for i, img := range config.Images {
		if img == "" {
			return fmt.Errorf("%w: images[%d] is empty", ErrInvalidConfig, i)
		}
		if j, dup := seen[img]; dup {
			return fmt.Errorf("%w: images[%d] duplicates images[%d] (%q)", ErrInvalidConfig, i, j, img)
		}
		seen[img] = i
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
