package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/wricardo/memory-match-game/game/engine"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager holds the game configuration every new session is created with
type Manager struct {
	path   string
	config *engine.GameConfig
	mu     sync.RWMutex
}

// NewManager loads the configuration at path. An empty path uses the
// built-in default board.
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload reads the configuration file again
func (m *Manager) Reload() error {
	config, err := Load(m.path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
	return nil
}

// GetDefault returns the active configuration. Callers must not modify it.
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Path returns the file the configuration was loaded from, if any
func (m *Manager) Path() string {
	return m.path
}

// Load reads and validates a game configuration file. An empty path
// returns engine.DefaultGameConfig.
func Load(path string) (*engine.GameConfig, error) {
	if path == "" {
		return engine.DefaultGameConfig(), nil
	}

	config, err := engine.LoadGameConfig(path)
	switch {
	case err == nil:
		return config, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case errors.Is(err, engine.ErrInvalidConfig), errors.Is(err, engine.ErrImagePoolTooSmall):
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	default:
		return nil, err
	}
}

// Save validates config and writes it to path as indented JSON
func Save(path string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
