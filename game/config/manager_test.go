package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:            "Test Config",
		Description:     "Test configuration",
		Rows:            2,
		Cols:            4,
		DurationSeconds: 60,
		MismatchDelayMs: 800,
		Images:          []string{"a", "b", "c", "d", "e"},
	}
}

func writeConfigFile(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewManager(t *testing.T) {
	dir := t.TempDir()

	t.Run("default without a path", func(t *testing.T) {
		manager, err := NewManager("")
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		config := manager.GetDefault()
		if config.Rows != engine.DefaultRows || config.Cols != engine.DefaultCols {
			t.Errorf("Expected default board, got %dx%d", config.Rows, config.Cols)
		}
		if config.DurationSeconds != engine.DefaultDurationSeconds {
			t.Errorf("Expected default duration, got %d", config.DurationSeconds)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := writeConfigFile(t, dir, "game.json", createValidConfig())
		manager, err := NewManager(path)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Test Config" {
			t.Errorf("Expected loaded config, got %s", manager.GetDefault().Name)
		}
		if manager.Path() != path {
			t.Errorf("Expected path %s, got %s", path, manager.Path())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewManager(filepath.Join(dir, "missing.json"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("image pool too small", func(t *testing.T) {
		config := createValidConfig()
		config.Images = config.Images[:2]
		path := writeConfigFile(t, dir, "small.json", config)

		_, err := NewManager(path)
		if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, engine.ErrImagePoolTooSmall) {
			t.Errorf("Expected ErrInvalidConfig wrapping ErrImagePoolTooSmall, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		os.WriteFile(path, []byte("{"), 0644)
		_, err := NewManager(path)
		if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected parse error, got %v", err)
		}
		if errors.Is(err, ErrInvalidConfig) || errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Parse error should not match a config sentinel, got %v", err)
		}
	})
}

func TestManager_Reload(t *testing.T) {
	dir := t.TempDir()
	config := createValidConfig()
	path := writeConfigFile(t, dir, "game.json", config)

	manager, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	config.DurationSeconds = 90
	writeConfigFile(t, dir, "game.json", config)
	if err := manager.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if manager.GetDefault().DurationSeconds != 90 {
		t.Errorf("Expected reloaded duration 90, got %d", manager.GetDefault().DurationSeconds)
	}

	// A broken file keeps the previous config
	os.WriteFile(path, []byte("nope"), 0644)
	if err := manager.Reload(); err == nil {
		t.Error("Expected reload error")
	}
	if manager.GetDefault().DurationSeconds != 90 {
		t.Error("Failed reload replaced the active config")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "game.json")
		if err := Save(path, createValidConfig()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Name != "Test Config" || loaded.MismatchDelayMs != 800 || len(loaded.Images) != 5 {
			t.Errorf("Unexpected config %+v", loaded)
		}
	})

	t.Run("invalid config is not written", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		config := createValidConfig()
		config.Rows = 3
		config.Cols = 3
		if err := Save(path, config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("Invalid config was written")
		}
	})
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"HOST", "PORT", "CONFIG_FILE", "STORE", "STORE_PATH", "LEDGER_KEY", "LOG_LEVEL", "SESSION_TTL"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		s, err := LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if s.Addr() != "localhost:8080" {
			t.Errorf("Expected localhost:8080, got %s", s.Addr())
		}
		if s.Store != "file" || s.StorePath != "data" || s.LedgerKey != "highScores" {
			t.Errorf("Unexpected store settings %+v", s)
		}
		if s.SessionTTL != 24*time.Hour {
			t.Errorf("Expected 24h TTL, got %v", s.SessionTTL)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("STORE", "bolt")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("NGROK_ENABLED", "true")

		s, err := LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings failed: %v", err)
		}
		if s.Port != "9090" || s.Store != "bolt" || s.SessionTTL != 30*time.Minute || !s.NgrokEnabled {
			t.Errorf("Unexpected settings %+v", s)
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("STORE", "postgres")
		if _, err := LoadSettings(); err == nil {
			t.Error("Expected error for unknown store")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		if _, err := LoadSettings(); err == nil {
			t.Error("Expected error for bad duration")
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	loaded, err := LoadDotEnv(filepath.Join(dir, ".env"))
	if err != nil || loaded {
		t.Errorf("Expected missing .env to be ignored, got loaded=%v err=%v", loaded, err)
	}

	path := filepath.Join(dir, "test.env")
	os.WriteFile(path, []byte("MEMORYGAME_TEST_VALUE=from-file\n"), 0644)
	t.Setenv("MEMORYGAME_TEST_VALUE", "")
	os.Unsetenv("MEMORYGAME_TEST_VALUE")

	loaded, err = LoadDotEnv(path)
	if err != nil || !loaded {
		t.Fatalf("Expected .env to load, got loaded=%v err=%v", loaded, err)
	}
	if os.Getenv("MEMORYGAME_TEST_VALUE") != "from-file" {
		t.Errorf("Expected value from file, got %q", os.Getenv("MEMORYGAME_TEST_VALUE"))
	}
}
