package file

import (
	"context"
	"errors"
	"testing"

	"github.com/wricardo/memory-match-game/storage"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "highScores")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := store.Set(ctx, "highScores", []byte(`[{"name":"Ana"}]`)); err != nil {
			t.Fatalf("Failed to set value: %v", err)
		}
		got, err := store.Get(ctx, "highScores")
		if err != nil {
			t.Fatalf("Failed to get value: %v", err)
		}
		if string(got) != `[{"name":"Ana"}]` {
			t.Errorf("Unexpected value %q", got)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := store.Set(ctx, "highScores", []byte("[]")); err != nil {
			t.Fatalf("Failed to overwrite value: %v", err)
		}
		got, err := store.Get(ctx, "highScores")
		if err != nil {
			t.Fatalf("Failed to get value: %v", err)
		}
		if string(got) != "[]" {
			t.Errorf("Expected overwritten value, got %q", got)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		if err := store.Set(ctx, "  ", []byte("x")); err == nil {
			t.Error("Expected error for empty key")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := store.Get(cctx, "highScores"); err == nil {
			t.Error("Expected error for cancelled context")
		}
	})
}

func TestStore_Keys(t *testing.T) {
	ctx := context.Background()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	for _, key := range []string{"../escape", `a\b`, "..", "."} {
		if err := store.Set(ctx, key, []byte("x")); err == nil {
			t.Errorf("Expected error for key %q", key)
		}
	}

	if _, err := store.Get(ctx, "highScores"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound before the first write, got %v", err)
	}
	if err := store.Set(ctx, "highScores", []byte("[]")); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	if _, err := store.Get(ctx, "highScores"); err != nil {
		t.Errorf("Document should exist after write: %v", err)
	}
}

func TestOpen_EmptyDir(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Error("Expected error for empty directory")
	}
}
