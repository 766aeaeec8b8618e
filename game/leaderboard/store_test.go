package leaderboard

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wricardo/memory-match-game/storage"
	"github.com/wricardo/memory-match-game/storage/memory"
)

// failingKV fails every call with err.
type failingKV struct {
	err error
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, error) { return nil, f.err }
func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	return f.err
}
func (f *failingKV) Close() error { return nil }

var _ storage.Store = (*failingKV)(nil)

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(memory.New(), "")

	if store.Key() != DefaultKey {
		t.Errorf("Expected default key %q, got %q", DefaultKey, store.Key())
	}

	var ledger Ledger
	for _, e := range []Entry{
		{Name: "Ana", ElapsedSeconds: 42, Moves: 10},
		{Name: "Bo", ElapsedSeconds: 40, Moves: 14},
		{Name: "Cy", ElapsedSeconds: 42, Moves: 9},
	} {
		ledger = ledger.Record(e)
	}

	if err := store.Save(ctx, ledger); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, ledger) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", loaded, ledger)
	}
}

func TestKVStore_Layout(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	store := NewKVStore(kv, "scores")

	if err := store.Save(ctx, Ledger{{Name: "Ana", ElapsedSeconds: 42, Moves: 10}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	raw, err := kv.Get(ctx, "scores")
	if err != nil {
		t.Fatalf("Expected document under custom key: %v", err)
	}
	want := `[{"name":"Ana","elapsedSeconds":42,"moves":10}]`
	if string(raw) != want {
		t.Errorf("Unexpected layout:\n got %s\nwant %s", raw, want)
	}

	if err := store.Save(ctx, nil); err != nil {
		t.Fatalf("Save of nil ledger failed: %v", err)
	}
	raw, _ = kv.Get(ctx, "scores")
	if string(raw) != "[]" {
		t.Errorf("Expected empty array for nil ledger, got %s", raw)
	}
}

func TestKVStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		_, err := NewKVStore(memory.New(), "").Load(ctx)
		if !errors.Is(err, ErrNoLedger) {
			t.Errorf("Expected ErrNoLedger, got %v", err)
		}
	})

	t.Run("corrupt", func(t *testing.T) {
		kv := memory.New()
		_ = kv.Set(ctx, DefaultKey, []byte("{not json"))
		if _, err := NewKVStore(kv, "").Load(ctx); err == nil {
			t.Error("Expected decode error")
		}
	})

	t.Run("unsorted and oversized document is repaired", func(t *testing.T) {
		kv := memory.New()
		_ = kv.Set(ctx, DefaultKey, []byte(`[
			{"name":"f","elapsedSeconds":60,"moves":1},
			{"name":"e","elapsedSeconds":50,"moves":1},
			{"name":"","elapsedSeconds":1,"moves":1},
			{"name":"d","elapsedSeconds":40,"moves":1},
			{"name":"neg","elapsedSeconds":-4,"moves":1},
			{"name":"c","elapsedSeconds":30,"moves":1},
			{"name":"b","elapsedSeconds":20,"moves":1},
			{"name":"a","elapsedSeconds":10,"moves":1}
		]`))
		ledger, err := NewKVStore(kv, "").Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(ledger) != MaxEntries || !ledger.Sorted() {
			t.Fatalf("Expected a sorted board of %d, got %+v", MaxEntries, ledger)
		}
		if ledger[0].Name != "a" || ledger[4].Name != "e" {
			t.Errorf("Unexpected board %+v", ledger)
		}
	})

	t.Run("read error", func(t *testing.T) {
		_, err := NewKVStore(&failingKV{err: errors.New("disk gone")}, "").Load(ctx)
		if err == nil || errors.Is(err, ErrNoLedger) {
			t.Errorf("Expected read error, got %v", err)
		}
	})
}
