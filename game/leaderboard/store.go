package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wricardo/memory-match-game/storage"
)

// DefaultKey is the storage key the board is kept under.
const DefaultKey = "highScores"

// ErrNoLedger is returned by Load when nothing has been saved yet.
var ErrNoLedger = errors.New("no saved ledger")

// Store loads and saves the whole board.
type Store interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, ledger Ledger) error
}

// KVStore keeps the board as a JSON array under a single key.
type KVStore struct {
	kv  storage.Store
	key string
}

// NewKVStore creates a Store on top of kv. An empty key selects DefaultKey.
func NewKVStore(kv storage.Store, key string) *KVStore {
	if key == "" {
		key = DefaultKey
	}
	return &KVStore{kv: kv, key: key}
}

// Key returns the storage key in use.
func (s *KVStore) Key() string { return s.key }

// Load reads the board. Entries that fail validation are dropped and the
// rest are re-ranked, so a hand-edited or older document still loads.
func (s *KVStore) Load(ctx context.Context) (Ledger, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoLedger
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}

	ledger := make(Ledger, 0, len(raw))
	for _, e := range raw {
		if e.Valid() {
			ledger = append(ledger, e)
		}
	}
	return ledger.normalize(), nil
}

// Save writes the board.
func (s *KVStore) Save(ctx context.Context, ledger Ledger) error {
	if ledger == nil {
		ledger = Ledger{}
	}
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}
