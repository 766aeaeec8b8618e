package leaderboard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Book is the process-wide high-score board. The in-memory ledger is the
// source of truth; the Store is written after every record on a best-effort
// basis.
type Book struct {
	mu     sync.RWMutex
	ledger Ledger
	store  Store
}

// Open loads the board from store. A missing or unreadable board is logged
// and replaced by an empty one; Open never fails.
func Open(ctx context.Context, store Store) *Book {
	b := &Book{store: store, ledger: Ledger{}}
	if store == nil {
		return b
	}

	ledger, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoLedger):
		log.Info().Msg("no saved high scores, starting empty")
	case err != nil:
		log.Warn().Err(err).Msg("failed to load high scores, starting empty")
	default:
		b.ledger = ledger
		log.Info().Int("entries", len(ledger)).Msg("loaded high scores")
	}
	return b
}

// Entries returns a copy of the current board.
func (b *Book) Entries() Ledger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Clone()
}

// Record ranks e into the board and persists the result. The new board is
// returned even when persistence fails. Writes are serialized so the store
// never ends up holding an older board than memory.
func (b *Book) Record(ctx context.Context, e Entry) Ledger {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.ledger.Record(e)
	b.ledger = next

	if b.store != nil {
		if err := b.store.Save(ctx, next); err != nil {
			log.Error().Err(err).Str("name", e.Name).Msg("failed to persist high scores")
		}
	}
	return next.Clone()
}
