// Package storage defines the small key-value capability the game persists
// its high-score board through, and picks a backend by name.
//
// Backends live in subpackages:
//   - file:   one JSON document per key inside a directory
//   - bolt:   a single bbolt bucket
//   - sqlite: a single kv table in a SQLite database
//   - memory: a map, for tests and throwaway servers
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a minimal byte-oriented key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources.
	Close() error
}
