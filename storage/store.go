// Package storage provides the persistent key-value store abstraction used by
// the SDK to cache users, states and course data between page loads.
//
// The Store interface deliberately mirrors a browser localStorage contract:
// string keys, opaque JSON values, last write wins. Implementations must be
// safe for concurrent use.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Get when the key has no stored value.
var ErrKeyNotFound = errors.New("key not found")

// Store is a persistent key-value store holding JSON-encoded values.
type Store interface {
	// Get retrieves the value stored under key. Returns ErrKeyNotFound when
	// the key has no value.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-memory Store. It is the default backend and the one
// used in tests; values live for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get retrieves a value.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a value.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

// Delete removes a value.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
