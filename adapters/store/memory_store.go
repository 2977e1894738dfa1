package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
)

type memoryEntry struct {
	record    core.NonceRecord
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the NonceStore interface,
// used in tests and single-node development.
type MemoryStore struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory nonce store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Put stores a nonce record with an expiry
func (s *MemoryStore) Put(ctx context.Context, nonce string, record core.NonceRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	s.entries[nonce] = memoryEntry{record: record, expiresAt: expiresAt}

	// Start a cleanup goroutine
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		// Only delete if the entry hasn't been replaced with a later expiry
		if entry, exists := s.entries[nonce]; exists && !entry.expiresAt.After(expiresAt) {
			delete(s.entries, nonce)
		}
	}()

	return nil
}

// Get retrieves a nonce record; expired entries read as absent even if the
// cleanup goroutine has not run yet.
func (s *MemoryStore) Get(ctx context.Context, nonce string) (core.NonceRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[nonce]
	if !exists || time.Now().After(entry.expiresAt) {
		return core.NonceRecord{}, false, nil
	}

	return entry.record, true, nil
}

// Delete removes a nonce record and reports whether it was present. The
// check and removal happen under one lock, so concurrent consumers see
// exactly one true.
func (s *MemoryStore) Delete(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[nonce]
	if !exists || time.Now().After(entry.expiresAt) {
		return false, nil
	}
	delete(s.entries, nonce)

	return true, nil
}

var _ ports.NonceStore = (*MemoryStore)(nil)
