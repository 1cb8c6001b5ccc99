// Package store owns the canonical catalog: an in-memory map of
// deterministic key → versioned entry, snapshotted to disk once per run.
// Entries are never deleted, only superseded by a higher version.
package store

import (
	"sort"
	"sync"

	"github.com/sandgraal/retrodex-data/internal/catalog"
)

// Store is the in-memory versioned catalog. One run mutates it at a time;
// a single lock is the whole concurrency story (merges are CPU-bound and
// fast relative to fetch I/O, so per-key locking buys nothing).
type Store struct {
	entries map[string]catalog.Entry
	mu      sync.RWMutex
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]catalog.Entry)}
}

// Get returns the entry for a key, if present.
func (s *Store) Get(key string) (catalog.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Reconcile folds a merged record into the store under the given key:
//
//   - absent key: insert with version 1
//   - present and deep-equal (including source provenance): untouched
//   - present and different by any field: replace record, version + 1
//
// Returns the resulting entry and whether the store changed.
func (s *Store) Reconcile(key string, merged catalog.Record) (catalog.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[key]
	if !ok {
		entry := catalog.Entry{Key: key, Version: 1, Record: merged}
		s.entries[key] = entry
		return entry, true
	}
	if existing.Record.Equal(merged) {
		return existing, false
	}

	entry := catalog.Entry{Key: key, Version: existing.Version + 1, Record: merged}
	s.entries[key] = entry
	return entry, true
}

// Entries returns a copy of the full key → entry map.
func (s *Store) Entries() map[string]catalog.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]catalog.Entry, len(s.entries))
	for key, entry := range s.entries {
		out[key] = entry
	}
	return out
}

// Keys returns all keys in sorted order, for deterministic iteration.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of catalog entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// replaceAll swaps in a full entry map. Used by snapshot hydration.
func (s *Store) replaceAll(entries map[string]catalog.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}
