// Package memory provides an in-process LocalStore. Nothing survives the
// process; it backs tests and the `memory` store setting.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// Store keeps hyperlinks in a map guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	hyperlinks  map[string]domain.Hyperlink // ID -> Hyperlink
	initialized bool
}

// New creates an empty store. Init must still be called before use.
func New() *Store {
	return &Store{}
}

// Init prepares the map. Calling it again keeps the existing records.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.hyperlinks = make(map[string]domain.Hyperlink)
	s.initialized = true
	return nil
}

// GetAll returns a copy of every record, tombstones included.
func (s *Store) GetAll(ctx context.Context) (map[string]domain.Hyperlink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, domain.ErrStoreNotInitialized
	}

	out := make(map[string]domain.Hyperlink, len(s.hyperlinks))
	for id, h := range s.hyperlinks {
		out[id] = h
	}
	return out, nil
}

// Upsert adds or replaces a single record.
func (s *Store) Upsert(ctx context.Context, h domain.Hyperlink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return domain.ErrStoreNotInitialized
	}
	s.hyperlinks[h.ID] = h
	return nil
}

// Delete removes a record from the store.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return domain.ErrStoreNotInitialized
	}
	delete(s.hyperlinks, id)
	return nil
}

// Wipe drops every record.
func (s *Store) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return domain.ErrStoreNotInitialized
	}
	s.hyperlinks = make(map[string]domain.Hyperlink)
	return nil
}

// Count returns the number of records, tombstones included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.hyperlinks)
}

func (s *Store) Close() error { return nil }
