package hyperlinkdb

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

// MemoryStore keeps hyperlinks in process memory. Used by tests and the
// `memory` server store.
type MemoryStore struct {
	mu         sync.RWMutex
	hyperlinks map[string]domain.Hyperlink
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hyperlinks: make(map[string]domain.Hyperlink)}
}

func (s *MemoryStore) List(ctx context.Context, owner string) ([]domain.Hyperlink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Hyperlink, 0)
	for _, h := range s.hyperlinks {
		if h.Owner == owner {
			out = append(out, h)
		}
	}
	domain.SortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.hyperlinks[h.ID]; ok {
		h.CreatedOn = existing.CreatedOn
	}
	s.hyperlinks[h.ID] = h
	return h, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.hyperlinks, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
