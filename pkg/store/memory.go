package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps definitions in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	defs map[string]Definition
	now  func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{defs: make(map[string]Definition), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.defs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemoryStore) Put(ctx context.Context, def *Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	def.UpdatedAt = now
	if old, ok := s.defs[def.ID]; ok {
		def.CreatedAt = old.CreatedAt
	} else if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	d := *def
	d.Data = slices.Clone(def.Data)
	s.defs[def.ID] = d
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.defs[id]; !ok {
		return ErrNotFound
	}
	delete(s.defs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	out := make([]Definition, 0, len(s.defs))
	for _, d := range s.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Definition) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
