package slot

import (
	"context"
	"maps"
	"sync"
)

// Store holds the accepted slot values of a single session.
type Store interface {
	Get(ctx context.Context, name string) (any, bool, error)
	Set(ctx context.Context, name string, value any) error
	Delete(ctx context.Context, name string) error
	Clear(ctx context.Context) error
	Snapshot(ctx context.Context) (map[string]any, error)
}

type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]any{}}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (any, bool, error) {
	s.mu.RLock()
	val, ok := s.m[name]
	s.mu.RUnlock()
	return val, ok, nil
}

// Set stores value under name. Storing nil is the same as Delete.
func (s *MemoryStore) Set(ctx context.Context, name string, value any) error {
	s.mu.Lock()
	if value == nil {
		delete(s.m, name)
	} else {
		s.m[name] = value
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	delete(s.m, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	clear(s.m)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) (map[string]any, error) {
	s.mu.RLock()
	out := maps.Clone(s.m)
	s.mu.RUnlock()
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
