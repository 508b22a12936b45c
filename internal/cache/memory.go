package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Used by tests and by
// deployments that don't want a persistent cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Snapshot)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return snap, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = snap
	return nil
}

func (s *MemoryStore) Close() error { return nil }
