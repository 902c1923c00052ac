package buffer

import (
	"context"
	"sync"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// MemoryStore is an in-process fragment store for single-worker deployments
// and tests. Multi-worker deployments need the Redis store.
type MemoryStore struct {
	mu      sync.Mutex
	buffers map[string][]Fragment
}

// NewMemoryStore creates an in-memory fragment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buffers: make(map[string][]Fragment)}
}

// Push appends a fragment; first is true when it opened a new buffer.
func (s *MemoryStore) Push(_ context.Context, key domain.SessionKey, f Fragment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key.String()
	s.buffers[k] = append(s.buffers[k], f)
	return len(s.buffers[k]) == 1, nil
}

// Drain removes and returns all buffered fragments.
func (s *MemoryStore) Drain(_ context.Context, key domain.SessionKey) ([]Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key.String()
	fragments := s.buffers[k]
	delete(s.buffers, k)
	return fragments, nil
}
