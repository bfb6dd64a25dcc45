package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/caseflow-app/client-aggregator/internal/common"
)

// MemoryStore is an in-process SessionStore for tests and single-run
// imports where durability across restarts is not needed.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[uuid.UUID][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, id uuid.UUID, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(state))
	copy(cp, state)
	s.states[id] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := make([]byte, len(state))
	copy(cp, state)
	return cp, nil
}

func (s *MemoryStore) List(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids, nil
}
