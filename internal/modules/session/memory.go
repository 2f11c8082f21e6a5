package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

// NewMemoryRepository creates a process-local session repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{sessions: make(map[uuid.UUID]Session)}
}

func (r *memoryRepository) Save(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memoryRepository) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok, nil
}
