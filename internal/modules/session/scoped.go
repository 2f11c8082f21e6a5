package session

import (
	"sync"

	"github.com/google/uuid"
)

// Scoped keeps one value per console session and drops it whenever that
// console logs in or out, so view state never outlives the identity it was
// built for.
type Scoped[T any] struct {
	mu      sync.Mutex
	values  map[uuid.UUID]T
	newFn   func() T
	cleanup func(T)
}

// NewScoped subscribes to svc. cleanup may be nil.
func NewScoped[T any](svc Service, newFn func() T, cleanup func(T)) *Scoped[T] {
	s := &Scoped[T]{
		values:  make(map[uuid.UUID]T),
		newFn:   newFn,
		cleanup: cleanup,
	}
	svc.Subscribe(func(ev Event) { s.Drop(ev.ConsoleID) })
	return s
}

// Get returns the console's value, creating it on first use.
func (s *Scoped[T]) Get(consoleID uuid.UUID) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[consoleID]
	if !ok {
		v = s.newFn()
		s.values[consoleID] = v
	}
	return v
}

func (s *Scoped[T]) Drop(consoleID uuid.UUID) {
	s.mu.Lock()
	v, ok := s.values[consoleID]
	delete(s.values, consoleID)
	s.mu.Unlock()
	if ok && s.cleanup != nil {
		s.cleanup(v)
	}
}

func (s *Scoped[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
