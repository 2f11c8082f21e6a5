package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines session data storage.
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Delete removes the session and reports whether one was stored.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
