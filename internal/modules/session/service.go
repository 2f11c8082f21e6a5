package session

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the session store used by every console view.
type Service interface {
	// Login decodes the token and stores it as the console's session.
	// ErrInvalidSession leaves the console logged out.
	Login(ctx context.Context, consoleID uuid.UUID, token string) (*Session, error)
	// Logout is idempotent.
	Logout(ctx context.Context, consoleID uuid.UUID) error
	Current(ctx context.Context, consoleID uuid.UUID) (*Session, bool)
	// Subscribe registers fn for lifecycle events and returns its cancel func.
	Subscribe(fn func(Event)) (unsubscribe func())
}
