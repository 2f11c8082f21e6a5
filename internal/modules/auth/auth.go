package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// Service defines the interface for sign-in, sign-up and sign-out.
type Service interface {
	Login(ctx context.Context, consoleID uuid.UUID, username, password string) (*session.Session, error)
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context, consoleID uuid.UUID) error
}

// API is the part of the gateway the auth service calls.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) error
}
