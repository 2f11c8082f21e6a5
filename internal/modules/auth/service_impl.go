package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// ErrMissingCredentials is returned when the username or password is blank.
var ErrMissingCredentials = errors.New("auth: username and password are required")

type service struct {
	api      API
	sessions session.Service
}

// NewService creates a new auth service.
func NewService(api API, sessions session.Service) Service {
	return &service{api: api, sessions: sessions}
}

func (s *service) Login(ctx context.Context, consoleID uuid.UUID, username, password string) (*session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.sessions.Login(ctx, consoleID, token)
}

func (s *service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	return s.api.Register(ctx, username, password)
}

func (s *service) Logout(ctx context.Context, consoleID uuid.UUID) error {
	return s.sessions.Logout(ctx, consoleID)
}
