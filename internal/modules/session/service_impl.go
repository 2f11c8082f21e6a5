package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// Option customises a session service.
type Option func(*service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new session service.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Login(ctx context.Context, consoleID uuid.UUID, token string) (*Session, error) {
	claims, err := DecodeToken(token, s.now())
	if err != nil {
		s.logger.Warn("rejecting session token", "console_id", consoleID, "error", err)
		if logoutErr := s.Logout(ctx, consoleID); logoutErr != nil {
			s.logger.Error("logout after invalid token", "console_id", consoleID, "error", logoutErr)
		}
		return nil, err
	}

	sess := &Session{
		ID:        consoleID,
		Token:     token,
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("session started", "console_id", consoleID, "username", sess.Username, "role", sess.Role.String())
	s.publish(Event{Kind: LoggedIn, ConsoleID: consoleID, Session: sess})
	return sess, nil
}

func (s *service) Logout(ctx context.Context, consoleID uuid.UUID) error {
	existed, err := s.repo.Delete(ctx, consoleID)
	if err != nil {
		return err
	}
	if existed {
		s.logger.Info("session ended", "console_id", consoleID)
		s.publish(Event{Kind: LoggedOut, ConsoleID: consoleID})
	}
	return nil
}

func (s *service) Current(ctx context.Context, consoleID uuid.UUID) (*Session, bool) {
	sess, err := s.repo.Get(ctx, consoleID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("reading session", "console_id", consoleID, "error", err)
		}
		return nil, false
	}
	if sess.Expired(s.now()) {
		if err := s.Logout(ctx, consoleID); err != nil {
			s.logger.Error("logout of expired session", "console_id", consoleID, "error", err)
		}
		return nil, false
	}
	return sess, true
}

func (s *service) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *service) publish(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
