package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSession is returned when a token cannot be turned into a session.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNotFound is returned by repositories when no session is stored for an id.
	ErrNotFound = errors.New("session not found")
)

// Role is the closed set of roles the console knows how to serve.
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleSupplier
)

// ParseRole maps the role string carried in API tokens.
func ParseRole(s string) (Role, error) {
	switch s {
	case "Admin":
		return RoleAdmin, nil
	case "Supplier":
		return RoleSupplier, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleSupplier:
		return "Supplier"
	default:
		return "Unknown"
	}
}

// Session is the signed-in identity of one console (browser) session.
// ID is the console session id carried in the browser cookie.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"-"`
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token behind the session has lapsed.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// EventKind distinguishes session lifecycle notifications.
type EventKind int

const (
	LoggedIn EventKind = iota + 1
	LoggedOut
)

// Event is delivered to subscribers after a session changes.
type Event struct {
	Kind      EventKind
	ConsoleID uuid.UUID
	Session   *Session
}
