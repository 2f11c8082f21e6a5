// Package web holds the pieces every console view shares: the browser
// cookie, flash notifications and page rendering.
package web

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

const (
	cookieName   = "stockdesk"
	consoleIDKey = "console_id"
)

// Severity of a flash notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

var severities = []Severity{SeveritySuccess, SeverityError, SeverityInfo}

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Severity Severity
	Message  string
}

// NewCookieStore builds the signed cookie store that carries the console id
// and flashes.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Console ties a browser cookie to its session in the session store.
type Console struct {
	cookies  sessions.Store
	sessions session.Service
	logger   *slog.Logger
}

func NewConsole(cookies sessions.Store, svc session.Service, logger *slog.Logger) *Console {
	return &Console{cookies: cookies, sessions: svc, logger: logger}
}

func (c *Console) Sessions() session.Service { return c.sessions }

func (c *Console) cookie(r *http.Request) *sessions.Session {
	s, err := c.cookies.Get(r, cookieName)
	if err != nil {
		// A cookie signed with an old secret: start over with a fresh one.
		c.logger.Debug("discarding unreadable console cookie", "error", err)
	}
	return s
}

func (c *Console) peekID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := c.cookie(r).Values[consoleIDKey].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Rotate issues a fresh console id into the cookie and returns it with the
// previous id, if the browser had one. Sign-in and sign-out rotate, so a
// cookie obtained before either never carries the new identity.
func (c *Console) Rotate(w http.ResponseWriter, r *http.Request) (id, prev uuid.UUID, err error) {
	prev, _ = c.peekID(r)
	id = uuid.New()
	s := c.cookie(r)
	s.Values[consoleIDKey] = id.String()
	if err := s.Save(r, w); err != nil {
		return uuid.Nil, prev, err
	}
	return id, prev, nil
}

// SessionFor implements guard.SessionSource.
func (c *Console) SessionFor(r *http.Request) (*session.Session, bool) {
	id, ok := c.peekID(r)
	if !ok {
		return nil, false
	}
	return c.sessions.Current(r.Context(), id)
}

// Flash queues a notification for the next page render.
func (c *Console) Flash(w http.ResponseWriter, r *http.Request, sev Severity, msg string) {
	s := c.cookie(r)
	s.AddFlash(msg, string(sev))
	if err := s.Save(r, w); err != nil {
		c.logger.Error("saving flash", "error", err)
	}
}

// TakeFlashes returns and clears the pending notifications.
func (c *Console) TakeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := c.cookie(r)
	var out []Flash
	for _, sev := range severities {
		for _, v := range s.Flashes(string(sev)) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Severity: sev, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := s.Save(r, w); err != nil {
			c.logger.Error("clearing flashes", "error", err)
		}
	}
	return out
}
