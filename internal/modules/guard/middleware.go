package guard

import (
	"context"
	"net/http"

	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// SessionSource resolves the session behind a request.
type SessionSource interface {
	SessionFor(r *http.Request) (*session.Session, bool)
}

type ctxKey struct{}

// WithSession stores s in ctx for downstream handlers.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session the guard admitted.
func FromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*session.Session)
	return s, ok && s != nil
}

// Middleware evaluates Decide on every request; nothing is cached between
// requests, so a logout takes effect on the next navigation.
func Middleware(src SessionSource, req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := src.SessionFor(r)
			if !ok {
				s = nil
			}
			d := Decide(s, req)
			if !d.Allowed {
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// Home redirects the console root to the landing view for the session.
func Home(src SessionSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := src.SessionFor(r)
		if !ok {
			s = nil
		}
		http.Redirect(w, r, Landing(s), http.StatusSeeOther)
	}
}
