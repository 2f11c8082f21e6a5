package guard

import (
	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// Console paths the guard redirects to.
const (
	LoginPath             = "/login"
	AdminDashboardPath    = "/admin/dashboard"
	SupplierDashboardPath = "/supplier/dashboard"
)

// Requirement is what a protected view asks of the session: a specific role,
// or just any signed-in user.
type Requirement struct {
	anyRole bool
	role    session.Role
}

func RequireRole(role session.Role) Requirement { return Requirement{role: role} }

func RequireAuthenticated() Requirement { return Requirement{anyRole: true} }

func (r Requirement) String() string {
	if r.anyRole {
		return "authenticated"
	}
	return r.role.String()
}

// Decision is the outcome of a guard check. Location is set only when the
// request must be redirected.
type Decision struct {
	Allowed  bool
	Location string
}

var (
	Allow         = Decision{Allowed: true}
	RedirectLogin = Decision{Location: LoginPath}
)

// Decide never sends a signed-in user with the wrong role to an error page;
// they go back to login like anyone else.
func Decide(s *session.Session, req Requirement) Decision {
	if s == nil {
		return RedirectLogin
	}
	if req.anyRole || s.Role == req.role {
		return Allow
	}
	return RedirectLogin
}

// Landing picks the default view for the console root.
func Landing(s *session.Session) string {
	if s == nil {
		return LoginPath
	}
	switch s.Role {
	case session.RoleAdmin:
		return AdminDashboardPath
	case session.RoleSupplier:
		return SupplierDashboardPath
	default:
		return LoginPath
	}
}
