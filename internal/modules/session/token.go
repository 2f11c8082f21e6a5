package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Claim names used by the inventory API when it issues tokens. The API is an
// ASP.NET service, so the long claim type URIs show up next to the short ones.
const (
	claimNetName       = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimNetNameID     = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimNetRole       = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimUniqueName    = "unique_name"
	claimName          = "name"
	claimNameID        = "nameid"
	claimRole          = "role"
	claimSubject       = "sub"
	claimExpiresAtUnix = "exp"
)

// Claims is the identity carried in an API token.
type Claims struct {
	UserID    string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// DecodeToken reads the identity out of a token without checking its
// signature; the API validates tokens on every call.
func DecodeToken(token string, now time.Time) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	c := &Claims{
		UserID:   firstString(mc, claimNameID, claimNetNameID, claimSubject),
		Username: firstString(mc, claimUniqueName, claimName, claimNetName, claimSubject),
	}
	if c.Username == "" {
		return nil, fmt.Errorf("%w: token has no username", ErrInvalidSession)
	}

	role, err := roleClaim(mc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	c.Role = role

	if exp, ok := expiry(mc); ok {
		c.ExpiresAt = exp
		if !now.Before(exp) {
			return nil, fmt.Errorf("%w: token expired at %s", ErrInvalidSession, exp.Format(time.RFC3339))
		}
	}
	return c, nil
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := mc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// roleClaim accepts either a single role or an array of roles; the first
// known role wins.
func roleClaim(mc jwt.MapClaims) (Role, error) {
	for _, k := range []string{claimRole, claimNetRole} {
		switch v := mc[k].(type) {
		case string:
			return ParseRole(v)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					if r, err := ParseRole(s); err == nil {
						return r, nil
					}
				}
			}
			return 0, fmt.Errorf("no known role in %v", v)
		}
	}
	return 0, fmt.Errorf("token has no role")
}

func expiry(mc jwt.MapClaims) (time.Time, bool) {
	switch exp := mc[claimExpiresAtUnix].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case json.Number:
		n, err := exp.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	}
	return time.Time{}, false
}
