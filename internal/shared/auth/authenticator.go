package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
)

// RoleAdmin is the only role admin routes accept.
const RoleAdmin = "admin"

var ErrUnauthorized = errors.New("unauthorized")

// Principal identifies who passed the bearer check.
type Principal struct {
	Subject string
	Role    string
	Method  string
}

// KeyLookup resolves an API key token to its role.
type KeyLookup interface {
	LookupToken(ctx context.Context, token string) (role string, ok bool, err error)
}

// Authenticator checks bearer tokens for admin routes. A token is accepted when
// it equals the configured secret, maps to an unrevoked admin API key, or is a
// Supabase JWT carrying the admin role.
type Authenticator struct {
	Secret    string
	JWTSecret []byte
	Keys      KeyLookup
	// Open lets every request through; only set for dev without credentials.
	Open bool
}

// Configured reports whether any credential source is available.
func (a *Authenticator) Configured() bool {
	return a != nil && (a.Secret != "" || len(a.JWTSecret) > 0 || a.Keys != nil)
}

// Authenticate validates token and returns the admin principal.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Principal, error) {
	if a == nil {
		return Principal{}, ErrUnauthorized
	}
	if a.Open {
		return Principal{Subject: "dev", Role: RoleAdmin, Method: "open"}, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	if a.Secret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.Secret)) == 1 {
		return Principal{Subject: "secret", Role: RoleAdmin, Method: "secret"}, nil
	}

	if a.Keys != nil {
		role, ok, err := a.Keys.LookupToken(ctx, token)
		if err != nil {
			return Principal{}, err
		}
		if ok {
			if role != RoleAdmin {
				return Principal{}, ErrUnauthorized
			}
			return Principal{Subject: "api_key", Role: role, Method: "api_key"}, nil
		}
	}

	if len(a.JWTSecret) > 0 && strings.Count(token, ".") == 2 {
		claims, err := VerifySupabaseJWT(token, a.JWTSecret)
		if err != nil {
			return Principal{}, ErrUnauthorized
		}
		if claims.AppRole() != RoleAdmin {
			return Principal{}, ErrUnauthorized
		}
		subject := claims.Subject
		if claims.Email != "" {
			subject = claims.Email
		}
		return Principal{Subject: subject, Role: RoleAdmin, Method: "jwt"}, nil
	}

	return Principal{}, ErrUnauthorized
}
