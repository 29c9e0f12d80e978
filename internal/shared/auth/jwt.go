package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// SupabaseClaims is the subset of a Supabase Auth access token we read.
type SupabaseClaims struct {
	Email       string         `json:"email,omitempty"`
	Role        string         `json:"role,omitempty"`
	AppMetadata map[string]any `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

// AppRole returns the application role, preferring app_metadata.role over the
// Postgres role claim ("authenticated", "service_role").
func (c SupabaseClaims) AppRole() string {
	if c.AppMetadata != nil {
		if role, ok := c.AppMetadata["role"].(string); ok && strings.TrimSpace(role) != "" {
			return strings.TrimSpace(role)
		}
	}
	return strings.TrimSpace(c.Role)
}

// VerifySupabaseJWT verifies an HS256 token signed with the project JWT secret.
func VerifySupabaseJWT(token string, secret []byte) (SupabaseClaims, error) {
	if len(secret) == 0 {
		return SupabaseClaims{}, errMissingSecret
	}

	var claims SupabaseClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return SupabaseClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return SupabaseClaims{}, ErrInvalidToken
	}
	return claims, nil
}
