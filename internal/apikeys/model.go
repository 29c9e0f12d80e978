package apikeys

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("api key not found")
	ErrInvalidInput = errors.New("invalid api key input")
)

// APIKey is a stored key. Only the hash and a short prefix of the token are kept.
type APIKey struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	TokenPrefix string     `json:"token_prefix"`
	TokenHash   string     `json:"-"`
	Role        string     `json:"role"`
	Revoked     bool       `json:"revoked"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Masked renders the token as its prefix followed by asterisks.
func (k APIKey) Masked() string {
	return k.TokenPrefix + "********"
}

// Created is returned once, right after creation, with the plain token.
type Created struct {
	APIKey
	Token string `json:"token"`
}
