package util

import (
	"errors"
	"strings"
)

var ErrInvalidKey = errors.New("invalid key")

// SanitizeEmailKey turns an email into a filesystem- and object-key-safe name:
// lower-cased, with anything outside [a-z0-9@._-] replaced by "_".
func SanitizeEmailKey(email string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(email))
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidKey
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '@', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "", ErrInvalidKey
	}
	return out, nil
}
