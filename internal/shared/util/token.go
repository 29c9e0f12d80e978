package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Token is a freshly generated bearer secret. Only Hash and Prefix are stored.
type Token struct {
	Plain  string
	Hash   string
	Prefix string
}

// NewToken reads n random bytes from read (crypto/rand when nil) and returns
// the hex token with its storage hash and a display prefix of prefixLen chars.
func NewToken(n, prefixLen int, read func([]byte) (int, error)) (Token, error) {
	if read == nil {
		read = rand.Read
	}
	buf := make([]byte, n)
	if _, err := read(buf); err != nil {
		return Token{}, fmt.Errorf("generate token: %w", err)
	}
	plain := hex.EncodeToString(buf)
	if prefixLen > len(plain) {
		prefixLen = len(plain)
	}
	return Token{Plain: plain, Hash: HashToken(plain), Prefix: plain[:prefixLen]}, nil
}

// HashToken is the hex SHA-256 under which tokens are stored and looked up.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenMatches compares token against a stored hash in constant time.
func TokenMatches(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}
