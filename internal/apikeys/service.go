package apikeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeway-backend/internal/shared/auth"
	"lifeway-backend/internal/shared/util"
)

const (
	tokenBytes  = 32
	prefixChars = 8
)

type Service struct {
	Repo Repo
	Now  func() time.Time
	// Rand fills token bytes; crypto/rand when nil.
	Rand func([]byte) (int, error)
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create issues a new key. The plain token is only available in the result.
func (s *Service) Create(ctx context.Context, name, role string) (Created, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Created{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = auth.RoleAdmin
	}

	token, err := util.NewToken(tokenBytes, prefixChars, s.Rand)
	if err != nil {
		return Created{}, err
	}

	k := APIKey{
		ID:          uuid.NewString(),
		Name:        name,
		TokenPrefix: token.Prefix,
		TokenHash:   token.Hash,
		Role:        role,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.Insert(ctx, k); err != nil {
		return Created{}, err
	}
	return Created{APIKey: k, Token: token.Plain}, nil
}

func (s *Service) List(ctx context.Context) ([]APIKey, error) {
	out, err := s.Repo.List(ctx)
	if out == nil && err == nil {
		out = []APIKey{}
	}
	return out, err
}

func (s *Service) Revoke(ctx context.Context, id string) error {
	return s.Repo.Revoke(ctx, id, s.now())
}

// LookupToken resolves a bearer token to the role of its unrevoked key.
func (s *Service) LookupToken(ctx context.Context, token string) (string, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false, nil
	}
	k, err := s.Repo.FindByHash(ctx, util.HashToken(token))
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if k.Revoked || !util.TokenMatches(token, k.TokenHash) {
		return "", false, nil
	}
	return k.Role, true, nil
}

var _ auth.KeyLookup = (*Service)(nil)
