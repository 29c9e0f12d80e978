package apikeys

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	keys map[string]APIKey
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{keys: map[string]APIKey{}}
}

func (r *MemoryRepo) Insert(ctx context.Context, k APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[k.ID] = k
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]APIKey, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) FindByHash(ctx context.Context, hash string) (APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.keys {
		if k.TokenHash == hash {
			return k, nil
		}
	}
	return APIKey{}, ErrNotFound
}

func (r *MemoryRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return ErrNotFound
	}
	if !k.Revoked {
		k.Revoked = true
		k.RevokedAt = &at
	}
	r.keys[id] = k
	return nil
}
