package apikeys

import (
	"context"
	"time"
)

type Repo interface {
	Insert(ctx context.Context, k APIKey) error
	List(ctx context.Context) ([]APIKey, error)
	FindByHash(ctx context.Context, hash string) (APIKey, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}
