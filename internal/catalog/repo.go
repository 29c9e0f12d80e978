package catalog

import "context"

// Repo persists catalog rows.
type Repo interface {
	List(ctx context.Context, t Table, q Query) ([]Row, error)
	Get(ctx context.Context, t Table, id string) (Row, error)
	Update(ctx context.Context, t Table, id string, fields map[string]any) (Row, error)
	Insert(ctx context.Context, t Table, rows []Row) error
}
