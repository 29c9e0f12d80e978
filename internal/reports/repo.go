package reports

import "context"

// Repo persists reports. A table that does not fit yields ErrSchemaMismatch.
type Repo interface {
	Insert(ctx context.Context, table string, r Report) error
	List(ctx context.Context, table, email, toolType string, limit int) ([]Report, error)
}
