package forms

import "context"

// Repo persists forms against a given table and layout. Implementations
// report a statement that does not fit the deployed table as ErrSchemaMismatch.
type Repo interface {
	Upsert(ctx context.Context, table string, layout Layout, sub Submission) (Record, error)
	InsertGeneric(ctx context.Context, table string, rec GenericRecord) (GenericRecord, error)
	Find(ctx context.Context, table string, layout Layout, identifier string) (Record, error)
	FindGeneric(ctx context.Context, table, identifier string) (GenericRecord, error)
}
