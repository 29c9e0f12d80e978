package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lifeway-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres. Table and column names come only
// from Layout values and configured table names, and are quoted.
type PGRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func (r *PGRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// Upsert inserts or updates the row keyed by the layout's conflict column.
func (r *PGRepo) Upsert(ctx context.Context, table string, layout Layout, sub Submission) (Record, error) {
	payload, err := json.Marshal(nonNil(sub.FormData))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tbl := pgx.Identifier{table}.Sanitize()
	idCol := pgx.Identifier{layout.IdentifierColumn}.Sanitize()
	payloadCol := pgx.Identifier{layout.PayloadColumn}.Sanitize()
	conflictCol := pgx.Identifier{layout.ConflictColumn}.Sanitize()

	query := fmt.Sprintf(`
INSERT INTO %[1]s (%[2]s, %[3]s, completed, qualified, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (%[4]s) DO UPDATE SET
    %[3]s = EXCLUDED.%[3]s,
    completed = EXCLUDED.completed,
    qualified = EXCLUDED.qualified,
    updated_at = EXCLUDED.updated_at
RETURNING id, %[2]s, %[3]s, completed, qualified, created_at, updated_at`, tbl, idCol, payloadCol, conflictCol)

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, sub.Identifier, string(payload), sub.Completed, sub.Qualified, r.now()))
	if err != nil {
		return Record{}, classify(err)
	}
	rec.Layout = layout.Name
	rec.Table = table
	return rec, nil
}

// InsertGeneric writes a fallback record.
func (r *PGRepo) InsertGeneric(ctx context.Context, table string, rec GenericRecord) (GenericRecord, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (id, user_identifier, type, payload, created_at)
VALUES ($1, $2, $3, $4, $5)`, pgx.Identifier{table}.Sanitize())

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	if _, err := r.DB.ExecContext(ctx, query, rec.ID, rec.Identifier, rec.Type, rec.Payload, rec.CreatedAt); err != nil {
		return GenericRecord{}, classify(err)
	}
	return rec, nil
}

// Find returns the most recently updated row for identifier.
func (r *PGRepo) Find(ctx context.Context, table string, layout Layout, identifier string) (Record, error) {
	idCol := pgx.Identifier{layout.IdentifierColumn}.Sanitize()
	query := fmt.Sprintf(`
SELECT id, %[2]s, %[3]s, completed, qualified, created_at, updated_at
FROM %[1]s
WHERE %[2]s = $1
ORDER BY updated_at DESC
LIMIT 1`, pgx.Identifier{table}.Sanitize(), idCol, pgx.Identifier{layout.PayloadColumn}.Sanitize())

	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, identifier))
	if err != nil {
		return Record{}, classify(err)
	}
	rec.Layout = layout.Name
	rec.Table = table
	return rec, nil
}

// FindGeneric returns the newest fallback record of type multistep_form.
func (r *PGRepo) FindGeneric(ctx context.Context, table, identifier string) (GenericRecord, error) {
	query := fmt.Sprintf(`
SELECT id, user_identifier, type, payload, created_at
FROM %s
WHERE user_identifier = $1 AND type = $2
ORDER BY created_at DESC
LIMIT 1`, pgx.Identifier{table}.Sanitize())

	var rec GenericRecord
	err := r.DB.QueryRowContext(ctx, query, identifier, GenericType).Scan(&rec.ID, &rec.Identifier, &rec.Type, &rec.Payload, &rec.CreatedAt)
	if err != nil {
		return GenericRecord{}, classify(err)
	}
	return rec, nil
}

func scanRecord(row *sql.Row) (Record, error) {
	var (
		rec       Record
		payload   []byte
		completed sql.NullBool
		qualified sql.NullBool
		updatedAt sql.NullTime
	)
	if err := row.Scan(&rec.ID, &rec.Identifier, &payload, &completed, &qualified, &rec.CreatedAt, &updatedAt); err != nil {
		return Record{}, err
	}
	rec.Completed = completed.Bool
	rec.Qualified = qualified.Bool
	rec.UpdatedAt = rec.CreatedAt
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}
	rec.FormData = map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.FormData); err != nil {
			return Record{}, fmt.Errorf("decode form payload: %w", err)
		}
	}
	return rec, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case db.IsSchemaMismatch(err):
		return fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	default:
		return err
	}
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
