package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lifeway-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert stores a report into table.
func (r *PGRepo) Insert(ctx context.Context, table string, rep Report) error {
	input, err := json.Marshal(rep.Input)
	if err != nil {
		return fmt.Errorf("encode report input: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, user_email, tool_type, content, input, model, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, pgx.Identifier{table}.Sanitize())

	_, err = r.DB.ExecContext(ctx, query, rep.ID, rep.UserEmail, rep.ToolType, rep.Content, string(input), nullString(rep.Model), rep.CreatedAt)
	return classify(err)
}

// List returns the newest reports for email, optionally filtered by tool.
func (r *PGRepo) List(ctx context.Context, table, email, toolType string, limit int) ([]Report, error) {
	query := fmt.Sprintf(`
SELECT id, user_email, tool_type, content, input, model, created_at
FROM %s
WHERE user_email = $1 AND ($2 = '' OR tool_type = $2)
ORDER BY created_at DESC
LIMIT $3`, pgx.Identifier{table}.Sanitize())

	rows, err := r.DB.QueryContext(ctx, query, email, toolType, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		var (
			rep   Report
			input []byte
			model sql.NullString
		)
		if err := rows.Scan(&rep.ID, &rep.UserEmail, &rep.ToolType, &rep.Content, &input, &model, &rep.CreatedAt); err != nil {
			return nil, err
		}
		rep.Model = model.String
		rep.Input = map[string]any{}
		if len(input) > 0 {
			if err := json.Unmarshal(input, &rep.Input); err != nil {
				return nil, fmt.Errorf("decode report input %s: %w", rep.ID, err)
			}
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func classify(err error) error {
	if err != nil && db.IsSchemaMismatch(err) {
		return fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
