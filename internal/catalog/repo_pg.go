package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PGRepo implements Repo using Postgres. Rows come back as row_to_json so the
// same code serves every table.
type PGRepo struct {
	DB *sql.DB
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (r *PGRepo) List(ctx context.Context, t Table, q Query) ([]Row, error) {
	var (
		where []string
		args  []any
	)
	for _, col := range sortedKeys(q.Filters) {
		args = append(args, q.Filters[col])
		where = append(where, fmt.Sprintf("t.%s = $%d", ident(col), len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where = append(where, fmt.Sprintf("t.%s ILIKE $%d", ident(t.NameColumn), len(args)))
	}
	query := fmt.Sprintf("SELECT row_to_json(t) FROM %s t", ident(t.Name))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, q.Limit, q.Offset)
	query += fmt.Sprintf(" ORDER BY t.%s LIMIT $%d OFFSET $%d", ident(t.NameColumn), len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		row, err := decodeRow(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, t Table, id string) (Row, error) {
	query := fmt.Sprintf("SELECT row_to_json(t) FROM %s t WHERE t.id = $1", ident(t.Name))
	var raw []byte
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRow(raw)
}

func (r *PGRepo) Update(ctx context.Context, t Table, id string, fields map[string]any) (Row, error) {
	args := []any{id}
	sets := make([]string, 0, len(fields))
	for _, col := range sortedKeys(fields) {
		args = append(args, fields[col])
		sets = append(sets, fmt.Sprintf("%s = $%d", ident(col), len(args)))
	}
	query := fmt.Sprintf("UPDATE %s AS t SET %s WHERE t.id = $1 RETURNING row_to_json(t)", ident(t.Name), strings.Join(sets, ", "))
	var raw []byte
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeRow(raw)
}

// Insert writes rows in one multi-values statement; existing ids are left alone.
func (r *PGRepo) Insert(ctx context.Context, t Table, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	cols := columnsOf(rows)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
	}
	var (
		values []string
		args   []any
	)
	for _, row := range rows {
		ph := make([]string, len(cols))
		for i, c := range cols {
			args = append(args, row[c])
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		values = append(values, "("+strings.Join(ph, ", ")+")")
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (id) DO NOTHING",
		ident(t.Name), strings.Join(quoted, ", "), strings.Join(values, ", "))
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func decodeRow(raw []byte) (Row, error) {
	var row Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("decode catalog row: %w", err)
	}
	return row, nil
}

func columnsOf(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
