package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Insert(ctx context.Context, k APIKey) error {
	const query = `
INSERT INTO api_keys (id, name, token_hash, token_prefix, role, revoked, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6)`
	_, err := r.DB.ExecContext(ctx, query, k.ID, k.Name, k.TokenHash, k.TokenPrefix, k.Role, k.CreatedAt)
	return err
}

func (r *PGRepo) List(ctx context.Context) ([]APIKey, error) {
	const query = `
SELECT id, name, token_hash, token_prefix, role, revoked, created_at, revoked_at
FROM api_keys
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []APIKey{}
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *PGRepo) FindByHash(ctx context.Context, hash string) (APIKey, error) {
	const query = `
SELECT id, name, token_hash, token_prefix, role, revoked, created_at, revoked_at
FROM api_keys
WHERE token_hash = $1
LIMIT 1`
	k, err := scanKey(r.DB.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return APIKey{}, ErrNotFound
	}
	return k, err
}

func (r *PGRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE api_keys SET revoked = TRUE, revoked_at = COALESCE(revoked_at, $2) WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(row scanner) (APIKey, error) {
	var (
		k         APIKey
		revokedAt sql.NullTime
	)
	if err := row.Scan(&k.ID, &k.Name, &k.TokenHash, &k.TokenPrefix, &k.Role, &k.Revoked, &k.CreatedAt, &revokedAt); err != nil {
		return APIKey{}, err
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		k.RevokedAt = &t
	}
	return k, nil
}
