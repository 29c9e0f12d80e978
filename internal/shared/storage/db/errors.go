package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories branch on.
const (
	codeUniqueViolation        = "23505"
	codeForeignKeyViolation    = "23503"
	codeUndefinedTable         = "42P01"
	codeUndefinedColumn        = "42703"
	codeInvalidColumnReference = "42P10"
	codeDatatypeMismatch       = "42804"
	codeNotNullViolation       = "23502"
)

// IsSchemaMismatch reports whether err means the statement does not fit the
// deployed table layout: a missing table or column, an ON CONFLICT target
// without a matching unique constraint, a column of another type, or a
// required column the statement did not fill.
func IsSchemaMismatch(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeUndefinedTable, codeUndefinedColumn, codeInvalidColumnReference, codeDatatypeMismatch, codeNotNullViolation:
		return true
	default:
		return false
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err references a missing parent row.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
