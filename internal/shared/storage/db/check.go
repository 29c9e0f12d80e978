package db

import (
	"context"
	"database/sql"
	"fmt"
)

// ExpectedTables are the tables the migrations create.
var ExpectedTables = []string{
	"blog_categories",
	"blog_tags",
	"blog_posts",
	"blog_post_tags",
	"multistep_forms",
	"form_submissions",
	"user_reports",
	"api_keys",
	"cities",
	"schools",
	"universities",
	"professional_courses",
	"empresa",
}

// TableCheck is one row of a connectivity report.
type TableCheck struct {
	Table  string
	Exists bool
}

// CheckTables pings database and reports which of tables exist in the
// search path.
func CheckTables(ctx context.Context, database *sql.DB, tables []string) ([]TableCheck, error) {
	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	out := make([]TableCheck, 0, len(tables))
	for _, table := range tables {
		var exists bool
		if err := database.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check %s: %w", table, err)
		}
		out = append(out, TableCheck{Table: table, Exists: exists})
	}
	return out, nil
}
