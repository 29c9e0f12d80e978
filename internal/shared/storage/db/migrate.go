package db

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

var gooseOnce sync.Once
var gooseErr error

// goose keeps its base FS and dialect in package globals.
func prepareGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrationFiles)
		goose.SetLogger(goose.NopLogger())
		gooseErr = goose.SetDialect("postgres")
	})
	return gooseErr
}

// RunMigrations applies pending migrations and returns the schema version
// reached. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) (int64, error) {
	if database == nil {
		return 0, nil
	}
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, database)
}

// MigrationState is one embedded migration and whether it has been applied.
type MigrationState struct {
	Version int64
	Source  string
	Applied bool
}

// MigrationStatus lists every embedded migration against the current schema version.
func MigrationStatus(ctx context.Context, database *sql.DB) ([]MigrationState, error) {
	if err := prepareGoose(); err != nil {
		return nil, err
	}
	current, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return nil, err
	}
	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationState, 0, len(migrations))
	for _, m := range migrations {
		out = append(out, MigrationState{Version: m.Version, Source: m.Source, Applied: m.Version <= current})
	}
	return out, nil
}
