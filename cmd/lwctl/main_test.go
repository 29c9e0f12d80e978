package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeway-backend/internal/bootstrap"
	"lifeway-backend/internal/shared/config"
)

func devBuild(t *testing.T) buildFunc {
	t.Helper()
	dir := t.TempDir()
	return func() (*bootstrap.App, error) {
		return bootstrap.Build(config.Config{Env: "dev", LocalStoreDir: dir})
	}
}

func run(t *testing.T, build buildFunc, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(build)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedDryRun(t *testing.T) {
	out, err := run(t, devBuild(t), "seed", "--dry-run", "--batch-size", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "would seed:")
	assert.Contains(t, out, "batches=8")
}

func withDatabase(t *testing.T) buildFunc {
	t.Helper()
	dir := t.TempDir()
	return func() (*bootstrap.App, error) {
		app, err := bootstrap.Build(config.Config{Env: "dev", LocalStoreDir: dir})
		if err != nil {
			return nil, err
		}
		sqlDB, _, err := sqlmock.New()
		if err != nil {
			return nil, err
		}
		t.Cleanup(func() { sqlDB.Close() })
		app.DB = sqlDB
		return app, nil
	}
}

func TestSeedWrites(t *testing.T) {
	out, err := run(t, withDatabase(t), "seed", "--concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded: categories=4 tags=6 posts=6 catalog_rows=17")
}

func TestSeedRefusesWithoutDatabase(t *testing.T) {
	out, err := run(t, devBuild(t), "seed")
	require.ErrorIs(t, err, errDatabaseDisabled)
	assert.NotContains(t, out, "seeded:")
}

func TestBackfillNeedsDatabase(t *testing.T) {
	_, err := run(t, devBuild(t), "backfill-images")
	require.ErrorIs(t, err, errDatabaseDisabled)
}

func TestBackfillNeedsProvider(t *testing.T) {
	_, err := run(t, withDatabase(t), "backfill-images")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image provider")
}

func TestDBCheckNeedsDatabase(t *testing.T) {
	_, err := run(t, devBuild(t), "db-check")
	require.ErrorIs(t, err, errDatabaseDisabled)
}
