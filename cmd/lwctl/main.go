package main

// Operator CLI:
//   go run ./cmd/lwctl seed --batch-size 50 --concurrency 4 [--dry-run]
//   go run ./cmd/lwctl backfill-images --limit 100
//   go run ./cmd/lwctl db-check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lifeway-backend/internal/bootstrap"
	"lifeway-backend/internal/seed"
	"lifeway-backend/internal/shared/config"
	"lifeway-backend/internal/shared/storage/db"
	"lifeway-backend/internal/shared/telemetry"
)

type buildFunc func() (*bootstrap.App, error)

// errDatabaseDisabled stops write commands from running against in-memory repos.
var errDatabaseDisabled = errors.New("database disabled: set DATABASE_URL")

func buildFromEnv() (*bootstrap.App, error) {
	return bootstrap.Build(config.Load())
}

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "lwctl",
		Short:         "LifeWay operator tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSeedCmd(build), newBackfillCmd(build), newDBCheckCmd(build))
	return root
}

func newSeedCmd(build buildFunc) *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample blog posts, taxonomies and catalog rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			if app.DB == nil && !opts.DryRun {
				return errDatabaseDisabled
			}
			stats, err := app.Seeder().Run(cmd.Context(), opts)
			printStats(cmd.OutOrStdout(), opts.DryRun, stats)
			return err
		},
	}
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", seed.DefaultBatchSize, "rows per batch")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", seed.DefaultConcurrency, "batches in flight")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "count without writing")
	return cmd
}

func printStats(w io.Writer, dryRun bool, s seed.Stats) {
	verb := "seeded"
	if dryRun {
		verb = "would seed"
	}
	fmt.Fprintf(w, "%s: categories=%d tags=%d posts=%d catalog_rows=%d skipped=%d batches=%d\n",
		verb, s.Categories, s.Tags, s.Posts, s.CatalogRows, s.Skipped, s.Batches)
}

func newBackfillCmd(build buildFunc) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "backfill-images",
		Short: "Find images for blog posts without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			if app.DB == nil {
				return errDatabaseDisabled
			}
			if !app.ImageSearch.Enabled() {
				return fmt.Errorf("no image provider key configured")
			}
			stats, err := app.Backfiller(limit).Run(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d updated=%d missed=%d failed=%d\n",
				stats.Scanned, stats.Updated, stats.Missed, stats.Failed)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum posts to process")
	return cmd
}

func newDBCheckCmd(build buildFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "db-check",
		Short: "Ping the database and list which expected tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			if app.DB == nil {
				return errDatabaseDisabled
			}
			checks, err := db.CheckTables(cmd.Context(), app.DB, db.ExpectedTables)
			if err != nil {
				return err
			}
			missing := 0
			for _, c := range checks {
				state := "ok"
				if !c.Exists {
					state = "missing"
					missing++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", c.Table, state)
			}
			if missing > 0 {
				return fmt.Errorf("%d expected tables missing", missing)
			}
			return nil
		},
	}
}

func main() {
	defer telemetry.Sync()
	if err := newRootCmd(buildFromEnv).ExecuteContext(context.Background()); err != nil {
		telemetry.Error("lwctl.failed", map[string]any{"error": err})
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
