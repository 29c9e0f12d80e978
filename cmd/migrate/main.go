package main

// Run database migrations:
//   go run ./cmd/migrate          # apply pending migrations
//   go run ./cmd/migrate status   # list applied state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lifeway-backend/internal/shared/config"
	"lifeway-backend/internal/shared/storage/db"
	"lifeway-backend/internal/shared/telemetry"
)

func connect(ctx context.Context) (*sql.DB, error) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply embedded database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			version, err := db.RunMigrations(cmd.Context(), sqlDB)
			if err != nil {
				return err
			}
			telemetry.Info("migrate.done", map[string]any{"version": version})
			return nil
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied state of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer sqlDB.Close()
			states, err := db.MigrationStatus(cmd.Context(), sqlDB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, st := range states {
				mark := "pending"
				if st.Applied {
					mark = "applied"
				}
				fmt.Fprintf(out, "%05d  %-8s %s\n", st.Version, mark, filepath.Base(st.Source))
			}
			return nil
		},
	})
	return root
}

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
