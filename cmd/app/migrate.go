package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"page-summarizer/internal/config"
	pg "page-summarizer/internal/infra/db/postgres"
	"page-summarizer/internal/infra/db/sqlite"
	"page-summarizer/internal/infra/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users table in the configured database",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool); err != nil {
			return err
		}
	default:
		// Open applies the schema.
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("migration complete")
	return nil
}
