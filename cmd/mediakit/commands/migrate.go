package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/config"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations for the control plane database.

Applies pending schema changes to the configured control plane database
(SQLite or PostgreSQL). Required after upgrading mediakit when the schema
has changed.

Examples:
  mediakit migrate
  mediakit migrate --config /etc/mediakit/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("running database migrations", "type", cfg.Database.Type)

	ctx := context.Background()
	cpStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = cpStore.Close() }()

	if _, err := cpStore.ListUsers(ctx); err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}

	cmd.Printf("migrations completed successfully (database type: %s)\n", cfg.Database.Type)
	return nil
}
