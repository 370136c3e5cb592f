package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/reconciler"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/config"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one retention sweep and exit",
	Long: `Runs a single pass of the retention reconciler: hard-deletes every
soft-deleted project past its retention window, including its files and
object-store originals/variants, then exits.

This is the same sweep the running server performs periodically; running it
on demand is useful after lowering the retention period or recovering from a
reconciler outage.`,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := context.Background()

	cpStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() { _ = cpStore.Close() }()

	objStore, err := objectstore.NewClientFromConfig(ctx, objectStoreConfig(cfg), nil)
	if err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}

	rec := reconciler.New(cpStore, cpStore, objStore, reconciler.Config{
		RetentionPeriod: cfg.Worker.RetentionPeriod,
	})

	logger.Info("running one-shot retention sweep", "retention", cfg.Worker.RetentionPeriod.String())
	rec.SweepOnce(ctx)
	cmd.Println("reconcile sweep completed")
	return nil
}
