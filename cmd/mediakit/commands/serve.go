package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/reconciler"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/telemetry"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/worker"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/config"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mediakit server",
	Long: `Runs the mediakit HTTP API, the background worker pool that renders
image variants, and the retention reconciler, all in one process until
interrupted.

Examples:
  mediakit serve
  mediakit serve --config /etc/mediakit/config.yaml
  MEDIAKIT_LOGGING_LEVEL=DEBUG mediakit serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))
	logger.Info("log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "mediakit",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "mediakit",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	registry := prometheus.NewRegistry()
	var objMetrics objectstore.Metrics
	if cfg.Metrics.Enabled {
		objMetrics = objectstore.NewPrometheusMetrics(registry)
	}

	cpStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize control plane store: %w", err)
	}
	defer func() { _ = cpStore.Close() }()

	if err := ensureAdminUser(ctx, cpStore, cfg.Admin); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	objStore, err := objectstore.NewClientFromConfig(ctx, objectStoreConfig(cfg), objMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}
	if err := objStore.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure object store bucket: %w", err)
	}

	apiServer, err := api.NewServer(cfg.API, cpStore, objStore)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	pool := worker.New(cpStore, cpStore, cpStore, objStore, worker.Config{
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
	})

	rec := reconciler.New(cpStore, cpStore, objStore, reconciler.Config{
		RetentionPeriod: cfg.Worker.RetentionPeriod,
		Interval:        cfg.Worker.ReconcileInterval,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return apiServer.Start(groupCtx) })
	group.Go(func() error { return pool.Run(groupCtx) })
	group.Go(func() error { return rec.Run(groupCtx) })
	if cfg.Metrics.Enabled {
		group.Go(func() error { return serveMetrics(groupCtx, cfg.Metrics.Port, registry) })
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("mediakit is running; press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
	case <-groupCtx.Done():
		// One component returned an error; cancel so the rest unwind too.
		cancel()
	}
	signal.Stop(sigCh)

	if err := group.Wait(); err != nil {
		return fmt.Errorf("mediakit exited: %w", err)
	}
	logger.Info("mediakit stopped")
	return nil
}

func serveMetrics(ctx context.Context, port int, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("metrics server listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ensureAdminUser creates the su-role user from AdminConfig whenever no user
// with the configured username exists, regardless of any other users. An
// existing user with that username is left untouched.
func ensureAdminUser(ctx context.Context, cpStore store.Store, adminCfg config.AdminConfig) error {
	if adminCfg.Username == "" {
		return nil
	}
	if _, err := cpStore.GetUser(ctx, adminCfg.Username); err == nil {
		return nil
	}

	passwordHash := adminCfg.PasswordHash
	if passwordHash == "" {
		password, ok := promptAdminPassword(adminCfg.Username)
		if !ok {
			hash, err := store.HashPassword(adminCfg.Username)
			if err != nil {
				return err
			}
			passwordHash = hash
			logger.Warn("admin bootstrapped with a password derived from its username; change it immediately",
				"username", adminCfg.Username)
		} else {
			hash, err := store.HashPassword(password)
			if err != nil {
				return err
			}
			passwordHash = hash
		}
	}

	user := &models.User{
		ID:                 uuid.NewString(),
		Username:           adminCfg.Username,
		PasswordHash:       passwordHash,
		Role:               models.RoleSu,
		MustChangePassword: true,
	}
	if _, err := cpStore.CreateUser(ctx, user); err != nil {
		return err
	}
	logger.Info("admin user created", "username", adminCfg.Username)
	return nil
}

// promptAdminPassword interactively prompts for the initial admin password
// when running attached to a terminal and no password hash was configured.
// Returns ok=false when stdin isn't a terminal, so the caller can fall back
// to its username-derived default.
func promptAdminPassword(username string) (password string, ok bool) {
	if !logger.IsTerminal(os.Stdin.Fd()) {
		return "", false
	}

	fmt.Printf("No password configured for admin user %q.\n", username)
	prompt := promptui.Prompt{
		Label: "Set initial admin password (min 8 characters)",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			return nil
		},
	}
	result, err := prompt.Run()
	if err != nil {
		logger.Warn("admin password prompt cancelled, falling back to a derived password", "error", err)
		return "", false
	}
	return result, true
}
