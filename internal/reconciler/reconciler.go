// Package reconciler periodically purges soft-deleted projects past their
// retention window: their files, object-store originals and variants, and
// finally the project row itself.
package reconciler

import (
	"context"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// objectStore is the narrow slice of *objectstore.Client the reconciler
// needs: resolving a stored value to a bare key and deleting it.
type objectStore interface {
	Resolve(value string) string
	Delete(ctx context.Context, key string) error
}

// Config configures the reconciler's sweep schedule and retention window.
type Config struct {
	// RetentionPeriod is how long a soft-deleted project is kept before
	// it becomes eligible for a hard delete.
	RetentionPeriod time.Duration

	// Interval is how often the reconciler sweeps for eligible projects.
	Interval time.Duration
}

func (c *Config) applyDefaults() {
	if c.RetentionPeriod <= 0 {
		c.RetentionPeriod = 30 * 24 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
}

// Reconciler sweeps the store for soft-deleted projects past retention and
// purges them, best-effort, from the object store before the DB cascade.
type Reconciler struct {
	projects store.ProjectStore
	files    store.FileStore
	objects  objectStore
	config   Config
}

// New creates a Reconciler.
func New(projects store.ProjectStore, files store.FileStore, objects objectStore, config Config) *Reconciler {
	config.applyDefaults()
	return &Reconciler{projects: projects, files: files, objects: objects, config: config}
}

// Run sweeps once immediately, then on every tick of Interval, until ctx is
// cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	r.SweepOnce(ctx)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.SweepOnce(ctx)
		}
	}
}

// SweepOnce purges every soft-deleted project past its retention window. It
// is exported so the CLI's "reconcile" subcommand can trigger a single pass
// without starting the periodic loop.
func (r *Reconciler) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-r.config.RetentionPeriod)

	projects, err := r.projects.ListSoftDeletedBefore(ctx, cutoff)
	if err != nil {
		logger.Error("reconciler: failed to list soft-deleted projects", "error", err)
		return
	}
	if len(projects) == 0 {
		return
	}

	logger.Info("reconciler: purging expired projects", "count", len(projects))
	for _, p := range projects {
		r.purgeProject(ctx, p.ID)
	}
}

func (r *Reconciler) purgeProject(ctx context.Context, projectID string) {
	for page := 1; ; page++ {
		files, total, err := r.files.ListFilesByProject(ctx, projectID, page, maxFilesPerProject)
		if err != nil {
			logger.Error("reconciler: failed to list project files", "project_id", projectID, "error", err)
			return
		}

		for _, f := range files {
			r.deleteObject(ctx, f.S3Key)
			for _, key := range f.VariantMap() {
				r.deleteObject(ctx, key)
			}
		}

		if len(files) == 0 || int64(page*maxFilesPerProject) >= total {
			break
		}
	}

	if err := r.projects.HardDeleteProject(ctx, projectID); err != nil {
		logger.Error("reconciler: failed to hard-delete project", "project_id", projectID, "error", err)
	}
}

func (r *Reconciler) deleteObject(ctx context.Context, value string) {
	key := r.objects.Resolve(value)
	if err := r.objects.Delete(ctx, key); err != nil {
		logger.Warn("reconciler: failed to delete object", "key", key, "error", err)
	}
}

// maxFilesPerProject is the page size of the reconciler's file listing;
// purgeProject walks every page before deleting the project row.
const maxFilesPerProject = 10000
