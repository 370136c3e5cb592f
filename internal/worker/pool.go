// Package worker implements the background pool that claims pending jobs
// from the durable queue and renders image variants.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/imaging"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/objectkey"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// objectStore is the narrow slice of *objectstore.Client the worker needs:
// downloading the original and uploading each rendered variant.
type objectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, mimeType string) error
}

// Config configures the worker pool.
type Config struct {
	// Concurrency bounds how many jobs are processed simultaneously.
	Concurrency int

	// PollInterval is how long an idle worker sleeps after finding no
	// pending job before checking again.
	PollInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
}

// Pool claims jobs from the store one at a time and dispatches each to its
// own goroutine, bounded by a semaphore so at most Concurrency jobs run at
// once.
type Pool struct {
	jobs     store.JobStore
	files    store.FileStore
	projects store.ProjectStore
	objects  objectStore
	config   Config
	sem      chan struct{}
	wg       sync.WaitGroup
}

// New creates a Pool.
func New(jobs store.JobStore, files store.FileStore, projects store.ProjectStore, objects objectStore, config Config) *Pool {
	config.applyDefaults()
	return &Pool{
		jobs:     jobs,
		files:    files,
		projects: projects,
		objects:  objects,
		config:   config,
		sem:      make(chan struct{}, config.Concurrency),
	}
}

// Run recovers jobs stuck "processing" from a prior crash, then loops
// claiming and dispatching jobs until ctx is cancelled. It blocks until every
// in-flight job finishes.
func (p *Pool) Run(ctx context.Context) error {
	if n, err := p.jobs.RecoverStuckJobs(ctx); err != nil {
		logger.Error("failed to recover stuck jobs", "error", err)
	} else if n > 0 {
		logger.Info("recovered stuck jobs", "count", n)
	}

	logger.Info("worker pool started", "concurrency", p.config.Concurrency)

	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			return nil
		case p.sem <- struct{}{}:
		}

		job, err := p.jobs.ClaimNextJob(ctx)
		if err != nil {
			<-p.sem
			if errors.Is(err, models.ErrNoJobAvailable) {
				select {
				case <-ctx.Done():
					p.wg.Wait()
					return nil
				case <-time.After(p.config.PollInterval):
				}
				continue
			}
			logger.Error("failed to claim job", "error", err)
			select {
			case <-ctx.Done():
				p.wg.Wait()
				return nil
			case <-time.After(p.config.PollInterval):
			}
			continue
		}

		p.wg.Add(1)
		go func(j *models.Job) {
			defer p.wg.Done()
			defer func() { <-p.sem }()
			p.perform(context.Background(), j)
		}(job)
	}
}

func (p *Pool) perform(ctx context.Context, job *models.Job) {
	start := time.Now()
	err := p.handle(ctx, job)
	if err != nil {
		logger.Error("job failed", "job_id", job.ID, "error", err, "duration", time.Since(start).String())
		if failErr := p.jobs.FailJob(ctx, job.ID, err); failErr != nil {
			logger.Error("failed to record job failure", "job_id", job.ID, "error", failErr)
		}
		return
	}
	logger.Info("job completed", "job_id", job.ID, "duration", time.Since(start).String())
	if err := p.jobs.CompleteJob(ctx, job.ID); err != nil {
		logger.Error("failed to mark job completed", "job_id", job.ID, "error", err)
	}
}

// jobEnvelope sniffs a payload's shape: a discriminated "type" field, or the
// legacy bare "variants" document with no type at all.
type jobEnvelope struct {
	Type     string          `json:"type"`
	Variants json.RawMessage `json:"variants"`
}

func (p *Pool) handle(ctx context.Context, job *models.Job) error {
	var envelope jobEnvelope
	if err := json.Unmarshal(job.Payload, &envelope); err != nil {
		return fmt.Errorf("invalid job payload: %w", err)
	}

	switch envelope.Type {
	case models.JobTypeSyncProjectVariants:
		return p.handleSyncProjectVariants(ctx, job)
	case models.JobTypeSyncFileVariants:
		return p.handleSyncFileVariants(ctx, job)
	case "":
		if envelope.Variants != nil {
			return p.handleProcessImage(ctx, job)
		}
		return fmt.Errorf("job payload has neither a type nor a variants field")
	default:
		return fmt.Errorf("unknown job type: %s", envelope.Type)
	}
}

type processImagePayload struct {
	Variants map[string]models.VariantConfig `json:"variants"`
}

func (p *Pool) handleProcessImage(ctx context.Context, job *models.Job) error {
	var payload processImagePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid process_image payload: %w", err)
	}
	file, err := p.files.GetFile(ctx, job.FileID)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	return p.renderVariants(ctx, file, payload.Variants)
}

type syncFileVariantsPayload struct {
	FileID         string                          `json:"file_id"`
	VariantsConfig map[string]models.VariantConfig `json:"variants_config"`
}

func (p *Pool) handleSyncFileVariants(ctx context.Context, job *models.Job) error {
	var payload syncFileVariantsPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid sync_file_variants payload: %w", err)
	}
	file, err := p.files.GetFile(ctx, job.FileID)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	return p.renderVariants(ctx, file, payload.VariantsConfig)
}

type syncProjectVariantsPayload struct {
	ProjectID string `json:"project_id"`
}

// handleSyncProjectVariants fans a project-wide resync out into one
// sync_file_variants job per image file in the project, snapshotting the
// project's variant configuration into each enqueued job so a later
// settings change can't alter a job already in flight. It never renders
// anything itself; rendering happens when a worker later claims one of the
// jobs it enqueues here.
func (p *Pool) handleSyncProjectVariants(ctx context.Context, job *models.Job) error {
	var payload syncProjectVariantsPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid sync_project_variants payload: %w", err)
	}

	project, err := p.projects.GetProject(ctx, payload.ProjectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	images, err := p.files.ListImageFilesByProject(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("list project files: %w", err)
	}

	variants := project.ParsedSettings().Variants
	for _, file := range images {
		fanOutPayload, err := json.Marshal(struct {
			Type           string                          `json:"type"`
			FileID         string                          `json:"file_id"`
			VariantsConfig map[string]models.VariantConfig `json:"variants_config"`
		}{
			Type:           models.JobTypeSyncFileVariants,
			FileID:         file.ID,
			VariantsConfig: variants,
		})
		if err != nil {
			return fmt.Errorf("encode sync_file_variants payload for file %q: %w", file.ID, err)
		}

		fileJob := &models.Job{
			ID:      uuid.NewString(),
			FileID:  file.ID,
			Status:  models.JobStatusPending,
			Payload: fanOutPayload,
		}
		if _, err := p.jobs.EnqueueJob(ctx, fileJob); err != nil {
			return fmt.Errorf("enqueue sync_file_variants job for file %q: %w", file.ID, err)
		}
	}
	return nil
}

// renderVariants downloads the original once and renders every configured
// variant. Any single variant failing to render or upload aborts the whole
// job: the file row is left untouched (status stays "processing") and the
// job is failed so it can be retried in full via sync-variants, rather than
// persisting a partial variant map.
func (p *Pool) renderVariants(ctx context.Context, file *models.File, variants map[string]models.VariantConfig) error {
	project, err := p.projects.GetProject(ctx, file.ProjectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	original, err := p.objects.Get(ctx, file.S3Key)
	if err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	ext := extensionFor(file.S3Key)
	rendered := make(map[string]string, len(variants))

	for name, cfg := range variants {
		data, mimeType, err := imaging.Process(original, cfg)
		if err != nil {
			return fmt.Errorf("render variant %q: %w", name, err)
		}

		variantExt := extensionForMime(mimeType, ext)
		key := objectkey.Variant(project.Name, project.ID, file.ID, name, variantExt)
		if err := p.objects.Put(ctx, key, data, mimeType); err != nil {
			return fmt.Errorf("upload variant %q: %w", name, err)
		}
		rendered[name] = key
	}

	variantsJSON, err := json.Marshal(rendered)
	if err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}

	file.Variants = variantsJSON
	file.Status = models.FileStatusReady
	if err := p.files.UpdateFile(ctx, file); err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

func extensionFor(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[i+1:]
		}
		if key[i] == '/' {
			break
		}
	}
	return "bin"
}

func extensionForMime(mimeType, fallback string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/tiff":
		return "tiff"
	case "image/bmp":
		return "bmp"
	default:
		return fallback
	}
}
