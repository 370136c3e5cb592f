package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

func (s *GORMStore) EnqueueJob(ctx context.Context, job *models.Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.UpdatedAt = job.CreatedAt
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return "", err
	}
	return job.ID, nil
}

// ClaimNextJob claims the oldest pending job for exclusive processing. The
// SELECT ... FOR UPDATE SKIP LOCKED clause lets multiple workers race this
// query concurrently without blocking on each other: a row already locked by
// another worker's open transaction is simply skipped rather than waited on.
// GORM has no query-builder method for SKIP LOCKED, so the claim is
// expressed as raw SQL inside a transaction.
func (s *GORMStore) ClaimNextJob(ctx context.Context) (*models.Job, error) {
	var claimed models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		err := tx.Raw(
			`SELECT * FROM jobs WHERE status = ? ORDER BY created_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED`,
			models.JobStatusPending,
		).Scan(&job).Error
		if err != nil {
			return err
		}
		if job.ID == "" {
			return models.ErrNoJobAvailable
		}

		now := time.Now()
		if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(map[string]any{
			"status":     models.JobStatusProcessing,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		job.Status = models.JobStatusProcessing
		job.UpdatedAt = now
		claimed = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

func (s *GORMStore) CompleteJob(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(map[string]any{
		"status":     models.JobStatusCompleted,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}

// FailJob marks a job failed and rewrites its payload to
// {"error": <message>, "original_payload": <payload before failure>}, the
// only point in the job lifecycle where the payload is mutated after
// creation.
func (s *GORMStore) FailJob(ctx context.Context, id string, jobErr error) error {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}

	newPayload, err := json.Marshal(map[string]any{
		"error":            jobErr.Error(),
		"original_payload": json.RawMessage(job.Payload),
	})
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(map[string]any{
		"status":     models.JobStatusFailed,
		"payload":    newPayload,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}

// RecoverStuckJobs resets every "processing" job back to "pending"
// unconditionally. Safe only when a single worker process owns the queue:
// a processing job with no live claimant after an unclean shutdown looks
// identical to one still being worked by a crashed process, so this reset
// is run once at startup before the worker pool begins claiming jobs.
func (s *GORMStore) RecoverStuckJobs(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ?", models.JobStatusProcessing).
		Updates(map[string]any{
			"status":     models.JobStatusPending,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (s *GORMStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	return getByField[models.Job](s.db, ctx, "id", id, models.ErrJobNotFound)
}

func (s *GORMStore) ListJobsByProject(ctx context.Context, projectID string, status string, page, limit int) ([]*models.Job, int64, error) {
	where := "(project_id = ? OR file_id IN (SELECT id FROM files WHERE project_id = ?))"
	args := []any{projectID, projectID}
	if status != "" {
		where += " AND status = ?"
		args = append(args, status)
	}
	return paginate[models.Job](s.db, ctx, where, args, page, limit)
}

func (s *GORMStore) ListJobsByProjects(ctx context.Context, projectIDs []string, status string) ([]*models.Job, error) {
	q := s.db.WithContext(ctx).
		Where("(project_id IN ? OR file_id IN (SELECT id FROM files WHERE project_id IN ?))", projectIDs, projectIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var jobs []*models.Job
	err := q.Order("created_at ASC").Find(&jobs).Error
	return jobs, err
}
