package store

import (
	"context"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

func (s *GORMStore) CreateProject(ctx context.Context, project *models.Project) (string, error) {
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	project.UpdatedAt = time.Now()
	return createWithID[models.Project](s.db, ctx, project, func(p *models.Project, id string) { p.ID = id }, project.ID, models.ErrProjectNotFound)
}

func (s *GORMStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return getByField[models.Project](s.db, ctx, "id", id, models.ErrProjectNotFound)
}

func (s *GORMStore) ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	var projects []*models.Project
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND deleted_at IS NULL", ownerID).
		Find(&projects).Error
	return projects, err
}

func (s *GORMStore) ListAllProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Find(&projects).Error
	return projects, err
}

func (s *GORMStore) UpdateProject(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND deleted_at IS NULL", project.ID).
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

// SoftDeleteProject stamps deleted_at. The project remains queryable by
// ListSoftDeletedBefore (used by the reconciler) until the retention window elapses.
func (s *GORMStore) SoftDeleteProject(ctx context.Context, id string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

// HardDeleteProject permanently removes the project row. Files/Jobs/ApiKeys
// cascade via the foreign key ON DELETE CASCADE constraints; object-store
// cleanup of the underlying S3 objects is the caller's responsibility and is
// best-effort (see internal/reconciler).
func (s *GORMStore) HardDeleteProject(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProjectNotFound
	}
	return nil
}

func (s *GORMStore) ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Project, error) {
	var projects []*models.Project
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Find(&projects).Error
	return projects, err
}
