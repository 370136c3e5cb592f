package store

import (
	"context"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

func (s *GORMStore) CreateFile(ctx context.Context, file *models.File) (string, error) {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	file.UpdatedAt = time.Now()
	return createWithID[models.File](s.db, ctx, file, func(f *models.File, id string) { f.ID = id }, file.ID, models.ErrFileNotFound)
}

func (s *GORMStore) GetFile(ctx context.Context, id string) (*models.File, error) {
	return getByField[models.File](s.db, ctx, "id", id, models.ErrFileNotFound)
}

func (s *GORMStore) ListFilesByProject(ctx context.Context, projectID string, page, limit int) ([]*models.File, int64, error) {
	return paginate[models.File](s.db, ctx, "project_id = ?", []any{projectID}, page, limit)
}

func (s *GORMStore) ListAllFiles(ctx context.Context, page, limit int) ([]*models.File, int64, error) {
	return paginate[models.File](s.db, ctx, "1 = 1", nil, page, limit)
}

func (s *GORMStore) ListImageFilesByProject(ctx context.Context, projectID string) ([]*models.File, error) {
	var files []*models.File
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND mime_type LIKE ?", projectID, "image/%").
		Find(&files).Error
	return files, err
}

func (s *GORMStore) UpdateFile(ctx context.Context, file *models.File) error {
	file.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", file.ID).Updates(file)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrFileNotFound
	}
	return nil
}

func (s *GORMStore) DeleteFile(ctx context.Context, id string) error {
	return deleteByField[models.File](s.db, ctx, "id", id, models.ErrFileNotFound)
}
