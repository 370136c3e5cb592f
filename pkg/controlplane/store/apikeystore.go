package store

import (
	"context"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

func (s *GORMStore) CreateApiKey(ctx context.Context, key *models.ApiKey) (string, error) {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}
	return createWithID[models.ApiKey](s.db, ctx, key, func(k *models.ApiKey, id string) { k.ID = id }, key.ID, models.ErrDuplicateApiKey)
}

// GetApiKeyByHash looks up an API key by its SHA-256 hash and returns it
// along with its owning project, matching the original middleware's
// find_also_related(Project) join. A key whose project has been deleted is
// reported as models.ErrProjectNotFound so the caller can distinguish an
// orphaned key (internal error) from an unknown one (unauthorized).
func (s *GORMStore) GetApiKeyByHash(ctx context.Context, keyHash string) (*models.ApiKey, *models.Project, error) {
	key, err := getByField[models.ApiKey](s.db, ctx, "key_hash", keyHash, models.ErrApiKeyNotFound)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.GetProject(ctx, key.ProjectID)
	if err != nil {
		return nil, nil, models.ErrProjectNotFound
	}
	return key, project, nil
}

func (s *GORMStore) ListApiKeysByProject(ctx context.Context, projectID string) ([]*models.ApiKey, error) {
	var keys []*models.ApiKey
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&keys).Error
	return keys, err
}

func (s *GORMStore) UpdateApiKey(ctx context.Context, key *models.ApiKey) error {
	result := s.db.WithContext(ctx).Model(&models.ApiKey{}).Where("id = ?", key.ID).Updates(key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrApiKeyNotFound
	}
	return nil
}

func (s *GORMStore) DeleteApiKey(ctx context.Context, id string) error {
	return deleteByField[models.ApiKey](s.db, ctx, "id", id, models.ErrApiKeyNotFound)
}
