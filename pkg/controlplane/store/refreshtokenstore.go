package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

func (s *GORMStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GORMStore) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	return getByField[models.RefreshToken](s.db, ctx, "token_hash", tokenHash, models.ErrRefreshTokenNotFound)
}

func (s *GORMStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrRefreshTokenNotFound
	}
	return nil
}

func (s *GORMStore) RevokeAllRefreshTokensForUser(ctx context.Context, userID string) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}
