package models

import "time"

// RefreshToken backs the refresh/logout flow: the JWT refresh token's raw
// value is never stored, only its hash, so a leaked DB dump can't be
// replayed as a session.
type RefreshToken struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	UserID    string `gorm:"type:uuid;not null;index"`
	TokenHash string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// IsValid reports whether the token is unrevoked and unexpired as of now.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
