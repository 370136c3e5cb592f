package models

import "time"

// ApiKey authenticates upload/job requests scoped to a single Project. The
// plaintext key is shown to the caller exactly once at creation time; only
// its SHA-256 hex digest is persisted.
type ApiKey struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ProjectID string `gorm:"type:uuid;not null;index"`
	Name      string `gorm:"not null"`
	KeyHash   string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	ExpiresAt *time.Time
	IsActive  bool `gorm:"not null;default:true"`
}

func (ApiKey) TableName() string { return "api_keys" }

// IsValid reports whether the key is active and, if it has an expiry, not
// yet expired as of now.
func (k *ApiKey) IsValid(now time.Time) bool {
	if !k.IsActive {
		return false
	}
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		return false
	}
	return true
}
