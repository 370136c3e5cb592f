package models

import (
	"encoding/json"
	"time"
)

// Project is the top-level tenant boundary: every File, Job, and ApiKey
// belongs to exactly one Project, and every Project belongs to exactly one
// owning User.
type Project struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	OwnerID     string          `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"not null"`
	Description *string         `gorm:""`
	Settings    json.RawMessage `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time `gorm:"index"`

	Files   []File   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	ApiKeys []ApiKey `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string { return "projects" }

// ParsedSettings decodes the Settings column, defaulting on any parse error.
func (p *Project) ParsedSettings() ProjectSettings {
	return ParseProjectSettings(p.Settings)
}

// IsDeleted reports whether the project has been soft-deleted.
func (p *Project) IsDeleted() bool {
	return p.DeletedAt != nil
}
