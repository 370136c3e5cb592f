package models

import (
	"encoding/json"
	"strings"
	"time"
)

// File statuses. An image File starts "processing" until its worker-driven
// variant job completes; a non-image File is "ready" immediately on upload.
const (
	FileStatusReady      = "ready"
	FileStatusProcessing = "processing"
	FileStatusFailed     = "failed"
)

// File records one uploaded object (original) plus the object-store
// locations of any derived variants.
type File struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	ProjectID string          `gorm:"type:uuid;not null;index"`
	S3Key     string          `gorm:"uniqueIndex;not null"`
	Filename  string          `gorm:"not null"`
	MimeType  string          `gorm:"not null"`
	Size      int64           `gorm:"not null"`
	Status    string          `gorm:"not null;default:ready"`
	Variants  json.RawMessage `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Jobs []Job `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
}

func (File) TableName() string { return "files" }

// IsImage reports whether the file's mime type marks it as image content
// eligible for variant generation.
func (f *File) IsImage() bool {
	return strings.HasPrefix(f.MimeType, "image/")
}

// VariantMap decodes the Variants column into a name -> object key/URL map.
func (f *File) VariantMap() map[string]string {
	if len(f.Variants) == 0 {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(f.Variants, &m); err != nil {
		return map[string]string{}
	}
	return m
}
