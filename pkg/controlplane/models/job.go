package models

import (
	"encoding/json"
	"time"
)

// Job statuses, matching the durable queue's state machine exactly:
// pending -> processing -> (completed | failed). "processing" is reset to
// "pending" unconditionally on startup, which is why there is no separate
// crash/interrupted state.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Job payload "type" discriminators. A payload with no "type" field but a
// top-level "variants" key is the legacy shape and is treated as
// a process_image job.
const (
	JobTypeSyncProjectVariants = "sync_project_variants"
	JobTypeSyncFileVariants    = "sync_file_variants"
)

// Job is one unit of async work claimed by exactly one worker at a time via
// SELECT ... FOR UPDATE SKIP LOCKED. Payload is an opaque JSON document
// whose shape depends on the job's (sniffed) type; see internal/worker.
//
// Exactly one of FileID/ProjectID is set: per-file jobs (process_image,
// sync_file_variants) carry FileID, while the project-wide
// sync_project_variants job carries ProjectID instead, since it fans out to
// many files rather than acting on one.
type Job struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	FileID    string          `gorm:"type:uuid;index"`
	ProjectID string          `gorm:"type:uuid;index"`
	Status    string          `gorm:"type:varchar(16);not null;index;default:pending"`
	Payload   json.RawMessage `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string { return "jobs" }
