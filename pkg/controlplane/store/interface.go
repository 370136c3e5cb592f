// Package store provides the persistence layer: users, projects, files,
// jobs, and API keys, backed by either SQLite (dev/test, default) or
// PostgreSQL (production).
package store

import (
	"context"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

// UserStore provides user CRUD and credential verification.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (string, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ValidateCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// RefreshTokenStore supports the JWT refresh/logout flow.
type RefreshTokenStore interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokensForUser(ctx context.Context, userID string) error
}

// ProjectStore provides project CRUD, scoped by owner where applicable.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) (string, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)
	ListAllProjects(ctx context.Context) ([]*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	SoftDeleteProject(ctx context.Context, id string) error
	HardDeleteProject(ctx context.Context, id string) error
	ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Project, error)
}

// FileStore provides file CRUD scoped by project.
type FileStore interface {
	CreateFile(ctx context.Context, file *models.File) (string, error)
	GetFile(ctx context.Context, id string) (*models.File, error)
	ListFilesByProject(ctx context.Context, projectID string, page, limit int) ([]*models.File, int64, error)
	ListAllFiles(ctx context.Context, page, limit int) ([]*models.File, int64, error)
	ListImageFilesByProject(ctx context.Context, projectID string) ([]*models.File, error)
	UpdateFile(ctx context.Context, file *models.File) error
	DeleteFile(ctx context.Context, id string) error
}

// JobStore provides durable queue operations: enqueue, atomic claim, and
// terminal state updates.
type JobStore interface {
	// EnqueueJob inserts a new pending job.
	EnqueueJob(ctx context.Context, job *models.Job) (string, error)

	// ClaimNextJob atomically claims the oldest pending job (SELECT ... FOR
	// UPDATE SKIP LOCKED) and marks it processing. Returns
	// models.ErrNoJobAvailable if no pending job exists.
	ClaimNextJob(ctx context.Context) (*models.Job, error)

	// CompleteJob marks a job completed.
	CompleteJob(ctx context.Context, id string) error

	// FailJob marks a job failed and rewrites its payload to record the
	// error alongside the original payload.
	FailJob(ctx context.Context, id string, jobErr error) error

	// RecoverStuckJobs resets every job stuck in "processing" back to
	// "pending". Called once at worker startup.
	RecoverStuckJobs(ctx context.Context) (int64, error)

	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobsByProject(ctx context.Context, projectID string, status string, page, limit int) ([]*models.Job, int64, error)
	ListJobsByProjects(ctx context.Context, projectIDs []string, status string) ([]*models.Job, error)
}

// ApiKeyStore provides per-project API key CRUD and hash lookup.
type ApiKeyStore interface {
	CreateApiKey(ctx context.Context, key *models.ApiKey) (string, error)
	GetApiKeyByHash(ctx context.Context, keyHash string) (*models.ApiKey, *models.Project, error)
	ListApiKeysByProject(ctx context.Context, projectID string) ([]*models.ApiKey, error)
	UpdateApiKey(ctx context.Context, key *models.ApiKey) error
	DeleteApiKey(ctx context.Context, id string) error
}

// HealthStore provides store health check and lifecycle operations.
type HealthStore interface {
	Healthcheck(ctx context.Context) error
	Close() error
}

// Store is the composite persistence interface. Handlers and services
// should accept the narrowest sub-interface they actually need.
type Store interface {
	UserStore
	RefreshTokenStore
	ProjectStore
	FileStore
	JobStore
	ApiKeyStore
	HealthStore
}
