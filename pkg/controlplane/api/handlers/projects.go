package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// ProjectHandler manages project CRUD. Every operation is scoped to the
// caller's own projects unless the caller holds the "su" role, which sees
// and may act on every project.
type ProjectHandler struct {
	store store.ProjectStore
	files store.FileStore
	jobs  store.JobStore
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(s store.ProjectStore, files store.FileStore, jobs store.JobStore) *ProjectHandler {
	return &ProjectHandler{store: s, files: files, jobs: jobs}
}

// CreateProjectRequest is the request body for POST /projects.
type CreateProjectRequest struct {
	Name        string                   `json:"name"`
	Description *string                  `json:"description,omitempty"`
	Settings    *models.ProjectSettings  `json:"settings,omitempty"`
}

// UpdateProjectRequest is the request body for PUT /projects/{id}.
type UpdateProjectRequest struct {
	Name        *string                 `json:"name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Settings    *models.ProjectSettings `json:"settings,omitempty"`
}

// ProjectResponse is the API representation of a Project.
type ProjectResponse struct {
	ID          string                  `json:"id"`
	OwnerID     string                  `json:"owner_id"`
	Name        string                  `json:"name"`
	Description *string                 `json:"description,omitempty"`
	Settings    models.ProjectSettings  `json:"settings"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func projectToResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		Settings:    p.ParsedSettings(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func marshalSettings(s *models.ProjectSettings) (json.RawMessage, error) {
	if s == nil {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(s)
}

// canAccessProject reports whether claims may act on a project owned by ownerID.
func canAccessProject(claims *auth.Claims, ownerID string) bool {
	return claims.IsSu() || claims.UserID == ownerID
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	var req CreateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	settingsJSON, err := marshalSettings(req.Settings)
	if err != nil {
		BadRequest(w, "invalid settings")
		return
	}

	project := &models.Project{
		ID:          uuid.NewString(),
		OwnerID:     claims.UserID,
		Name:        req.Name,
		Description: req.Description,
		Settings:    settingsJSON,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := h.store.CreateProject(r.Context(), project); err != nil {
		InternalServerError(w, "failed to create project")
		return
	}
	WriteJSONCreated(w, projectToResponse(project))
}

// List handles GET /projects: the caller's own projects, or every project
// for an "su" caller.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	var (
		projects []*models.Project
		err      error
	)
	if claims.IsSu() {
		projects, err = h.store.ListAllProjects(r.Context())
	} else {
		projects, err = h.store.ListProjectsByOwner(r.Context(), claims.UserID)
	}
	if err != nil {
		InternalServerError(w, "failed to list projects")
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = projectToResponse(p)
	}
	WriteJSONOK(w, response)
}

// Get handles GET /projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			NotFound(w, "project not found")
			return
		}
		InternalServerError(w, "failed to get project")
		return
	}
	if !canAccessProject(claims, project.OwnerID) {
		Forbidden(w, "access denied")
		return
	}
	WriteJSONOK(w, projectToResponse(project))
}

// Update handles PUT /projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			NotFound(w, "project not found")
			return
		}
		InternalServerError(w, "failed to get project")
		return
	}
	if !canAccessProject(claims, project.OwnerID) {
		Forbidden(w, "access denied")
		return
	}

	var req UpdateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Settings != nil {
		settingsJSON, err := marshalSettings(req.Settings)
		if err != nil {
			BadRequest(w, "invalid settings")
			return
		}
		project.Settings = settingsJSON
	}

	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		InternalServerError(w, "failed to update project")
		return
	}
	WriteJSONOK(w, projectToResponse(project))
}

// Delete handles DELETE /projects/{id}?permanent=true|false. The default is
// a soft delete, purged later by the reconciler once the retention window
// elapses; permanent=true triggers an inline hard-delete cascade instead.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			NotFound(w, "project not found")
			return
		}
		InternalServerError(w, "failed to get project")
		return
	}
	if !canAccessProject(claims, project.OwnerID) {
		Forbidden(w, "access denied")
		return
	}

	if r.URL.Query().Get("permanent") == "true" {
		if err := h.store.HardDeleteProject(r.Context(), project.ID); err != nil {
			InternalServerError(w, "failed to delete project")
			return
		}
		WriteNoContent(w)
		return
	}

	if err := h.store.SoftDeleteProject(r.Context(), project.ID); err != nil {
		InternalServerError(w, "failed to delete project")
		return
	}
	WriteNoContent(w)
}

// SyncVariantsResponse reports the id of the queued sync_project_variants
// job; the fan-out to one job per image file happens asynchronously in the
// worker pool.
type SyncVariantsResponse struct {
	JobID string `json:"job_id"`
}

// syncProjectVariantsPayload is the job payload consumed by the worker for a
// "sync_project_variants" job: just the project id. The worker re-reads the
// project's variant configuration at fan-out time rather than snapshotting
// it here, since a project-wide resync is meant to apply whatever settings
// are current by the time the worker actually gets to it.
type syncProjectVariantsPayload struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

// SyncVariants handles POST /projects/{id}/sync-variants: enqueues a single
// "sync_project_variants" job. The worker pool picks it up, lists the
// project's image files, and fans out one "sync_file_variants" job per file
// (see internal/worker's handleSyncProjectVariants); this handler never
// touches the file list or renders anything itself.
func (h *ProjectHandler) SyncVariants(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			NotFound(w, "project not found")
			return
		}
		InternalServerError(w, "failed to get project")
		return
	}
	if !canAccessProject(claims, project.OwnerID) {
		Forbidden(w, "access denied")
		return
	}

	payload, err := json.Marshal(syncProjectVariantsPayload{
		Type:      models.JobTypeSyncProjectVariants,
		ProjectID: project.ID,
	})
	if err != nil {
		InternalServerError(w, "failed to enqueue sync job")
		return
	}

	job := &models.Job{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		Status:    models.JobStatusPending,
		Payload:   payload,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.jobs.EnqueueJob(r.Context(), job); err != nil {
		InternalServerError(w, "failed to enqueue sync job")
		return
	}

	WriteJSONOK(w, SyncVariantsResponse{JobID: job.ID})
}
