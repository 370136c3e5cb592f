package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// JobHandler exposes read-only visibility into the processing queue. Jobs
// themselves are created by the upload handlers, the project sync-variants
// handler and the worker pool's fan-out, and only ever claimed/updated by
// the worker pool.
type JobHandler struct {
	jobs     store.JobStore
	projects store.ProjectStore
	files    store.FileStore
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs store.JobStore, projects store.ProjectStore, files store.FileStore) *JobHandler {
	return &JobHandler{jobs: jobs, projects: projects, files: files}
}

// JobResponse is the API representation of a Job.
type JobResponse struct {
	ID        string          `json:"id"`
	FileID    string          `json:"file_id,omitempty"`
	ProjectID string          `json:"project_id,omitempty"`
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func jobToResponse(j *models.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		FileID:    j.FileID,
		ProjectID: j.ProjectID,
		Status:    j.Status,
		Payload:   j.Payload,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ListByApiKey handles GET /jobs: the project-scoped view used by upload
// clients, authenticated by API key rather than a user session.
func (h *JobHandler) ListByApiKey(w http.ResponseWriter, r *http.Request, projectID string) {
	status := r.URL.Query().Get("status")
	page, limit := parsePageLimit(r)
	jobs, total, err := h.jobs.ListJobsByProject(r.Context(), projectID, status, page, limit)
	if err != nil {
		InternalServerError(w, "failed to list jobs")
		return
	}

	items := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = jobToResponse(j)
	}
	WriteJSONOK(w, pagedResponse{Items: items, Page: page, Limit: limit, TotalCount: total})
}

// ListByProject handles GET /projects/{id}/jobs.
func (h *JobHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	projectID := chi.URLParam(r, "id")
	project, err := h.projects.GetProject(r.Context(), projectID)
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

	status := r.URL.Query().Get("status")
	page, limit := parsePageLimit(r)
	jobs, total, err := h.jobs.ListJobsByProject(r.Context(), project.ID, status, page, limit)
	if err != nil {
		InternalServerError(w, "failed to list jobs")
		return
	}

	items := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = jobToResponse(j)
	}
	WriteJSONOK(w, pagedResponse{Items: items, Page: page, Limit: limit, TotalCount: total})
}

// List handles GET /admin/jobs: su sees every job system-wide, admin sees
// jobs across their own projects, and a plain user is rejected outright.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}
	if !claims.IsAdmin() {
		Forbidden(w, "insufficient permissions")
		return
	}

	var projects []*models.Project
	var err error
	if claims.IsSu() {
		projects, err = h.projects.ListAllProjects(r.Context())
	} else {
		projects, err = h.projects.ListProjectsByOwner(r.Context(), claims.UserID)
	}
	if err != nil {
		InternalServerError(w, "failed to list projects")
		return
	}

	projectIDs := make([]string, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
	}

	status := r.URL.Query().Get("status")
	jobs, err := h.jobs.ListJobsByProjects(r.Context(), projectIDs, status)
	if err != nil {
		InternalServerError(w, "failed to list jobs")
		return
	}

	items := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = jobToResponse(j)
	}
	WriteJSONOK(w, items)
}

// Get handles GET /jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			NotFound(w, "job not found")
			return
		}
		InternalServerError(w, "failed to get job")
		return
	}

	if !claims.IsSu() {
		projectID := job.ProjectID
		if projectID == "" {
			file, err := h.files.GetFile(r.Context(), job.FileID)
			if err != nil {
				InternalServerError(w, "failed to get job")
				return
			}
			projectID = file.ProjectID
		}
		project, err := h.projects.GetProject(r.Context(), projectID)
		if err != nil {
			InternalServerError(w, "failed to get job")
			return
		}
		if !canAccessProject(claims, project.OwnerID) {
			Forbidden(w, "access denied")
			return
		}
	}

	WriteJSONOK(w, jobToResponse(job))
}
