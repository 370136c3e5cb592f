package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

const (
	defaultFilePage  = 1
	defaultFileLimit = 50
	maxFileLimit     = 200
	contentURLTTL    = time.Hour
)

// FileHandler serves file metadata and presigned access to file content. It
// never proxies object bytes itself; GetContent hands back a time-limited
// URL the caller fetches directly from the object store.
type FileHandler struct {
	files    store.FileStore
	projects store.ProjectStore
	objects  *objectstore.Client
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(files store.FileStore, projects store.ProjectStore, objects *objectstore.Client) *FileHandler {
	return &FileHandler{files: files, projects: projects, objects: objects}
}

// FileResponse is the API representation of a File.
type FileResponse struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"project_id"`
	Filename  string            `json:"filename"`
	MimeType  string            `json:"mime_type"`
	Size      int64             `json:"size"`
	Status    string            `json:"status"`
	Variants  map[string]string `json:"variants,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func fileToResponse(f *models.File) FileResponse {
	return FileResponse{
		ID:        f.ID,
		ProjectID: f.ProjectID,
		Filename:  f.Filename,
		MimeType:  f.MimeType,
		Size:      f.Size,
		Status:    f.Status,
		Variants:  f.VariantMap(),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

type pagedResponse struct {
	Items      any   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
}

func parsePageLimit(r *http.Request) (page, limit int) {
	page = defaultFilePage
	limit = defaultFileLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= maxFileLimit {
		limit = v
	}
	return page, limit
}

func (h *FileHandler) authorizeProject(w http.ResponseWriter, r *http.Request, projectID string) (*models.Project, bool) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return nil, false
	}

	project, err := h.projects.GetProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, models.ErrProjectNotFound) {
			NotFound(w, "project not found")
			return nil, false
		}
		InternalServerError(w, "failed to get project")
		return nil, false
	}
	if !canAccessProject(claims, project.OwnerID) {
		Forbidden(w, "access denied")
		return nil, false
	}
	return project, true
}

// ListByProject handles GET /projects/{id}/files.
func (h *FileHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorizeProject(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	page, limit := parsePageLimit(r)
	files, total, err := h.files.ListFilesByProject(r.Context(), project.ID, page, limit)
	if err != nil {
		InternalServerError(w, "failed to list files")
		return
	}

	items := make([]FileResponse, len(files))
	for i, f := range files {
		items[i] = fileToResponse(f)
	}
	WriteJSONOK(w, pagedResponse{Items: items, Page: page, Limit: limit, TotalCount: total})
}

// List handles GET /files (su only): every file across every project.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageLimit(r)
	files, total, err := h.files.ListAllFiles(r.Context(), page, limit)
	if err != nil {
		InternalServerError(w, "failed to list files")
		return
	}

	items := make([]FileResponse, len(files))
	for i, f := range files {
		items[i] = fileToResponse(f)
	}
	WriteJSONOK(w, pagedResponse{Items: items, Page: page, Limit: limit, TotalCount: total})
}

func (h *FileHandler) getOwnedFile(w http.ResponseWriter, r *http.Request) (*models.File, bool) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return nil, false
	}

	file, err := h.files.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			NotFound(w, "file not found")
			return nil, false
		}
		InternalServerError(w, "failed to get file")
		return nil, false
	}

	project, err := h.projects.GetProject(r.Context(), file.ProjectID)
	if err != nil {
		InternalServerError(w, "failed to get file")
		return nil, false
	}
	if !canAccessProject(claims, project.OwnerID) {
		Forbidden(w, "access denied")
		return nil, false
	}
	return file, true
}

// Get handles GET /files/{id}.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, ok := h.getOwnedFile(w, r)
	if !ok {
		return
	}
	WriteJSONOK(w, fileToResponse(file))
}

// GetContent handles GET /files/{id}/content?variant=<name>: redirects to a
// 1-hour signed URL against the resolved key rather than proxying the
// object's bytes through this service. With no variant query parameter, the
// original is served.
func (h *FileHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	file, ok := h.getOwnedFile(w, r)
	if !ok {
		return
	}

	key := file.S3Key
	if variant := r.URL.Query().Get("variant"); variant != "" {
		if file.Status != models.FileStatusReady {
			NotFound(w, "variant not found")
			return
		}
		variantKey, ok := file.VariantMap()[variant]
		if !ok {
			NotFound(w, "variant not found")
			return
		}
		key = variantKey
	}

	url, err := h.objects.PresignGet(r.Context(), key, contentURLTTL)
	if err != nil {
		InternalServerError(w, "failed to presign content URL")
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Delete handles DELETE /files/{id}: a best-effort delete of the original
// and every variant object, then the row delete. Object delete failures are
// ignored and do not stop the row delete.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	file, ok := h.getOwnedFile(w, r)
	if !ok {
		return
	}
	_ = h.objects.Delete(r.Context(), h.objects.Resolve(file.S3Key))
	for _, key := range file.VariantMap() {
		_ = h.objects.Delete(r.Context(), h.objects.Resolve(key))
	}
	if err := h.files.DeleteFile(r.Context(), file.ID); err != nil {
		InternalServerError(w, "failed to delete file")
		return
	}
	WriteNoContent(w)
}
