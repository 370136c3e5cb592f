package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/objectkey"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// maxUploadSize bounds the buffered multipart body read into memory: uploads
// are single buffered fields, not streamed, matching the upstream service's
// one-shot put_object call.
const maxUploadSize = 64 << 20 // 64 MiB

// UploadHandler accepts project-scoped file and image uploads authenticated
// by API key. Image uploads additionally enqueue a variant-generation job.
type UploadHandler struct {
	files   store.FileStore
	jobs    store.JobStore
	objects *objectstore.Client
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(files store.FileStore, jobs store.JobStore, objects *objectstore.Client) *UploadHandler {
	return &UploadHandler{files: files, jobs: jobs, objects: objects}
}

// FileUploadResponse is the response body for POST /upload/file.
type FileUploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// ImageUploadResponse is the response body for POST /upload/image. Variants
// aren't included: variants_map is only ever populated by the worker's
// completion write, so right after upload there's nothing ready to report.
// Callers poll GET /files/{id} (or GET /jobs/{id}) to learn when variants
// exist.
type ImageUploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Status   string `json:"status"`
}

func extensionOf(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "bin"
	}
	return strings.ToLower(ext)
}

func readUploadField(r *http.Request) (filename, mimeType string, data []byte, ok bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", "", nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, false
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return "", "", nil, false
	}

	mimeType = header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return header.Filename, mimeType, data, true
}

// File handles POST /upload/file: stores the uploaded bytes as-is and
// records a "ready" File row immediately — non-image uploads have no
// variant-generation step.
func (h *UploadHandler) File(w http.ResponseWriter, r *http.Request, project *models.Project) {
	filename, mimeType, data, ok := readUploadField(r)
	if !ok {
		BadRequest(w, "no file field found")
		return
	}

	fileID := uuid.NewString()
	key := objectkey.File(project.Name, project.ID, fileID, extensionOf(filename))

	if err := h.objects.Put(r.Context(), key, data, mimeType); err != nil {
		InternalServerError(w, "failed to store file")
		return
	}

	file := &models.File{
		ID:        fileID,
		ProjectID: project.ID,
		S3Key:     key,
		Filename:  filename,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Status:    models.FileStatusReady,
		Variants:  json.RawMessage(`{}`),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.files.CreateFile(r.Context(), file); err != nil {
		InternalServerError(w, "failed to save file")
		return
	}

	WriteJSONOK(w, FileUploadResponse{
		ID:       file.ID,
		Filename: file.Filename,
		MimeType: file.MimeType,
		Size:     file.Size,
	})
}

// processImagePayload is the legacy job payload shape: a bare variants
// configuration with no "type" discriminator, sniffed by the worker as
// a process_image job when "type" is absent but "variants" is present.
type processImagePayload struct {
	Variants map[string]models.VariantConfig `json:"variants"`
}

// Image handles POST /upload/image: rejects non-image content types, stores
// the original at status=processing with an empty variants_map, and
// enqueues the processing job that will render each configured variant.
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request, project *models.Project) {
	filename, mimeType, data, ok := readUploadField(r)
	if !ok {
		BadRequest(w, "no file field found")
		return
	}
	if !strings.HasPrefix(mimeType, "image/") {
		BadRequest(w, "file is not an image")
		return
	}

	fileID := uuid.NewString()
	ext := extensionOf(filename)
	originalKey := objectkey.Original(project.Name, project.ID, fileID, ext)

	if err := h.objects.Put(r.Context(), originalKey, data, mimeType); err != nil {
		InternalServerError(w, "failed to store image")
		return
	}

	variantConfigs := project.ParsedSettings().Variants

	// variants_map stays empty until the worker's completion write: every
	// entry present there must have a backing object, and none exists until
	// rendering finishes.
	file := &models.File{
		ID:        fileID,
		ProjectID: project.ID,
		S3Key:     originalKey,
		Filename:  filename,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		Status:    models.FileStatusProcessing,
		Variants:  json.RawMessage(`{}`),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.files.CreateFile(r.Context(), file); err != nil {
		InternalServerError(w, "failed to save file")
		return
	}

	jobPayload, err := json.Marshal(processImagePayload{Variants: variantConfigs})
	if err != nil {
		InternalServerError(w, "failed to encode job payload")
		return
	}
	job := &models.Job{
		ID:        uuid.NewString(),
		FileID:    file.ID,
		Status:    models.JobStatusPending,
		Payload:   jobPayload,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := h.jobs.EnqueueJob(r.Context(), job); err != nil {
		InternalServerError(w, "failed to enqueue processing job")
		return
	}

	WriteJSONOK(w, ImageUploadResponse{
		ID:       file.ID,
		Filename: file.Filename,
		MimeType: file.MimeType,
		Size:     file.Size,
		Status:   file.Status,
	})
}
