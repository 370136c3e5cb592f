package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// ApiKeyHandler manages per-project API keys used to authenticate upload and
// job-submission requests. Access is gated the same way as the owning
// project: the project's owner, or an "su" caller.
type ApiKeyHandler struct {
	keys     store.ApiKeyStore
	projects store.ProjectStore
}

// NewApiKeyHandler creates an ApiKeyHandler.
func NewApiKeyHandler(keys store.ApiKeyStore, projects store.ProjectStore) *ApiKeyHandler {
	return &ApiKeyHandler{keys: keys, projects: projects}
}

// CreateApiKeyRequest is the request body for POST /projects/{id}/keys.
type CreateApiKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ApiKeyResponse is the API representation of an ApiKey. Key is only
// populated in the response to Create, the one time the plaintext value is
// available.
type ApiKeyResponse struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Name      string     `json:"name"`
	Key       string     `json:"key,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func apiKeyToResponse(k *models.ApiKey) ApiKeyResponse {
	return ApiKeyResponse{
		ID:        k.ID,
		ProjectID: k.ProjectID,
		Name:      k.Name,
		IsActive:  k.IsActive,
		CreatedAt: k.CreatedAt,
		ExpiresAt: k.ExpiresAt,
	}
}

func generateApiKey() (plaintext, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	plaintext = "mk_" + hex.EncodeToString(raw)
	return plaintext, hashToken(plaintext), nil
}

func (h *ApiKeyHandler) authorizeProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return nil, false
	}

	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "id"))
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

// Create handles POST /projects/{id}/keys: mints a new API key and returns
// its plaintext value exactly once.
func (h *ApiKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorizeProject(w, r)
	if !ok {
		return
	}

	var req CreateApiKeyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	plaintext, hash, err := generateApiKey()
	if err != nil {
		InternalServerError(w, "failed to generate API key")
		return
	}

	key := &models.ApiKey{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		Name:      req.Name,
		KeyHash:   hash,
		CreatedAt: time.Now(),
		ExpiresAt: req.ExpiresAt,
		IsActive:  true,
	}

	if _, err := h.keys.CreateApiKey(r.Context(), key); err != nil {
		if errors.Is(err, models.ErrDuplicateApiKey) {
			Conflict(w, "API key already exists")
			return
		}
		InternalServerError(w, "failed to create API key")
		return
	}

	response := apiKeyToResponse(key)
	response.Key = plaintext
	WriteJSONCreated(w, response)
}

// List handles GET /projects/{id}/keys.
func (h *ApiKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorizeProject(w, r)
	if !ok {
		return
	}

	keys, err := h.keys.ListApiKeysByProject(r.Context(), project.ID)
	if err != nil {
		InternalServerError(w, "failed to list API keys")
		return
	}

	response := make([]ApiKeyResponse, len(keys))
	for i, k := range keys {
		response[i] = apiKeyToResponse(k)
	}
	WriteJSONOK(w, response)
}

// Revoke handles DELETE /projects/{id}/keys/{keyID}: marks the key inactive
// rather than deleting it, preserving the audit trail of what it was used for.
func (h *ApiKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	project, ok := h.authorizeProject(w, r)
	if !ok {
		return
	}

	keys, err := h.keys.ListApiKeysByProject(r.Context(), project.ID)
	if err != nil {
		InternalServerError(w, "failed to list API keys")
		return
	}

	keyID := chi.URLParam(r, "keyID")
	var target *models.ApiKey
	for _, k := range keys {
		if k.ID == keyID {
			target = k
			break
		}
	}
	if target == nil {
		NotFound(w, "API key not found")
		return
	}

	target.IsActive = false
	if err := h.keys.UpdateApiKey(r.Context(), target); err != nil {
		InternalServerError(w, "failed to revoke API key")
		return
	}
	WriteNoContent(w)
}
