package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
)

// decodeJSONBody decodes a JSON request body into v. Returns true if
// successful, false if decoding fails (a 400 response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// MapStoreError maps a control-plane store sentinel error to an HTTP status
// code and message, centralizing error-to-response translation so handlers
// don't duplicate per-error switch blocks.
func MapStoreError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, models.ErrProjectNotFound):
		return http.StatusNotFound, "project not found"
	case errors.Is(err, models.ErrFileNotFound):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, models.ErrJobNotFound):
		return http.StatusNotFound, "job not found"
	case errors.Is(err, models.ErrApiKeyNotFound):
		return http.StatusNotFound, "API key not found"
	case errors.Is(err, models.ErrRefreshTokenNotFound):
		return http.StatusNotFound, "refresh token not found"
	case errors.Is(err, models.ErrDuplicateUser):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, models.ErrDuplicateApiKey):
		return http.StatusConflict, "API key already exists"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, models.ErrNoJobAvailable):
		return http.StatusNotFound, "no job available"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleStoreError maps a store error to an HTTP response and writes it.
func HandleStoreError(w http.ResponseWriter, err error) {
	status, msg := MapStoreError(err)
	WriteProblem(w, status, http.StatusText(status), msg)
}
