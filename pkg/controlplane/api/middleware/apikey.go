package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/handlers"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

type apiKeyProjectContextKey struct{}

// ProjectFromContext returns the project resolved by RequireAPIKey, or nil if
// the request was not authenticated with an API key.
func ProjectFromContext(ctx context.Context) *models.Project {
	project, _ := ctx.Value(apiKeyProjectContextKey{}).(*models.Project)
	return project
}

// RequireAPIKey authenticates upload and job routes against the
// "X-API-Key" header: the key is hashed and looked up directly, so plaintext
// keys are never stored or compared in non-constant time against a database
// value. The resolved project is stashed in the request context.
func RequireAPIKey(keyStore store.ApiKeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := r.Header.Get("X-API-Key")
			if rawKey == "" {
				handlers.Unauthorized(w, "missing X-API-Key header")
				return
			}

			sum := sha256.Sum256([]byte(rawKey))
			hash := hex.EncodeToString(sum[:])

			key, project, err := keyStore.GetApiKeyByHash(r.Context(), hash)
			if err != nil {
				handlers.Unauthorized(w, "invalid API key")
				return
			}
			if !key.IsValid(time.Now()) {
				handlers.Unauthorized(w, "API key is inactive or expired")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyProjectContextKey{}, project)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
