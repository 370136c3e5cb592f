package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/logger"
	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/handlers"
	apimw "github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/middleware"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

const passwordChangePath = "/api/v1/users/me/password"

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health, /health/ready - liveness and readiness probes
//   - POST /api/v1/auth/{login,refresh,logout} - session issuance
//   - GET /api/v1/auth/me - current user info
//   - POST /api/v1/users/me/password - change own password
//   - /api/v1/users/* - user management (su only)
//   - /api/v1/projects/* - project CRUD, scoped to owner unless su
//   - /api/v1/projects/{id}/keys/* - per-project API key management
//   - /api/v1/projects/{id}/sync-variants - fan out variant regeneration
//   - /api/v1/projects/{id}/jobs, /api/v1/files/* - JWT-authenticated reads
//   - /api/v1/admin/jobs - cross-project job visibility (admin/su)
//   - /upload/{file,image}, /jobs - API-key-authenticated upload clients
func NewRouter(jwtService *auth.JWTService, cpStore store.Store, objStore *objectstore.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(cpStore, objStore)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(cpStore, cpStore, jwtService)
	userHandler, err := handlers.NewUserHandler(cpStore, jwtService)
	if err != nil {
		panic("failed to create user handler: " + err.Error())
	}
	projectHandler := handlers.NewProjectHandler(cpStore, cpStore, cpStore)
	apiKeyHandler := handlers.NewApiKeyHandler(cpStore, cpStore)
	fileHandler := handlers.NewFileHandler(cpStore, cpStore, objStore)
	jobHandler := handlers.NewJobHandler(cpStore, cpStore, cpStore)
	uploadHandler := handlers.NewUploadHandler(cpStore, cpStore, objStore)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(apimw.JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		r.Route("/users/me/password", func(r chi.Router) {
			r.Use(apimw.JWTAuth(jwtService))
			r.Post("/", userHandler.ChangeOwnPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(apimw.JWTAuth(jwtService))
			r.Use(apimw.RequirePasswordChange(passwordChangePath))

			r.Route("/users", func(r chi.Router) {
				r.Get("/{id}", userHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(apimw.RequireSu())
					r.Post("/", userHandler.Create)
					r.Get("/", userHandler.List)
					r.Put("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
					r.Post("/{id}/password", userHandler.ResetPassword)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.Create)
				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Post("/{id}/sync-variants", projectHandler.SyncVariants)

				r.Route("/{id}/keys", func(r chi.Router) {
					r.Post("/", apiKeyHandler.Create)
					r.Get("/", apiKeyHandler.List)
					r.Delete("/{keyID}", apiKeyHandler.Revoke)
				})

				r.Get("/{id}/files", fileHandler.ListByProject)
				r.Get("/{id}/jobs", jobHandler.ListByProject)
			})

			r.Route("/files", func(r chi.Router) {
				r.Use(apimw.RequireSu())
				r.Get("/", fileHandler.List)
			})
			r.Get("/files/{id}", fileHandler.Get)
			r.Get("/files/{id}/content", fileHandler.GetContent)
			r.Delete("/files/{id}", fileHandler.Delete)

			r.Route("/admin/jobs", func(r chi.Router) {
				r.Use(apimw.RequireAdmin())
				r.Get("/", jobHandler.List)
			})
			r.Get("/jobs/{id}", jobHandler.Get)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAPIKey(cpStore))

		r.Post("/upload/file", func(w http.ResponseWriter, r *http.Request) {
			uploadHandler.File(w, r, apimw.ProjectFromContext(r.Context()))
		})
		r.Post("/upload/image", func(w http.ResponseWriter, r *http.Request) {
			uploadHandler.Image(w, r, apimw.ProjectFromContext(r.Context()))
		})
		r.Get("/jobs", func(w http.ResponseWriter, r *http.Request) {
			jobHandler.ListByApiKey(w, r, apimw.ProjectFromContext(r.Context()).ID)
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the internal
// logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimw.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
