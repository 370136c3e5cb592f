// Package middleware provides HTTP middleware for the control-plane API:
// JWT session authentication and role gating.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/handlers"
)

// GetClaimsFromContext returns the JWT claims stashed by JWTAuth, or nil if
// the request context carries none.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	return auth.ClaimsFromContext(ctx)
}

// extractBearerToken pulls the token out of a "Bearer <token>" Authorization
// header. The scheme match is case-insensitive; everything after the first
// space is taken verbatim as the token.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// JWTAuth requires a valid access token and stashes its claims in the
// request context. Missing or invalid tokens are rejected with 401.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				handlers.Unauthorized(w, "missing or malformed bearer token")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				handlers.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth stashes claims in the request context when a valid access
// token is present, but never rejects the request when one is missing or
// invalid — used by routes that behave differently for anonymous callers
// without requiring a session.
func OptionalJWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose claims are absent (401) or whose role
// is neither admin nor su (403). Must run after JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				handlers.Unauthorized(w, "authentication required")
				return
			}
			if !claims.IsAdmin() {
				handlers.Forbidden(w, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSu rejects requests whose claims are absent (401) or whose role is
// not su (403). Used for operations that bypass ownership checks entirely,
// such as listing every user in the system.
func RequireSu() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				handlers.Unauthorized(w, "authentication required")
				return
			}
			if !claims.IsSu() {
				handlers.Forbidden(w, "superuser role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePasswordChange blocks every request from a user flagged
// MustChangePassword, except requests to one of exemptPaths (matched after
// trimming a trailing slash). Must run after JWTAuth.
func RequirePasswordChange(exemptPaths ...string) func(http.Handler) http.Handler {
	normalized := make([]string, len(exemptPaths))
	for i, p := range exemptPaths {
		normalized[i] = strings.TrimSuffix(p, "/")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				handlers.Unauthorized(w, "authentication required")
				return
			}

			if claims.MustChangePassword {
				path := strings.TrimSuffix(r.URL.Path, "/")
				exempt := false
				for _, p := range normalized {
					if path == p {
						exempt = true
						break
					}
				}
				if !exempt {
					handlers.Forbidden(w, "password change required before continuing")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
