package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// AuthHandler handles login, token refresh, logout, and "who am I".
type AuthHandler struct {
	users      store.UserStore
	tokens     store.RefreshTokenStore
	jwtService *auth.JWTService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users store.UserStore, tokens store.RefreshTokenStore, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, jwtService: jwtService}
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the response body for login and refresh.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// UserResponse is a sanitized user representation for API responses.
type UserResponse struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// RefreshRequest is the request body for POST /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// storeRefreshToken persists the hash of a freshly issued refresh token.
func (h *AuthHandler) storeRefreshToken(r *http.Request, userID, refreshToken string, expiresAt time.Time) error {
	return h.tokens.CreateRefreshToken(r.Context(), &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hashToken(refreshToken),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	})
}

// Login handles POST /auth/login: validates credentials and issues a token
// pair, persisting the refresh token's hash so it can later be revoked.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		BadRequest(w, "username and password are required")
		return
	}

	user, err := h.users.ValidateCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		Unauthorized(w, "invalid username or password")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		InternalServerError(w, "failed to generate token")
		return
	}

	refreshExpiresAt := time.Now().Add(h.jwtService.GetRefreshTokenDuration())
	if err := h.storeRefreshToken(r, user.ID, pair.RefreshToken, refreshExpiresAt); err != nil {
		InternalServerError(w, "failed to persist session")
		return
	}

	WriteJSONOK(w, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt,
		User:         userToResponse(user),
	})
}

// Refresh handles POST /auth/refresh: validates the refresh token's JWT
// signature, confirms it has not been revoked, and rotates it for a new
// pair — the old hash is revoked so the same refresh token cannot be reused.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		BadRequest(w, "refresh_token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		Unauthorized(w, "invalid or expired refresh token")
		return
	}

	stored, err := h.tokens.GetRefreshTokenByHash(r.Context(), hashToken(req.RefreshToken))
	if err != nil || !stored.IsValid(time.Now()) {
		Unauthorized(w, "refresh token has been revoked")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		Unauthorized(w, "user not found")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		InternalServerError(w, "failed to generate token")
		return
	}

	_ = h.tokens.RevokeRefreshToken(r.Context(), stored.TokenHash)
	refreshExpiresAt := time.Now().Add(h.jwtService.GetRefreshTokenDuration())
	if err := h.storeRefreshToken(r, user.ID, pair.RefreshToken, refreshExpiresAt); err != nil {
		InternalServerError(w, "failed to persist session")
		return
	}

	WriteJSONOK(w, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    pair.ExpiresAt,
		User:         userToResponse(user),
	})
}

// Logout handles POST /auth/logout: revokes the supplied refresh token so it
// can no longer be used to mint new access tokens. Revoking an
// already-revoked or unknown token is not an error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.RefreshToken != "" {
		_ = h.tokens.RevokeRefreshToken(r.Context(), hashToken(req.RefreshToken))
	}
	WriteNoContent(w)
}

// Me handles GET /auth/me: returns the authenticated caller's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			Unauthorized(w, "user not found")
			return
		}
		InternalServerError(w, "failed to fetch user")
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

func userToResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Role:               string(user.Role),
		MustChangePassword: user.MustChangePassword,
	}
}
