package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/api/auth"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/models"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// UserHandler manages user accounts. Listing/creating/updating/deleting is
// restricted to the "su" role at the router level; every user may read and
// change their own profile.
type UserHandler struct {
	store      store.UserStore
	jwtService *auth.JWTService
}

// NewUserHandler creates a UserHandler. jwtService is required because
// ChangeOwnPassword must mint fresh tokens reflecting the cleared
// MustChangePassword flag.
func NewUserHandler(s store.UserStore, jwtService *auth.JWTService) (*UserHandler, error) {
	if jwtService == nil {
		return nil, errors.New("NewUserHandler: jwtService must not be nil")
	}
	return &UserHandler{store: s, jwtService: jwtService}, nil
}

// CreateUserRequest is the request body for POST /users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest is the request body for PUT /users/{id}.
type UpdateUserRequest struct {
	Role *string `json:"role,omitempty"`
}

// ChangePasswordRequest is the request body for password change endpoints.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
}

func isValidRole(role string) bool {
	switch models.Role(role) {
	case models.RoleSu, models.RoleAdmin, models.RoleUser:
		return true
	}
	return false
}

// Create handles POST /users (su only).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		BadRequest(w, "username and password are required")
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		if !isValidRole(req.Role) {
			BadRequest(w, "role must be one of su, admin, user")
			return
		}
		role = models.Role(req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalServerError(w, "failed to hash password")
		return
	}

	user := &models.User{
		ID:                 uuid.NewString(),
		Username:           req.Username,
		PasswordHash:       string(hash),
		Role:               role,
		MustChangePassword: true,
		CreatedAt:          time.Now(),
	}

	if _, err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			Conflict(w, "user already exists")
			return
		}
		InternalServerError(w, "failed to create user")
		return
	}

	WriteJSONCreated(w, userToResponse(user))
}

// List handles GET /users (su only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		InternalServerError(w, "failed to list users")
		return
	}

	response := make([]UserResponse, len(users))
	for i, u := range users {
		response[i] = userToResponse(u)
	}
	WriteJSONOK(w, response)
}

// Get handles GET /users/{id}. Self-access is always allowed; otherwise su
// is required (enforced at the router level for other users' IDs is not
// practical here, so this handler re-checks).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}
	if !claims.IsSu() && claims.UserID != id {
		Forbidden(w, "access denied")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "user not found")
			return
		}
		InternalServerError(w, "failed to get user")
		return
	}
	WriteJSONOK(w, userToResponse(user))
}

// Update handles PUT /users/{id} (su only).
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "user not found")
			return
		}
		InternalServerError(w, "failed to get user")
		return
	}

	if req.Role != nil {
		if !isValidRole(*req.Role) {
			BadRequest(w, "role must be one of su, admin, user")
			return
		}
		user.Role = models.Role(*req.Role)
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "failed to update user")
		return
	}
	WriteJSONOK(w, userToResponse(user))
}

// Delete handles DELETE /users/{id} (su only).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "user not found")
			return
		}
		InternalServerError(w, "failed to delete user")
		return
	}
	WriteNoContent(w)
}

// ResetPassword handles POST /users/{id}/password (su only): sets a new
// password and forces the user to change it again on next login.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		BadRequest(w, "new_password is required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "user not found")
			return
		}
		InternalServerError(w, "failed to get user")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalServerError(w, "failed to hash password")
		return
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = true
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "failed to update user")
		return
	}
	WriteNoContent(w)
}

// ChangeOwnPassword handles POST /users/me/password: the caller changes
// their own password, clearing MustChangePassword and re-issuing tokens.
func (h *UserHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		BadRequest(w, "new_password is required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		Unauthorized(w, "user not found")
		return
	}

	if !user.MustChangePassword {
		if req.CurrentPassword == "" {
			BadRequest(w, "current_password is required")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			Unauthorized(w, "current password is incorrect")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalServerError(w, "failed to hash password")
		return
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "failed to update user")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		InternalServerError(w, "failed to generate new tokens")
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
