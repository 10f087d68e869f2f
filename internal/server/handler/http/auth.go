// Package http provides the chi router and HTTP handlers of the content API.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/atinyakov/travelsite/internal/middleware"
	"github.com/atinyakov/travelsite/internal/models"
	"github.com/atinyakov/travelsite/internal/service"
)

// AuthService defines the authentication and account operations required
// by AuthHandler.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.Session, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, in models.UserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AuthHandler serves login and the admin user endpoints.
type AuthHandler struct {
	AuthService AuthService
	Log         *zap.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	Role    string `json:"role"`
}

// Login handles POST /api/auth/login. The token is returned at the top
// level of the body next to the role.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	render.JSON(w, r, loginResponse{Success: true, Message: "Login successful", Token: sess.Token, Role: sess.Role})
}

// ListUsers handles GET /api/users.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.AuthService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, users, "")
}

// CreateUser handles POST /api/users.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.AuthService.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusCreated, u, "User created successfully")
}

// UpdateUser handles PUT /api/users/{id}.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	u, err := h.AuthService.UpdateUser(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, u, "User updated successfully")
}

// DeleteUser handles DELETE /api/users/{id}. The caller's own account
// cannot be deleted.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if caller := middleware.ClaimsFromContext(r.Context()); caller.UserID != "" && caller.UserID == id {
		fail(w, r, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	if err := h.AuthService.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ok(w, r, http.StatusOK, nil, "User deleted successfully")
}
