// Package http provides the HTTP handlers and router for the API:
// account registration and session login, exercise and performance
// writes, and the aggregated training views.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/projetgotham/gotham/internal/middleware"
	"github.com/projetgotham/gotham/internal/models"
	"github.com/projetgotham/gotham/internal/service"
)

// AuthService defines the interface for account operations
// required by the HTTP handlers.
type AuthService interface {
	// CreateUser registers a new user.
	CreateUser(ctx context.Context, in service.CreateUserInput) error
	// Login verifies a username/password pair and returns the user.
	Login(ctx context.Context, username, password string) (models.User, error)
}

// AuthHandler handles HTTP requests for registration, login and
// logout.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
	// Sessions stores the login session cookie.
	Sessions sessions.Store
}

// RegisterRequest represents the JSON payload for user registration.
// Only username and password are required; the optional profile
// fields are stored as-is.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Age      string `json:"age,omitempty"`
	Height   string `json:"height,omitempty"`
}

// Register handles POST /api/register. A duplicate username answers
// 409; a missing required field answers 400.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.AuthService.CreateUser(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Gender:   req.Gender,
		Age:      req.Age,
		Height:   req.Height,
	})
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrUsernameTaken):
		http.Error(w, "username already taken", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/login. On success it opens a session
// carrying the user identifier and role and returns the role; a wrong
// password, an unknown username and an inactive account all answer
// 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	session, _ := h.Sessions.Get(r, middleware.SessionName)
	session.Values["user_id"] = user.ID
	session.Values["role"] = user.Role
	if err := session.Save(r, w); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": user.Role})
}

// Logout handles POST /api/logout by expiring the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Sessions.Get(r, middleware.SessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
