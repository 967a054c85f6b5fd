package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// LoginRequest for POST /login. The password is accepted and ignored.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned after the bypassed login.
type LoginResponse struct {
	Email    string          `json:"email"`
	Notice   services.Notice `json:"notice"`
	Redirect string          `json:"redirect"`
}

// AuthHandler serves the root redirect and the demo login.
type AuthHandler struct {
	settingsService services.SettingsService
	sessions        *Sessions
	logger          *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(settingsService services.SettingsService, sessions *Sessions, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		settingsService: settingsService,
		sessions:        sessions,
		logger:          logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /login", h.GetLogin)
	mux.HandleFunc("POST /login", h.Login)
}

// Root handles GET / by redirecting to the login page.
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// GetLogin handles GET /login
func (h *AuthHandler) GetLogin(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.settingsService.GetLogin(r.Context()))
}

// Login handles POST /login. Any credentials are accepted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, h.logger) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = services.DefaultLoginEmail
	}

	notice := h.settingsService.Login(r.Context(), email)
	if err := h.sessions.SignIn(r.Context(), email); err != nil {
		writeServiceError(w, h.logger, "Failed to start session", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, LoginResponse{
		Email:    email,
		Notice:   *notice,
		Redirect: "/projects",
	})
}
