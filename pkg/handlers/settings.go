package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// IsolationRequest for PUT /settings/isolation
type IsolationRequest struct {
	Isolation string `json:"isolation"`
}

// SettingsHandler handles the settings page and the workspace reset.
type SettingsHandler struct {
	settingsService services.SettingsService
	sessions        *Sessions
	logger          *zap.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settingsService services.SettingsService, sessions *Sessions, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		sessions:        sessions,
		logger:          logger,
	}
}

// RegisterRoutes registers the settings handler's routes on the given mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /settings", h.Get)
	mux.HandleFunc("POST /settings/reset", h.Reset)
	mux.HandleFunc("PUT /settings/isolation", h.SetIsolation)
}

// Get handles GET /settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.settingsService.GetSettings(r.Context(), h.sessions.Isolation(r)))
}

// Reset handles POST /settings/reset
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	notice, err := h.settingsService.Reset(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "Failed to reset workspace", err)
		return
	}
	writeData(w, h.logger, http.StatusOK, notice)
}

// SetIsolation handles PUT /settings/isolation
func (h *SettingsHandler) SetIsolation(w http.ResponseWriter, r *http.Request) {
	var req IsolationRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	isolation := models.SourceIsolation(req.Isolation)
	if isolation != models.IsolationMilitary && isolation != models.IsolationCombined {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "isolation must be military or combined")
		return
	}

	h.sessions.SetIsolation(r.Context(), isolation)
	writeData(w, h.logger, http.StatusOK, IsolationRequest{Isolation: string(isolation)})
}
