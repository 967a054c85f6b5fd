package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// SyncHandler serves the status bar's sync indicator.
type SyncHandler struct {
	syncService services.SyncService
	logger      *zap.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService services.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{syncService: syncService, logger: logger}
}

// RegisterRoutes registers the sync handler's routes on the given mux.
func (h *SyncHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sync", h.Status)
	mux.HandleFunc("POST /api/sync", h.Trigger)
}

// Status handles GET /api/sync
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.syncService.Status())
}

// Trigger handles POST /api/sync
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.syncService.Trigger())
}
