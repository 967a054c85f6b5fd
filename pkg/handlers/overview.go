package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// OverviewHandler handles the overview tab and its live update feed.
type OverviewHandler struct {
	overviewService services.OverviewService
	realtime        services.RealtimeService
	sessions        *Sessions
	logger          *zap.Logger
}

// NewOverviewHandler creates a new overview handler. realtime may be nil.
func NewOverviewHandler(overviewService services.OverviewService, realtime services.RealtimeService, sessions *Sessions, logger *zap.Logger) *OverviewHandler {
	return &OverviewHandler{
		overviewService: overviewService,
		realtime:        realtime,
		sessions:        sessions,
		logger:          logger,
	}
}

// RegisterRoutes registers the overview handler's routes on the given mux.
func (h *OverviewHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projects/{pid}/overview", h.Get)
	mux.HandleFunc("GET /projects/{pid}/overview/events", h.Events)
}

// Get handles GET /projects/{pid}/overview
func (h *OverviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	overview, err := h.overviewService.GetOverview(r.Context(), projectID, h.sessions.Isolation(r))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build overview", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, overview)
}

// Events handles GET /projects/{pid}/overview/events?since=RFC3339, the
// polling endpoint for live ingestion toasts.
func (h *OverviewHandler) Events(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}

	events := []services.RealtimeEvent{}
	if h.realtime != nil {
		events = append(events, h.realtime.Events(projectID, since)...)
	}
	writeData(w, h.logger, http.StatusOK, events)
}
