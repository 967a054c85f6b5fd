package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// TimelineHandler handles the timeline and map tab.
type TimelineHandler struct {
	timelineService services.TimelineService
	logger          *zap.Logger
}

// NewTimelineHandler creates a new timeline handler.
func NewTimelineHandler(timelineService services.TimelineService, logger *zap.Logger) *TimelineHandler {
	return &TimelineHandler{
		timelineService: timelineService,
		logger:          logger,
	}
}

// RegisterRoutes registers the timeline handler's routes on the given mux.
func (h *TimelineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projects/{pid}/timeline-map", h.Get)
}

// Get handles GET /projects/{pid}/timeline-map?filter=
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	filter := services.ParseTimelineFilter(r.URL.Query().Get("filter"))
	view, err := h.timelineService.GetTimeline(r.Context(), projectID, filter)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build timeline", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, view)
}
