package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// SpotrepHandler handles the SPOTREP tab and its exports. Every route
// accepts ?version= and defaults to the latest version.
type SpotrepHandler struct {
	spotrepService services.SpotrepService
	logger         *zap.Logger
}

// NewSpotrepHandler creates a new SPOTREP handler.
func NewSpotrepHandler(spotrepService services.SpotrepService, logger *zap.Logger) *SpotrepHandler {
	return &SpotrepHandler{
		spotrepService: spotrepService,
		logger:         logger,
	}
}

// RegisterRoutes registers the SPOTREP handler's routes on the given mux.
func (h *SpotrepHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/projects/{pid}/spotrep"

	mux.HandleFunc("GET "+base, h.Get)
	mux.HandleFunc("GET "+base+"/text", h.Text)
	mux.HandleFunc("GET "+base+"/export.yaml", h.ExportYAML)
	mux.HandleFunc("POST "+base+"/export/pdf", h.ExportPDF)
}

// Get handles GET /projects/{pid}/spotrep
func (h *SpotrepHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.spotrepService.GetSpotrep(r.Context(), projectID, r.URL.Query().Get("version"))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to get SPOTREP", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, view)
}

// Text handles GET /projects/{pid}/spotrep/text, the clipboard payload.
func (h *SpotrepHandler) Text(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	text, err := h.spotrepService.CopyText(r.Context(), projectID, r.URL.Query().Get("version"))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build SPOTREP text", err, zap.String("project_id", projectID))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(text)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ExportYAML handles GET /projects/{pid}/spotrep/export.yaml
func (h *SpotrepHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	version := r.URL.Query().Get("version")
	data, err := h.spotrepService.ExportYAML(r.Context(), projectID, version)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to export SPOTREP", err, zap.String("project_id", projectID))
		return
	}

	name := projectID + "-spotrep"
	if version != "" {
		name = version
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".yaml"))
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ExportPDF handles POST /projects/{pid}/spotrep/export/pdf. No document is
// produced; the request is acknowledged with 202.
func (h *SpotrepHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	notice, err := h.spotrepService.ExportPDF(r.Context(), projectID, r.URL.Query().Get("version"))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to export SPOTREP", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusAccepted, notice)
}
