package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// maxUploadBytes bounds uploaded military report files.
const maxUploadBytes = 1 << 20

// MilitaryReportRequest for POST /projects/{pid}/ingest/military as JSON.
// Multipart uploads send the report in a "file" field instead.
type MilitaryReportRequest struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

// IngestHandler handles the ingest tab.
type IngestHandler struct {
	ingestService services.IngestService
	logger        *zap.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingestService services.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// RegisterRoutes registers the ingest handler's routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/projects/{pid}/ingest"

	mux.HandleFunc("GET "+base, h.Get)
	mux.HandleFunc("POST "+base+"/military", h.UploadMilitary)
	mux.HandleFunc("POST "+base+"/public", h.AddPublic)
	mux.HandleFunc("POST "+base+"/fetch", h.Fetch)
}

// Get handles GET /projects/{pid}/ingest
func (h *IngestHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.ingestService.GetIngest(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build ingest view", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, view)
}

// UploadMilitary handles POST /projects/{pid}/ingest/military
func (h *IngestHandler) UploadMilitary(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req MilitaryReportRequest
	if isJSON(r) {
		if !decodeJSON(w, r, &req, h.logger) {
			return
		}
	} else {
		var err error
		if req, err = readUploadedReport(w, r); err != nil {
			h.logger.Debug("Invalid report upload", zap.Error(err))
			writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Expected a multipart upload with a file field")
			return
		}
	}

	report, err := h.ingestService.StageMilitaryReport(r.Context(), projectID, req.FileName, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to stage military report", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusCreated, report)
}

func readUploadedReport(w http.ResponseWriter, r *http.Request) (MilitaryReportRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return MilitaryReportRequest{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return MilitaryReportRequest{}, err
	}
	return MilitaryReportRequest{FileName: header.Filename, Text: string(data)}, nil
}

// AddPublic handles POST /projects/{pid}/ingest/public
func (h *IngestHandler) AddPublic(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.PublicItemInput
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	item, err := h.ingestService.AddPublicItem(r.Context(), projectID, req)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to add public item", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusCreated, item)
}

// Fetch handles POST /projects/{pid}/ingest/fetch
func (h *IngestHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.FetchRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.ingestService.SimulateFetch(r.Context(), projectID, req)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to fetch public sources", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, result)
}
