package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// VerificationHandler handles the verification tab.
type VerificationHandler struct {
	verificationService services.VerificationService
	logger              *zap.Logger
}

// NewVerificationHandler creates a new verification handler.
func NewVerificationHandler(verificationService services.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		logger:              logger,
	}
}

// RegisterRoutes registers the verification handler's routes on the given mux.
func (h *VerificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projects/{pid}/verification", h.Get)
	mux.HandleFunc("GET /projects/{pid}/verification/items/{iid}", h.GetItem)
}

// Get handles GET /projects/{pid}/verification?verifiedOnly=
func (h *VerificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.verificationService.GetVerification(r.Context(), projectID, queryBool(r, "verifiedOnly", false))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build verification view", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, view)
}

// GetItem handles GET /projects/{pid}/verification/items/{iid}
func (h *VerificationHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	itemID, ok := ParseItemID(w, r, h.logger)
	if !ok {
		return
	}

	detail, err := h.verificationService.GetItem(r.Context(), projectID, itemID)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to get verification item", err,
			zap.String("project_id", projectID),
			zap.String("item_id", itemID))
		return
	}
	writeData(w, h.logger, http.StatusOK, detail)
}
