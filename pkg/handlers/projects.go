package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// CreateProjectRequest for POST /projects
type CreateProjectRequest struct {
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Region     string             `json:"region"`
	TimeWindow *models.TimeWindow `json:"timeWindow,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
}

// ProjectsHandler handles the projects page.
type ProjectsHandler struct {
	projectService services.ProjectService
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /projects", h.List)
	mux.HandleFunc("POST /projects", h.Create)
}

// List handles GET /projects?q=
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.logger, http.StatusOK, h.projectService.List(r.Context(), r.URL.Query().Get("q")))
}

// Create handles POST /projects
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	project, err := h.projectService.Create(r.Context(), models.ProjectInput{
		Name:       req.Name,
		Type:       req.Type,
		Region:     req.Region,
		TimeWindow: req.TimeWindow,
		Tags:       req.Tags,
	})
	if err != nil {
		writeServiceError(w, h.logger, "Failed to create project", err, zap.String("name", req.Name))
		return
	}

	h.logger.Info("Project created", zap.String("project_id", project.ID))
	w.Header().Set("Location", "/projects/"+project.ID+"/overview")
	writeData(w, h.logger, http.StatusCreated, project)
}
