package handlers

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

var imageContentTypes = map[string]string{
	services.ImageFormatPNG: "image/png",
	services.ImageFormatSVG: "image/svg+xml",
}

// KnowledgeGraphHandler handles the knowledge graph tab and its images.
type KnowledgeGraphHandler struct {
	graphService services.KnowledgeGraphService
	logger       *zap.Logger
}

// NewKnowledgeGraphHandler creates a new knowledge graph handler.
func NewKnowledgeGraphHandler(graphService services.KnowledgeGraphService, logger *zap.Logger) *KnowledgeGraphHandler {
	return &KnowledgeGraphHandler{
		graphService: graphService,
		logger:       logger,
	}
}

// RegisterRoutes registers the knowledge graph handler's routes on the given mux.
func (h *KnowledgeGraphHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/projects/{pid}/knowledge-graph"

	mux.HandleFunc("GET "+base, h.Get)
	mux.HandleFunc("GET "+base+"/graph.png", h.image(services.ImageFormatPNG))
	mux.HandleFunc("GET "+base+"/graph.svg", h.image(services.ImageFormatSVG))
	mux.HandleFunc("GET "+base+"/entities/{eid}", h.GetEntity)
	mux.HandleFunc("GET "+base+"/relations/{rid}", h.GetRelation)
}

func graphQuery(r *http.Request) services.GraphQuery {
	q := r.URL.Query()
	return services.GraphQuery{
		Graph:     services.ParseGraphType(q.Get("graph")),
		Filter:    q.Get("filter"),
		HoverNode: q.Get("hover"),
		HoverLink: q.Get("hoverEdge"),
		Scale:     queryFloat(r, "scale", 1),
	}
}

// Get handles GET /projects/{pid}/knowledge-graph
func (h *KnowledgeGraphHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.graphService.GetGraph(r.Context(), projectID, graphQuery(r))
	if err != nil {
		writeServiceError(w, h.logger, "Failed to build knowledge graph", err, zap.String("project_id", projectID))
		return
	}
	writeData(w, h.logger, http.StatusOK, view)
}

// image handles GET /projects/{pid}/knowledge-graph/graph.{png,svg}. The
// image is rendered into memory first so failures still produce a JSON
// error body.
func (h *KnowledgeGraphHandler) image(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, ok := ParseProjectID(w, r, h.logger)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := h.graphService.Render(r.Context(), &buf, projectID, graphQuery(r), format); err != nil {
			writeServiceError(w, h.logger, "Failed to render knowledge graph", err,
				zap.String("project_id", projectID),
				zap.String("format", format))
			return
		}

		w.Header().Set("Content-Type", imageContentTypes[format])
		w.Header().Set("Cache-Control", "no-store")
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Error("Failed to write graph image", zap.Error(err))
		}
	}
}

// GetEntity handles GET /projects/{pid}/knowledge-graph/entities/{eid}?graph=
func (h *KnowledgeGraphHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	entityID, ok := ParseEntityID(w, r, h.logger)
	if !ok {
		return
	}

	graphType := services.ParseGraphType(r.URL.Query().Get("graph"))
	detail, err := h.graphService.GetEntity(r.Context(), projectID, graphType, entityID)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to get entity", err,
			zap.String("project_id", projectID),
			zap.String("entity_id", entityID))
		return
	}
	writeData(w, h.logger, http.StatusOK, detail)
}

// GetRelation handles GET /projects/{pid}/knowledge-graph/relations/{rid}?graph=
func (h *KnowledgeGraphHandler) GetRelation(w http.ResponseWriter, r *http.Request) {
	projectID, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}
	relationID, ok := ParseRelationID(w, r, h.logger)
	if !ok {
		return
	}

	graphType := services.ParseGraphType(r.URL.Query().Get("graph"))
	detail, err := h.graphService.GetRelation(r.Context(), projectID, graphType, relationID)
	if err != nil {
		writeServiceError(w, h.logger, "Failed to get relation", err,
			zap.String("project_id", projectID),
			zap.String("relation_id", relationID))
		return
	}
	writeData(w, h.logger, http.StatusOK, detail)
}
