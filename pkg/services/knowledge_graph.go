package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/graph"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// GraphType selects which relations the knowledge graph displays.
type GraphType string

const (
	GraphTypeMilitary GraphType = "military"
	GraphTypeCombined GraphType = "combined"
)

// ParseGraphType defaults to combined for anything unrecognized.
func ParseGraphType(s string) GraphType {
	if GraphType(s) == GraphTypeMilitary {
		return GraphTypeMilitary
	}
	return GraphTypeCombined
}

// Image formats the graph can be rendered to.
const (
	ImageFormatPNG = "png"
	ImageFormatSVG = "svg"
)

// KeyEntityLimit is the number of entities ranked in the graph stats.
const KeyEntityLimit = 5

// GraphFilterOption is an entry of the entity type filter.
type GraphFilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GraphFilterOptions lists the filters offered on the graph tab.
var GraphFilterOptions = []GraphFilterOption{
	{Value: graph.FilterAll, Label: "All Types"},
	{Value: string(models.EntityTypeEvent), Label: "Events"},
	{Value: string(models.EntityTypeLocation), Label: "Locations"},
	{Value: string(models.EntityTypeUnit), Label: "Units"},
}

// GraphQuery is the interaction state of one graph request.
type GraphQuery struct {
	Graph     GraphType
	Filter    string
	HoverNode string
	HoverLink string
	Scale     float64
}

// KnowledgeGraphView is the knowledge graph tab.
type KnowledgeGraphView struct {
	Graph         GraphType              `json:"graph"`
	Filter        string                 `json:"filter"`
	FilterOptions []GraphFilterOption    `json:"filterOptions"`
	SourceCount   int                    `json:"sourceCount"`
	Conflicts     []models.Relation      `json:"conflicts"`
	View          *graph.View            `json:"view"`
	Positions     map[string]graph.Point `json:"positions"`
	Stats         graph.Stats            `json:"stats"`
}

// EntityDetail is the side panel for a selected entity.
type EntityDetail struct {
	Entity        models.Entity `json:"entity"`
	TimeRange     string        `json:"timeRange,omitempty"`
	LinkedSources []string      `json:"linkedSources"`
}

// RelationDetail is the side panel for a selected relation.
type RelationDetail struct {
	Relation          models.Relation `json:"relation"`
	Title             string          `json:"title"`
	ConfidencePercent int             `json:"confidencePercent"`
	From              string          `json:"from"`
	To                string          `json:"to"`
	Evidence          []SourceDetail  `json:"evidence"`
}

// KnowledgeGraphService builds and renders the knowledge graph.
type KnowledgeGraphService interface {
	GetGraph(ctx context.Context, projectID string, q GraphQuery) (*KnowledgeGraphView, error)
	GetEntity(ctx context.Context, projectID string, graphType GraphType, entityID string) (*EntityDetail, error)
	GetRelation(ctx context.Context, projectID string, graphType GraphType, relationID string) (*RelationDetail, error)
	Render(ctx context.Context, w io.Writer, projectID string, q GraphQuery, imageFormat string) error
	// InvalidateLayouts drops cached node positions after data changes.
	InvalidateLayouts()
}

type knowledgeGraphService struct {
	repo     repositories.ProjectRepository
	layouter *graph.Layouter
	logger   *zap.Logger
}

// NewKnowledgeGraphService creates a knowledge graph service.
func NewKnowledgeGraphService(repo repositories.ProjectRepository, layouter *graph.Layouter, logger *zap.Logger) KnowledgeGraphService {
	return &knowledgeGraphService{
		repo:     repo,
		layouter: layouter,
		logger:   logger.Named("knowledge-graph"),
	}
}

// DisplayedRelations returns the relations shown for graphType.
func DisplayedRelations(p *models.Project, graphType GraphType) []models.Relation {
	if graphType == GraphTypeMilitary {
		return MilitaryRelations(p.Relations)
	}
	return p.Relations
}

func (s *knowledgeGraphService) build(p *models.Project, q GraphQuery) (*graph.View, map[string]graph.Point) {
	v := graph.Build(p.Entities, DisplayedRelations(p, q.Graph), q.Filter)
	key := fmt.Sprintf("%s|%s|%s", p.ID, q.Graph, v.Filter)
	return v, s.layouter.Positions(key, v)
}

func (s *knowledgeGraphService) GetGraph(ctx context.Context, projectID string, q GraphQuery) (*KnowledgeGraphView, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	q.Graph = ParseGraphType(string(q.Graph))

	v, pos := s.build(p, q)

	conflicts := []models.Relation{}
	for _, r := range DisplayedRelations(p, q.Graph) {
		if r.Type == models.RelationConflictsWith {
			conflicts = append(conflicts, r)
		}
	}

	sources := len(p.MilitaryReports)
	if q.Graph == GraphTypeCombined {
		sources += len(p.PublicItems)
	}

	return &KnowledgeGraphView{
		Graph:         q.Graph,
		Filter:        v.Filter,
		FilterOptions: GraphFilterOptions,
		SourceCount:   sources,
		Conflicts:     conflicts,
		View:          v,
		Positions:     pos,
		Stats:         graph.ComputeStats(v, KeyEntityLimit),
	}, nil
}

func (s *knowledgeGraphService) GetEntity(ctx context.Context, projectID string, graphType GraphType, entityID string) (*EntityDetail, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, e := range p.Entities {
		if e.ID != entityID {
			continue
		}
		d := &EntityDetail{Entity: e}
		if e.TimeStart != "" {
			end := e.TimeEnd
			if end == "" {
				end = "ongoing"
			}
			d.TimeRange = e.TimeStart + " - " + end
		}
		// Linked sources ignore the type filter.
		v := graph.Build(p.Entities, DisplayedRelations(p, graphType), graph.FilterAll)
		d.LinkedSources = v.LinkedSources(e.ID)
		return d, nil
	}
	return nil, fmt.Errorf("entity %s: %w", entityID, apperrors.ErrNotFound)
}

func (s *knowledgeGraphService) GetRelation(ctx context.Context, projectID string, graphType GraphType, relationID string) (*RelationDetail, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, r := range DisplayedRelations(p, graphType) {
		if r.ID != relationID {
			continue
		}
		evidence := r.Evidence
		if evidence == nil {
			evidence = []string{}
		}
		return &RelationDetail{
			Relation:          r,
			Title:             graph.FormatRelationType(r.Type),
			ConfidencePercent: percent(r.Confidence),
			From:              entityName(p, r.From),
			To:                entityName(p, r.To),
			Evidence:          ResolveSources(p, evidence),
		}, nil
	}
	return nil, fmt.Errorf("relation %s: %w", relationID, apperrors.ErrNotFound)
}

func entityName(p *models.Project, id string) string {
	for _, e := range p.Entities {
		if e.ID == id {
			return e.Name
		}
	}
	return id
}

func (s *knowledgeGraphService) Render(ctx context.Context, w io.Writer, projectID string, q GraphQuery, imageFormat string) error {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return err
	}
	q.Graph = ParseGraphType(string(q.Graph))

	v, pos := s.build(p, q)
	opts := s.layouter.Options()
	canvas := graph.Canvas{View: v, Positions: pos, Width: opts.Width, Height: opts.Height}
	render := graph.RenderOptions{
		HoverNode:  q.HoverNode,
		HoverLink:  q.HoverLink,
		Scale:      q.Scale,
		Title:      fmt.Sprintf("%s: %s graph", p.Name, q.Graph),
		ShowLegend: true,
	}

	switch imageFormat {
	case ImageFormatPNG:
		err = graph.RenderPNG(w, canvas, render)
	case ImageFormatSVG:
		err = graph.RenderSVG(w, canvas, render)
	default:
		return fmt.Errorf("image format %q: %w", imageFormat, apperrors.ErrInvalidInput)
	}
	if err != nil {
		s.logger.Error("Graph render failed",
			zap.String("project_id", projectID),
			zap.String("format", imageFormat),
			zap.Error(err))
		return fmt.Errorf("render graph: %w", err)
	}
	return nil
}

func (s *knowledgeGraphService) InvalidateLayouts() {
	s.layouter.Invalidate()
}

var _ KnowledgeGraphService = (*knowledgeGraphService)(nil)
