package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/format"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// ProjectTypeOption is an entry of the create-project type selector.
type ProjectTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ProjectTypes lists the selectable project types.
var ProjectTypes = []ProjectTypeOption{
	{Value: models.ProjectTypeBorderIncident, Label: "Border Incident"},
	{Value: models.ProjectTypeUrbanSecurity, Label: "Urban Security"},
	{Value: models.ProjectTypeDisasterRelief, Label: "Disaster Relief"},
	{Value: models.ProjectTypeInvestigation, Label: "General Investigation"},
}

// ProjectTypeLabel returns the display label of a project type. Unknown
// types are shown with underscores replaced by spaces.
func ProjectTypeLabel(t string) string {
	for _, opt := range ProjectTypes {
		if opt.Value == t {
			return opt.Label
		}
	}
	return strings.ReplaceAll(t, "_", " ")
}

const projectCardTagLimit = 3

// ProjectCard is one project on the projects page.
type ProjectCard struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Type               string               `json:"type"`
	TypeLabel          string               `json:"typeLabel"`
	Status             models.ProjectStatus `json:"status"`
	Region             string               `json:"region"`
	CreatedAt          string               `json:"createdAt"`
	Created            string               `json:"created"`
	Tags               []string             `json:"tags"`
	MilitaryReports    int                  `json:"militaryReports"`
	PublicItems        int                  `json:"publicItems"`
	VerifiedPercentage int                  `json:"verifiedPercentage"`
	Conflicts          int                  `json:"conflicts"`
}

// ProjectList is the projects page.
type ProjectList struct {
	Query    string              `json:"query"`
	Projects []ProjectCard       `json:"projects"`
	Types    []ProjectTypeOption `json:"types"`
}

// ProjectService lists and creates projects.
type ProjectService interface {
	// List returns projects whose name or region contains query,
	// case-insensitively. An empty query matches everything.
	List(ctx context.Context, query string) *ProjectList
	// Create validates input and adds a project. The name is required.
	Create(ctx context.Context, input models.ProjectInput) (*models.Project, error)
}

type projectService struct {
	repo   repositories.ProjectRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewProjectService creates a project service.
func NewProjectService(repo repositories.ProjectRepository, logger *zap.Logger) ProjectService {
	return &projectService{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("projects"),
	}
}

// MatchesSearch reports whether p's name or region contains query,
// ignoring case.
func MatchesSearch(p *models.Project, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Region), q)
}

func (s *projectService) List(ctx context.Context, query string) *ProjectList {
	now := s.now()
	cards := []ProjectCard{}
	for _, p := range s.repo.List(ctx) {
		if !MatchesSearch(p, query) {
			continue
		}
		cards = append(cards, newProjectCard(p, now))
	}
	return &ProjectList{Query: query, Projects: cards, Types: ProjectTypes}
}

func newProjectCard(p *models.Project, now time.Time) ProjectCard {
	tags := p.Tags
	if len(tags) > projectCardTagLimit {
		tags = tags[:projectCardTagLimit]
	}
	return ProjectCard{
		ID:                 p.ID,
		Name:               p.Name,
		Type:               p.Type,
		TypeLabel:          ProjectTypeLabel(p.Type),
		Status:             p.Status,
		Region:             p.Region,
		CreatedAt:          p.CreatedAt,
		Created:            format.Relative(p.CreatedAt, now),
		Tags:               append([]string{}, tags...),
		MilitaryReports:    len(p.MilitaryReports),
		PublicItems:        len(p.PublicItems),
		VerifiedPercentage: VerifiedPercentage(p.VerificationResults),
		Conflicts:          len(p.Conflicts),
	}
}

func (s *projectService) Create(ctx context.Context, input models.ProjectInput) (*models.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Region = strings.TrimSpace(input.Region)
	if input.Name == "" {
		return nil, fmt.Errorf("project name is required: %w", apperrors.ErrInvalidInput)
	}
	if input.Type != "" && !isProjectType(input.Type) {
		return nil, fmt.Errorf("project type %q: %w", input.Type, apperrors.ErrInvalidInput)
	}
	return s.repo.Create(ctx, input), nil
}

func isProjectType(t string) bool {
	for _, v := range models.ValidProjectTypes {
		if v == t {
			return true
		}
	}
	return false
}

var _ ProjectService = (*projectService)(nil)
