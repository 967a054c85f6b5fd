package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
)

// Defaults applied to projects created through the workspace.
const (
	DefaultProjectName   = "New Project"
	DefaultProjectType   = models.ProjectTypeInvestigation
	DefaultProjectRegion = "Unspecified"
	DefaultCreatedBy     = "Demo Analyst"
	DefaultRadiusKm      = 15
	DefaultToastTemplate = "2 new public updates ingested"
	DefaultTimeWindow    = 48 * time.Hour
)

// DefaultSuggestedPrompts are offered in the chat of every new project.
var DefaultSuggestedPrompts = []string{
	"What are the key events so far?",
	"List all verified sources.",
	"Summarize conflicts.",
}

// ProjectRepository defines the interface for workspace data access.
//
// Returned projects are immutable snapshots: mutators never modify a project
// in place, they publish a new copy. Callers must not mutate what they get.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) []*models.Project
	AppData(ctx context.Context) *models.AppData
	Create(ctx context.Context, input models.ProjectInput) *models.Project
	AddPublicItem(ctx context.Context, projectID string, item models.PublicItem) bool
	// AppendPublicItem builds the new item from the current project while
	// holding the write lock, so ids derived from existing items stay unique.
	AppendPublicItem(ctx context.Context, projectID string, build func(p *models.Project) models.PublicItem) (models.PublicItem, bool)
	Reset(ctx context.Context) error
	Replace(ctx context.Context, app *models.AppData)
}

// projectRepository holds the whole dataset in memory.
type projectRepository struct {
	mu     sync.RWMutex
	app    *models.AppData
	source seed.Source
	now    func() time.Time
	logger *zap.Logger
}

// NewProjectRepository creates a repository over already loaded seed data.
// source is used by Reset to restore the original dataset. Passing nil data
// is a programming error and panics.
func NewProjectRepository(app *models.AppData, source seed.Source, logger *zap.Logger) ProjectRepository {
	return newProjectRepository(app, source, time.Now, logger)
}

func newProjectRepository(app *models.AppData, source seed.Source, now func() time.Time, logger *zap.Logger) *projectRepository {
	if app == nil {
		panic("repositories: project repository requires seed data")
	}
	return &projectRepository{
		app:    app,
		source: source,
		now:    now,
		logger: logger.Named("repository"),
	}
}

// Get returns the project with the given id, or apperrors.ErrProjectNotFound.
func (r *projectRepository) Get(ctx context.Context, id string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.app.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, apperrors.ErrProjectNotFound)
}

// List returns all projects in insertion order.
func (r *projectRepository) List(ctx context.Context) []*models.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Project, len(r.app.Projects))
	copy(out, r.app.Projects)
	return out
}

// AppData returns a snapshot of the root document.
func (r *projectRepository) AppData(ctx context.Context) *models.AppData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := *r.app
	snapshot.Projects = make([]*models.Project, len(r.app.Projects))
	copy(snapshot.Projects, r.app.Projects)
	return &snapshot
}

// Create appends a project built from input merged over defaults. The id is
// derived from the current project count, so it is sequential as long as
// projects are never removed.
func (r *projectRepository) Create(ctx context.Context, input models.ProjectInput) *models.Project {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	project := &models.Project{
		ID:        fmt.Sprintf("PRJ-%03d", len(r.app.Projects)+1),
		Name:      valueOr(input.Name, DefaultProjectName),
		Type:      valueOr(input.Type, DefaultProjectType),
		Region:    valueOr(input.Region, DefaultProjectRegion),
		Status:    models.ProjectStatusActive,
		CreatedBy: DefaultCreatedBy,
		CreatedAt: now.Format(time.RFC3339),
		TimeWindow: models.TimeWindow{
			Start: now.Format(time.RFC3339),
			End:   now.Add(DefaultTimeWindow).Format(time.RFC3339),
		},
		Tags: []string{},
		IngestionConfig: models.IngestionConfig{
			Keywords:     []string{},
			LocationHint: input.Region,
			RadiusKm:     DefaultRadiusKm,
			Sources:      models.IngestionSources{Social: true, News: true, Alerts: false},
		},
		MilitaryReports:     []models.MilitaryReport{},
		PublicItems:         []models.PublicItem{},
		VerificationResults: []models.VerificationResult{},
		Entities:            []models.Entity{},
		Relations:           []models.Relation{},
		Conflicts:           []models.Conflict{},
		SpotrepVersions:     []models.SpotrepVersion{},
		Chat: models.ProjectChat{
			SuggestedPrompts: append([]string(nil), DefaultSuggestedPrompts...),
			QAPairs:          []models.ChatQAPair{},
		},
		RealtimeQueue: models.RealtimeQueue{
			Enabled:            true,
			IntervalSeconds:    10,
			ToastTemplate:      DefaultToastTemplate,
			PendingPublicItems: []models.PublicItem{},
		},
	}
	if input.TimeWindow != nil {
		project.TimeWindow = *input.TimeWindow
	}
	if input.Tags != nil {
		project.Tags = append([]string(nil), input.Tags...)
	}

	projects := make([]*models.Project, len(r.app.Projects), len(r.app.Projects)+1)
	copy(projects, r.app.Projects)
	r.app = r.withProjects(append(projects, project))

	r.logger.Info("Project created",
		zap.String("project_id", project.ID),
		zap.String("type", project.Type))
	return project
}

// AddPublicItem appends item to the project's public items. Unknown project
// ids are ignored and reported as false.
func (r *projectRepository) AddPublicItem(ctx context.Context, projectID string, item models.PublicItem) bool {
	_, ok := r.AppendPublicItem(ctx, projectID, func(*models.Project) models.PublicItem { return item })
	return ok
}

func (r *projectRepository) AppendPublicItem(ctx context.Context, projectID string, build func(p *models.Project) models.PublicItem) (models.PublicItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var item models.PublicItem
	projects := make([]*models.Project, len(r.app.Projects))
	found := false
	for i, p := range r.app.Projects {
		if p.ID != projectID || found {
			projects[i] = p
			continue
		}
		item = build(p)
		updated := *p
		updated.PublicItems = make([]models.PublicItem, len(p.PublicItems), len(p.PublicItems)+1)
		copy(updated.PublicItems, p.PublicItems)
		updated.PublicItems = append(updated.PublicItems, item)
		projects[i] = &updated
		found = true
	}
	if !found {
		r.logger.Debug("Ignoring public item for unknown project", zap.String("project_id", projectID))
		return models.PublicItem{}, false
	}

	r.app = r.withProjects(projects)
	return item, true
}

// Reset reloads the dataset from the seed source.
func (r *projectRepository) Reset(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("reset: no seed source configured")
	}
	app, err := r.source.Load()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	r.Replace(ctx, app)
	return nil
}

// Replace swaps in a new dataset wholesale.
func (r *projectRepository) Replace(ctx context.Context, app *models.AppData) {
	if app == nil {
		return
	}
	r.mu.Lock()
	r.app = app
	r.mu.Unlock()

	r.logger.Info("Workspace data replaced", zap.Int("projects", len(app.Projects)))
}

func (r *projectRepository) withProjects(projects []*models.Project) *models.AppData {
	next := *r.app
	next.Projects = projects
	return &next
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
