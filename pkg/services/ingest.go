package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/audit"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/screening"
)

// SamplePatrolLog is offered as example input on the military upload tab.
const SamplePatrolLog = "07:45Z. Patrol ALPHA-3 reports all clear along Route Delta. No unusual activity observed. " +
	"Local civilians cooperative. Weather: clear, visibility good. Equipment status: nominal."

// Staged report status shown in the upload list.
const StagedStatusPending = "Pending verification"

// Simulated fetch parameters.
const (
	FetchSteps       = 20
	fetchMinDuration = 1200 * time.Millisecond
	fetchJitter      = 2300 * time.Millisecond
	fetchMinItems    = 3
	fetchItemSpread  = 5
	fetchDupSpread   = 3
)

// Display limits of the ingest tab.
const (
	recentMilitaryLimit = 5
	recentPublicLimit   = 8
)

// Source names reported by a simulated fetch.
const (
	SourceNameSocial = "Social Media"
	SourceNameNews   = "News Outlets"
)

// RecentPublicItem is a public item listed on the ingest tab.
type RecentPublicItem struct {
	Item  models.PublicItem        `json:"item"`
	Label models.VerificationLabel `json:"label,omitempty"`
}

// IngestView is the ingest tab.
type IngestView struct {
	SamplePatrolLog string                  `json:"samplePatrolLog"`
	Staged          []models.StagedReport   `json:"staged"`
	UploadedCount   int                     `json:"uploadedCount"`
	RecentMilitary  []models.MilitaryReport `json:"recentMilitary"`
	RecentPublic    []RecentPublicItem      `json:"recentPublic"`
	FetchDefaults   models.FetchRequest     `json:"fetchDefaults"`
}

// PublicItemInput is an analyst-entered public item.
type PublicItemInput struct {
	SourceType          models.SourceType `json:"sourceType"`
	Platform            string            `json:"platform,omitempty"`
	Headline            string            `json:"headline,omitempty"`
	Text                string            `json:"text"`
	ClaimedLocationText string            `json:"claimedLocationText,omitempty"`
	RawURL              string            `json:"rawUrl,omitempty"`
}

// FetchResult is the simulated fetch outcome with its progress plan.
type FetchResult struct {
	Summary  models.IngestSummary `json:"summary"`
	Progress []int                `json:"progress"`
	Notice   Notice               `json:"notice"`
}

// IngestService handles the ingest tab.
type IngestService interface {
	GetIngest(ctx context.Context, projectID string) (*IngestView, error)
	// StageMilitaryReport keeps an uploaded report for display. It is never
	// merged into the project's reports.
	StageMilitaryReport(ctx context.Context, projectID, fileName, text string) (*models.StagedReport, error)
	// AddPublicItem screens and appends an analyst-entered item.
	AddPublicItem(ctx context.Context, projectID string, input PublicItemInput) (*models.PublicItem, error)
	// SimulateFetch fabricates a summary for the selected source toggles.
	SimulateFetch(ctx context.Context, projectID string, req models.FetchRequest) (*FetchResult, error)
}

type ingestService struct {
	repo    repositories.ProjectRepository
	staged  repositories.StagedReportRepository
	auditor *audit.SecurityAuditor
	intn    func(n int) int
	float64 func() float64
	now     func() time.Time
	logger  *zap.Logger
}

// NewIngestService creates an ingest service.
func NewIngestService(repo repositories.ProjectRepository, staged repositories.StagedReportRepository, logger *zap.Logger) IngestService {
	return &ingestService{
		repo:    repo,
		staged:  staged,
		auditor: audit.NewSecurityAuditor(logger),
		intn:    rand.IntN,
		float64: rand.Float64,
		now:     time.Now,
		logger:  logger.Named("ingest"),
	}
}

func (s *ingestService) GetIngest(ctx context.Context, projectID string) (*IngestView, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	staged := s.staged.List(ctx, projectID)

	military := p.MilitaryReports
	if len(military) > recentMilitaryLimit {
		military = military[:recentMilitaryLimit]
	}

	public := []RecentPublicItem{}
	for i, item := range p.PublicItems {
		if i == recentPublicLimit {
			break
		}
		r := RecentPublicItem{Item: item}
		if v, ok := p.VerificationFor(item.ID); ok {
			r.Label = v.Label
		}
		public = append(public, r)
	}

	return &IngestView{
		SamplePatrolLog: SamplePatrolLog,
		Staged:          staged,
		UploadedCount:   len(p.MilitaryReports) + len(staged),
		RecentMilitary:  append([]models.MilitaryReport{}, military...),
		RecentPublic:    public,
		FetchDefaults:   FetchDefaults(p),
	}, nil
}

// FetchDefaults pre-fills the public fetch form from the project's
// ingestion config. Source toggles always start as social and news.
func FetchDefaults(p *models.Project) models.FetchRequest {
	radius := p.IngestionConfig.RadiusKm
	if radius == 0 {
		radius = repositories.DefaultRadiusKm
	}
	return models.FetchRequest{
		Keywords:     nonNil(p.IngestionConfig.Keywords),
		LocationHint: p.IngestionConfig.LocationHint,
		RadiusKm:     radius,
		Social:       true,
		News:         true,
		Alerts:       false,
	}
}

func (s *ingestService) StageMilitaryReport(ctx context.Context, projectID, fileName, text string) (*models.StagedReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty report: %w", apperrors.ErrInvalidInput)
	}
	if _, err := s.repo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	report := models.StagedReport{
		ID:         uuid.New().String(),
		FileName:   fileName,
		Text:       text,
		Status:     StagedStatusPending,
		UploadedAt: s.now().UTC(),
	}
	s.staged.Add(ctx, projectID, report)

	s.logger.Info("Military report staged",
		zap.String("project_id", projectID),
		zap.String("report_id", report.ID),
		zap.Int("length", len(text)))
	return &report, nil
}

func (s *ingestService) AddPublicItem(ctx context.Context, projectID string, input PublicItemInput) (*models.PublicItem, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("public item text is required: %w", apperrors.ErrInvalidInput)
	}
	switch input.SourceType {
	case "":
		input.SourceType = models.SourceTypeSocial
	case models.SourceTypeSocial, models.SourceTypeNews:
	default:
		return nil, fmt.Errorf("source type %q: %w", input.SourceType, apperrors.ErrInvalidInput)
	}

	fields := [][2]string{
		{"headline", input.Headline},
		{"text", input.Text},
		{"claimedLocationText", input.ClaimedLocationText},
	}
	findings := screening.CheckAll(fields...)
	if len(findings) > 0 {
		for _, f := range findings {
			s.auditor.LogRejectedContent(ctx, projectID, audit.RejectedContentDetails{
				Field:       f.Field,
				Kind:        f.Kind,
				Fingerprint: f.Fingerprint,
				Length:      fieldLength(fields, f.Field),
			})
		}
		return nil, fmt.Errorf("field %s flagged as %s: %w", findings[0].Field, findings[0].Kind, apperrors.ErrRejectedContent)
	}

	postedAt := s.now().UTC().Format(time.RFC3339)
	item, ok := s.repo.AppendPublicItem(ctx, projectID, func(p *models.Project) models.PublicItem {
		return models.PublicItem{
			ID:                  nextPublicItemID(p),
			SourceType:          input.SourceType,
			Platform:            input.Platform,
			PostedAt:            postedAt,
			ClaimedLocationText: input.ClaimedLocationText,
			Headline:            input.Headline,
			Text:                input.Text,
			RawURL:              input.RawURL,
		}
	})
	if !ok {
		return nil, fmt.Errorf("%s: %w", projectID, apperrors.ErrProjectNotFound)
	}

	s.logger.Info("Public item added",
		zap.String("project_id", projectID),
		zap.String("item_id", item.ID))
	return &item, nil
}

func fieldLength(fields [][2]string, name string) int {
	for _, f := range fields {
		if f[0] == name {
			return len(f[1])
		}
	}
	return 0
}

// nextPublicItemID returns PUB-NNN one past the highest numbered item of p,
// counting queued realtime items too.
func nextPublicItemID(p *models.Project) string {
	highest := 0
	scan := func(items []models.PublicItem) {
		for _, it := range items {
			n, err := strconv.Atoi(strings.TrimPrefix(it.ID, "PUB-"))
			if err == nil && n > highest {
				highest = n
			}
		}
	}
	scan(p.PublicItems)
	scan(p.RealtimeQueue.PendingPublicItems)
	return fmt.Sprintf("PUB-%03d", highest+1)
}

func (s *ingestService) SimulateFetch(ctx context.Context, projectID string, req models.FetchRequest) (*FetchResult, error) {
	if !req.Social && !req.News && !req.Alerts {
		return nil, fmt.Errorf("no source selected: %w", apperrors.ErrInvalidInput)
	}
	if _, err := s.repo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	summary := models.IngestSummary{
		ItemsFetched:      fetchMinItems + s.intn(fetchItemSpread),
		DuplicatesRemoved: s.intn(fetchDupSpread),
		Sources:           FetchSources(req),
		Steps:             FetchSteps,
		Duration:          fetchMinDuration + time.Duration(s.float64()*float64(fetchJitter)),
	}

	s.logger.Info("Simulated public fetch",
		zap.String("project_id", projectID),
		zap.Strings("keywords", req.Keywords),
		zap.Int("items", summary.ItemsFetched),
		zap.Int("duplicates", summary.DuplicatesRemoved))

	return &FetchResult{
		Summary:  summary,
		Progress: ProgressPlan(FetchSteps),
		Notice: Notice{
			Title:   "Ingestion complete",
			Message: "New public items have been added to the project.",
		},
	}, nil
}

// FetchSources names the channels a fetch reports. Alerts alone reports
// news outlets.
func FetchSources(req models.FetchRequest) []string {
	switch {
	case req.Social && req.News:
		return []string{SourceNameSocial, SourceNameNews}
	case req.Social:
		return []string{SourceNameSocial}
	default:
		return []string{SourceNameNews}
	}
}

// ProgressPlan returns the percentage shown after each of steps+1 ticks.
func ProgressPlan(steps int) []int {
	plan := make([]int, 0, steps+1)
	for i := 0; i <= steps; i++ {
		plan = append(plan, i*100/steps)
	}
	return plan
}

var _ IngestService = (*ingestService)(nil)
