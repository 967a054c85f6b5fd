package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/format"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// FeedLimit caps the number of entries in the latest-updates feed.
const FeedLimit = 10

// Feed entry kinds.
const (
	FeedKindMilitary = "military"
	FeedKindPublic   = "public"
)

// FeedEntry is one row of the latest-updates feed.
type FeedEntry struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	SourceType models.SourceType `json:"sourceType"`
	Time       string            `json:"time"`
	TimeLabel  string            `json:"timeLabel"`
	Text       string            `json:"text"`
	Unit       string            `json:"unit,omitempty"`
	Location   string            `json:"location,omitempty"`
	Realtime   bool              `json:"realtime,omitempty"`

	Label      models.VerificationLabel `json:"label,omitempty"`
	Confidence *int                     `json:"confidencePercent,omitempty"`
}

// UnifiedFeed merges military reports, public items (only when isolation is
// combined) and live items, newest first, capped at FeedLimit.
func UnifiedFeed(p *models.Project, isolation models.SourceIsolation, realtime []models.PublicItem) []FeedEntry {
	entries := make([]FeedEntry, 0, len(p.MilitaryReports)+len(p.PublicItems)+len(realtime))

	for _, r := range p.MilitaryReports {
		entries = append(entries, FeedEntry{
			ID:         r.ID,
			Kind:       FeedKindMilitary,
			SourceType: r.SourceType,
			Time:       r.ReportedAt,
			Text:       r.Text,
			Unit:       r.Unit,
			Location:   r.Location.Name,
		})
	}
	if isolation == models.IsolationCombined {
		for _, item := range p.PublicItems {
			entries = append(entries, publicEntry(p, item, false))
		}
	}
	for _, item := range realtime {
		entries = append(entries, publicEntry(p, item, true))
	}

	sortByTimeDesc(entries)
	if len(entries) > FeedLimit {
		entries = entries[:FeedLimit]
	}
	for i := range entries {
		entries[i].TimeLabel = format.Timestamp(entries[i].Time)
	}
	return entries
}

func publicEntry(p *models.Project, item models.PublicItem, realtime bool) FeedEntry {
	e := FeedEntry{
		ID:         item.ID,
		Kind:       FeedKindPublic,
		SourceType: item.SourceType,
		Time:       item.PostedAt,
		Text:       item.Text,
		Location:   item.ClaimedLocationText,
		Realtime:   realtime,
	}
	if v, ok := p.VerificationFor(item.ID); ok {
		pct := percent(v.FinalConfidence)
		e.Label = v.Label
		e.Confidence = &pct
	}
	return e
}

func sortByTimeDesc(entries []FeedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return parseOrZero(entries[i].Time).After(parseOrZero(entries[j].Time))
	})
}

func parseOrZero(s string) time.Time {
	t, _ := models.ParseTimestamp(s)
	return t
}

// OverviewStats are the KPI cards of the overview tab.
type OverviewStats struct {
	MilitaryReports    int    `json:"militaryReports"`
	PublicItems        int    `json:"publicItems"`
	VerifiedPercentage int    `json:"verifiedPercentage"`
	OpenConflicts      int    `json:"openConflicts"`
	LatestSpotrep      string `json:"latestSpotrep"`
}

// Overview is the full overview tab.
type Overview struct {
	ProjectID     string                 `json:"projectId"`
	Name          string                 `json:"name"`
	Subtitle      string                 `json:"subtitle"`
	Isolation     models.SourceIsolation `json:"isolation"`
	ViewLabel     string                 `json:"viewLabel"`
	Stats         OverviewStats          `json:"stats"`
	Feed          []FeedEntry            `json:"feed"`
	OpenConflicts []models.Conflict      `json:"openConflicts"`
	Realtime      []RealtimeEvent        `json:"realtime,omitempty"`
}

// OverviewService assembles the overview tab.
type OverviewService interface {
	GetOverview(ctx context.Context, projectID string, isolation models.SourceIsolation) (*Overview, error)
}

type overviewService struct {
	repo     repositories.ProjectRepository
	realtime RealtimeService
	now      func() time.Time
	logger   *zap.Logger
}

// NewOverviewService creates an overview service. realtime may be nil when
// live ingestion is disabled.
func NewOverviewService(repo repositories.ProjectRepository, realtime RealtimeService, logger *zap.Logger) OverviewService {
	return &overviewService{
		repo:     repo,
		realtime: realtime,
		now:      time.Now,
		logger:   logger.Named("overview"),
	}
}

func (s *overviewService) GetOverview(ctx context.Context, projectID string, isolation models.SourceIsolation) (*Overview, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	live := []models.PublicItem{}
	var events []RealtimeEvent
	if s.realtime != nil {
		live = s.realtime.Items(projectID)
		events = s.realtime.Events(projectID, time.Time{})
	}

	open := p.OpenConflicts()
	if open == nil {
		open = []models.Conflict{}
	}

	latest := "None"
	if sp := p.LatestSpotrep(); sp != nil {
		latest = format.Relative(sp.GeneratedAt, s.now())
	}

	viewLabel := "Combined View"
	if isolation == models.IsolationMilitary {
		viewLabel = "Military Only"
	}

	return &Overview{
		ProjectID: p.ID,
		Name:      p.Name,
		Subtitle:  fmt.Sprintf("%s · %s", p.Region, ProjectTypeLabel(p.Type)),
		Isolation: isolation,
		ViewLabel: viewLabel,
		Stats: OverviewStats{
			MilitaryReports:    len(p.MilitaryReports),
			PublicItems:        len(p.PublicItems) + len(live),
			VerifiedPercentage: VerifiedPercentage(p.VerificationResults),
			OpenConflicts:      len(open),
			LatestSpotrep:      latest,
		},
		Feed:          UnifiedFeed(p, isolation, live),
		OpenConflicts: open,
		Realtime:      events,
	}, nil
}

var _ OverviewService = (*overviewService)(nil)
