package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/format"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// TimelineFilter narrows the event timeline.
type TimelineFilter string

const (
	TimelineAll      TimelineFilter = "all"
	TimelineMilitary TimelineFilter = "military"
	TimelinePublic   TimelineFilter = "public"
	TimelineVerified TimelineFilter = "verified"
)

// ParseTimelineFilter defaults to all for anything unrecognized.
func ParseTimelineFilter(s string) TimelineFilter {
	switch f := TimelineFilter(s); f {
	case TimelineMilitary, TimelinePublic, TimelineVerified:
		return f
	}
	return TimelineAll
}

// Display limits of the timeline side panel.
const (
	MapLocationLimit = 4
	ChangedIDsLimit  = 6
)

// TimelineEvent is one entry of the merged timeline.
type TimelineEvent struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Time      string          `json:"time"`
	TimeLabel string          `json:"timeLabel"`
	DateLabel string          `json:"dateLabel"`
	Text      string          `json:"text"`
	Location  models.Location `json:"location"`
	Unit      string          `json:"unit,omitempty"`

	Label models.VerificationLabel `json:"label,omitempty"`
}

// ChangesSinceSpotrep summarizes what happened after the latest SPOTREP.
type ChangesSinceSpotrep struct {
	HasSpotrep    bool     `json:"hasSpotrep"`
	Message       string   `json:"message,omitempty"`
	NewEvents     int      `json:"newEvents"`
	NewVerified   int      `json:"newVerified"`
	OpenConflicts int      `json:"openConflicts"`
	EventIDs      []string `json:"eventIds"`
	More          int      `json:"more"`
}

// TimelineView is the timeline and map tab.
type TimelineView struct {
	Filter    TimelineFilter      `json:"filter"`
	Events    []TimelineEvent     `json:"events"`
	Region    string              `json:"region"`
	Locations []models.Entity     `json:"locations"`
	Changes   ChangesSinceSpotrep `json:"changes"`
}

// TimelineService builds the timeline tab.
type TimelineService interface {
	GetTimeline(ctx context.Context, projectID string, filter TimelineFilter) (*TimelineView, error)
}

type timelineService struct {
	repo   repositories.ProjectRepository
	logger *zap.Logger
}

// NewTimelineService creates a timeline service.
func NewTimelineService(repo repositories.ProjectRepository, logger *zap.Logger) TimelineService {
	return &timelineService{
		repo:   repo,
		logger: logger.Named("timeline"),
	}
}

// TimelineEvents merges military reports and public items, oldest first.
func TimelineEvents(p *models.Project) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(p.MilitaryReports)+len(p.PublicItems))
	for _, r := range p.MilitaryReports {
		events = append(events, TimelineEvent{
			ID:       r.ID,
			Kind:     FeedKindMilitary,
			Time:     r.ReportedAt,
			Text:     r.Text,
			Location: r.Location,
			Unit:     r.Unit,
		})
	}
	for _, item := range p.PublicItems {
		e := TimelineEvent{
			ID:       item.ID,
			Kind:     FeedKindPublic,
			Time:     item.PostedAt,
			Text:     item.DisplayText(),
			Location: models.Location{Name: item.DisplayLocation()},
		}
		if v, ok := p.VerificationFor(item.ID); ok {
			e.Label = v.Label
		}
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return parseOrZero(events[i].Time).Before(parseOrZero(events[j].Time))
	})
	for i := range events {
		events[i].TimeLabel = format.Timestamp(events[i].Time)
		events[i].DateLabel = format.Date(events[i].Time)
	}
	return events
}

// FilterTimeline keeps the events matching f.
func FilterTimeline(events []TimelineEvent, f TimelineFilter) []TimelineEvent {
	out := make([]TimelineEvent, 0, len(events))
	for _, e := range events {
		if matchesTimeline(e, f) {
			out = append(out, e)
		}
	}
	return out
}

func matchesTimeline(e TimelineEvent, f TimelineFilter) bool {
	switch f {
	case TimelineMilitary:
		return e.Kind == FeedKindMilitary
	case TimelinePublic:
		return e.Kind == FeedKindPublic
	case TimelineVerified:
		return e.Kind == FeedKindPublic && e.Label == models.LabelVerified
	default:
		return true
	}
}

// Changes compares events with the generation time of the latest SPOTREP.
// Without a SPOTREP every event counts as new from the epoch, but the panel
// only shows a placeholder.
func Changes(p *models.Project, events []TimelineEvent) ChangesSinceSpotrep {
	latest := p.LatestSpotrep()
	cutoff := time.Unix(0, 0).UTC()
	if latest != nil {
		if t, ok := models.ParseTimestamp(latest.GeneratedAt); ok {
			cutoff = t
		}
	}

	c := ChangesSinceSpotrep{
		HasSpotrep:    latest != nil,
		OpenConflicts: len(p.OpenConflicts()),
		EventIDs:      []string{},
	}
	if latest == nil {
		c.Message = "No SPOTREP generated yet"
	}

	for _, e := range events {
		t, ok := models.ParseTimestamp(e.Time)
		if !ok || !t.After(cutoff) {
			continue
		}
		c.NewEvents++
		if e.Kind == FeedKindPublic && e.Label == models.LabelVerified {
			c.NewVerified++
		}
		if len(c.EventIDs) < ChangedIDsLimit {
			c.EventIDs = append(c.EventIDs, e.ID)
		}
	}
	c.More = c.NewEvents - len(c.EventIDs)
	return c
}

func (s *timelineService) GetTimeline(ctx context.Context, projectID string, filter TimelineFilter) (*TimelineView, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	events := TimelineEvents(p)

	locations := []models.Entity{}
	for _, e := range p.Entities {
		if e.Type == models.EntityTypeLocation && len(locations) < MapLocationLimit {
			locations = append(locations, e)
		}
	}

	return &TimelineView{
		Filter:    filter,
		Events:    FilterTimeline(events, filter),
		Region:    p.Region,
		Locations: locations,
		Changes:   Changes(p, events),
	}, nil
}

var _ TimelineService = (*timelineService)(nil)
