package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// RealtimeToastTitle heads the notification raised for each ingested item.
const RealtimeToastTitle = "New public data ingested"

// DefaultRealtimeBufferSize is the number of live items kept per project.
const DefaultRealtimeBufferSize = 5

// RealtimeEvent records one item moving from a project's pending queue into
// its live buffer.
type RealtimeEvent struct {
	ProjectID string            `json:"projectId"`
	Item      models.PublicItem `json:"item"`
	Title     string            `json:"title"`
	Toast     string            `json:"toast"`
	At        time.Time         `json:"at"`
}

// RealtimeService simulates live ingestion of queued public items.
type RealtimeService interface {
	// Items returns the live buffer of a project, newest first.
	Items(projectID string) []models.PublicItem
	// Events returns the events raised since the given time, oldest first.
	Events(projectID string, since time.Time) []RealtimeEvent
	// Tick ingests at most one pending item per project whose interval has
	// elapsed at now, and returns the resulting events.
	Tick(ctx context.Context, now time.Time) []RealtimeEvent
	// Run ticks on the given period until ctx is done.
	Run(ctx context.Context, period time.Duration) error
	// Reset empties every buffer.
	Reset()
}

type realtimeState struct {
	items    []models.PublicItem
	events   []RealtimeEvent
	lastTick time.Time
}

type realtimeService struct {
	repo       repositories.ProjectRepository
	bufferSize int
	pick       func(n int) int
	now        func() time.Time
	logger     *zap.Logger

	mu     sync.Mutex
	states map[string]*realtimeState
}

// NewRealtimeService creates a realtime service over repo. Non-positive
// bufferSize falls back to DefaultRealtimeBufferSize.
func NewRealtimeService(repo repositories.ProjectRepository, bufferSize int, logger *zap.Logger) RealtimeService {
	return newRealtimeService(repo, bufferSize, rand.IntN, time.Now, logger)
}

func newRealtimeService(repo repositories.ProjectRepository, bufferSize int, pick func(int) int, now func() time.Time, logger *zap.Logger) *realtimeService {
	if bufferSize <= 0 {
		bufferSize = DefaultRealtimeBufferSize
	}
	return &realtimeService{
		repo:       repo,
		bufferSize: bufferSize,
		pick:       pick,
		now:        now,
		logger:     logger.Named("realtime"),
		states:     make(map[string]*realtimeState),
	}
}

func (s *realtimeService) Items(projectID string) []models.PublicItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[projectID]
	if !ok {
		return []models.PublicItem{}
	}
	out := make([]models.PublicItem, len(st.items))
	copy(out, st.items)
	return out
}

func (s *realtimeService) Events(projectID string, since time.Time) []RealtimeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []RealtimeEvent{}
	st, ok := s.states[projectID]
	if !ok {
		return out
	}
	for _, ev := range st.events {
		if ev.At.After(since) {
			out = append(out, ev)
		}
	}
	return out
}

func (s *realtimeService) Tick(ctx context.Context, now time.Time) []RealtimeEvent {
	var events []RealtimeEvent
	for _, p := range s.repo.List(ctx) {
		q := p.RealtimeQueue
		if !q.Enabled || len(q.PendingPublicItems) == 0 {
			continue
		}
		if ev, ok := s.tickProject(p.ID, q, now); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (s *realtimeService) tickProject(projectID string, q models.RealtimeQueue, now time.Time) (RealtimeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[projectID]
	if !ok {
		// The first interval starts counting when the project is first seen.
		s.states[projectID] = &realtimeState{items: []models.PublicItem{}, lastTick: now}
		return RealtimeEvent{}, false
	}
	if now.Sub(st.lastTick) < q.Interval() {
		return RealtimeEvent{}, false
	}
	st.lastTick = now

	item := q.PendingPublicItems[s.pick(len(q.PendingPublicItems))]
	for _, existing := range st.items {
		if existing.ID == item.ID {
			return RealtimeEvent{}, false
		}
	}

	keep := st.items
	if len(keep) > s.bufferSize-1 {
		keep = keep[:s.bufferSize-1]
	}
	st.items = append([]models.PublicItem{item}, keep...)

	ev := RealtimeEvent{
		ProjectID: projectID,
		Item:      item,
		Title:     RealtimeToastTitle,
		Toast:     q.ToastTemplate,
		At:        now,
	}
	st.events = append(st.events, ev)
	if len(st.events) > s.bufferSize {
		st.events = st.events[len(st.events)-s.bufferSize:]
	}

	s.logger.Debug("Realtime item ingested",
		zap.String("project_id", projectID),
		zap.String("item_id", item.ID))
	return ev, true
}

// Run blocks until ctx is cancelled, ticking every period.
func (s *realtimeService) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	s.logger.Info("Realtime scheduler started", zap.Duration("period", period))

	for {
		select {
		case <-ticker.C:
			if events := s.Tick(ctx, s.now()); len(events) > 0 {
				s.logger.Info("Realtime tick", zap.Int("ingested", len(events)))
			}
		case <-ctx.Done():
			s.logger.Info("Realtime scheduler stopped")
			return nil
		}
	}
}

func (s *realtimeService) Reset() {
	s.mu.Lock()
	s.states = make(map[string]*realtimeState)
	s.mu.Unlock()
}

var _ RealtimeService = (*realtimeService)(nil)
