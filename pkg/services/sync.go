package services

import (
	"sync"
	"time"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

// Status bar values. Ingestion and verification are always reported as
// running in the workspace.
const (
	IngestionStatusActive     = "Active"
	VerificationStatusRunning = "Running"
)

// SyncService tracks the last sync shown in the status bar.
type SyncService interface {
	Status() models.SyncStatus
	// Trigger restarts the clock and returns the fresh status.
	Trigger() models.SyncStatus
}

type syncService struct {
	mu       sync.Mutex
	lastSync time.Time
	now      func() time.Time
}

// NewSyncService creates a sync tracker whose clock starts now.
func NewSyncService() SyncService {
	return newSyncService(time.Now)
}

func newSyncService(now func() time.Time) *syncService {
	return &syncService{lastSync: now(), now: now}
}

func (s *syncService) Status() models.SyncStatus {
	s.mu.Lock()
	last := s.lastSync
	s.mu.Unlock()
	return s.status(last)
}

func (s *syncService) Trigger() models.SyncStatus {
	s.mu.Lock()
	s.lastSync = s.now()
	last := s.lastSync
	s.mu.Unlock()
	return s.status(last)
}

func (s *syncService) status(last time.Time) models.SyncStatus {
	secs := int(s.now().Sub(last) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return models.SyncStatus{
		LastSyncTime:       last,
		SecondsAgo:         secs,
		IngestionStatus:    IngestionStatusActive,
		VerificationStatus: VerificationStatusRunning,
	}
}

var _ SyncService = (*syncService)(nil)
