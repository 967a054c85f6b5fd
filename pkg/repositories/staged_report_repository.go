package repositories

import (
	"context"
	"sync"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

// StagedReportRepository keeps military reports uploaded on the ingest tab.
// Staged reports are per project and never merged into canonical reports.
type StagedReportRepository interface {
	Add(ctx context.Context, projectID string, report models.StagedReport)
	List(ctx context.Context, projectID string) []models.StagedReport
	Clear(ctx context.Context)
}

type stagedReportRepository struct {
	mu      sync.RWMutex
	reports map[string][]models.StagedReport
}

// NewStagedReportRepository creates an empty in-memory staging area.
func NewStagedReportRepository() StagedReportRepository {
	return &stagedReportRepository{
		reports: make(map[string][]models.StagedReport),
	}
}

// Add appends report to the project's staging list.
func (r *stagedReportRepository) Add(ctx context.Context, projectID string, report models.StagedReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[projectID] = append(r.reports[projectID], report)
}

// List returns staged reports newest first.
func (r *stagedReportRepository) List(ctx context.Context, projectID string) []models.StagedReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	staged := r.reports[projectID]
	out := make([]models.StagedReport, len(staged))
	for i, rep := range staged {
		out[len(staged)-1-i] = rep
	}
	return out
}

// Clear drops everything, used when the workspace is reset.
func (r *stagedReportRepository) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = make(map[string][]models.StagedReport)
}

var _ StagedReportRepository = (*stagedReportRepository)(nil)
