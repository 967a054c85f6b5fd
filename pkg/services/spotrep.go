package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
	"github.com/ekaya-inc/clearbrief/pkg/format"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// SpotrepVersionSummary is an entry of the version selector.
type SpotrepVersionSummary struct {
	ID          string `json:"id"`
	GeneratedAt string `json:"generatedAt"`
	Relative    string `json:"relative"`
	TimeWindow  string `json:"timeWindow"`
	Latest      bool   `json:"latest"`
	Selected    bool   `json:"selected"`
}

// SpotrepView is the SPOTREP tab.
type SpotrepView struct {
	Title       string                  `json:"title"`
	Versions    []SpotrepVersionSummary `json:"versions"`
	Current     *models.SpotrepVersion  `json:"current,omitempty"`
	GeneratedAt string                  `json:"generatedAt,omitempty"`
	Sections    []models.SpotrepSection `json:"sections"`
	SourceTrace []SourceDetail          `json:"sourceTrace"`
}

// Notice is a toast-style acknowledgement of an action with no payload.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SpotrepService serves SPOTREP versions and their exports.
type SpotrepService interface {
	GetSpotrep(ctx context.Context, projectID, versionID string) (*SpotrepView, error)
	// CopyText returns the plain text block the copy button puts on the
	// clipboard.
	CopyText(ctx context.Context, projectID, versionID string) (string, error)
	ExportYAML(ctx context.Context, projectID, versionID string) ([]byte, error)
	ExportPDF(ctx context.Context, projectID, versionID string) (*Notice, error)
}

type spotrepService struct {
	repo   repositories.ProjectRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewSpotrepService creates a SPOTREP service.
func NewSpotrepService(repo repositories.ProjectRepository, logger *zap.Logger) SpotrepService {
	return &spotrepService{
		repo:   repo,
		now:    time.Now,
		logger: logger.Named("spotrep"),
	}
}

// SelectSpotrep returns the version with versionID, or the latest version
// when versionID is empty. It returns nil when nothing matches.
func SelectSpotrep(p *models.Project, versionID string) *models.SpotrepVersion {
	if versionID == "" {
		return p.LatestSpotrep()
	}
	for i := range p.SpotrepVersions {
		if p.SpotrepVersions[i].ID == versionID {
			return &p.SpotrepVersions[i]
		}
	}
	return nil
}

// SpotrepText renders sections as "KEY:\nvalue" blocks separated by blank
// lines, joining list values with ", ".
func SpotrepText(v *models.SpotrepVersion) string {
	sections := v.Sections.Ordered()
	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		value := s.Text
		if s.Items != nil {
			value = strings.Join(s.Items, ", ")
		}
		blocks = append(blocks, s.Key+":\n"+value)
	}
	return strings.Join(blocks, "\n\n")
}

func (s *spotrepService) selected(ctx context.Context, projectID, versionID string) (*models.Project, *models.SpotrepVersion, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	v := SelectSpotrep(p, versionID)
	if v == nil {
		if versionID != "" {
			return p, nil, fmt.Errorf("spotrep %s: %w", versionID, apperrors.ErrNotFound)
		}
		return p, nil, fmt.Errorf("project %s: %w", projectID, apperrors.ErrNoSpotrep)
	}
	return p, v, nil
}

func (s *spotrepService) GetSpotrep(ctx context.Context, projectID, versionID string) (*SpotrepView, error) {
	p, v, err := s.selected(ctx, projectID, versionID)
	if err != nil && !errors.Is(err, apperrors.ErrNoSpotrep) {
		return nil, err
	}

	now := s.now()
	view := &SpotrepView{
		Title:       "No SPOTREP",
		Versions:    make([]SpotrepVersionSummary, 0, len(p.SpotrepVersions)),
		Sections:    []models.SpotrepSection{},
		SourceTrace: []SourceDetail{},
	}
	for i, sv := range p.SpotrepVersions {
		view.Versions = append(view.Versions, SpotrepVersionSummary{
			ID:          sv.ID,
			GeneratedAt: sv.GeneratedAt,
			Relative:    format.Relative(sv.GeneratedAt, now),
			TimeWindow:  sv.TimeWindow,
			Latest:      i == len(p.SpotrepVersions)-1,
			Selected:    v != nil && sv.ID == v.ID,
		})
	}
	if v == nil {
		return view, nil
	}

	view.Title = v.ID
	view.Current = v
	view.GeneratedAt = format.DateTime(v.GeneratedAt)
	view.Sections = v.Sections.Ordered()
	view.SourceTrace = ResolveSources(p, v.Sections.Sources)
	return view, nil
}

func (s *spotrepService) CopyText(ctx context.Context, projectID, versionID string) (string, error) {
	_, v, err := s.selected(ctx, projectID, versionID)
	if err != nil {
		return "", err
	}
	return SpotrepText(v), nil
}

func (s *spotrepService) ExportYAML(ctx context.Context, projectID, versionID string) ([]byte, error) {
	_, v, err := s.selected(ctx, projectID, versionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode spotrep %s: %w", v.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode spotrep %s: %w", v.ID, err)
	}
	return buf.Bytes(), nil
}

// ExportPDF acknowledges the request without producing a document.
func (s *spotrepService) ExportPDF(ctx context.Context, projectID, versionID string) (*Notice, error) {
	_, v, err := s.selected(ctx, projectID, versionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("PDF export requested",
		zap.String("project_id", projectID),
		zap.String("spotrep_id", v.ID))
	return &Notice{
		Title:   "Export initiated",
		Message: "PDF download would start in production.",
	}, nil
}

var _ SpotrepService = (*spotrepService)(nil)
