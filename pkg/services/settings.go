package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/audit"
	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// DefaultLoginEmail pre-fills the demo login form.
const DefaultLoginEmail = "analyst@clearbrief.gov"

// reliabilityOrder is the display order of the reliability sliders.
var reliabilityOrder = []string{
	"official_gov",
	"major_news",
	"local_news",
	"verified_reporter",
	"known_user",
	"unknown_user",
}

var reliabilityLabels = map[string]string{
	"official_gov":      "Official Government",
	"major_news":        "Major News Outlets",
	"local_news":        "Local News",
	"verified_reporter": "Verified Reporters",
	"known_user":        "Known Users",
	"unknown_user":      "Unknown Users",
}

// ReliabilityDefault is one slider of the settings page, as a percentage.
type ReliabilityDefault struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// SettingsView is the settings page.
type SettingsView struct {
	AppName                   string                 `json:"appName"`
	DemoMode                  bool                   `json:"demoMode"`
	Banner                    string                 `json:"banner"`
	Isolation                 models.SourceIsolation `json:"isolation"`
	MilitaryDefaultConfidence float64                `json:"militaryDefaultConfidence"`
	PublicConfidenceRange     [2]float64             `json:"publicConfidenceRange"`
	Reliability               []ReliabilityDefault   `json:"reliability"`
	Projects                  int                    `json:"projects"`
}

// LoginView is the login page.
type LoginView struct {
	AppName      string `json:"appName"`
	DemoMode     bool   `json:"demoMode"`
	Banner       string `json:"banner"`
	DefaultEmail string `json:"defaultEmail"`
	Tagline      string `json:"tagline"`
}

// SettingsService serves the login and settings pages and resets the
// workspace.
type SettingsService interface {
	GetLogin(ctx context.Context) *LoginView
	// Login accepts any credentials; authentication is bypassed.
	Login(ctx context.Context, email string) *Notice
	GetSettings(ctx context.Context, isolation models.SourceIsolation) *SettingsView
	// Reset restores the seed and clears all derived in-memory state.
	Reset(ctx context.Context) (*Notice, error)
}

// ResetHook clears state that derives from the dataset.
type ResetHook func(ctx context.Context)

type settingsService struct {
	repo    repositories.ProjectRepository
	hooks   []ResetHook
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewSettingsService creates a settings service. hooks run after every
// successful reset.
func NewSettingsService(repo repositories.ProjectRepository, logger *zap.Logger, hooks ...ResetHook) SettingsService {
	return &settingsService{
		repo:    repo,
		hooks:   hooks,
		auditor: audit.NewSecurityAuditor(logger),
		logger:  logger.Named("settings"),
	}
}

func (s *settingsService) GetLogin(ctx context.Context) *LoginView {
	app := s.repo.AppData(ctx)
	return &LoginView{
		AppName:      app.AppName,
		DemoMode:     app.DemoMode,
		Banner:       app.Auth.Banner,
		DefaultEmail: DefaultLoginEmail,
		Tagline:      "Unified Crisis Intelligence and Investigation Platform",
	}
}

func (s *settingsService) Login(ctx context.Context, email string) *Notice {
	app := s.repo.AppData(ctx)
	if email == "" {
		email = DefaultLoginEmail
	}
	s.logger.Info("Login bypassed", zap.String("email", email))
	return &Notice{
		Title:   "Demo mode: authentication bypassed",
		Message: fmt.Sprintf("Welcome to %s. All features are accessible.", app.AppName),
	}
}

func (s *settingsService) GetSettings(ctx context.Context, isolation models.SourceIsolation) *SettingsView {
	app := s.repo.AppData(ctx)
	return &SettingsView{
		AppName:                   app.AppName,
		DemoMode:                  app.DemoMode,
		Banner:                    app.Auth.Banner,
		Isolation:                 isolation,
		MilitaryDefaultConfidence: app.SourceDefaults.MilitaryDefaultConfidence,
		PublicConfidenceRange:     app.SourceDefaults.PublicDefaultConfidenceRange,
		Reliability:               ReliabilityDefaults(app.SourceDefaults.ReliabilityBySourceType),
		Projects:                  len(app.Projects),
	}
}

// ReliabilityDefaults orders the reliability baseline for display. Known
// keys come first in their fixed order; unknown keys follow alphabetically.
// Values at or below 1 are treated as fractions.
func ReliabilityDefaults(values map[string]float64) []ReliabilityDefault {
	out := make([]ReliabilityDefault, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, key := range reliabilityOrder {
		if v, ok := values[key]; ok {
			out = append(out, ReliabilityDefault{Key: key, Label: reliabilityLabels[key], Value: asPercent(v)})
			seen[key] = true
		}
	}

	var extra []string
	for key := range values {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		out = append(out, ReliabilityDefault{Key: key, Label: key, Value: asPercent(values[key])})
	}
	return out
}

func asPercent(v float64) int {
	if v <= 1 {
		return percent(v)
	}
	return int(math.Round(v))
}

func (s *settingsService) Reset(ctx context.Context) (*Notice, error) {
	if err := s.repo.Reset(ctx); err != nil {
		return nil, err
	}
	for _, hook := range s.hooks {
		hook(ctx)
	}
	s.auditor.LogWorkspaceReset(ctx, len(s.repo.List(ctx)))
	s.logger.Debug("Reset hooks run", zap.Int("hooks", len(s.hooks)))
	return &Notice{
		Title:   "Demo data reset",
		Message: "All data has been reset to initial state.",
	}, nil
}

var _ SettingsService = (*settingsService)(nil)
