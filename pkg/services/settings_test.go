package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

func TestSettingsService_GetLogin(t *testing.T) {
	svc := NewSettingsService(newTestRepo(t), zap.NewNop())

	view := svc.GetLogin(context.Background())
	assert.Equal(t, "ClearBrief", view.AppName)
	assert.True(t, view.DemoMode)
	assert.Equal(t, "DEMO ENVIRONMENT - UNCLASSIFIED SAMPLE DATA ONLY", view.Banner)
	assert.Equal(t, DefaultLoginEmail, view.DefaultEmail)
}

func TestSettingsService_Login(t *testing.T) {
	svc := NewSettingsService(newTestRepo(t), zap.NewNop())

	notice := svc.Login(context.Background(), "")
	assert.Equal(t, "Demo mode: authentication bypassed", notice.Title)
	assert.Equal(t, "Welcome to ClearBrief. All features are accessible.", notice.Message)
}

func TestSettingsService_GetSettings(t *testing.T) {
	svc := NewSettingsService(newTestRepo(t), zap.NewNop())

	view := svc.GetSettings(context.Background(), models.IsolationMilitary)
	assert.Equal(t, models.IsolationMilitary, view.Isolation)
	assert.Equal(t, 0.9, view.MilitaryDefaultConfidence)
	assert.Equal(t, [2]float64{0.2, 0.8}, view.PublicConfidenceRange)
	assert.Equal(t, 3, view.Projects)
	assert.Equal(t, []ReliabilityDefault{
		{Key: "official_gov", Label: "Official Government", Value: 80},
		{Key: "major_news", Label: "Major News Outlets", Value: 70},
		{Key: "local_news", Label: "Local News", Value: 55},
		{Key: "verified_reporter", Label: "Verified Reporters", Value: 50},
		{Key: "known_user", Label: "Known Users", Value: 35},
		{Key: "unknown_user", Label: "Unknown Users", Value: 20},
	}, view.Reliability)
}

func TestReliabilityDefaults(t *testing.T) {
	got := ReliabilityDefaults(map[string]float64{
		"zeta_feed":    0.4,
		"alpha_wire":   65,
		"major_news":   0.7,
		"official_gov": 1,
	})
	assert.Equal(t, []ReliabilityDefault{
		{Key: "official_gov", Label: "Official Government", Value: 100},
		{Key: "major_news", Label: "Major News Outlets", Value: 70},
		{Key: "alpha_wire", Label: "alpha_wire", Value: 65},
		{Key: "zeta_feed", Label: "zeta_feed", Value: 40},
	}, got)

	assert.Empty(t, ReliabilityDefaults(nil))
}

func TestSettingsService_Reset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var hookCalls int
	svc := NewSettingsService(repo, zap.NewNop(), func(context.Context) { hookCalls++ }, func(context.Context) { hookCalls++ })

	projects := NewProjectService(repo, zap.NewNop())
	_, err := projects.Create(ctx, models.ProjectInput{Name: "Scratch"})
	require.NoError(t, err)
	require.Len(t, repo.List(ctx), 4)

	notice, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo data reset", notice.Title)
	assert.Equal(t, "All data has been reset to initial state.", notice.Message)
	assert.Equal(t, 2, hookCalls)
	assert.Len(t, repo.List(ctx), 3)
}
