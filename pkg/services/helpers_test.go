package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
)

// Seed project ids used throughout the service tests.
const (
	borderProject = "PRJ-001"
	harborProject = "PRJ-002"
	floodProject  = "PRJ-003"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) repositories.ProjectRepository {
	t.Helper()
	src := seed.Embedded()
	app, err := src.Load()
	require.NoError(t, err)
	return repositories.NewProjectRepository(app, src, zap.NewNop())
}

func mustProject(t *testing.T, repo repositories.ProjectRepository, id string) *models.Project {
	t.Helper()
	p, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
