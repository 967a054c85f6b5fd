package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

func TestStagedReportRepository_AddListClear(t *testing.T) {
	ctx := context.Background()
	repo := NewStagedReportRepository()

	repo.Add(ctx, "PRJ-001", models.StagedReport{ID: "UPL-001", Text: "first"})
	repo.Add(ctx, "PRJ-001", models.StagedReport{ID: "UPL-002", Text: "second"})
	repo.Add(ctx, "PRJ-002", models.StagedReport{ID: "UPL-003", Text: "other"})

	got := repo.List(ctx, "PRJ-001")
	require.Len(t, got, 2)
	assert.Equal(t, "UPL-002", got[0].ID)
	assert.Equal(t, "UPL-001", got[1].ID)

	assert.Len(t, repo.List(ctx, "PRJ-002"), 1)
	assert.Empty(t, repo.List(ctx, "PRJ-404"))

	repo.Clear(ctx)
	assert.Empty(t, repo.List(ctx, "PRJ-001"))
}
