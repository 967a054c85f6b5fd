package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

func timelineIDs(events []TimelineEvent) []string {
	return ids(events, func(e TimelineEvent) string { return e.ID })
}

func TestParseTimelineFilter(t *testing.T) {
	assert.Equal(t, TimelineVerified, ParseTimelineFilter("verified"))
	assert.Equal(t, TimelineMilitary, ParseTimelineFilter("military"))
	assert.Equal(t, TimelineAll, ParseTimelineFilter(""))
	assert.Equal(t, TimelineAll, ParseTimelineFilter("everything"))
}

func TestTimelineEvents_OldestFirst(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)

	events := TimelineEvents(p)
	assert.Equal(t, []string{
		"MIL-001", "MIL-002", "PUB-010", "MIL-003", "PUB-002", "PUB-001", "PUB-003",
		"MIL-004", "PUB-004", "MIL-005", "PUB-005", "PUB-006", "PUB-007", "MIL-006",
	}, timelineIDs(events))

	for _, e := range events {
		assert.NotEmpty(t, e.TimeLabel, e.ID)
		assert.NotEmpty(t, e.DateLabel, e.ID)
	}
}

func TestTimelineEvents_PublicItemsWithoutLocation(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)

	for _, e := range TimelineEvents(p) {
		if e.ID == "PUB-006" {
			assert.Equal(t, "Unknown", e.Location.Name)
			assert.Equal(t, models.LabelUnverified, e.Label)
			return
		}
	}
	t.Fatal("PUB-006 missing from timeline")
}

func TestFilterTimeline(t *testing.T) {
	events := TimelineEvents(mustProject(t, newTestRepo(t), borderProject))

	tests := []struct {
		filter TimelineFilter
		want   int
	}{
		{TimelineAll, 14},
		{TimelineMilitary, 6},
		{TimelinePublic, 8},
		{TimelineVerified, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Len(t, FilterTimeline(events, tt.filter), tt.want)
		})
	}
}

func TestChanges_SinceLatestSpotrep(t *testing.T) {
	p := mustProject(t, newTestRepo(t), borderProject)

	c := Changes(p, TimelineEvents(p))
	assert.True(t, c.HasSpotrep)
	assert.Empty(t, c.Message)
	assert.Equal(t, 6, c.NewEvents)
	assert.Equal(t, 3, c.NewVerified)
	assert.Equal(t, 2, c.OpenConflicts)
	assert.Equal(t, []string{"PUB-004", "MIL-005", "PUB-005", "PUB-006", "PUB-007", "MIL-006"}, c.EventIDs)
	assert.Equal(t, 0, c.More)
}

func TestChanges_TruncatesIDs(t *testing.T) {
	p := &models.Project{
		SpotrepVersions: []models.SpotrepVersion{{ID: "S-1", GeneratedAt: "2024-01-01T00:00:00Z"}},
	}
	for _, id := range []string{"MIL-1", "MIL-2", "MIL-3", "MIL-4", "MIL-5", "MIL-6", "MIL-7", "MIL-8"} {
		p.MilitaryReports = append(p.MilitaryReports, models.MilitaryReport{ID: id, ReportedAt: "2024-02-01T00:00:00Z"})
	}

	c := Changes(p, TimelineEvents(p))
	assert.Equal(t, 8, c.NewEvents)
	assert.Len(t, c.EventIDs, ChangedIDsLimit)
	assert.Equal(t, 2, c.More)
}

func TestChanges_NoSpotrep(t *testing.T) {
	p := mustProject(t, newTestRepo(t), floodProject)

	c := Changes(p, TimelineEvents(p))
	assert.False(t, c.HasSpotrep)
	assert.Equal(t, "No SPOTREP generated yet", c.Message)
	assert.Equal(t, 1, c.NewEvents)
}

func TestTimelineService_GetTimeline(t *testing.T) {
	svc := NewTimelineService(newTestRepo(t), zap.NewNop())

	view, err := svc.GetTimeline(context.Background(), borderProject, TimelineMilitary)
	require.NoError(t, err)

	assert.Equal(t, TimelineMilitary, view.Filter)
	assert.Len(t, view.Events, 6)
	assert.Equal(t, "Northern Ridge Sector", view.Region)
	assert.Equal(t, []string{"E-001", "E-002", "E-003"}, ids(view.Locations, func(e models.Entity) string { return e.ID }))
	assert.Equal(t, 6, view.Changes.NewEvents, "changes ignore the filter")
}
