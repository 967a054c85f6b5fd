package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/clearbrief/pkg/services"
)

func TestRegisterWorkspaceTools(t *testing.T) {
	s, _ := newTestWorkspaceServer(t)

	tools := listTools(t, s)
	for _, name := range []string{"list_projects", "get_project_overview", "list_conflicts", "ask_assistant"} {
		assert.Contains(t, tools, name)
	}
}

func TestListProjectsTool(t *testing.T) {
	s, _ := newTestWorkspaceServer(t)

	var all []services.ProjectCard
	require.False(t, callTool(t, context.Background(), s, "list_projects", nil, &all))
	assert.Len(t, all, 3)

	var harbor []services.ProjectCard
	require.False(t, callTool(t, context.Background(), s, "list_projects", map[string]any{"query": "  harbor "}, &harbor))
	require.Len(t, harbor, 1)
	assert.Equal(t, "PRJ-002", harbor[0].ID)
}

func TestGetProjectOverviewTool(t *testing.T) {
	s, _ := newTestWorkspaceServer(t)
	ctx := context.Background()

	var combined services.Overview
	require.False(t, callTool(t, ctx, s, "get_project_overview", map[string]any{"project_id": "PRJ-001"}, &combined))
	assert.Equal(t, "Combined View", combined.ViewLabel)
	assert.Equal(t, 6, combined.Stats.MilitaryReports)
	assert.Len(t, combined.Feed, services.FeedLimit)

	var military services.Overview
	require.False(t, callTool(t, ctx, s, "get_project_overview",
		map[string]any{"project_id": "PRJ-001", "military_only": true}, &military))
	assert.Equal(t, "Military Only", military.ViewLabel)
	assert.Len(t, military.Feed, 6)
}

func TestGetProjectOverviewTool_Errors(t *testing.T) {
	s, _ := newTestWorkspaceServer(t)
	ctx := context.Background()

	var missing ErrorResponse
	require.True(t, callTool(t, ctx, s, "get_project_overview", map[string]any{"project_id": "PRJ-404"}, &missing))
	assert.Equal(t, "PROJECT_NOT_FOUND", missing.Code)

	var blank ErrorResponse
	require.True(t, callTool(t, ctx, s, "get_project_overview", map[string]any{"project_id": "  "}, &blank))
	assert.Equal(t, "invalid_parameters", blank.Code)

	var absent ErrorResponse
	require.True(t, callTool(t, ctx, s, "get_project_overview", nil, &absent))
	assert.Equal(t, "invalid_parameters", absent.Code)
}

func TestListConflictsTool(t *testing.T) {
	s, _ := newTestWorkspaceServer(t)
	ctx := context.Background()

	var open listConflictsResult
	require.False(t, callTool(t, ctx, s, "list_conflicts", map[string]any{"project_id": "PRJ-001"}, &open))
	assert.Equal(t, 2, open.Open)
	require.Len(t, open.Conflicts, 2)
	assert.Equal(t, "C-001", open.Conflicts[0].ID)

	var all listConflictsResult
	require.False(t, callTool(t, ctx, s, "list_conflicts",
		map[string]any{"project_id": "PRJ-001", "include_resolved": true}, &all))
	assert.Equal(t, 2, all.Open)
	assert.Len(t, all.Conflicts, 3)

	var none listConflictsResult
	require.False(t, callTool(t, ctx, s, "list_conflicts", map[string]any{"project_id": "PRJ-003"}, &none))
	assert.Empty(t, none.Conflicts)
	assert.NotNil(t, none.Conflicts)
}

func TestAskAssistantTool(t *testing.T) {
	s, _ := newTestWorkspaceServer(t)
	ctx := context.Background()

	var answer askAssistantResult
	require.False(t, callTool(t, ctx, s, "ask_assistant",
		map[string]any{"project_id": "PRJ-001", "question": "Are there any unresolved conflicts?"}, &answer))
	assert.Equal(t, services.ChatRuleConflicts, answer.Rule)
	assert.True(t, strings.HasPrefix(answer.Answer, "There are 2 active conflicts"))
	assert.Len(t, answer.Citations, 4)
	assert.Len(t, answer.Sources, 4)

	var empty ErrorResponse
	require.True(t, callTool(t, ctx, s, "ask_assistant",
		map[string]any{"project_id": "PRJ-001", "question": "   "}, &empty))
	assert.Equal(t, "invalid_parameters", empty.Code)

	var missing ErrorResponse
	require.True(t, callTool(t, ctx, s, "ask_assistant", map[string]any{"project_id": "PRJ-001"}, &missing))
	assert.Equal(t, "invalid_parameters", missing.Code)
}
