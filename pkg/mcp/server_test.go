package mcp

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/mcp/tools"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

func toolNames(t *testing.T, s *Server) []string {
	t.Helper()
	result := s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))

	names := make([]string, 0, len(response.Result.Tools))
	for _, tool := range response.Result.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestNewServer(t *testing.T) {
	s := NewServer("test-server", "1.0.0", zap.NewNop())

	require.NotNil(t, s)
	assert.NotNil(t, s.MCP())
	assert.Equal(t, "1.0.0", s.version)
	assert.Empty(t, toolNames(t, s))
	assert.NotNil(t, s.NewStreamableHTTPServer())
}

func TestServer_RegisterTool(t *testing.T) {
	s := NewServer("test-server", "1.0.0", zap.NewNop())

	called := false
	s.RegisterTool(mcp.NewTool("echo", mcp.WithDescription("Echo")), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("echo"), nil
	})

	assert.False(t, called, "handler should not be called during registration")
	assert.Equal(t, []string{"echo"}, toolNames(t, s))
}

func TestServer_RegisterWorkspaceTools(t *testing.T) {
	src := seed.Embedded()
	app, err := src.Load()
	require.NoError(t, err)
	logger := zap.NewNop()
	repo := repositories.NewProjectRepository(app, src, logger)

	s := NewServer("clearbrief", "1.2.3", logger)
	s.RegisterWorkspaceTools(&tools.WorkspaceToolDeps{
		Repo:     repo,
		Projects: services.NewProjectService(repo, logger),
		Overview: services.NewOverviewService(repo, nil, logger),
		Chat:     services.NewChatService(repo, nil, logger),
	})

	assert.ElementsMatch(t,
		[]string{"health", "list_projects", "get_project_overview", "list_conflicts", "ask_assistant"},
		toolNames(t, s))
}
