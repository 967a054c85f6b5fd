package tools

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

func newTestWorkspaceServer(t *testing.T) (*server.MCPServer, repositories.ProjectRepository) {
	t.Helper()
	src := seed.Embedded()
	app, err := src.Load()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := repositories.NewProjectRepository(app, src, logger)
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterWorkspaceTools(mcpServer, &WorkspaceToolDeps{
		Repo:     repo,
		Projects: services.NewProjectService(repo, logger),
		Overview: services.NewOverviewService(repo, nil, logger),
		Chat:     services.NewChatService(repo, nil, logger),
	})
	return mcpServer, repo
}

// listTools returns the registered tool names mapped to their descriptions.
func listTools(t *testing.T, s *server.MCPServer) map[string]string {
	t.Helper()
	result := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))

	tools := make(map[string]string, len(response.Result.Tools))
	for _, tool := range response.Result.Tools {
		tools[tool.Name] = tool.Description
	}
	return tools
}

// callTool invokes a tool and decodes its text content into out. It
// returns the result's isError flag.
func callTool(t *testing.T, ctx context.Context, s *server.MCPServer, name string, args map[string]any, out any) bool {
	t.Helper()
	request, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.HandleMessage(ctx, request))
	require.NoError(t, err)

	var response struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))
	require.Nil(t, response.Error, "unexpected JSON-RPC error")
	require.Len(t, response.Result.Content, 1)
	require.Equal(t, "text", response.Result.Content[0].Type)
	require.NoError(t, json.Unmarshal([]byte(response.Result.Content[0].Text), out))
	return response.Result.IsError
}
