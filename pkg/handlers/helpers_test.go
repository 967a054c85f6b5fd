package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/config"
	"github.com/ekaya-inc/clearbrief/pkg/graph"
	"github.com/ekaya-inc/clearbrief/pkg/mcp"
	"github.com/ekaya-inc/clearbrief/pkg/mcp/tools"
	"github.com/ekaya-inc/clearbrief/pkg/middleware"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

// testEnv is the full route table over the embedded seed, served by an
// httptest server. The client keeps session cookies between requests.
type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	repo     repositories.ProjectRepository
	realtime services.RealtimeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	src := seed.Embedded()
	app, err := src.Load()
	require.NoError(t, err)
	repo := repositories.NewProjectRepository(app, src, logger)
	staged := repositories.NewStagedReportRepository()

	layouter := graph.NewLayouter(graph.LayoutOptions{Width: 320, Height: 240, Margin: 20, Seed: 1, MaxSteps: 20})
	realtime := services.NewRealtimeService(repo, services.DefaultRealtimeBufferSize, logger)
	graphService := services.NewKnowledgeGraphService(repo, layouter, logger)
	projectService := services.NewProjectService(repo, logger)
	overviewService := services.NewOverviewService(repo, realtime, logger)
	chatService := services.NewChatService(repo, nil, logger)
	settingsService := services.NewSettingsService(repo, logger,
		func(ctx context.Context) { staged.Clear(ctx) },
		func(context.Context) { realtime.Reset() },
		func(context.Context) { graphService.InvalidateLayouts() },
	)

	sm := scs.New()
	sessions := NewSessions(sm, logger)

	mcpServer := mcp.NewServer("clearbrief", "test", logger)
	mcpServer.RegisterWorkspaceTools(&tools.WorkspaceToolDeps{
		Repo:     repo,
		Projects: projectService,
		Overview: overviewService,
		Chat:     chatService,
	})

	mux := http.NewServeMux()
	NewHealthHandler(&config.Config{Version: "test", Env: "test"}, repo, src.Name(), logger).RegisterRoutes(mux)
	NewAuthHandler(settingsService, sessions, logger).RegisterRoutes(mux)
	NewProjectsHandler(projectService, logger).RegisterRoutes(mux)
	NewSettingsHandler(settingsService, sessions, logger).RegisterRoutes(mux)
	NewOverviewHandler(overviewService, realtime, sessions, logger).RegisterRoutes(mux)
	NewIngestHandler(services.NewIngestService(repo, staged, logger), logger).RegisterRoutes(mux)
	NewVerificationHandler(services.NewVerificationService(repo, logger), logger).RegisterRoutes(mux)
	NewKnowledgeGraphHandler(graphService, logger).RegisterRoutes(mux)
	NewTimelineHandler(services.NewTimelineService(repo, logger), logger).RegisterRoutes(mux)
	NewSpotrepHandler(services.NewSpotrepService(repo, logger), logger).RegisterRoutes(mux)
	NewChatHandler(chatService, sessions, logger).RegisterRoutes(mux)
	NewSyncHandler(services.NewSyncService(), logger).RegisterRoutes(mux)
	NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)
	RegisterNotFound(mux, logger)

	srv := httptest.NewServer(middleware.Session(logger, sm).Then(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{srv: srv, client: client, repo: repo, realtime: realtime}
}

// do sends a request with an optional JSON body and returns the response
// with its body read.
func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// decodeData unwraps the data field of a successful ApiResponse.
func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope), string(body))
	require.True(t, envelope.Success, string(body))
	return envelope.Data
}

func decodeError(t *testing.T, body []byte) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func stringsReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}
