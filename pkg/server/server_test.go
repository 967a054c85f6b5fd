package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/config"
	"github.com/ekaya-inc/clearbrief/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		BindAddr: "127.0.0.1",
		Port:     "0",
		Env:      "test",
		BaseURL:  "http://localhost:8080",
		Version:  "test",
		Realtime: config.RealtimeConfig{Enabled: false, BufferSize: 5, Tick: 10 * time.Millisecond},
		Session:  config.SessionConfig{Lifetime: time.Hour, CookieName: "cb_test"},
		Graph:    config.GraphConfig{Width: 320, Height: 240, LayoutSeed: 1, LayoutMaxSteps: 10},
	}
}

// writeSeedCopy writes the embedded dataset to a temp file and returns its path.
func writeSeedCopy(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "seed", "seed.json"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLayoutOptions(t *testing.T) {
	cfg := testConfig()
	opts := LayoutOptions(cfg)
	assert.Equal(t, 320, opts.Width)
	assert.Equal(t, 240, opts.Height)
	assert.Equal(t, 10, opts.MaxSteps)
	assert.Equal(t, int64(1), opts.Seed)
	assert.Equal(t, 60.0, opts.Margin)

	cfg.Graph = config.GraphConfig{}
	opts = LayoutOptions(cfg)
	assert.Equal(t, 1200, opts.Width)
	assert.Equal(t, 800, opts.Height)
}

func TestSeedSource(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "embedded", SeedSource(cfg).Name())

	cfg.Seed.Path = "/tmp/other.json"
	assert.Equal(t, "/tmp/other.json", SeedSource(cfg).Name())
}

func TestNew_MissingSeedFile(t *testing.T) {
	cfg := testConfig()
	cfg.Seed.Path = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seed")
}

func TestHandler_RoutesAndSessionCookie(t *testing.T) {
	app, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	resp, err = http.Post(srv.URL+"/login", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var names []string
	for _, c := range resp.Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "cb_test")

	resp, err = http.Get(srv.URL + "/no/such/page")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestReloadSeed(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Seed.Path = writeSeedCopy(t)

	app, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	before := len(app.Repo.List(ctx))

	_, err = app.Projects.Create(ctx, models.ProjectInput{Name: "Scratch"})
	require.NoError(t, err)
	require.Len(t, app.Repo.List(ctx), before+1)

	require.NoError(t, app.ReloadSeed(ctx))
	assert.Len(t, app.Repo.List(ctx), before)
}

func TestReloadSeed_InvalidDocumentKeepsData(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Seed.Path = writeSeedCopy(t)

	app, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	before := len(app.Repo.List(ctx))

	require.NoError(t, os.WriteFile(cfg.Seed.Path, []byte("{not json"), 0o644))
	require.Error(t, app.ReloadSeed(ctx))
	assert.Len(t, app.Repo.List(ctx), before)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Realtime.Enabled = true
	cfg.Seed.Path = writeSeedCopy(t)
	cfg.Seed.Watch = true
	cfg.Seed.Debounce = 10 * time.Millisecond

	app, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_WatchMissingDirectory(t *testing.T) {
	cfg := testConfig()
	cfg.Seed.Path = writeSeedCopy(t)

	app, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	app.cfg.Seed.Watch = true
	app.cfg.Seed.Path = filepath.Join(t.TempDir(), "gone", "seed.json")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.Error(t, app.Serve(context.Background(), ln))
}
