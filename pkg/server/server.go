// Package server assembles the workspace from configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/clearbrief/pkg/config"
	"github.com/ekaya-inc/clearbrief/pkg/graph"
	"github.com/ekaya-inc/clearbrief/pkg/handlers"
	"github.com/ekaya-inc/clearbrief/pkg/llm"
	"github.com/ekaya-inc/clearbrief/pkg/mcp"
	"github.com/ekaya-inc/clearbrief/pkg/mcp/tools"
	"github.com/ekaya-inc/clearbrief/pkg/middleware"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
	"github.com/ekaya-inc/clearbrief/pkg/services"
	"github.com/ekaya-inc/clearbrief/pkg/watcher"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled workspace.
type App struct {
	cfg    *config.Config
	source seed.Source

	Repo     repositories.ProjectRepository
	Staged   repositories.StagedReportRepository
	Realtime services.RealtimeService
	Projects services.ProjectService
	Overview services.OverviewService
	Graph    services.KnowledgeGraphService
	Spotrep  services.SpotrepService
	Chat     services.ChatService
	Settings services.SettingsService

	sessions *scs.SessionManager
	handler  http.Handler
	logger   *zap.Logger
}

// SeedSource returns the dataset source named by cfg.
func SeedSource(cfg *config.Config) seed.Source {
	if cfg.Seed.Path != "" {
		return seed.File(cfg.Seed.Path)
	}
	return seed.Embedded()
}

// LayoutOptions returns the graph layout sizes configured in cfg.
func LayoutOptions(cfg *config.Config) graph.LayoutOptions {
	opts := graph.DefaultLayoutOptions()
	if cfg.Graph.Width > 0 {
		opts.Width = cfg.Graph.Width
	}
	if cfg.Graph.Height > 0 {
		opts.Height = cfg.Graph.Height
	}
	if cfg.Graph.LayoutMaxSteps > 0 {
		opts.MaxSteps = cfg.Graph.LayoutMaxSteps
	}
	opts.Seed = cfg.Graph.LayoutSeed
	return opts
}

// New loads and validates the seed and wires every service and route.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	source := SeedSource(cfg)
	data, err := source.Load()
	if err != nil {
		return nil, fmt.Errorf("load seed %s: %w", source.Name(), err)
	}
	if err := seed.Validate(data); err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		source: source,
		logger: logger.Named("server"),
	}

	a.Repo = repositories.NewProjectRepository(data, source, logger)
	a.Staged = repositories.NewStagedReportRepository()
	a.Realtime = services.NewRealtimeService(a.Repo, cfg.Realtime.BufferSize, logger)
	a.Graph = services.NewKnowledgeGraphService(a.Repo, graph.NewLayouter(LayoutOptions(cfg)), logger)
	a.Projects = services.NewProjectService(a.Repo, logger)
	a.Overview = services.NewOverviewService(a.Repo, a.Realtime, logger)
	a.Spotrep = services.NewSpotrepService(a.Repo, logger)

	var completer llm.Completer
	if cfg.Chat.LLMEnabled() {
		client, err := llm.NewClient(&llm.Config{
			Endpoint: config.ResolveEndpointForDocker(cfg.Chat.LLMEndpoint, config.IsRunningInDocker()),
			Model:    cfg.Chat.LLMModel,
			APIKey:   cfg.Chat.LLMAPIKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		completer = client
	}
	a.Chat = services.NewChatService(a.Repo, completer, logger)

	a.Settings = services.NewSettingsService(a.Repo, logger,
		func(ctx context.Context) { a.Staged.Clear(ctx) },
		func(context.Context) { a.Realtime.Reset() },
		func(context.Context) { a.Graph.InvalidateLayouts() },
	)

	a.sessions = scs.New()
	a.sessions.Lifetime = cfg.Session.Lifetime
	a.sessions.Cookie.Name = cfg.Session.CookieName
	a.sessions.Cookie.HttpOnly = true
	a.sessions.Cookie.SameSite = http.SameSiteLaxMode
	a.sessions.Cookie.Secure = strings.HasPrefix(cfg.BaseURL, "https://")

	a.handler = a.routes(logger)
	return a, nil
}

// routes builds the route table. /mcp and the health probes are stateless;
// everything else loads the analyst session.
func (a *App) routes(logger *zap.Logger) http.Handler {
	sessions := handlers.NewSessions(a.sessions, logger)

	pages := http.NewServeMux()
	handlers.NewAuthHandler(a.Settings, sessions, logger).RegisterRoutes(pages)
	handlers.NewProjectsHandler(a.Projects, logger).RegisterRoutes(pages)
	handlers.NewSettingsHandler(a.Settings, sessions, logger).RegisterRoutes(pages)
	handlers.NewOverviewHandler(a.Overview, a.Realtime, sessions, logger).RegisterRoutes(pages)
	handlers.NewIngestHandler(services.NewIngestService(a.Repo, a.Staged, logger), logger).RegisterRoutes(pages)
	handlers.NewVerificationHandler(services.NewVerificationService(a.Repo, logger), logger).RegisterRoutes(pages)
	handlers.NewKnowledgeGraphHandler(a.Graph, logger).RegisterRoutes(pages)
	handlers.NewTimelineHandler(services.NewTimelineService(a.Repo, logger), logger).RegisterRoutes(pages)
	handlers.NewSpotrepHandler(a.Spotrep, logger).RegisterRoutes(pages)
	handlers.NewChatHandler(a.Chat, sessions, logger).RegisterRoutes(pages)
	handlers.NewSyncHandler(services.NewSyncService(), logger).RegisterRoutes(pages)
	handlers.RegisterNotFound(pages, logger)

	mcpServer := mcp.NewServer("clearbrief", a.cfg.Version, logger)
	mcpServer.RegisterWorkspaceTools(&tools.WorkspaceToolDeps{
		Repo:     a.Repo,
		Projects: a.Projects,
		Overview: a.Overview,
		Chat:     a.Chat,
	})

	root := http.NewServeMux()
	handlers.NewHealthHandler(a.cfg, a.Repo, a.source.Name(), logger).RegisterRoutes(root)
	handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(root)
	root.Handle("/", a.sessions.LoadAndSave(pages))

	return middleware.Base(logger).Then(root)
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.handler
}

// ReloadSeed replaces the dataset with a fresh load of the seed source and
// drops state derived from the previous one. An invalid document leaves the
// current dataset in place.
func (a *App) ReloadSeed(ctx context.Context) error {
	data, err := a.source.Load()
	if err != nil {
		return err
	}
	if err := seed.Validate(data); err != nil {
		return err
	}
	a.Repo.Replace(ctx, data)
	a.Graph.InvalidateLayouts()
	a.Realtime.Reset()
	a.logger.Info("Dataset replaced",
		zap.String("source", a.source.Name()),
		zap.Int("projects", len(data.Projects)))
	return nil
}

// Addr returns the listen address, binding all interfaces inside Docker.
func (a *App) Addr() string {
	return net.JoinHostPort(config.ListenHost(a.cfg.BindAddr, config.IsRunningInDocker()), a.cfg.Port)
}

// Run serves HTTP and runs the background tasks until ctx is done or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	var w *watcher.Watcher
	if a.cfg.Seed.Watch && a.cfg.Seed.Path != "" {
		opts := []watcher.Option{}
		if a.cfg.Seed.Debounce > 0 {
			opts = append(opts, watcher.WithDebounceDuration(a.cfg.Seed.Debounce))
		}
		var err error
		if w, err = watcher.New(a.cfg.Seed.Path, a.ReloadSeed, a.logger, opts...); err != nil {
			ln.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting clearbrief",
			zap.String("addr", ln.Addr().String()),
			zap.String("version", a.cfg.Version),
			zap.String("seed", a.source.Name()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.Realtime.Enabled {
		g.Go(func() error {
			tick := a.cfg.Realtime.Tick
			if tick <= 0 {
				tick = time.Second
			}
			return a.Realtime.Run(ctx, tick)
		})
	}

	if w != nil {
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	return g.Wait()
}
