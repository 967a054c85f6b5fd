package handlers

import (
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/config"
	"github.com/ekaya-inc/clearbrief/pkg/repositories"
)

// PingResponse describes the running workspace: build, host and the dataset
// currently loaded.
type PingResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname,omitempty"`
	Environment string `json:"environment"`
	Seed        string `json:"seed"`
	Projects    int    `json:"projects"`
	Realtime    bool   `json:"realtime"`
	LLM         bool   `json:"llm"`
}

// HealthHandler serves the liveness and ping endpoints. Both sit outside the
// analyst session so load balancers and scripts can call them without a
// cookie.
type HealthHandler struct {
	cfg    *config.Config
	repo   repositories.ProjectRepository
	seed   string
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. seedName is reported by /ping
// as the source of the loaded dataset.
func NewHealthHandler(cfg *config.Config, repo repositories.ProjectRepository, seedName string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, repo: repo, seed: seedName, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health answers "ok" once the workspace is serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping reports the build and the dataset in memory. A failed hostname
// lookup leaves the field empty.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		h.logger.Warn("Hostname lookup failed", zap.Error(err))
	}

	response := PingResponse{
		Status:      "ok",
		Service:     "clearbrief",
		Version:     h.cfg.Version,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		Seed:        h.seed,
		Projects:    len(h.repo.List(r.Context())),
		Realtime:    h.cfg.Realtime.Enabled,
		LLM:         h.cfg.Chat.LLMEnabled(),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
