package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for clearbrief.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Seed     SeedConfig     `yaml:"seed"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Session  SessionConfig  `yaml:"session"`
	Graph    GraphConfig    `yaml:"graph"`
	Chat     ChatConfig     `yaml:"chat"`
}

// SeedConfig controls where the workspace dataset comes from.
type SeedConfig struct {
	// Path overrides the embedded seed document. Empty uses the embedded copy.
	Path string `yaml:"path" env:"CLEARBRIEF_SEED_PATH" env-default:""`
	// Watch reloads the seed when the file at Path changes. Ignored without Path.
	Watch    bool          `yaml:"watch" env:"CLEARBRIEF_SEED_WATCH" env-default:"false"`
	Debounce time.Duration `yaml:"debounce" env:"CLEARBRIEF_SEED_DEBOUNCE" env-default:"250ms"`
}

// RealtimeConfig controls the simulated live ingestion of queued public items.
type RealtimeConfig struct {
	Enabled bool `yaml:"enabled" env:"CLEARBRIEF_REALTIME_ENABLED" env-default:"true"`
	// BufferSize is the number of live items kept per project.
	BufferSize int `yaml:"buffer_size" env:"CLEARBRIEF_REALTIME_BUFFER" env-default:"5"`
	// Tick is how often the scheduler checks project intervals.
	Tick time.Duration `yaml:"tick" env:"CLEARBRIEF_REALTIME_TICK" env-default:"1s"`
}

// SessionConfig configures per-analyst page state.
type SessionConfig struct {
	Lifetime   time.Duration `yaml:"lifetime" env:"SESSION_LIFETIME" env-default:"12h"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"clearbrief_session"`
}

// GraphConfig sets knowledge graph render defaults.
type GraphConfig struct {
	Width          int   `yaml:"width" env:"CLEARBRIEF_GRAPH_WIDTH" env-default:"1200"`
	Height         int   `yaml:"height" env:"CLEARBRIEF_GRAPH_HEIGHT" env-default:"800"`
	LayoutSeed     int64 `yaml:"layout_seed" env:"CLEARBRIEF_GRAPH_LAYOUT_SEED" env-default:"1"`
	LayoutMaxSteps int   `yaml:"layout_max_steps" env:"CLEARBRIEF_GRAPH_LAYOUT_STEPS" env-default:"200"`
}

// ChatConfig configures the assistant. Without an endpoint and model the
// assistant only answers from scripted rules.
type ChatConfig struct {
	LLMEndpoint string `yaml:"llm_endpoint" env:"CLEARBRIEF_LLM_ENDPOINT" env-default:""`
	LLMModel    string `yaml:"llm_model" env:"CLEARBRIEF_LLM_MODEL" env-default:""`
	LLMAPIKey   string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
}

// LLMEnabled returns true if an LLM fallback is configured.
func (c *ChatConfig) LLMEnabled() bool {
	return c.LLMEndpoint != "" && c.LLMModel != ""
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultPath, version)
}

// LoadFrom reads configuration from path with environment variable overrides.
// A missing file is not an error: configuration then comes from the
// environment and defaults only.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// IsDevelopment reports whether the process runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "local" || c.Env == "dev" || c.Env == "development"
}

func (c *Config) validate() error {
	if c.Realtime.BufferSize <= 0 {
		return fmt.Errorf("realtime.buffer_size must be positive, got %d", c.Realtime.BufferSize)
	}
	if c.Realtime.Tick <= 0 {
		return fmt.Errorf("realtime.tick must be positive, got %s", c.Realtime.Tick)
	}
	if c.Graph.Width <= 0 || c.Graph.Height <= 0 {
		return fmt.Errorf("graph size must be positive, got %dx%d", c.Graph.Width, c.Graph.Height)
	}
	if c.Seed.Watch && c.Seed.Path == "" {
		return fmt.Errorf("seed.watch requires seed.path")
	}
	return nil
}
