package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
port: "9000"
env: "test"
realtime:
  buffer_size: 7
graph:
  width: 640
  height: 480
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	os.Unsetenv("BASE_URL")
	t.Setenv("PORT", "4443")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadFrom(configPath, "test-version")
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.Port != "4443" {
		t.Errorf("expected Port=4443 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.BaseURL != "http://localhost:4443" {
		t.Errorf("expected BaseURL auto-derived from PORT, got %s", cfg.BaseURL)
	}
	if cfg.Realtime.BufferSize != 7 {
		t.Errorf("expected Realtime.BufferSize=7 (from yaml), got %d", cfg.Realtime.BufferSize)
	}
	if cfg.Graph.Width != 640 || cfg.Graph.Height != 480 {
		t.Errorf("expected graph 640x480 (from yaml), got %dx%d", cfg.Graph.Width, cfg.Graph.Height)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("BASE_URL")
	os.Unsetenv("CLEARBRIEF_SEED_PATH")
	os.Unsetenv("CLEARBRIEF_SEED_WATCH")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default Port=8080, got %s", cfg.Port)
	}
	if cfg.Realtime.BufferSize != 5 {
		t.Errorf("expected default buffer size 5, got %d", cfg.Realtime.BufferSize)
	}
	if cfg.Realtime.Tick != time.Second {
		t.Errorf("expected default tick 1s, got %s", cfg.Realtime.Tick)
	}
	if cfg.Chat.LLMEnabled() {
		t.Error("expected LLM disabled by default")
	}
}

func TestLoadFrom_WatchRequiresPath(t *testing.T) {
	os.Unsetenv("CLEARBRIEF_SEED_PATH")
	t.Setenv("CLEARBRIEF_SEED_WATCH", "true")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	if err == nil {
		t.Fatal("expected error when seed.watch is set without seed.path")
	}
	if !strings.Contains(err.Error(), "seed.watch") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChatConfig_LLMEnabled(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ChatConfig
		expected bool
	}{
		{name: "empty", cfg: ChatConfig{}, expected: false},
		{name: "endpoint only", cfg: ChatConfig{LLMEndpoint: "http://localhost:8000/v1"}, expected: false},
		{name: "model only", cfg: ChatConfig{LLMModel: "gpt-4o"}, expected: false},
		{name: "both", cfg: ChatConfig{LLMEndpoint: "http://localhost:8000/v1", LLMModel: "gpt-4o"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.LLMEnabled(); got != tt.expected {
				t.Errorf("LLMEnabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}
