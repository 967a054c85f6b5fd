package config

import (
	"testing"
)

func TestListenHost(t *testing.T) {
	tests := []struct {
		bind     string
		inDocker bool
		expected string
	}{
		{"127.0.0.1", false, "127.0.0.1"},
		{"127.0.0.1", true, "0.0.0.0"},
		{"localhost", true, "0.0.0.0"},
		{"10.0.0.5", true, "10.0.0.5"},
	}

	for _, tt := range tests {
		if got := ListenHost(tt.bind, tt.inDocker); got != tt.expected {
			t.Errorf("ListenHost(%q, %v) = %q, want %q", tt.bind, tt.inDocker, got, tt.expected)
		}
	}
}

func TestResolveEndpointForDocker(t *testing.T) {
	tests := []struct {
		endpoint string
		inDocker bool
		expected string
	}{
		{"http://localhost:8000/v1", false, "http://localhost:8000/v1"},
		{"http://localhost:8000/v1", true, "http://host.docker.internal:8000/v1"},
		{"http://127.0.0.1/v1", true, "http://host.docker.internal/v1"},
		{"https://api.openai.com/v1", true, "https://api.openai.com/v1"},
	}

	for _, tt := range tests {
		if got := ResolveEndpointForDocker(tt.endpoint, tt.inDocker); got != tt.expected {
			t.Errorf("ResolveEndpointForDocker(%q, %v) = %q, want %q", tt.endpoint, tt.inDocker, got, tt.expected)
		}
	}
}
