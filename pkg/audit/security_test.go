package audit

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func TestNewSecurityAuditor(t *testing.T) {
	logger, _ := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	assert.NotNil(t, auditor)
	assert.NotNil(t, auditor.logger)
}

func TestLogRejectedContent(t *testing.T) {
	tests := []struct {
		name         string
		details      RejectedContentDetails
		wantSeverity string
	}{
		{
			name:         "sql injection is critical",
			details:      RejectedContentDetails{Field: "text", Kind: "sqli", Fingerprint: "s&sos", Length: 11},
			wantSeverity: SeverityCritical,
		},
		{
			name:         "xss is a warning",
			details:      RejectedContentDetails{Field: "headline", Kind: "xss", Length: 25},
			wantSeverity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, recorded := setupTestLogger(t)
			auditor := NewSecurityAuditor(logger)

			event := auditor.LogRejectedContent(context.Background(), "PRJ-001", tt.details)
			assert.Equal(t, EventRejectedContent, event.EventType)
			assert.Equal(t, tt.wantSeverity, event.Severity)
			assert.NotEmpty(t, event.ID)

			entries := recorded.All()
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, zapcore.ErrorLevel, entry.Level)
			assert.Equal(t, "security_audit", entry.LoggerName)

			fields := entry.ContextMap()
			assert.Equal(t, "PRJ-001", fields["project_id"])
			assert.Equal(t, tt.details.Field, fields["field"])
			assert.Equal(t, tt.wantSeverity, fields["severity"])

			var logged SecurityEvent
			require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &logged))
			assert.Equal(t, EventRejectedContent, logged.EventType)
			assert.Equal(t, "PRJ-001", logged.ProjectID)
		})
	}
}

func TestLogWorkspaceReset(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	event := auditor.LogWorkspaceReset(context.Background(), 3)
	assert.Equal(t, EventWorkspaceReset, event.EventType)
	assert.Equal(t, SeverityInfo, event.Severity)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(3), entries[0].ContextMap()["projects"])
}
