// Package audit provides security audit logging for SIEM consumption.
// Events are logged in structured JSON under the "security_audit" logger
// so they can be filtered out of the regular service log.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventRejectedContent is logged when screening flags a submitted field.
	EventRejectedContent SecurityEventType = "rejected_content"
	// EventWorkspaceReset is logged when all workspace data is restored from the seed.
	EventWorkspaceReset SecurityEventType = "workspace_reset"
)

// Severity levels attached to events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// SecurityEvent is one auditable event.
type SecurityEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	ProjectID string            `json:"project_id,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"`
}

// RejectedContentDetails names the flagged field of a submission. The value
// itself is never logged.
type RejectedContentDetails struct {
	Field       string `json:"field"`
	Kind        string `json:"kind"`
	Fingerprint string `json:"fingerprint,omitempty"` // libinjection fingerprint for pattern analysis
	Length      int    `json:"length"`
}

// SecurityAuditor logs security events.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates an auditor logging under the "security_audit"
// namespace of logger.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{
		logger: logger.Named("security_audit"),
		now:    time.Now,
	}
}

func (a *SecurityAuditor) event(eventType SecurityEventType, projectID string, details any, severity string) (SecurityEvent, string) {
	event := SecurityEvent{
		ID:        uuid.New().String(),
		Timestamp: a.now().UTC(),
		EventType: eventType,
		ProjectID: projectID,
		Details:   details,
		Severity:  severity,
	}
	// Known types; marshaling does not fail.
	eventJSON, _ := json.Marshal(event)
	return event, string(eventJSON)
}

// LogRejectedContent records a submission refused by screening. SQL
// injection is critical; other kinds are warnings.
//
// Example usage:
//
//	auditor.LogRejectedContent(ctx, "PRJ-001", audit.RejectedContentDetails{
//	    Field:       "text",
//	    Kind:        "sqli",
//	    Fingerprint: "s&sos",
//	    Length:      11,
//	})
func (a *SecurityAuditor) LogRejectedContent(ctx context.Context, projectID string, details RejectedContentDetails) SecurityEvent {
	severity := SeverityWarning
	if details.Kind == "sqli" {
		severity = SeverityCritical
	}
	event, eventJSON := a.event(EventRejectedContent, projectID, details, severity)

	a.logger.Error("Submitted content rejected",
		zap.String("event_json", eventJSON),
		zap.String("project_id", projectID),
		zap.String("field", details.Field),
		zap.String("kind", details.Kind),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("severity", severity),
	)
	return event
}

// LogWorkspaceReset records a reset of every project to the seed.
func (a *SecurityAuditor) LogWorkspaceReset(ctx context.Context, projects int) SecurityEvent {
	event, eventJSON := a.event(EventWorkspaceReset, "", map[string]int{"projects": projects}, SeverityInfo)

	a.logger.Info("Workspace reset",
		zap.String("event_json", eventJSON),
		zap.Int("projects", projects),
		zap.String("severity", SeverityInfo),
	)
	return event
}
