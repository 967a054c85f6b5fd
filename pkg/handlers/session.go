package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/models"
)

const (
	sessionKeyUser      = "user"
	sessionKeyIsolation = "isolation"
	sessionKeyChat      = "chat:"
)

// Sessions keeps the page state that lives between requests: the signed-in
// analyst, the source isolation toggle and per-project chat transcripts.
// Every request handled here must pass through the session manager's
// LoadAndSave middleware.
type Sessions struct {
	sm     *scs.SessionManager
	logger *zap.Logger
}

// NewSessions wraps a session manager.
func NewSessions(sm *scs.SessionManager, logger *zap.Logger) *Sessions {
	return &Sessions{sm: sm, logger: logger.Named("sessions")}
}

// SignIn records the analyst and rotates the session token.
func (s *Sessions) SignIn(ctx context.Context, email string) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session token: %w", err)
	}
	s.sm.Put(ctx, sessionKeyUser, email)
	return nil
}

// User returns the signed-in analyst, or "" before login.
func (s *Sessions) User(ctx context.Context) string {
	return s.sm.GetString(ctx, sessionKeyUser)
}

// Isolation returns the request's source isolation. An ?isolation= query
// parameter overrides the stored toggle; the default is combined.
func (s *Sessions) Isolation(r *http.Request) models.SourceIsolation {
	if v := r.URL.Query().Get("isolation"); v != "" {
		return models.ParseSourceIsolation(v)
	}
	return models.ParseSourceIsolation(s.sm.GetString(r.Context(), sessionKeyIsolation))
}

// SetIsolation stores the toggle for later requests.
func (s *Sessions) SetIsolation(ctx context.Context, isolation models.SourceIsolation) {
	s.sm.Put(ctx, sessionKeyIsolation, string(isolation))
}

// Transcript returns the chat messages exchanged on a project, oldest
// first. A corrupt transcript is dropped.
func (s *Sessions) Transcript(ctx context.Context, projectID string) []models.ChatMessage {
	messages := []models.ChatMessage{}
	raw := s.sm.GetString(ctx, sessionKeyChat+projectID)
	if raw == "" {
		return messages
	}
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		s.logger.Warn("Discarding unreadable chat transcript",
			zap.String("project_id", projectID),
			zap.Error(err))
		s.sm.Remove(ctx, sessionKeyChat+projectID)
		return []models.ChatMessage{}
	}
	return messages
}

// AppendTranscript adds messages to a project's transcript and returns the
// full transcript.
func (s *Sessions) AppendTranscript(ctx context.Context, projectID string, msgs ...models.ChatMessage) ([]models.ChatMessage, error) {
	messages := append(s.Transcript(ctx, projectID), msgs...)
	raw, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("encode chat transcript: %w", err)
	}
	s.sm.Put(ctx, sessionKeyChat+projectID, string(raw))
	return messages, nil
}
