package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Chat Roles
// ============================================================================

// ChatRole represents the role of a chat message sender.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ============================================================================
// Scripted Q&A
// ============================================================================

// ChatQAPair is a canned answer for a known question.
type ChatQAPair struct {
	Q         string   `json:"q"`
	A         string   `json:"a"`
	Citations []string `json:"citations"`
}

// ============================================================================
// Chat Message
// ============================================================================

// ChatMessage is one entry of an analyst's assistant transcript.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Citations []string  `json:"citations,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates a message with a fresh id stamped at now.
func NewChatMessage(role ChatRole, content string, citations []string, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Citations: citations,
		Timestamp: now,
	}
}

// ChatAnswer is the responder's output before it becomes a message.
type ChatAnswer struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
	// Rule names the branch that produced the answer, for logging and tests.
	Rule string `json:"rule"`
}
