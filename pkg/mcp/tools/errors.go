package tools

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/clearbrief/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results. Errors the
// caller can act on are returned as tool results so the client shows them
// instead of swallowing a protocol error.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors such as invalid parameters or unknown
// projects. System failures should still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	})
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// serviceErrorResult converts a user-facing service error into a tool
// result. It returns nil for errors that are not the caller's fault.
func serviceErrorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperrors.ErrProjectNotFound):
		return NewErrorResult("PROJECT_NOT_FOUND", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return NewErrorResult("NOT_FOUND", err.Error())
	case errors.Is(err, apperrors.ErrInvalidInput):
		return NewErrorResult("invalid_parameters", err.Error())
	}
	return nil
}
