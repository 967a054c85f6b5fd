package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRejectedContent = errors.New("content rejected by screening")
	ErrNoSpotrep       = errors.New("no spotrep available")
	ErrLLMUnavailable  = errors.New("llm not configured")

	// ErrProjectNotFound also matches ErrNotFound.
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
)
