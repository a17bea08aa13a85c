package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors handled at the request boundary.
var (
	// ErrUnsupportedPlatform rejects URLs on the explicit exclusion list.
	ErrUnsupportedPlatform = errors.New("platform not supported")
	// ErrNotFound signals a missing artifact.
	ErrNotFound = errors.New("artifact not found")
	// ErrForbidden signals a path containment violation.
	ErrForbidden = errors.New("access denied")
)

// ValidationError marks malformed, oversized, or dangerous input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a ValidationError with the given reason.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ExtractionError wraps an engine failure with no recoverable artifact.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
