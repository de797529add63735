package config

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the loader.
var (
	ErrConfigEmpty        = errors.New("config file is empty")
	ErrConfigTooLarge     = errors.New("config file too large")
	ErrUnsupportedVersion = errors.New("unsupported config version")
)

// ValidationError represents a document-level or field-level validation
// error that is not tied to a single notification.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// RuleError represents an issue with an individual notification. Most rule
// errors are reported after the offending field has already been defaulted.
type RuleError struct {
	Index   int    // 0-based index of the notification in the config
	ID      string // Notification ID (may be empty)
	Field   string
	Message string
	Cause   error // Underlying error (e.g., regex compile error)
}

func (e *RuleError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("notification[%d] %s: %s: %s", e.Index, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("notification[%d]: %s: %s", e.Index, e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *RuleError) Unwrap() error {
	return e.Cause
}
