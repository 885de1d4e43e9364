// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
	"strings"
)

// ConfigError indicates a rules file could not be turned into a Config:
// it is unreadable, a line is malformed, a kind is unknown, or parameters are invalid.
type ConfigError struct {
	Cause   error
	Source  string // file name, or "" for in-memory sources
	Text    string // offending line or entry, when known
	Message string
	Line    int // 1-based line number, 0 when not line oriented
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Source != "" {
		b.WriteString(" in ")
		b.WriteString(e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new config error.
func NewConfigError(source string, line int, text, message string, cause error) *ConfigError {
	return &ConfigError{
		Source:  source,
		Line:    line,
		Text:    text,
		Message: message,
		Cause:   cause,
	}
}

// SchemaError indicates configured columns are missing from the dataset.
type SchemaError struct {
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	quoted := make([]string, len(e.MissingColumns))
	for i, c := range e.MissingColumns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("schema error: configured columns not in dataset: %s", strings.Join(quoted, ", "))
}

// NewSchemaError creates a new schema error.
func NewSchemaError(missing ...string) *SchemaError {
	return &SchemaError{MissingColumns: missing}
}

// ValidationError indicates command options or request validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
