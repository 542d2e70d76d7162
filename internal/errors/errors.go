// Package errors provides structured errors for memodex with error codes,
// categories, and retry classification, so callers can decide
// retry-vs-abort without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem.
type Category string

const (
	CategoryIndex     Category = "index"
	CategoryEmbedding Category = "embedding"
	CategoryConfig    Category = "config"
	CategoryBuild     Category = "build"
)

// Severity indicates how an error should be surfaced.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// MemodexError is the structured error type used across the module.
type MemodexError struct {
	Code       string
	Category   Category
	Severity   Severity
	Message    string
	Details    map[string]any
	Cause      error
	Retryable  bool
	Suggestion string
}

// New creates a structured error.
func New(code string, category Category, message string) *MemodexError {
	return &MemodexError{
		Code:     code,
		Category: category,
		Severity: SeverityError,
		Message:  message,
	}
}

// Wrap creates a structured error with an underlying cause.
func Wrap(code string, category Category, message string, cause error) *MemodexError {
	e := New(code, category, message)
	e.Cause = cause
	return e
}

// Error implements the error interface.
func (e *MemodexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *MemodexError) Unwrap() error {
	return e.Cause
}

// Is matches two MemodexErrors by code.
func (e *MemodexError) Is(target error) bool {
	var other *MemodexError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithDetail attaches a key/value pair for diagnostics.
func (e *MemodexError) WithDetail(key string, value any) *MemodexError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithRetryable marks the error as transient.
func (e *MemodexError) WithRetryable(retryable bool) *MemodexError {
	e.Retryable = retryable
	return e
}

// WithSuggestion attaches a user-facing remediation hint.
func (e *MemodexError) WithSuggestion(s string) *MemodexError {
	e.Suggestion = s
	return e
}

// WithSeverity overrides the default severity.
func (e *MemodexError) WithSeverity(s Severity) *MemodexError {
	e.Severity = s
	return e
}

// IsRetryable reports whether err (anywhere in its chain) is a retryable
// MemodexError.
func IsRetryable(err error) bool {
	var me *MemodexError
	if errors.As(err, &me) {
		return me.Retryable
	}
	return false
}

// CodeOf returns the code of the first MemodexError in the chain, or "".
func CodeOf(err error) string {
	var me *MemodexError
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}
