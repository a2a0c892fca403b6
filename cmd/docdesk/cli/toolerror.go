// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies startup errors so the entry point can pick
// an exit code without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates bad input: an unknown flag, an
	// unexpected argument, or a config file that does not validate.
	// The user should fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a named file does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates a temporary failure such as an
	// unreachable backend.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected failure.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by the docdesk entry point.
// It wraps an inner error, preserving the chain for errors.Is and
// errors.As. Use the category constructors rather than building one
// directly.
type ToolError struct {
	// Category classifies the error.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is optional remediation text printed after the message.
	Hint string
}

// Error returns the underlying message followed, after a blank line,
// by the hint when one is set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error { return e.Err }

// WithHint attaches remediation text and returns the receiver for
// chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// ExitCode maps the category to a process exit code: 2 for usage
// problems, 1 for everything else.
func (e *ToolError) ExitCode() int {
	if e.Category == CategoryValidation {
		return 2
	}
	return 1
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a named file does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
