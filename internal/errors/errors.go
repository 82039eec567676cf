// Package errors provides typed error definitions for treeline.
// This package consolidates error handling and provides structured error types
// that can be used for better error classification and handling.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a unique identifier for different error types
type ErrorCode string

const (
	// Configuration errors
	ErrConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrConfigParse      ErrorCode = "CONFIG_PARSE"
	ErrCommandNotFound  ErrorCode = "COMMAND_NOT_FOUND"
	ErrNoCommand        ErrorCode = "NO_COMMAND"
	ErrInvalidMode      ErrorCode = "INVALID_MODE"
	ErrInvalidPortRange ErrorCode = "INVALID_PORT_RANGE"

	// Execution errors
	ErrSpawnFailed     ErrorCode = "SPAWN_FAILED"
	ErrExecutionFailed ErrorCode = "EXECUTION_FAILED"
	ErrWindowCreate    ErrorCode = "WINDOW_CREATE"

	// Resource errors
	ErrPortsExhausted ErrorCode = "PORTS_EXHAUSTED"

	// Reconciliation errors
	ErrWindowSort ErrorCode = "WINDOW_SORT"

	// Git errors
	ErrGitRepoNotFound   ErrorCode = "GIT_REPO_NOT_FOUND"
	ErrGitWorktreeFailed ErrorCode = "GIT_WORKTREE_FAILED"
	ErrGitBranchNotFound ErrorCode = "GIT_BRANCH_NOT_FOUND"
	ErrGitUncommitted    ErrorCode = "GIT_UNCOMMITTED_CHANGES"

	// Multiplexer errors
	ErrTmuxUnavailable ErrorCode = "TMUX_UNAVAILABLE"

	// Database errors
	ErrDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	ErrDatabaseQuery      ErrorCode = "DATABASE_QUERY"
	ErrDatabaseMigration  ErrorCode = "DATABASE_MIGRATION"

	// Validation errors
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrInvalidPath      ErrorCode = "INVALID_PATH"

	// Internal errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
	ErrNotFound ErrorCode = "NOT_FOUND"
)

// TreelineError represents a structured error with additional context
type TreelineError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *TreelineError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *TreelineError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TreelineError) WithContext(key string, value interface{}) *TreelineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds the underlying cause error
func (e *TreelineError) WithCause(cause error) *TreelineError {
	e.Cause = cause
	return e
}

// GetHTTPStatus returns the appropriate HTTP status code for this error
func (e *TreelineError) GetHTTPStatus() int {
	switch e.Code {
	case ErrConfigNotFound, ErrCommandNotFound, ErrGitRepoNotFound, ErrGitBranchNotFound, ErrNotFound:
		return http.StatusNotFound
	case ErrConfigInvalid, ErrConfigParse, ErrNoCommand, ErrInvalidMode, ErrInvalidPortRange,
		ErrValidationFailed, ErrInvalidInput, ErrInvalidPath:
		return http.StatusBadRequest
	case ErrTmuxUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new TreelineError
func New(code ErrorCode, message string) *TreelineError {
	return &TreelineError{
		Code:    code,
		Message: message,
	}
}

// NewWithHint creates a new TreelineError carrying a corrective hint
func NewWithHint(code ErrorCode, message, hint string) *TreelineError {
	return &TreelineError{
		Code:    code,
		Message: message,
		Hint:    hint,
	}
}

// Wrap creates a new TreelineError that wraps an existing error
func Wrap(code ErrorCode, message string, cause error) *TreelineError {
	return &TreelineError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsTreelineError checks if an error is a TreelineError
func IsTreelineError(err error) bool {
	_, ok := err.(*TreelineError)
	return ok
}

// GetCode extracts the error code from an error, if it's a TreelineError
func GetCode(err error) ErrorCode {
	if te, ok := err.(*TreelineError); ok {
		return te.Code
	}
	return ""
}

// HasCode checks if an error has a specific error code
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ExitError carries a process exit code up through the CLI layers, so
// deferred cleanup still runs before the process exits.
type ExitError struct {
	Code int
}

// Error implements the error interface
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
