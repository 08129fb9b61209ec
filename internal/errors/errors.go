// Package errors provides structured errors for overssh commands.
// Every fatal error carries a category code, a human-readable message,
// and an actionable suggestion, and maps to a stable process exit status
// so scripts can tell a connectivity failure from a missing remote file.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing failures.
const (
	ErrUsage   = "USAGE"   // bad or missing arguments, before any network I/O
	ErrConnect = "CONNECT" // transport could not reach the host
	ErrRemote  = "REMOTE"  // host reachable, remote operation refused or failed
	ErrDiff    = "DIFF"    // the external diff tool itself misbehaved
	ErrConfig  = "CONFIG"  // defaults file or flag value problems
	ErrSSH     = "SSH"     // local SSH setup (keys, agent, known_hosts)
)

// Exit statuses for the categories that short-circuit a command.
// Chosen above diff's own 0/1/2 range so callers can distinguish the
// pre-flight failures from a diff-tool error.
const (
	ExitUsage        = 1
	ExitRemoteAbsent = 3
	ExitUnreachable  = 4
)

// Error is a structured error with code, message, suggestion, and cause.
// Rendered as:
//
//	✗ <what failed>
//
//	  <why - underlying cause>
//
//	  <how to fix it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrSSH code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrSSH,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitStatus returns the process exit status for the error's category.
func (e *Error) ExitStatus() int {
	switch e.Code {
	case ErrConnect:
		return ExitUnreachable
	case ErrRemote:
		return ExitRemoteAbsent
	default:
		return ExitUsage
	}
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var oerr *Error
	if errors.As(err, &oerr) {
		return oerr.Code == code
	}
	return false
}

// ExitError carries an exit status through without any message of its own.
// Used to propagate the diff tool's exit status verbatim.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given status code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// StatusOf extracts the process exit status for any error produced by an
// overssh command: ExitError codes pass through, structured errors map by
// category, anything else is a generic failure.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var oerr *Error
	if errors.As(err, &oerr) {
		return oerr.ExitStatus()
	}
	return 1
}
