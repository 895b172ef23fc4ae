// Package errors provides typed errors for the tug project.
//
// This package defines domain-specific error types that provide structured
// error information for the different failure classes of a command: invalid
// configuration, missing credentials, transport failures, errors reported by
// the Git host, failing local commands and failing merge steps.
// All error types implement the standard error interface and support
// errors.Is() and errors.As() from the standard library and cockroachdb/errors.
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// AuthError is returned when no usable credential exists for a host.
type AuthError struct {
	Host    string // Host domain, e.g. "github.com"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("authentication for %s failed: %s", e.Host, e.Message)
	}
	return "authentication failed: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new AuthError.
func NewAuthError(host, message string) *AuthError {
	return &AuthError{Host: host, Message: message}
}

// NewAuthErrorWithCause creates a new AuthError with an underlying cause.
func NewAuthErrorWithCause(host, message string, cause error) *AuthError {
	return &AuthError{Host: host, Message: message, Cause: cause}
}

// TransportError is a fatal failure talking to the Git host: a non-2xx
// response, a timeout or a connection failure. It is never retried.
type TransportError struct {
	Operation  string // e.g., "getPullRequest"
	StatusCode int    // HTTP status code if applicable
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("git host %s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("git host %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a new TransportError.
func NewTransportError(operation, message string) *TransportError {
	return &TransportError{Operation: operation, Message: message}
}

// NewTransportErrorWithStatus creates a new TransportError with HTTP status code.
func NewTransportErrorWithStatus(operation string, statusCode int, message string) *TransportError {
	return &TransportError{Operation: operation, StatusCode: statusCode, Message: message}
}

// NewTransportErrorWithCause creates a new TransportError with an underlying cause.
func NewTransportErrorWithCause(operation, message string, cause error) *TransportError {
	return &TransportError{Operation: operation, Message: message, Cause: cause}
}

// GitHostError is an error reported by the Git host itself, either through
// the GraphQL errors payload or through an answer that breaks an invariant
// (such as two open pull requests for one branch). Callers decide whether it
// is fatal.
type GitHostError struct {
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *GitHostError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GitHostError) Unwrap() error {
	return e.Cause
}

// NewGitHostError creates a new GitHostError.
func NewGitHostError(operation, message string) *GitHostError {
	return &GitHostError{Operation: operation, Message: message}
}

// NewGitHostErrorf creates a new GitHostError with a formatted message.
func NewGitHostErrorf(operation, format string, args ...any) *GitHostError {
	return &GitHostError{Operation: operation, Message: fmt.Sprintf(format, args...)}
}

// CommandError represents a local command (git, gh, $EDITOR) that exited
// with an unexpected status.
type CommandError struct {
	Command  string   // The command line, for display
	ExitCode int      // -1 when the process could not be started
	Output   []string // Captured stdout then stderr lines
	Cause    error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if len(e.Output) == 0 {
		return fmt.Sprintf("got an empty error when running `%s`", e.Command)
	}
	return fmt.Sprintf("got the following output when running `%s`:\n%s", e.Command, strings.Join(e.Output, "\n"))
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *CommandError) Unwrap() error {
	return e.Cause
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, exitCode int, output []string, cause error) *CommandError {
	return &CommandError{Command: command, ExitCode: exitCode, Output: output, Cause: cause}
}

// WorkflowError represents workflow orchestration errors.
type WorkflowError struct {
	Step        string // e.g., "preflight", "rebase", "push", "cleanup"
	Message     string
	Interrupted bool // The user stopped the workflow during Step
	Cause       error
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("workflow step %s failed: %s", e.Step, e.Message)
	}
	return "workflow error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// NewWorkflowError creates a new WorkflowError.
func NewWorkflowError(step, message string) *WorkflowError {
	return &WorkflowError{Step: step, Message: message}
}

// NewWorkflowErrorWithCause creates a new WorkflowError with an underlying cause.
func NewWorkflowErrorWithCause(step, message string, cause error) *WorkflowError {
	return &WorkflowError{Step: step, Message: message, Cause: cause}
}

// NewWorkflowErrorf creates a new WorkflowError with a formatted message.
func NewWorkflowErrorf(step, format string, args ...any) *WorkflowError {
	return &WorkflowError{Step: step, Message: fmt.Sprintf(format, args...)}
}

// NewInterruptedWorkflowErrorf creates a WorkflowError for a workflow the
// user stopped during step, leaving state that needs attention.
func NewInterruptedWorkflowErrorf(step, format string, args ...any) *WorkflowError {
	return &WorkflowError{Step: step, Message: fmt.Sprintf(format, args...), Interrupted: true}
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsAuthError checks if an error or any error in its chain is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransportError checks if an error or any error in its chain is a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsGitHostError checks if an error or any error in its chain is a GitHostError.
func IsGitHostError(err error) bool {
	var hostErr *GitHostError
	return errors.As(err, &hostErr)
}

// IsWorkflowError checks if an error or any error in its chain is a WorkflowError.
func IsWorkflowError(err error) bool {
	var wfErr *WorkflowError
	return errors.As(err, &wfErr)
}

// ExitCode returns the exit code carried by a CommandError in err's chain,
// or -1 if there is none.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use tugerrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
