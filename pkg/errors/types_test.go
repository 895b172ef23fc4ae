package errors

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TransportError
		expected string
	}{
		{
			name:     "with status code",
			err:      NewTransportErrorWithStatus("getPullRequest", 502, "bad gateway"),
			expected: "git host getPullRequest failed (HTTP 502): bad gateway",
		},
		{
			name:     "without status code",
			err:      NewTransportError("getPullRequest", "connection refused"),
			expected: "git host getPullRequest failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	if got := NewConfigError("host.timeout", "must be positive").Error(); got != "config error in host.timeout: must be positive" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewConfigError("", "broken").Error(); got != "config error: broken" {
		t.Errorf("Error() = %q", got)
	}
}

func TestGitHostError_MessageIsVerbatim(t *testing.T) {
	err := NewGitHostErrorf("getPullRequest", "There is no open pull request on the current branch %s", "feature")
	if err.Error() != "There is no open pull request on the current branch feature" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCommandError_Error(t *testing.T) {
	empty := NewCommandError("git push", 1, nil, nil)
	if !strings.Contains(empty.Error(), "empty error") {
		t.Errorf("Error() = %q, want mention of empty error", empty.Error())
	}

	withOutput := NewCommandError("git push", 1, []string{"rejected", "hint: pull first"}, nil)
	if !strings.Contains(withOutput.Error(), "rejected\nhint: pull first") {
		t.Errorf("Error() = %q, want joined output", withOutput.Error())
	}
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := errors.New("root cause")

	tests := []struct {
		name string
		err  error
	}{
		{"config", NewConfigErrorWithCause("f", "m", cause)},
		{"auth", NewAuthErrorWithCause("github.com", "m", cause)},
		{"transport", NewTransportErrorWithCause("op", "m", cause)},
		{"command", NewCommandError("git", 1, nil, cause)},
		{"workflow", NewWorkflowErrorWithCause("rebase", "m", cause)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Errorf("errors.Is(%T, cause) = false, want true", tt.err)
			}
		})
	}
}

func TestIsHelpers_ThroughWrapping(t *testing.T) {
	wrapped := errors.Wrap(NewTransportError("op", "m"), "fetching status")
	if !IsTransportError(wrapped) {
		t.Error("IsTransportError() = false for wrapped TransportError")
	}
	if IsGitHostError(wrapped) {
		t.Error("IsGitHostError() = true for TransportError")
	}
	if !IsGitHostError(errors.Wrap(NewGitHostError("op", "m"), "ctx")) {
		t.Error("IsGitHostError() = false for wrapped GitHostError")
	}
	if !IsAuthError(NewAuthError("github.com", "m")) {
		t.Error("IsAuthError() = false")
	}
	if !IsConfigError(NewConfigError("f", "m")) {
		t.Error("IsConfigError() = false")
	}
	if !IsWorkflowError(NewWorkflowError("push", "m")) {
		t.Error("IsWorkflowError() = false")
	}
	if IsConfigError(nil) {
		t.Error("IsConfigError(nil) = true")
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(errors.Wrap(NewCommandError("git", 128, nil, nil), "x")); got != 128 {
		t.Errorf("ExitCode() = %d, want 128", got)
	}
	if got := ExitCode(errors.New("plain")); got != -1 {
		t.Errorf("ExitCode() = %d, want -1", got)
	}
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{"nil", nil, nil},
		{"auth", NewAuthError("github.com", "No authentication token for github.com."), []string{"No authentication token", "tug auth add"}},
		{"transport 401", NewTransportErrorWithStatus("getPullRequest", 401, "Bad credentials"), []string{"Bad credentials", "revoked"}},
		{"workflow push", NewWorkflowError("push", "rejected"), []string{"push", "tug pr rebase"}},
		{"host error verbatim", NewGitHostError("op", "Could not resolve to a Repository"), []string{"Could not resolve to a Repository"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUserError(tt.err)
			if tt.err == nil && got != "" {
				t.Errorf("FormatUserError(nil) = %q, want empty", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatUserError() = %q, want to contain %q", got, want)
				}
			}
		})
	}
}
