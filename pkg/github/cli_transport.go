package github

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"strings"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

// ghRunner runs gh with stdin and returns its stdout.
type ghRunner func(ctx context.Context, stdin []byte, args ...string) (stdout []byte, stderr string, err error)

// CLITransport sends GraphQL documents through `gh api graphql`, reusing the
// gh CLI's stored credentials.
type CLITransport struct {
	hostname string
	verbose  bool
	logger   *slog.Logger
	run      ghRunner
}

// Compile-time check that CLITransport implements Transport.
var _ Transport = (*CLITransport)(nil)

// CLITransportOption is a functional option for configuring CLITransport.
type CLITransportOption func(*CLITransport)

// WithCLILogger sets a custom logger for the transport.
func WithCLILogger(logger *slog.Logger) CLITransportOption {
	return func(t *CLITransport) {
		t.logger = logger
	}
}

// NewCLITransport creates a gh CLI-based transport for hostname.
func NewCLITransport(hostname string, verbose bool, opts ...CLITransportOption) (*CLITransport, error) {
	t := &CLITransport{
		hostname: hostname,
		verbose:  verbose,
		logger:   slog.Default(),
		run:      execGH,
	}

	for _, opt := range opts {
		opt(t)
	}

	// Verify gh CLI is available
	if _, err := exec.LookPath("gh"); err != nil {
		return nil, tugerrors.NewAuthErrorWithCause(hostname, "gh CLI not found in PATH", err)
	}

	return t, nil
}

// Do implements Transport.
func (t *CLITransport) Do(ctx context.Context, operation, query string, variables map[string]any) (*Response, error) {
	body, err := json.Marshal(newRequest(query, variables))
	if err != nil {
		return nil, tugerrors.NewTransportErrorWithCause(operation, "failed to encode request", err)
	}

	args := []string{"api", "graphql", "--method", "POST", "--input", "-"}
	if t.hostname != "" && t.hostname != "github.com" {
		args = append(args, "--hostname", t.hostname)
	}

	t.logDebug("gh graphql request", "operation", operation, "hostname", t.hostname)

	stdout, stderr, runErr := t.run(ctx, body, args...)

	// gh exits non-zero when the response carries GraphQL errors but still
	// prints the response.
	var out Response
	if len(bytes.TrimSpace(stdout)) > 0 {
		if err := json.Unmarshal(stdout, &out); err == nil && (runErr == nil || len(out.Errors) > 0) {
			return &out, nil
		}
	}

	if runErr != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, tugerrors.NewTransportErrorWithCause(operation, msg, runErr)
	}
	return nil, tugerrors.NewTransportError(operation, "unexpected gh api output")
}

func (t *CLITransport) logDebug(msg string, args ...any) {
	if t.verbose {
		t.logger.Debug(msg, args...)
	}
}

func execGH(ctx context.Context, stdin []byte, args ...string) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.String(), err
}
