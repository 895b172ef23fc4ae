package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

// DefaultTimeout bounds each request when none is configured.
const DefaultTimeout = 2 * time.Second

// HTTPTransport posts GraphQL documents to <api_url>/graphql with a bearer
// token. It reuses go-github's request plumbing for headers, body encoding
// and error decoding.
type HTTPTransport struct {
	client  *gh.Client
	verbose bool
	logger  *slog.Logger
}

// Compile-time check that HTTPTransport implements Transport.
var _ Transport = (*HTTPTransport)(nil)

// HTTPTransportOption is a functional option for configuring HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPLogger sets a custom logger for the transport.
func WithHTTPLogger(logger *slog.Logger) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// NewHTTPTransport creates a transport for apiURL, e.g.
// "https://api.github.com" or "https://git.example.com/api".
func NewHTTPTransport(apiURL, token string, timeout time.Duration, verbose bool, opts ...HTTPTransportOption) (*HTTPTransport, error) {
	if token == "" {
		return nil, tugerrors.NewAuthError("", "token is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
	if err != nil {
		return nil, tugerrors.NewConfigErrorWithCause("host.api_url", "invalid API URL", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = timeout

	client := gh.NewClient(hc)
	client.BaseURL = base
	client.UserAgent = "tug"

	t := &HTTPTransport{
		client:  client,
		verbose: verbose,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, operation, query string, variables map[string]any) (*Response, error) {
	req, err := t.client.NewRequest(http.MethodPost, "graphql", newRequest(query, variables))
	if err != nil {
		return nil, tugerrors.NewTransportErrorWithCause(operation, "failed to build request", err)
	}

	t.logDebug("graphql request", "operation", operation, "url", req.URL.String())

	var out Response
	resp, err := t.client.Do(ctx, req, &out)
	if err != nil {
		return nil, toTransportError(operation, resp, err)
	}

	t.logDebug("graphql response", "operation", operation, "status", resp.StatusCode, "errors", len(out.Errors))
	return &out, nil
}

func (t *HTTPTransport) logDebug(msg string, args ...any) {
	if t.verbose {
		t.logger.Debug(msg, args...)
	}
}

// toTransportError converts a go-github failure. A 422 carries the host's
// explanation in its errors array.
func toTransportError(operation string, resp *gh.Response, err error) error {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		if code == http.StatusUnprocessableEntity {
			details := errResp.Message
			if len(errResp.Errors) > 0 && errResp.Errors[0].Message != "" {
				details = errResp.Errors[0].Message
			}
			msg := fmt.Sprintf("Got HTTP error code %d: %s. Details: %s", code, http.StatusText(code), details)
			return &tugerrors.TransportError{Operation: operation, StatusCode: code, Message: msg, Cause: err}
		}
		return &tugerrors.TransportError{Operation: operation, StatusCode: code, Message: errResp.Message, Cause: err}
	}

	if resp != nil && resp.StatusCode > 0 {
		return &tugerrors.TransportError{Operation: operation, StatusCode: resp.StatusCode, Message: err.Error(), Cause: err}
	}
	return tugerrors.NewTransportErrorWithCause(operation, "request failed", err)
}
