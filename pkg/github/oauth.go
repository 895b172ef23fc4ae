package github

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cli/oauth"
	"github.com/cli/oauth/api"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

const (
	// DefaultGitHubHost is the default GitHub web host.
	DefaultGitHubHost = "https://github.com"

	// DefaultScopes are the OAuth scopes required for pull request operations.
	DefaultScopes = "repo"
)

// OAuthConfig holds OAuth configuration for device flow authentication.
type OAuthConfig struct {
	ClientID string   // OAuth app client ID (required for device flow)
	Scopes   []string // OAuth scopes to request
	HostURL  string   // GitHub host URL (default: github.com)
}

// DeviceAuth performs OAuth device flow authentication.
// It displays a code for the user to enter at the host's verification URL,
// then polls until authorization completes.
func DeviceAuth(ctx context.Context, cfg OAuthConfig, stdout io.Writer) (*api.AccessToken, error) {
	if cfg.ClientID == "" {
		return nil, tugerrors.NewConfigError("github.client_id", "client_id is required for OAuth device flow")
	}

	hostURL := cfg.HostURL
	if hostURL == "" {
		hostURL = DefaultGitHubHost
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScopes}
	}

	host, err := oauth.NewGitHubHost(hostURL)
	if err != nil {
		return nil, tugerrors.NewAuthErrorWithCause(hostURL, "invalid GitHub host URL", err)
	}

	flow := &oauth.Flow{
		Host:     host,
		ClientID: cfg.ClientID,
		Scopes:   scopes,
		Stdout:   stdout,
		Stdin:    os.Stdin,
		DisplayCode: func(code, verificationURL string) error {
			fmt.Fprintf(stdout, "1. Copy your one-time verification code: %s\n", code)
			fmt.Fprintf(stdout, "2. Then open %s in your browser and fill the form with this code.\n", verificationURL)
			return nil
		},
	}

	// Perform device flow (cli/oauth handles polling automatically)
	token, err := flow.DeviceFlow()
	if err != nil {
		return nil, tugerrors.NewAuthErrorWithCause(hostURL, "device flow failed", err)
	}
	return token, nil
}
