// Package github implements the pull request operations of host.Client on
// top of the GitHub GraphQL API.
//
// Requests go through a Transport: HTTPTransport posts to <api_url>/graphql
// with a bearer token, CLITransport delegates to `gh api graphql`. Raw status
// responses are reconciled into host.PullRequestStatus by ReconcileStatus.
package github

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"thoreinstein.com/tug/pkg/cache"
	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/git"
)

// ResolveToken returns the access token for domain.
//
// Token resolution order:
//  1. GITHUB_TOKEN environment variable
//  2. TUG_GITHUB_TOKEN environment variable
//  3. Token from config file (github.token)
//  4. Token saved by `tug auth add` (keychain or file)
func ResolveToken(cfg *config.GitHubConfig, store TokenStore, domain string) (string, error) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}
	if token := os.Getenv("TUG_GITHUB_TOKEN"); token != "" {
		return token, nil
	}
	if cfg != nil && cfg.Token != "" {
		return cfg.Token, nil
	}

	if store != nil {
		token, err := store.Get(domain)
		if err != nil {
			return "", err
		}
		if token != nil && token.AccessToken != "" {
			return token.AccessToken, nil
		}
	}

	return "", tugerrors.NewAuthError(domain,
		"No authentication token for "+domain+". You must first configure one with `tug auth add`.")
}

// deviceAuth runs the OAuth device flow. Tests replace it.
var deviceAuth = DeviceAuth

// NewClient creates a GitHub client for the repository behind remote,
// working on branch. The gh_cli auth method talks through the gh CLI;
// the others use a token from ResolveToken. The oauth method falls back to
// the device flow when no token is found.
func NewClient(ctx context.Context, cfg *config.Config, store TokenStore, remote *git.Remote, branch string, verbose bool) (*APIClient, error) {
	if cfg == nil {
		return nil, tugerrors.NewConfigError("", "configuration is required")
	}

	logger := slog.Default()

	var transport Transport
	switch cfg.GitHub.AuthMethod {
	case config.AuthMethodGHCLI:
		t, err := NewCLITransport(remote.Domain, verbose, WithCLILogger(logger))
		if err != nil {
			return nil, err
		}
		transport = t

	case config.AuthMethodToken, config.AuthMethodOAuth, "":
		token, err := ResolveToken(&cfg.GitHub, store, remote.Domain)
		if tugerrors.IsAuthError(err) && cfg.GitHub.AuthMethod == config.AuthMethodOAuth {
			token, err = oauthToken(ctx, &cfg.GitHub, store, remote.Domain, verbose)
		}
		if err != nil {
			return nil, err
		}
		t, err := NewHTTPTransport(cfg.Host.APIURL, token, cfg.Host.Timeout, verbose, WithHTTPLogger(logger))
		if err != nil {
			return nil, err
		}
		transport = t

	default:
		return nil, tugerrors.NewConfigError("github.auth_method", "unknown auth method: "+cfg.GitHub.AuthMethod)
	}

	opts := []APIClientOption{WithAPILogger(logger)}
	if cfg.Cache.Path != "" {
		opts = append(opts, WithCache(cache.NewCache(cfg.Cache.Path)))
	}

	return NewAPIClient(transport, remote, branch, verbose, opts...)
}

// oauthToken creates a token with the device flow and saves it for the next
// invocations.
func oauthToken(ctx context.Context, cfg *config.GitHubConfig, store TokenStore, domain string, verbose bool) (string, error) {
	if cfg.ClientID == "" {
		return "", tugerrors.NewConfigError("github.client_id",
			"oauth auth requires github.client_id in config; alternatively use the gh_cli auth method")
	}

	apiToken, err := deviceAuth(ctx, OAuthConfig{
		ClientID: cfg.ClientID,
		HostURL:  "https://" + domain,
	}, os.Stdout)
	if err != nil {
		return "", err
	}

	token := &oauth2.Token{AccessToken: apiToken.Token, TokenType: apiToken.Type}
	if store != nil {
		if err := store.Set(domain, token); err != nil {
			// Auth succeeded; the next run asks again.
			if verbose {
				slog.Debug("failed to save OAuth token", "error", err)
			}
		} else if verbose {
			slog.Debug("saved OAuth token for future use", "domain", domain)
		}
	}

	return token.AccessToken, nil
}
