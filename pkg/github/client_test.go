package github

import (
	"context"
	"io"
	"testing"

	"github.com/cli/oauth/api"
	"golang.org/x/oauth2"

	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/git"
)

type memoryTokenStore map[string]*oauth2.Token

func (m memoryTokenStore) Get(domain string) (*oauth2.Token, error) { return m[domain], nil }

func (m memoryTokenStore) Set(domain string, token *oauth2.Token) error {
	m[domain] = token
	return nil
}

func (m memoryTokenStore) Delete(domain string) error {
	delete(m, domain)
	return nil
}

func TestResolveToken_Precedence(t *testing.T) {
	store := memoryTokenStore{"github.com": {AccessToken: "from-store"}}

	tests := []struct {
		name      string
		githubEnv string
		tugEnv    string
		cfgToken  string
		want      string
	}{
		{name: "GITHUB_TOKEN wins", githubEnv: "gh-env", tugEnv: "tug-env", cfgToken: "cfg", want: "gh-env"},
		{name: "TUG_GITHUB_TOKEN next", tugEnv: "tug-env", cfgToken: "cfg", want: "tug-env"},
		{name: "config token next", cfgToken: "cfg", want: "cfg"},
		{name: "stored token last", want: "from-store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITHUB_TOKEN", tt.githubEnv)
			t.Setenv("TUG_GITHUB_TOKEN", tt.tugEnv)

			got, err := ResolveToken(&config.GitHubConfig{Token: tt.cfgToken}, store, "github.com")
			if err != nil {
				t.Fatalf("ResolveToken() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveToken_Missing(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("TUG_GITHUB_TOKEN", "")

	_, err := ResolveToken(&config.GitHubConfig{}, memoryTokenStore{}, "git.example.com")
	if !tugerrors.IsAuthError(err) {
		t.Fatalf("ResolveToken() error = %v, want AuthError", err)
	}

	var authErr *tugerrors.AuthError
	tugerrors.As(err, &authErr)
	want := "No authentication token for git.example.com. You must first configure one with `tug auth add`."
	if authErr.Message != want {
		t.Errorf("Message = %q, want %q", authErr.Message, want)
	}
}

func TestNewClient_UnknownAuthMethod(t *testing.T) {
	cfg := &config.Config{GitHub: config.GitHubConfig{AuthMethod: "carrier-pigeon"}}
	remote := &git.Remote{URL: "git@github.com:acme/widgets.git", Domain: "github.com", Owner: "acme", Repo: "widgets"}

	_, err := NewClient(t.Context(), cfg, memoryTokenStore{}, remote, "feature", false)
	if !tugerrors.IsConfigError(err) {
		t.Errorf("NewClient() error = %v, want ConfigError", err)
	}
}

func TestNewClient_TokenMethod(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("TUG_GITHUB_TOKEN", "")

	cfg := &config.Config{
		Host:   config.HostConfig{APIURL: "https://api.github.com"},
		GitHub: config.GitHubConfig{AuthMethod: config.AuthMethodToken, Token: "ghp_cfg"},
		Cache:  config.CacheConfig{Path: t.TempDir() + "/cache.json"},
	}
	remote := &git.Remote{URL: "git@github.com:acme/widgets.git", Domain: "github.com", Owner: "acme", Repo: "widgets"}

	client, err := NewClient(t.Context(), cfg, memoryTokenStore{}, remote, "feature", false)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.cache == nil {
		t.Error("cache should be set when cache.path is configured")
	}
	if _, ok := client.transport.(*HTTPTransport); !ok {
		t.Errorf("transport = %T, want *HTTPTransport", client.transport)
	}
}

func TestNewClient_OAuthRunsDeviceFlowWithoutToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("TUG_GITHUB_TOKEN", "")

	var gotCfg OAuthConfig
	calls := 0
	oldDeviceAuth := deviceAuth
	deviceAuth = func(_ context.Context, cfg OAuthConfig, _ io.Writer) (*api.AccessToken, error) {
		calls++
		gotCfg = cfg
		return &api.AccessToken{Token: "gho_device", Type: "bearer"}, nil
	}
	t.Cleanup(func() { deviceAuth = oldDeviceAuth })

	cfg := &config.Config{
		Host:   config.HostConfig{APIURL: "https://api.github.com"},
		GitHub: config.GitHubConfig{AuthMethod: config.AuthMethodOAuth, ClientID: "Iv1.abc"},
	}
	remote := &git.Remote{URL: "git@github.com:acme/widgets.git", Domain: "github.com", Owner: "acme", Repo: "widgets"}
	store := memoryTokenStore{}

	if _, err := NewClient(t.Context(), cfg, store, remote, "feature", false); err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("device flow ran %d times, want 1", calls)
	}
	if gotCfg.ClientID != "Iv1.abc" || gotCfg.HostURL != "https://github.com" {
		t.Errorf("OAuthConfig = %+v", gotCfg)
	}
	if got := store["github.com"]; got == nil || got.AccessToken != "gho_device" {
		t.Errorf("stored token = %+v, want gho_device", got)
	}

	// The saved token is used on the next run.
	if _, err := NewClient(t.Context(), cfg, store, remote, "feature", false); err != nil {
		t.Fatalf("NewClient() second call error = %v", err)
	}
	if calls != 1 {
		t.Errorf("device flow ran %d times, want 1", calls)
	}
}

func TestNewClient_OAuthWithoutClientID(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("TUG_GITHUB_TOKEN", "")

	oldDeviceAuth := deviceAuth
	deviceAuth = func(context.Context, OAuthConfig, io.Writer) (*api.AccessToken, error) {
		t.Fatal("device flow should not run without a client id")
		return nil, nil
	}
	t.Cleanup(func() { deviceAuth = oldDeviceAuth })

	cfg := &config.Config{
		Host:   config.HostConfig{APIURL: "https://api.github.com"},
		GitHub: config.GitHubConfig{AuthMethod: config.AuthMethodOAuth},
	}
	remote := &git.Remote{URL: "git@github.com:acme/widgets.git", Domain: "github.com", Owner: "acme", Repo: "widgets"}

	_, err := NewClient(t.Context(), cfg, memoryTokenStore{}, remote, "feature", false)
	if !tugerrors.IsConfigError(err) {
		t.Errorf("NewClient() error = %v, want ConfigError", err)
	}
}

func TestNewClient_TokenMethodNeverRunsDeviceFlow(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("TUG_GITHUB_TOKEN", "")

	oldDeviceAuth := deviceAuth
	deviceAuth = func(context.Context, OAuthConfig, io.Writer) (*api.AccessToken, error) {
		t.Fatal("device flow should only run for the oauth auth method")
		return nil, nil
	}
	t.Cleanup(func() { deviceAuth = oldDeviceAuth })

	cfg := &config.Config{
		Host:   config.HostConfig{APIURL: "https://api.github.com"},
		GitHub: config.GitHubConfig{AuthMethod: config.AuthMethodToken, ClientID: "Iv1.abc"},
	}
	remote := &git.Remote{URL: "git@github.com:acme/widgets.git", Domain: "github.com", Owner: "acme", Repo: "widgets"}

	_, err := NewClient(t.Context(), cfg, memoryTokenStore{}, remote, "feature", false)
	if !tugerrors.IsAuthError(err) {
		t.Errorf("NewClient() error = %v, want AuthError", err)
	}
}
