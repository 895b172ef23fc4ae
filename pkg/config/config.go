package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/host"
)

// Config represents the application configuration
// Repository information is derived from git, not configuration
type Config struct {
	Host   HostConfig   `mapstructure:"host"`
	GitHub GitHubConfig `mapstructure:"github"`
	Git    GitConfig    `mapstructure:"git"`
	Status StatusConfig `mapstructure:"status"`
	Merge  MergeConfig  `mapstructure:"merge"`
	CI     CIConfig     `mapstructure:"ci"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

// HostConfig selects the Git hosting backend
type HostConfig struct {
	Platform string        `mapstructure:"platform"` // "github"
	APIURL   string        `mapstructure:"api_url"`  // REST root; GraphQL lives at <api_url>/graphql
	Timeout  time.Duration `mapstructure:"timeout"`  // Per-request timeout
}

// GitHubConfig holds GitHub integration configuration
type GitHubConfig struct {
	AuthMethod       string   `mapstructure:"auth_method"`       // "token", "oauth", "gh_cli"
	ClientID         string   `mapstructure:"client_id"`         // OAuth app client ID (for device flow)
	Token            string   `mapstructure:"token"`             // For token auth (TUG_GITHUB_TOKEN env var takes precedence)
	DefaultReviewers []string `mapstructure:"default_reviewers"` // Logins preselected when requesting reviews
}

// GitConfig holds optional git configuration overrides
type GitConfig struct {
	BaseBranch string `mapstructure:"base_branch"` // Optional override for default branch
}

// StatusConfig holds status polling configuration
type StatusConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// MergeConfig holds pr merge configuration
type MergeConfig struct {
	AutoRebase  string   `mapstructure:"auto_rebase"`  // "always", "never", "ask"
	PreChecks   bool     `mapstructure:"pre_checks"`   // Confirm before pushing many or WIP commits
	MaxCommits  int      `mapstructure:"max_commits"`  // Commit count that triggers a confirmation
	WIPKeywords []string `mapstructure:"wip_keywords"` // Case-insensitive log patterns
}

// CIConfig holds CI browsing configuration
type CIConfig struct {
	URL      string `mapstructure:"url"`      // URL template with {owner}, {repository}, {branch}...
	Platform string `mapstructure:"platform"` // "circleci", "github"
}

// CacheConfig holds metadata cache configuration
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
	File  string `mapstructure:"file"`  // Optional rotated log file
}

// SecurityWarning represents a configuration security issue
type SecurityWarning struct {
	Field   string
	Message string
}

// Auth methods
const (
	AuthMethodToken = "token"
	AuthMethodOAuth = "oauth"
	AuthMethodGHCLI = "gh_cli"
)

// Auto-rebase modes
const (
	AutoRebaseAlways = "always"
	AutoRebaseNever  = "never"
	AutoRebaseAsk    = "ask"
)

// CI platforms
const (
	CIPlatformCircleCI = "circleci"
	CIPlatformGitHub   = "github"
)

var (
	validAuthMethods = []string{AuthMethodToken, AuthMethodOAuth, AuthMethodGHCLI}
	validAutoRebase  = []string{AutoRebaseAlways, AutoRebaseNever, AutoRebaseAsk}
	validCIPlatforms = []string{"", CIPlatformCircleCI, CIPlatformGitHub}
	validLogLevels   = []string{"debug", "info", "warn", "error"}
)

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal the config
	if err := viper.Unmarshal(config); err != nil {
		return nil, tugerrors.NewConfigErrorWithCause("", "failed to unmarshal config", err)
	}

	// Expand paths
	if err := expandPaths(config); err != nil {
		return nil, errors.Wrap(err, "failed to expand paths")
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// Dir returns the tug configuration directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tug"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".config", "tug"), nil
}

// CheckSecurityWarnings returns warnings for insecure configuration practices.
// Call this when loading config to warn users about tokens stored in config files.
func CheckSecurityWarnings(config *Config) []SecurityWarning {
	var warnings []SecurityWarning

	if config.GitHub.Token != "" && os.Getenv("TUG_GITHUB_TOKEN") == "" && os.Getenv("GITHUB_TOKEN") == "" {
		warnings = append(warnings, SecurityWarning{
			Field:   "github.token",
			Message: "GitHub token is set in config file. For security, use 'tug auth add' or the TUG_GITHUB_TOKEN environment variable instead.",
		})
	}

	return warnings
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	platforms := host.Platforms()
	if !slices.Contains(platforms, host.Platform(c.Host.Platform)) {
		return tugerrors.NewConfigError("host.platform", "unsupported platform "+quote(c.Host.Platform)+": must be one of: github")
	}
	if c.Host.Timeout <= 0 {
		return tugerrors.NewConfigError("host.timeout", "must be a positive duration")
	}
	if !slices.Contains(validAuthMethods, c.GitHub.AuthMethod) {
		return tugerrors.NewConfigError("github.auth_method", "invalid auth method "+quote(c.GitHub.AuthMethod)+": must be one of: "+strings.Join(validAuthMethods, ", "))
	}
	if c.Status.PollInterval <= 0 {
		return tugerrors.NewConfigError("status.poll_interval", "must be a positive duration")
	}
	if !slices.Contains(validAutoRebase, c.Merge.AutoRebase) {
		return tugerrors.NewConfigError("merge.auto_rebase", "invalid value "+quote(c.Merge.AutoRebase)+": must be one of: "+strings.Join(validAutoRebase, ", "))
	}
	if c.Merge.MaxCommits < 1 {
		return tugerrors.NewConfigError("merge.max_commits", "must be at least 1")
	}
	if !slices.Contains(validCIPlatforms, c.CI.Platform) {
		return tugerrors.NewConfigError("ci.platform", "unsupported CI platform "+quote(c.CI.Platform)+": must be one of: circleci, github")
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return tugerrors.NewConfigError("log.level", "invalid log level "+quote(c.Log.Level))
	}
	return nil
}

func quote(s string) string {
	return `"` + s + `"`
}

// EffectiveTOML renders the merged configuration as TOML. Secrets are
// redacted.
func EffectiveTOML() ([]byte, error) {
	settings := viper.AllSettings()
	if gh, ok := settings["github"].(map[string]any); ok {
		if token, ok := gh["token"].(string); ok && token != "" {
			gh["token"] = "********"
		}
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode configuration")
	}
	return data, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home dir can't be determined
		homeDir = "."
	}

	// Host defaults
	viper.SetDefault("host.platform", string(host.PlatformGitHub))
	viper.SetDefault("host.api_url", "https://api.github.com")
	viper.SetDefault("host.timeout", "2s")

	// GitHub defaults
	viper.SetDefault("github.auth_method", AuthMethodToken)
	viper.SetDefault("github.client_id", "") // OAuth app client ID for device flow
	viper.SetDefault("github.token", "")
	viper.SetDefault("github.default_reviewers", []string{})

	// Git defaults (empty means auto-detect)
	viper.SetDefault("git.base_branch", "")

	// Status defaults
	viper.SetDefault("status.poll_interval", "10s")

	// Merge defaults
	viper.SetDefault("merge.auto_rebase", AutoRebaseAsk)
	viper.SetDefault("merge.pre_checks", true)
	viper.SetDefault("merge.max_commits", 2)
	viper.SetDefault("merge.wip_keywords", []string{"wip", "-w-", "_w_", "fixup", "squash", "review", "revue"})

	// CI defaults (empty means detect)
	viper.SetDefault("ci.url", "")
	viper.SetDefault("ci.platform", "")

	// Cache defaults
	cacheHome := filepath.Join(homeDir, ".cache")
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		cacheHome = xdg
	}
	viper.SetDefault("cache.path", filepath.Join(cacheHome, "tug", "cache.json"))

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")
}

// expandPaths expands ~ and environment variables in paths
func expandPaths(config *Config) error {
	var err error

	config.Cache.Path, err = expandPath(config.Cache.Path)
	if err != nil {
		return err
	}

	config.Log.File, err = expandPath(config.Log.File)
	if err != nil {
		return err
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}
