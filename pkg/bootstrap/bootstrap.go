// Package bootstrap loads the layered tug configuration before any command
// runs: the global file, the per-remote file, the repository-local file and
// the environment.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"thoreinstein.com/tug/pkg/config"
	"thoreinstein.com/tug/pkg/git"
)

// RepoLocalConfigName is the repository-local config file name.
const RepoLocalConfigName = ".tug.toml"

var (
	lastLoadedConfig  string
	lastLoadedVerbose bool
	loadedConfig      *config.Config
)

// PreParseGlobalFlags scans args for --config and --verbose before the main
// Cobra execution. This is a bootstrap step for configuration.
// It stops scanning at the first non-flag argument or the "--" marker, and
// ignores flags it does not know.
func PreParseGlobalFlags(args []string) (string, bool) {
	var cfgFile string
	var verbose bool

	fs := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.StringVarP(&cfgFile, "config", "C", "", "")
	fs.BoolVarP(&verbose, "verbose", "v", false, "")

	if len(args) > 1 {
		// Errors leave whatever was parsed so far; cobra reports them later.
		_ = fs.Parse(args[1:])
	}

	return cfgFile, verbose
}

// InitConfig reads in config file and ENV variables if set.
// It returns the loaded config and the actual verbosity state.
func InitConfig(cfgFile string, verbose bool) (*config.Config, bool, error) {
	// Skip if already loaded with same parameters (unless in test)
	if os.Getenv("GO_TEST") != "true" && loadedConfig != nil && cfgFile == lastLoadedConfig && verbose == lastLoadedVerbose {
		return loadedConfig, verbose, nil
	}

	// Reset Viper state to avoid carrying over stale settings from previous loads.
	viper.Reset()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return nil, verbose, err
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TUG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		return nil, verbose, errors.Wrapf(err, "failed to read config file %s", cfgFile)
	}

	// Per-remote config, then repository-local config (.tug.toml)
	LoadRemoteConfig(verbose)
	LoadRepoLocalConfig(verbose)

	cfg, err := config.Load()
	if err != nil {
		return nil, verbose, err
	}

	// Check for security warnings
	warnings := config.CheckSecurityWarnings(cfg)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w.Message)
	}

	// Update state
	lastLoadedConfig = cfgFile
	lastLoadedVerbose = verbose
	loadedConfig = cfg

	return cfg, verbose, nil
}

// LoadRemoteConfig merges ~/.config/tug/<remote url>/config.toml, where the
// remote URL of origin has its slashes replaced by underscores.
func LoadRemoteConfig(verbose bool) {
	remoteURL, err := git.NewRepo("", false, nil).RemoteURL()
	if err != nil || remoteURL == "" {
		return
	}

	dir, err := config.Dir()
	if err != nil {
		return
	}

	remote := &git.Remote{URL: remoteURL}
	mergeConfigFile(filepath.Join(dir, remote.ConfigDirName(), "config.toml"), "remote", verbose)
}

// LoadRepoLocalConfig loads .tug.toml from current directory or git root.
func LoadRepoLocalConfig(verbose bool) {
	var localConfigPaths []string

	if gitRoot, err := FindGitRoot(); err == nil && gitRoot != "" {
		localConfigPaths = append(localConfigPaths, filepath.Join(gitRoot, RepoLocalConfigName))
		cwd, _ := os.Getwd()
		if cwd != gitRoot {
			localConfigPaths = append(localConfigPaths, RepoLocalConfigName)
		}
	} else {
		localConfigPaths = append(localConfigPaths, RepoLocalConfigName)
	}

	for _, configPath := range localConfigPaths {
		mergeConfigFile(configPath, "repository", verbose)
	}
}

func mergeConfigFile(configPath, kind string, verbose bool) {
	if _, err := os.Stat(configPath); err != nil {
		return
	}

	localViper := viper.New()
	localViper.SetConfigFile(configPath)
	localViper.SetConfigType("toml")

	if err := localViper.ReadInConfig(); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: could not read %s config %s: %v\n", kind, configPath, err)
		}
		return
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Using %s config: %s\n", kind, configPath)
	}

	if err := viper.MergeConfigMap(localViper.AllSettings()); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: could not merge %s config: %v\n", kind, err)
		}
	}
}

// FindGitRoot finds the root of the current git repository
func FindGitRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Reset clears the cached configuration state.
func Reset() {
	lastLoadedConfig = ""
	lastLoadedVerbose = false
	loadedConfig = nil
}
