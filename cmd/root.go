package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"thoreinstein.com/tug/pkg/bootstrap"
	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/logging"
	"thoreinstein.com/tug/pkg/workflow"
)

var cfgFile string
var verbose bool
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tug",
	Short: "Tug - pull request workflow from the command line",
	Long: `Tug helps you create, review, merge and follow pull requests from the
command line.

It talks to the Git host (GitHub) through its GraphQL API, and drives git for
everything that happens locally: pushing, rebasing and merging by
fast-forward.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pre-parse global flags so the layered config is loaded before cobra
	// runs; the per-remote layer depends on --config.
	cfgFile, verbose = bootstrap.PreParseGlobalFlags(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	go func() {
		// Hand the signals back after the first one: a second Ctrl-C kills
		// whatever is still blocking.
		<-ctx.Done()
		stop()
	}()

	err := rootCmd.ExecuteContext(ctx)
	_ = logging.CloseFile()
	os.Exit(exitCode(rootCmd.ErrOrStderr(), err))
}

func init() {
	rootCmd.Version = GetVersion()
	rootCmd.SetVersionTemplate("tug version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/tug/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// exitCode prints err for the user and maps it to a process exit code.
// Cancellation by the user is not a failure.
func exitCode(stderr io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case tugerrors.Is(err, workflow.ErrAborted), tugerrors.Is(err, io.EOF), tugerrors.Is(err, context.Canceled):
		return 0
	}

	fmt.Fprintln(stderr, tugerrors.FormatUserError(err))
	return 1
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	appConfig, verbose, err = bootstrap.InitConfig(cfgFile, verbose)
	return err
}

// loadConfig returns the loaded configuration, loading it on first use.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	if err := initConfig(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

// setupLogging installs the default logger from the loaded configuration.
// A broken configuration only surfaces once a command needs it.
func setupLogging() error {
	level, file := "info", ""
	if cfg, err := loadConfig(); err == nil {
		level, file = cfg.Log.Level, cfg.Log.File
	}

	logger, err := logging.Setup(level, file, verbose)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "file", viper.ConfigFileUsed())
	return nil
}

// resetConfig clears the cached configuration.
// This is primarily used in tests to ensure each test starts with a fresh config.
func resetConfig() {
	appConfig = nil
	bootstrap.Reset()
	viper.Reset()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
