package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

// configShowCmd prints the merged configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration tug uses in this directory, as TOML.

Values are merged from the global config file, the per-remote config file,
the repository .tug.toml files and TUG_* environment variables. The token is
redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(w io.Writer) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	data, err := config.EffectiveTOML()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
