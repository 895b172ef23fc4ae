package cmd

import (
	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/ci"
	"thoreinstein.com/tug/pkg/config"
)

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "Commands related to CI",
}

// ciBrowseCmd opens the CI page of a branch.
var ciBrowseCmd = &cobra.Command{
	Use:   "browse [branch]",
	Short: "Open CI job in browser (defaults to current branch)",
	Long: `Open the CI page of a branch in the default browser.

The URL comes from ci.url when it is set, otherwise from the template of
ci.platform. When neither is configured the platform is detected from a
.circleci or .github/workflows directory, in the working directory and then
at the repository root.

Templates may use {remote_url}, {host_domain}, {owner}, {repository},
{branch} and {host_platform}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rc, err := newRepoContext()
		if err != nil {
			return err
		}

		branch := rc.Branch
		if len(args) > 0 {
			branch = args[0]
		}

		dirs := []string{"."}
		if root, err := rc.Repo.Root(); err == nil {
			dirs = append(dirs, root)
		}
		return runCIBrowse(cfg, rc, branch, dirs...)
	},
}

func init() {
	rootCmd.AddCommand(ciCmd)
	ciCmd.AddCommand(ciBrowseCmd)
}

func runCIBrowse(cfg *config.Config, rc *repoContext, branch string, dirs ...string) error {
	url, err := ci.URL(cfg.CI, ci.Vars{
		RemoteURL:    rc.Remote.URL,
		HostDomain:   rc.Remote.Domain,
		Owner:        rc.Remote.Owner,
		Repository:   rc.Remote.Repo,
		Branch:       branch,
		HostPlatform: cfg.Host.Platform,
	}, dirs...)
	if err != nil {
		return err
	}
	return openURL(url)
}
