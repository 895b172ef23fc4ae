package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/host"
)

// prBrowseCmd opens a pull request in the browser.
var prBrowseCmd = &cobra.Command{
	Use:   "browse [branch]",
	Short: "Open the pull request in a browser",
	Long: `Open the pull request of a branch in the default browser.

If no branch is given, the current branch is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}

		branch := env.rc.Branch
		if len(args) > 0 {
			branch = args[0]
		}
		return runPRBrowse(cmd.Context(), env.client, branch)
	},
}

func init() {
	prCmd.AddCommand(prBrowseCmd)
}

func runPRBrowse(ctx context.Context, client host.Client, branch string) error {
	pr, err := client.GetPullRequest(ctx, branch)
	if err != nil {
		return err
	}
	if pr == nil {
		return noPullRequestError(branch)
	}
	return openURL(pr.URL)
}
