package cmd

import (
	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/config"
	"thoreinstein.com/tug/pkg/ui"
	"thoreinstein.com/tug/pkg/workflow"
)

// prRebaseCmd rebases the current branch on the up-to-date base branch.
var prRebaseCmd = &cobra.Command{
	Use:   "rebase",
	Short: "Rebase the branch on the base branch",
	Long: `Update the local base branch from upstream and rebase the current branch on it.

This changes the local current and base branches, not upstream. A rebase that
stops on conflicts is left in progress for you to resolve.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rc, err := newRepoContext()
		if err != nil {
			return err
		}
		return runPRRebase(cfg, rc, ui.NewPrinter(cmd.OutOrStdout()))
	},
}

func init() {
	prCmd.AddCommand(prRebaseCmd)
}

func runPRRebase(cfg *config.Config, rc *repoContext, out *ui.Printer) error {
	base := baseBranch(cfg, rc.Repo)
	if err := workflow.AssertFeatureBranch(rc.Branch, base); err != nil {
		return err
	}

	if err := workflow.RebaseBranch(rc.Repo, rc.Branch, base); err != nil {
		return err
	}

	out.Success("Your branch has been rebased wrt upstream %s.", base)
	return nil
}
