package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/workflow"
)

type PRMergeOptions struct {
	Yes bool
}

var prMergeOptions PRMergeOptions

// prMergeCmd merges the pull request by rebasing and pushing.
var prMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge (actually rebase and push) the pull request",
	Long: `Merge the pull request of the current branch without a merge commit.

The workflow:
  1. Preflight (find the pull request, confirm)
  2. Sync check (the branch has the latest upstream commit of the base branch)
  3. Rebase the branch on the up-to-date base branch
  4. Force-push the rebased branch
  5. Fast-forward the base branch onto the branch
  6. Pre-checks (many or work-in-progress commits ask for confirmation)
  7. Push the base branch, which the Git host sees as a merge
  8. Delete the local and remote branches

If you refuse the pre-checks, the base branch is rolled back and nothing is
pushed upstream.

Examples:
  tug pr merge              # Merge the pull request of the current branch
  tug pr merge --yes        # Skip the initial confirmation`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		return runPRMerge(cmd.Context(), env, prMergeOptions)
	},
}

func init() {
	prCmd.AddCommand(prMergeCmd)

	prMergeCmd.Flags().BoolVarP(&prMergeOptions.Yes, "yes", "y", false, "Skip the initial confirmation")
}

func runPRMerge(ctx context.Context, env *commandEnv, opts PRMergeOptions) error {
	merge := env.cfg.Merge

	engine := workflow.NewEngine(env.client, env.rc.Repo, env.prompter, env.out, verbose,
		workflow.WithLogger(slog.Default()),
		workflow.WithAutoRebase(merge.AutoRebase),
		workflow.WithPreChecks(workflow.PreCheckOptions{
			Enabled:        merge.PreChecks,
			MaxCommits:     merge.MaxCommits,
			DisplayCommits: workflow.DefaultDisplayCommits,
			Keywords:       merge.WIPKeywords,
		}),
	)

	return engine.Run(ctx, workflow.MergeOptions{
		Branch:           env.rc.Branch,
		SkipConfirmation: opts.Yes,
	})
}
