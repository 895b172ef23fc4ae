package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// prReadyCmd marks a draft pull request as ready for review.
var prReadyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Mark a draft pull request as ready",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		return runPRReady(cmd.Context(), env)
	},
}

func init() {
	prCmd.AddCommand(prReadyCmd)
}

func runPRReady(ctx context.Context, env *commandEnv) error {
	pr, err := env.client.GetPullRequest(ctx, env.rc.Branch)
	if err != nil {
		return err
	}
	if pr == nil {
		return noPullRequestError(env.rc.Branch)
	}

	if err := env.client.MarkPullRequestAsReady(ctx); err != nil {
		return err
	}

	env.out.Success("The pull request is now ready for review at %s.", pr.URL)
	return nil
}
