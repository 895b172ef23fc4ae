package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// prReqReviewCmd asks collaborators to review the pull request.
var prReqReviewCmd = &cobra.Command{
	Use:   "reqreview",
	Short: "Ask for reviews",
	Long: `Pick reviewers among the repository collaborators and request their review.

When fzf is installed it is used for the selection. Otherwise, type logins
separated by spaces. An empty answer selects github.default_reviewers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		return runPRReqReview(cmd.Context(), env)
	},
}

func init() {
	prCmd.AddCommand(prReqReviewCmd)
}

func runPRReqReview(ctx context.Context, env *commandEnv) error {
	requested, err := requestReviews(ctx, env)
	if err != nil {
		return err
	}
	if requested {
		env.out.Success("Reviews have been requested.")
	}
	return nil
}
