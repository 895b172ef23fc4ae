package cmd

import (
	"github.com/spf13/cobra"
)

// prCmd is the parent command for pull request operations.
var prCmd = &cobra.Command{
	Use:   "pr",
	Short: "Commands related to pull requests",
	Long: `Create, review, rebase and merge the pull request of the current branch.

Examples:
  tug pr add                 # Push the branch and open a pull request
  tug pr draft               # Same, as a draft
  tug pr reqreview           # Ask collaborators for reviews
  tug pr rebase              # Rebase the branch on the base branch
  tug pr merge               # Rebase, fast-forward and push the base branch`,
}

func init() {
	rootCmd.AddCommand(prCmd)
}
