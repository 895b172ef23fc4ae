package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/git"
	"thoreinstein.com/tug/pkg/host"
	"thoreinstein.com/tug/pkg/ui"
	"thoreinstein.com/tug/pkg/workflow"
)

// PRAddOptions holds the flags of `tug pr add` and `tug pr draft`.
type PRAddOptions struct {
	Base           string
	IgnoreTemplate bool
	Draft          bool
}

var prAddOptions PRAddOptions
var prDraftOptions PRAddOptions

// pullRequestTemplates are looked up, in order, at the repository root.
var pullRequestTemplates = []string{
	"PULL_REQUEST_TEMPLATE.md",
	filepath.Join(".github", "PULL_REQUEST_TEMPLATE.md"),
}

// editText lets the user edit the pull request content. Tests replace it.
var editText = ui.EditText

// reviewerSelector picks reviewers among collaborators.
type reviewerSelector interface {
	Select(users []host.User, defaults []string) ([]host.User, error)
}

// newReviewerSelector builds the interactive selector. Tests replace it.
var newReviewerSelector = func(prompter *ui.Prompter, out *ui.Printer) reviewerSelector {
	return ui.NewUserSelector(prompter, out)
}

// prAddCmd creates a pull request from the current branch.
var prAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Interactively create a new pull request",
	Long: `Push the current branch and open a pull request for it.

The title and body are prefilled with the messages of the commits that are
not on the base branch, followed by the pull request template if the
repository has one. You can accept, edit or cancel them before the pull
request is created. Reviewers are then picked among the collaborators.

Examples:
  tug pr add                     # Open a pull request against the base branch
  tug pr add --base release      # Open it against another branch
  tug pr add --draft             # Open a draft pull request`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		return runPRAdd(cmd.Context(), env, prAddOptions)
	},
}

// prDraftCmd is `pr add --draft`.
var prDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Interactively create a draft pull request",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		opts := prDraftOptions
		opts.Draft = true
		return runPRAdd(cmd.Context(), env, opts)
	},
}

func init() {
	prCmd.AddCommand(prAddCmd)
	prCmd.AddCommand(prDraftCmd)

	for _, c := range []struct {
		cmd  *cobra.Command
		opts *PRAddOptions
	}{{prAddCmd, &prAddOptions}, {prDraftCmd, &prDraftOptions}} {
		c.cmd.Flags().StringVar(&c.opts.Base, "base", "", "Branch where changes should be applied (defaults to the base branch)")
		c.cmd.Flags().BoolVar(&c.opts.IgnoreTemplate, "ignore-template", false, "Do not use the pull request template")
	}
	prAddCmd.Flags().BoolVar(&prAddOptions.Draft, "draft", false, "Mark as a draft pull request")
}

func runPRAdd(ctx context.Context, env *commandEnv, opts PRAddOptions) error {
	repo, branch := env.rc.Repo, env.rc.Branch

	base := opts.Base
	if base == "" {
		base = baseBranch(env.cfg, repo)
	}
	if err := workflow.AssertFeatureBranch(branch, base); err != nil {
		return err
	}

	if err := pushToOrigin(repo, branch); err != nil {
		return err
	}
	env.out.Success("Pushed local branch to upstream.")

	content, err := pullRequestContent(repo, base, branch, !opts.IgnoreTemplate)
	if err != nil {
		return err
	}

	env.out.Printf("Confirm title and body:\n--- 8-> ---\n%s\n--- 8-> ---\n", content)
	choice, err := env.prompter.ConfirmOrEdit("Create the pull request", true)
	if err != nil {
		return err
	}
	switch choice {
	case ui.ChoiceNo:
		return nil
	case ui.ChoiceEdit:
		edited, ok, err := editText(content + "\n")
		if err != nil {
			return err
		}
		if ok && strings.TrimSpace(edited) != "" {
			content = edited
		}
	}

	title, body := splitTitleAndBody(content)
	pr, err := env.client.CreatePullRequest(ctx, branch, base, title, body, opts.Draft)
	if err != nil {
		return err
	}
	env.out.Success("Created pull request on Git host")

	if _, err := requestReviews(ctx, env); err != nil {
		return err
	}

	env.out.Printf("Created #%d at %s\n", pr.Number, pr.URL)
	return nil
}

// pushToOrigin pushes branch, setting its upstream on the first push.
func pushToOrigin(repo *git.Repo, branch string) error {
	hasUpstream, err := repo.HasUpstream()
	if err != nil {
		return errors.Wrap(err, "Got the following error when pushing upstream")
	}
	if hasUpstream {
		return repo.Push()
	}
	return repo.PushSetUpstream(branch)
}

// pullRequestContent returns the commit messages of base..branch, oldest
// first and separated by blank lines, followed by the pull request template.
func pullRequestContent(repo *git.Repo, base, branch string, withTemplate bool) (string, error) {
	messages, err := repo.CommitMessages(base, branch)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, m := range messages {
		lines = append(lines, m, "", "")
	}
	parts := []string{strings.Join(lines, "\n")}

	if withTemplate {
		if root, err := repo.Root(); err == nil {
			if tmpl := readTemplate(root); tmpl != "" {
				parts = append(parts, tmpl)
			}
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func readTemplate(root string) string {
	for _, name := range pullRequestTemplates {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err == nil {
			return string(data)
		}
	}
	return ""
}

// splitTitleAndBody takes the first line as title. The blank lines after it
// are dropped and the rest is the body.
func splitTitleAndBody(content string) (title, body string) {
	title, rest, _ := strings.Cut(content, "\n")

	lines := strings.Split(rest, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}

	return strings.TrimSpace(title), strings.TrimSpace(strings.Join(lines, "\n"))
}

// requestReviews lets the user pick reviewers among the collaborators and
// asks them for a review. It reports whether any review was requested.
func requestReviews(ctx context.Context, env *commandEnv) (bool, error) {
	collaborators, err := env.client.GetCollaborators(ctx)
	if err != nil {
		return false, err
	}

	users, err := newReviewerSelector(env.prompter, env.out).Select(collaborators, env.cfg.GitHub.DefaultReviewers)
	if err != nil {
		return false, err
	}
	if len(users) == 0 {
		return false, nil
	}

	if err := env.client.RequestReviews(ctx, users); err != nil {
		return false, err
	}
	return true, nil
}
