package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/git"
	"thoreinstein.com/tug/pkg/github"
	"thoreinstein.com/tug/pkg/host"
	"thoreinstein.com/tug/pkg/ui"
)

// repoContext is what nearly every command needs to know about the current
// checkout.
type repoContext struct {
	Repo   *git.Repo
	Remote *git.Remote
	Branch string
}

// newRepoContext reads the origin remote and the current branch of the
// repository in the working directory.
func newRepoContext() (*repoContext, error) {
	repo := git.NewRepo("", verbose, slog.Default())

	remoteURL, err := repo.RemoteURL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the origin remote")
	}
	remote, err := git.ParseRemoteURL(remoteURL)
	if err != nil {
		return nil, tugerrors.NewConfigErrorWithCause("",
			fmt.Sprintf("Could not parse remote origin and determine the Git host: '%s'", remoteURL), err)
	}

	branch, err := repo.CurrentBranch()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the current branch")
	}

	return &repoContext{Repo: repo, Remote: remote, Branch: branch}, nil
}

// baseBranch returns git.base_branch, or the remote's default branch.
func baseBranch(cfg *config.Config, repo *git.Repo) string {
	if cfg.Git.BaseBranch != "" {
		return cfg.Git.BaseBranch
	}
	return repo.DefaultBranch()
}

// newHostClient returns the backend for host.platform, bound to the current
// repository and branch.
func newHostClient(ctx context.Context, cfg *config.Config, rc *repoContext) (host.Client, error) {
	switch host.Platform(cfg.Host.Platform) {
	case host.PlatformGitHub:
		client, err := github.NewClient(ctx, cfg, github.NewTokenStore(), rc.Remote, rc.Branch, verbose)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, tugerrors.NewConfigError("host.platform",
			fmt.Sprintf("Could not find any backend for platform '%s'", cfg.Host.Platform))
	}
}

// commandEnv bundles the collaborators of a pull request command.
type commandEnv struct {
	cfg      *config.Config
	rc       *repoContext
	client   host.Client
	prompter *ui.Prompter
	out      *ui.Printer
}

// newCommandEnv loads the configuration, reads the repository and builds
// the host client.
func newCommandEnv(cmd *cobra.Command) (*commandEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	rc, err := newRepoContext()
	if err != nil {
		return nil, err
	}

	client, err := newHostClient(cmd.Context(), cfg, rc)
	if err != nil {
		return nil, err
	}

	return &commandEnv{
		cfg:      cfg,
		rc:       rc,
		client:   client,
		prompter: ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), ui.WithContext(cmd.Context())),
		out:      ui.NewPrinter(cmd.OutOrStdout()),
	}, nil
}

// noPullRequestError is returned when branch has no open pull request.
func noPullRequestError(branch string) error {
	return tugerrors.NewGitHostErrorf("getPullRequest", "There is no open pull request on the current branch %s", branch)
}

// openURL opens a URL in the default browser. Tests replace it.
var openURL = func(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return tugerrors.NewWorkflowError("", "unsupported platform: "+runtime.GOOS)
	}

	return cmd.Start()
}
