package git

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

// DefaultRemote is the remote every workflow pushes to.
const DefaultRemote = "origin"

// commitHeaderRegex splits `git log` output into commits.
var commitHeaderRegex = regexp.MustCompile(`(?m)^commit [\da-f]{20,}.*$`)

// Repo runs git commands against one working tree.
type Repo struct {
	Dir     string // Working directory; empty means the process cwd
	Verbose bool
	runner  CommandRunner
	logger  *slog.Logger
}

// NewRepo creates a Repo for dir backed by the git binary.
func NewRepo(dir string, verbose bool, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{
		Dir:     dir,
		Verbose: verbose,
		runner:  &RealCommandRunner{Verbose: verbose, Logger: logger},
		logger:  logger,
	}
}

// NewRepoWithRunner creates a Repo with a custom CommandRunner (for testing)
func NewRepoWithRunner(dir string, runner CommandRunner) *Repo {
	return &Repo{
		Dir:    dir,
		runner: runner,
		logger: slog.Default(),
	}
}

func (r *Repo) git(args ...string) error {
	return r.runner.Run(r.Dir, "git", args...)
}

func (r *Repo) gitOutput(args ...string) (string, error) {
	out, err := r.runner.Output(r.Dir, "git", args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RemoteURL returns the URL of the default remote.
func (r *Repo) RemoteURL() (string, error) {
	url, err := r.gitOutput("ls-remote", "--get-url", DefaultRemote)
	if err != nil {
		return "", errors.Wrap(err, "failed to read remote URL")
	}
	return url, nil
}

// Root returns the top-level directory of the working tree.
func (r *Repo) Root() (string, error) {
	return r.gitOutput("rev-parse", "--show-toplevel")
}

// CurrentBranch returns the checked out branch name.
func (r *Repo) CurrentBranch() (string, error) {
	branch, err := r.gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.Wrap(err, "failed to read current branch")
	}
	return branch, nil
}

// HasUpstream reports whether the current branch tracks a remote branch.
func (r *Repo) HasUpstream() (bool, error) {
	_, err := r.gitOutput("rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err == nil {
		return true, nil
	}
	if tugerrors.ExitCode(err) == 128 {
		return false, nil
	}
	return false, err
}

// CurrentSHA returns the commit ref points to. An empty ref means HEAD.
func (r *Repo) CurrentSHA(ref string) (string, error) {
	if ref == "" {
		ref = "HEAD"
	}
	return r.gitOutput("rev-parse", ref)
}

// RemoteSHA returns the commit branch points to on the remote, or "" if the
// branch does not exist there.
func (r *Repo) RemoteSHA(remoteURL, branch string) (string, error) {
	out, err := r.gitOutput("ls-remote", remoteURL, branch)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read upstream head of %s", branch)
	}
	lines := Lines(out)
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Split(lines[0], "\t")[0], nil
}

// HasCommit reports whether sha is an ancestor of HEAD.
func (r *Repo) HasCommit(sha string) (bool, error) {
	err := r.git("merge-base", "--is-ancestor", sha, "HEAD")
	if err == nil {
		return true, nil
	}
	switch tugerrors.ExitCode(err) {
	case 1, 128:
		// 128: the commit is unknown locally.
		return false, nil
	}
	return false, err
}

// CommitMessages returns the messages of the commits in base..branch,
// oldest first.
func (r *Repo) CommitMessages(base, branch string) ([]string, error) {
	out, err := r.gitOutput("log", base+".."+branch, "--reverse")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read commit log")
	}
	return parseCommitMessages(out), nil
}

func parseCommitMessages(log string) []string {
	var messages []string
	for _, chunk := range commitHeaderRegex.Split(log, -1) {
		var body []string
		for _, line := range strings.Split(chunk, "\n") {
			if strings.HasPrefix(line, "    ") {
				body = append(body, line[4:])
			} else if line == "" && len(body) > 0 {
				body = append(body, "")
			}
		}
		message := strings.TrimSpace(strings.Join(body, "\n"))
		if message != "" {
			messages = append(messages, message)
		}
	}
	return messages
}

// Checkout switches to branch.
func (r *Repo) Checkout(branch string) error {
	return r.git("checkout", branch)
}

// PullRebase pulls the current branch with rebase.
func (r *Repo) PullRebase() error {
	return r.git("pull", "--rebase")
}

// Rebase rebases the current branch onto onto.
func (r *Repo) Rebase(onto string) error {
	return r.git("rebase", onto)
}

// Push pushes the current branch to its upstream.
func (r *Repo) Push() error {
	return r.git("push")
}

// PushSetUpstream pushes branch and sets it as upstream.
func (r *Repo) PushSetUpstream(branch string) error {
	return r.git("push", "--set-upstream", DefaultRemote, branch)
}

// PushForceWithLease force-pushes the current branch, refusing to overwrite
// unknown remote work.
func (r *Repo) PushForceWithLease() error {
	return r.git("push", "--force-with-lease")
}

// DeleteBranch deletes a local branch.
func (r *Repo) DeleteBranch(branch string) error {
	return r.git("branch", "--delete", branch)
}

// DeleteRemoteBranch deletes branch on the default remote.
func (r *Repo) DeleteRemoteBranch(branch string) error {
	return r.git("push", "--delete", DefaultRemote, branch)
}

// ResetHard resets the current branch and working tree to ref.
func (r *Repo) ResetHard(ref string) error {
	return r.git("reset", "--hard", ref)
}

// CommitsAhead counts the commits reachable from local but not from remote.
func (r *Repo) CommitsAhead(remote, local string) (int, error) {
	out, err := r.gitOutput("rev-list", remote+".."+local, "--count")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected rev-list output %q", out)
	}
	return n, nil
}

// LogOneline returns up to max one-line commit summaries of revRange, newest
// first.
func (r *Repo) LogOneline(revRange string, max int) ([]string, error) {
	out, err := r.gitOutput("log", "--oneline", "--max-count", strconv.Itoa(max), revRange)
	if err != nil {
		return nil, err
	}
	return Lines(out), nil
}

// GrepLog returns the one-line summaries of the commits in revRange whose
// message matches any keyword, case-insensitively.
func (r *Repo) GrepLog(revRange string, keywords []string) ([]string, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	args := []string{"log", "--oneline", "--regexp-ignore-case"}
	for _, kw := range keywords {
		args = append(args, "--grep", kw)
	}
	args = append(args, revRange)

	out, err := r.gitOutput(args...)
	if err != nil {
		return nil, err
	}
	return Lines(out), nil
}

// DefaultBranch returns the remote's default branch, from origin/HEAD.
// It falls back to "main".
func (r *Repo) DefaultBranch() string {
	ref, err := r.gitOutput("symbolic-ref", "refs/remotes/"+DefaultRemote+"/HEAD")
	if err == nil && strings.HasPrefix(ref, "refs/remotes/"+DefaultRemote+"/") {
		return strings.TrimPrefix(ref, "refs/remotes/"+DefaultRemote+"/")
	}
	if r.Verbose {
		r.logger.Debug("could not detect default branch, using main", "error", err)
	}
	return "main"
}
