package workflow

import (
	"context"
	"log/slog"
	"slices"
	"strconv"

	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/git"
	"thoreinstein.com/tug/pkg/host"
	"thoreinstein.com/tug/pkg/ui"
)

// ErrAborted is returned when the user (or the auto_rebase policy) stops the
// merge. Nothing has been pushed and the command should exit cleanly.
var ErrAborted = tugerrors.New("merge aborted")

// Confirmer asks the user a yes/no question. *ui.Prompter implements it.
type Confirmer interface {
	Confirm(question string, defaultYes bool) (bool, error)
}

// Engine orchestrates the merge workflow.
type Engine struct {
	client     host.Client
	repo       *git.Repo
	confirm    Confirmer
	out        *ui.Printer
	autoRebase string
	preChecks  PreCheckOptions
	verbose    bool
	logger     *slog.Logger
}

// EngineOption is a functional option for configuring Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAutoRebase sets the sync-check policy: always, never or ask.
func WithAutoRebase(policy string) EngineOption {
	return func(e *Engine) {
		e.autoRebase = policy
	}
}

// WithPreChecks configures the commit checks run before the final push.
func WithPreChecks(opts PreCheckOptions) EngineOption {
	return func(e *Engine) {
		e.preChecks = opts
	}
}

// NewEngine creates a workflow engine.
//
// Parameters:
//   - client: host client bound to the branch being merged (required)
//   - repo: the local checkout (required)
//   - confirm: asks the user for confirmations (required)
//   - out: where progress and results are printed (required)
//   - verbose: enable verbose logging
func NewEngine(client host.Client, repo *git.Repo, confirm Confirmer, out *ui.Printer, verbose bool, opts ...EngineOption) *Engine {
	e := &Engine{
		client:     client,
		repo:       repo,
		confirm:    confirm,
		out:        out,
		autoRebase: config.AutoRebaseAsk,
		preChecks: PreCheckOptions{
			MaxCommits:     2,
			DisplayCommits: DefaultDisplayCommits,
		},
		verbose: verbose,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes the full merge workflow. It returns ErrAborted when the merge
// was cancelled, and a WorkflowError naming the failing step otherwise.
func (e *Engine) Run(ctx context.Context, opts MergeOptions) error {
	wf := &MergeWorkflow{
		Branch:         opts.Branch,
		CompletedSteps: make([]Step, 0, len(AllSteps())),
	}

	e.logDebug("starting merge workflow", "branch", wf.Branch)

	steps := []struct {
		step Step
		fn   func(context.Context, *MergeWorkflow, MergeOptions) error
	}{
		{StepPreflight, e.runPreflight},
		{StepSyncCheck, e.runSyncCheck},
		{StepRebase, e.runRebase},
		{StepPushBranch, e.runPushBranch},
		{StepFastForward, e.runFastForward},
		{StepPreChecks, e.runPreChecks},
		{StepPush, e.runPush},
		{StepCleanup, e.runCleanup},
	}

	for _, s := range steps {
		wf.CurrentStep = s.step
		if ctx.Err() != nil {
			return e.interrupted(wf)
		}

		e.logDebug("executing step", "step", s.step)

		if err := s.fn(ctx, wf, opts); err != nil {
			if ctx.Err() != nil || tugerrors.Is(err, context.Canceled) {
				return e.interrupted(wf)
			}
			if tugerrors.Is(err, ErrAborted) || tugerrors.IsWorkflowError(err) {
				return err
			}
			return tugerrors.NewWorkflowErrorWithCause(string(s.step), err.Error(), err)
		}

		wf.CompletedSteps = append(wf.CompletedSteps, s.step)
		e.logDebug("completed step", "step", s.step)
	}

	e.out.Success("Your pull request has been merged to %s and the corresponding branches (local and upstream) have been deleted.", wf.Destination)
	return nil
}

// interrupted is the result of a cancelled merge. Before the fast-forward
// nothing outside the feature branch has changed and the merge simply
// aborts. After it, the destination branch is checked out with local
// commits and the user has to be told.
func (e *Engine) interrupted(wf *MergeWorkflow) error {
	e.logDebug("merge interrupted", "step", wf.CurrentStep, "completed", wf.CompletedSteps)

	switch {
	case slices.Contains(wf.CompletedSteps, StepPush):
		return tugerrors.NewInterruptedWorkflowErrorf(string(wf.CurrentStep),
			"interrupted after %s was pushed. The pull request is merged but the branch %s may still exist locally and upstream, and you are now in %s.",
			wf.Destination, wf.Branch, wf.Destination)
	case slices.Contains(wf.CompletedSteps, StepFastForward):
		return tugerrors.NewInterruptedWorkflowErrorf(string(wf.CurrentStep),
			"interrupted before %s was pushed. You are now in %s, which has the commits of %s locally. Run `git push` to finish the merge, or `git reset --hard @{u}` then `git checkout %s` to undo it.",
			wf.Destination, wf.Destination, wf.Branch, wf.Branch)
	}
	return ErrAborted
}

// runPreflight finds the pull request and asks for confirmation.
func (e *Engine) runPreflight(ctx context.Context, wf *MergeWorkflow, opts MergeOptions) error {
	pr, err := e.client.GetPullRequest(ctx, wf.Branch)
	if err != nil {
		return err
	}
	if pr == nil {
		return tugerrors.NewGitHostErrorf("getPullRequest", "There is no open pull request on the current branch %s", wf.Branch)
	}
	if err := AssertFeatureBranch(wf.Branch, pr.BaseBranch); err != nil {
		return err
	}

	wf.PullRequest = pr
	wf.Destination = pr.BaseBranch

	e.out.Printf("You are about to rebase %s on %s and push %s upstream.\n", wf.Branch, wf.Destination, wf.Destination)
	if opts.SkipConfirmation {
		return nil
	}
	return e.ask("Continue", false)
}

// runSyncCheck makes sure the local branch has the latest commit of the
// destination branch upstream, unless auto_rebase is "always".
func (e *Engine) runSyncCheck(_ context.Context, wf *MergeWorkflow, _ MergeOptions) error {
	if e.autoRebase == config.AutoRebaseAlways {
		e.logDebug("skipping sync check", "auto_rebase", e.autoRebase)
		return nil
	}

	remoteURL, err := e.repo.RemoteURL()
	if err != nil {
		return err
	}
	upstreamHead, err := e.repo.RemoteSHA(remoteURL, wf.Destination)
	if err != nil {
		return err
	}
	if upstreamHead == "" {
		e.logDebug("destination branch not found upstream", "branch", wf.Destination)
		return nil
	}

	hasCommit, err := e.repo.HasCommit(upstreamHead)
	if err != nil {
		return err
	}
	if hasCommit {
		return nil
	}

	if e.autoRebase == config.AutoRebaseNever {
		e.out.Error("Latest commit upstream is %s, which you do not have locally. Merge has been cancelled. You may rebase manually with `tug pr rebase`.", upstreamHead)
		return ErrAborted
	}

	e.out.Warning("Latest commit upstream is %s, which you do not have locally. Do you want to automatically rebase and merge?", upstreamHead)
	err = e.ask("Continue", false)
	if tugerrors.Is(err, ErrAborted) {
		e.out.Error("Merge has been cancelled. You may rebase manually with `tug pr rebase`.")
	}
	return err
}

func (e *Engine) runRebase(_ context.Context, wf *MergeWorkflow, _ MergeOptions) error {
	return RebaseBranch(e.repo, wf.Branch, wf.Destination)
}

// runPushBranch pushes the rebased branch so that the host marks the pull
// request as merged once the destination branch is pushed.
func (e *Engine) runPushBranch(_ context.Context, _ *MergeWorkflow, _ MergeOptions) error {
	return e.repo.PushForceWithLease()
}

func (e *Engine) runFastForward(_ context.Context, wf *MergeWorkflow, _ MergeOptions) error {
	if err := e.repo.Checkout(wf.Destination); err != nil {
		return err
	}
	return e.repo.Rebase(wf.Branch)
}

// runPreChecks asks before pushing many or WIP-looking commits, and rolls
// the destination branch back when the user refuses.
func (e *Engine) runPreChecks(_ context.Context, wf *MergeWorkflow, _ MergeOptions) error {
	if !e.preChecks.Enabled {
		return nil
	}

	ok, err := e.checkCommits(wf.Destination)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	e.out.Error("You cancelled the push.")
	return e.rollback(wf)
}

// rollback drops the commits added to the destination branch and returns to
// the feature branch.
func (e *Engine) rollback(wf *MergeWorkflow) error {
	current, err := e.repo.CurrentBranch()
	if err != nil {
		return err
	}
	if current != wf.Destination {
		return tugerrors.NewWorkflowErrorf(string(StepPreChecks), "We are in %s but should be in %s", current, wf.Destination)
	}

	ahead, err := e.repo.CommitsAhead(upstreamRef, "HEAD")
	if err != nil {
		return err
	}
	if ahead == 0 {
		return tugerrors.NewWorkflowErrorf(string(StepPreChecks),
			"Could not determine the status of the local %s, which is where you now are. You are NOT on your feature branch. Caution!", wf.Destination)
	}

	if err := e.repo.ResetHard("@~" + strconv.Itoa(ahead)); err != nil {
		return err
	}
	if err := e.repo.Checkout(wf.Branch); err != nil {
		return err
	}

	e.out.Printf("Destination branch (%s) has been rolled back, you are back in %s.\n", wf.Destination, wf.Branch)
	return ErrAborted
}

// runPush pushes the destination branch. It fails if someone pushed since
// the rebase.
func (e *Engine) runPush(_ context.Context, _ *MergeWorkflow, _ MergeOptions) error {
	return e.repo.Push()
}

func (e *Engine) runCleanup(_ context.Context, wf *MergeWorkflow, _ MergeOptions) error {
	if err := e.repo.DeleteBranch(wf.Branch); err != nil {
		return err
	}
	if wf.PullRequest.DeleteBranchOnMerge {
		e.logDebug("host deletes the merged branch", "branch", wf.Branch)
		return nil
	}
	return e.repo.DeleteRemoteBranch(wf.Branch)
}

// ask returns ErrAborted unless the user confirms.
func (e *Engine) ask(question string, defaultYes bool) error {
	ok, err := e.confirm.Confirm(question, defaultYes)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

func (e *Engine) logDebug(msg string, args ...any) {
	if e.verbose {
		e.logger.Debug(msg, args...)
	}
}
