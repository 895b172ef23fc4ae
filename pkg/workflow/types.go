// Package workflow provides the merge workflow engine.
//
// A merge rebases the feature branch on an up-to-date destination branch,
// pushes it, fast-forwards the destination branch onto it and pushes the
// destination branch. The host then marks the pull request as merged.
// The engine proceeds through these steps:
//  1. preflight: the pull request exists and the user confirms
//  2. sync-check: the local branch has the latest upstream commit
//  3. rebase: rebase the feature branch on the destination branch
//  4. push-branch: force-push the feature branch (with lease)
//  5. fast-forward: move the destination branch onto the feature branch
//  6. pre-checks: warn about many or work-in-progress commits
//  7. push: push the destination branch
//  8. cleanup: delete the local and remote feature branches
//
// The engine stops at the first failing step. The user fixes things (usually
// rebase conflicts) and runs the merge again.
package workflow

import (
	"thoreinstein.com/tug/pkg/host"
)

// Step represents a workflow step.
type Step string

const (
	// StepPreflight checks the pull request exists and asks for confirmation.
	StepPreflight Step = "preflight"
	// StepSyncCheck checks the branch has the upstream head of the destination.
	StepSyncCheck Step = "sync-check"
	// StepRebase rebases the feature branch on the destination branch.
	StepRebase Step = "rebase"
	// StepPushBranch force-pushes the rebased feature branch.
	StepPushBranch Step = "push-branch"
	// StepFastForward moves the destination branch onto the feature branch.
	StepFastForward Step = "fast-forward"
	// StepPreChecks asks before pushing many or WIP-looking commits.
	StepPreChecks Step = "pre-checks"
	// StepPush pushes the destination branch.
	StepPush Step = "push"
	// StepCleanup deletes the merged branch, locally and upstream.
	StepCleanup Step = "cleanup"
)

// AllSteps returns all workflow steps in execution order.
func AllSteps() []Step {
	return []Step{
		StepPreflight, StepSyncCheck, StepRebase, StepPushBranch,
		StepFastForward, StepPreChecks, StepPush, StepCleanup,
	}
}

// String returns the string representation of the step.
func (s Step) String() string {
	return string(s)
}

// MergeWorkflow represents the state of a merge operation.
type MergeWorkflow struct {
	Branch         string
	Destination    string
	PullRequest    *host.PullRequest
	CompletedSteps []Step
	CurrentStep    Step
}

// MergeOptions configures the workflow execution.
type MergeOptions struct {
	// Branch is the feature branch to merge. It must be checked out.
	Branch string

	// SkipConfirmation bypasses the initial confirmation prompt. The
	// sync-check and pre-checks prompts are still asked.
	SkipConfirmation bool
}

// PreCheckOptions configures the commit checks run before pushing the
// destination branch.
type PreCheckOptions struct {
	// Enabled turns the checks on.
	Enabled bool

	// MaxCommits asks for confirmation when this many commits or more
	// are about to be pushed.
	MaxCommits int

	// DisplayCommits caps the number of commits listed.
	DisplayCommits int

	// Keywords mark work-in-progress commit messages (case-insensitive).
	Keywords []string
}

// DefaultDisplayCommits is the number of commits listed by the pre-checks.
const DefaultDisplayCommits = 5
