package workflow

import (
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/git"
)

// AssertFeatureBranch fails when branch is the base branch.
func AssertFeatureBranch(branch, base string) error {
	if branch == base {
		return tugerrors.NewWorkflowError("", "You are on the "+base+" branch, this command must be run from a feature branch.")
	}
	return nil
}

// RebaseBranch rebases branch on an up-to-date onto. It leaves branch
// checked out and stops at the first failing command; a conflicting rebase
// is left in progress for the user to resolve.
func RebaseBranch(repo *git.Repo, branch, onto string) error {
	commands := []func() error{
		func() error { return repo.Checkout(onto) },
		repo.PullRebase,
		func() error { return repo.Checkout(branch) },
		func() error { return repo.Rebase(onto) }, // may fail if there are conflicts
	}

	for _, run := range commands {
		if err := run(); err != nil {
			return err
		}
	}
	return nil
}
