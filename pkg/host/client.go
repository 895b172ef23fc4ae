package host

import "context"

// Client is the set of pull request operations a Git hosting backend
// provides. A client is bound to one repository and one branch.
type Client interface {
	// GetPullRequest returns the open pull request whose head is branch,
	// or nil if there is none. More than one match is a GitHostError.
	GetPullRequest(ctx context.Context, branch string) (*PullRequest, error)

	// CreatePullRequest opens a pull request from head to base.
	CreatePullRequest(ctx context.Context, head, base, title, body string, draft bool) (*PullRequest, error)

	// GetCollaborators lists every collaborator of the repository, across pages.
	GetCollaborators(ctx context.Context) ([]User, error)

	// RequestReviews asks users to review the current branch's pull request.
	RequestReviews(ctx context.Context, users []User) error

	// MarkPullRequestAsReady turns the current branch's draft pull request
	// into a regular one.
	MarkPullRequestAsReady(ctx context.Context) error

	// GetPullRequestStatus fetches a fresh status snapshot for the current
	// branch's pull request.
	GetPullRequestStatus(ctx context.Context) (*PullRequestStatus, error)

	// GetRepository returns the repository metadata, read through the cache.
	GetRepository(ctx context.Context) (*Repository, error)
}
