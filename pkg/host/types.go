// Package host defines the pull request model shared by every Git hosting
// backend, and the closed Client interface each backend implements.
package host

// Platform identifies a Git hosting backend.
type Platform string

// Supported platforms.
const (
	PlatformGitHub Platform = "github"
)

// Platforms returns every supported platform.
func Platforms() []Platform {
	return []Platform{PlatformGitHub}
}

// CommitState is the normalized state of one CI signal.
type CommitState string

// Commit states.
const (
	CommitStateError   CommitState = "ERROR"
	CommitStateFailure CommitState = "FAILURE"
	CommitStatePending CommitState = "PENDING"
	CommitStateSuccess CommitState = "SUCCESS"
	CommitStateUnknown CommitState = "UNKNOWN"
)

// ReviewState is the normalized state of one reviewer.
type ReviewState string

// Review states.
const (
	ReviewStateApproved  ReviewState = "APPROVED"
	ReviewStateCommented ReviewState = "COMMENTED"
	ReviewStatePending   ReviewState = "PENDING"
	ReviewStateRejected  ReviewState = "REJECTED"
	ReviewStateUnknown   ReviewState = "UNKNOWN"
)

// PullRequest identifies an open pull request.
type PullRequest struct {
	ID                  string `json:"id" yaml:"id"`
	Number              int    `json:"number" yaml:"number"`
	BaseBranch          string `json:"base_branch" yaml:"base_branch"`
	URL                 string `json:"url" yaml:"url"`
	DeleteBranchOnMerge bool   `json:"delete_branch_on_merge" yaml:"delete_branch_on_merge"`
}

// PullRequestCheck is one CI signal attached to a commit.
type PullRequestCheck struct {
	Name  string      `json:"name" yaml:"name"`
	State CommitState `json:"state" yaml:"state"`
	URL   string      `json:"url" yaml:"url"`
}

// PullRequestReview is one reviewer's collapsed state.
type PullRequestReview struct {
	Login string      `json:"login" yaml:"login"`
	State ReviewState `json:"state" yaml:"state"`
}

// PullRequestStatus is a point-in-time snapshot of a pull request's checks
// and reviews. Checks keep source order; reviews are sorted by login and hold
// at most one entry per login.
type PullRequestStatus struct {
	CommitSHA string              `json:"commit_sha" yaml:"commit_sha"`
	Checks    []PullRequestCheck  `json:"checks" yaml:"checks"`
	Reviews   []PullRequestReview `json:"reviews" yaml:"reviews"`
}

// ChecksSettled reports whether at least one check exists and none is pending.
func (s *PullRequestStatus) ChecksSettled() bool {
	if s == nil || len(s.Checks) == 0 {
		return false
	}
	for _, c := range s.Checks {
		if c.State == CommitStatePending {
			return false
		}
	}
	return true
}

// User is a repository collaborator.
type User struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Repository is the static repository metadata cached per remote URL.
type Repository struct {
	ID                  string `json:"id"`
	DeleteBranchOnMerge bool   `json:"delete_branch_on_merge"`
}
