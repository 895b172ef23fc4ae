package github

import (
	"slices"
	"strings"

	"thoreinstein.com/tug/pkg/host"
)

// RawPullRequestStatus is the "node" fragment returned by the pull request
// status query.
type RawPullRequestStatus struct {
	Commits        RawCommitConnection        `json:"commits"`
	ReviewRequests RawReviewRequestConnection `json:"reviewRequests"`
	Reviews        RawReviewConnection        `json:"reviews"`
}

type RawCommitConnection struct {
	Nodes []struct {
		Commit RawCommit `json:"commit"`
	} `json:"nodes"`
}

// RawCommit carries both CI sources. Either may be null depending on how the
// repository's CI reports.
type RawCommit struct {
	OID         string               `json:"oid"`
	CheckSuites *RawCheckSuites      `json:"checkSuites"`
	Status      *RawCommitStatusList `json:"status"`
}

type RawCheckSuites struct {
	Nodes []struct {
		CheckRuns struct {
			Nodes []RawCheckRun `json:"nodes"`
		} `json:"checkRuns"`
	} `json:"nodes"`
}

type RawCheckRun struct {
	Conclusion string `json:"conclusion"`
	Name       string `json:"name"`
	Permalink  string `json:"permalink"`
	Status     string `json:"status"`
}

type RawCommitStatusList struct {
	State    string                `json:"state"`
	Contexts []RawCommitStatusItem `json:"contexts"`
}

type RawCommitStatusItem struct {
	Context   string `json:"context"`
	State     string `json:"state"`
	TargetURL string `json:"targetUrl"`
}

type RawReviewRequestConnection struct {
	Nodes []struct {
		// Team reviewers come back as an empty object.
		RequestedReviewer *RawActor `json:"requestedReviewer"`
	} `json:"nodes"`
}

type RawReviewConnection struct {
	Nodes []struct {
		// Author is null for deleted accounts.
		Author *RawActor `json:"author"`
		State  string    `json:"state"`
	} `json:"nodes"`
}

type RawActor struct {
	Login string `json:"login"`
}

// ReconcileStatus merges the raw status fragments into one snapshot.
//
// Checks are the legacy commit statuses followed by the check runs, each in
// source order. Reviews start with one PENDING entry per review request,
// then one entry per submitted review; each login is collapsed to REJECTED,
// APPROVED or PENDING, in that precedence, and sorted by login.
//
// The pull request author's review of their own pull request is kept.
func ReconcileStatus(raw RawPullRequestStatus) host.PullRequestStatus {
	status := host.PullRequestStatus{
		Checks:  []host.PullRequestCheck{},
		Reviews: []host.PullRequestReview{},
	}

	if n := len(raw.Commits.Nodes); n > 0 {
		commit := raw.Commits.Nodes[n-1].Commit
		status.CommitSHA = commit.OID

		if commit.Status != nil {
			for _, c := range commit.Status.Contexts {
				status.Checks = append(status.Checks, host.PullRequestCheck{
					Name:  c.Context,
					State: commitStatusToCommitState(c.State),
					URL:   c.TargetURL,
				})
			}
		}
		if commit.CheckSuites != nil {
			for _, suite := range commit.CheckSuites.Nodes {
				for _, run := range suite.CheckRuns.Nodes {
					status.Checks = append(status.Checks, host.PullRequestCheck{
						Name:  run.Name,
						State: checkRunToCommitState(run.Status, run.Conclusion),
						URL:   run.Permalink,
					})
				}
			}
		}
	}

	observed := make(map[string][]host.ReviewState)
	for _, req := range raw.ReviewRequests.Nodes {
		if req.RequestedReviewer == nil || req.RequestedReviewer.Login == "" {
			continue
		}
		login := req.RequestedReviewer.Login
		observed[login] = append(observed[login], host.ReviewStatePending)
	}
	for _, review := range raw.Reviews.Nodes {
		if review.Author == nil || review.Author.Login == "" {
			continue
		}
		login := review.Author.Login
		observed[login] = append(observed[login], reviewStateToReviewState(review.State))
	}

	for login, states := range observed {
		status.Reviews = append(status.Reviews, host.PullRequestReview{
			Login: login,
			State: collapseReviewStates(states),
		})
	}
	slices.SortFunc(status.Reviews, func(a, b host.PullRequestReview) int {
		return strings.Compare(a.Login, b.Login)
	})

	return status
}

func collapseReviewStates(states []host.ReviewState) host.ReviewState {
	switch {
	case slices.Contains(states, host.ReviewStateRejected):
		return host.ReviewStateRejected
	case slices.Contains(states, host.ReviewStateApproved):
		return host.ReviewStateApproved
	default:
		return host.ReviewStatePending
	}
}

// commitStatusToCommitState maps a StatusState.
func commitStatusToCommitState(state string) host.CommitState {
	switch state {
	case "ERROR":
		return host.CommitStateError
	case "EXPECTED":
		return host.CommitStateUnknown
	case "FAILURE":
		return host.CommitStateFailure
	case "PENDING":
		return host.CommitStatePending
	case "SUCCESS":
		return host.CommitStateSuccess
	default:
		return host.CommitStateUnknown
	}
}

// checkRunToCommitState maps a CheckStatusState and CheckConclusionState.
// A run that has not completed has no conclusion yet.
func checkRunToCommitState(status, conclusion string) host.CommitState {
	if status != "COMPLETED" {
		return host.CommitStatePending
	}
	switch conclusion {
	case "ACTION_REQUIRED":
		return host.CommitStateUnknown
	case "CANCELLED":
		return host.CommitStateFailure
	case "FAILURE":
		return host.CommitStateFailure
	case "NEUTRAL":
		return host.CommitStateUnknown
	case "SKIPPED":
		return host.CommitStateSuccess
	case "STALE":
		return host.CommitStateUnknown
	case "STARTUP_FAILURE":
		return host.CommitStateFailure
	case "SUCCESS":
		return host.CommitStateSuccess
	case "TIMED_OUT":
		return host.CommitStateFailure
	default:
		return host.CommitStateUnknown
	}
}

// reviewStateToReviewState maps a PullRequestReviewState.
func reviewStateToReviewState(state string) host.ReviewState {
	switch state {
	case "APPROVED":
		return host.ReviewStateApproved
	case "CHANGES_REQUESTED":
		return host.ReviewStateRejected
	case "COMMENTED":
		return host.ReviewStateCommented
	case "DISMISSED":
		return host.ReviewStateUnknown
	case "PENDING":
		return host.ReviewStatePending
	default:
		return host.ReviewStateUnknown
	}
}
