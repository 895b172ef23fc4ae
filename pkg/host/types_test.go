package host

import "testing"

func TestPullRequestStatus_ChecksSettled(t *testing.T) {
	tests := []struct {
		name   string
		status *PullRequestStatus
		want   bool
	}{
		{"nil status", nil, false},
		{"no checks yet", &PullRequestStatus{}, false},
		{"one pending", &PullRequestStatus{Checks: []PullRequestCheck{{Name: "ci", State: CommitStatePending}}}, false},
		{"mixed pending", &PullRequestStatus{Checks: []PullRequestCheck{
			{Name: "lint", State: CommitStateSuccess},
			{Name: "test", State: CommitStatePending},
		}}, false},
		{"all done", &PullRequestStatus{Checks: []PullRequestCheck{
			{Name: "lint", State: CommitStateSuccess},
			{Name: "test", State: CommitStateFailure},
			{Name: "legacy", State: CommitStateUnknown},
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.ChecksSettled(); got != tt.want {
				t.Errorf("ChecksSettled() = %v, want %v", got, tt.want)
			}
		})
	}
}
