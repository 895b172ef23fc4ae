package github

import (
	"context"
	"encoding/json"
	"log/slog"

	"thoreinstein.com/tug/pkg/cache"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/git"
	"thoreinstein.com/tug/pkg/host"
)

// APIClient implements host.Client against the GitHub GraphQL API.
// It is bound to one repository and one branch.
type APIClient struct {
	transport Transport
	remote    *git.Remote
	branch    string
	cache     *cache.Cache
	verbose   bool
	logger    *slog.Logger

	// Populated on first use.
	repository  *host.Repository
	pullRequest *host.PullRequest
}

// Compile-time check that APIClient implements host.Client.
var _ host.Client = (*APIClient)(nil)

// APIClientOption is a functional option for configuring APIClient.
type APIClientOption func(*APIClient)

// WithAPILogger sets a custom logger for the API client.
func WithAPILogger(logger *slog.Logger) APIClientOption {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithCache memoizes repository metadata in c, keyed by remote URL.
func WithCache(c *cache.Cache) APIClientOption {
	return func(a *APIClient) {
		a.cache = c
	}
}

// NewAPIClient creates a client for the repository behind remote, working on
// branch.
func NewAPIClient(transport Transport, remote *git.Remote, branch string, verbose bool, opts ...APIClientOption) (*APIClient, error) {
	if transport == nil {
		return nil, tugerrors.New("transport is required")
	}
	if remote == nil {
		return nil, tugerrors.New("remote is required")
	}

	client := &APIClient{
		transport: transport,
		remote:    remote,
		branch:    branch,
		verbose:   verbose,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// post sends one document. GraphQL errors become a GitHostError carrying the
// first message; otherwise data is decoded into out.
func (c *APIClient) post(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	resp, err := c.transport.Do(ctx, operation, query, variables)
	if err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		c.logDebug("graphql errors", "operation", operation, "count", len(resp.Errors))
		return tugerrors.NewGitHostError(operation, resp.Errors[0].Message)
	}

	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return tugerrors.NewGitHostError(operation, "the host returned no data for "+operation)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return tugerrors.NewTransportErrorWithCause(operation, "failed to decode response", err)
	}
	return nil
}

// GetRepository returns the repository metadata, read through the cache.
func (c *APIClient) GetRepository(ctx context.Context) (*host.Repository, error) {
	if c.repository != nil {
		return c.repository, nil
	}

	fetch := func() (host.Repository, error) {
		return c.fetchRepository(ctx)
	}

	var repo host.Repository
	var err error
	if c.cache != nil {
		repo, err = cache.GetOrSet(c.cache, c.remote.URL, fetch)
	} else {
		repo, err = fetch()
	}
	if err != nil {
		return nil, err
	}

	c.repository = &repo
	return c.repository, nil
}

func (c *APIClient) fetchRepository(ctx context.Context) (host.Repository, error) {
	c.logDebug("fetching repository", "owner", c.remote.Owner, "repo", c.remote.Repo)

	var data struct {
		Repository *struct {
			DeleteBranchOnMerge bool   `json:"deleteBranchOnMerge"`
			ID                  string `json:"id"`
		} `json:"repository"`
	}
	vars := map[string]any{
		"owner":          c.remote.Owner,
		"repositoryName": c.remote.Repo,
	}
	if err := c.post(ctx, "getRepository", queryGetRepository, vars, &data); err != nil {
		return host.Repository{}, err
	}
	if data.Repository == nil {
		return host.Repository{}, tugerrors.NewGitHostErrorf("getRepository", "Could not find repository %s/%s", c.remote.Owner, c.remote.Repo)
	}

	return host.Repository{
		ID:                  data.Repository.ID,
		DeleteBranchOnMerge: data.Repository.DeleteBranchOnMerge,
	}, nil
}

// GetPullRequest implements host.Client. The pull request of the client's
// own branch is fetched once.
func (c *APIClient) GetPullRequest(ctx context.Context, branch string) (*host.PullRequest, error) {
	if branch == "" {
		branch = c.branch
	}
	if branch == c.branch && c.pullRequest != nil {
		return c.pullRequest, nil
	}

	var data struct {
		Repository *struct {
			PullRequests struct {
				Nodes []struct {
					BaseRefName string `json:"baseRefName"`
					ID          string `json:"id"`
					Number      int    `json:"number"`
					Permalink   string `json:"permalink"`
				} `json:"nodes"`
				TotalCount int `json:"totalCount"`
			} `json:"pullRequests"`
		} `json:"repository"`
	}
	vars := map[string]any{
		"owner":          c.remote.Owner,
		"repositoryName": c.remote.Repo,
		"headRefName":    branch,
	}
	if err := c.post(ctx, "getPullRequest", queryGetPullRequest, vars, &data); err != nil {
		return nil, err
	}
	if data.Repository == nil {
		return nil, tugerrors.NewGitHostErrorf("getPullRequest", "Could not find repository %s/%s", c.remote.Owner, c.remote.Repo)
	}

	prs := data.Repository.PullRequests
	switch {
	case prs.TotalCount == 0:
		return nil, nil
	case prs.TotalCount >= 2:
		return nil, tugerrors.NewGitHostErrorf("getPullRequest",
			"Unexpected number of open pull requests for branch '%s': %d", branch, prs.TotalCount)
	case len(prs.Nodes) == 0:
		return nil, tugerrors.NewGitHostErrorf("getPullRequest", "The host reported a pull request for branch '%s' but returned none", branch)
	}

	repo, err := c.GetRepository(ctx)
	if err != nil {
		return nil, err
	}

	node := prs.Nodes[0]
	pr := &host.PullRequest{
		ID:                  node.ID,
		Number:              node.Number,
		BaseBranch:          node.BaseRefName,
		URL:                 node.Permalink,
		DeleteBranchOnMerge: repo.DeleteBranchOnMerge,
	}
	if branch == c.branch {
		c.pullRequest = pr
	}
	return pr, nil
}

// currentPullRequest returns the pull request of the client's branch.
func (c *APIClient) currentPullRequest(ctx context.Context) (*host.PullRequest, error) {
	if c.pullRequest != nil {
		return c.pullRequest, nil
	}

	pr, err := c.GetPullRequest(ctx, c.branch)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, tugerrors.NewGitHostErrorf("getPullRequest", "There is no open pull request on the current branch %s", c.branch)
	}
	return pr, nil
}

// CreatePullRequest implements host.Client.
func (c *APIClient) CreatePullRequest(ctx context.Context, head, base, title, body string, draft bool) (*host.PullRequest, error) {
	repo, err := c.GetRepository(ctx)
	if err != nil {
		return nil, err
	}

	c.logDebug("creating pull request", "head", head, "base", base, "draft", draft)

	var data struct {
		CreatePullRequest struct {
			PullRequest struct {
				ID        string `json:"id"`
				Number    int    `json:"number"`
				Permalink string `json:"permalink"`
			} `json:"pullRequest"`
		} `json:"createPullRequest"`
	}
	vars := map[string]any{
		"repositoryId": repo.ID,
		"headRefName":  head,
		"baseRefName":  base,
		"body":         body,
		"title":        title,
		"draft":        draft,
	}
	if err := c.post(ctx, "createPullRequest", mutationCreatePullRequest, vars, &data); err != nil {
		return nil, err
	}

	node := data.CreatePullRequest.PullRequest
	pr := &host.PullRequest{
		ID:                  node.ID,
		Number:              node.Number,
		BaseBranch:          base,
		URL:                 node.Permalink,
		DeleteBranchOnMerge: repo.DeleteBranchOnMerge,
	}
	if head == c.branch {
		c.pullRequest = pr
	}
	return pr, nil
}

// GetCollaborators implements host.Client.
func (c *APIClient) GetCollaborators(ctx context.Context) ([]host.User, error) {
	vars := map[string]any{
		"owner":            c.remote.Owner,
		"repositoryName":   c.remote.Repo,
		"paginationCursor": nil,
	}

	var users []host.User
	for page := 1; ; page++ {
		var data struct {
			Repository *struct {
				Collaborators struct {
					Nodes []struct {
						ID    string  `json:"id"`
						Login string  `json:"login"`
						Name  *string `json:"name"`
					} `json:"nodes"`
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
				} `json:"collaborators"`
			} `json:"repository"`
		}
		if err := c.post(ctx, "getCollaborators", queryGetRepositoryCollaborators, vars, &data); err != nil {
			return nil, err
		}
		if data.Repository == nil {
			return nil, tugerrors.NewGitHostErrorf("getCollaborators", "Could not find repository %s/%s", c.remote.Owner, c.remote.Repo)
		}

		collaborators := data.Repository.Collaborators
		for _, node := range collaborators.Nodes {
			user := host.User{ID: node.ID, Login: node.Login}
			if node.Name != nil {
				user.Name = *node.Name
			}
			users = append(users, user)
		}

		c.logDebug("fetched collaborators page", "page", page, "count", len(collaborators.Nodes))

		if !collaborators.PageInfo.HasNextPage {
			break
		}
		vars["paginationCursor"] = collaborators.PageInfo.EndCursor
	}

	return users, nil
}

// RequestReviews implements host.Client.
func (c *APIClient) RequestReviews(ctx context.Context, users []host.User) error {
	pr, err := c.currentPullRequest(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	vars := map[string]any{
		"pullRequestId": pr.ID,
		"userIds":       ids,
	}
	return c.post(ctx, "requestReviews", mutationRequestReviews, vars, nil)
}

// MarkPullRequestAsReady implements host.Client.
func (c *APIClient) MarkPullRequestAsReady(ctx context.Context) error {
	pr, err := c.currentPullRequest(ctx)
	if err != nil {
		return err
	}

	vars := map[string]any{
		"pullRequestId": pr.ID,
	}
	return c.post(ctx, "markPullRequestAsReady", mutationMarkPullRequestAsReady, vars, nil)
}

// GetPullRequestStatus implements host.Client.
func (c *APIClient) GetPullRequestStatus(ctx context.Context) (*host.PullRequestStatus, error) {
	pr, err := c.currentPullRequest(ctx)
	if err != nil {
		return nil, err
	}

	var data struct {
		Node *RawPullRequestStatus `json:"node"`
	}
	vars := map[string]any{
		"pullRequestId": pr.ID,
	}
	if err := c.post(ctx, "getPullRequestStatus", queryGetPullRequestStatus, vars, &data); err != nil {
		return nil, err
	}
	if data.Node == nil {
		return nil, tugerrors.NewGitHostErrorf("getPullRequestStatus", "Pull request #%d could not be found", pr.Number)
	}

	status := ReconcileStatus(*data.Node)
	c.logDebug("fetched status", "sha", status.CommitSHA, "checks", len(status.Checks), "reviews", len(status.Reviews))
	return &status, nil
}

func (c *APIClient) logDebug(msg string, args ...any) {
	if c.verbose {
		c.logger.Debug(msg, args...)
	}
}
