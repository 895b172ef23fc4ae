package github

// GraphQL documents sent to the host. Their field shapes are the host's
// schema and must not be reformatted.
const (
	queryGetRepository = `query ($owner: String!, $repositoryName: String!) {
  repository(owner: $owner, name: $repositoryName) {
    deleteBranchOnMerge,
    id,
  }
}
`

	queryGetRepositoryCollaborators = `query getRepositoryId(
  $owner: String!, $repositoryName: String!, $paginationCursor: String
) {
  repository(owner: $owner, name: $repositoryName) {
    collaborators(first: 100, after: $paginationCursor) {
      nodes {
        id,
        login,
        name,
      }
      pageInfo {
        hasNextPage,
        endCursor,
      }
      totalCount,
    }
  }
}
`

	queryGetPullRequest = `query getPullRequest(
  $owner: String!, $repositoryName: String!, $headRefName: String!
) {
  repository(owner: $owner, name: $repositoryName) {
    pullRequests(headRefName: $headRefName, states: OPEN, first: 1) {
      nodes {
        baseRefName,
        id,
        number,
        permalink,
      }
      pageInfo {
        hasNextPage,
        endCursor,
      }
      totalCount,
    }
  }
}
`

	queryGetPullRequestStatus = `query getPullRequestStatus(
   $pullRequestId: ID!,
) {
  node(id: $pullRequestId ) {
    ... on PullRequest {
      commits(last: 1) {
        nodes {
          commit {
            oid,
            checkSuites(last: 1) {
              nodes {
                checkRuns(last: 50) {
                  nodes {
                    conclusion,
                    name,
                    permalink,
                    status,
                  }
                }
              }
            },
            status {
              state
              contexts {
                context,
                state,
                targetUrl,
              }
            },
          }
        }
      },
      reviewRequests(first: 20) {
        nodes {
          requestedReviewer {
            ... on User {
              login,
            }
          }
        }
      },
      reviews(first: 20) {
        nodes {
          author {
            login,
          },
          state,
        }
      }
    }
  }
}
`

	mutationCreatePullRequest = `mutation (
  $repositoryId: ID!,
  $headRefName: String!,
  $baseRefName: String!,
  $title: String!,
  $body: String!,
  $draft: Boolean!,
) {
  createPullRequest(input: {
    repositoryId: $repositoryId,
    headRefName: $headRefName,
    baseRefName: $baseRefName,
    title: $title,
    body: $body,
    draft: $draft,
  }) {
    pullRequest {
      id,
      number,
      permalink,
    }
  }
}
`

	mutationMarkPullRequestAsReady = `mutation ($pullRequestId: ID!) {
  markPullRequestReadyForReview(input: {pullRequestId: $pullRequestId})
  {
    clientMutationId,
  }
}
`

	mutationRequestReviews = `mutation (
  $pullRequestId: String!,
  $userIds: [ID!],
) {
  requestReviews(input: {
    pullRequestId: $pullRequestId,
    union: true,
    userIds: $userIds,
  })
  {
    clientMutationId,
  }
}
`
)
