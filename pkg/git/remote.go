package git

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Remote is a parsed remote URL.
type Remote struct {
	URL    string // Remote URL as configured
	Domain string // Host domain, e.g. "github.com"
	Owner  string // Organization or user
	Repo   string // Repository name (without .git)
}

// Remote URL patterns
var (
	// SSH scp-like format: git@github.com:owner/repo.git
	scpURLRegex = regexp.MustCompile(`^[\w.-]+@([\w.-]+):([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)

	// URL format: https://github.com/owner/repo, ssh://git@host:22/owner/repo.git
	schemeURLRegex = regexp.MustCompile(`^(?:https?|ssh|git)://(?:[^@/]+@)?([\w.-]+)(?::\d+)?/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)
)

// ParseRemoteURL parses a remote URL into its domain, owner and repository.
// Supported formats:
//   - SSH: git@github.com:owner/repo.git
//   - HTTPS: https://github.com/owner/repo
//   - SSH URL: ssh://git@github.com/owner/repo.git
func ParseRemoteURL(input string) (*Remote, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty remote URL")
	}

	for _, re := range []*regexp.Regexp{scpURLRegex, schemeURLRegex} {
		if matches := re.FindStringSubmatch(input); len(matches) == 4 {
			return &Remote{
				URL:    input,
				Domain: matches[1],
				Owner:  matches[2],
				Repo:   matches[3],
			}, nil
		}
	}

	return nil, errors.Newf("unsupported remote URL format: %q", input)
}

// ConfigDirName turns the remote URL into a directory name for per-remote
// configuration.
func (r *Remote) ConfigDirName() string {
	return strings.ReplaceAll(r.URL, "/", "_")
}

// String implements fmt.Stringer.
func (r *Remote) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Domain, r.Owner, r.Repo)
}
