package gitobj

import (
	"fmt"
	"strings"
)

// WebURLs derives human-facing URLs from an API base URL. The public API host
// maps to the public web host; enterprise installs serve the API under
// "/api/v3" on the web host.
type WebURLs struct {
	base string
}

func NewWebURLs(apiBaseURL string) WebURLs {
	base := strings.TrimSuffix(apiBaseURL, "/")
	switch {
	case base == DefaultBaseURL:
		base = "https://github.com"
	case strings.HasSuffix(base, "/api/v3"):
		base = strings.TrimSuffix(base, "/api/v3")
	}
	return WebURLs{base: base}
}

func (u WebURLs) Commit(repo RepositoryRef, id CommitID) string {
	return fmt.Sprintf("%s/%s/commit/%s", u.base, repo.String(), id)
}

func (u WebURLs) Branch(repo RepositoryRef, branch string) string {
	return fmt.Sprintf("%s/%s/tree/%s", u.base, repo.String(), branch)
}

func (u WebURLs) PullRequest(repo RepositoryRef, number int) string {
	return fmt.Sprintf("%s/%s/pull/%d", u.base, repo.String(), number)
}

// URLs returns a WebURLs derived from the client's API base URL.
func (c *Client) URLs() WebURLs {
	return NewWebURLs(c.baseURL)
}
