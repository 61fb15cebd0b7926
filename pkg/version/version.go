// Package version reports the build's own version and can check it against
// the newest published release.
package version

import (
	"regexp"

	"github.com/tcnksm/go-latest"
)

const (
	DefaultReleasesURL = "https://github.com/quillhq/quill/releases"

	githubRepoOwner = "quillhq"
	githubRepoName  = "quill"
)

// Version is stamped at build time via
// -ldflags "-X github.com/quillhq/quill/pkg/version.Version=...".
// It stays "dev" for builds made without it.
var Version = "dev"

// releasePattern accepts release tags only: an optional leading v and three
// dot-separated numbers, e.g. v0.1.2.
var releasePattern = regexp.MustCompile(`^v?(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)$`)

// releasesSource lists published release tags, fetching at most once per
// instance.
type releasesSource struct {
	tag  *latest.GithubTag
	resp *latest.FetchResponse
	err  error
}

func NewReleasesSource() latest.Source {
	return &releasesSource{
		tag: &latest.GithubTag{
			Owner:         githubRepoOwner,
			Repository:    githubRepoName,
			TagFilterFunc: releasePattern.MatchString,
		},
	}
}

func (r *releasesSource) Validate() error {
	return r.tag.Validate()
}

func (r *releasesSource) Fetch() (*latest.FetchResponse, error) {
	if r.resp == nil && r.err == nil {
		r.resp, r.err = r.tag.Fetch()
	}
	return r.resp, r.err
}

// CheckLatestVersion compares targetVersion against the newest published
// release. Unreleased builds compare as 0.1.0 so the check still answers.
func CheckLatestVersion(s latest.Source, targetVersion string) (*latest.CheckResponse, error) {
	if !releasePattern.MatchString(targetVersion) {
		targetVersion = "0.1.0"
	}
	return latest.Check(s, targetVersion)
}
