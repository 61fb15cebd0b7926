package version_test

import (
	"testing"

	goversion "github.com/hashicorp/go-version"
	"github.com/quillhq/quill/pkg/version"
	"github.com/stretchr/testify/require"
	"github.com/tcnksm/go-latest"
)

// fixedSource serves a canned release list.
type fixedSource struct {
	versions []string
}

func (f *fixedSource) Validate() error { return nil }

func (f *fixedSource) Fetch() (*latest.FetchResponse, error) {
	resp := &latest.FetchResponse{}
	for _, v := range f.versions {
		parsed, err := goversion.NewVersion(v)
		if err != nil {
			return nil, err
		}
		resp.Versions = append(resp.Versions, parsed)
	}
	return resp, nil
}

func TestCheckLatestVersionOutdated(t *testing.T) {
	src := &fixedSource{versions: []string{"1.2.0", "1.1.0"}}

	resp, err := version.CheckLatestVersion(src, "1.1.0")
	require.NoError(t, err)
	require.True(t, resp.Outdated)
	require.Equal(t, "1.2.0", resp.Current)
}

func TestCheckLatestVersionUnreleasedBuild(t *testing.T) {
	src := &fixedSource{versions: []string{"1.2.0"}}

	// "dev" is not a release tag; the check still answers by comparing as 0.1.0.
	resp, err := version.CheckLatestVersion(src, "dev")
	require.NoError(t, err)
	require.True(t, resp.Outdated)
}
