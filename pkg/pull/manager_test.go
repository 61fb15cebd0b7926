package pull_test

import (
	"context"
	"strings"
	"testing"

	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/pull"
	"github.com/quillhq/quill/pkg/sync"
	"github.com/quillhq/quill/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var testRepo = gitobj.RepositoryRef{Owner: "acme", Name: "docs"}

func newManager(store *testutil.FakeStore) *pull.Manager {
	urls := gitobj.NewWebURLs("https://example.com/api/v3")
	return pull.NewManager(store, sync.NewSynchronizer(store, urls), urls)
}

func specChangeSet(path, content string) *changeset.ChangeSet {
	cs := changeset.New("")
	cs.Add(path, content)
	return cs
}

func TestPublishNewOpensPullRequest(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore("main")
	m := newManager(store)

	result, err := m.Publish(ctx, pull.PublishRequest{
		Repo:       testRepo,
		BaseBranch: "main",
		ChangeSet:  specChangeSet("docs/specs/foo.md", "# Foo"),
	})
	require.NoError(t, err)
	require.Equal(t, pull.StatusSuccess, result.Status)
	require.NotZero(t, result.PRNumber)
	require.NotEmpty(t, result.CommitSHA)
	require.True(t, strings.HasPrefix(result.Branch, "quill/"), "derived branch name: %s", result.Branch)

	content, ok := store.FileAt(result.Branch, "docs/specs/foo.md")
	require.True(t, ok)
	require.Equal(t, "# Foo", content)

	// base branch is untouched
	_, ok = store.FileAt("main", "docs/specs/foo.md")
	require.False(t, ok)
}

func TestPublishNewDerivesTitleFromHeading(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore("main")
	m := newManager(store)

	result, err := m.Publish(ctx, pull.PublishRequest{
		Repo:       testRepo,
		BaseBranch: "main",
		ChangeSet:  specChangeSet("docs/specs/foo.md", "# Retry Policy Spec\n\nbody"),
	})
	require.NoError(t, err)

	pr, err := store.GetPullRequest(ctx, testRepo, result.PRNumber)
	require.NoError(t, err)
	require.Equal(t, "Retry Policy Spec", pr.Title)
	require.Contains(t, result.Branch, "retry-policy-spec")
}

func TestPublishNewAlwaysNewNumber(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore("main")
	m := newManager(store)

	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		result, err := m.Publish(ctx, pull.PublishRequest{
			Repo:       testRepo,
			BaseBranch: "main",
			ChangeSet:  specChangeSet("docs/specs/foo.md", "# Foo"),
		})
		require.NoError(t, err)
		require.False(t, seen[result.PRNumber], "pr number %d reused", result.PRNumber)
		seen[result.PRNumber] = true
	}
}

func TestPublishExistingReusesPullRequest(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore("main")
	m := newManager(store)

	first, err := m.Publish(ctx, pull.PublishRequest{
		Repo:       testRepo,
		BaseBranch: "main",
		ChangeSet:  specChangeSet("docs/specs/foo.md", "# Foo v1"),
	})
	require.NoError(t, err)

	second, err := m.Publish(ctx, pull.PublishRequest{
		Repo:       testRepo,
		BaseBranch: "main",
		ExistingPR: first.PRNumber,
		ChangeSet:  specChangeSet("docs/specs/foo.md", "# Foo v2"),
	})
	require.NoError(t, err)
	require.Equal(t, first.PRNumber, second.PRNumber)
	require.Equal(t, first.Branch, second.Branch, "existing path must reuse the head branch")
	require.Equal(t, 1, store.PullCount(), "no new pull request may be opened")

	content, ok := store.FileAt(first.Branch, "docs/specs/foo.md")
	require.True(t, ok)
	require.Equal(t, "# Foo v2", content)
}

func TestPublishExistingUnknownPR(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore("main")
	m := newManager(store)

	_, err := m.Publish(ctx, pull.PublishRequest{
		Repo:       testRepo,
		BaseBranch: "main",
		ExistingPR: 99,
		ChangeSet:  specChangeSet("docs/specs/foo.md", "# Foo"),
	})
	require.ErrorIs(t, err, gitobj.ErrNotFound)
}

func TestPublishEmptyChangeSet(t *testing.T) {
	ctx := context.Background()
	m := newManager(testutil.NewFakeStore("main"))

	_, err := m.Publish(ctx, pull.PublishRequest{
		Repo:       testRepo,
		BaseBranch: "main",
		ChangeSet:  changeset.New(""),
	})
	require.ErrorIs(t, err, pull.ErrEmptyChangeSet)
}

func TestPutSingleCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeStore("main")
	m := newManager(store)

	created, err := m.PutSingle(ctx, pull.SingleFileRequest{
		Repo:    testRepo,
		Branch:  "main",
		Path:    "docs/changelog/2026-08.md",
		Content: "## August",
	})
	require.NoError(t, err)
	require.Equal(t, pull.StatusSuccess, created.Status)
	require.Equal(t, "docs/changelog/2026-08.md", created.Path)

	updated, err := m.PutSingle(ctx, pull.SingleFileRequest{
		Repo:    testRepo,
		Branch:  "main",
		Path:    "docs/changelog/2026-08.md",
		Content: "## August, revised",
	})
	require.NoError(t, err)
	require.NotEqual(t, created.CommitSHA, updated.CommitSHA)

	content, ok := store.FileAt("main", "docs/changelog/2026-08.md")
	require.True(t, ok)
	require.Equal(t, "## August, revised", content)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Retry Policy Spec", "retry-policy-spec"},
		{"ADR 0007: Use SQLite!", "adr-0007-use-sqlite"},
		{"___", "doc"},
		{strings.Repeat("long title ", 10), "long-title-long-title-long-title-long-ti"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, pull.Slug(tt.in), "Slug(%q)", tt.in)
	}
}
