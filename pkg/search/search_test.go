package search_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quillhq/quill/pkg/cache"
	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/search"
	"github.com/quillhq/quill/pkg/sync"
	"github.com/quillhq/quill/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var testRepo = gitobj.RepositoryRef{Owner: "acme", Name: "docs"}

func seededStore(t *testing.T) *testutil.FakeStore {
	t.Helper()
	store := testutil.NewFakeStore("main")
	s := sync.NewSynchronizer(store, gitobj.NewWebURLs("https://example.com/api/v3"))
	cs := changeset.New("")
	cs.Add("docs/adr/0001.md", "# ADR 1\n\nuse optimistic locking")
	cs.Add("docs/adr/0002.md", "# ADR 2\n\nuse pessimistic locking")
	cs.Add("docs/specs/foo.md", "# Foo\n\nunrelated")
	_, err := s.Sync(context.Background(), testRepo, "main", cs, "seed")
	require.NoError(t, err)
	return store
}

func TestSearchFindsMatches(t *testing.T) {
	searcher := search.NewSearcher(seededStore(t), search.WithCache(cache.NoCache))

	matches, err := searcher.Search(context.Background(), testRepo, "locking")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "docs/adr/0001.md", matches[0].Path)
	require.Empty(t, matches[0].Content, "Search must not fetch bodies")
}

func TestSearchWithBodiesFetchesContent(t *testing.T) {
	searcher := search.NewSearcher(seededStore(t), search.WithCache(cache.NoCache))

	matches, err := searcher.SearchWithBodies(context.Background(), testRepo, "optimistic")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Contains(t, matches[0].Content, "optimistic locking")
}

func TestSearchUsesCache(t *testing.T) {
	store := seededStore(t)
	counting := &countingBackend{Backend: store}
	searcher := search.NewSearcher(counting,
		search.WithCache(cache.NewCache(8, time.Hour, nil)))

	for i := 0; i < 3; i++ {
		_, err := searcher.Search(context.Background(), testRepo, "locking")
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), counting.searches.Load(), "repeated query must be served from cache")
}

func TestSearchWithBodiesPartialFailure(t *testing.T) {
	store := seededStore(t)
	failing := &failingBlobBackend{Backend: store, failSHA: func() gitobj.BlobID {
		matches, err := store.SearchCode(context.Background(), testRepo, "locking")
		require.NoError(t, err)
		return matches[0].SHA
	}()}
	searcher := search.NewSearcher(failing, search.WithCache(cache.NoCache))

	matches, err := searcher.SearchWithBodies(context.Background(), testRepo, "locking")
	require.Error(t, err)
	require.Len(t, matches, 2, "failed fetches must not drop the other hits")

	var withContent int
	for _, m := range matches {
		if m.Content != "" {
			withContent++
		}
	}
	require.Equal(t, 1, withContent)
}

type countingBackend struct {
	search.Backend
	searches atomic.Int64
}

func (c *countingBackend) SearchCode(ctx context.Context, repo gitobj.RepositoryRef, query string) ([]gitobj.CodeMatch, error) {
	c.searches.Add(1)
	return c.Backend.SearchCode(ctx, repo, query)
}

type failingBlobBackend struct {
	search.Backend
	failSHA gitobj.BlobID
}

func (f *failingBlobBackend) GetBlob(ctx context.Context, repo gitobj.RepositoryRef, id gitobj.BlobID) (string, error) {
	if id == f.failSHA {
		return "", errors.New("transient fetch failure")
	}
	return f.Backend.GetBlob(ctx, repo, id)
}
