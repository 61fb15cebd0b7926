// Package search issues keyword queries against the content store and
// optionally fetches matched file bodies. Fetches for one result set run
// concurrently; they share no state and fail independently.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/quillhq/quill/pkg/cache"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/logging"
)

const (
	DefaultMaxFetchers = 5

	DefaultCacheSize   = 128
	DefaultCacheExpiry = 30 * time.Second
	DefaultCacheJitter = 5 * time.Second
)

// Backend is the remote surface the searcher needs. *gitobj.Client
// implements it.
type Backend interface {
	SearchCode(ctx context.Context, repo gitobj.RepositoryRef, query string) ([]gitobj.CodeMatch, error)
	GetBlob(ctx context.Context, repo gitobj.RepositoryRef, id gitobj.BlobID) (string, error)
}

type Searcher struct {
	backend     Backend
	cache       cache.Cache
	log         logging.Logger
	maxFetchers int
}

type Option func(*Searcher)

// WithCache replaces the default time-boxed result cache. Pass
// cache.NoCache to disable caching.
func WithCache(c cache.Cache) Option {
	return func(s *Searcher) { s.cache = c }
}

func WithMaxFetchers(n int) Option {
	return func(s *Searcher) { s.maxFetchers = n }
}

func WithLogger(log logging.Logger) Option {
	return func(s *Searcher) { s.log = log }
}

func NewSearcher(backend Backend, opts ...Option) *Searcher {
	s := &Searcher{
		backend: backend,
		cache: cache.NewCacheByParams(&cache.Params{
			Name:     "search-results",
			Size:     DefaultCacheSize,
			Expiry:   DefaultCacheExpiry,
			JitterFn: cache.NewJitterFn(DefaultCacheJitter),
		}),
		log:         logging.Default(),
		maxFetchers: DefaultMaxFetchers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the paths matching query. Results are served from the
// time-boxed cache when a recent identical query exists.
func (s *Searcher) Search(ctx context.Context, repo gitobj.RepositoryRef, query string) ([]gitobj.CodeMatch, error) {
	key := repo.String() + "\x00" + query
	v, err := s.cache.GetOrSet(key, func() (interface{}, error) {
		return s.backend.SearchCode(ctx, repo, query)
	})
	if err != nil {
		return nil, err
	}
	return v.([]gitobj.CodeMatch), nil
}

// SearchWithBodies runs Search and then fetches every matched file's content
// concurrently. Fetch failures are independent: matches whose fetch failed
// are returned with empty content alongside the aggregated error, so the
// caller still sees every hit.
func (s *Searcher) SearchWithBodies(ctx context.Context, repo gitobj.RepositoryRef, query string) ([]gitobj.CodeMatch, error) {
	matches, err := s.Search(ctx, repo, query)
	if err != nil {
		return nil, err
	}

	fetched := make([]gitobj.CodeMatch, len(matches))
	copy(fetched, matches)

	sem := make(chan struct{}, s.maxFetchers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var merr *multierror.Error

	for i := range fetched {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := s.backend.GetBlob(ctx, repo, fetched[i].SHA)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("fetch %s: %w", fetched[i].Path, err))
				mu.Unlock()
				return
			}
			fetched[i].Content = content
		}(i)
	}
	wg.Wait()

	return fetched, merr.ErrorOrNil()
}
