// Package sync implements the atomic multi-file synchronization sequence:
// resolve base, write blobs, reconcile tree, commit, advance the ref.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/logging"
	"github.com/quillhq/quill/pkg/reconcile"
)

// ErrTruncatedBaseTree means the backend returned an incomplete recursive
// listing of the base tree. Committing a tree rebuilt from it would silently
// drop every unlisted path, so the sync refuses instead.
var ErrTruncatedBaseTree = errors.New("base tree listing truncated")

// DefaultMaxBlobUploaders bounds concurrent blob creation within one call.
// Blob identity depends only on content, so uploads are order-independent.
const DefaultMaxBlobUploaders = 5

// ObjectStore is the subset of remote capabilities the synchronizer needs.
// *gitobj.Client implements it.
type ObjectStore interface {
	GetBranchHead(ctx context.Context, repo gitobj.RepositoryRef, branch string) (gitobj.CommitID, error)
	GetCommit(ctx context.Context, repo gitobj.RepositoryRef, id gitobj.CommitID) (*gitobj.Commit, error)
	GetTree(ctx context.Context, repo gitobj.RepositoryRef, id gitobj.TreeID, recursive bool) (*gitobj.Tree, error)
	CreateBlob(ctx context.Context, repo gitobj.RepositoryRef, content string) (gitobj.BlobID, error)
	CreateTree(ctx context.Context, repo gitobj.RepositoryRef, entries []gitobj.TreeEntry, baseTree gitobj.TreeID) (gitobj.TreeID, error)
	CreateCommit(ctx context.Context, repo gitobj.RepositoryRef, message string, tree gitobj.TreeID, parent gitobj.CommitID) (gitobj.CommitID, error)
	UpdateRef(ctx context.Context, repo gitobj.RepositoryRef, branch string, commit gitobj.CommitID, force bool) error
}

// Result reports one successful synchronization.
type Result struct {
	CommitID  gitobj.CommitID
	CommitURL string
	Branch    string
	// NoOp is set when the change set was empty and no commit was created;
	// CommitID then holds the unchanged branch head.
	NoOp bool
}

type Synchronizer struct {
	store            ObjectStore
	urls             gitobj.WebURLs
	log              logging.Logger
	maxBlobUploaders int
}

type Option func(*Synchronizer)

func WithLogger(log logging.Logger) Option {
	return func(s *Synchronizer) { s.log = log }
}

func WithMaxBlobUploaders(n int) Option {
	return func(s *Synchronizer) { s.maxBlobUploaders = n }
}

func NewSynchronizer(store ObjectStore, urls gitobj.WebURLs, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:            store,
		urls:             urls,
		log:              logging.Default(),
		maxBlobUploaders: DefaultMaxBlobUploaders,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync applies the change set to the branch as exactly one commit, leaving
// every path outside the change set's scope untouched. On any failure before
// the ref update succeeds, no new commit becomes observable on the branch.
// A moved branch head surfaces as gitobj.ErrConflict; the caller decides
// whether to re-invoke from a fresh head.
func (s *Synchronizer) Sync(ctx context.Context, repo gitobj.RepositoryRef, branch string, cs *changeset.ChangeSet, message string) (*Result, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).WithFields(logging.Fields{
		logging.RepositoryFieldKey: repo.String(),
		logging.BranchFieldKey:     branch,
	})

	head, err := s.store.GetBranchHead(ctx, repo, branch)
	if err != nil {
		return nil, fmt.Errorf("resolve branch head: %w", err)
	}

	if cs.Len() == 0 {
		log.Debug("empty change set, nothing to sync")
		return &Result{
			CommitID:  head,
			CommitURL: s.urls.Commit(repo, head),
			Branch:    branch,
			NoOp:      true,
		}, nil
	}

	headCommit, err := s.store.GetCommit(ctx, repo, head)
	if err != nil {
		return nil, fmt.Errorf("read head commit %s: %w", head, err)
	}

	// A scoped change set replaces a whole subtree, so the reconciler needs
	// the full recursive listing to prune it. Targeted edits instead lean on
	// base-tree inheritance and skip the listing entirely.
	var baseEntries []gitobj.TreeEntry
	var baseTree gitobj.TreeID
	if cs.Scoped() {
		tree, err := s.store.GetTree(ctx, repo, headCommit.TreeID, true)
		if err != nil {
			return nil, fmt.Errorf("read base tree %s: %w", headCommit.TreeID, err)
		}
		if tree.Truncated {
			return nil, fmt.Errorf("read base tree %s: %w", headCommit.TreeID, ErrTruncatedBaseTree)
		}
		baseEntries = leafEntries(tree.Entries)
	} else {
		baseTree = headCommit.TreeID
	}

	updates, err := s.createBlobs(ctx, repo, cs.Upserts())
	if err != nil {
		return nil, err
	}

	entries := reconcile.Reconcile(baseEntries, cs.ScopePrefix, updates)
	treeID, err := s.store.CreateTree(ctx, repo, entries, baseTree)
	if err != nil {
		return nil, fmt.Errorf("create tree: %w", err)
	}

	commitID, err := s.store.CreateCommit(ctx, repo, message, treeID, head)
	if err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}

	if err := s.store.UpdateRef(ctx, repo, branch, commitID, false); err != nil {
		return nil, fmt.Errorf("advance branch %s: %w", branch, err)
	}

	log.WithField("commit_id", commitID).Info("synchronized change set")
	return &Result{
		CommitID:  commitID,
		CommitURL: s.urls.Commit(repo, commitID),
		Branch:    branch,
	}, nil
}

// createBlobs uploads every upsert's content, bounded-concurrently, and
// returns the resolved tree entries in upsert order. Failed uploads leave
// only unreferenced objects behind; the backend tolerates orphans.
func (s *Synchronizer) createBlobs(ctx context.Context, repo gitobj.RepositoryRef, upserts []changeset.Upsert) ([]gitobj.TreeEntry, error) {
	entries := make([]gitobj.TreeEntry, len(upserts))
	sem := make(chan struct{}, s.maxBlobUploaders)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var merr *multierror.Error

	for i, u := range upserts {
		wg.Add(1)
		go func(i int, u changeset.Upsert) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			blobID, err := s.store.CreateBlob(ctx, repo, u.Content)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, fmt.Errorf("create blob for %s: %w", u.Path, err))
				mu.Unlock()
				return
			}
			entries[i] = gitobj.TreeEntry{
				Path: u.Path,
				Mode: gitobj.ModeFile,
				Type: gitobj.TypeBlob,
				SHA:  string(blobID),
			}
		}(i, u)
	}
	wg.Wait()

	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return entries, nil
}

// leafEntries drops only the intermediate tree entries, which the backend
// rebuilds from the leaf paths. Blobs and gitlinks must both be carried, or
// rebuilding the tree would delete them from the branch.
func leafEntries(entries []gitobj.TreeEntry) []gitobj.TreeEntry {
	leaves := make([]gitobj.TreeEntry, 0, len(entries))
	for _, e := range entries {
		if e.Type != gitobj.TypeTree {
			leaves = append(leaves, e)
		}
	}
	return leaves
}
