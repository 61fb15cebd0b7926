// Package testutil provides an in-memory content-addressed fake of the
// remote backend, faithful to its concurrency semantics: idempotent blob
// creation, base-tree inheritance and compare-and-swap ref updates.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quillhq/quill/pkg/gitobj"
)

type FakeStore struct {
	mu        sync.Mutex
	blobs     map[gitobj.BlobID]string
	trees     map[gitobj.TreeID]map[string]gitobj.TreeEntry
	commits   map[gitobj.CommitID]*gitobj.Commit
	branches  map[string]gitobj.CommitID
	pulls     map[int]*gitobj.PullRequest
	nextPull  int
	defBranch string
}

// NewFakeStore returns a store with an empty root commit on defaultBranch.
func NewFakeStore(defaultBranch string) *FakeStore {
	s := &FakeStore{
		blobs:     make(map[gitobj.BlobID]string),
		trees:     make(map[gitobj.TreeID]map[string]gitobj.TreeEntry),
		commits:   make(map[gitobj.CommitID]*gitobj.Commit),
		branches:  make(map[string]gitobj.CommitID),
		pulls:     make(map[int]*gitobj.PullRequest),
		nextPull:  1,
		defBranch: defaultBranch,
	}
	rootTree := s.putTree(map[string]gitobj.TreeEntry{})
	rootCommit := s.putCommit("initial commit", rootTree, "")
	s.branches[defaultBranch] = rootCommit
	return s
}

func contentAddress(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *FakeStore) putTree(entries map[string]gitobj.TreeEntry) gitobj.TreeID {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	parts := []string{"tree"}
	for _, p := range paths {
		parts = append(parts, p, entries[p].SHA)
	}
	id := gitobj.TreeID(contentAddress(parts...))
	s.trees[id] = entries
	return id
}

func (s *FakeStore) putCommit(message string, tree gitobj.TreeID, parent gitobj.CommitID) gitobj.CommitID {
	id := gitobj.CommitID(contentAddress("commit", message, string(tree), string(parent)))
	commit := &gitobj.Commit{
		SHA:     id,
		TreeID:  tree,
		Message: message,
	}
	if parent != "" {
		commit.Parents = []gitobj.CommitID{parent}
	}
	s.commits[id] = commit
	return id
}

func (s *FakeStore) GetBranchHead(_ context.Context, _ gitobj.RepositoryRef, branch string) (gitobj.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.branches[branch]
	if !ok {
		return "", gitobj.ErrBranchNotFound
	}
	return head, nil
}

func (s *FakeStore) GetCommit(_ context.Context, _ gitobj.RepositoryRef, id gitobj.CommitID) (*gitobj.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	commit, ok := s.commits[id]
	if !ok {
		return nil, gitobj.ErrCommitNotFound
	}
	cp := *commit
	return &cp, nil
}

func (s *FakeStore) GetTree(_ context.Context, _ gitobj.RepositoryRef, id gitobj.TreeID, recursive bool) (*gitobj.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.trees[id]
	if !ok {
		return nil, gitobj.ErrTreeNotFound
	}
	tree := &gitobj.Tree{SHA: id}
	if recursive {
		for _, e := range entries {
			tree.Entries = append(tree.Entries, e)
		}
	} else {
		// collapse nested paths into one subtree entry per top-level directory
		seen := make(map[string]bool)
		for p, e := range entries {
			top, _, nested := strings.Cut(p, "/")
			if !nested {
				tree.Entries = append(tree.Entries, e)
				continue
			}
			if !seen[top] {
				seen[top] = true
				tree.Entries = append(tree.Entries, gitobj.TreeEntry{
					Path: top,
					Mode: gitobj.ModeSubtree,
					Type: gitobj.TypeTree,
					SHA:  contentAddress("subtree", top, string(id)),
				})
			}
		}
	}
	sort.Slice(tree.Entries, func(i, j int) bool { return tree.Entries[i].Path < tree.Entries[j].Path })
	return tree, nil
}

func (s *FakeStore) CreateBlob(_ context.Context, _ gitobj.RepositoryRef, content string) (gitobj.BlobID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := gitobj.BlobID(contentAddress("blob", content))
	s.blobs[id] = content
	return id, nil
}

func (s *FakeStore) GetBlob(_ context.Context, _ gitobj.RepositoryRef, id gitobj.BlobID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.blobs[id]
	if !ok {
		return "", gitobj.ErrNotFound
	}
	return content, nil
}

func (s *FakeStore) CreateTree(_ context.Context, _ gitobj.RepositoryRef, entries []gitobj.TreeEntry, baseTree gitobj.TreeID) (gitobj.TreeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]gitobj.TreeEntry)
	if baseTree != "" {
		base, ok := s.trees[baseTree]
		if !ok {
			return "", gitobj.ErrTreeNotFound
		}
		for p, e := range base {
			merged[p] = e
		}
	}
	for _, e := range entries {
		if e.Type != gitobj.TypeBlob {
			continue
		}
		if _, ok := s.blobs[gitobj.BlobID(e.SHA)]; !ok {
			return "", &gitobj.RemoteError{StatusCode: 422, Body: fmt.Sprintf("tree entry %s references unknown blob %s", e.Path, e.SHA)}
		}
		merged[e.Path] = e
	}
	return s.putTree(merged), nil
}

func (s *FakeStore) CreateCommit(_ context.Context, _ gitobj.RepositoryRef, message string, tree gitobj.TreeID, parent gitobj.CommitID) (gitobj.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[tree]; !ok {
		return "", gitobj.ErrTreeNotFound
	}
	return s.putCommit(message, tree, parent), nil
}

// UpdateRef enforces the remote's fast-forward check: a non-force update
// fails unless the new commit's parent is the branch's current head.
func (s *FakeStore) UpdateRef(_ context.Context, _ gitobj.RepositoryRef, branch string, commit gitobj.CommitID, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.branches[branch]
	if !ok {
		return gitobj.ErrBranchNotFound
	}
	c, ok := s.commits[commit]
	if !ok {
		return gitobj.ErrCommitNotFound
	}
	if !force {
		if len(c.Parents) != 1 || c.Parents[0] != head {
			return fmt.Errorf("update ref %s: %w", branch, gitobj.ErrConflict)
		}
	}
	s.branches[branch] = commit
	return nil
}

func (s *FakeStore) CreateBranch(_ context.Context, _ gitobj.RepositoryRef, name, from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.branches[from]
	if !ok {
		return gitobj.ErrBranchNotFound
	}
	if _, exists := s.branches[name]; exists {
		return &gitobj.RemoteError{StatusCode: 422, Body: "Reference already exists"}
	}
	s.branches[name] = head
	return nil
}

func (s *FakeStore) GetFile(_ context.Context, _ gitobj.RepositoryRef, path, ref string) (*gitobj.FileContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookupLocked(path, ref)
	if !ok {
		return &gitobj.FileContent{Exists: false, Path: path}, nil
	}
	return &gitobj.FileContent{
		Exists:  true,
		Path:    path,
		SHA:     gitobj.BlobID(entry.SHA),
		Content: s.blobs[gitobj.BlobID(entry.SHA)],
	}, nil
}

// PutFile writes one file in one commit, requiring priorSHA to match the
// existing blob when the path already exists.
func (s *FakeStore) PutFile(_ context.Context, _ gitobj.RepositoryRef, path, branch, message, content string, priorSHA gitobj.BlobID) (gitobj.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.branches[branch]
	if !ok {
		return "", gitobj.ErrBranchNotFound
	}
	if existing, exists := s.lookupLocked(path, branch); exists {
		if string(priorSHA) != existing.SHA {
			return "", fmt.Errorf("put %s: %w", path, gitobj.ErrConflict)
		}
	} else if priorSHA != "" {
		return "", &gitobj.RemoteError{StatusCode: 422, Body: "sha provided for a new file"}
	}

	blobID := gitobj.BlobID(contentAddress("blob", content))
	s.blobs[blobID] = content

	baseTree := s.commits[head].TreeID
	merged := make(map[string]gitobj.TreeEntry, len(s.trees[baseTree])+1)
	for p, e := range s.trees[baseTree] {
		merged[p] = e
	}
	merged[path] = gitobj.TreeEntry{Path: path, Mode: gitobj.ModeFile, Type: gitobj.TypeBlob, SHA: string(blobID)}

	commitID := s.putCommit(message, s.putTree(merged), head)
	s.branches[branch] = commitID
	return commitID, nil
}

func (s *FakeStore) CreatePullRequest(_ context.Context, repo gitobj.RepositoryRef, spec gitobj.PullRequestSpec) (*gitobj.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.branches[spec.Head]
	if !ok {
		return nil, gitobj.ErrBranchNotFound
	}
	if _, ok := s.branches[spec.Base]; !ok {
		return nil, gitobj.ErrBranchNotFound
	}
	pr := &gitobj.PullRequest{
		Number:     s.nextPull,
		State:      "open",
		Title:      spec.Title,
		Body:       spec.Body,
		HTMLURL:    fmt.Sprintf("https://example.com/%s/pull/%d", repo.String(), s.nextPull),
		HeadBranch: spec.Head,
		HeadSHA:    head,
		BaseBranch: spec.Base,
	}
	s.pulls[pr.Number] = pr
	s.nextPull++
	cp := *pr
	return &cp, nil
}

func (s *FakeStore) GetPullRequest(_ context.Context, _ gitobj.RepositoryRef, number int) (*gitobj.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.pulls[number]
	if !ok {
		return nil, gitobj.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

// SearchCode matches files on the default branch whose content contains every
// whitespace-separated query term.
func (s *FakeStore) SearchCode(_ context.Context, repo gitobj.RepositoryRef, query string) ([]gitobj.CodeMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	terms := strings.Fields(query)
	head := s.branches[s.defBranch]
	entries := s.trees[s.commits[head].TreeID]

	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var matches []gitobj.CodeMatch
	for _, p := range paths {
		content := s.blobs[gitobj.BlobID(entries[p].SHA)]
		matched := true
		for _, term := range terms {
			if !strings.Contains(content, term) {
				matched = false
				break
			}
		}
		if matched {
			matches = append(matches, gitobj.CodeMatch{
				Path:    p,
				SHA:     gitobj.BlobID(entries[p].SHA),
				HTMLURL: fmt.Sprintf("https://example.com/%s/blob/%s", repo.String(), p),
			})
		}
	}
	return matches, nil
}

// lookupLocked resolves ref (branch name or commit ID) and returns the tree
// entry at path. Callers must hold s.mu.
func (s *FakeStore) lookupLocked(path, ref string) (gitobj.TreeEntry, bool) {
	commitID, ok := s.branches[ref]
	if !ok {
		commitID = gitobj.CommitID(ref)
	}
	commit, ok := s.commits[commitID]
	if !ok {
		return gitobj.TreeEntry{}, false
	}
	entry, ok := s.trees[commit.TreeID][path]
	return entry, ok
}

// test inspection helpers

// BlobCount reports how many distinct blob objects exist; identical content
// never adds a second object.
func (s *FakeStore) BlobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// PullCount reports how many pull requests were ever opened.
func (s *FakeStore) PullCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pulls)
}

// FileAt returns the content of path on branch, with an existence flag.
func (s *FakeStore) FileAt(branch, path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookupLocked(path, branch)
	if !ok {
		return "", false
	}
	return s.blobs[gitobj.BlobID(entry.SHA)], true
}

// PathsAt lists all file paths on branch, sorted.
func (s *FakeStore) PathsAt(branch string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	head, ok := s.branches[branch]
	if !ok {
		return nil
	}
	entries := s.trees[s.commits[head].TreeID]
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsAncestor reports whether ancestor is reachable from descendant by
// following parent links.
func (s *FakeStore) IsAncestor(ancestor, descendant gitobj.CommitID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := descendant; id != ""; {
		if id == ancestor {
			return true
		}
		commit, ok := s.commits[id]
		if !ok || len(commit.Parents) == 0 {
			return false
		}
		id = commit.Parents[0]
	}
	return false
}
