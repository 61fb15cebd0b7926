// Package gitobj is a thin client for the git-data REST API of a remote
// content store: blobs, trees, commits, refs, single-file content, pull
// requests and code search. Each method maps 1:1 to a remote capability and
// performs no retries.
package gitobj

import (
	"fmt"
	"time"
)

// function/methods receiving the following basic types could assume they passed validation

// CommitID is a content-addressable hash identifying a commit object
type CommitID string

// TreeID is a content-addressable hash identifying a tree object
type TreeID string

// BlobID is a content-addressable hash identifying a blob object
type BlobID string

// RepositoryRef identifies a remote repository. Immutable for the client's
// lifetime.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// Tree entry modes and object types as the wire protocol spells them.
const (
	ModeFile       = "100644"
	ModeExecutable = "100755"
	ModeSubtree    = "040000"
	ModeGitlink    = "160000"

	TypeBlob = "blob"
	TypeTree = "tree"
	// TypeCommit is a gitlink (submodule) entry pinning a commit of another
	// repository.
	TypeCommit = "commit"
)

// TreeEntry binds one repository-relative POSIX path to an object.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// Tree is a snapshot of path→object bindings.
type Tree struct {
	SHA       TreeID      `json:"sha"`
	Entries   []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// Commit holds the subset of commit metadata the sync sequence needs.
type Commit struct {
	SHA     CommitID
	TreeID  TreeID
	Parents []CommitID
	Message string
	HTMLURL string
}

// FileContent is the result of a single-file content lookup. When the path
// does not exist Exists is false and the remaining fields are zero; absence
// is not an error.
type FileContent struct {
	Exists  bool
	Path    string
	SHA     BlobID
	Content string
}

// PullRequest represents a reviewable change proposal.
type PullRequest struct {
	Number     int
	State      string
	Title      string
	Body       string
	HTMLURL    string
	HeadBranch string
	HeadSHA    CommitID
	BaseBranch string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PullRequestSpec describes a pull request to open.
type PullRequestSpec struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// CodeMatch is a single code search hit. Content is populated only when the
// caller asked for file bodies.
type CodeMatch struct {
	Path    string
	SHA     BlobID
	HTMLURL string
	Content string
}

// wire types

type refResponse struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

type commitResponse struct {
	SHA  string `json:"sha"`
	Tree struct {
		SHA string `json:"sha"`
	} `json:"tree"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
	Message string `json:"message"`
	HTMLURL string `json:"html_url"`
}

func (c *commitResponse) toCommit() *Commit {
	parents := make([]CommitID, len(c.Parents))
	for i, p := range c.Parents {
		parents[i] = CommitID(p.SHA)
	}
	return &Commit{
		SHA:     CommitID(c.SHA),
		TreeID:  TreeID(c.Tree.SHA),
		Parents: parents,
		Message: c.Message,
		HTMLURL: c.HTMLURL,
	}
}

type createBlobRequest struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type createTreeRequest struct {
	Tree     []TreeEntry `json:"tree"`
	BaseTree string      `json:"base_tree,omitempty"`
}

type createCommitRequest struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
}

type createRefRequest struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

type updateRefRequest struct {
	SHA   string `json:"sha"`
	Force bool   `json:"force"`
}

type shaResponse struct {
	SHA string `json:"sha"`
}

type contentsResponse struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type putContentsResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type pullRequestResponse struct {
	Number  int    `json:"number"`
	State   string `json:"state"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Head    struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"`
	} `json:"base"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *pullRequestResponse) toPullRequest() *PullRequest {
	return &PullRequest{
		Number:     p.Number,
		State:      p.State,
		Title:      p.Title,
		Body:       p.Body,
		HTMLURL:    p.HTMLURL,
		HeadBranch: p.Head.Ref,
		HeadSHA:    CommitID(p.Head.SHA),
		BaseBranch: p.Base.Ref,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type createPullRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

type searchCodeResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Path    string `json:"path"`
		SHA     string `json:"sha"`
		HTMLURL string `json:"html_url"`
	} `json:"items"`
}

func refPath(branch string) string {
	return fmt.Sprintf("refs/heads/%s", branch)
}
