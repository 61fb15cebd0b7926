// Package pull decides, per invocation, whether a synchronization lands on a
// fresh branch with a new pull request or advances the head branch of an
// existing one.
package pull

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/logging"
	"github.com/quillhq/quill/pkg/sync"
	"github.com/rs/xid"
)

const branchPrefix = "quill/"

var (
	ErrEmptyChangeSet = errors.New("empty change set")
	ErrNoBranch       = errors.New("no branch or base branch given")
)

// API is the remote surface the lifecycle manager needs beyond the
// synchronizer. *gitobj.Client implements it.
type API interface {
	CreateBranch(ctx context.Context, repo gitobj.RepositoryRef, name, from string) error
	GetFile(ctx context.Context, repo gitobj.RepositoryRef, path, ref string) (*gitobj.FileContent, error)
	PutFile(ctx context.Context, repo gitobj.RepositoryRef, path, branch, message, content string, priorSHA gitobj.BlobID) (gitobj.CommitID, error)
	CreatePullRequest(ctx context.Context, repo gitobj.RepositoryRef, spec gitobj.PullRequestSpec) (*gitobj.PullRequest, error)
	GetPullRequest(ctx context.Context, repo gitobj.RepositoryRef, number int) (*gitobj.PullRequest, error)
}

// PublishRequest carries one document change set plus lifecycle overrides.
// ExistingPR selects the update-existing path; everything else defaults from
// the change set content.
type PublishRequest struct {
	Repo          gitobj.RepositoryRef
	BaseBranch    string
	ChangeSet     *changeset.ChangeSet
	CommitMessage string

	// lifecycle overrides
	ExistingPR int
	BranchName string
	Title      string
	Body       string
}

type Manager struct {
	api    API
	syncer *sync.Synchronizer
	urls   gitobj.WebURLs
	log    logging.Logger
}

func NewManager(api API, syncer *sync.Synchronizer, urls gitobj.WebURLs) *Manager {
	return &Manager{
		api:    api,
		syncer: syncer,
		urls:   urls,
		log:    logging.Default(),
	}
}

// Publish lands the change set behind a pull request. With no ExistingPR a
// new branch and a new pull request are created; with one, the existing pull
// request's head branch is advanced and no new request is opened.
func (m *Manager) Publish(ctx context.Context, req PublishRequest) (*Result, error) {
	if req.ChangeSet == nil || req.ChangeSet.Len() == 0 {
		return nil, ErrEmptyChangeSet
	}
	if err := req.ChangeSet.Validate(); err != nil {
		return nil, err
	}
	if req.ExistingPR > 0 {
		return m.updateExisting(ctx, req)
	}
	return m.publishNew(ctx, req)
}

func (m *Manager) publishNew(ctx context.Context, req PublishRequest) (*Result, error) {
	title := req.Title
	if title == "" {
		title = defaultTitle(req.ChangeSet)
	}
	branch := req.BranchName
	if branch == "" {
		branch = branchPrefix + Slug(title) + "-" + xid.New().String()
	}

	if err := m.api.CreateBranch(ctx, req.Repo, branch, req.BaseBranch); err != nil {
		return nil, fmt.Errorf("create branch %s: %w", branch, err)
	}

	syncResult, err := m.syncer.Sync(ctx, req.Repo, branch, req.ChangeSet, commitMessage(req, title))
	if err != nil {
		return nil, err
	}

	body := req.Body
	if body == "" {
		body = defaultBody(req.ChangeSet)
	}
	pr, err := m.api.CreatePullRequest(ctx, req.Repo, gitobj.PullRequestSpec{
		Title: title,
		Body:  body,
		Head:  branch,
		Base:  req.BaseBranch,
	})
	if err != nil {
		return nil, fmt.Errorf("open pull request: %w", err)
	}

	m.log.WithContext(ctx).WithFields(logging.Fields{
		logging.RepositoryFieldKey:  req.Repo.String(),
		logging.BranchFieldKey:      branch,
		logging.PullRequestFieldKey: pr.Number,
	}).Info("opened pull request")

	return successResult(syncResult, pr.Number, pr.HTMLURL, firstPath(req.ChangeSet)), nil
}

func (m *Manager) updateExisting(ctx context.Context, req PublishRequest) (*Result, error) {
	pr, err := m.api.GetPullRequest(ctx, req.Repo, req.ExistingPR)
	if err != nil {
		return nil, fmt.Errorf("look up pull request #%d: %w", req.ExistingPR, err)
	}

	title := req.Title
	if title == "" {
		title = defaultTitle(req.ChangeSet)
	}
	syncResult, err := m.syncer.Sync(ctx, req.Repo, pr.HeadBranch, req.ChangeSet, commitMessage(req, title))
	if err != nil {
		return nil, err
	}

	m.log.WithContext(ctx).WithFields(logging.Fields{
		logging.RepositoryFieldKey:  req.Repo.String(),
		logging.BranchFieldKey:      pr.HeadBranch,
		logging.PullRequestFieldKey: pr.Number,
	}).Info("updated pull request branch")

	return successResult(syncResult, pr.Number, m.urls.PullRequest(req.Repo, pr.Number), firstPath(req.ChangeSet)), nil
}

// SingleFileRequest writes exactly one file in one commit, without the tree
// path. Correct only when no other path must change atomically with it.
type SingleFileRequest struct {
	Repo          gitobj.RepositoryRef
	Branch        string
	Path          string
	Content       string
	CommitMessage string
}

// PutSingle discovers whether the path exists (and its blob ID, required by
// the backend to permit overwriting) and issues one create-or-update call.
func (m *Manager) PutSingle(ctx context.Context, req SingleFileRequest) (*Result, error) {
	if req.Branch == "" {
		return nil, ErrNoBranch
	}
	cs := changeset.New("")
	cs.Add(req.Path, req.Content)
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	existing, err := m.api.GetFile(ctx, req.Repo, req.Path, req.Branch)
	if err != nil {
		return nil, fmt.Errorf("check existing file %s: %w", req.Path, err)
	}
	var priorSHA gitobj.BlobID
	if existing.Exists {
		priorSHA = existing.SHA
	}

	message := req.CommitMessage
	if message == "" {
		message = "Update " + req.Path
	}
	commitID, err := m.api.PutFile(ctx, req.Repo, req.Path, req.Branch, message, req.Content, priorSHA)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", req.Path, err)
	}

	return &Result{
		Status:    StatusSuccess,
		CommitSHA: string(commitID),
		CommitURL: m.urls.Commit(req.Repo, commitID),
		Branch:    req.Branch,
		Path:      req.Path,
		Message:   message,
	}, nil
}

func commitMessage(req PublishRequest, title string) string {
	if req.CommitMessage != "" {
		return req.CommitMessage
	}
	return title
}

// defaultTitle takes the first markdown heading of the first upsert, falling
// back to its path.
func defaultTitle(cs *changeset.ChangeSet) string {
	first := cs.Upserts()[0]
	for _, line := range strings.Split(first.Content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return "Update " + first.Path
}

func defaultBody(cs *changeset.ChangeSet) string {
	var b strings.Builder
	b.WriteString("Automated document sync.\n\nFiles:\n")
	for _, u := range cs.Upserts() {
		b.WriteString("- `" + u.Path + "`\n")
	}
	return b.String()
}

func firstPath(cs *changeset.ChangeSet) string {
	if cs.Len() == 1 {
		return cs.Upserts()[0].Path
	}
	return ""
}
