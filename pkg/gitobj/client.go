package gitobj

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/quillhq/quill/pkg/httputil"
	"github.com/quillhq/quill/pkg/logging"
)

const (
	// DefaultBaseURL is the public API endpoint. Override for enterprise
	// installs or tests.
	DefaultBaseURL = "https://api.github.com"

	// DefaultMaxIdleConnsPerHost allows highly concurrent access without
	// accumulating sockets in TIME_WAIT that are immediately reopened.
	DefaultMaxIdleConnsPerHost = 100

	acceptHeader = "application/vnd.github+json"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     logging.Logger
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

func WithLogger(log logging.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient returns a client authenticated with the given bearer token. The
// token is read once; rotation requires a new client.
func NewClient(token string, opts ...ClientOption) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http: &http.Client{
			Transport: httputil.NewLoggingRoundTripper(transport),
		},
		log: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and decodes a JSON response into out (when out is not
// nil). A 404 maps to ErrNotFound and a 409 to ErrConflict; any other non-2xx
// status becomes a *RemoteError with the body attached verbatim.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RemoteError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) repoPath(repo RepositoryRef, format string, args ...interface{}) string {
	return fmt.Sprintf("/repos/%s/%s", repo.Owner, repo.Name) + fmt.Sprintf(format, args...)
}

// GetBranchHead resolves a branch name to its head commit ID. Returns
// ErrBranchNotFound when the branch does not exist.
func (c *Client) GetBranchHead(ctx context.Context, repo RepositoryRef, branch string) (CommitID, error) {
	var ref refResponse
	err := c.do(ctx, http.MethodGet, c.repoPath(repo, "/git/ref/heads/%s", url.PathEscape(branch)), nil, &ref)
	if IsNotFound(err) {
		return "", ErrBranchNotFound
	}
	if err != nil {
		return "", err
	}
	return CommitID(ref.Object.SHA), nil
}

func (c *Client) GetCommit(ctx context.Context, repo RepositoryRef, id CommitID) (*Commit, error) {
	var commit commitResponse
	err := c.do(ctx, http.MethodGet, c.repoPath(repo, "/git/commits/%s", id), nil, &commit)
	if IsNotFound(err) {
		return nil, ErrCommitNotFound
	}
	if err != nil {
		return nil, err
	}
	return commit.toCommit(), nil
}

// GetTree fetches a tree object. Recursive mode flattens nested subtrees into
// path-qualified entries and is required whenever a scope prefix that may
// contain subtrees must be pruned.
func (c *Client) GetTree(ctx context.Context, repo RepositoryRef, id TreeID, recursive bool) (*Tree, error) {
	path := c.repoPath(repo, "/git/trees/%s", id)
	if recursive {
		path += "?recursive=1"
	}
	var tree Tree
	err := c.do(ctx, http.MethodGet, path, nil, &tree)
	if IsNotFound(err) {
		return nil, ErrTreeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

// CreateBlob uploads file content. Blob IDs are content-derived: identical
// content yields the same ID and no duplicate remote object.
func (c *Client) CreateBlob(ctx context.Context, repo RepositoryRef, content string) (BlobID, error) {
	req := createBlobRequest{Content: content, Encoding: "utf-8"}
	var resp shaResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath(repo, "/git/blobs"), req, &resp); err != nil {
		return "", err
	}
	return BlobID(resp.SHA), nil
}

// GetBlob fetches blob content by ID, decoding the base64 transfer encoding.
func (c *Client) GetBlob(ctx context.Context, repo RepositoryRef, id BlobID) (string, error) {
	var resp contentsResponse
	if err := c.do(ctx, http.MethodGet, c.repoPath(repo, "/git/blobs/%s", id), nil, &resp); err != nil {
		return "", err
	}
	return decodeContent(resp.Content, resp.Encoding)
}

// CreateTree writes a tree object from the given entries. When baseTree is
// non-empty, entries not listed are inherited unchanged from the base; this
// makes "leave everything else untouched" cheap when no pruning is needed.
func (c *Client) CreateTree(ctx context.Context, repo RepositoryRef, entries []TreeEntry, baseTree TreeID) (TreeID, error) {
	req := createTreeRequest{Tree: entries, BaseTree: string(baseTree)}
	var resp shaResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath(repo, "/git/trees"), req, &resp); err != nil {
		return "", err
	}
	return TreeID(resp.SHA), nil
}

func (c *Client) CreateCommit(ctx context.Context, repo RepositoryRef, message string, tree TreeID, parent CommitID) (CommitID, error) {
	req := createCommitRequest{Message: message, Tree: string(tree)}
	if parent != "" {
		req.Parents = []string{string(parent)}
	}
	var resp shaResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath(repo, "/git/commits"), req, &resp); err != nil {
		return "", err
	}
	return CommitID(resp.SHA), nil
}

// UpdateRef moves a branch to the given commit. A non-force update fails with
// ErrConflict when the branch head moved since it was read; the remote
// enforces the fast-forward check.
func (c *Client) UpdateRef(ctx context.Context, repo RepositoryRef, branch string, commit CommitID, force bool) error {
	req := updateRefRequest{SHA: string(commit), Force: force}
	err := c.do(ctx, http.MethodPatch, c.repoPath(repo, "/git/refs/heads/%s", url.PathEscape(branch)), req, nil)
	var remoteErr *RemoteError
	// the backend reports a rejected non-fast-forward update as 422
	if errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusUnprocessableEntity {
		return fmt.Errorf("update ref %s: %w", branch, ErrConflict)
	}
	return err
}

// CreateBranch creates a new branch whose initial head is the current head of
// the source branch.
func (c *Client) CreateBranch(ctx context.Context, repo RepositoryRef, name, from string) error {
	head, err := c.GetBranchHead(ctx, repo, from)
	if err != nil {
		return fmt.Errorf("resolve source branch %s: %w", from, err)
	}
	req := createRefRequest{Ref: refPath(name), SHA: string(head)}
	return c.do(ctx, http.MethodPost, c.repoPath(repo, "/git/refs"), req, nil)
}

// GetFile reads a single file at the given ref. A missing path is reported as
// FileContent{Exists: false}, not as an error.
func (c *Client) GetFile(ctx context.Context, repo RepositoryRef, path, ref string) (*FileContent, error) {
	reqPath := c.repoPath(repo, "/contents/%s", escapePath(path))
	if ref != "" {
		reqPath += "?ref=" + url.QueryEscape(ref)
	}
	var resp contentsResponse
	err := c.do(ctx, http.MethodGet, reqPath, nil, &resp)
	if IsNotFound(err) {
		return &FileContent{Exists: false, Path: path}, nil
	}
	if err != nil {
		return nil, err
	}
	content, err := decodeContent(resp.Content, resp.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &FileContent{
		Exists:  true,
		Path:    resp.Path,
		SHA:     BlobID(resp.SHA),
		Content: content,
	}, nil
}

// PutFile creates or updates exactly one file in one commit. priorSHA must be
// the file's current blob ID when the path already exists; the backend
// rejects a blind overwrite. Correct only for single-file, single-call
// updates; multi-path atomic writes go through the tree path.
func (c *Client) PutFile(ctx context.Context, repo RepositoryRef, path, branch, message, content string, priorSHA BlobID) (CommitID, error) {
	req := putContentsRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  branch,
		SHA:     string(priorSHA),
	}
	var resp putContentsResponse
	if err := c.do(ctx, http.MethodPut, c.repoPath(repo, "/contents/%s", escapePath(path)), req, &resp); err != nil {
		return "", err
	}
	return CommitID(resp.Commit.SHA), nil
}

func (c *Client) CreatePullRequest(ctx context.Context, repo RepositoryRef, spec PullRequestSpec) (*PullRequest, error) {
	req := createPullRequest{
		Title: spec.Title,
		Body:  spec.Body,
		Head:  spec.Head,
		Base:  spec.Base,
	}
	var resp pullRequestResponse
	if err := c.do(ctx, http.MethodPost, c.repoPath(repo, "/pulls"), req, &resp); err != nil {
		return nil, err
	}
	return resp.toPullRequest(), nil
}

func (c *Client) GetPullRequest(ctx context.Context, repo RepositoryRef, number int) (*PullRequest, error) {
	var resp pullRequestResponse
	if err := c.do(ctx, http.MethodGet, c.repoPath(repo, "/pulls/%d", number), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toPullRequest(), nil
}

// SearchCode runs a keyword query scoped to the repository and returns the
// matched paths. File bodies are not fetched here; see pkg/search.
func (c *Client) SearchCode(ctx context.Context, repo RepositoryRef, query string) ([]CodeMatch, error) {
	q := url.QueryEscape(query + " repo:" + repo.String())
	var resp searchCodeResponse
	if err := c.do(ctx, http.MethodGet, "/search/code?q="+q, nil, &resp); err != nil {
		return nil, err
	}
	matches := make([]CodeMatch, len(resp.Items))
	for i, item := range resp.Items {
		matches[i] = CodeMatch{
			Path:    item.Path,
			SHA:     BlobID(item.SHA),
			HTMLURL: item.HTMLURL,
		}
	}
	return matches, nil
}

func decodeContent(content, encoding string) (string, error) {
	switch encoding {
	case "base64", "":
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	case "utf-8":
		return content, nil
	default:
		return "", fmt.Errorf("%w: content encoding %q", ErrUnsupportedEncoding, encoding)
	}
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
