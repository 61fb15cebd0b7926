package gitobj_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/stretchr/testify/require"
)

var testRepo = gitobj.RepositoryRef{Owner: "acme", Name: "docs"}

func newTestClient(t *testing.T, handler http.Handler) *gitobj.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gitobj.NewClient("test-token", gitobj.WithBaseURL(srv.URL))
}

func TestGetBranchHead(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/repos/acme/docs/git/ref/heads/main":
			_, _ = w.Write([]byte(`{"ref":"refs/heads/main","object":{"sha":"abc123","type":"commit"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	head, err := client.GetBranchHead(context.Background(), testRepo, "main")
	require.NoError(t, err)
	require.Equal(t, gitobj.CommitID("abc123"), head)

	_, err = client.GetBranchHead(context.Background(), testRepo, "no-such-branch")
	require.ErrorIs(t, err, gitobj.ErrNotFound)
}

func TestGetCommit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme/docs/git/commits/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"sha":"abc123","tree":{"sha":"tree1"},"parents":[{"sha":"parent1"}],"message":"hi"}`))
	}))

	commit, err := client.GetCommit(context.Background(), testRepo, "abc123")
	require.NoError(t, err)
	require.Equal(t, gitobj.TreeID("tree1"), commit.TreeID)
	require.Equal(t, []gitobj.CommitID{"parent1"}, commit.Parents)
}

func TestGetTreeRecursive(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("recursive"))
		_, _ = w.Write([]byte(`{"sha":"tree1","tree":[{"path":"a.md","mode":"100644","type":"blob","sha":"blob1"}]}`))
	}))

	tree, err := client.GetTree(context.Background(), testRepo, "tree1", true)
	require.NoError(t, err)
	require.Len(t, tree.Entries, 1)
	require.Equal(t, "a.md", tree.Entries[0].Path)
}

func TestCreateBlob(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req struct {
			Content  string `json:"content"`
			Encoding string `json:"encoding"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "# Foo", req.Content)
		require.Equal(t, "utf-8", req.Encoding)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sha":"blob1"}`))
	}))

	id, err := client.CreateBlob(context.Background(), testRepo, "# Foo")
	require.NoError(t, err)
	require.Equal(t, gitobj.BlobID("blob1"), id)
}

func TestCreateTreeWithBase(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BaseTree string             `json:"base_tree"`
			Tree     []gitobj.TreeEntry `json:"tree"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "base1", req.BaseTree)
		require.Len(t, req.Tree, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sha":"tree2"}`))
	}))

	entries := []gitobj.TreeEntry{{Path: "a.md", Mode: gitobj.ModeFile, Type: gitobj.TypeBlob, SHA: "blob1"}}
	id, err := client.CreateTree(context.Background(), testRepo, entries, "base1")
	require.NoError(t, err)
	require.Equal(t, gitobj.TreeID("tree2"), id)
}

func TestUpdateRefConflict(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Update is not a fast forward"}`))
	}))

	err := client.UpdateRef(context.Background(), testRepo, "main", "abc123", false)
	require.ErrorIs(t, err, gitobj.ErrConflict)
}

func TestGetFileMissingIsNotAnError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	file, err := client.GetFile(context.Background(), testRepo, "docs/missing.md", "main")
	require.NoError(t, err)
	require.False(t, file.Exists)
}

func TestGetFileDecodesBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("# Foo"))
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "main", r.URL.Query().Get("ref"))
		_, _ = w.Write([]byte(`{"path":"docs/specs/foo.md","sha":"blob1","content":"` + encoded + `","encoding":"base64"}`))
	}))

	file, err := client.GetFile(context.Background(), testRepo, "docs/specs/foo.md", "main")
	require.NoError(t, err)
	require.True(t, file.Exists)
	require.Equal(t, "# Foo", file.Content)
	require.Equal(t, gitobj.BlobID("blob1"), file.SHA)
}

func TestPutFileSendsPriorSHA(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var req struct {
			Message string `json:"message"`
			Content string `json:"content"`
			Branch  string `json:"branch"`
			SHA     string `json:"sha"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "prior1", req.SHA)
		decoded, err := base64.StdEncoding.DecodeString(req.Content)
		require.NoError(t, err)
		require.Equal(t, "updated", string(decoded))
		_, _ = w.Write([]byte(`{"commit":{"sha":"commit2"}}`))
	}))

	commit, err := client.PutFile(context.Background(), testRepo, "docs/a.md", "main", "update a", "updated", "prior1")
	require.NoError(t, err)
	require.Equal(t, gitobj.CommitID("commit2"), commit)
}

func TestCreatePullRequest(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme/docs/pulls", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":7,"state":"open","title":"Add spec","html_url":"https://example.com/pull/7","head":{"ref":"quill/add-spec","sha":"abc123"},"base":{"ref":"main"}}`))
	}))

	pr, err := client.CreatePullRequest(context.Background(), testRepo, gitobj.PullRequestSpec{
		Title: "Add spec",
		Head:  "quill/add-spec",
		Base:  "main",
	})
	require.NoError(t, err)
	require.Equal(t, 7, pr.Number)
	require.Equal(t, "quill/add-spec", pr.HeadBranch)
}

func TestSearchCodeScopesQueryToRepo(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "retry policy repo:acme/docs", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"total_count":1,"items":[{"path":"docs/adr/0004.md","sha":"blob1","html_url":"https://example.com/blob1"}]}`))
	}))

	matches, err := client.SearchCode(context.Background(), testRepo, "retry policy")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "docs/adr/0004.md", matches[0].Path)
}

func TestRemoteFaultSurfacesStatusAndBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	}))

	_, err := client.CreateBlob(context.Background(), testRepo, "content")
	var remoteErr *gitobj.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, http.StatusForbidden, remoteErr.StatusCode)
	require.Contains(t, remoteErr.Body, "rate limit")
}
