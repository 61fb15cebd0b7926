package changeset_test

import (
	"testing"

	"github.com/quillhq/quill/pkg/changeset"
	"github.com/stretchr/testify/require"
)

func TestAddLastWriteWins(t *testing.T) {
	cs := changeset.New("")
	cs.Add("docs/a.md", "first")
	cs.Add("docs/b.md", "other")
	cs.Add("docs/a.md", "second")

	require.Equal(t, 2, cs.Len())
	upserts := cs.Upserts()
	require.Equal(t, "docs/a.md", upserts[0].Path)
	require.Equal(t, "second", upserts[0].Content)
	require.Equal(t, "docs/b.md", upserts[1].Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		scopePrefix string
		path        string
		wantErr     error
	}{
		{name: "valid", path: "docs/specs/foo.md"},
		{name: "valid_in_scope", scopePrefix: "synced_prompts/proj", path: "synced_prompts/proj/a.md"},
		{name: "empty_path", path: "", wantErr: changeset.ErrEmptyPath},
		{name: "absolute_path", path: "/etc/passwd", wantErr: changeset.ErrAbsolutePath},
		{name: "traversal", path: "../outside.md", wantErr: changeset.ErrPathTraversal},
		{name: "outside_scope", scopePrefix: "synced_prompts/proj", path: "docs/a.md", wantErr: changeset.ErrPathOutsideScope},
		{name: "bad_scope", scopePrefix: "a//b", path: "a/b/c.md", wantErr: changeset.ErrEmptyScopePrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := changeset.New(tt.scopePrefix)
			cs.Add(tt.path, "content")
			err := cs.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorIs(t, err, changeset.ErrInvalidChangeSet)
		})
	}
}

func TestScoped(t *testing.T) {
	require.False(t, changeset.New("").Scoped())
	require.True(t, changeset.New("docs/adr").Scoped())
	require.Equal(t, "docs/adr", changeset.New("/docs/adr/").ScopePrefix)
}
