package reconcile_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/quillhq/quill/pkg/gitobj"
	"github.com/quillhq/quill/pkg/reconcile"
)

func blob(path, sha string) gitobj.TreeEntry {
	return gitobj.TreeEntry{Path: path, Mode: gitobj.ModeFile, Type: gitobj.TypeBlob, SHA: sha}
}

func subtree(path, sha string) gitobj.TreeEntry {
	return gitobj.TreeEntry{Path: path, Mode: gitobj.ModeSubtree, Type: gitobj.TypeTree, SHA: sha}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		base        []gitobj.TreeEntry
		scopePrefix string
		updates     []gitobj.TreeEntry
		expected    []gitobj.TreeEntry
	}{
		{
			name:     "no_scope_keeps_siblings",
			base:     []gitobj.TreeEntry{blob("docs/adr/0001.md", "b1"), blob("notes/readme.md", "b2")},
			updates:  []gitobj.TreeEntry{blob("docs/adr/0002.md", "b3")},
			expected: []gitobj.TreeEntry{blob("docs/adr/0001.md", "b1"), blob("docs/adr/0002.md", "b3"), blob("notes/readme.md", "b2")},
		},
		{
			name:        "scope_prunes_stale_entries",
			base:        []gitobj.TreeEntry{blob("docs/adr/0001.md", "b1"), blob("notes/readme.md", "b2")},
			scopePrefix: "docs/adr",
			updates:     []gitobj.TreeEntry{blob("docs/adr/0002.md", "b3")},
			expected:    []gitobj.TreeEntry{blob("docs/adr/0002.md", "b3"), blob("notes/readme.md", "b2")},
		},
		{
			name:        "scope_prunes_nested_subtrees",
			base:        []gitobj.TreeEntry{subtree("chats/proj", "t1"), blob("chats/proj/0001/log.md", "b1"), blob("other.md", "b2")},
			scopePrefix: "chats/proj",
			updates:     []gitobj.TreeEntry{blob("chats/proj/0002/log.md", "b3")},
			expected:    []gitobj.TreeEntry{blob("chats/proj/0002/log.md", "b3"), blob("other.md", "b2")},
		},
		{
			name:     "update_overrides_base_entry",
			base:     []gitobj.TreeEntry{blob("docs/specs/foo.md", "old")},
			updates:  []gitobj.TreeEntry{blob("docs/specs/foo.md", "new")},
			expected: []gitobj.TreeEntry{blob("docs/specs/foo.md", "new")},
		},
		{
			name:     "prefix_match_is_per_segment",
			base:     []gitobj.TreeEntry{blob("docs/adr-archive/0001.md", "b1")},
			scopePrefix: "docs/adr",
			updates:  []gitobj.TreeEntry{blob("docs/adr/0001.md", "b2")},
			expected: []gitobj.TreeEntry{blob("docs/adr-archive/0001.md", "b1"), blob("docs/adr/0001.md", "b2")},
		},
		{
			name:     "empty_updates_keep_base",
			base:     []gitobj.TreeEntry{blob("a.md", "b1")},
			expected: []gitobj.TreeEntry{blob("a.md", "b1")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconcile.Reconcile(tt.base, tt.scopePrefix, tt.updates)
			if diff := deep.Equal(tt.expected, got); diff != nil {
				t.Error(diff)
			}
		})
	}
}
