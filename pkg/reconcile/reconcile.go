// Package reconcile computes the tree entries for a synchronization commit.
// It is pure: no remote I/O, blob IDs are resolved by the caller.
package reconcile

import (
	"sort"
	"strings"

	"github.com/quillhq/quill/pkg/gitobj"
)

// Reconcile merges a base tree with the change set's resolved entries:
//   - when scopePrefix is non-empty, base entries under "scopePrefix/" are
//     dropped so a prior file set is superseded even when the new set has
//     fewer or differently named files; a plain per-path overwrite would
//     leave orphaned entries behind
//   - all other base entries are kept unchanged
//   - updates override kept entries path-by-path
//
// The result is sorted by path for deterministic tree creation. Subtree
// entries covering a pruned prefix are dropped too: a recursive base listing
// carries both the flattened blobs and their parent tree entries, and keeping
// a stale parent tree would resurrect the pruned paths.
func Reconcile(base []gitobj.TreeEntry, scopePrefix string, updates []gitobj.TreeEntry) []gitobj.TreeEntry {
	updated := make(map[string]gitobj.TreeEntry, len(updates))
	for _, e := range updates {
		updated[e.Path] = e
	}

	result := make([]gitobj.TreeEntry, 0, len(base)+len(updates))
	for _, e := range base {
		if scopePrefix != "" && inScope(e.Path, scopePrefix) {
			continue
		}
		if _, ok := updated[e.Path]; ok {
			continue
		}
		result = append(result, e)
	}
	for _, e := range updates {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// inScope reports whether path falls under prefix, including the prefix
// entry itself (the subtree node).
func inScope(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
