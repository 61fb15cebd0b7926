// Package changeset models the bounded set of path upserts a producer hands
// to the synchronizer.
package changeset

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrInvalidChangeSet = errors.New("invalid change set")

	ErrEmptyPath        = fmt.Errorf("%w: empty path", ErrInvalidChangeSet)
	ErrAbsolutePath     = fmt.Errorf("%w: absolute path", ErrInvalidChangeSet)
	ErrPathTraversal    = fmt.Errorf("%w: path traversal", ErrInvalidChangeSet)
	ErrPathOutsideScope = fmt.Errorf("%w: path outside scope prefix", ErrInvalidChangeSet)
	ErrEmptyScopePrefix = fmt.Errorf("%w: empty scope prefix component", ErrInvalidChangeSet)
)

// Upsert adds or replaces the content at one repository-relative POSIX path.
type Upsert struct {
	Path    string
	Content string
}

// ChangeSet is one synchronization request: a list of upserts, optionally
// scoped to a prefix the caller is authorized to fully replace. When
// ScopePrefix is set, paths outside it are rejected and existing entries
// under it are pruned before the upserts are applied, superseding the prior
// file set even when the new set has fewer or differently named files.
type ChangeSet struct {
	ScopePrefix string
	upserts     []Upsert
	index       map[string]int
}

// New returns an empty change set. An empty scope prefix means targeted
// edits: everything not explicitly upserted is left untouched.
func New(scopePrefix string) *ChangeSet {
	return &ChangeSet{
		ScopePrefix: strings.Trim(scopePrefix, "/"),
		index:       make(map[string]int),
	}
}

// Add records an upsert. A later Add for the same path in the same change set
// overrides the earlier one (last-write-wins within one call).
func (c *ChangeSet) Add(p, content string) {
	p = path.Clean(strings.TrimSpace(p))
	if i, ok := c.index[p]; ok {
		c.upserts[i].Content = content
		return
	}
	c.index[p] = len(c.upserts)
	c.upserts = append(c.upserts, Upsert{Path: p, Content: content})
}

// Upserts returns the deduplicated upserts in insertion order.
func (c *ChangeSet) Upserts() []Upsert {
	return c.upserts
}

func (c *ChangeSet) Len() int {
	return len(c.upserts)
}

// Scoped reports whether the change set declares a scope prefix, requesting
// full-subtree replacement.
func (c *ChangeSet) Scoped() bool {
	return c.ScopePrefix != ""
}

// Validate checks every upsert path: non-empty, relative, no traversal, and
// inside the scope prefix when one is declared.
func (c *ChangeSet) Validate() error {
	if c.Scoped() {
		for _, part := range strings.Split(c.ScopePrefix, "/") {
			if part == "" || part == "." || part == ".." {
				return fmt.Errorf("%w: %q", ErrEmptyScopePrefix, c.ScopePrefix)
			}
		}
	}
	for _, u := range c.upserts {
		if err := validatePath(u.Path); err != nil {
			return err
		}
		if c.Scoped() && !strings.HasPrefix(u.Path, c.ScopePrefix+"/") {
			return fmt.Errorf("%w: %q not under %q", ErrPathOutsideScope, u.Path, c.ScopePrefix)
		}
	}
	return nil
}

func validatePath(p string) error {
	if p == "" || p == "." {
		return ErrEmptyPath
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: %q", ErrAbsolutePath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrPathTraversal, p)
		}
	}
	return nil
}
