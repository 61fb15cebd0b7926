// Package project infers a project name from filesystem paths, feeding the
// chat transcript producer. Inference is an ordered rule list; the first rule
// that matches wins, and each rule stands alone.
package project

import (
	"path/filepath"
	"strings"
)

// Rule inspects one candidate path and either returns a project name or
// reports no match.
type Rule interface {
	Name() string
	Infer(path string) (string, bool)
}

// Inferrer applies its rules in order against each candidate path. Rules are
// ranked: all candidates are tried against rule 1 before any is tried
// against rule 2.
type Inferrer struct {
	rules []Rule
}

func NewInferrer(rules ...Rule) *Inferrer {
	return &Inferrer{rules: rules}
}

// Default returns the standard rule ranking: exact known-project match,
// then a child of a common container directory, then a direct child of the
// home directory, then the path's base name.
func Default(knownProjects []string, homeDir string) *Inferrer {
	return NewInferrer(
		KnownProjects(knownProjects),
		ContainerDirs{"src", "repos", "code", "projects", "work"},
		HomeChild(homeDir),
		BaseName{},
	)
}

// Infer returns the project name for the first (rule, candidate) pair that
// matches, or "" when nothing does.
func (in *Inferrer) Infer(candidates ...string) string {
	for _, r := range in.rules {
		for _, c := range candidates {
			if name, ok := r.Infer(c); ok {
				return name
			}
		}
	}
	return ""
}

func segments(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}

// KnownProjects matches when any path segment equals a configured project
// name, compared case-insensitively.
type KnownProjects []string

func (KnownProjects) Name() string { return "known-projects" }

func (k KnownProjects) Infer(path string) (string, bool) {
	for _, seg := range segments(path) {
		for _, p := range k {
			if strings.EqualFold(seg, p) {
				return p, true
			}
		}
	}
	return "", false
}

// ContainerDirs matches the segment following a well-known container
// directory such as "src" or "repos".
type ContainerDirs []string

func (ContainerDirs) Name() string { return "container-dirs" }

func (c ContainerDirs) Infer(path string) (string, bool) {
	segs := segments(path)
	for i := 0; i < len(segs)-1; i++ {
		for _, dir := range c {
			if strings.EqualFold(segs[i], dir) {
				return segs[i+1], true
			}
		}
	}
	return "", false
}

// HomeChild matches a path directly under the home directory, naming the
// project after the first child segment. Hidden directories never name a
// project.
type HomeChild string

func (HomeChild) Name() string { return "home-child" }

func (h HomeChild) Infer(path string) (string, bool) {
	home := strings.TrimSuffix(filepath.ToSlash(string(h)), "/")
	if home == "" {
		return "", false
	}
	p := filepath.ToSlash(filepath.Clean(path))
	if !strings.HasPrefix(p, home+"/") {
		return "", false
	}
	rest := segments(strings.TrimPrefix(p, home+"/"))
	if len(rest) == 0 || strings.HasPrefix(rest[0], ".") {
		return "", false
	}
	return rest[0], true
}

// BaseName is the fallback: the path's final segment.
type BaseName struct{}

func (BaseName) Name() string { return "base-name" }

func (BaseName) Infer(path string) (string, bool) {
	segs := segments(path)
	if len(segs) == 0 {
		return "", false
	}
	return segs[len(segs)-1], true
}
