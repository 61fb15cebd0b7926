package docs

import (
	"fmt"
	"path"
	"time"

	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/pull"
)

// Default repository locations per document kind.
const (
	SpecsDir     = "docs/specs"
	ADRDir       = "docs/adr"
	ChangelogDir = "docs/changelog"
	PromptsDir   = "synced_prompts"
	ChatsDir     = "chats"
)

// Spec is a design or feature specification document.
type Spec struct {
	Title string
	Body  string
	Tags  []string
	Date  time.Time
}

func (s Spec) ChangeSet() (*changeset.ChangeSet, error) {
	content, err := render(Frontmatter{
		Title: s.Title,
		Kind:  "spec",
		Date:  s.Date,
		Tags:  s.Tags,
	}, s.Body)
	if err != nil {
		return nil, err
	}
	cs := changeset.New("")
	cs.Add(path.Join(SpecsDir, pull.Slug(s.Title)+".md"), content)
	return cs, nil
}

// ADR statuses, as commonly used in decision records.
const (
	ADRStatusProposed   = "proposed"
	ADRStatusAccepted   = "accepted"
	ADRStatusSuperseded = "superseded"
)

// ADR is an architecture decision record with a sequence number assigned by
// the caller.
type ADR struct {
	Number int
	Title  string
	Status string
	Body   string
	Date   time.Time
}

func (a ADR) ChangeSet() (*changeset.ChangeSet, error) {
	status := a.Status
	if status == "" {
		status = ADRStatusProposed
	}
	content, err := render(Frontmatter{
		Title:  a.Title,
		Kind:   "adr",
		Status: status,
		Number: a.Number,
		Date:   a.Date,
	}, a.Body)
	if err != nil {
		return nil, err
	}
	cs := changeset.New("")
	cs.Add(path.Join(ADRDir, fmt.Sprintf("%04d-%s.md", a.Number, pull.Slug(a.Title))), content)
	return cs, nil
}

// ChangelogEntry is a dated changelog addition. It is a single-file document
// and suits the single-file update path.
type ChangelogEntry struct {
	Title string
	Body  string
	Date  time.Time
}

func (c ChangelogEntry) Path() string {
	return path.Join(ChangelogDir, c.Date.Format("2006-01-02")+"-"+pull.Slug(c.Title)+".md")
}

func (c ChangelogEntry) Render() (string, error) {
	return render(Frontmatter{
		Title: c.Title,
		Kind:  "changelog",
		Date:  c.Date,
	}, c.Body)
}

// Prompt is one named prompt file within a project's synced set.
type Prompt struct {
	Name    string
	Content string
}

// PromptSet synchronizes a project's prompt files. With Prune set the whole
// "synced_prompts/<project>" subtree is replaced, removing prompts deleted
// locally; without it the named files are only added or overwritten and
// stale siblings survive. Pruning is an explicit choice, never implied.
type PromptSet struct {
	Project string
	Prompts []Prompt
	Prune   bool
	Date    time.Time
}

func (p PromptSet) ChangeSet() (*changeset.ChangeSet, error) {
	scope := ""
	dir := path.Join(PromptsDir, pull.Slug(p.Project))
	if p.Prune {
		scope = dir
	}
	cs := changeset.New(scope)
	for _, prompt := range p.Prompts {
		content, err := render(Frontmatter{
			Title:   prompt.Name,
			Kind:    "prompt",
			Project: p.Project,
			Date:    p.Date,
		}, prompt.Content)
		if err != nil {
			return nil, err
		}
		cs.Add(path.Join(dir, pull.Slug(prompt.Name)+".md"), content)
	}
	return cs, nil
}
