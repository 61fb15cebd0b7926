// Package docs builds the (path, content) change sets for each document
// kind quill persists: specs, decision records, changelog entries, synced
// prompts and chat transcripts. Producers own the frontmatter; the sync
// engine treats content as opaque text.
package docs

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the structured header embedded at the top of every
// produced document.
type Frontmatter struct {
	Title   string    `yaml:"title"`
	Kind    string    `yaml:"kind"`
	Project string    `yaml:"project,omitempty"`
	Status  string    `yaml:"status,omitempty"`
	Number  int       `yaml:"number,omitempty"`
	Date    time.Time `yaml:"date"`
	Tags    []string  `yaml:"tags,omitempty"`
}

// render produces the final document: YAML frontmatter between "---" fences,
// then the body.
func render(fm Frontmatter, body string) (string, error) {
	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimLeft(body, "\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
