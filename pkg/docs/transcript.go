package docs

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/quillhq/quill/pkg/changeset"
	"github.com/quillhq/quill/pkg/pull"
)

// Message is one turn of a recorded conversation.
type Message struct {
	Role string
	Time time.Time
	Text string
}

// ChatTranscript persists one conversation session as a markdown transcript
// plus a metadata file. Each session owns the
// "chats/<project>/<session>" subtree and replaces it wholesale on re-sync,
// so turns removed from the source log disappear remotely too.
type ChatTranscript struct {
	Project   string
	SessionID string
	Title     string
	Started   time.Time
	Messages  []Message
}

func (t ChatTranscript) scopeDir() string {
	return path.Join(ChatsDir, pull.Slug(t.Project), t.SessionID)
}

func (t ChatTranscript) ChangeSet() (*changeset.ChangeSet, error) {
	title := t.Title
	if title == "" {
		title = "Session " + t.SessionID
	}

	transcript, err := render(Frontmatter{
		Title:   title,
		Kind:    "chat",
		Project: t.Project,
		Date:    t.Started,
	}, t.renderMessages())
	if err != nil {
		return nil, err
	}

	meta, err := render(Frontmatter{
		Title:   title,
		Kind:    "chat-meta",
		Project: t.Project,
		Date:    t.Started,
	}, fmt.Sprintf("session: %s\nturns: %d\n", t.SessionID, len(t.Messages)))
	if err != nil {
		return nil, err
	}

	dir := t.scopeDir()
	cs := changeset.New(dir)
	cs.Add(path.Join(dir, "transcript.md"), transcript)
	cs.Add(path.Join(dir, "meta.md"), meta)
	return cs, nil
}

func (t ChatTranscript) renderMessages() string {
	var b strings.Builder
	for i, m := range t.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## " + titleCase(m.Role))
		if !m.Time.IsZero() {
			b.WriteString(" (" + m.Time.Format(time.RFC3339) + ")")
		}
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(m.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
