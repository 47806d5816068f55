package generators

import (
	"fmt"
	"strings"
	"time"
)

// Field is one metadata entry.
type Field struct {
	Key   string
	Value string
}

// Metadata is an ordered list of fields. Order is preserved in every export.
type Metadata []Field

// Get returns the value stored under key.
func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}

	return "", false
}

// Map returns the metadata as a map, for JSON consumers.
func (m Metadata) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, f := range m {
		out[f.Key] = f.Value
	}

	return out
}

// KeyTitle turns a metadata key into a label: "content_type" becomes
// "Content Type".
func KeyTitle(key string) string {
	return titleCase(strings.ReplaceAll(key, "_", " "))
}

// Result is one generated piece of content.
type Result struct {
	Kind        Kind
	Subject     string // Topic, theme or genre.
	Content     string // Model reply, trimmed.
	Metadata    Metadata
	GeneratedAt time.Time
}

// Title returns the document title, e.g. "Blog Post Outline: Go generics".
func (r Result) Title() string {
	subject := r.Subject
	if r.Kind == Writing {
		subject = titleCase(subject)
	}

	return fmt.Sprintf("%s: %s", r.Kind.Title(), subject)
}

// ToMarkdown renders the result as a Markdown document. Social calendars
// carry a header with their scheduling parameters.
func (r Result) ToMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(r.Title())
	sb.WriteString("\n\n")

	if r.Kind == Social {
		for _, key := range []string{"platform", "frequency", "timeframe", "tone"} {
			v, _ := r.Metadata.Get(key)
			fmt.Fprintf(&sb, "**%s:** %s\n", KeyTitle(key), v)
		}
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString(r.Content)

	return sb.String()
}
