// Package export converts generated content into downloadable documents:
// Markdown, standalone HTML and plain text.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/germanamz/ideaforge/pkg/generators"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatText     Format = "txt"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatHTML, FormatText}
}

// ParseFormat validates a format name. A leading dot is accepted.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatMarkdown, FormatHTML, FormatText:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "text":
		return FormatText, nil
	}

	return "", fmt.Errorf("export: unknown format %q: must be md, html or txt", s)
}

// ErrExists is returned by WriteFile when the target exists and overwriting
// was not requested.
var ErrExists = errors.New("file already exists")

// GeneratedOnLayout is the timestamp layout of the "Generated on" line.
const GeneratedOnLayout = "January 02, 2006 at 03:04 PM"

// MaxSlugLength bounds the subject part of generated filenames, in runes.
const MaxSlugLength = 50

// hiddenKeys are metadata keys left out of exported documents.
var hiddenKeys = map[string]bool{"provider": true}

// Markdown renders a document with a metadata section followed by content.
func Markdown(title, content string, meta generators.Metadata, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)

	if len(meta) > 0 {
		sb.WriteString("## Metadata\n\n")
		for _, f := range meta {
			if hiddenKeys[f.Key] {
				continue
			}
			fmt.Fprintf(&sb, "- **%s:** %s\n", generators.KeyTitle(f.Key), f.Value)
		}
		fmt.Fprintf(&sb, "\n*Generated on: %s*\n\n", now.Format(GeneratedOnLayout))
		sb.WriteString("---\n\n")
	}

	sb.WriteString(content)

	return sb.String()
}

// Text renders a plain-text document.
func Text(title, content string, meta generators.Metadata, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len([]rune(title))))
	sb.WriteString("\n\n")

	if len(meta) > 0 {
		for _, f := range meta {
			if hiddenKeys[f.Key] {
				continue
			}
			fmt.Fprintf(&sb, "%s: %s\n", generators.KeyTitle(f.Key), f.Value)
		}
		fmt.Fprintf(&sb, "Generated on: %s\n\n", now.Format(GeneratedOnLayout))
	}

	sb.WriteString(content)
	sb.WriteString("\n")

	return sb.String()
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Model output is untrusted: raw HTML in it is reduced to safe markup.
var sanitizer = bluemonday.UGCPolicy()

// RenderHTML converts Markdown to sanitized HTML.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("export: render markdown: %w", err)
	}

	return sanitizer.Sanitize(buf.String()), nil
}

type htmlField struct {
	Label string
	Value string
}

type htmlPage struct {
	Title       string
	Fields      []htmlField
	GeneratedOn string
	Body        template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; line-height: 1.6; color: #333; }
h1 { color: #1f77b4; border-bottom: 2px solid #1f77b4; padding-bottom: 10px; }
h2 { color: #155a8a; margin-top: 30px; }
code { background-color: #f5f5f5; padding: 2px 6px; border-radius: 3px; }
pre { background-color: #f5f5f5; padding: 15px; border-radius: 5px; overflow-x: auto; }
.metadata { background-color: #e8f4f8; padding: 15px; border-radius: 5px; margin-bottom: 30px; }
.metadata p { margin: 5px 0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Fields}}
<div class="metadata">
<h3>Metadata</h3>
{{- range .Fields}}
<p><strong>{{.Label}}:</strong> {{.Value}}</p>
{{- end}}
<p><em>Generated on: {{.GeneratedOn}}</em></p>
</div>
{{- end}}
<div class="content">
{{.Body}}
</div>
</body>
</html>
`))

// HTML renders a standalone page. Content is treated as Markdown.
func HTML(title, content string, meta generators.Metadata, now time.Time) (string, error) {
	body, err := RenderHTML(content)
	if err != nil {
		return "", err
	}

	page := htmlPage{
		Title:       title,
		GeneratedOn: now.Format(GeneratedOnLayout),
		Body:        template.HTML(body), //nolint:gosec // sanitized by bluemonday above
	}

	for _, f := range meta {
		if hiddenKeys[f.Key] {
			continue
		}
		page.Fields = append(page.Fields, htmlField{Label: generators.KeyTitle(f.Key), Value: f.Value})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("export: render page: %w", err)
	}

	return buf.String(), nil
}

// Render produces the document for a generated result in format f.
func Render(r generators.Result, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(r.Title(), r.Content, r.Metadata, r.GeneratedAt)), nil
	case FormatText:
		return []byte(Text(r.Title(), r.Content, r.Metadata, r.GeneratedAt)), nil
	case FormatHTML:
		s, err := HTML(r.Title(), r.Content, r.Metadata, r.GeneratedAt)
		return []byte(s), err
	default:
		return nil, fmt.Errorf("export: unknown format %q", f)
	}
}

// Slug lower-cases s and collapses every run of characters other than
// letters and digits into a single underscore. The result is at most
// MaxSlugLength runes; an empty result becomes "untitled".
func Slug(s string) string {
	var sb strings.Builder

	n := 0
	pendingSep := false

	for _, r := range strings.ToLower(s) {
		if n >= MaxSlugLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && n > 0 {
				sb.WriteByte('_')
				n++
				if n >= MaxSlugLength {
					break
				}
			}
			pendingSep = false
			sb.WriteRune(r)
			n++
			continue
		}
		pendingSep = true
	}

	out := strings.TrimRight(sb.String(), "_")
	if out == "" {
		return "untitled"
	}

	return out
}

// Filename builds "<prefix>_<slug>.<ext>", e.g. "blog_outline_go_generics.md".
func Filename(prefix, subject string, f Format) string {
	return fmt.Sprintf("%s_%s.%s", prefix, Slug(subject), f)
}

// ResultFilename returns the default filename for a result.
func ResultFilename(r generators.Result, f Format) string {
	prefixes := map[generators.Kind]string{
		generators.Blog:    "blog_outline",
		generators.Social:  "social_calendar",
		generators.Writing: "writing_prompt",
	}

	prefix, ok := prefixes[r.Kind]
	if !ok {
		prefix = string(r.Kind)
	}

	return Filename(prefix, r.Subject, f)
}

// WriteFile writes data to dir/name, creating dir as needed. An existing
// file is only replaced when force is set. It returns the written path.
func WriteFile(dir, name string, data []byte, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o600) //nolint:gosec // path is built from a sanitized name
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("export: %w: %s", ErrExists, path)
		}
		return "", fmt.Errorf("export: open file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("export: write file: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close file: %w", err)
	}

	return path, nil
}
