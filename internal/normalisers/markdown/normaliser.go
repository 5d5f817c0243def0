// Package markdown normalises Markdown knowledge documents into a single
// page of plain text. Formatting marks are removed; link text, image alt
// text and code are kept because order IDs and SKUs often live there.
package markdown

import (
	"context"
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Priority returns the selection priority. It outranks plaintext, which
// also accepts .md as a fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a Markdown document into a one-page document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	body := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	front, body := splitFrontMatter(body)

	metadata := maps.Clone(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["format"] = "markdown"

	return &domain.Document{
		URI:      raw.URI,
		Title:    extractTitle(front, body, raw.URI),
		Pages:    []domain.Page{{Number: 1, Content: Strip(body)}},
		Metadata: metadata,
	}, nil
}

var (
	frontMatter  = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n?`)
	fence        = regexp.MustCompile("(?m)^[ \t]*(```|~~~).*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	strong       = regexp.MustCompile(`(\*\*|__)(\S(?:.*?\S)?)(\*\*|__)`)
	emphasis     = regexp.MustCompile(`(^|[\s(])[*_](\S(?:[^*_]*?\S)?)[*_]`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	rule         = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	bullets      = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numbered     = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
	tableDivider = regexp.MustCompile(`(?m)^[ \t]*\|?[ \t]*:?-{3,}:?[ \t]*(\|[ \t]*:?-{3,}:?[ \t]*)*\|?[ \t]*$`)
	tableEdges   = regexp.MustCompile(`(?m)^[ \t]*\|[ \t]*|[ \t]*\|[ \t]*$`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Strip removes Markdown syntax and returns readable text. Paragraph
// breaks are preserved so the chunker can split on them.
func Strip(md string) string {
	md = fence.ReplaceAllString(md, "")
	md = inlineCode.ReplaceAllString(md, "$1")
	md = images.ReplaceAllString(md, "$1")
	md = links.ReplaceAllString(md, "$1")
	md = headings.ReplaceAllString(md, "")
	md = tableDivider.ReplaceAllString(md, "")
	md = rule.ReplaceAllString(md, "")
	md = strong.ReplaceAllString(md, "$2")
	md = emphasis.ReplaceAllString(md, "$1$2")
	md = blockquote.ReplaceAllString(md, "")
	md = bullets.ReplaceAllString(md, "")
	md = numbered.ReplaceAllString(md, "")
	md = tableEdges.ReplaceAllString(md, "")
	md = blankRuns.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md)
}

// splitFrontMatter separates a leading YAML front matter block.
func splitFrontMatter(md string) (front, body string) {
	m := frontMatter.FindStringSubmatchIndex(md)
	if m == nil {
		return "", md
	}
	return md[m[2]:m[3]], md[m[1]:]
}

// extractTitle prefers a front matter title, then the first H1, then the
// file name.
func extractTitle(front, body, uri string) string {
	for _, line := range strings.Split(front, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "title:"); ok {
			if v = strings.Trim(strings.TrimSpace(v), `"'`); v != "" {
				return v
			}
		}
	}

	for _, line := range strings.Split(body, "\n") {
		if h, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok && strings.TrimSpace(h) != "" {
			return strings.TrimSpace(h)
		}
	}

	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
