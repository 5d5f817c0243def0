// Package html normalises HTML help-centre exports into a single page of
// readable text. Scripts, styles and page chrome (head, nav, header,
// footer) are dropped; block elements become line breaks and table cells
// are joined with " | " so order and price tables stay on one line.
package html

import (
	"context"
	"html"
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts an HTML document into a one-page document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	src := string(raw.Content)

	metadata := maps.Clone(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["format"] = "html"

	return &domain.Document{
		URI:      raw.URI,
		Title:    extractTitle(src, raw.URI),
		Pages:    []domain.Page{{Number: 1, Content: Text(src)}},
		Metadata: metadata,
	}, nil
}

var (
	titleTag   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag      = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	comments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	cellEnds   = regexp.MustCompile(`(?i)</t[dh]>`)
	rowEnds    = regexp.MustCompile(`(?i)</tr>`)
	paragraphs = regexp.MustCompile(`(?i)</?(p|h[1-6]|section|article|blockquote|pre|table|ul|ol)\b[^>]*>`)
	lineBreaks = regexp.MustCompile(`(?i)</?(div|li|dt|dd)\b[^>]*>|<(br|hr)\s*/?>`)
	tags       = regexp.MustCompile(`<[^>]+>`)
	spaces     = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// dropped matches elements whose content is never part of the answer.
var dropped = func() []*regexp.Regexp {
	names := []string{"script", "style", "noscript", "template", "head", "svg", "nav", "header", "footer"}
	out := make([]*regexp.Regexp, len(names))
	for i, name := range names {
		out[i] = regexp.MustCompile(`(?is)<` + name + `\b[^>]*>.*?</` + name + `\s*>`)
	}
	return out
}()

// Text extracts readable text from an HTML document. Paragraph-level
// elements are separated by blank lines so the chunker prefers them as
// split points.
func Text(src string) string {
	src = comments.ReplaceAllString(src, "")
	for _, re := range dropped {
		src = re.ReplaceAllString(src, "")
	}
	src = cellEnds.ReplaceAllString(src, " | ")
	src = rowEnds.ReplaceAllString(src, "\n")
	src = paragraphs.ReplaceAllString(src, "\n\n")
	src = lineBreaks.ReplaceAllString(src, "\n")
	src = tags.ReplaceAllString(src, "")
	src = html.UnescapeString(src)
	src = spaces.ReplaceAllString(src, " ")

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(strings.TrimSpace(line), " |")
		lines[i] = strings.TrimSuffix(lines[i], "|")
	}
	src = strings.Join(lines, "\n")
	src = blankRuns.ReplaceAllString(src, "\n\n")
	return strings.TrimSpace(src)
}

// extractTitle prefers <title>, then the first <h1>, then the file name.
func extractTitle(src, uri string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		if m := re.FindStringSubmatch(src); m != nil {
			t := strings.TrimSpace(html.UnescapeString(tags.ReplaceAllString(m[1], "")))
			if t != "" {
				return t
			}
		}
	}

	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
