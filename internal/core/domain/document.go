package domain

import (
	"strings"
	"unicode/utf8"
)

// PageSeparator joins consecutive pages when a document is flattened for
// chunking. It is a paragraph break, so page boundaries are preferred split
// points.
const PageSeparator = "\n\n"

// Document represents a paginated source document after normalisation.
// It is read once at build time and is not retained afterwards.
type Document struct {
	// URI is the original location of the document.
	URI string

	// Title is the human-readable title.
	Title string

	// Pages is the ordered page sequence.
	Pages []Page

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// Page is a single page of a Document.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Content is the page text.
	Content string
}

// Content returns the concatenated page text joined with PageSeparator.
func (d *Document) Content() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Content
	}
	return strings.Join(parts, PageSeparator)
}

// CharCount returns the number of characters (runes) in Content.
func (d *Document) CharCount() int {
	return utf8.RuneCountInString(d.Content())
}

// IsBlank reports whether the document contains no visible text.
func (d *Document) IsBlank() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Content) != "" {
			return false
		}
	}
	return true
}

// Chunk represents a contiguous span of source text.
// Chunks are produced once at build time and never mutated.
type Chunk struct {
	// ID is a stable identifier derived from position and content.
	ID string

	// Position is the ordinal position within the document.
	Position int

	// Content is the text content of this chunk.
	Content string

	// Start and End are character offsets of the span in Document.Content.
	Start int
	End   int

	// PageStart and PageEnd are the first and last source pages the span touches.
	PageStart int
	PageEnd   int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return c.End - c.Start
}
