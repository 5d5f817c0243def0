// Package docx normalises Word (.docx) knowledge documents. Text is read
// from word/document.xml in document order. Explicit page breaks start a
// new page, and table rows are flattened to one line with cells joined
// by " | ".
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// maxPartSize bounds how much of a single archive member is read.
const maxPartSize = 64 << 20

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a DOCX archive into a paginated document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a DOCX archive: %w", domain.ErrInvalidInput, raw.URI, err)
	}

	body, err := readPart(archive, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, raw.URI, err)
	}
	pages, err := parseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse %s: %w", domain.ErrInvalidInput, raw.URI, documentPart, err)
	}

	metadata := maps.Clone(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["format"] = "docx"
	metadata["page_count"] = len(pages)

	return &domain.Document{
		URI:      raw.URI,
		Title:    extractTitle(archive, raw.URI),
		Pages:    pages,
		Metadata: metadata,
	}, nil
}

var errPartMissing = errors.New("part missing")

func readPart(archive *zip.Reader, name string) ([]byte, error) {
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, maxPartSize))
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

// pageWriter accumulates paragraphs into pages.
type pageWriter struct {
	pages []domain.Page
	page  []string
	line  strings.Builder
}

func (w *pageWriter) endParagraph() {
	text := strings.TrimSpace(w.line.String())
	w.line.Reset()
	if text != "" {
		w.page = append(w.page, text)
	}
}

func (w *pageWriter) endPage() {
	w.endParagraph()
	w.pages = append(w.pages, domain.Page{
		Number:  len(w.pages) + 1,
		Content: strings.Join(w.page, "\n"),
	})
	w.page = nil
}

// parseDocument streams WordprocessingML and returns its pages. A blank
// page after the final page break is dropped.
func parseDocument(body []byte) ([]domain.Page, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	w := &pageWriter{}
	inText := false
	cellDepth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				w.line.WriteByte(' ')
			case "br", "cr":
				if attr(t, "type") == "page" {
					w.endPage()
				} else {
					w.line.WriteByte(' ')
				}
			case "pageBreakBefore":
				if v := attr(t, "val"); v != "false" && v != "0" && len(w.page) > 0 {
					w.endPage()
				}
			case "tc":
				cellDepth++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if cellDepth > 0 {
					w.line.WriteByte(' ')
				} else {
					w.endParagraph()
				}
			case "tc":
				cellDepth--
				cell := strings.TrimRight(w.line.String(), " ")
				w.line.Reset()
				w.line.WriteString(cell + " | ")
			case "tr":
				row := strings.TrimSuffix(strings.TrimSpace(w.line.String()), "|")
				w.line.Reset()
				w.line.WriteString(strings.Join(strings.Fields(row), " "))
				w.endParagraph()
			}
		case xml.CharData:
			if inText {
				w.line.Write(t)
			}
		}
	}

	if w.line.Len() > 0 || len(w.page) > 0 || len(w.pages) == 0 {
		w.endPage()
	}
	return w.pages, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// coreProperties is the subset of docProps/core.xml that is read.
type coreProperties struct {
	Title string `xml:"title"`
}

// extractTitle prefers the document properties title, then the file name.
func extractTitle(archive *zip.Reader, uri string) string {
	if data, err := readPart(archive, corePart); err == nil {
		var core coreProperties
		if xml.Unmarshal(data, &core) == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}

	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
