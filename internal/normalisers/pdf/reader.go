package pdf

import (
	"bytes"
	"fmt"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// PageReader extracts page text from PDF bytes in process.
type PageReader func(content []byte) ([]domain.Page, error)

// readPages parses content with the pure-Go reader. Pages that cannot be
// decoded are kept empty so page numbers stay aligned with the file.
func readPages(content []byte) (pages []domain.Page, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdfreader.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	n := r.NumPage()
	pages = make([]domain.Page, 0, n)
	for i := 1; i <= n; i++ {
		text := ""
		if page := r.Page(i); !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				text = strings.TrimSpace(t)
			}
		}
		pages = append(pages, domain.Page{Number: i, Content: text})
	}
	return pages, nil
}
