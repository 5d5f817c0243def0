package normalisers

import (
	"github.com/custodia-labs/shopdesk/internal/normalisers/docx"
	"github.com/custodia-labs/shopdesk/internal/normalisers/html"
	"github.com/custodia-labs/shopdesk/internal/normalisers/markdown"
	"github.com/custodia-labs/shopdesk/internal/normalisers/pdf"
	"github.com/custodia-labs/shopdesk/internal/normalisers/plaintext"
)

// DefaultRegistry returns a registry with all built-in normalisers.
func DefaultRegistry() *Registry {
	return NewRegistry(
		pdf.New(),
		docx.New(),
		html.New(),
		markdown.New(),
		plaintext.New(),
	)
}
