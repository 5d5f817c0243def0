package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// Normaliser transforms a raw source file into a paginated Document.
// Each normaliser handles specific file extensions (e.g., ".pdf", ".txt").
type Normaliser interface {
	// SupportedExtensions returns the lower-cased extensions, with leading dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts page text from a raw document.
	// Chunking is handled by the PostProcessor pipeline.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}
