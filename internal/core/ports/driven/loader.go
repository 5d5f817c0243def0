package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// DocumentLoader reads a source document into raw bytes.
type DocumentLoader interface {
	// Load returns the document at path.
	// Returns domain.ErrSourceNotFound when path does not exist.
	Load(ctx context.Context, path string) (*domain.RawDocument, error)
}
