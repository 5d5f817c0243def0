package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// IndexStore persists and loads index artifacts.
type IndexStore interface {
	// Save writes the index to path. The write is atomic: readers see
	// either the previous artifact or the complete new one, never a partial file.
	Save(ctx context.Context, path string, idx *domain.Index) error

	// Load reads and validates the index at path.
	// Returns domain.ErrIndexNotFound when nothing exists at path and
	// domain.ErrIndexCorrupt when the artifact is unreadable or inconsistent.
	Load(ctx context.Context, path string) (*domain.Index, error)
}
