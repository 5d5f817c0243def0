package driving

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// BuildRequest describes an index build.
type BuildRequest struct {
	// SourcePath is the document to index.
	SourcePath string

	// OutputPath is where the index artifact is written.
	OutputPath string

	// Progress, when set, is called after each embedding batch.
	Progress func(done, total int)
}

// IndexBuilder turns a source document into a persisted index.
type IndexBuilder interface {
	// Build runs the full load, chunk, embed, persist pipeline.
	// Nothing is written unless every step succeeds.
	Build(ctx context.Context, req BuildRequest) (*domain.BuildReport, error)
}
