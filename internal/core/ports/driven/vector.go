package driven

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// VectorIndex provides similarity search over a fixed set of vectors.
// Implementations are immutable once built and safe for concurrent Search.
type VectorIndex interface {
	// Search finds the k vectors most similar to query, ordered by
	// descending similarity. Returns fewer than k hits when the index is smaller.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector size the index was built with.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Offset is the position of the vector in the slice the index was built from.
	Offset int

	// Similarity is the cosine similarity score in [-1, 1].
	Similarity float64
}

// VectorIndexBuilder constructs a VectorIndex over embedded chunks.
// Hit offsets refer to positions in chunks.
type VectorIndexBuilder func(dimension int, chunks []domain.Chunk) (VectorIndex, error)
