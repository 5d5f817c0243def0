// Package flat provides an exact brute-force vector index.
// It implements the driven.VectorIndex interface over an in-memory
// matrix of pre-normalised vectors.
package flat

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// cancelCheckInterval is how many vectors are scored between context checks.
const cancelCheckInterval = 1024

// Index scores every stored vector against the query by cosine similarity.
// It is immutable after New and safe for concurrent Search.
type Index struct {
	dimension int
	ids       []string
	vectors   [][]float32 // unit length, or all zeros
}

// New builds an index from embedded chunks.
// Every chunk must carry an embedding of the given dimension.
func New(dimension int, chunks []domain.Chunk) (*Index, error) {
	if dimension <= 0 && len(chunks) > 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}

	idx := &Index{
		dimension: dimension,
		ids:       make([]string, len(chunks)),
		vectors:   make([][]float32, len(chunks)),
	}
	for i := range chunks {
		if len(chunks[i].Embedding) != dimension {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
				domain.ErrInvalidInput, chunks[i].ID, len(chunks[i].Embedding), dimension)
		}
		idx.ids[i] = chunks[i].ID
		idx.vectors[i] = normalise(chunks[i].Embedding)
	}
	return idx, nil
}

// Build is a driven.VectorIndexBuilder backed by New.
func Build(dimension int, chunks []domain.Chunk) (driven.VectorIndex, error) {
	return New(dimension, chunks)
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Search returns up to k hits by descending cosine similarity.
// Equal scores are ordered by their offset in the build slice.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), idx.dimension)
	}
	if k <= 0 || len(idx.vectors) == 0 {
		return nil, nil
	}

	q := normalise(query)
	h := make(hitHeap, 0, min(k, len(idx.vectors)))

	for i, v := range idx.vectors {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		hit := driven.VectorHit{ChunkID: idx.ids[i], Offset: i, Similarity: dot(q, v)}
		if len(h) < k {
			heap.Push(&h, hit)
			continue
		}
		if worse(h[0], hit) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	out := make([]driven.VectorHit, len(h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(driven.VectorHit)
	}
	return out, nil
}

// normalise returns a unit-length copy of v. Zero vectors stay zero.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// worse reports whether a ranks below b.
func worse(a, b driven.VectorHit) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity < b.Similarity
	}
	return a.Offset > b.Offset
}

// hitHeap is a min-heap with the lowest-ranked hit at the root.
type hitHeap []driven.VectorHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) {
	*h = append(*h, x.(driven.VectorHit))
}

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
