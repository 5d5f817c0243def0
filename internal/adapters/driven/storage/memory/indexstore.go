package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps index artifacts in memory, keyed by path.
// Saved and loaded indexes are deep copies, so callers cannot mutate
// stored state.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*domain.Index
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]*domain.Index)}
}

// Save stores a copy of idx under path.
func (s *IndexStore) Save(ctx context.Context, path string, idx *domain.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if idx == nil {
		return domain.ErrInvalidInput
	}
	if err := idx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[path] = cloneIndex(idx)
	return nil
}

// Load returns a copy of the index stored under path.
func (s *IndexStore) Load(ctx context.Context, path string) (*domain.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, path)
	}
	return cloneIndex(idx), nil
}

// Has reports whether an index is stored under path.
func (s *IndexStore) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[path]
	return ok
}

func cloneIndex(idx *domain.Index) *domain.Index {
	out := &domain.Index{
		Manifest: idx.Manifest,
		Chunks:   make([]domain.Chunk, len(idx.Chunks)),
	}
	for i, c := range idx.Chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		out.Chunks[i] = c
	}
	return out
}
