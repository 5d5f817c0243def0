package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func sampleIndex() *domain.Index {
	return &domain.Index{
		Manifest: domain.Manifest{
			FormatVersion:  domain.IndexFormatVersion,
			EmbeddingModel: "feature-hash-v1",
			Dimensions:     2,
			ChunkCount:     1,
		},
		Chunks: []domain.Chunk{{ID: "c1", Content: "Order ORD123 shipped", Embedding: []float32{1, 0}}},
	}
}

func TestIndexStore_SaveLoad(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "/idx.db", sampleIndex()))
	assert.True(t, store.Has("/idx.db"))

	idx, err := store.Load(ctx, "/idx.db")
	require.NoError(t, err)
	assert.Equal(t, sampleIndex(), idx)
}

func TestIndexStore_CopiesOnSaveAndLoad(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	original := sampleIndex()
	require.NoError(t, store.Save(ctx, "p", original))
	original.Chunks[0].Embedding[0] = 99

	loaded, err := store.Load(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, float32(1), loaded.Chunks[0].Embedding[0])

	loaded.Chunks[0].Embedding[0] = 42
	again, _ := store.Load(ctx, "p")
	assert.Equal(t, float32(1), again.Chunks[0].Embedding[0])
}

func TestIndexStore_Errors(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)

	assert.ErrorIs(t, store.Save(ctx, "p", nil), domain.ErrInvalidInput)

	bad := sampleIndex()
	bad.Manifest.ChunkCount = 3
	assert.ErrorIs(t, store.Save(ctx, "p", bad), domain.ErrIndexCorrupt)
	assert.False(t, store.Has("p"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.Save(cancelled, "p", sampleIndex()), context.Canceled)
}
