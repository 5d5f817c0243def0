package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func testIndex(n int) *domain.Index {
	idx := &domain.Index{
		Manifest: domain.Manifest{
			FormatVersion:  domain.IndexFormatVersion,
			EmbeddingModel: "feature-hash-v1",
			Dimensions:     3,
			ChunkSize:      600,
			ChunkOverlap:   100,
			SourcePath:     "/docs/support.pdf",
			SourceSHA256:   "abc123",
			PageCount:      2,
			ChunkCount:     n,
			BuiltAt:        time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		},
	}
	for i := 0; i < n; i++ {
		idx.Chunks = append(idx.Chunks, domain.Chunk{
			ID:        "chunk-" + string(rune('a'+i)),
			Position:  i,
			Content:   "Order ORD123 status: Shipped",
			Start:     i * 500,
			End:       i*500 + 600,
			PageStart: 1,
			PageEnd:   2,
			Embedding: []float32{float32(i), 0.5, -1.25},
		})
	}
	return idx
}

func TestIndexStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "knowledge.db")
	store := NewIndexStore()

	want := testIndex(3)
	require.NoError(t, store.Save(ctx, path, want))

	got, err := store.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, want.Manifest, got.Manifest)
	assert.Equal(t, want.Chunks, got.Chunks)
}

func TestIndexStore_SaveReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.db")
	store := NewIndexStore()

	require.NoError(t, store.Save(ctx, path, testIndex(3)))
	require.NoError(t, store.Save(ctx, path, testIndex(1)))

	got, err := store.Load(ctx, path)
	require.NoError(t, err)
	assert.Len(t, got.Chunks, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "knowledge.db", entries[0].Name())
}

func TestIndexStore_SaveRejectsInvalidIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.db")
	store := NewIndexStore()

	assert.ErrorIs(t, store.Save(ctx, path, nil), domain.ErrInvalidInput)

	bad := testIndex(2)
	bad.Chunks[1].Embedding = []float32{1}
	assert.ErrorIs(t, store.Save(ctx, path, bad), domain.ErrIndexCorrupt)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestIndexStore_SaveKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.db")
	store := NewIndexStore()

	require.NoError(t, store.Save(context.Background(), path, testIndex(2)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Save(ctx, path, testIndex(1)))

	got, err := store.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, got.Chunks, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIndexStore_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "empty.db")
	store := NewIndexStore()

	require.NoError(t, store.Save(ctx, path, testIndex(0)))

	got, err := store.Load(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, got.Chunks)
	assert.Equal(t, 0, got.Manifest.ChunkCount)
}

func TestIndexStore_LoadMissing(t *testing.T) {
	_, err := NewIndexStore().Load(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewIndexStore()

	t.Run("garbage bytes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.db")
		require.NoError(t, os.WriteFile(path, []byte("this is not a database, just text padding it out"), 0600))

		_, err := store.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "zero.db")
		require.NoError(t, os.WriteFile(path, nil, 0600))

		_, err := store.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := store.Load(ctx, t.TempDir())
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("chunk count mismatch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tampered.db")
		require.NoError(t, store.Save(ctx, path, testIndex(2)))
		execRaw(t, path, "UPDATE manifest SET chunk_count = 5")

		_, err := store.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("truncated embedding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob.db")
		require.NoError(t, store.Save(ctx, path, testIndex(1)))
		execRaw(t, path, "UPDATE chunks SET embedding = X'0102'")

		_, err := store.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("missing manifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nomanifest.db")
		require.NoError(t, store.Save(ctx, path, testIndex(1)))
		execRaw(t, path, "DELETE FROM manifest")

		_, err := store.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})

	t.Run("unknown schema version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "future.db")
		require.NoError(t, store.Save(ctx, path, testIndex(1)))
		execRaw(t, path, "INSERT INTO schema_migrations (version) VALUES (99)")

		_, err := store.Load(ctx, path)
		assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	})
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrate(ctx, db, migrations.FS))
	require.NoError(t, migrate(ctx, db, migrations.FS))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, latestMigration(migrations.FS), count)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -3.25, 1e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.NotNil(t, float32SliceToBytes(nil))
	assert.Empty(t, bytesToFloat32Slice(nil))
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "knowledge.db", filepath.Base(path))
	assert.Contains(t, path, ".shopdesk")
}

func execRaw(t *testing.T, path, stmt string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(stmt)
	require.NoError(t, err)
}
