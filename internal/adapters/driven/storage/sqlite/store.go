package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore reads and writes index artifacts.
// It holds no open connections between calls.
type IndexStore struct{}

// NewIndexStore creates a new SQLite index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// DefaultPath returns ~/.shopdesk/data/knowledge.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".shopdesk", "data", "knowledge.db"), nil
}

// Save writes idx to path atomically.
func (s *IndexStore) Save(ctx context.Context, path string, idx *domain.Index) (err error) {
	if idx == nil {
		return domain.ErrInvalidInput
	}
	if err := idx.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
			_ = os.Remove(tmpPath + "-journal")
		}
	}()

	if err := writeArtifact(ctx, tmpPath, idx); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}

	logger.Debug("Wrote index %s (%d chunks, %d dims)", path, len(idx.Chunks), idx.Manifest.Dimensions)
	return nil
}

func writeArtifact(ctx context.Context, path string, idx *domain.Index) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrate(ctx, db, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	m := idx.Manifest
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO manifest (id, format_version, embedding_model, dimensions, chunk_size, chunk_overlap,
			source_path, source_sha256, page_count, chunk_count, built_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.FormatVersion, m.EmbeddingModel, m.Dimensions, m.ChunkSize, m.ChunkOverlap,
		m.SourcePath, m.SourceSHA256, m.PageCount, m.ChunkCount, m.BuiltAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, position, content, start_offset, end_offset, page_start, page_end, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range idx.Chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Position, c.Content, c.Start, c.End,
			c.PageStart, c.PageEnd, float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk %d: %w", c.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return db.Close()
}

// Load reads and validates the artifact at path.
func (s *IndexStore) Load(ctx context.Context, path string) (*domain.Index, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorrupt, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrIndexCorrupt, path)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrIndexCorrupt, err)
	}
	defer db.Close()

	idx, err := readArtifact(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorrupt, err)
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

func readArtifact(ctx context.Context, db *sql.DB) (*domain.Index, error) {
	var version int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if latest := latestMigration(migrations.FS); version != latest {
		return nil, fmt.Errorf("schema version %d, want %d", version, latest)
	}

	var m domain.Manifest
	var builtAt string
	err := db.QueryRowContext(ctx, `
		SELECT format_version, embedding_model, dimensions, chunk_size, chunk_overlap,
			source_path, source_sha256, page_count, chunk_count, built_at
		FROM manifest WHERE id = 1
	`).Scan(&m.FormatVersion, &m.EmbeddingModel, &m.Dimensions, &m.ChunkSize, &m.ChunkOverlap,
		&m.SourcePath, &m.SourceSHA256, &m.PageCount, &m.ChunkCount, &builtAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("manifest missing")
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if m.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt); err != nil {
		return nil, fmt.Errorf("parsing built_at: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, position, content, start_offset, end_offset, page_start, page_end, embedding
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0, m.ChunkCount)
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Position, &c.Content, &c.Start, &c.End,
			&c.PageStart, &c.PageEnd, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if len(blob)%4 != 0 {
			return nil, fmt.Errorf("chunk %s: embedding blob has %d bytes", c.ID, len(blob))
		}
		c.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return &domain.Index{Manifest: m, Chunks: chunks}, nil
}

// migrate runs all pending migrations.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	for _, name := range upMigrations(fsys) {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func upMigrations(fsys fs.FS) []string {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)
	return upFiles
}

func latestMigration(fsys fs.FS) int {
	latest := 0
	for _, name := range upMigrations(fsys) {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err == nil && version > latest {
			latest = version
		}
	}
	return latest
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
