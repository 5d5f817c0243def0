package domain

import (
	"fmt"
	"time"
)

// IndexFormatVersion is the artifact layout version written by the builder.
// Loaders reject artifacts with a different version.
const IndexFormatVersion = 1

// Manifest describes how an index artifact was built.
// It carries enough metadata to validate embedding-space consistency
// without re-reading the source document.
type Manifest struct {
	// FormatVersion is the artifact layout version.
	FormatVersion int

	// EmbeddingModel is the model that produced every vector.
	EmbeddingModel string

	// Dimensions is the vector length shared by all chunks.
	Dimensions int

	// ChunkSize and ChunkOverlap are the splitter settings used.
	ChunkSize    int
	ChunkOverlap int

	// SourcePath is the document the index was built from.
	SourcePath string

	// SourceSHA256 is the hex digest of the source bytes.
	SourceSHA256 string

	// PageCount is the number of source pages.
	PageCount int

	// ChunkCount is the number of chunks in the artifact.
	ChunkCount int

	// BuiltAt is when the artifact was written.
	BuiltAt time.Time
}

// Index is an immutable collection of embedded chunks.
// Created once by the builder and loaded read-only by the retrieval service.
type Index struct {
	Manifest Manifest
	Chunks   []Chunk
}

// Validate checks the internal consistency of an index.
func (idx *Index) Validate() error {
	if idx.Manifest.FormatVersion != IndexFormatVersion {
		return fmt.Errorf("%w: format version %d, want %d",
			ErrIndexCorrupt, idx.Manifest.FormatVersion, IndexFormatVersion)
	}
	if idx.Manifest.ChunkCount != len(idx.Chunks) {
		return fmt.Errorf("%w: manifest lists %d chunks, artifact holds %d",
			ErrIndexCorrupt, idx.Manifest.ChunkCount, len(idx.Chunks))
	}
	for i := range idx.Chunks {
		if len(idx.Chunks[i].Embedding) != idx.Manifest.Dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
				ErrIndexCorrupt, idx.Chunks[i].ID, len(idx.Chunks[i].Embedding), idx.Manifest.Dimensions)
		}
	}
	return nil
}

// BuildReport summarises a completed index build.
type BuildReport struct {
	OutputPath string
	Manifest   Manifest
	Duration   time.Duration
}
