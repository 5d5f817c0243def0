package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure IndexBuilder implements the interface.
var _ driving.IndexBuilder = (*IndexBuilder)(nil)

// IndexBuilderConfig holds the build parameters recorded in the manifest.
type IndexBuilderConfig struct {
	Chunking  domain.ChunkingSettings
	BatchSize int
}

// IndexBuilder runs the offline load, chunk, embed and persist pipeline.
// It is single-threaded and holds no state between builds.
type IndexBuilder struct {
	loader   driven.DocumentLoader
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	store    driven.IndexStore
	cfg      IndexBuilderConfig
	now      func() time.Time
}

// NewIndexBuilder creates a new index builder.
func NewIndexBuilder(
	loader driven.DocumentLoader,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	cfg IndexBuilderConfig,
) *IndexBuilder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	return &IndexBuilder{
		loader:   loader,
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Build turns the source document into a persisted index.
// Any failure aborts the build before anything is written.
func (b *IndexBuilder) Build(ctx context.Context, req driving.BuildRequest) (*domain.BuildReport, error) {
	if req.SourcePath == "" {
		return nil, fmt.Errorf("%w: source path is required", domain.ErrInvalidInput)
	}
	if req.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path is required", domain.ErrInvalidInput)
	}

	started := b.now()
	logger.Section("Index Build")

	// 1. LOAD
	raw, err := b.loader.Load(ctx, req.SourcePath)
	if err != nil {
		return nil, err
	}

	// 2. NORMALISE (produces pages)
	doc, err := b.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", req.SourcePath, err)
	}
	if doc.IsBlank() {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, req.SourcePath)
	}
	logger.Debug("Parsed %d pages, %d characters", len(doc.Pages), doc.CharCount())

	// 3. CHUNK
	chunks, err := b.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced from %s", domain.ErrEmptyDocument, req.SourcePath)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	// 4. EMBED
	dims, err := b.embedAll(ctx, chunks, req.Progress)
	if err != nil {
		return nil, err
	}

	// 5. PERSIST
	sha, _ := raw.Metadata[domain.MetaSHA256].(string)
	idx := &domain.Index{
		Manifest: domain.Manifest{
			FormatVersion:  domain.IndexFormatVersion,
			EmbeddingModel: b.embedder.ModelName(),
			Dimensions:     dims,
			ChunkSize:      b.cfg.Chunking.Size,
			ChunkOverlap:   b.cfg.Chunking.Overlap,
			SourcePath:     req.SourcePath,
			SourceSHA256:   sha,
			PageCount:      len(doc.Pages),
			ChunkCount:     len(chunks),
			BuiltAt:        b.now().UTC(),
		},
		Chunks: chunks,
	}
	if err := b.store.Save(ctx, req.OutputPath, idx); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	report := &domain.BuildReport{
		OutputPath: req.OutputPath,
		Manifest:   idx.Manifest,
		Duration:   b.now().Sub(started),
	}
	logger.Info("Indexed %d pages into %d chunks (%s, %d dims) at %s",
		report.Manifest.PageCount, report.Manifest.ChunkCount, report.Manifest.EmbeddingModel, dims, req.OutputPath)
	return report, nil
}

// embedAll fills in chunk embeddings batch by batch and returns the
// vector dimension. Every chunk must receive a vector of that dimension.
func (b *IndexBuilder) embedAll(ctx context.Context, chunks []domain.Chunk, progress func(done, total int)) (int, error) {
	dims := b.embedder.Dimensions()
	total := len(chunks)

	if progress != nil {
		progress(0, total)
	}

	for start := 0; start < total; start += b.cfg.BatchSize {
		end := min(start+b.cfg.BatchSize, total)

		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Content)
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("%w: embedding chunks %d-%d: %w", domain.ErrEmbeddingProvider, start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("%w: requested %d embeddings, received %d",
				domain.ErrEmbeddingProvider, len(texts), len(vectors))
		}

		for i, vec := range vectors {
			if dims <= 0 {
				dims = len(vec)
			}
			if len(vec) == 0 || len(vec) != dims {
				return 0, fmt.Errorf("%w: chunk %d has %d dimensions, want %d",
					domain.ErrEmbeddingProvider, start+i, len(vec), dims)
			}
			if j, ok := nonFinite(vec); ok {
				return 0, fmt.Errorf("%w: chunk %d has non-finite value %v at component %d",
					domain.ErrEmbeddingProvider, start+i, vec[j], j)
			}
			chunks[start+i].Embedding = vec
		}

		logger.Debug("Embedded chunks %d-%d of %d", start, end-1, total)
		if progress != nil {
			progress(end, total)
		}
	}

	return dims, nil
}

// nonFinite returns the index of the first NaN or infinite component.
func nonFinite(vec []float32) (int, bool) {
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i, true
		}
	}
	return 0, false
}
