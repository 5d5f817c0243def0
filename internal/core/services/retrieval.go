package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalConfig controls query behaviour.
type RetrievalConfig struct {
	// TopK is used when a query passes k <= 0.
	TopK int

	// MinScore drops hits scoring below it. Zero or less disables the filter.
	MinScore float64
}

// loadResult is published once when Load finishes.
type loadResult struct {
	manifest domain.Manifest
	chunks   []domain.Chunk
	vectors  driven.VectorIndex
	err      error
}

// RetrievalService answers similarity queries against one loaded index.
//
// A service is a lifecycle handle: Load is called once, after which the
// service is Ready or Degraded for the rest of its life. Query is safe for
// concurrent use and takes no locks.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.IndexStore
	newIndex driven.VectorIndexBuilder
	cfg      RetrievalConfig

	state  atomic.Int32
	result atomic.Pointer[loadResult]
}

// NewRetrievalService creates a service in the Uninitialized state.
// A nil embedder is allowed; Load then leaves the service Degraded.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	newIndex driven.VectorIndexBuilder,
	cfg RetrievalConfig,
) *RetrievalService {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		newIndex: newIndex,
		cfg:      cfg,
	}
}

// Load reads the index at path. It may only be called once.
// On failure the service enters Degraded and the error is returned for
// logging; the service stays usable and answers every query as unavailable.
func (s *RetrievalService) Load(ctx context.Context, path string) error {
	if !s.state.CompareAndSwap(int32(domain.StateUninitialized), int32(domain.StateLoading)) {
		return domain.ErrAlreadyLoaded
	}

	logger.Section("Index Load")
	res, err := s.load(ctx, path)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrIndexLoad, err)
		logger.Error("Knowledge base unavailable: %v", err)
		s.result.Store(&loadResult{err: err})
		s.state.Store(int32(domain.StateDegraded))
		return err
	}

	s.result.Store(res)
	s.state.Store(int32(domain.StateReady))
	logger.Info("Loaded index %s: %d chunks (%s, %d dims)",
		path, res.manifest.ChunkCount, res.manifest.EmbeddingModel, res.manifest.Dimensions)
	return nil
}

func (s *RetrievalService) load(ctx context.Context, path string) (*loadResult, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	idx, err := s.store.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	m := idx.Manifest
	if model := s.embedder.ModelName(); m.EmbeddingModel != model {
		return nil, fmt.Errorf("%w: index built with %q, service uses %q",
			domain.ErrEmbeddingMismatch, m.EmbeddingModel, model)
	}
	if dims := s.embedder.Dimensions(); dims > 0 && len(idx.Chunks) > 0 && m.Dimensions != dims {
		return nil, fmt.Errorf("%w: index has %d dimensions, service uses %d",
			domain.ErrEmbeddingMismatch, m.Dimensions, dims)
	}

	vectors, err := s.newIndex(m.Dimensions, idx.Chunks)
	if err != nil {
		return nil, fmt.Errorf("build vector index: %w", err)
	}

	return &loadResult{manifest: m, chunks: idx.Chunks, vectors: vectors}, nil
}

// Query returns the top k chunks for text. It never fails; the outcome
// status says whether hits were found, none matched, or the knowledge
// base could not be consulted.
func (s *RetrievalService) Query(ctx context.Context, text string, k int) domain.QueryOutcome {
	if s.State() != domain.StateReady {
		return domain.QueryOutcome{Status: domain.OutcomeUnavailable, Err: s.LoadError()}
	}
	res := s.result.Load()

	if k <= 0 {
		k = s.cfg.TopK
	}
	if strings.TrimSpace(text) == "" || res.vectors.Len() == 0 {
		return domain.QueryOutcome{Status: domain.OutcomeNoResults}
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
		logger.Warn("Query embedding failed: %v", err)
		return domain.QueryOutcome{Status: domain.OutcomeError, Err: err}
	}

	hits, err := res.vectors.Search(ctx, vec, k)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return domain.QueryOutcome{Status: domain.OutcomeError, Err: err}
	}

	scored := make([]domain.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		if s.cfg.MinScore > 0 && h.Similarity < s.cfg.MinScore {
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: res.chunks[h.Offset], Score: h.Similarity})
	}

	if len(scored) == 0 {
		logger.Debug("No chunks matched %q", text)
		return domain.QueryOutcome{Status: domain.OutcomeNoResults}
	}
	logger.Debug("Matched %d chunks for %q (top score %.3f)", len(scored), text, scored[0].Score)
	return domain.QueryOutcome{Status: domain.OutcomeOK, Hits: scored}
}

// State returns the current lifecycle state.
func (s *RetrievalService) State() domain.ServiceState {
	return domain.ServiceState(s.state.Load())
}

// Manifest returns the loaded manifest, or nil before a successful Load.
func (s *RetrievalService) Manifest() *domain.Manifest {
	res := s.result.Load()
	if res == nil || res.err != nil {
		return nil
	}
	m := res.manifest
	return &m
}

// LoadError returns the error that put the service in Degraded.
func (s *RetrievalService) LoadError() error {
	if res := s.result.Load(); res != nil {
		return res.err
	}
	return nil
}
