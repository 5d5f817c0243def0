package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// mockRetrieval is a mock implementation of driving.RetrievalService.
type mockRetrieval struct {
	mu       sync.Mutex
	outcome  domain.QueryOutcome
	state    domain.ServiceState
	manifest *domain.Manifest
	loadErr  error
	queries  []string
	lastK    int
}

func readyRetrieval(hits ...domain.ScoredChunk) *mockRetrieval {
	status := domain.OutcomeOK
	if len(hits) == 0 {
		status = domain.OutcomeNoResults
	}
	return &mockRetrieval{
		state:   domain.StateReady,
		outcome: domain.QueryOutcome{Status: status, Hits: hits},
		manifest: &domain.Manifest{
			FormatVersion:  domain.IndexFormatVersion,
			EmbeddingModel: "feature-hash-v1",
			Dimensions:     256,
			SourcePath:     "/srv/docs/company_info.pdf",
			ChunkCount:     12,
			ChunkSize:      600,
			ChunkOverlap:   100,
		},
	}
}

func degradedRetrieval(err error) *mockRetrieval {
	return &mockRetrieval{
		state:   domain.StateDegraded,
		loadErr: err,
		outcome: domain.QueryOutcome{Status: domain.OutcomeUnavailable, Err: err},
	}
}

func (m *mockRetrieval) Load(context.Context, string) error {
	return domain.ErrAlreadyLoaded
}

func (m *mockRetrieval) Query(_ context.Context, text string, k int) domain.QueryOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	m.lastK = k
	return m.outcome
}

func (m *mockRetrieval) State() domain.ServiceState { return m.state }

func (m *mockRetrieval) Manifest() *domain.Manifest { return m.manifest }

func (m *mockRetrieval) LoadError() error { return m.loadErr }

func hit(id, content string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: id, Content: content, PageStart: 1, PageEnd: 1},
		Score: score,
	}
}
