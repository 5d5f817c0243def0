package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// mockEmbedder implements driven.EmbeddingService with scripted vectors.
type mockEmbedder struct {
	mu        sync.Mutex
	model     string
	dims      int
	vectorFor func(text string) []float32
	embedErr  error
	batchErr  error
	dropLast  bool // return one vector fewer than requested
	batches   [][]string
	queries   []string
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		model: "mock-embed",
		dims:  2,
		vectorFor: func(text string) []float32 {
			return []float32{float32(len(text)), 1}
		},
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, texts)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.vectorFor(t))
	}
	if m.dropLast && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLoader implements driven.DocumentLoader.
type mockLoader struct {
	raw *domain.RawDocument
	err error
}

func (m *mockLoader) Load(_ context.Context, _ string) (*domain.RawDocument, error) {
	return m.raw, m.err
}

// mockRegistry implements driven.NormaliserRegistry with a fixed document.
type mockRegistry struct {
	doc *domain.Document
	err error
}

func (m *mockRegistry) Normalise(_ context.Context, _ *domain.RawDocument) (*domain.Document, error) {
	return m.doc, m.err
}
func (m *mockRegistry) Register(_ driven.Normaliser)  {}
func (m *mockRegistry) SupportedExtensions() []string { return []string{".txt"} }

// mockPipeline implements driven.PostProcessorPipeline.
type mockPipeline struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockPipeline) Process(_ context.Context, _ *domain.Document) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, len(m.chunks))
	copy(out, m.chunks)
	return out, m.err
}

// failingIndexStore fails every call.
type failingIndexStore struct{}

var errStoreDown = errors.New("disk full")

func (failingIndexStore) Save(_ context.Context, _ string, _ *domain.Index) error {
	return errStoreDown
}

func (failingIndexStore) Load(_ context.Context, _ string) (*domain.Index, error) {
	return nil, errStoreDown
}

// mockRetrieval implements driving.RetrievalService with a fixed outcome.
type mockRetrieval struct {
	mu      sync.Mutex
	outcome domain.QueryOutcome
	lastK   int
	queries []string
}

func (m *mockRetrieval) Load(_ context.Context, _ string) error { return nil }

func (m *mockRetrieval) Query(_ context.Context, text string, k int) domain.QueryOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, text)
	m.lastK = k
	return m.outcome
}

func (m *mockRetrieval) State() domain.ServiceState { return domain.StateReady }
func (m *mockRetrieval) Manifest() *domain.Manifest { return nil }
func (m *mockRetrieval) LoadError() error           { return nil }

// mockTemplates implements driven.TemplateStore.
type mockTemplates struct {
	templates map[string]string
	err       error
}

func (m *mockTemplates) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if t, ok := m.templates[name]; ok {
		return t, nil
	}
	return domain.DefaultQueryTemplates[name], nil
}

func (m *mockTemplates) Dir() string { return "/templates" }

// envMap returns a lookup function backed by vars.
func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}
