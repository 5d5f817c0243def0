package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/core/services"
	"github.com/custodia-labs/shopdesk/internal/logger"
	"github.com/custodia-labs/shopdesk/internal/normalisers/pdf"
)

const testIndexPath = "/data/knowledge.db"

// mockRetrieval is a mock implementation of driving.RetrievalService.
type mockRetrieval struct {
	outcome domain.QueryOutcome
	state   domain.ServiceState
	queries []string
	lastK   int
}

func (m *mockRetrieval) Load(context.Context, string) error { return domain.ErrAlreadyLoaded }

func (m *mockRetrieval) Query(_ context.Context, text string, k int) domain.QueryOutcome {
	m.queries = append(m.queries, text)
	m.lastK = k
	return m.outcome
}

func (m *mockRetrieval) State() domain.ServiceState { return m.state }
func (m *mockRetrieval) Manifest() *domain.Manifest { return nil }
func (m *mockRetrieval) LoadError() error           { return m.outcome.Err }

// mockEmbedder is a mock implementation of driven.EmbeddingService that
// counts Close calls.
type mockEmbedder struct {
	closed int
}

func (m *mockEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1, 0}, nil }
func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}
func (m *mockEmbedder) Dimensions() int            { return 2 }
func (m *mockEmbedder) ModelName() string          { return "mock" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error {
	m.closed++
	return nil
}

// mockBuilder is a mock implementation of driving.IndexBuilder.
type mockBuilder struct {
	requests []driving.BuildRequest
	err      error
}

func (m *mockBuilder) Build(_ context.Context, req driving.BuildRequest) (*domain.BuildReport, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if req.Progress != nil {
		req.Progress(0, 4)
		req.Progress(4, 4)
	}
	return &domain.BuildReport{
		OutputPath: req.OutputPath,
		Manifest:   testManifest(req.SourcePath),
		Duration:   1500 * time.Millisecond,
	}, nil
}

func testManifest(source string) domain.Manifest {
	return domain.Manifest{
		FormatVersion:  domain.IndexFormatVersion,
		EmbeddingModel: "feature-hash-v1",
		Dimensions:     2,
		ChunkSize:      600,
		ChunkOverlap:   100,
		SourcePath:     source,
		PageCount:      1,
		ChunkCount:     1,
		BuiltAt:        time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

type testEnv struct {
	config    *memory.ConfigStore
	store     *memory.IndexStore
	builder   *mockBuilder
	retrieval *mockRetrieval
}

// setupTestServices replaces the package services with in-memory fakes
// and restores them when the test ends.
func setupTestServices(t *testing.T, config map[string]any) *testEnv {
	t.Helper()

	env := &testEnv{
		config:  memory.NewConfigStore(config),
		store:   memory.NewIndexStore(),
		builder: &mockBuilder{},
		retrieval: &mockRetrieval{
			state: domain.StateReady,
			outcome: domain.QueryOutcome{
				Status: domain.OutcomeOK,
				Hits: []domain.ScoredChunk{{
					Chunk: domain.Chunk{ID: "c1", Content: "Order ORD123 is Shipped.", PageStart: 1, PageEnd: 1},
					Score: 0.87,
				}},
			},
		},
	}

	reg, err := services.NewDefaultToolRegistry(env.retrieval, nil, 0)
	require.NoError(t, err)

	settingsService = services.NewSettingsService(env.config,
		services.WithEnv(func(string) (string, bool) { return "", false }),
		services.WithDefaultIndexPath(testIndexPath),
	)
	indexBuilder = env.builder
	indexStore = env.store
	retrievalService = env.retrieval
	toolRegistry = reg
	checkPDFTool = func() error { return nil }
	logger.SetOutput(io.Discard)

	t.Cleanup(func() {
		settingsService = nil
		indexBuilder = nil
		indexStore = nil
		retrievalService = nil
		toolRegistry = nil
		templateStore = nil
		openEmbedders = nil
		checkPDFTool = pdf.CheckAvailable
		newBuildEmbedder = embedding.NewAndValidate
		newQueryEmbedder = embedding.New
		logger.SetOutput(os.Stderr)
	})
	return env
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		verbose, quiet = false, false
		logger.SetVerbose(false)
		logger.SetQuiet(false)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
