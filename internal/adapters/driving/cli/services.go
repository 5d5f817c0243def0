package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/core/services"
	"github.com/custodia-labs/shopdesk/internal/logger"
	"github.com/custodia-labs/shopdesk/internal/normalisers"
	"github.com/custodia-labs/shopdesk/internal/postprocessors"
)

// Services used by commands. Each is built on first use from the effective
// settings; tests assign mocks directly.
var (
	settingsService  driving.SettingsService
	indexBuilder     driving.IndexBuilder
	retrievalService driving.RetrievalService
	toolRegistry     driving.ToolRegistry
	indexStore       driven.IndexStore
	templateStore    driven.TemplateStore
)

// Embedding constructors. The build path pings the provider first so an
// unreachable server fails before any document is read.
var (
	newBuildEmbedder = embedding.NewAndValidate
	newQueryEmbedder = embedding.New
)

// openEmbedders holds every embedding service created above. closeServices
// releases them.
var openEmbedders []driven.EmbeddingService

func trackEmbedder(e driven.EmbeddingService) driven.EmbeddingService {
	openEmbedders = append(openEmbedders, e)
	return e
}

// closeServices closes the tracked embedders. Calling it again is a no-op.
func closeServices() {
	for _, e := range openEmbedders {
		if err := e.Close(); err != nil {
			logger.Debug("close embedder %s: %v", e.ModelName(), err)
		}
	}
	openEmbedders = nil
}

func getSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}

	store, err := file.NewConfigStore(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	var opts []services.SettingsOption
	if p, err := sqlite.DefaultPath(); err == nil {
		opts = append(opts, services.WithDefaultIndexPath(p))
	}
	settingsService = services.NewSettingsService(store, opts...)
	return settingsService, nil
}

func loadSettings() (*domain.Settings, error) {
	svc, err := getSettingsService()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func getIndexStore() driven.IndexStore {
	if indexStore == nil {
		indexStore = sqlite.NewIndexStore()
	}
	return indexStore
}

func getIndexBuilder(ctx context.Context, settings *domain.Settings) (driving.IndexBuilder, error) {
	if indexBuilder != nil {
		return indexBuilder, nil
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newBuildEmbedder(ctx, settings.Embedding)
	if err != nil {
		return nil, err
	}
	trackEmbedder(embedder)

	reg := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(reg)
	pipeline, err := reg.BuildPipeline(domain.PipelineConfigFor(settings.Chunking))
	if err != nil {
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	indexBuilder = services.NewIndexBuilder(
		normalisers.FileLoader{},
		normalisers.DefaultRegistry(),
		pipeline,
		embedder,
		getIndexStore(),
		services.IndexBuilderConfig{
			Chunking:  settings.Chunking,
			BatchSize: settings.Embedding.BatchSize,
		},
	)
	return indexBuilder, nil
}

// getRetrievalService returns a loaded retrieval service. A missing or
// unusable index, or an unconfigured embedding provider, yields a Degraded
// service rather than an error.
func getRetrievalService(ctx context.Context, settings *domain.Settings) driving.RetrievalService {
	if retrievalService != nil {
		return retrievalService
	}

	var embedder driven.EmbeddingService
	if e, err := newQueryEmbedder(settings.Embedding); err != nil {
		logger.Warn("Embedding provider not available: %v", err)
	} else {
		embedder = trackEmbedder(e)
	}

	svc := services.NewRetrievalService(embedder, getIndexStore(), flat.Build, services.RetrievalConfig{
		TopK:     settings.Retrieval.TopK,
		MinScore: settings.Retrieval.MinScore,
	})
	// Load failures leave svc Degraded and are already logged.
	_ = svc.Load(ctx, settings.Paths.Index)

	retrievalService = svc
	return retrievalService
}

func getTemplateStore() (driven.TemplateStore, error) {
	if templateStore != nil {
		return templateStore, nil
	}
	store, err := file.NewTemplateStore("")
	if err != nil {
		return nil, fmt.Errorf("open template store: %w", err)
	}
	templateStore = store
	return templateStore, nil
}

func getToolRegistry(ctx context.Context, settings *domain.Settings) (driving.ToolRegistry, error) {
	if toolRegistry != nil {
		return toolRegistry, nil
	}

	templates, err := getTemplateStore()
	if err != nil {
		return nil, err
	}
	reg, err := services.NewDefaultToolRegistry(getRetrievalService(ctx, settings), templates, settings.Retrieval.TopK)
	if err != nil {
		return nil, err
	}
	toolRegistry = reg
	return toolRegistry, nil
}
