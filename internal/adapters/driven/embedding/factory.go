// Package embedding creates the configured embedding service.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// New creates the embedding service described by settings, throttled to
// settings.RequestsPerSecond when that is positive. Models missing from
// domain.EmbeddingDimensions report zero dimensions unless
// settings.Dimensions is set; the index then takes the width of the
// vectors the provider returns.
func New(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s requires an API key (set OPENAI_API_KEY or embedding.api_key)",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	timeout := time.Duration(settings.TimeoutSeconds) * time.Second
	dims := settings.ResolvedDimensions()

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.ProviderOpenAI:
		s, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeout,
			Dimensions: dims,
		})
		if err != nil {
			return nil, err
		}
		svc = s

	case domain.ProviderOllama:
		svc = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeout,
			Dimensions: dims,
		})

	case domain.ProviderHashing:
		svc = hashing.NewEmbeddingService(hashing.Config{
			Model:      settings.Model,
			Dimensions: dims,
		})
	}

	return ratelimit.Wrap(svc, ratelimit.Config{
		RequestsPerSecond: settings.RequestsPerSecond,
		BurstSize:         1,
	}), nil
}

// NewAndValidate creates the embedding service and checks connectivity.
// Returns an error with guidance when the provider is unreachable.
func NewAndValidate(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := New(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		hint := "check embedding.api_key and embedding.base_url"
		if settings.Provider.IsLocal() {
			hint = "is the local server running at embedding.base_url?"
		}
		return nil, fmt.Errorf("%w: service unreachable (%w); %s, see 'shopdesk settings show'",
			domain.ErrEmbeddingUnavailable, err, hint)
	}

	return svc, nil
}
