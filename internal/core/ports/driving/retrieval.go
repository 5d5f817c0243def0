package driving

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// RetrievalService answers similarity queries against a loaded index.
type RetrievalService interface {
	// Load reads the index at path once. On failure the service is
	// Degraded and the returned error is for logging only.
	Load(ctx context.Context, path string) error

	// Query returns the top k chunks for text. It never fails: problems
	// are reported through the outcome status. k <= 0 uses the configured default.
	Query(ctx context.Context, text string, k int) domain.QueryOutcome

	// State returns the current lifecycle state.
	State() domain.ServiceState

	// Manifest returns the loaded index manifest, or nil if none is loaded.
	Manifest() *domain.Manifest

	// LoadError returns the error that put the service in Degraded, if any.
	LoadError() error
}
