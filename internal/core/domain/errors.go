package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles a document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Build Errors.

	// ErrSourceNotFound indicates the source document does not exist.
	// Fatal to a build and never retried.
	ErrSourceNotFound = errors.New("source document not found")

	// ErrEmptyDocument indicates the source document holds no text.
	ErrEmptyDocument = errors.New("source document is empty")

	// ErrEmbeddingProvider indicates the external embedding call failed
	// (network, auth, rate limit, malformed response). At build time it
	// aborts the build; at query time it is converted into a fallback answer.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Index Errors.

	// ErrIndexLoad indicates the index artifact could not be loaded.
	// The retrieval service enters degraded mode instead of failing.
	ErrIndexLoad = errors.New("index load failed")

	// ErrIndexNotFound indicates the index artifact does not exist.
	ErrIndexNotFound = errors.New("index artifact not found")

	// ErrIndexCorrupt indicates the index artifact is unreadable or inconsistent.
	ErrIndexCorrupt = errors.New("index artifact corrupt")

	// ErrEmbeddingMismatch indicates the index was built with a different
	// embedding model or dimensionality than the one configured.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrAlreadyLoaded indicates Load was called on a service that already
	// left the Uninitialized state. There is no hot reload.
	ErrAlreadyLoaded = errors.New("index already loaded")

	// Tool Errors.

	// ErrUnknownTool indicates a tool name that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool indicates a tool name registered twice.
	ErrDuplicateTool = errors.New("duplicate tool")
)
