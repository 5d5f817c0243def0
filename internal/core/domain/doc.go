// Package domain defines the core business entities for shopdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A paginated source document after normalisation
//   - Chunk: A bounded span of source text, the unit of retrieval
//   - Index: The immutable set of embedded chunks plus its Manifest
//   - QueryOutcome: The typed result of a retrieval query
//   - ToolSpec: The uniform description of a lookup tool
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
