// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Build Path
//
//   - Normaliser / NormaliserRegistry: turns the source file into a paginated Document
//   - PostProcessor / PostProcessorPipeline: splits the Document into overlapping chunks
//   - EmbeddingService: turns chunk text into vectors
//   - IndexStore: persists the finished index atomically
//
// # Query Path
//
//   - IndexStore: loads the index once at startup
//   - VectorIndex: exact top-k similarity search over the loaded vectors
//   - EmbeddingService: embeds the query with the same model used at build time
//
// # Shared
//
//   - ConfigStore: application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
