// Package services implements the driving port interfaces: the index
// builder, the retrieval service, the lookup tool registry and settings.
//
// Services depend only on driven ports. Embedding providers, index
// storage and the vector index are injected by the caller.
package services
