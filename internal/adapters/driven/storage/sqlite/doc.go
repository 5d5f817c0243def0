// Package sqlite persists index artifacts as single SQLite files.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. An artifact holds one manifest row and one row per chunk,
// with embeddings stored as little-endian float32 blobs.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomicity
//
// Save writes a complete artifact to a temporary file in the destination
// directory and renames it into place, so a reader never sees a partial index.
//
// # Data Location
//
// By default, the index is stored at ~/.shopdesk/data/knowledge.db
package sqlite
