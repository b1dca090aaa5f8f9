// Package sqlite persists vector indexes as SQLite database files.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Each saved index is a directory holding two files:
//
//   - index.db: the entries table (text, source metadata and embedding blob)
//   - index.toml: a manifest with the format version, dimensions and entry count
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Embeddings
//
// Vectors are stored as little-endian float32 blobs.
package sqlite
