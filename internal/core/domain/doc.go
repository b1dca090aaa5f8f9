// Package domain defines the core business entities for docindex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: The text of one PDF page
//   - TableRegion: A detected table grid and its textual surrogate
//   - ImageRegion: An embedded image and its textual surrogate
//   - IndexEntry: An embedded chunk held by a vector index
//   - AppSettings: Runtime configuration
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
