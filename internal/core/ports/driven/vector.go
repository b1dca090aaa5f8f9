package driven

import "github.com/medgenius/docindex/internal/core/domain"

// VectorIndex is an accumulating set of embedded chunks.
// Implementations are not safe for concurrent mutation; callers serialise access.
type VectorIndex interface {
	// Add inserts entries. All vectors must share the index dimension.
	Add(entries ...domain.IndexEntry) error

	// Merge copies every entry of other into this index.
	// No state is shared with other after the call returns.
	Merge(other VectorIndex) error

	// Entries returns the entries in insertion order.
	Entries() []domain.IndexEntry

	// Len returns the number of entries.
	Len() int

	// Dimensions returns the vector size, or 0 for an empty index.
	Dimensions() int
}

// VectorIndexFactory creates empty vector indexes.
type VectorIndexFactory interface {
	New() VectorIndex
}
