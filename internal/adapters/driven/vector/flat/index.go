package flat

import (
	"fmt"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var (
	_ driven.VectorIndex        = (*Index)(nil)
	_ driven.VectorIndexFactory = Factory{}
)

// Index holds entries in insertion order.
// It is not safe for concurrent mutation.
type Index struct {
	entries   []domain.IndexEntry
	dimension int
}

// New creates an empty index. The dimension is fixed by the first entry.
func New() *Index {
	return &Index{}
}

// Factory creates flat indexes.
type Factory struct{}

// NewFactory returns a factory for flat indexes.
func NewFactory() Factory {
	return Factory{}
}

// New returns an empty index.
func (Factory) New() driven.VectorIndex {
	return New()
}

// Add inserts entries. Entries are copied; the caller keeps ownership of
// its slices.
func (idx *Index) Add(entries ...domain.IndexEntry) error {
	dim := idx.dimension
	for _, e := range entries {
		if len(e.Vector) == 0 {
			return fmt.Errorf("flat: entry %q has no vector: %w", e.ID, domain.ErrInvalidInput)
		}
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return fmt.Errorf("flat: entry %q has %d dimensions, index has %d: %w",
				e.ID, len(e.Vector), dim, domain.ErrDimensionMismatch)
		}
	}

	idx.dimension = dim
	for _, e := range entries {
		idx.entries = append(idx.entries, e.Clone())
	}
	return nil
}

// Merge copies every entry of other into idx.
func (idx *Index) Merge(other driven.VectorIndex) error {
	if other == nil || other.Len() == 0 {
		return nil
	}
	if idx.dimension != 0 && other.Dimensions() != idx.dimension {
		return fmt.Errorf("flat: merge %d into %d dimensions: %w",
			other.Dimensions(), idx.dimension, domain.ErrDimensionMismatch)
	}
	return idx.Add(other.Entries()...)
}

// Entries returns copies of the entries in insertion order.
func (idx *Index) Entries() []domain.IndexEntry {
	out := make([]domain.IndexEntry, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Dimensions returns the vector size, or 0 for an empty index.
func (idx *Index) Dimensions() int {
	return idx.dimension
}
