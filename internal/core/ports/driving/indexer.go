package driving

import (
	"context"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// BatchIndexer turns a collection of PDF documents into vector indexes.
type BatchIndexer interface {
	// IndexAll indexes every path. In rich mode each document gets its own
	// index and per-document failures are collected, not returned. In plain
	// mode the batch produces one merged index.
	IndexAll(ctx context.Context, paths []string, mode domain.IndexMode) (*BatchResult, error)
}

// DocumentIndexer builds the index of a single document.
type DocumentIndexer interface {
	// BuildIndex returns nil when the document has no indexable content.
	BuildIndex(ctx context.Context, path string) (driven.VectorIndex, error)
}

// DocumentIndex is the index built for one document.
type DocumentIndex struct {
	// Path is the source document.
	Path string

	// Index holds the document's chunks.
	Index driven.VectorIndex
}

// DocumentFailure records a document skipped during a batch.
type DocumentFailure struct {
	// Path is the source document.
	Path string

	// Err is the reason the document was skipped.
	Err error
}

// BatchResult is the outcome of a batch run.
type BatchResult struct {
	// Mode is the mode the batch ran in.
	Mode domain.IndexMode

	// Documents holds one index per successfully indexed document (rich mode).
	Documents []DocumentIndex

	// Failures lists documents skipped because indexing failed (rich mode).
	Failures []DocumentFailure

	// Merged is the single batch index (plain mode). Nil when nothing was indexed.
	Merged driven.VectorIndex
}

// Empty returns true if the batch produced no index at all.
func (r *BatchResult) Empty() bool {
	if r == nil {
		return true
	}
	return len(r.Documents) == 0 && (r.Merged == nil || r.Merged.Len() == 0)
}

// EntryCount returns the total number of entries across all indexes.
func (r *BatchResult) EntryCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Documents {
		n += d.Index.Len()
	}
	if r.Merged != nil {
		n += r.Merged.Len()
	}
	return n
}
