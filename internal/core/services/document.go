package services

import (
	"context"
	"fmt"

	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/core/ports/driving"
	"github.com/medgenius/docindex/internal/logger"
)

// Ensure DocumentIndexer implements the interface.
var _ driving.DocumentIndexer = (*DocumentIndexer)(nil)

// DocumentIndexer builds one vector index per document by running every
// page through the page pipeline.
type DocumentIndexer struct {
	opener   driven.PDFOpener
	pages    *PagePipeline
	progress driven.Progress
}

// NewDocumentIndexer creates a document indexer. progress may be nil.
func NewDocumentIndexer(opener driven.PDFOpener, pages *PagePipeline, progress driven.Progress) *DocumentIndexer {
	return &DocumentIndexer{
		opener:   opener,
		pages:    pages,
		progress: progress,
	}
}

// BuildIndex returns the merged index of the document at path, or nil when
// no page has any content. The document is closed on every return path.
func (d *DocumentIndexer) BuildIndex(ctx context.Context, path string) (idx driven.VectorIndex, err error) {
	doc, err := d.opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Debug("close %s: %v", path, cerr)
		}
	}()

	// Text is loaded once per document, not per page.
	pages, err := doc.LoadText(ctx)
	if err != nil {
		return nil, fmt.Errorf("load text: %w", err)
	}

	bar := startProgress(d.progress, "vectorizing", len(pages))
	defer bar.Finish()

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx, err = d.pages.ProcessPage(ctx, doc, page, idx)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.Number, err)
		}
		bar.Add(1)
	}

	if idx != nil {
		logger.Debug("indexed %s: %d entries from %d pages", path, idx.Len(), len(pages))
	}
	return idx, nil
}
