package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/core/ports/driving"
	"github.com/medgenius/docindex/internal/logger"
)

// Ensure BatchOrchestrator implements the interface.
var _ driving.BatchIndexer = (*BatchOrchestrator)(nil)

// BatchOrchestrator indexes a collection of documents.
type BatchOrchestrator struct {
	documents driving.DocumentIndexer
	opener    driven.PDFOpener
	splitter  driven.TextSplitter
	embedder  driven.EmbeddingService
	indexes   driven.VectorIndexFactory
	progress  driven.Progress
}

// NewBatchOrchestrator creates a batch orchestrator.
// documents serves rich mode; opener, splitter, embedder and indexes
// serve plain mode. progress may be nil.
func NewBatchOrchestrator(
	documents driving.DocumentIndexer,
	opener driven.PDFOpener,
	splitter driven.TextSplitter,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexFactory,
	progress driven.Progress,
) *BatchOrchestrator {
	return &BatchOrchestrator{
		documents: documents,
		opener:    opener,
		splitter:  splitter,
		embedder:  embedder,
		indexes:   indexes,
		progress:  progress,
	}
}

// IndexAll indexes paths in the given mode.
func (b *BatchOrchestrator) IndexAll(ctx context.Context, paths []string, mode domain.IndexMode) (*driving.BatchResult, error) {
	switch mode {
	case domain.IndexModeRich:
		return b.indexRich(ctx, paths)
	case domain.IndexModePlain:
		return b.indexPlain(ctx, paths)
	default:
		return nil, fmt.Errorf("%w: index mode %q", domain.ErrInvalidInput, mode)
	}
}

// indexRich builds one index per document. A failing document is logged
// and skipped; documents without content are omitted.
func (b *BatchOrchestrator) indexRich(ctx context.Context, paths []string) (*driving.BatchResult, error) {
	result := &driving.BatchResult{Mode: domain.IndexModeRich}

	bar := startProgress(b.progress, "Processing PDFs", len(paths))
	defer bar.Finish()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		idx, err := b.documents.BuildIndex(ctx, path)
		bar.Add(1)
		if err != nil {
			logger.Warn("passing %s due to %v", path, err)
			result.Failures = append(result.Failures, driving.DocumentFailure{Path: path, Err: err})
			continue
		}
		if idx == nil {
			logger.Info("no content in %s", path)
			continue
		}

		result.Documents = append(result.Documents, driving.DocumentIndex{Path: path, Index: idx})
	}

	logger.Info("rich batch: %d indexed, %d failed", len(result.Documents), len(result.Failures))
	return result, nil
}

// indexPlain chunks the whole-document text of every path and embeds all
// chunks in one pass into a single index. Documents whose text cannot be
// extracted are logged and skipped; empty documents are ignored.
func (b *BatchOrchestrator) indexPlain(ctx context.Context, paths []string) (*driving.BatchResult, error) {
	result := &driving.BatchResult{Mode: domain.IndexModePlain}

	var chunks []string
	var sources []domain.ChunkSource

	bar := startProgress(b.progress, "Processing PDFs", len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			bar.Finish()
			return result, err
		}

		text, err := b.documentText(ctx, path)
		bar.Add(1)
		if err != nil {
			logger.Warn("Error processing %s: %v", path, err)
			result.Failures = append(result.Failures, driving.DocumentFailure{Path: path, Err: err})
			continue
		}
		if text == "" {
			continue
		}

		for _, chunk := range b.splitter.SplitText(text) {
			chunks = append(chunks, chunk)
			sources = append(sources, domain.ChunkSource{Document: path, Page: -1, Kind: domain.ContentText})
		}
	}
	bar.Finish()

	if len(chunks) == 0 {
		return result, nil
	}

	logger.Info("plain batch: embedding %d chunks", len(chunks))
	idx, err := embedSourcedChunks(ctx, b.embedder, b.indexes, chunks, func(i int) domain.ChunkSource {
		return sources[i]
	})
	if err != nil {
		return result, fmt.Errorf("build index: %w", err)
	}

	result.Merged = idx
	return result, nil
}

// documentText concatenates the text of every page of a document.
func (b *BatchOrchestrator) documentText(ctx context.Context, path string) (string, error) {
	doc, err := b.opener.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer func() {
		_ = doc.Close()
	}()

	pages, err := doc.LoadText(ctx)
	if err != nil {
		return "", fmt.Errorf("load text: %w", err)
	}

	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.Text)
	}
	return sb.String(), nil
}
