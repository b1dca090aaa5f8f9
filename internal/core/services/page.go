package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// PagePipeline folds the text, tables and images of one page into a
// running vector index.
type PagePipeline struct {
	tables   *TableExtractor
	images   *ImageExtractor
	splitter driven.TextSplitter
	embedder driven.EmbeddingService
	indexes  driven.VectorIndexFactory
}

// NewPagePipeline creates a page pipeline.
func NewPagePipeline(
	tables *TableExtractor,
	images *ImageExtractor,
	splitter driven.TextSplitter,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexFactory,
) *PagePipeline {
	return &PagePipeline{
		tables:   tables,
		images:   images,
		splitter: splitter,
		embedder: embedder,
		indexes:  indexes,
	}
}

// ProcessPage merges the chunks of page into running and returns the result.
// running may be nil; the first modality with content then establishes the
// index, and nil is returned if the page has nothing to index.
//
// Text is folded first, then tables in detection order, then images in
// position order. Whitespace-only text is skipped.
func (p *PagePipeline) ProcessPage(
	ctx context.Context,
	doc driven.PDFDocument,
	page domain.Page,
	running driven.VectorIndex,
) (driven.VectorIndex, error) {
	tables, err := p.tables.ExtractTables(ctx, doc, page.Number)
	if err != nil {
		return running, err
	}

	images, err := p.images.ExtractImages(ctx, doc, page.Number)
	if err != nil {
		return running, err
	}

	source := domain.ChunkSource{Document: doc.Path(), Page: page.Number}

	if page.HasText() {
		source.Kind = domain.ContentText
		if running, err = p.fold(ctx, running, page.Text, source); err != nil {
			return running, err
		}
	}

	for _, table := range tables {
		source.Kind, source.Item = domain.ContentTable, table.Index
		if running, err = p.fold(ctx, running, table.Text, source); err != nil {
			return running, err
		}
	}

	for _, img := range images {
		source.Kind, source.Item = domain.ContentImage, img.Position
		if running, err = p.fold(ctx, running, img.Text(), source); err != nil {
			return running, err
		}
	}

	return running, nil
}

// fold splits and embeds text into a fresh index, then merges it into running.
func (p *PagePipeline) fold(
	ctx context.Context,
	running driven.VectorIndex,
	text string,
	source domain.ChunkSource,
) (driven.VectorIndex, error) {
	mini, err := embedChunks(ctx, p.embedder, p.indexes, p.splitter.SplitText(text), source)
	if err != nil {
		return running, fmt.Errorf("index %s chunks: %w", source.Kind, err)
	}
	if mini == nil {
		return running, nil
	}
	if running == nil {
		return mini, nil
	}
	if err := running.Merge(mini); err != nil {
		return running, fmt.Errorf("merge %s chunks: %w", source.Kind, err)
	}
	return running, nil
}

// embedChunks builds an index from chunks, one entry per chunk.
// Returns nil when there are no chunks.
func embedChunks(
	ctx context.Context,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexFactory,
	chunks []string,
	source domain.ChunkSource,
) (driven.VectorIndex, error) {
	return embedSourcedChunks(ctx, embedder, indexes, chunks, func(int) domain.ChunkSource { return source })
}

// embedSourcedChunks is embedChunks with a per-chunk source.
func embedSourcedChunks(
	ctx context.Context,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexFactory,
	chunks []string,
	sourceOf func(i int) domain.ChunkSource,
) (driven.VectorIndex, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = domain.IndexEntry{
			ID:     uuid.New().String(),
			Text:   chunk,
			Vector: vectors[i],
			Source: sourceOf(i),
		}
	}

	idx := indexes.New()
	if err := idx.Add(entries...); err != nil {
		return nil, fmt.Errorf("add entries: %w", err)
	}
	return idx, nil
}
