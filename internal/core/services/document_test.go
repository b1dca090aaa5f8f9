package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgenius/docindex/internal/adapters/driven/vector/flat"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/postprocessors/chunker"
)

func newDocumentIndexer(opener *mockOpener, detector *mockTableDetector, vision *mockVision, progress *mockProgress) *DocumentIndexer {
	pipeline := NewPagePipeline(
		NewTableExtractor(detector),
		NewImageExtractor(mockDecoder{}, NewContentDescriber(vision, newMockPromptStore(), 1000), 1),
		chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(10)),
		&mockEmbedder{},
		flat.NewFactory(),
	)
	if progress == nil {
		return NewDocumentIndexer(opener, pipeline, nil)
	}
	return NewDocumentIndexer(opener, pipeline, progress)
}

// Page 1 has text only; page 2 has a 2x2 table with an empty cell under a
// value and one decodable image.
func TestDocumentIndexer_TwoPageDocument(t *testing.T) {
	doc := &mockDocument{
		path: "/tmp/pdfs/report.pdf",
		pages: []domain.Page{
			{Number: 0, Text: "Patient admitted with fever."},
			{Number: 1, Text: ""},
		},
		images: map[int][]domain.ImageRegion{1: imageRegions(1, "ok")},
	}
	detector := &mockTableDetector{tables: map[int][]domain.TableRegion{
		1: {{Page: 1, Rows: [][]string{{"Drug", "Dose"}, {"A", "1"}, {"", "2"}}}},
	}}
	vision := &mockVision{response: "A bar chart."}
	progress := &mockProgress{}
	indexer := newDocumentIndexer(newMockOpener(doc), detector, vision, progress)

	idx, err := indexer.BuildIndex(context.Background(), doc.path)

	require.NoError(t, err)
	require.NotNil(t, idx)

	var texts []string
	for _, e := range idx.Entries() {
		texts = append(texts, e.Text)
	}
	all := strings.Join(texts, "\n")

	assert.Contains(t, all, "Patient admitted with fever.")
	assert.Contains(t, all, "2:{0:{A}")
	assert.Contains(t, all, "[Description Image #0 of this page] A bar chart.")

	assert.Equal(t, 1, doc.loads)
	assert.Equal(t, 1, doc.closed)
	assert.Equal(t, []string{"vectorizing"}, progress.starts)
	assert.Equal(t, 2, progress.added)
	assert.Equal(t, 1, progress.done)
}

func TestDocumentIndexer_NoContent(t *testing.T) {
	doc := &mockDocument{
		path:  "blank.pdf",
		pages: []domain.Page{{Number: 0, Text: "   "}, {Number: 1, Text: "\n\n"}},
	}
	indexer := newDocumentIndexer(newMockOpener(doc), &mockTableDetector{}, &mockVision{}, nil)

	idx, err := indexer.BuildIndex(context.Background(), "blank.pdf")

	require.NoError(t, err)
	assert.Nil(t, idx)
	assert.Equal(t, 1, doc.closed)
}

func TestDocumentIndexer_LaterPageEstablishesIndex(t *testing.T) {
	doc := &mockDocument{
		path:  "late.pdf",
		pages: []domain.Page{{Number: 0}, {Number: 1}, {Number: 2, Text: "finally"}},
	}
	indexer := newDocumentIndexer(newMockOpener(doc), &mockTableDetector{}, &mockVision{}, nil)

	idx, err := indexer.BuildIndex(context.Background(), "late.pdf")

	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 2, idx.Entries()[0].Source.Page)
}

func TestDocumentIndexer_ClosesOnError(t *testing.T) {
	doc := &mockDocument{
		path:  "broken.pdf",
		pages: []domain.Page{{Number: 0, Text: "text"}},
	}
	indexer := newDocumentIndexer(newMockOpener(doc), &mockTableDetector{err: errMockFailure}, &mockVision{}, nil)

	_, err := indexer.BuildIndex(context.Background(), "broken.pdf")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errMockFailure))
	assert.Contains(t, err.Error(), "page 0")
	assert.Equal(t, 1, doc.closed)
}

func TestDocumentIndexer_LoadTextError(t *testing.T) {
	doc := &mockDocument{path: "x.pdf", loadErr: errMockFailure}
	indexer := newDocumentIndexer(newMockOpener(doc), &mockTableDetector{}, &mockVision{}, nil)

	_, err := indexer.BuildIndex(context.Background(), "x.pdf")

	assert.True(t, errors.Is(err, errMockFailure))
	assert.Equal(t, 1, doc.closed)
}

func TestDocumentIndexer_OpenError(t *testing.T) {
	indexer := newDocumentIndexer(newMockOpener(), &mockTableDetector{}, &mockVision{}, nil)

	_, err := indexer.BuildIndex(context.Background(), "missing.pdf")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDocumentIndexer_Cancelled(t *testing.T) {
	doc := &mockDocument{path: "c.pdf", pages: []domain.Page{{Text: "a"}}}
	indexer := newDocumentIndexer(newMockOpener(doc), &mockTableDetector{}, &mockVision{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := indexer.BuildIndex(ctx, "c.pdf")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, doc.closed)
}
