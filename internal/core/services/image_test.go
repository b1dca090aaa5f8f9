package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgenius/docindex/internal/core/domain"
)

func imageRegions(page int, data ...string) []domain.ImageRegion {
	regions := make([]domain.ImageRegion, len(data))
	for i, d := range data {
		regions[i] = domain.ImageRegion{Page: page, Position: i, Format: "png", Data: []byte(d)}
	}
	return regions
}

func TestImageExtractor_ExtractImages(t *testing.T) {
	doc := &mockDocument{images: map[int][]domain.ImageRegion{0: imageRegions(0, "ok", "ok")}}
	vision := &mockVision{response: "A diagram."}
	extractor := NewImageExtractor(mockDecoder{}, NewContentDescriber(vision, newMockPromptStore(), 1000), 1)

	surrogates, err := extractor.ExtractImages(context.Background(), doc, 0)

	require.NoError(t, err)
	require.Len(t, surrogates, 2)
	assert.Equal(t, "[Description Image #0 of this page] A diagram.", surrogates[0].Text())
	assert.Equal(t, "[Description Image #1 of this page] A diagram.", surrogates[1].Text())
	assert.True(t, surrogates[0].OK())
}

// Any subset of images may fail; exactly K surrogates always come back.
func TestImageExtractor_FailureIsolation(t *testing.T) {
	tests := []struct {
		name        string
		data        []string
		failCalls   map[int]bool
		wantEmpty   []bool
		concurrency int
	}{
		{
			name:      "middle image fails to decode",
			data:      []string{"ok", "bad", "ok"},
			wantEmpty: []bool{false, true, false},
		},
		{
			name:      "all images fail to decode",
			data:      []string{"bad", "bad"},
			wantEmpty: []bool{true, true},
		},
		{
			name:      "description fails for first image",
			data:      []string{"ok", "ok"},
			failCalls: map[int]bool{0: true},
			wantEmpty: []bool{true, false},
		},
		{
			name:        "decode failures with a worker pool",
			data:        []string{"bad", "ok", "bad", "ok", "ok"},
			wantEmpty:   []bool{true, false, true, false, false},
			concurrency: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &mockDocument{images: map[int][]domain.ImageRegion{2: imageRegions(2, tt.data...)}}
			vision := &mockVision{response: "desc", failOn: tt.failCalls}
			extractor := NewImageExtractor(mockDecoder{}, NewContentDescriber(vision, newMockPromptStore(), 1000), tt.concurrency)

			surrogates, err := extractor.ExtractImages(context.Background(), doc, 2)

			require.NoError(t, err)
			require.Len(t, surrogates, len(tt.data))
			for i, s := range surrogates {
				assert.Equal(t, i, s.Position)
				if tt.wantEmpty[i] {
					assert.Empty(t, s.Description, "image %d", i)
					assert.Error(t, s.Err, "image %d", i)
				} else {
					assert.Equal(t, "desc", s.Description, "image %d", i)
				}
			}
		})
	}
}

func TestImageExtractor_PoolKeepsPositionOrder(t *testing.T) {
	data := make([]string, 12)
	for i := range data {
		data[i] = "ok"
	}
	doc := &mockDocument{images: map[int][]domain.ImageRegion{0: imageRegions(0, data...)}}
	vision := &mockVision{response: "d"}
	extractor := NewImageExtractor(mockDecoder{}, NewContentDescriber(vision, newMockPromptStore(), 1000), 4)

	surrogates, err := extractor.ExtractImages(context.Background(), doc, 0)

	require.NoError(t, err)
	require.Len(t, surrogates, 12)
	for i, s := range surrogates {
		assert.Equal(t, i, s.Position)
	}
	assert.Equal(t, 12, vision.calls())
}

func TestImageExtractor_NoImages(t *testing.T) {
	extractor := NewImageExtractor(mockDecoder{}, NewContentDescriber(&mockVision{}, newMockPromptStore(), 1000), 1)

	surrogates, err := extractor.ExtractImages(context.Background(), &mockDocument{}, 0)

	require.NoError(t, err)
	assert.Empty(t, surrogates)
}

func TestImageExtractor_ListErrorPropagates(t *testing.T) {
	doc := &mockDocument{imagesErr: errMockFailure}
	extractor := NewImageExtractor(mockDecoder{}, NewContentDescriber(&mockVision{}, newMockPromptStore(), 1000), 1)

	_, err := extractor.ExtractImages(context.Background(), doc, 0)

	assert.True(t, errors.Is(err, errMockFailure))
}

func TestImageExtractor_Cancelled(t *testing.T) {
	doc := &mockDocument{images: map[int][]domain.ImageRegion{0: imageRegions(0, "ok")}}
	extractor := NewImageExtractor(mockDecoder{}, NewContentDescriber(&mockVision{}, newMockPromptStore(), 1000), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.ExtractImages(ctx, doc, 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewImageExtractor_ClampsConcurrency(t *testing.T) {
	extractor := NewImageExtractor(mockDecoder{}, nil, 0)
	assert.Equal(t, 1, extractor.concurrency)
}
