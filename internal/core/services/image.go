package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/logger"
)

// ImageExtractor turns the embedded images of a page into textual surrogates.
type ImageExtractor struct {
	decoder     driven.ImageDecoder
	describer   *ContentDescriber
	concurrency int
}

// NewImageExtractor creates an image extractor. A concurrency above 1
// describes that many images of a page in parallel.
func NewImageExtractor(decoder driven.ImageDecoder, describer *ContentDescriber, concurrency int) *ImageExtractor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ImageExtractor{
		decoder:     decoder,
		describer:   describer,
		concurrency: concurrency,
	}
}

// ExtractImages returns exactly one surrogate per embedded image, in position
// order. A failed decode or description leaves that surrogate's description
// empty and records the error on it. Only a failure to enumerate the page's
// images, or cancellation, is returned as an error.
func (e *ImageExtractor) ExtractImages(ctx context.Context, doc driven.PDFDocument, page int) ([]domain.ImageSurrogate, error) {
	regions, err := doc.PageImages(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list images on page %d: %w", page, err)
	}

	surrogates := make([]domain.ImageSurrogate, len(regions))

	if e.concurrency == 1 || len(regions) < 2 {
		for i, region := range regions {
			surrogates[i] = e.surrogate(ctx, region)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for i, region := range regions {
			g.Go(func() error {
				surrogates[i] = e.surrogate(ctx, region)
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	described := 0
	for _, s := range surrogates {
		if s.OK() {
			described++
		}
	}
	logger.Debug("page %d: described %d of %d images", page, described, len(surrogates))

	return surrogates, nil
}

func (e *ImageExtractor) surrogate(ctx context.Context, region domain.ImageRegion) domain.ImageSurrogate {
	s := domain.ImageSurrogate{Position: region.Position}

	img, err := e.decoder.Decode(region)
	if err != nil {
		s.Err = fmt.Errorf("decode image #%d: %w", region.Position, err)
		logger.Warn("passing image #%d on page %d: %v", region.Position, region.Page, err)
		return s
	}

	description, err := e.describer.Describe(ctx, img, driven.PromptImageInASentence)
	if err != nil {
		s.Err = err
		logger.Warn("passing image #%d on page %d: %v", region.Position, region.Page, err)
		return s
	}

	s.Description = description
	return s
}
