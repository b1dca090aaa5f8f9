package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/medgenius/docindex/internal/adapters/driven/ai"
	"github.com/medgenius/docindex/internal/adapters/driven/config/file"
	"github.com/medgenius/docindex/internal/adapters/driven/imaging"
	"github.com/medgenius/docindex/internal/adapters/driven/pdf"
	"github.com/medgenius/docindex/internal/adapters/driven/progress"
	"github.com/medgenius/docindex/internal/adapters/driven/storage/s3store"
	"github.com/medgenius/docindex/internal/adapters/driven/storage/sqlite"
	"github.com/medgenius/docindex/internal/adapters/driven/vector/flat"
	"github.com/medgenius/docindex/internal/adapters/driving/cli"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/core/ports/driving"
	"github.com/medgenius/docindex/internal/core/services"
	"github.com/medgenius/docindex/internal/logger"
	"github.com/medgenius/docindex/internal/postprocessors/chunker"
)

// loadSettings opens the settings service on the TOML config file at path,
// or on ~/.docindex/config.toml when path is empty.
func loadSettings(path string) (driving.SettingsService, error) {
	var store *file.ConfigStore
	var err error
	if path == "" {
		store, err = file.NewConfigStore("")
	} else {
		store, err = file.NewConfigStoreAt(path)
	}
	if err != nil {
		return nil, err
	}

	profile := store.GetString("aws.profile")
	validator := ai.NewConfigValidator(ai.WithAWSProfile(profile))
	return services.NewSettingsService(store, validator), nil
}

// buildPipeline constructs the services of one run. AI clients are created
// once here and shared by every document in the batch.
func buildPipeline(ctx context.Context, settings *domain.AppSettings) (*cli.Pipeline, error) {
	objects, err := s3store.Connect(ctx, settings.Storage.Region, settings.Storage.Profile)
	if err != nil {
		return nil, err
	}

	limiter := ai.NewRateLimiter(settings.RateLimit)
	aiOpts := []ai.Option{
		ai.WithAWSProfile(settings.Storage.Profile),
		ai.WithRateLimiter(limiter),
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding, aiOpts...)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}

	var vision driven.VisionModel
	if settings.Index.Mode == domain.IndexModeRich {
		vision, err = ai.CreateVisionModel(ctx, &settings.Vision, aiOpts...)
		if err != nil {
			_ = embedder.Close()
			return nil, fmt.Errorf("vision service: %w", err)
		}
		if vision == nil {
			logger.Warn("vision provider not configured; images will be indexed without descriptions")
		}
	}

	reporter := progress.NewStderr()
	indexes := flat.NewFactory()
	opener := pdf.NewOpener()
	prompts := file.NewPromptStore(settings.Prompts.Path)

	richSplitter := newSplitter(settings.Chunking.Rich, settings.Chunking.Separators)
	plainSplitter := newSplitter(settings.Chunking.Plain, settings.Chunking.Separators)

	describer := services.NewContentDescriber(vision, prompts, settings.Vision.MaxTokens)
	pages := services.NewPagePipeline(
		services.NewTableExtractor(pdf.NewLayoutDetector()),
		services.NewImageExtractor(imaging.NewDecoder(), describer, settings.Vision.Concurrency),
		richSplitter,
		embedder,
		indexes,
	)
	documents := services.NewDocumentIndexer(opener, pages, reporter)

	return &cli.Pipeline{
		Stager:    services.NewStagingService(objects, reporter),
		Indexer:   services.NewBatchOrchestrator(documents, opener, plainSplitter, embedder, indexes, reporter),
		Publisher: services.NewPublishService(sqlite.NewIndexStore(indexes), objects, reporter),
		Close: func() error {
			var errs []error
			errs = append(errs, embedder.Close())
			if vision != nil {
				errs = append(errs, vision.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

func newSplitter(spec domain.ChunkSpec, separators []string) *chunker.Processor {
	return chunker.New(
		chunker.WithChunkSize(spec.Size),
		chunker.WithOverlap(spec.Overlap),
		chunker.WithSeparators(separators),
	)
}
