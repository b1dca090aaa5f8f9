// Package cli implements the docindex command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driving"
	"github.com/medgenius/docindex/internal/logger"
)

var version = "dev"

// Flags.
var (
	configPath string
	verbose    bool
	bucketName string
	pdfSource  string
	preprocess bool
)

// SettingsLoader opens the settings service backed by a config file.
// An empty path selects the default location.
type SettingsLoader func(configPath string) (driving.SettingsService, error)

// Pipeline is the set of services one indexing run uses.
type Pipeline struct {
	Stager    driving.Stager
	Indexer   driving.BatchIndexer
	Publisher driving.Publisher

	// Close releases clients created for the run. May be nil.
	Close func() error
}

// PipelineBuilder creates the services for a run from resolved settings.
type PipelineBuilder func(ctx context.Context, settings *domain.AppSettings) (*Pipeline, error)

var (
	settingsLoader  SettingsLoader
	pipelineBuilder PipelineBuilder
	settingsService driving.SettingsService
)

// Configure sets how commands reach the core.
func Configure(loader SettingsLoader, builder PipelineBuilder) {
	settingsLoader = loader
	pipelineBuilder = builder
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "docindex",
	Short: "Index PDF documents into a vector database",
	Long: `Stages PDF documents, indexes them and publishes the index to S3.

PDFs are copied from a local directory or downloaded from the bucket, split
into chunks, embedded, and saved as a vector index. With --preprocess each
page is also scanned for tables and images, which are described in text and
indexed alongside the page body, one index per document.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runIndex,
}

func init() {
	rootCmd.Flags().StringVar(&bucketName, "bucket_name", "", "S3 bucket for input PDFs and the published index")
	rootCmd.Flags().StringVar(&pdfSource, "pdf_source", "", "where PDFs are staged from: local or download")
	rootCmd.Flags().BoolVar(&preprocess, "preprocess", false, "extract tables and images from every page")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docindex/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadSettings(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsLoader == nil {
		return nil
	}
	svc, err := settingsLoader(configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settingsService = svc
	return nil
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if pipelineBuilder == nil {
		return errors.New("pipeline not configured")
	}

	ctx := cmd.Context()

	settings, err := resolveSettings()
	if err != nil {
		return err
	}
	logger.Debug("mode=%s source=%s bucket=%s", settings.Index.Mode, settings.Staging.Source, settings.Storage.Bucket)

	pipeline, err := pipelineBuilder(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	if pipeline.Close != nil {
		defer func() {
			if err := pipeline.Close(); err != nil {
				logger.Warn("closing pipeline: %v", err)
			}
		}()
	}

	paths, err := stage(ctx, pipeline.Stager, settings)
	if err != nil {
		return fmt.Errorf("staging failed: %w", err)
	}
	cmd.Println("S3 -> Backend Transport Done.")
	logger.Info("staged %d PDFs in %s", len(paths), settings.Staging.Dir)

	result, err := pipeline.Indexer.IndexAll(ctx, paths, settings.Index.Mode)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	for _, f := range result.Failures {
		cmd.PrintErrln(warnStyle.Render(fmt.Sprintf("skipped %s: %v", f.Path, f.Err)))
	}

	report, err := pipeline.Publisher.Publish(ctx, result, settings.Index.LocalDir,
		settings.Storage.Bucket, settings.Storage.IndexPrefix)
	if err != nil {
		if report != nil {
			for _, f := range report.Failed {
				cmd.PrintErrln(errorStyle.Render(fmt.Sprintf("upload failed %s: %v", f.Key, f.Err)))
			}
		}
		return fmt.Errorf("publishing failed: %w", err)
	}

	cmd.Println(successStyle.Render("Vector DB files uploaded to " + report.Destination))
	return nil
}

// resolveSettings applies command line overrides to the stored settings.
func resolveSettings() (*domain.AppSettings, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if bucketName != "" {
		settings.Storage.Bucket = bucketName
	}
	if pdfSource != "" {
		source := domain.PDFSource(strings.ToLower(pdfSource))
		if !source.IsValid() {
			return nil, fmt.Errorf("%w: --pdf_source must be %q or %q, got %q",
				domain.ErrInvalidInput, domain.PDFSourceLocal, domain.PDFSourceDownload, pdfSource)
		}
		settings.Staging.Source = source
	}
	if preprocess {
		settings.Index.Mode = domain.IndexModeRich
	}

	if strings.TrimSpace(settings.Storage.Bucket) == "" {
		return nil, fmt.Errorf("%w: bucket name is required", domain.ErrInvalidInput)
	}
	return settings, nil
}

func stage(ctx context.Context, stager driving.Stager, settings *domain.AppSettings) ([]string, error) {
	if settings.Staging.Source == domain.PDFSourceDownload {
		return stager.FromObjectStore(ctx, settings.Storage.Bucket, settings.Storage.SourcePrefix, settings.Staging.Dir)
	}
	return stager.FromLocal(ctx, settings.Staging.LocalDir, settings.Staging.LocalPrefix, settings.Staging.Dir)
}
