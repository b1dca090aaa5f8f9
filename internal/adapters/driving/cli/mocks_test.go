package cli

import (
	"context"
	"errors"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driving"
)

// fakeSettings implements driving.SettingsService for testing.
type fakeSettings struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	pingErr     error

	provider domain.AIProvider
	model    string
	apiKey   string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{settings: domain.DefaultAppSettings()}
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Save(settings *domain.AppSettings) error {
	f.settings = *settings
	return nil
}

func (f *fakeSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	f.provider, f.model, f.apiKey = provider, model, apiKey
	f.settings.Embedding.Provider = provider
	f.settings.Embedding.Model = model
	f.settings.Embedding.APIKey = apiKey
	return nil
}

func (f *fakeSettings) SetVisionProvider(provider domain.AIProvider, model, apiKey string) error {
	f.provider, f.model, f.apiKey = provider, model, apiKey
	f.settings.Vision.Provider = provider
	f.settings.Vision.Model = model
	f.settings.Vision.APIKey = apiKey
	return nil
}

func (f *fakeSettings) Validate() error { return f.validateErr }
func (f *fakeSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (f *fakeSettings) ValidateEmbeddingConfig() error { return f.pingErr }
func (f *fakeSettings) ValidateVisionConfig() error { return f.pingErr }

// fakeStager records which staging path was taken.
type fakeStager struct {
	calls []string
	args  []string
	paths []string
	err   error
}

func (f *fakeStager) FromObjectStore(_ context.Context, bucket, prefix, dir string) ([]string, error) {
	f.calls = append(f.calls, "download")
	f.args = []string{bucket, prefix, dir}
	return f.paths, f.err
}

func (f *fakeStager) FromLocal(_ context.Context, srcDir, prefix, dir string) ([]string, error) {
	f.calls = append(f.calls, "local")
	f.args = []string{srcDir, prefix, dir}
	return f.paths, f.err
}

// fakeIndexer returns a fixed result.
type fakeIndexer struct {
	mode   domain.IndexMode
	paths  []string
	result *driving.BatchResult
	err    error
}

func (f *fakeIndexer) IndexAll(_ context.Context, paths []string, mode domain.IndexMode) (*driving.BatchResult, error) {
	f.paths, f.mode = paths, mode
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakePublisher records the publish destination.
type fakePublisher struct {
	localDir string
	bucket   string
	prefix   string
	report   *driving.PublishReport
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, _ *driving.BatchResult, localDir, bucket, prefix string) (*driving.PublishReport, error) {
	f.localDir, f.bucket, f.prefix = localDir, bucket, prefix
	if f.report == nil {
		f.report = &driving.PublishReport{Destination: "s3://" + bucket + "/" + prefix}
	}
	return f.report, f.err
}

var errFake = errors.New("fake failure")
