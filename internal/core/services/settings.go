package services

import (
	"fmt"
	"strings"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBucket          = "storage.bucket"
	keyRegion          = "storage.region"
	keySourcePrefix    = "storage.source_prefix"
	keyIndexPrefix     = "storage.index_prefix"
	keyAWSProfile      = "aws.profile"
	keyStagingSource   = "staging.source"
	keyStagingLocalDir = "staging.local_dir"
	keyStagingPrefix   = "staging.local_prefix"
	keyStagingDir      = "staging.dir"
	keyIndexMode       = "index.mode"
	keyIndexLocalDir   = "index.local_dir"
	keyRichSize        = "chunking.rich.size"
	keyRichOverlap     = "chunking.rich.overlap"
	keyPlainSize       = "chunking.plain.size"
	keyPlainOverlap    = "chunking.plain.overlap"
	keySeparators      = "chunking.separators"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedRegion     = "embedding.region"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyVisionProvider  = "vision.provider"
	keyVisionModel     = "vision.model"
	keyVisionRegion    = "vision.region"
	keyVisionBaseURL   = "vision.base_url"
	keyVisionAPIKey    = "vision.api_key"
	keyVisionMaxTokens = "vision.max_tokens"
	keyVisionWorkers   = "vision.concurrency"
	keyPromptsPath     = "prompts.path"
	keyRateLimitRPS    = "ratelimit.requests_per_second"
	keyRateLimitBurst  = "ratelimit.burst"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Bucket:       s.getString(keyBucket, defaults.Storage.Bucket),
			Region:       s.getString(keyRegion, defaults.Storage.Region),
			SourcePrefix: s.getRaw(keySourcePrefix, defaults.Storage.SourcePrefix),
			IndexPrefix:  s.getRaw(keyIndexPrefix, defaults.Storage.IndexPrefix),
			Profile:      s.getString(keyAWSProfile, defaults.Storage.Profile),
		},
		Staging: domain.StagingSettings{
			Source:      s.getSource(defaults.Staging.Source),
			LocalDir:    s.getString(keyStagingLocalDir, defaults.Staging.LocalDir),
			LocalPrefix: s.getRaw(keyStagingPrefix, defaults.Staging.LocalPrefix),
			Dir:         s.getString(keyStagingDir, defaults.Staging.Dir),
		},
		Index: domain.IndexSettings{
			Mode:     s.getMode(defaults.Index.Mode),
			LocalDir: s.getString(keyIndexLocalDir, defaults.Index.LocalDir),
		},
		Chunking: domain.ChunkingSettings{
			Rich: domain.ChunkSpec{
				Size:    s.getInt(keyRichSize, defaults.Chunking.Rich.Size),
				Overlap: s.getInt(keyRichOverlap, defaults.Chunking.Rich.Overlap),
			},
			Plain: domain.ChunkSpec{
				Size:    s.getInt(keyPlainSize, defaults.Chunking.Plain.Size),
				Overlap: s.getInt(keyPlainOverlap, defaults.Chunking.Plain.Overlap),
			},
			Separators: s.getStringSlice(keySeparators, defaults.Chunking.Separators),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			Region:   s.getString(keyEmbedRegion, defaults.Embedding.Region),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Vision: domain.VisionSettings{
			Provider:    s.getProvider(keyVisionProvider, defaults.Vision.Provider),
			Model:       s.getString(keyVisionModel, defaults.Vision.Model),
			Region:      s.getString(keyVisionRegion, defaults.Vision.Region),
			BaseURL:     s.configStore.GetString(keyVisionBaseURL),
			APIKey:      s.configStore.GetString(keyVisionAPIKey),
			MaxTokens:   s.getInt(keyVisionMaxTokens, defaults.Vision.MaxTokens),
			Concurrency: s.getInt(keyVisionWorkers, defaults.Vision.Concurrency),
		},
		Prompts: domain.PromptSettings{
			Path: s.getString(keyPromptsPath, defaults.Prompts.Path),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateLimitRPS, defaults.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateLimitBurst, defaults.RateLimit.Burst),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyBucket, settings.Storage.Bucket},
		{keyRegion, settings.Storage.Region},
		{keySourcePrefix, settings.Storage.SourcePrefix},
		{keyIndexPrefix, settings.Storage.IndexPrefix},
		{keyAWSProfile, settings.Storage.Profile},
		{keyStagingSource, settings.Staging.Source.String()},
		{keyStagingLocalDir, settings.Staging.LocalDir},
		{keyStagingPrefix, settings.Staging.LocalPrefix},
		{keyStagingDir, settings.Staging.Dir},
		{keyIndexMode, settings.Index.Mode.String()},
		{keyIndexLocalDir, settings.Index.LocalDir},
		{keyRichSize, settings.Chunking.Rich.Size},
		{keyRichOverlap, settings.Chunking.Rich.Overlap},
		{keyPlainSize, settings.Chunking.Plain.Size},
		{keyPlainOverlap, settings.Chunking.Plain.Overlap},
		{keySeparators, settings.Chunking.Separators},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedRegion, settings.Embedding.Region},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyVisionProvider, settings.Vision.Provider.String()},
		{keyVisionModel, settings.Vision.Model},
		{keyVisionRegion, settings.Vision.Region},
		{keyVisionBaseURL, settings.Vision.BaseURL},
		{keyVisionMaxTokens, settings.Vision.MaxTokens},
		{keyVisionWorkers, settings.Vision.Concurrency},
		{keyPromptsPath, settings.Prompts.Path},
		{keyRateLimitRPS, settings.RateLimit.RequestsPerSecond},
		{keyRateLimitBurst, settings.RateLimit.Burst},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.Vision.APIKey != "" {
		if err := s.configStore.Set(keyVisionAPIKey, settings.Vision.APIKey); err != nil {
			return fmt.Errorf("save vision api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !containsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels(), provider)
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetVisionProvider configures the vision provider.
func (s *SettingsService) SetVisionProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid vision provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Vision.Provider = provider
	settings.Vision.Model = modelOrDefault(model, domain.DefaultVisionModels(), provider)
	settings.Vision.BaseURL = baseURLFor(provider, settings.Vision.BaseURL)
	settings.Vision.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are complete.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if strings.TrimSpace(settings.Storage.Bucket) == "" {
		return fmt.Errorf("%w: storage bucket is required", domain.ErrInvalidInput)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if settings.Index.Mode == domain.IndexModeRich && !settings.Vision.IsConfigured() {
		return fmt.Errorf("%w: rich mode requires a vision provider", domain.ErrVisionUnavailable)
	}
	if err := validateChunkSpec("rich", settings.Chunking.Rich); err != nil {
		return err
	}
	if err := validateChunkSpec("plain", settings.Chunking.Plain); err != nil {
		return err
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateVisionConfig validates the current vision configuration by pinging the provider.
func (s *SettingsService) ValidateVisionConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateVision(&settings.Vision)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getRaw returns the stored string even when it is empty.
// Prefixes use "" to mean "everything".
func (s *SettingsService) getRaw(key, defaultVal string) string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getMode(defaultVal domain.IndexMode) domain.IndexMode {
	mode := domain.IndexMode(s.configStore.GetString(keyIndexMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getSource(defaultVal domain.PDFSource) domain.PDFSource {
	source := domain.PDFSource(s.configStore.GetString(keyStagingSource))
	if !source.IsValid() {
		return defaultVal
	}
	return source
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func validateChunkSpec(name string, spec domain.ChunkSpec) error {
	if spec.Size <= 0 || spec.Overlap < 0 || spec.Overlap >= spec.Size {
		return fmt.Errorf("%w: %s chunking size %d overlap %d", domain.ErrInvalidInput, name, spec.Size, spec.Overlap)
	}
	return nil
}

func containsProvider(providers []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range providers {
		if candidate == p {
			return true
		}
	}
	return false
}

func modelOrDefault(model string, defaults map[domain.AIProvider]string, provider domain.AIProvider) string {
	if model != "" {
		return model
	}
	return defaults[provider]
}

// baseURLFor keeps a custom endpoint for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}
