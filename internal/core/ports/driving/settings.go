package driving

import "github.com/medgenius/docindex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetVisionProvider configures the vision provider.
	SetVisionProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that current settings are complete.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateVisionConfig validates the current vision configuration by pinging the provider.
	ValidateVisionConfig() error
}
