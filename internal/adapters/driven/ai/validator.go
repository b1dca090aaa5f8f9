package ai

import (
	"context"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations by creating the
// service and pinging it.
type ConfigValidator struct {
	opts []Option
}

// NewConfigValidator creates a new AI config validator. opts are passed to
// the factory for every check.
func NewConfigValidator(opts ...Option) *ConfigValidator {
	return &ConfigValidator{opts: opts}
}

// ValidateEmbedding returns nil if config is valid or not configured.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	ctx := context.Background()
	svc, err := CreateEmbeddingService(ctx, config, v.opts...)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ValidateVision returns nil if config is valid or not configured.
func (v *ConfigValidator) ValidateVision(config *domain.VisionSettings) error {
	ctx := context.Background()
	model, err := CreateVisionModel(ctx, config, v.opts...)
	if err != nil || model == nil {
		return err
	}
	defer model.Close()
	return ping(ctx, model.Ping)
}
