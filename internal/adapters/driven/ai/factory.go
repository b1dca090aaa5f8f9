// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/medgenius/docindex/internal/adapters/driven/awsclient"
	bedrockembed "github.com/medgenius/docindex/internal/adapters/driven/embedding/bedrock"
	ollamaembed "github.com/medgenius/docindex/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/medgenius/docindex/internal/adapters/driven/embedding/openai"
	anthropicvision "github.com/medgenius/docindex/internal/adapters/driven/vision/anthropic"
	bedrockvision "github.com/medgenius/docindex/internal/adapters/driven/vision/bedrock"
	ollamavision "github.com/medgenius/docindex/internal/adapters/driven/vision/ollama"
	openaivision "github.com/medgenius/docindex/internal/adapters/driven/vision/openai"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// BedrockClientFunc creates a Bedrock runtime client for a region.
type BedrockClientFunc func(ctx context.Context, region, profile string) (awsclient.InvokeModelAPI, error)

type options struct {
	profile string
	limiter *RateLimiter
	bedrock BedrockClientFunc
}

// Option configures service creation.
type Option func(*options)

// WithAWSProfile selects the shared AWS config profile for Bedrock.
func WithAWSProfile(profile string) Option {
	return func(o *options) {
		o.profile = profile
	}
}

// WithRateLimiter paces and retries remote calls through limiter.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

// WithBedrockClient overrides how Bedrock clients are created.
func WithBedrockClient(fn BedrockClientFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.bedrock = fn
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		bedrock: func(ctx context.Context, region, profile string) (awsclient.InvokeModelAPI, error) {
			return awsclient.NewBedrockRuntime(ctx, region, profile)
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, opts ...Option) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	o := newOptions(opts)

	var (
		svc     driven.EmbeddingService
		perItem bool
		err     error
	)
	switch settings.Provider {
	case domain.AIProviderBedrock:
		svc, err = createBedrockEmbedding(ctx, settings, o)
		perItem = true

	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use bedrock, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if o.limiter != nil {
		svc = NewRateLimitedEmbedding(svc, o.limiter, perItem)
	}
	return svc, nil
}

// CreateVisionModel creates the vision model selected by settings.
// Returns nil if the provider is not configured.
func CreateVisionModel(ctx context.Context, settings *domain.VisionSettings, opts ...Option) (driven.VisionModel, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	o := newOptions(opts)

	var (
		model driven.VisionModel
		err   error
	)
	switch settings.Provider {
	case domain.AIProviderBedrock:
		model, err = createBedrockVision(ctx, settings, o)

	case domain.AIProviderAnthropic:
		model, err = anthropicvision.NewVisionModel(anthropicvision.Config{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
		})

	case domain.AIProviderOpenAI:
		model, err = openaivision.NewVisionModel(openaivision.Config{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
		})

	case domain.AIProviderOllama:
		model = ollamavision.NewVisionModel(ollamavision.Config{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			MaxTokens: settings.MaxTokens,
		})

	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if o.limiter != nil {
		model = NewRateLimitedVision(model, o.limiter)
	}
	return model, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates
// connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings, opts ...Option) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrEmbeddingUnavailable)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateVisionModel creates a vision model and validates
// connectivity.
func CreateAndValidateVisionModel(ctx context.Context, settings *domain.VisionSettings, opts ...Option) (driven.VisionModel, error) {
	model, err := CreateVisionModel(ctx, settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVisionUnavailable, err)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: vision provider is not configured", domain.ErrVisionUnavailable)
	}

	if err := ping(ctx, model.Ping); err != nil {
		_ = model.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrVisionUnavailable, err)
	}
	return model, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

func createBedrockEmbedding(ctx context.Context, settings *domain.EmbeddingSettings, o *options) (driven.EmbeddingService, error) {
	client, err := o.bedrock(ctx, settings.Region, o.profile)
	if err != nil {
		return nil, err
	}
	return bedrockembed.NewEmbeddingService(bedrockembed.Config{
		Client:     client,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

func createBedrockVision(ctx context.Context, settings *domain.VisionSettings, o *options) (driven.VisionModel, error) {
	client, err := o.bedrock(ctx, settings.Region, o.profile)
	if err != nil {
		return nil, err
	}
	return bedrockvision.NewVisionModel(bedrockvision.Config{
		Client:    client,
		Model:     settings.Model,
		MaxTokens: settings.MaxTokens,
	})
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
