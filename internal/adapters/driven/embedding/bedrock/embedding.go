// Package bedrock provides an embedding service adapter using Amazon Bedrock
// Titan text embedding models.
package bedrock

import (
	"context"
	"fmt"

	"github.com/medgenius/docindex/internal/adapters/driven/awsclient"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "amazon.titan-embed-text-v1"
	DefaultRegion     = "us-east-1"
	DefaultDimensions = 1536
)

// Config holds configuration for the Bedrock embedding service.
type Config struct {
	// Client invokes the model (required).
	Client awsclient.InvokeModelAPI

	// Model is the Bedrock model id (default: amazon.titan-embed-text-v1).
	Model string

	// Dimensions is the embedding vector size (default: 1536).
	Dimensions int
}

// EmbeddingService generates embeddings with one InvokeModel call per text.
type EmbeddingService struct {
	client     awsclient.InvokeModelAPI
	model      string
	dimensions int
}

type titanRequest struct {
	InputText string `json:"inputText"`
}

type titanResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// NewEmbeddingService creates a Bedrock embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("bedrock: client is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     cfg.Client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp titanResponse
	if err := awsclient.InvokeJSON(ctx, s.client, s.model, titanRequest{InputText: text}, &resp); err != nil {
		return nil, fmt.Errorf("%w: bedrock: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock: empty embedding from %s", s.model)
	}
	return resp.Embedding, nil
}

// EmbedBatch embeds texts one at a time, in order. Titan has no batch API.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the Bedrock model id.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping is a no-op. Bedrock has no inference-free probe for a model, and
// credential problems surface on the first Embed call.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
