// Package openai provides a vision model adapter using OpenAI chat
// completions with an inline image data URI.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/medgenius/docindex/internal/adapters/driven/httpapi"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Ensure VisionModel implements the interface.
var _ driven.VisionModel = (*VisionModel)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-4o-mini"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1000
)

// Config holds configuration for the OpenAI vision model.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens is used when a request does not set its own.
	MaxTokens int
}

// VisionModel describes images using OpenAI chat completions.
type VisionModel struct {
	client    *httpapi.Client
	model     string
	maxTokens int
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewVisionModel creates a new OpenAI vision model.
func NewVisionModel(cfg Config) (*VisionModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &VisionModel{
		client: httpapi.New("openai", cfg.BaseURL, cfg.Timeout,
			httpapi.WithHeader("Authorization", "Bearer "+cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Describe returns the content of the first choice.
func (m *VisionModel) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.maxTokens
	}

	body := chatRequest{
		Model:     m.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI(req.MediaType, req.Data)}},
				{Type: "text", Text: req.Prompt},
			},
		}},
	}

	var resp chatResponse
	if err := m.client.PostJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrVisionUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

func dataURI(mediaType, data string) string {
	return "data:" + mediaType + ";base64," + data
}

// ModelName returns the name of the model being used.
func (m *VisionModel) ModelName() string {
	return m.model
}

// Ping checks the /models endpoint.
func (m *VisionModel) Ping(ctx context.Context) error {
	return m.client.Get(ctx, "/models")
}

// Close releases resources.
func (m *VisionModel) Close() error {
	return nil
}
