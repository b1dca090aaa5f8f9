// Package anthropic provides a vision model adapter using the Anthropic
// Messages API.
package anthropic

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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1000

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic vision model.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxTokens is used when a request does not set its own.
	MaxTokens int
}

// VisionModel describes images using the Anthropic API.
type VisionModel struct {
	client    *httpapi.Client
	model     string
	maxTokens int
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewVisionModel creates a new Anthropic vision model.
func NewVisionModel(cfg Config) (*VisionModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
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
		client: httpapi.New("anthropic", cfg.BaseURL, cfg.Timeout,
			httpapi.WithHeader("x-api-key", cfg.APIKey),
			httpapi.WithHeader("anthropic-version", anthropicVersion)),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Describe returns the first text block of the model's answer.
func (m *VisionModel) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.maxTokens
	}

	body := messagesRequest{
		Model:     m.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{Type: "image", Source: &imageSource{Type: "base64", MediaType: req.MediaType, Data: req.Data}},
				{Type: "text", Text: req.Prompt},
			},
		}},
	}

	var resp messagesResponse
	if err := m.client.PostJSON(ctx, "/v1/messages", body, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrVisionUnavailable, err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: no text content returned")
}

// ModelName returns the name of the model being used.
func (m *VisionModel) ModelName() string {
	return m.model
}

// Ping checks the /v1/models endpoint, which validates the API key without
// running inference.
func (m *VisionModel) Ping(ctx context.Context) error {
	return m.client.Get(ctx, "/v1/models")
}

// Close releases resources.
func (m *VisionModel) Close() error {
	return nil
}
