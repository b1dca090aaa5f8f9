// Package bedrock provides a vision model adapter for Anthropic models served
// by Amazon Bedrock.
package bedrock

import (
	"context"
	"fmt"

	"github.com/medgenius/docindex/internal/adapters/driven/awsclient"
	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Ensure VisionModel implements the interface.
var _ driven.VisionModel = (*VisionModel)(nil)

// Default configuration values.
const (
	DefaultModel     = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	DefaultRegion    = "us-west-2"
	DefaultMaxTokens = 1000

	anthropicVersion = "bedrock-2023-05-31"
)

// Config holds configuration for the Bedrock vision model.
type Config struct {
	// Client invokes the model (required).
	Client awsclient.InvokeModelAPI

	// Model is the Bedrock model id.
	Model string

	// MaxTokens is used when a request does not set its own.
	MaxTokens int
}

// VisionModel describes images with one InvokeModel call per request.
type VisionModel struct {
	client    awsclient.InvokeModelAPI
	model     string
	maxTokens int
}

type messagesRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
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
	StopReason string `json:"stop_reason"`
}

// NewVisionModel creates a Bedrock vision model.
func NewVisionModel(cfg Config) (*VisionModel, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("bedrock: client is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &VisionModel{
		client:    cfg.Client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Describe sends the image followed by the prompt as a single user turn and
// returns the text of the first content block.
func (m *VisionModel) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.maxTokens
	}

	body := messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: req.MediaType,
						Data:      req.Data,
					},
				},
				{Type: "text", Text: req.Prompt},
			},
		}},
	}

	var resp messagesResponse
	if err := awsclient.InvokeJSON(ctx, m.client, m.model, body, &resp); err != nil {
		return "", fmt.Errorf("%w: bedrock: %w", domain.ErrVisionUnavailable, err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("bedrock: no content in response from %s", m.model)
	}

	return resp.Content[0].Text, nil
}

// ModelName returns the Bedrock model id.
func (m *VisionModel) ModelName() string {
	return m.model
}

// Ping is a no-op; see the embedding adapter.
func (m *VisionModel) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (m *VisionModel) Close() error {
	return nil
}
