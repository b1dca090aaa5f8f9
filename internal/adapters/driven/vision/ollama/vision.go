// Package ollama provides a vision model adapter for local multimodal models
// served by Ollama.
package ollama

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
	DefaultBaseURL   = "http://localhost:11434"
	DefaultModel     = "llava"
	DefaultTimeout   = 300 * time.Second
	DefaultMaxTokens = 1000
)

// Config holds configuration for the Ollama vision model.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the multimodal model to use (default: llava).
	Model string

	// Timeout is the request timeout (default: 300s). Local models on CPU
	// are slow on the first request.
	Timeout time.Duration

	// MaxTokens is used when a request does not set its own.
	MaxTokens int
}

// VisionModel describes images using the Ollama chat API.
type VisionModel struct {
	client    *httpapi.Client
	model     string
	maxTokens int
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type options struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewVisionModel creates a new Ollama vision model.
func NewVisionModel(cfg Config) *VisionModel {
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
		client:    httpapi.New("ollama", cfg.BaseURL, cfg.Timeout),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Describe sends the prompt with the raw base64 image attached. Ollama takes
// images without a media type.
func (m *VisionModel) Describe(ctx context.Context, req driven.VisionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.maxTokens
	}

	body := chatRequest{
		Model: m.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: req.Prompt,
			Images:  []string{req.Data},
		}},
		Options: &options{NumPredict: maxTokens},
	}

	var resp chatResponse
	if err := m.client.PostJSON(ctx, "/api/chat", body, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrVisionUnavailable, err)
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("ollama: empty response from %s", m.model)
	}

	return resp.Message.Content, nil
}

// ModelName returns the name of the model being used.
func (m *VisionModel) ModelName() string {
	return m.model
}

// Ping checks the /api/tags endpoint without running inference.
func (m *VisionModel) Ping(ctx context.Context) error {
	return m.client.Get(ctx, "/api/tags")
}

// Close releases resources.
func (m *VisionModel) Close() error {
	return nil
}
