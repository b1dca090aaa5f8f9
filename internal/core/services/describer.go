package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/logger"
)

// imageMediaType is the MIME type of the encoded payload.
const imageMediaType = "image/png"

// ContentDescriber renders an image into a descriptive sentence using a
// multimodal model.
type ContentDescriber struct {
	vision    driven.VisionModel
	prompts   driven.PromptStore
	maxTokens int
}

// NewContentDescriber creates a describer. vision may be nil, in which case
// every description fails with domain.ErrVisionUnavailable.
func NewContentDescriber(vision driven.VisionModel, prompts driven.PromptStore, maxTokens int) *ContentDescriber {
	return &ContentDescriber{
		vision:    vision,
		prompts:   prompts,
		maxTokens: maxTokens,
	}
}

// Describe returns the model's description of img using the prompt stored
// under promptKey. An image that cannot be encoded yields "" and no error.
// Prompt lookup and model failures are returned.
func (d *ContentDescriber) Describe(ctx context.Context, img image.Image, promptKey string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Warn("passing image because of %v", err)
		return "", nil
	}

	if d.vision == nil {
		return "", domain.ErrVisionUnavailable
	}

	prompt, err := d.prompts.Load(promptKey)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", promptKey, err)
	}

	description, err := d.vision.Describe(ctx, driven.VisionRequest{
		MediaType: imageMediaType,
		Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		Prompt:    prompt,
		MaxTokens: d.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}

	return description, nil
}
