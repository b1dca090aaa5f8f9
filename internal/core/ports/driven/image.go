package driven

import (
	"context"
	"image"

	"github.com/medgenius/docindex/internal/core/domain"
)

// ImageDecoder turns encoded image bytes into an in-memory image.
type ImageDecoder interface {
	// Decode returns an error if the bytes are not a supported image.
	Decode(region domain.ImageRegion) (image.Image, error)
}

// VisionRequest is a single-turn multimodal description request.
type VisionRequest struct {
	// MediaType is the MIME type of Data, e.g. image/png.
	MediaType string

	// Data is the base64-encoded image.
	Data string

	// Prompt is the instruction sent alongside the image.
	Prompt string

	// MaxTokens caps the response length. 0 uses the adapter default.
	MaxTokens int
}

// VisionModel describes images with a multimodal language model.
type VisionModel interface {
	// Describe returns the first text segment of the model's response.
	Describe(ctx context.Context, req VisionRequest) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
