package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

func TestContentDescriber_Describe(t *testing.T) {
	vision := &mockVision{response: "A chest X-ray."}
	describer := NewContentDescriber(vision, newMockPromptStore(), 1000)

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	desc, err := describer.Describe(context.Background(), img, driven.PromptImageInASentence)

	require.NoError(t, err)
	assert.Equal(t, "A chest X-ray.", desc)

	require.Len(t, vision.requests, 1)
	req := vision.requests[0]
	assert.Equal(t, "image/png", req.MediaType)
	assert.Equal(t, "Describe this image in one sentence.", req.Prompt)
	assert.Equal(t, 1000, req.MaxTokens)

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestContentDescriber_EncodeFailureYieldsEmpty(t *testing.T) {
	vision := &mockVision{response: "unused"}
	describer := NewContentDescriber(vision, newMockPromptStore(), 1000)

	// PNG cannot encode an image with no pixels.
	desc, err := describer.Describe(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), driven.PromptImageInASentence)

	require.NoError(t, err)
	assert.Equal(t, "", desc)
	assert.Equal(t, 0, vision.calls())
}

func TestContentDescriber_RemoteFailurePropagates(t *testing.T) {
	describer := NewContentDescriber(&mockVision{failAll: true}, newMockPromptStore(), 1000)

	_, err := describer.Describe(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), driven.PromptImageInASentence)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errMockFailure))
}

func TestContentDescriber_UnknownPrompt(t *testing.T) {
	describer := NewContentDescriber(&mockVision{}, newMockPromptStore(), 1000)

	_, err := describer.Describe(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), "missing")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestContentDescriber_NoVisionModel(t *testing.T) {
	describer := NewContentDescriber(nil, newMockPromptStore(), 1000)

	_, err := describer.Describe(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1)), driven.PromptImageInASentence)

	assert.True(t, errors.Is(err, domain.ErrVisionUnavailable))
}
