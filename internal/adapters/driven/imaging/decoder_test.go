package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/medgenius/docindex/internal/core/domain"
)

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img
}

func encode(t *testing.T, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, enc(&buf, sample()))
	return buf.Bytes()
}

func TestDecoder_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		enc    func(*bytes.Buffer, image.Image) error
	}{
		{"png", "png", func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }},
		{"jpeg", "jpg", func(b *bytes.Buffer, m image.Image) error { return jpeg.Encode(b, m, nil) }},
		{"bmp", "bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }},
		{"tiff", "tif", func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) }},
		// The declared format is not trusted.
		{"mislabelled", "jpg", func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := domain.ImageRegion{Format: tt.format, Data: encode(t, tt.enc)}

			img, err := NewDecoder().Decode(region)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
		})
	}
}

func TestDecoder_Unsupported(t *testing.T) {
	tests := []struct {
		name   string
		region domain.ImageRegion
	}{
		{"empty", domain.ImageRegion{Format: "png"}},
		{"garbage", domain.ImageRegion{Format: "jpx", Data: []byte("not an image")}},
		{"truncated png", domain.ImageRegion{Data: encode(t, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) })[:20]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder().Decode(tt.region)
			assert.ErrorIs(t, err, domain.ErrUnsupportedType)
		})
	}
}
