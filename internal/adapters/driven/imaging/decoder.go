// Package imaging decodes embedded PDF images into in-memory images.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	// Registered formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ImageDecoder = (*Decoder)(nil)

// Decoder decodes images by sniffing their content.
// The Format reported by the extractor is only used in error messages.
type Decoder struct{}

// NewDecoder creates a new image decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode returns the decoded image or an error wrapping
// domain.ErrUnsupportedType.
func (d *Decoder) Decode(region domain.ImageRegion) (image.Image, error) {
	if len(region.Data) == 0 {
		return nil, fmt.Errorf("empty %s image: %w", formatName(region.Format), domain.ErrUnsupportedType)
	}

	img, _, err := image.Decode(bytes.NewReader(region.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %v: %w", formatName(region.Format), err, domain.ErrUnsupportedType)
	}

	return img, nil
}

func formatName(format string) string {
	if format == "" {
		return "unknown"
	}
	return format
}
