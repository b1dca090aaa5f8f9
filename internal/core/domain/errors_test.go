package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrNoContent", ErrNoContent},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVisionUnavailable", ErrVisionUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrStorageUnavailable", ErrStorageUnavailable},
		{"ErrPartialUpload", ErrPartialUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrNoContent,
		ErrEmbeddingUnavailable, ErrVisionUnavailable, ErrDimensionMismatch,
		ErrStorageUnavailable, ErrPartialUpload,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("upload index.db: %w", ErrPartialUpload)
	assert.True(t, errors.Is(wrapped, ErrPartialUpload))

	joined := errors.Join(ErrDimensionMismatch, ErrStorageUnavailable)
	assert.True(t, errors.Is(joined, ErrDimensionMismatch))
	assert.True(t, errors.Is(joined, ErrStorageUnavailable))
	assert.False(t, errors.Is(joined, ErrNotFound))
}
