package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, source or image format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoContent indicates a document produced nothing to index.
	ErrNoContent = errors.New("no content")

	// AI Service Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or rejected the request.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVisionUnavailable indicates the multimodal description service is not
	// configured or rejected the request.
	ErrVisionUnavailable = errors.New("vision service unavailable")

	// Index Errors.

	// ErrDimensionMismatch indicates vectors of different sizes were combined.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// Storage Errors.

	// ErrStorageUnavailable indicates the object store could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPartialUpload indicates that some files failed to upload while others succeeded.
	ErrPartialUpload = errors.New("partial upload")
)
