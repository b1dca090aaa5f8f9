package driven

import "context"

// IndexStore persists vector indexes to a local directory.
type IndexStore interface {
	// Save writes idx into dir, creating dir if needed.
	// Returns the paths of the files written.
	Save(ctx context.Context, idx VectorIndex, dir string) ([]string, error)

	// Load restores an index previously written to dir.
	Load(ctx context.Context, dir string) (VectorIndex, error)

	// Remove deletes an index previously written to dir. Files the store
	// did not write are kept. A dir holding no index is not an error.
	Remove(ctx context.Context, dir string) error
}

// ObjectStore provides access to a bucket-addressed object storage service.
type ObjectStore interface {
	// List returns every key under prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)

	// Download writes the object at key to localPath.
	Download(ctx context.Context, bucket, key, localPath string) error

	// Upload writes the file at localPath to key.
	Upload(ctx context.Context, localPath, bucket, key string) error
}
