package driving

import "context"

// Stager places input documents in a local staging directory.
type Stager interface {
	// FromObjectStore downloads every .pdf object under prefix into dir.
	// Returns the local paths of the files staged.
	FromObjectStore(ctx context.Context, bucket, prefix, dir string) ([]string, error)

	// FromLocal copies every .pdf file in srcDir whose name starts with
	// prefix into dir. Returns the local paths of the files staged.
	FromLocal(ctx context.Context, srcDir, prefix, dir string) ([]string, error)
}
