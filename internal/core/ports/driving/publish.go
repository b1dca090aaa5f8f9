package driving

import "context"

// Publisher persists a batch result locally and mirrors it to object storage.
type Publisher interface {
	// Publish writes the result under localDir and uploads every file to
	// bucket under prefix. Upload failures are isolated per file and
	// reported; the returned error wraps domain.ErrPartialUpload when
	// any file failed.
	Publish(ctx context.Context, result *BatchResult, localDir, bucket, prefix string) (*PublishReport, error)
}

// PublishReport summarises a publish run.
type PublishReport struct {
	// Destination is the storage URI files were uploaded under.
	Destination string

	// Files are the local paths written.
	Files []string

	// Uploaded are the object keys written successfully.
	Uploaded []string

	// Failed lists the files that could not be uploaded.
	Failed []UploadFailure
}

// UploadFailure records a single file that failed to upload.
type UploadFailure struct {
	// Path is the local file.
	Path string

	// Key is the destination object key.
	Key string

	// Err is the upload error.
	Err error
}
