package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/core/ports/driving"
	"github.com/medgenius/docindex/internal/logger"
)

// Ensure PublishService implements the interface.
var _ driving.Publisher = (*PublishService)(nil)

// PublishService persists batch results and mirrors them to object storage.
type PublishService struct {
	store    driven.IndexStore
	objects  driven.ObjectStore
	progress driven.Progress
}

// NewPublishService creates a publish service. progress may be nil.
func NewPublishService(store driven.IndexStore, objects driven.ObjectStore, progress driven.Progress) *PublishService {
	return &PublishService{
		store:    store,
		objects:  objects,
		progress: progress,
	}
}

// Publish writes result under localDir, replacing any index a previous run
// left there, then uploads every written file to bucket under prefix.
// Other files in localDir are kept.
//
// A plain result is saved at the root of localDir. A rich result is saved
// as one subdirectory per document, named after the document. Every file is
// attempted; failed uploads are reported and the returned error wraps
// domain.ErrPartialUpload.
func (s *PublishService) Publish(
	ctx context.Context,
	result *driving.BatchResult,
	localDir, bucket, prefix string,
) (*driving.PublishReport, error) {
	if result.Empty() {
		return nil, fmt.Errorf("publish: %w", domain.ErrNoContent)
	}

	if err := s.removePrevious(ctx, localDir); err != nil {
		return nil, fmt.Errorf("clear previous index in %s: %w", localDir, err)
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", localDir, err)
	}

	logger.Info("Saving vector DB to local...")
	files, err := s.save(ctx, result, localDir)
	if err != nil {
		return nil, err
	}

	report := &driving.PublishReport{
		Destination: fmt.Sprintf("s3://%s/%s", bucket, prefix),
		Files:       files,
	}

	logger.Info("Uploading vector DB to S3...")
	bar := startProgress(s.progress, "Uploading to S3", len(files))
	defer bar.Finish()

	var errs []error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		key, err := objectKey(localDir, file, prefix)
		if err == nil {
			err = s.objects.Upload(ctx, file, bucket, key)
		}
		bar.Add(1)
		if err != nil {
			logger.Warn("upload %s: %v", file, err)
			report.Failed = append(report.Failed, driving.UploadFailure{Path: file, Key: key, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		report.Uploaded = append(report.Uploaded, key)
	}

	if len(errs) > 0 {
		return report, fmt.Errorf("%w: %d of %d files failed: %w",
			domain.ErrPartialUpload, len(errs), len(files), errors.Join(errs...))
	}

	return report, nil
}

// removePrevious removes the index at the root of localDir and the
// per-document indexes in its subdirectories.
func (s *PublishService) removePrevious(ctx context.Context, localDir string) error {
	entries, err := os.ReadDir(localDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := s.store.Remove(ctx, filepath.Join(localDir, e.Name())); err != nil {
			return err
		}
	}
	return s.store.Remove(ctx, localDir)
}

func (s *PublishService) save(ctx context.Context, result *driving.BatchResult, localDir string) ([]string, error) {
	if result.Merged != nil {
		files, err := s.store.Save(ctx, result.Merged, localDir)
		if err != nil {
			return nil, fmt.Errorf("save index: %w", err)
		}
		return files, nil
	}

	var files []string
	used := make(map[string]int)
	for _, d := range result.Documents {
		name := domain.DocumentName(d.Path)
		used[name]++
		if n := used[name]; n > 1 {
			name += "-" + strconv.Itoa(n)
		}

		written, err := s.store.Save(ctx, d.Index, filepath.Join(localDir, name))
		if err != nil {
			return nil, fmt.Errorf("save index for %s: %w", d.Path, err)
		}
		files = append(files, written...)
	}
	return files, nil
}

// objectKey maps a file under localDir to its key under prefix.
func objectKey(localDir, file, prefix string) (string, error) {
	rel, err := filepath.Rel(localDir, file)
	if err != nil {
		return "", fmt.Errorf("resolve key: %w", err)
	}
	return path.Join(prefix, filepath.ToSlash(rel)), nil
}
