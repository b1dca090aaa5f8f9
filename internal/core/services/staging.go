package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/core/ports/driving"
	"github.com/medgenius/docindex/internal/logger"
)

// Ensure StagingService implements the interface.
var _ driving.Stager = (*StagingService)(nil)

const pdfExt = ".pdf"

// StagingService places input PDFs in a local staging directory.
type StagingService struct {
	objects  driven.ObjectStore
	progress driven.Progress
}

// NewStagingService creates a staging service. objects may be nil when only
// local staging is used; progress may be nil.
func NewStagingService(objects driven.ObjectStore, progress driven.Progress) *StagingService {
	return &StagingService{
		objects:  objects,
		progress: progress,
	}
}

// FromObjectStore downloads every .pdf key under prefix into dir, named by
// the key's last path segment. Files that fail to download are logged and
// left out of the result.
func (s *StagingService) FromObjectStore(ctx context.Context, bucket, prefix, dir string) ([]string, error) {
	if s.objects == nil {
		return nil, fmt.Errorf("object store not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	keys, err := s.objects.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
	}

	bar := startProgress(s.progress, "Downloading PDFs", len(keys))
	defer bar.Finish()

	var staged []string
	for _, key := range keys {
		bar.Add(1)
		if !strings.HasSuffix(key, pdfExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return staged, err
		}

		local := filepath.Join(dir, path.Base(key))
		if err := s.objects.Download(ctx, bucket, key, local); err != nil {
			logger.Warn("skipping %s: %v", key, err)
			continue
		}
		staged = append(staged, local)
	}

	return staged, nil
}

// FromLocal copies every .pdf file in srcDir whose name starts with prefix
// into dir. Files that fail to copy are logged and left out of the result.
func (s *StagingService) FromLocal(ctx context.Context, srcDir, prefix, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", srcDir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, pdfExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	bar := startProgress(s.progress, "Copying PDFs", len(names))
	defer bar.Finish()

	var staged []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return staged, err
		}

		dst := filepath.Join(dir, name)
		err := copyFile(filepath.Join(srcDir, name), dst)
		bar.Add(1)
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			continue
		}
		staged = append(staged, dst)
	}

	return staged, nil
}

// copyFile copies src to dst. Copying a file onto itself is a no-op.
func copyFile(src, dst string) error {
	if sameFile(src, dst) {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
