package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingService_FromLocal(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "pdfs")

	for name, body := range map[string]string{
		"a.pdf":        "A",
		"b.pdf":        "B",
		"notes.txt":    "N",
		"hr_guide.pdf": "H",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(body), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(src, "dir.pdf"), 0o755))

	progress := &mockProgress{}
	stager := NewStagingService(nil, progress)

	staged, err := stager.FromLocal(context.Background(), src, "", dst)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dst, "a.pdf"),
		filepath.Join(dst, "b.pdf"),
		filepath.Join(dst, "hr_guide.pdf"),
	}, staged)

	data, err := os.ReadFile(filepath.Join(dst, "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))
	assert.Equal(t, []string{"Copying PDFs"}, progress.starts)
}

func TestStagingService_FromLocal_Prefix(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "hr_a.pdf"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "fin_b.pdf"), []byte("y"), 0o600))

	staged, err := NewStagingService(nil, nil).FromLocal(context.Background(), src, "hr_", dst)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dst, "hr_a.pdf")}, staged)
}

func TestStagingService_FromLocal_SameDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("keep"), 0o600))

	staged, err := NewStagingService(nil, nil).FromLocal(context.Background(), dir, "", dir)

	require.NoError(t, err)
	require.Len(t, staged, 1)
	data, err := os.ReadFile(staged[0])
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestStagingService_FromLocal_MissingSource(t *testing.T) {
	_, err := NewStagingService(nil, nil).FromLocal(context.Background(), filepath.Join(t.TempDir(), "nope"), "", t.TempDir())
	assert.Error(t, err)
}

func TestStagingService_FromObjectStore(t *testing.T) {
	objects := newMockObjectStore()
	objects.objects["bucket/data/a.pdf"] = []byte("A")
	objects.objects["bucket/data/sub/b.pdf"] = []byte("B")
	objects.objects["bucket/data/readme.md"] = []byte("R")
	objects.objects["bucket/data/broken.pdf"] = []byte("X")
	objects.objects["bucket/other/c.pdf"] = []byte("C")
	objects.failKeys["data/broken.pdf"] = true

	dst := filepath.Join(t.TempDir(), "pdfs")
	progress := &mockProgress{}
	stager := NewStagingService(objects, progress)

	staged, err := stager.FromObjectStore(context.Background(), "bucket", "data/", dst)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dst, "a.pdf"),
		filepath.Join(dst, "b.pdf"),
	}, staged)

	data, err := os.ReadFile(filepath.Join(dst, "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))
	assert.Equal(t, []string{"Downloading PDFs"}, progress.starts)
	assert.Equal(t, 4, progress.added)
}

func TestStagingService_FromObjectStore_ListError(t *testing.T) {
	objects := newMockObjectStore()
	objects.listErr = errMockFailure

	_, err := NewStagingService(objects, nil).FromObjectStore(context.Background(), "bucket", "data/", t.TempDir())

	assert.ErrorIs(t, err, errMockFailure)
}

func TestStagingService_FromObjectStore_NotConfigured(t *testing.T) {
	_, err := NewStagingService(nil, nil).FromObjectStore(context.Background(), "bucket", "data/", t.TempDir())
	assert.Error(t, err)
}
