package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Mock implementations for testing.

var errMockFailure = errors.New("mock failure")

// mockDocument is an in-memory PDF document.
type mockDocument struct {
	path      string
	pages     []domain.Page
	images    map[int][]domain.ImageRegion
	imagesErr error
	loadErr   error
	loads     int
	closed    int
}

func (d *mockDocument) Path() string   { return d.path }
func (d *mockDocument) PageCount() int { return len(d.pages) }

func (d *mockDocument) LoadText(_ context.Context) ([]domain.Page, error) {
	d.loads++
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	return d.pages, nil
}

func (d *mockDocument) PageRows(_ int) ([]domain.TextRow, error) {
	return nil, nil
}

func (d *mockDocument) PageImages(_ context.Context, page int) ([]domain.ImageRegion, error) {
	if d.imagesErr != nil {
		return nil, d.imagesErr
	}
	return d.images[page], nil
}

func (d *mockDocument) Close() error {
	d.closed++
	return nil
}

// mockOpener serves mock documents by path.
type mockOpener struct {
	docs    map[string]*mockDocument
	openErr map[string]error
}

func newMockOpener(docs ...*mockDocument) *mockOpener {
	o := &mockOpener{docs: make(map[string]*mockDocument), openErr: make(map[string]error)}
	for _, d := range docs {
		o.docs[d.path] = d
	}
	return o
}

func (o *mockOpener) Open(_ context.Context, path string) (driven.PDFDocument, error) {
	if err, ok := o.openErr[path]; ok {
		return nil, err
	}
	d, ok := o.docs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return d, nil
}

// mockTableDetector returns fixed tables per page.
type mockTableDetector struct {
	tables map[int][]domain.TableRegion
	err    error
}

func (m *mockTableDetector) DetectTables(_ context.Context, _ driven.PDFDocument, page int) ([]domain.TableRegion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tables[page], nil
}

// mockDecoder decodes any region except those whose Data is "bad".
type mockDecoder struct{}

func (mockDecoder) Decode(region domain.ImageRegion) (image.Image, error) {
	if string(region.Data) == "bad" {
		return nil, fmt.Errorf("corrupt image: %w", domain.ErrUnsupportedType)
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

// mockVision describes images and records requests. Calls listed in failOn
// (0-based call count) fail.
type mockVision struct {
	mu       sync.Mutex
	response string
	failAll  bool
	failOn   map[int]bool
	requests []driven.VisionRequest
}

func (m *mockVision) Describe(_ context.Context, req driven.VisionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.requests)
	m.requests = append(m.requests, req)
	if m.failAll || m.failOn[call] {
		return "", errMockFailure
	}
	return m.response, nil
}

func (m *mockVision) ModelName() string            { return "mock-vision" }
func (m *mockVision) Ping(_ context.Context) error { return nil }
func (m *mockVision) Close() error                 { return nil }

func (m *mockVision) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptImageInASentence: "Describe this image in one sentence.",
		driven.PromptTabular:          "Read the table.",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockEmbedder returns a deterministic 3-dimensional vector per text.
type mockEmbedder struct {
	err     error
	short   bool
	batches [][]string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, []float32{float32(len(t)), 1, 0.5})
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func (m *mockEmbedder) texts() []string {
	var all []string
	for _, b := range m.batches {
		all = append(all, b...)
	}
	return all
}

// mockSplitter returns the trimmed text as one chunk, or nothing.
type mockSplitter struct{}

func (mockSplitter) SplitText(text string) []string {
	if p := (domain.Page{Text: text}); !p.HasText() {
		return nil
	}
	return []string{text}
}

func (mockSplitter) ChunkSize() int { return 1 << 20 }

// mockDocumentIndexer returns canned results per path.
type mockDocumentIndexer struct {
	indexes map[string]driven.VectorIndex
	errs    map[string]error
	calls   []string
}

func (m *mockDocumentIndexer) BuildIndex(_ context.Context, path string) (driven.VectorIndex, error) {
	m.calls = append(m.calls, path)
	if err, ok := m.errs[path]; ok {
		return nil, err
	}
	return m.indexes[path], nil
}

// mockObjectStore keeps objects in memory and can fail chosen keys.
type mockObjectStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failKeys map[string]bool
	listErr  error
	uploaded []string
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte), failKeys: make(map[string]bool)}
}

func (m *mockObjectStore) List(_ context.Context, bucket, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		key, ok := strings.CutPrefix(k, bucket+"/")
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockObjectStore) Download(_ context.Context, bucket, key, localPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failKeys[key] {
		return errMockFailure
	}
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return domain.ErrNotFound
	}
	return os.WriteFile(localPath, data, 0o600)
}

func (m *mockObjectStore) Upload(_ context.Context, localPath, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failKeys[key] {
		return errMockFailure
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.objects[bucket+"/"+key] = data
	m.uploaded = append(m.uploaded, key)
	return nil
}

// mockIndexStore writes one file per saved index.
type mockIndexStore struct {
	saved   map[string]int
	removed []string
	err     error
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{saved: make(map[string]int)}
}

func (m *mockIndexStore) Save(_ context.Context, idx driven.VectorIndex, dir string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	files := []string{filepath.Join(dir, "index.db"), filepath.Join(dir, "index.toml")}
	for _, f := range files {
		if err := os.WriteFile(f, []byte(fmt.Sprintf("%d", idx.Len())), 0o600); err != nil {
			return nil, err
		}
	}
	m.saved[dir] = idx.Len()
	return files, nil
}

func (m *mockIndexStore) Load(_ context.Context, _ string) (driven.VectorIndex, error) {
	return nil, domain.ErrNotFound
}

// Remove deletes the two files Save writes, and the dir once it is empty.
func (m *mockIndexStore) Remove(_ context.Context, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "index.toml")); err != nil {
		return nil
	}
	m.removed = append(m.removed, dir)
	for _, name := range []string{"index.db", "index.toml"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	_ = os.Remove(dir)
	return nil
}

// mockProgress records started bars.
type mockProgress struct {
	mu     sync.Mutex
	starts []string
	added  int
	done   int
}

func (m *mockProgress) Start(description string, _ int) driven.ProgressBar {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = append(m.starts, description)
	return &mockBar{p: m}
}

type mockBar struct{ p *mockProgress }

func (b *mockBar) Add(n int) {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	b.p.added += n
}

func (b *mockBar) Finish() {
	b.p.mu.Lock()
	defer b.p.mu.Unlock()
	b.p.done++
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embeddingErr error
	visionErr    error
	embedding    *domain.EmbeddingSettings
	vision       *domain.VisionSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateVision(cfg *domain.VisionSettings) error {
	m.vision = cfg
	return m.visionErr
}
