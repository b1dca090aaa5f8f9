package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore.
// Buckets are created on first write.
type ObjectStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		buckets: make(map[string]map[string][]byte),
	}
}

// Put stores data at key.
func (s *ObjectStore) Put(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		objects = make(map[string][]byte)
		s.buckets[bucket] = objects
	}
	objects[key] = append([]byte(nil), data...)
}

// Object returns a copy of the data stored at key.
func (s *ObjectStore) Object(bucket, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// List returns every key under prefix in lexical order.
func (s *ObjectStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := []string{}
	for key := range s.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Download writes the object at key to localPath.
func (s *ObjectStore) Download(ctx context.Context, bucket, key, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, ok := s.Object(bucket, key)
	if !ok {
		return fmt.Errorf("s3://%s/%s: %w", bucket, key, domain.ErrNotFound)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", localPath, err)
	}
	return nil
}

// Upload writes the file at localPath to key.
func (s *ObjectStore) Upload(ctx context.Context, localPath, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", localPath, err)
	}

	s.Put(bucket, key, data)
	return nil
}
