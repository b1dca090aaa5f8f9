package file

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/medgenius/docindex/internal/core/domain"
	"github.com/medgenius/docindex/internal/core/ports/driven"
	"github.com/medgenius/docindex/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// DefaultPromptsFile is the prompt file looked up when no path is configured.
const DefaultPromptsFile = "prompts.yaml"

// defaultPrompts are used for keys missing from the prompt file.
var defaultPrompts = map[string]string{
	driven.PromptImageInASentence: `Describe this image in one sentence.
Mention what kind of figure it is (chart, diagram, photo, scan, table image)
and the single most important fact it shows. Answer with the sentence only.`,

	driven.PromptTabular: `The following text is a table serialized as a nested dictionary:
the outer keys are row numbers starting at 0, row 0 is the header, and the
inner keys are column numbers. Read it as a dataframe and answer using the
values in the cells.`,
}

// PromptStore loads prompt templates from a YAML file of key: template pairs.
//
// The file is read lazily on first Load and cached until Reload. A missing
// file is not an error; the embedded defaults are served instead. Keys in the
// file override the defaults one by one.
type PromptStore struct {
	mu     sync.RWMutex
	path   string
	cache  map[string]string
	loaded bool
}

// NewPromptStore creates a YAML prompt store. An empty path means
// ./prompts.yaml.
func NewPromptStore(path string) *PromptStore {
	if path == "" {
		path = DefaultPromptsFile
	}
	return &PromptStore{path: path}
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.RLock()
	if s.loaded {
		prompt, ok := s.cache[name]
		s.mu.RUnlock()
		return found(name, prompt, ok)
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		cache, err := s.read()
		if err != nil {
			return "", err
		}
		s.cache = cache
		s.loaded = true
	}

	prompt, ok := s.cache[name]
	return found(name, prompt, ok)
}

// Reload clears the prompt cache, forcing a fresh read on next access.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()
}

// Path returns the prompt file path.
func (s *PromptStore) Path() string {
	return s.path
}

// read merges the prompt file over the defaults (caller must hold lock).
func (s *PromptStore) read() (map[string]string, error) {
	prompts := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		prompts[k] = v
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("prompt file %s not found, using defaults", s.path)
			return prompts, nil
		}
		return nil, fmt.Errorf("read prompts: %w", err)
	}

	var fromFile map[string]string
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	for k, v := range fromFile {
		if v = strings.TrimSpace(v); v != "" {
			prompts[k] = v
		}
	}

	logger.Debug("loaded %d prompts from %s", len(fromFile), s.path)
	return prompts, nil
}

func found(name, prompt string, ok bool) (string, error) {
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return prompt, nil
}
