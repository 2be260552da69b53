package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const jsonDocumentVersion = 1

var errNotLoaded = errors.New("storage not loaded")

// document is the on-disk layout of a JSONStore file.
type document struct {
	Version int               `json:"version"`
	Entries map[string]string `json:"entries"`
}

// JSONStore keeps every value in a single JSON document on disk. Each Put
// rewrites the whole document.
type JSONStore struct {
	path string
	doc  *document
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	switch _, err := os.Stat(s.path); {
	case err == nil:
		return fmt.Errorf("storage already initialized at %s", s.path)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to inspect %s: %w", s.path, err)
	}

	s.doc = &document{Version: jsonDocumentVersion, Entries: map[string]string{}}
	return s.flush()
}

func (s *JSONStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage not initialized, run 'tally init' first")
	}
	if err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse storage %s: %w", s.path, err)
	}
	if doc.Version > jsonDocumentVersion {
		return fmt.Errorf("storage %s has version %d, newer than supported %d", s.path, doc.Version, jsonDocumentVersion)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]string{}
	}
	s.doc = &doc
	return nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) Get(key string) ([]byte, error) {
	if s.doc == nil {
		return nil, errNotLoaded
	}
	v, ok := s.doc.Entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return []byte(v), nil
}

func (s *JSONStore) Put(key string, value []byte) error {
	if s.doc == nil {
		return errNotLoaded
	}
	s.doc.Entries[key] = string(value)
	return s.flush()
}

func (s *JSONStore) Keys(prefix string) ([]string, error) {
	if s.doc == nil {
		return nil, errNotLoaded
	}
	var out []string
	for k := range s.doc.Entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *JSONStore) GetConfigPath() string { return s.path }

// flush writes the document next to the target and renames it into place.
func (s *JSONStore) flush() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}
