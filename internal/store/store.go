package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"

	"github.com/goccy/go-json"
)

// Store reads and writes the JSON index documents for one base directory.
// Every mutation is a full read-modify-write of the backing document, so
// concurrent writers follow last-write-wins semantics.
type Store struct {
	baseDir string
}

// New creates a Store rooted at baseDir, creating the directory if needed.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the directory holding the index documents.
func (s *Store) BaseDir() string {
	return s.baseDir
}

var sanitizePattern = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeName makes a playlist name safe for use in an index file name.
// Runs of characters outside [A-Za-z0-9_-] collapse to a single underscore;
// leading and trailing underscores are trimmed.
func SanitizeName(name string) string {
	return strings.Trim(sanitizePattern.ReplaceAllString(name, "_"), "_")
}

// loadDocument unmarshals the JSON document at path into v. An absent file
// or invalid JSON leaves v untouched and returns false; callers treat that
// the same as "first time seen".
func (s *Store) loadDocument(kind, path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("store: failed to read %s index %s: %v", kind, path, err)
		}
		metrics.StoreOperationsTotal.WithLabelValues(kind, "load", "empty").Inc()
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		logging.Warn("store: invalid JSON in %s index %s: %v", kind, path, err)
		metrics.StoreOperationsTotal.WithLabelValues(kind, "load", "empty").Inc()
		return false
	}

	metrics.StoreOperationsTotal.WithLabelValues(kind, "load", "success").Inc()
	return true
}

// saveDocument writes v to path as pretty-printed JSON.
func (s *Store) saveDocument(kind, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues(kind, "save", "error").Inc()
		return fmt.Errorf("failed to marshal %s index: %w", kind, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues(kind, "save", "error").Inc()
		return fmt.Errorf("failed to write %s index %s: %w", kind, path, err)
	}

	metrics.StoreOperationsTotal.WithLabelValues(kind, "save", "success").Inc()
	return nil
}

// resolve joins a file name onto the store's base directory.
func (s *Store) resolve(name string) string {
	return filepath.Join(s.baseDir, name)
}
