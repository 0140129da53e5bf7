// Package registry persists the user-edited book list and reconciles it
// against fresh library snapshots.
package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Load reads the registry at path. A missing file yields (nil, false, nil)
// so the caller can bootstrap a fresh registry. A file that exists but does
// not parse is never overwritten: the user's sync and alias choices live
// there, so the error wraps apperr.ErrRegistryCorrupt and the run must stop.
func Load(path string) ([]models.Book, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("registry: read %s: %w", path, err)
	}

	var books []models.Book
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, false, fmt.Errorf("registry: parse %s: %v: %w", path, err, apperr.ErrRegistryCorrupt)
	}
	return books, true, nil
}

// Save atomically writes the registry: temp file, fsync, rename. A crash
// mid-save leaves the previous file intact.
func Save(path string, books []models.Book) error {
	data, err := yaml.Marshal(books)
	if err != nil {
		return fmt.Errorf("registry: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("registry: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("registry: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("registry: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("registry: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("registry: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("registry: rename: %w", err)
	}
	success = true
	return nil
}

// Tracked returns the registry entries the user flagged for syncing,
// in registry order.
func Tracked(books []models.Book) []models.Book {
	var out []models.Book
	for _, b := range books {
		if b.Sync {
			out = append(out, b)
		}
	}
	return out
}
