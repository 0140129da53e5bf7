// Package library reads books and annotations from the local Apple Books
// databases. Snapshots are read-only: Apple Books owns the files and this
// package never writes to them.
package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Source enumerates books and per-book annotations.
// Implementations return immutable snapshots in library order.
type Source interface {
	ListBooks() ([]models.LibraryBook, error)
	ListAnnotations(assetID string) ([]models.Annotation, error)
}

const containerDir = "Library/Containers/com.apple.iBooksX/Data/Documents"

// DiscoverBooksDB locates the BKLibrary sqlite file under the Apple Books
// container. Apple suffixes the filename with a store id, hence the glob.
func DiscoverBooksDB() (string, error) {
	return discover(filepath.Join("BKLibrary", "BKLibrary*.sqlite"))
}

// DiscoverAnnotationsDB locates the AEAnnotation sqlite file.
func DiscoverAnnotationsDB() (string, error) {
	return discover(filepath.Join("AEAnnotation", "AEAnnotation*.sqlite"))
}

// ResolvePaths fills empty database paths via container discovery.
func ResolvePaths(booksPath, annotationsPath string) (string, string, error) {
	var err error
	if booksPath == "" {
		if booksPath, err = DiscoverBooksDB(); err != nil {
			return "", "", err
		}
	}
	if annotationsPath == "" {
		if annotationsPath, err = DiscoverAnnotationsDB(); err != nil {
			return "", "", err
		}
	}
	return booksPath, annotationsPath, nil
}

func discover(pattern string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("library: resolve home: %v: %w", err, apperr.ErrSourceUnavailable)
	}
	matches, err := filepath.Glob(filepath.Join(home, containerDir, pattern))
	if err != nil {
		return "", fmt.Errorf("library: glob %s: %v: %w", pattern, err, apperr.ErrSourceUnavailable)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("library: no database matches %s (is Apple Books synced?): %w", pattern, apperr.ErrSourceUnavailable)
	}
	return matches[0], nil
}
