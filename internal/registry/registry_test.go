package registry

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func TestLoad_MissingFile(t *testing.T) {
	books, exists, err := Load(filepath.Join(t.TempDir(), "registry.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("exists = true for missing file")
	}
	if books != nil {
		t.Errorf("books = %+v, want nil", books)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	in := []models.Book{
		{ID: "B1", Title: "Atomic Habits", Author: "James Clear", Sync: true},
		{ID: "B2", Title: "Dune", Author: "Frank Herbert", Alias: "dune-notes"},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, exists, err := Load(path)
	if err != nil || !exists {
		t.Fatalf("load: exists=%v err=%v", exists, err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("record %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestSave_ByteStable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	books := []models.Book{{ID: "B1", Title: "T", Author: "A", Sync: true}}

	if err := Save(a, books); err != nil {
		t.Fatal(err)
	}
	loaded, _, err := Load(a)
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(b, loaded); err != nil {
		t.Fatal(err)
	}

	first, _ := os.ReadFile(a)
	second, _ := os.ReadFile(b)
	if !bytes.Equal(first, second) {
		t.Errorf("load-then-save changed bytes:\n%s\nvs\n%s", first, second)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte("{not: [valid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := Load(path)
	if !errors.Is(err, apperr.ErrRegistryCorrupt) {
		t.Fatalf("err = %v, want ErrRegistryCorrupt", err)
	}

	// The corrupt file must survive untouched.
	data, readErr := os.ReadFile(path)
	if readErr != nil || string(data) != "{not: [valid yaml" {
		t.Error("corrupt registry was modified")
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	if err := Save(path, []models.Book{{ID: "B1"}}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "registry.yaml" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}
