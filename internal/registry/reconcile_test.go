package registry

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestReconcile_PreservesUserFields(t *testing.T) {
	existing := []models.Book{
		{ID: "B1", Title: "Old Title", Author: "Old Author", Sync: true, Alias: "My Alias"},
	}
	library := []models.LibraryBook{
		{ID: "B1", Title: "New Title", Author: "New Author"},
	}

	out := Reconcile(library, existing)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	b := out[0]
	if b.Title != "New Title" || b.Author != "New Author" {
		t.Errorf("title/author not refreshed: %+v", b)
	}
	if !b.Sync || b.Alias != "My Alias" {
		t.Errorf("user fields clobbered: %+v", b)
	}
}

func TestReconcile_NewBookDefaults(t *testing.T) {
	out := Reconcile([]models.LibraryBook{{ID: "B2", Title: "Fresh", Author: "A"}}, nil)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].Sync {
		t.Error("new book must default to sync=false")
	}
	if out[0].Alias != "" {
		t.Errorf("new book must have no alias, got %q", out[0].Alias)
	}
}

func TestReconcile_NeverDeletes(t *testing.T) {
	existing := []models.Book{
		{ID: "gone-1", Title: "Removed", Sync: true},
		{ID: "B1", Title: "Kept"},
		{ID: "gone-2", Title: "Also Removed", Alias: "Keep Me"},
	}
	library := []models.LibraryBook{{ID: "B1", Title: "Kept"}}

	out := Reconcile(library, existing)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	// Library order first, then orphans in prior order.
	if out[0].ID != "B1" || out[1].ID != "gone-1" || out[2].ID != "gone-2" {
		t.Errorf("order = [%s %s %s]", out[0].ID, out[1].ID, out[2].ID)
	}
	if !out[1].Sync || out[2].Alias != "Keep Me" {
		t.Error("orphaned records must keep user fields")
	}
}

func TestReconcile_EmptyLibrarySnapshot(t *testing.T) {
	existing := []models.Book{{ID: "B1", Sync: true}}
	out := Reconcile(nil, existing)
	if len(out) != 1 || out[0].ID != "B1" || !out[0].Sync {
		t.Errorf("empty snapshot must keep existing records: %+v", out)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	existing := []models.Book{{ID: "x"}, {ID: "y"}, {ID: "z"}}
	library := []models.LibraryBook{{ID: "y"}, {ID: "q"}}
	first := Reconcile(library, existing)
	second := Reconcile(library, existing)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic output at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestTracked(t *testing.T) {
	books := []models.Book{
		{ID: "a", Sync: true},
		{ID: "b"},
		{ID: "c", Sync: true},
	}
	got := Tracked(books)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("tracked = %+v", got)
	}
}
