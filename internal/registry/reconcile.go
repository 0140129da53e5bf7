package registry

import "github.com/starford/ansuz/internal/models"

// Reconcile merges a fresh library snapshot into an existing registry.
//
// Matching is by id only: titles and authors change, asset ids do not.
// For matched records the library refreshes title and author while the
// user-owned sync and alias fields carry over verbatim. Library books not
// yet in the registry become new records with sync=false and no alias.
// Registry records whose id no longer appears in the library are kept,
// appended after the library-ordered records in their prior order, so a
// book removed from Apple Books never silently loses its settings.
func Reconcile(libraryBooks []models.LibraryBook, existing []models.Book) []models.Book {
	prior := make(map[string]models.Book, len(existing))
	for _, b := range existing {
		prior[b.ID] = b
	}

	out := make([]models.Book, 0, len(libraryBooks))
	seen := make(map[string]struct{}, len(libraryBooks))
	for _, lb := range libraryBooks {
		seen[lb.ID] = struct{}{}
		rec := models.Book{
			ID:     lb.ID,
			Title:  lb.Title,
			Author: lb.Author,
		}
		if old, ok := prior[lb.ID]; ok {
			rec.Sync = old.Sync
			rec.Alias = old.Alias
		}
		out = append(out, rec)
	}

	// Orphans: registry entries the library no longer reports.
	for _, b := range existing {
		if _, ok := seen[b.ID]; !ok {
			out = append(out, b)
		}
	}
	return out
}
