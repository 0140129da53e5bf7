// Package models defines the domain types for Ansuz.
package models

// Book is a registry entry: one row of the user-edited book list.
//
// ID is the Apple Books asset id and the only field used to match records
// across runs. Title and Author are refreshed from the library on every
// reconciliation. Sync and Alias belong to the user and are never changed
// by the tool once set.
type Book struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Sync   bool   `yaml:"sync"`
	Alias  string `yaml:"alias,omitempty"`
}

// PageName returns the Logseq page name for the book: the alias when the
// user set one, the library title otherwise.
func (b Book) PageName() string {
	if b.Alias != "" {
		return b.Alias
	}
	if b.Title != "" {
		return b.Title
	}
	return "Unknown"
}

// LibraryBook is a book as reported by the library snapshot, with the
// reading metadata Apple Books tracks alongside it.
type LibraryBook struct {
	ID              string
	Title           string
	Author          string
	PageCount       int
	ReadingProgress float64
	Finished        bool
	LastOpened      string
	Added           string
}

// Annotation is one highlight (with optional note) from the library.
// Read-only, sourced fresh on every run.
type Annotation struct {
	Text      string
	Note      string
	Page      string
	CreatedAt string
}
