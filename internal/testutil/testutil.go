// Package testutil provides shared test fixtures mimicking the Apple Books
// database layout.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Fixture schemas hold only the columns the reader queries; the real Apple
// Books tables carry dozens more, which the queries never touch.
const (
	booksSchema = `
		CREATE TABLE ZBKLIBRARYASSET (
			ZASSETID        TEXT,
			ZTITLE          TEXT,
			ZAUTHOR         TEXT,
			ZPAGECOUNT      INTEGER,
			ZREADINGPROGRESS REAL,
			ZISFINISHED     INTEGER,
			ZLASTOPENDATE   REAL,
			ZCREATIONDATE   REAL
		);`
	annotationsSchema = `
		CREATE TABLE ZAEANNOTATION (
			ZANNOTATIONASSETID      TEXT,
			ZANNOTATIONSELECTEDTEXT TEXT,
			ZANNOTATIONNOTE         TEXT,
			ZANNOTATIONCREATIONDATE REAL,
			ZPLLOCATIONRANGESTART   INTEGER
		);`
)

// FixtureBook is a row for the fixture library database.
type FixtureBook struct {
	AssetID  string
	Title    string
	Author   string
	LastOpen float64
}

// FixtureAnnotation is a row for the fixture annotation database.
type FixtureAnnotation struct {
	AssetID  string
	Text     string
	Note     string
	Created  float64
	Location int64
}

// FixtureLibrary creates temporary BKLibrary/AEAnnotation-shaped databases
// populated with the given rows and returns their paths.
func FixtureLibrary(t *testing.T, books []FixtureBook, annotations []FixtureAnnotation) (booksPath, annotationsPath string) {
	t.Helper()
	dir := t.TempDir()
	booksPath = filepath.Join(dir, "BKLibrary-1.sqlite")
	annotationsPath = filepath.Join(dir, "AEAnnotation-1.sqlite")

	db := openFixture(t, booksPath, booksSchema)
	for _, b := range books {
		var lastOpen any
		if b.LastOpen != 0 {
			lastOpen = b.LastOpen
		}
		if _, err := db.Exec(
			`INSERT INTO ZBKLIBRARYASSET (ZASSETID, ZTITLE, ZAUTHOR, ZLASTOPENDATE) VALUES (?, ?, ?, ?)`,
			b.AssetID, b.Title, nullable(b.Author), lastOpen,
		); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	db = openFixture(t, annotationsPath, annotationsSchema)
	for _, a := range annotations {
		var loc any
		if a.Location != 0 {
			loc = a.Location
		}
		if _, err := db.Exec(
			`INSERT INTO ZAEANNOTATION (ZANNOTATIONASSETID, ZANNOTATIONSELECTEDTEXT, ZANNOTATIONNOTE, ZANNOTATIONCREATIONDATE, ZPLLOCATIONRANGESTART) VALUES (?, ?, ?, ?, ?)`,
			a.AssetID, a.Text, nullable(a.Note), a.Created, loc,
		); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	return booksPath, annotationsPath
}

func openFixture(t *testing.T, path, schema string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatal(err)
	}
	return db
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
