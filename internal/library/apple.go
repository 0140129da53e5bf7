package library

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Apple timestamps count seconds from 2001-01-01 UTC, not the Unix epoch.
const appleEpochOffset = 978307200

// AppleBooks is a Source backed by the BKLibrary and AEAnnotation databases.
type AppleBooks struct {
	books       *sql.DB
	annotations *sql.DB
}

// Open opens the Apple Books databases read-only. Empty paths are resolved
// via container discovery.
func Open(booksPath, annotationsPath string) (*AppleBooks, error) {
	booksPath, annotationsPath, err := ResolvePaths(booksPath, annotationsPath)
	if err != nil {
		return nil, err
	}

	books, err := open(booksPath)
	if err != nil {
		return nil, err
	}
	annotations, err := open(annotationsPath)
	if err != nil {
		books.Close()
		return nil, err
	}
	return &AppleBooks{books: books, annotations: annotations}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("library: open %s: %v: %w", path, err, apperr.ErrSourceUnavailable)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: ping %s: %v: %w", path, err, apperr.ErrSourceUnavailable)
	}
	return db, nil
}

// Close closes both database handles.
func (a *AppleBooks) Close() error {
	err := a.books.Close()
	if cerr := a.annotations.Close(); err == nil {
		err = cerr
	}
	return err
}

// ListBooks returns every titled book in the library, most recently opened
// first (Apple's own ordering for the library view).
func (a *AppleBooks) ListBooks() ([]models.LibraryBook, error) {
	rows, err := a.books.Query(`
		SELECT
			ZASSETID,
			ZTITLE,
			ZAUTHOR,
			ZPAGECOUNT,
			ZREADINGPROGRESS,
			ZISFINISHED,
			ZLASTOPENDATE,
			ZCREATIONDATE
		FROM ZBKLIBRARYASSET
		WHERE ZTITLE IS NOT NULL
		ORDER BY ZLASTOPENDATE DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("library: query books: %v: %w", err, apperr.ErrSourceUnavailable)
	}
	defer rows.Close()

	var out []models.LibraryBook
	for rows.Next() {
		var (
			assetID, title    string
			author            sql.NullString
			pageCount         sql.NullInt64
			progress          sql.NullFloat64
			finished          sql.NullInt64
			lastOpen, created sql.NullFloat64
		)
		if err := rows.Scan(&assetID, &title, &author, &pageCount, &progress, &finished, &lastOpen, &created); err != nil {
			return nil, fmt.Errorf("library: scan book: %w", err)
		}
		b := models.LibraryBook{
			ID:         assetID,
			Title:      title,
			Author:     "Unknown",
			Finished:   finished.Valid && finished.Int64 != 0,
			LastOpened: appleTime(lastOpen),
			Added:      appleTime(created),
		}
		if author.Valid && author.String != "" {
			b.Author = author.String
		}
		if pageCount.Valid {
			b.PageCount = int(pageCount.Int64)
		}
		if progress.Valid {
			b.ReadingProgress = progress.Float64
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("library: iterate books: %v: %w", err, apperr.ErrSourceUnavailable)
	}
	return out, nil
}

// ListAnnotations returns the highlights and notes for one book in creation
// order. The order is preserved downstream all the way into the rendered
// page, so no re-sorting happens anywhere.
func (a *AppleBooks) ListAnnotations(assetID string) ([]models.Annotation, error) {
	rows, err := a.annotations.Query(`
		SELECT
			ZANNOTATIONSELECTEDTEXT,
			ZANNOTATIONNOTE,
			ZANNOTATIONCREATIONDATE,
			ZPLLOCATIONRANGESTART
		FROM ZAEANNOTATION
		WHERE ZANNOTATIONASSETID = ?
		  AND (ZANNOTATIONSELECTEDTEXT IS NOT NULL OR ZANNOTATIONNOTE IS NOT NULL)
		ORDER BY ZANNOTATIONCREATIONDATE ASC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("library: query annotations: %v: %w", err, apperr.ErrSourceUnavailable)
	}
	defer rows.Close()

	var out []models.Annotation
	for rows.Next() {
		var (
			text, note sql.NullString
			created    sql.NullFloat64
			location   sql.NullInt64
		)
		if err := rows.Scan(&text, &note, &created, &location); err != nil {
			return nil, fmt.Errorf("library: scan annotation: %w", err)
		}
		ann := models.Annotation{
			Text:      text.String,
			Note:      note.String,
			CreatedAt: appleTime(created),
		}
		if location.Valid && location.Int64 > 0 {
			ann.Page = strconv.FormatInt(location.Int64, 10)
		}
		out = append(out, ann)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("library: iterate annotations: %v: %w", err, apperr.ErrSourceUnavailable)
	}
	return out, nil
}

// appleTime converts an Apple-epoch timestamp to "YYYY-MM-DD HH:MM:SS"
// local time, or empty string when the column is NULL.
func appleTime(ts sql.NullFloat64) string {
	if !ts.Valid {
		return ""
	}
	return time.Unix(int64(ts.Float64)+appleEpochOffset, 0).Format("2006-01-02 15:04:05")
}
