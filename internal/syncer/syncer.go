// Package syncer drives the per-book page upsert: pull annotations, render
// through the template, and create or replace the target Logseq page.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/template"
)

// Remote is the knowledge-base write surface the coordinator drives.
// *logseq.Client satisfies it.
type Remote interface {
	PageExists(ctx context.Context, name string) (bool, error)
	CreatePage(ctx context.Context, name, body string) error
	ReplacePage(ctx context.Context, name, body string) error
}

// Status describes the outcome of one book's sync.
type Status string

const (
	StatusCreated  Status = "created"
	StatusReplaced Status = "replaced"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Result is the outcome of syncing one tracked book.
type Result struct {
	Book   models.Book
	Page   string
	Status Status
	Err    error
}

// Syncer coordinates library reads, template rendering, and remote writes.
type Syncer struct {
	source library.Source
	remote Remote
	tmpl   *template.Template
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Syncer. The compiled template is passed in so template
// problems surface before any remote call is made.
func New(source library.Source, remote Remote, tmpl *template.Template, logger *slog.Logger) *Syncer {
	return &Syncer{
		source: source,
		remote: remote,
		tmpl:   tmpl,
		logger: logger,
		now:    time.Now,
	}
}

// Upsert syncs a single book: render the full page body from the current
// annotation set, then create the page or replace its entire content. The
// rendered document is the authoritative state; replacing wholesale is what
// makes re-runs idempotent and duplicate-free.
func (s *Syncer) Upsert(ctx context.Context, book models.Book) Result {
	page := book.PageName()
	res := Result{Book: book, Page: page}

	annotations, err := s.source.ListAnnotations(book.ID)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	if len(annotations) == 0 {
		res.Status = StatusSkipped
		return res
	}

	syncDate := s.now().Format("2006-01-02")
	body := s.tmpl.Render(template.BookContext(book.Title, book.Author, syncDate, annotations))

	exists, err := s.remote.PageExists(ctx, page)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	if exists {
		err = s.remote.ReplacePage(ctx, page, body)
		res.Status = StatusReplaced
	} else {
		err = s.remote.CreatePage(ctx, page, body)
		res.Status = StatusCreated
	}
	if err != nil {
		res.Status, res.Err = StatusFailed, err
	}
	return res
}

// Run syncs every tracked book in registry order. A book's failure is
// recorded and the batch continues; only an unreadable library aborts,
// since no further book can be determined either.
func (s *Syncer) Run(ctx context.Context, books []models.Book) ([]Result, error) {
	var results []Result
	for _, book := range books {
		res := s.Upsert(ctx, book)
		results = append(results, res)

		switch res.Status {
		case StatusSkipped:
			s.logger.Info("no annotations, skipping",
				slog.String("book", book.Title))
		case StatusFailed:
			if errors.Is(res.Err, apperr.ErrSourceUnavailable) {
				return results, res.Err
			}
			s.logger.Warn("sync failed",
				slog.String("book", book.Title),
				slog.String("page", res.Page),
				slog.String("error", res.Err.Error()))
		default:
			s.logger.Info("synced",
				slog.String("book", book.Title),
				slog.String("page", res.Page),
				slog.String("status", string(res.Status)))
		}
	}
	return results, nil
}

// Tally counts results by outcome for the end-of-run summary.
func Tally(results []Result) (synced, failed, skipped int) {
	for _, r := range results {
		switch r.Status {
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		default:
			synced++
		}
	}
	return synced, failed, skipped
}
