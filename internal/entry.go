// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/logseq"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/registry"
	"github.com/starford/ansuz/internal/syncer"
	"github.com/starford/ansuz/internal/template"
)

// watchDebounce collapses the burst of file events one Apple Books save
// produces into a single re-sync.
const watchDebounce = 2 * time.Second

func newApplication(opts []Option) (*application, *slog.Logger, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// Run performs one sync pass: reconcile the registry against the library,
// then upsert a Logseq page for every tracked book. With the watch option
// it stays alive and re-runs whenever the Apple Books databases change.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	booksPath, annotationsPath, err := library.ResolvePaths(cfg.Library.BooksPath, cfg.Library.AnnotationsPath)
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("books_db", booksPath),
		slog.String("annotations_db", annotationsPath),
		slog.String("registry", cfg.Registry.Path),
		slog.String("logseq_url", cfg.Logseq.URL))

	if err := syncOnce(ctx, cfg, logger, booksPath, annotationsPath); err != nil {
		return err
	}
	if !app.watch {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return library.Watch(gCtx, logger, watchDebounce, func() {
			if err := syncOnce(gCtx, cfg, logger, booksPath, annotationsPath); err != nil {
				logger.Error("watch: sync failed", slog.String("error", err.Error()))
			}
		}, booksPath, annotationsPath)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Stopped")
	return nil
}

// syncOnce is one full pass. The library is reopened every time: in watch
// mode Apple Books may swap the database files out from under a held handle.
func syncOnce(ctx context.Context, cfg *Config, logger *slog.Logger, booksPath, annotationsPath string) error {
	source, err := library.Open(booksPath, annotationsPath)
	if err != nil {
		return err
	}
	defer source.Close()

	libraryBooks, err := source.ListBooks()
	if err != nil {
		return err
	}
	logger.Info("Library scanned", slog.Int("books", len(libraryBooks)))

	existing, registryExists, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return err
	}

	merged := registry.Reconcile(libraryBooks, existing)
	if err := registry.Save(cfg.Registry.Path, merged); err != nil {
		return err
	}

	if !registryExists {
		logger.Info("Registry created; no pages were synced",
			slog.String("path", cfg.Registry.Path),
			slog.String("hint", "edit the file and set sync: true for books to sync, then run again"))
		return nil
	}

	tracked := registry.Tracked(merged)
	if len(tracked) == 0 {
		logger.Info("No tracked books",
			slog.String("hint", "set sync: true in "+cfg.Registry.Path+" for books to sync"))
		return nil
	}

	tmpl, err := template.LoadFile(cfg.Template.Path)
	if err != nil {
		return err
	}

	client := logseq.New(cfg.Logseq.URL, logseqToken(cfg), cfg.Logseq.Timeout())
	if err := client.CheckConnection(ctx); err != nil {
		return fmt.Errorf("logseq API unreachable at %s (is Logseq running with the HTTP server enabled?): %w", cfg.Logseq.URL, err)
	}

	s := syncer.New(source, client, tmpl, logger)
	results, err := s.Run(ctx, tracked)
	if err != nil {
		return err
	}

	synced, failed, skipped := syncer.Tally(results)
	logger.Info("Sync complete",
		slog.Int("synced", synced),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped))
	for _, r := range results {
		if r.Status == syncer.StatusFailed {
			logger.Warn("Book failed",
				slog.String("book", r.Book.Title),
				slog.String("page", r.Page),
				slog.String("reason", r.Err.Error()))
		}
	}
	return nil
}

// RunInit (re)creates the registry from a fresh library scan. The merge
// keeps sync and alias on records that already exist, so running it on an
// established registry is harmless.
func RunInit(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	source, err := library.Open(cfg.Library.BooksPath, cfg.Library.AnnotationsPath)
	if err != nil {
		return err
	}
	defer source.Close()

	libraryBooks, err := source.ListBooks()
	if err != nil {
		return err
	}

	existing, _, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return err
	}
	merged := registry.Reconcile(libraryBooks, existing)
	if err := registry.Save(cfg.Registry.Path, merged); err != nil {
		return err
	}

	logger.Info("Registry written",
		slog.String("path", cfg.Registry.Path),
		slog.Int("books", len(merged)),
		slog.String("hint", "edit the file and set sync: true for books to sync"))
	return nil
}

// RunBooks prints the library with per-book sync settings.
func RunBooks(ctx context.Context, opts ...Option) error {
	app, _, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	source, err := library.Open(cfg.Library.BooksPath, cfg.Library.AnnotationsPath)
	if err != nil {
		return err
	}
	defer source.Close()

	libraryBooks, err := source.ListBooks()
	if err != nil {
		return err
	}
	if len(libraryBooks) == 0 {
		fmt.Println("No books found")
		return nil
	}

	regBooks, _, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return err
	}
	settings := make(map[string]bool, len(regBooks))
	for _, b := range regBooks {
		settings[b.ID] = b.Sync
	}

	fmt.Printf("Found %d books\n\n", len(libraryBooks))
	for _, b := range libraryBooks {
		marker := " "
		if settings[b.ID] {
			marker = "*"
		}
		fmt.Printf("[%s] %s — %s\n", marker, b.Title, b.Author)
		if b.Finished {
			fmt.Println("    finished")
		} else if b.ReadingProgress > 0 {
			fmt.Printf("    %.0f%% read\n", b.ReadingProgress*100)
		}
		if b.LastOpened != "" {
			fmt.Printf("    last opened %s\n", b.LastOpened)
		}
		fmt.Printf("    asset id %s\n", b.ID)
	}
	fmt.Println("\n[*] marks books with sync enabled in", cfg.Registry.Path)
	return nil
}

// RunMCP serves the library and page previews over MCP stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	source, err := library.Open(cfg.Library.BooksPath, cfg.Library.AnnotationsPath)
	if err != nil {
		return err
	}
	defer source.Close()

	regBooks, _, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return err
	}
	tmpl, err := template.LoadFile(cfg.Template.Path)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(source, regBooks, tmpl).ServeStdio()
}

// logseqToken prefers the config value and falls back to the environment,
// which godotenv fills from .env at startup.
func logseqToken(cfg *Config) string {
	if cfg.Logseq.Token != "" {
		return cfg.Logseq.Token
	}
	return os.Getenv("LOGSEQ_TOKEN")
}
