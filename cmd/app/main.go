package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")
	cfg := internal.NewDefaultConfig()

	// An explicitly given config file must exist; the default path is
	// optional since every setting has a workable default.
	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}
	if err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Run(ctx,
		internal.WithConfig(cfg),
		internal.WithWatch(cmd.Bool("watch")),
	)
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunInit(ctx, internal.WithConfig(cfg))
}

func runBooks(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunBooks(ctx, internal.WithConfig(cfg))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func watchFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "watch",
		Usage: "Keep running and re-sync when Apple Books data changes",
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Sync Apple Books highlights and notes into Logseq, one page per book",
		Action: runSync,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			watchFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Reconcile the registry and sync tracked books to Logseq",
				Description: "Each tracked book's page is rebuilt from its current highlights and " +
					"replaced wholesale in Logseq. Synced pages are owned by this tool: manual " +
					"edits to them are lost on the next run, so keep your own notes on separate " +
					"pages that link to the synced one.",
				Action: runSync,
				Flags:  []cli.Flag{watchFlag()},
			},
			{
				Name:   "init",
				Usage:  "Create or refresh the book registry from the Apple Books library",
				Action: runInit,
			},
			{
				Name:   "books",
				Usage:  "List library books and their sync settings",
				Action: runBooks,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the library over the Model Context Protocol on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
