package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "deckctl",
		Usage: "Inspect, validate, edit and export slide deck snapshots",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Check a snapshot against the schema and document rules",
				ArgsUsage: "<snapshot.json>",
				Action:    validateCmd,
			},
			{
				Name:      "info",
				Usage:     "Print slide and element counts",
				ArgsUsage: "<snapshot.json>",
				Action:    infoCmd,
			},
			{
				Name:      "sample",
				Usage:     "Write the sample presentation",
				ArgsUsage: "<out.json>",
				Action:    sampleCmd,
			},
			{
				Name:      "apply",
				Usage:     "Apply a JSON array of operations to a snapshot in place",
				ArgsUsage: "<snapshot.json> <ops.json>",
				Action:    applyCmd,
			},
			{
				Name:      "export-pdf",
				Usage:     "Render a snapshot to PDF",
				ArgsUsage: "<snapshot.json>",
				Action:    exportCmd,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file, defaults to a name derived from the deck title",
					},
					&cli.StringFlag{
						Name:    "assets",
						Usage:   "Directory holding uploaded images",
						Value:   "./data/assets",
						Sources: cli.EnvVars("SLIDES_ASSET_DIR"),
					},
					&cli.StringFlag{
						Name:  "slides",
						Usage: "Comma separated 1-based slide numbers to include",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Re-export whenever the snapshot changes",
					},
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("deckctl failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
