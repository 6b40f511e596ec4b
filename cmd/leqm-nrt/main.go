package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/leqm-nrt/internal/report"
)

func main() {
	ctx := context.Background()

	app := &cli.Command{
		Name:    "leqm-nrt",
		Usage:   "Non-real-time Leq(M) motion-picture loudness measurement",
		Version: report.Version,
		Commands: []*cli.Command{
			measureCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(exitCodeFor(err))
	}
}
