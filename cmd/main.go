package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})
	defer runner.Close()

	app := &cli.Command{
		Name:    "setlist",
		Usage:   "Turn a Spotify playlist into a timed, color-coded set schedule",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   runner.Init,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidReference):
			fmt.Fprintln(os.Stderr, "Could not read a playlist from that input. Paste a Spotify playlist link, URI or ID.")
			runner.Close()
			os.Exit(2)
		case errors.Is(err, shared.ErrMissingCredentials):
			fmt.Fprintf(os.Stderr, "Spotify credentials are not configured. Set %s and %s or run 'setlist setup config'.\n",
				shared.EnvClientID, shared.EnvClientSecret)
			runner.Close()
			os.Exit(2)
		default:
			runner.Close()
			logger.Fatalf("application error: %v", err)
		}
	}
}
