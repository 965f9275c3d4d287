package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.settings()

	analyzer, err := r.analyzer(ctx)
	if err != nil {
		return err
	}
	loc, err := config.Schedule.Location()
	if err != nil {
		return err
	}

	addr := config.Server
	if cmd.IsSet("host") {
		addr.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		addr.Port = cmd.Int("port")
	}

	srv := server.New(analyzer, server.Defaults{
		Location:         loc,
		StartClock:       config.Schedule.DefaultStart,
		CrossfadeSeconds: config.Schedule.CrossfadeSeconds,
	}, shared.WithLogger(r.logger, "component", "server"))

	return srv.ListenAndServe(ctx, addr.Addr())
}
