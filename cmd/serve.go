package main

import (
	"context"

	"github.com/desertthunder/curator/internal/server"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	srv := server.NewServer(r.engine, r.seeder, cfg, shared.WithLogger(r.logger, "component", "http"))
	return srv.ListenAndServe(ctx)
}

// Seed inserts the built-in suggestion library.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	result, err := r.seeder.Seed()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writeSummary("Seed Complete", result)
	return nil
}
