package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinedb/internal/server"
	"github.com/desertthunder/cinedb/internal/tasks"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := strings.TrimSpace(cmd.String("host")); host != "" {
		cfg.Host = host
	}
	if cmd.IsSet("port") {
		port, err := intFlag(cmd, "port")
		if err != nil {
			return err
		}
		cfg.Port = port
	}

	catalog, err := r.Catalog(ctx)
	if err != nil {
		return err
	}

	srv := server.New(catalog, r.logger, tasks.ImportOpts{Workers: 2})
	return srv.ListenAndServe(ctx, cfg.Addr())
}
