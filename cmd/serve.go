package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/listify/internal/server"
	"github.com/desertthunder/listify/internal/shared"
)

// Serve runs the in-memory backend until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	backend := server.NewBackend(server.DemoCatalog(), logger)
	if cmd.Bool("demo") {
		id := server.SeedDemo(backend)
		logger.Info("seeded demo account", "user_no", id, "email", server.DemoEmail, "password", server.DemoPassword)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.writePlain("Listify mock backend on http://%s\n", cfg.Addr())
	if err := server.Serve(ctx, cfg.Addr(), backend.Handler(), logger); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}
