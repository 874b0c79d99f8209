// Package main is the entry point for the syno CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"syno/internal/backend/rest"
	"syno/internal/cli"
	"syno/internal/commands"
	"syno/internal/config"
	"syno/internal/service"
	"syno/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	factory := func(ctx context.Context, cfg *config.Config, sess *session.Session, logger *slog.Logger) (service.Service, error) {
		return rest.New(cfg, sess, logger)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
