package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/matchmaker/internal/api"
	"github.com/mcoot/matchmaker/internal/config"
	"github.com/mcoot/matchmaker/internal/factory"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	modes, err := cfg.ParsedModes()
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.FromServerConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close stores", slog.String("error", err.Error()))
		}
	}()

	// Create API router and server
	router := api.NewRouter(api.RouterConfigFromApp(app, logger))
	server := api.NewServer(router, api.DefaultServerConfig(cfg.HTTPPort), logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drive the matchmaker until shutdown
	matchmakerDone := make(chan struct{})
	go func() {
		defer close(matchmakerDone)
		app.Matchmaker.Run(ctx, cfg.PairingInterval, modes...)
	}()
	defer func() { <-matchmakerDone }()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Duration("pairing_interval", cfg.PairingInterval))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		stop()
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	}
}
