// Package main implements the entry point for the review scheduler server,
// which plans spaced-repetition sessions over a media library's folders.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/yaq94/Eagle-Memory-Enhancement/internal/config"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/platform/logger"
	"github.com/yaq94/Eagle-Memory-Enhancement/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, wires the application, and serves until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("catalog_base_url", cfg.Catalog.BaseURL))

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	appLogger.Info("database migrations applied")

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
