// Package main implements the entry point for the TodoX API server,
// a personal task-management backend with JWT authentication, categories,
// import/export and file attachments.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/todox-app/todox-api/internal/config"
	"github.com/todox-app/todox-api/internal/platform/blob"
	"github.com/todox-app/todox-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires dependencies and starts the HTTP server.
// It returns an error instead of exiting so deferred cleanup always runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"env", cfg.Server.Env)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	storage, err := blob.New(*cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}
	slog.Info("Storage backend initialized", "cloud", storage.Cloud())

	app, err := newApplication(cfg, appLogger, db, storage)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}
