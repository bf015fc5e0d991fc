package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/todox-app/todox-api/migrations"
)

// slogGooseLogger adapts goose's logger interface to structured logging.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "migrations")
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "component", "migrations")
}

// runMigrations applies any pending embedded migrations on startup.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	logger.Info("Database migrations applied", "version", version)
	return nil
}
