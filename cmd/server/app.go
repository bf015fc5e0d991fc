package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/todox-app/todox-api/internal/config"
	"github.com/todox-app/todox-api/internal/platform/blob"
	"github.com/todox-app/todox-api/internal/platform/postgres"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/service/auth"
	"github.com/todox-app/todox-api/internal/service/transfer"
	"github.com/todox-app/todox-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger  *slog.Logger
	db      *sql.DB
	storage blob.Storage

	// Stores (using interfaces for proper abstraction)
	userStore     store.UserStore
	categoryStore store.CategoryStore
	taskStore     store.TaskStore

	// Service interfaces
	jwtService        auth.JWTService
	userService       service.UserService
	taskService       service.TaskService
	categoryService   service.CategoryService
	attachmentService service.AttachmentService
	transferService   transfer.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger,
// database connection and storage backend that must be established before
// application initialization.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	storage blob.Storage,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		storage: storage,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.categoryStore = postgres.NewPostgresCategoryStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.userService = service.NewUserService(
		app.userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		storage,
		logger,
	)
	app.categoryService = service.NewCategoryService(app.categoryStore, logger)
	app.taskService = service.NewTaskService(app.taskStore, app.categoryStore, logger)
	app.attachmentService = service.NewAttachmentService(app.taskStore, storage, logger)
	app.transferService = transfer.NewService(
		app.taskStore,
		app.categoryStore,
		app.categoryService,
		storage,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
