package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/todox-app/todox-api/internal/api"
	apiMiddleware "github.com/todox-app/todox-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	if len(app.config.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.config.Server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	taskHandler := api.NewTaskHandler(app.taskService)
	categoryHandler := api.NewCategoryHandler(app.categoryService)
	attachmentHandler := api.NewAttachmentHandler(app.attachmentService)
	transferHandler := api.NewTransferHandler(app.transferService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/profile", authHandler.Profile)
			r.Post("/auth/avatar", authHandler.UploadAvatar)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/calendar", taskHandler.Calendar)
				r.Post("/bulk-delete", taskHandler.BulkDelete)
				r.Post("/bulk-update", taskHandler.BulkUpdate)
				r.Get("/export/{format}", transferHandler.Export)
				r.Post("/import", transferHandler.Import)
				r.Post("/backup", transferHandler.Backup)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{taskId}/attachments", attachmentHandler.Upload)
				r.Delete("/{taskId}/attachments/{attachmentId}", attachmentHandler.Delete)
			})

			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Create)
		})

		// When the local backend is active, uploaded files are served
		// straight from the uploads directory.
		if local, ok := app.storage.(interface{ BaseDir() string }); ok {
			fileServer := http.StripPrefix(
				"/api/uploads/",
				http.FileServer(http.Dir(local.BaseDir())),
			)
			r.Get("/uploads/*", fileServer.ServeHTTP)
		}
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
