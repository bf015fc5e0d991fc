package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/logger"
	"github.com/todox-app/todox-api/internal/store"
)

// PostgresCategoryStore implements the store.CategoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the
// CategoryStore interface.
func NewPostgresCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCategoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "category_store")),
	}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// Create implements store.CategoryStore.Create
// Returns store.ErrCategoryExists when the (user_id, name) unique
// constraint is violated.
func (s *PostgresCategoryStore) Create(ctx context.Context, category *domain.Category) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := category.Validate(); err != nil {
		log.Warn("category validation failed during create",
			slog.String("error", err.Error()),
			slog.String("category_id", category.ID.String()))
		return err
	}

	query := `
		INSERT INTO categories (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.UserID,
		category.Name,
		category.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("duplicate category name",
				slog.String("user_id", category.UserID.String()),
				slog.String("name", category.Name))
			return store.ErrCategoryExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, category.UserID)
		}

		log.Error("failed to create category",
			slog.String("error", err.Error()),
			slog.String("category_id", category.ID.String()))
		return fmt.Errorf("failed to create category: %w", err)
	}

	log.Info("category created successfully",
		slog.String("category_id", category.ID.String()),
		slog.String("user_id", category.UserID.String()))
	return nil
}

// GetByID implements store.CategoryStore.GetByID
func (s *PostgresCategoryStore) GetByID(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`

	var category domain.Category
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("category not found", slog.String("category_id", id.String()))
			return nil, store.ErrCategoryNotFound
		}
		log.Error("failed to get category by ID",
			slog.String("error", err.Error()),
			slog.String("category_id", id.String()))
		return nil, fmt.Errorf("failed to get category by ID: %w", err)
	}

	return &category, nil
}

// GetByName implements store.CategoryStore.GetByName
// The match is exact and case-sensitive.
func (s *PostgresCategoryStore) GetByName(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1 AND name = $2
	`

	var category domain.Category
	err := s.db.QueryRowContext(ctx, query, userID, name).Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		log.Error("failed to get category by name",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}

	return &category, nil
}

// ListByUser implements store.CategoryStore.ListByUser
func (s *PostgresCategoryStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list categories",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	categories := []*domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID,
			&category.UserID,
			&category.Name,
			&category.CreatedAt,
		); err != nil {
			log.Error("failed to scan category row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}
