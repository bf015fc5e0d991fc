package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/store"
)

// CategoryService provides category operations scoped to the calling user.
type CategoryService interface {
	// List returns all of the user's categories, oldest first.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)

	// Create saves a new category for the user. Returns
	// store.ErrCategoryExists when the user already has one with that name.
	Create(ctx context.Context, userID uuid.UUID, name string) (*domain.Category, error)

	// ResolveOrCreate returns the user's category with the given exact name,
	// creating it if absent. Used by task import, where rows reference
	// categories by name.
	ResolveOrCreate(ctx context.Context, userID uuid.UUID, name string) (*domain.Category, error)
}

type categoryService struct {
	categoryStore store.CategoryStore
	logger        *slog.Logger
}

var _ CategoryService = (*categoryService)(nil)

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryStore store.CategoryStore, logger *slog.Logger) CategoryService {
	return &categoryService{
		categoryStore: categoryStore,
		logger:        logger.With("component", "category_service"),
	}
}

// List implements CategoryService.List.
func (s *categoryService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error) {
	categories, err := s.categoryStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Create implements CategoryService.Create.
func (s *categoryService) Create(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Category, error) {
	category, err := domain.NewCategory(userID, name)
	if err != nil {
		return nil, err
	}

	if err := s.categoryStore.Create(ctx, category); err != nil {
		if !errors.Is(err, store.ErrCategoryExists) {
			s.logger.Error("failed to create category",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// ResolveOrCreate implements CategoryService.ResolveOrCreate. A concurrent
// import can create the category between the lookup and the insert; the
// unique constraint turns that race into ErrCategoryExists, after which the
// lookup is retried.
func (s *categoryService) ResolveOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Category, error) {
	category, err := s.categoryStore.GetByName(ctx, userID, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, store.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	created, err := s.Create(ctx, userID, name)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, store.ErrCategoryExists) {
		return nil, err
	}

	category, err = s.categoryStore.GetByName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category after create race: %w", err)
	}
	return category, nil
}
