package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
)

// CategoryStore defines the interface for category data persistence.
// All lookups are owner-scoped: a category is only visible to its user.
type CategoryStore interface {
	// Create saves a new category.
	// Returns ErrCategoryExists if the owner already has a category with
	// the same name.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by ID, scoped to the given owner.
	// Returns ErrCategoryNotFound if it does not exist or belongs to
	// another user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error)

	// GetByName retrieves a category by exact (case-sensitive) name, scoped
	// to the given owner. Returns ErrCategoryNotFound when absent.
	GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Category, error)

	// ListByUser returns all categories of the given owner, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)
}
