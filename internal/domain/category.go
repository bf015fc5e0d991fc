package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category-specific validation errors.
var (
	// ErrCategoryIDEmpty is returned when a category ID is empty or nil.
	ErrCategoryIDEmpty = errors.New("category ID cannot be empty")

	// ErrCategoryUserIDEmpty is returned when a category's user ID is empty or nil.
	ErrCategoryUserIDEmpty = errors.New("category user ID cannot be empty")

	// ErrCategoryNameEmpty is returned when a category's name is empty.
	ErrCategoryNameEmpty = errors.New("category name cannot be empty")
)

// Category groups tasks for a single user. Names are unique per owner.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategory creates a new Category owned by the given user.
// Returns an error if validation fails.
func NewCategory(userID uuid.UUID, name string) (*Category, error) {
	category := &Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCategoryIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCategoryUserIDEmpty
	}

	if c.Name == "" {
		return ErrCategoryNameEmpty
	}

	return nil
}
