package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// HashedPassword; stores never see plaintext passwords.
	// Returns ErrUserExists if the username or email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByUsernameOrEmail reports whether any user already holds the
	// given username or email. Used by registration's combined duplicate
	// check.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// UpdateAvatar replaces the user's avatar reference.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*domain.User, error)
}
