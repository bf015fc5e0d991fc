package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrUserNotFound, ErrTaskNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist. Check the
	// wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrCategoryNotFound indicates that the requested category does not exist in the store.
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)

	// ErrAttachmentNotFound indicates that the requested attachment does not
	// exist on the task's attachment list.
	ErrAttachmentNotFound = fmt.Errorf("%w: attachment", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUserExists indicates that a user with the given username or email
	// already exists. Registration reports it as one combined condition so
	// the check cannot be used to distinguish which field collided.
	ErrUserExists = fmt.Errorf("%w: username or email", ErrDuplicate)

	// ErrCategoryExists indicates that the owner already has a category with
	// the given name.
	ErrCategoryExists = fmt.Errorf("%w: category name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
