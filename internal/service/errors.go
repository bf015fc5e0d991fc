// Package service provides application-level services for managing tasks,
// categories, users, and their binary assets.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrUnknownCategory indicates a referenced category does not exist or
	// belongs to another user. API layer should map this to HTTP 400.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrStorageUnavailable indicates an operation requires cloud blob
	// storage but only the local backend is configured. API layer should
	// map this to HTTP 500 with a "storage not configured" message.
	ErrStorageUnavailable = errors.New("cloud storage not configured")

	// ErrUnsupportedFileType indicates an uploaded file's content type is
	// not in the allow-list for its target (avatar or attachment).
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidTimeWindow indicates an unrecognized task list filter value.
	ErrInvalidTimeWindow = errors.New("invalid time window filter")
)
