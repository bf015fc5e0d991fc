package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/service/auth"
	"github.com/todox-app/todox-api/internal/service/transfer"
	"github.com/todox-app/todox-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors. Wrong-owner access deliberately maps here too, so
	// probing another user's IDs is indistinguishable from probing random
	// ones.
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrAttachmentNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrUserExists),
		errors.Is(err, store.ErrCategoryExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrInvalidTimeWindow),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, transfer.ErrMalformedJSON),
		errors.Is(err, transfer.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidEmail),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Storage misconfiguration is a server-side problem
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors. Unknown email and wrong password share one
	// message so login responses cannot enumerate accounts.
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"

	case errors.Is(err, store.ErrAttachmentNotFound):
		return "Attachment not found"

	// Conflict-style errors
	case errors.Is(err, store.ErrUserExists):
		return "Username or email already in use"

	case errors.Is(err, store.ErrCategoryExists):
		return "Category already exists"

	// Bad request errors
	case errors.Is(err, service.ErrUnknownCategory):
		return "Unknown category"

	case errors.Is(err, service.ErrInvalidTimeWindow):
		return "Invalid filter value"

	case errors.Is(err, service.ErrUnsupportedFileType):
		return "Unsupported file type"

	case errors.Is(err, transfer.ErrMalformedJSON):
		return "Invalid JSON file format"

	case errors.Is(err, transfer.ErrUnsupportedFormat):
		return "Unsupported file format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrStorageUnavailable):
		return "Storage not configured"

	case isDomainValidationError(err):
		// Domain validation messages are written for users and carry no
		// internal detail.
		return capitalize(err.Error())

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and sanitized message and writes
// the error response. A non-empty defaultMessage overrides the mapped
// message for otherwise-unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if defaultMessage != "" && message == "An unexpected error occurred" {
		message = defaultMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns a validator error into a user-facing
// message without echoing struct internals.
func SanitizeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Validation error"
	}

	first := validationErrors[0]
	return "Invalid " + strings.ToLower(first.Field()) + ": " + getValidationTagMessage(first.Tag())
}

// getValidationTagMessage maps validation tags to user-friendly error messages.
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// domainValidationErrors are the domain sentinels whose messages are safe
// to surface directly.
var domainValidationErrors = []error{
	domain.ErrTaskTitleEmpty,
	domain.ErrInvalidTaskStatus,
	domain.ErrInvalidTaskPriority,
	domain.ErrCategoryNameEmpty,
	domain.ErrEmptyUsername,
	domain.ErrEmptyEmail,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
}

func isDomainValidationError(err error) bool {
	for _, sentinel := range domainValidationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var validationErr *domain.ValidationError
	return errors.As(err, &validationErr)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
