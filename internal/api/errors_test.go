package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/service/auth"
	"github.com/todox-app/todox-api/internal/service/transfer"
	"github.com/todox-app/todox-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing auth context", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"attachment not found", store.ErrAttachmentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrCategoryNotFound), http.StatusNotFound},
		{"duplicate user", store.ErrUserExists, http.StatusBadRequest},
		{"duplicate category", store.ErrCategoryExists, http.StatusBadRequest},
		{"unknown category", service.ErrUnknownCategory, http.StatusBadRequest},
		{"bad filter", service.ErrInvalidTimeWindow, http.StatusBadRequest},
		{"bad upload type", service.ErrUnsupportedFileType, http.StatusBadRequest},
		{"malformed import", transfer.ErrMalformedJSON, http.StatusBadRequest},
		{"unknown export format", transfer.ErrUnsupportedFormat, http.StatusBadRequest},
		{"empty title", domain.ErrTaskTitleEmpty, http.StatusBadRequest},
		{"storage misconfigured", service.ErrStorageUnavailable, http.StatusInternalServerError},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid email or password"},
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"duplicate user", store.ErrUserExists, "Username or email already in use"},
		{"malformed import", transfer.ErrMalformedJSON, "Invalid JSON file format"},
		{"storage misconfigured", service.ErrStorageUnavailable, "Storage not configured"},
		{"domain validation passes through", domain.ErrTaskTitleEmpty, "Task title cannot be empty"},
		{"internal detail hidden", errors.New("pq: relation tasks does not exist"), "An unexpected error occurred"},
		{"nil error", nil, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksWrappedDetail(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("query users where email = 'a@b.c': %w", store.ErrUserNotFound)
	msg := GetSafeErrorMessage(wrapped)
	assert.Equal(t, "User not found", msg)
	assert.NotContains(t, msg, "a@b.c")
}
