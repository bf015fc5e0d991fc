package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/logger"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the auth middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// requireUserID extracts the authenticated user ID or writes a 401 response.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log := logger.FromContextOrDefault(r.Context(), slog.Default())
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireUserIDAndPathUUID extracts the user ID from context and a UUID from
// the path, writing an error response if either fails.
func requireUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log := logger.FromContextOrDefault(r.Context(), slog.Default())
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// readUploadedFile pulls one file out of a multipart form, enforcing the
// given size limit (applied to the whole request body).
func readUploadedFile(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	maxBytes int64,
) (data []byte, filename, contentType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "File too large or invalid upload")
		return nil, "", "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing file field: "+field)
		return nil, "", "", false
	}
	defer func() { _ = file.Close() }()

	data, err = io.ReadAll(file)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, "", "", false
	}

	contentType = header.Header.Get("Content-Type")
	return data, header.Filename, contentType, true
}
