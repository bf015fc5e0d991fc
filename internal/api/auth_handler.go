package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/todox-app/todox-api/internal/api/shared"
	"github.com/todox-app/todox-api/internal/platform/logger"
	"github.com/todox-app/todox-api/internal/service"
	"github.com/todox-app/todox-api/internal/service/auth"
	"github.com/todox-app/todox-api/internal/store"
)

// maxAvatarBytes caps avatar uploads at 5MB.
const maxAvatarBytes = 5 << 20

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService service.UserService, jwtService auth.JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   validator.New(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		// Duplicate accounts respond 400, not 409, so registration forms get
		// a plain validation-style failure.
		if errors.Is(err, store.ErrUserExists) {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Token: token,
		User:  NewUserResponse(user),
	})
}

// Login handles POST /auth/login. Unknown emails and wrong passwords get
// the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, GetSafeErrorMessage(err))
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token: token,
		User:  NewUserResponse(user),
	})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{User: NewUserResponse(user)})
}

// UploadAvatar handles POST /auth/avatar. Expects a multipart form with an
// "avatar" image field.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	data, filename, contentType, ok := readUploadedFile(w, r, "avatar", maxAvatarBytes)
	if !ok {
		return
	}

	user, err := h.userService.UploadAvatar(r.Context(), userID, filename, contentType, data)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upload avatar")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{User: NewUserResponse(user)})
}
