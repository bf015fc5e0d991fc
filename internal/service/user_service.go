package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/blob"
	"github.com/todox-app/todox-api/internal/service/auth"
	"github.com/todox-app/todox-api/internal/store"
)

// avatarContentTypes is the allow-list for avatar uploads.
var avatarContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UserService provides account operations: registration, authentication,
// profile retrieval, and avatar upload.
type UserService interface {
	// Register creates a new account. Returns store.ErrUserExists when the
	// username or email is already taken.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate verifies the email/password pair and returns the user.
	// Returns auth.ErrInvalidCredentials for both an unknown email and a
	// wrong password, so responses cannot be used to enumerate accounts.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UploadAvatar stores an avatar image and updates the user's avatar
	// reference. Only image content types are accepted.
	UploadAvatar(
		ctx context.Context,
		userID uuid.UUID,
		filename, contentType string,
		data []byte,
	) (*domain.User, error)
}

type userService struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	storage   blob.Storage
	logger    *slog.Logger
	now       func() time.Time // Injectable for testing
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	storage blob.Storage,
	logger *slog.Logger,
) UserService {
	return &userService{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		storage:   storage,
		logger:    logger.With("component", "user_service"),
		now:       time.Now,
	}
}

// Register implements UserService.Register.
func (s *userService) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	// Early duplicate check for a friendlier error; the unique constraints
	// still catch the race on insert.
	taken, err := s.userStore.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken {
		return nil, store.ErrUserExists
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		if !errors.Is(err, store.ErrUserExists) {
			s.logger.Error("failed to create user",
				"error", err,
				"email", user.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"username", user.Username)
	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *userService) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID implements UserService.GetByID.
func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UploadAvatar implements UserService.UploadAvatar.
func (s *userService) UploadAvatar(
	ctx context.Context,
	userID uuid.UUID,
	filename, contentType string,
	data []byte,
) (*domain.User, error) {
	ext, ok := avatarContentTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	if origExt := strings.ToLower(path.Ext(filename)); origExt != "" {
		ext = origExt
	}

	key := fmt.Sprintf("%s/%s/%d_%s%s",
		blob.PurposeAvatars, userID, s.now().UnixMilli(), randomSuffix(), ext)

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	user, err := s.userStore.UpdateAvatar(ctx, userID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	s.logger.Info("avatar updated",
		"user_id", userID,
		"size", len(data))
	return user, nil
}

// randomSuffix returns a short hex string to keep avatar keys unique within
// the same millisecond.
func randomSuffix() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}
