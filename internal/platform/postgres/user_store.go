package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/platform/logger"
	"github.com/todox-app/todox-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	query := `
		INSERT INTO users (id, username, email, hashed_password, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate username or email during user creation",
				slog.String("user_id", user.ID.String()))
			return store.ErrUserExists
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, username, email, hashed_password, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("user_id", id.String()))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, username, email, hashed_password, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// ExistsByUsernameOrEmail implements store.UserStore.ExistsByUsernameOrEmail
func (s *PostgresUserStore) ExistsByUsernameOrEmail(
	ctx context.Context,
	username, email string,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1 OR email = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		log.Error("failed to check user existence", slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

// UpdateAvatar implements store.UserStore.UpdateAvatar
func (s *PostgresUserStore) UpdateAvatar(
	ctx context.Context,
	id uuid.UUID,
	avatarURL string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET avatar_url = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, username, email, hashed_password, avatar_url, created_at, updated_at
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, avatarURL, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found for avatar update", slog.String("user_id", id.String()))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to update avatar",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	log.Info("avatar updated successfully", slog.String("user_id", id.String()))
	return &user, nil
}
