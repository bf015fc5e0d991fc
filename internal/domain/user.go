package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered user of the application.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used transiently during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	AvatarURL      string    `json:"avatar,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given username, email and password.
// It generates a new UUID for the user ID and sets the creation/update
// timestamps. Returns an error if validation fails.
//
// NOTE: this function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(username, email, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		Password:  password,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 { // bcrypt's practical limit
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Users loaded from the database carry only the hash.
		return ErrEmptyPassword
	}

	return nil
}

// validateEmailFormat performs basic validation of email format: a single @
// with a dotted domain part. Anything stricter belongs to the boundary
// validator, which uses proper email validation tags.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
