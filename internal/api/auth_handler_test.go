package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todox-app/todox-api/internal/domain"
	"github.com/todox-app/todox-api/internal/service/auth"
	"github.com/todox-app/todox-api/internal/store"
)

// stubUserService lets each test script the service outcome per call.
type stubUserService struct {
	registerFn     func(ctx context.Context, username, email, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getByIDFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (s *stubUserService) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubUserService) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubUserService) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.getByIDFn(ctx, userID)
}

func (s *stubUserService) UploadAvatar(
	ctx context.Context,
	userID uuid.UUID,
	filename, contentType string,
	data []byte,
) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

type stubJWTService struct {
	token string
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.token, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func testUser() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Username:  "alice",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestLoginDoesNotDistinguishUnknownEmailFromWrongPassword(t *testing.T) {
	t.Parallel()

	// Unknown account and wrong password both surface ErrInvalidCredentials
	// from the service. The handler must render them identically.
	users := &stubUserService{
		authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
			return nil, auth.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(users, &stubJWTService{token: "t"})

	unknownEmail := postJSON(t, handler.Login, "/api/auth/login",
		`{"email":"nobody@example.com","password":"correct-horse"}`)
	wrongPassword := postJSON(t, handler.Login, "/api/auth/login",
		`{"email":"alice@example.com","password":"not-her-password"}`)

	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(unknownEmail.Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(wrongPassword.Body.Bytes(), &second))
	assert.Equal(t, "Invalid email or password", first["error"])
	assert.Equal(t, first["error"], second["error"])
}

func TestLoginSuccessReturnsTokenAndUser(t *testing.T) {
	t.Parallel()

	user := testUser()
	users := &stubUserService{
		authenticateFn: func(ctx context.Context, email, password string) (*domain.User, error) {
			return user, nil
		},
	}
	handler := NewAuthHandler(users, &stubJWTService{token: "signed-token"})

	w := postJSON(t, handler.Login, "/api/auth/login",
		`{"email":"alice@example.com","password":"correct-horse"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestRegisterDuplicateAccount(t *testing.T) {
	t.Parallel()

	users := &stubUserService{
		registerFn: func(ctx context.Context, username, email, password string) (*domain.User, error) {
			return nil, store.ErrUserExists
		},
	}
	handler := NewAuthHandler(users, &stubJWTService{token: "t"})

	w := postJSON(t, handler.Register, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username or email already in use")
}

func TestRegisterValidatesRequest(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(&stubUserService{}, &stubJWTService{token: "t"})

	tests := []struct {
		name string
		body string
	}{
		{"short password", `{"username":"alice","email":"alice@example.com","password":"short"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"longenough"}`},
		{"short username", `{"username":"al","email":"alice@example.com","password":"longenough"}`},
		{"not json", `username=alice`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := postJSON(t, handler.Register, "/api/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
