package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/application/user/dto"
	"github.com/connecthub/connecthub/internal/application/user/usecases"
	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/interfaces/http/handlers/testutil"
	"github.com/connecthub/connecthub/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockAuthUC struct {
	result  *usecases.AuthResult
	err     error
	lastReg usecases.RegisterCommand
	called  bool
}

func (m *mockAuthUC) Execute(ctx context.Context, cmd usecases.RegisterCommand) (*usecases.AuthResult, error) {
	m.called = true
	m.lastReg = cmd
	return m.result, m.err
}

type mockLoginUC struct {
	result *usecases.AuthResult
	err    error
}

func (m *mockLoginUC) Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.AuthResult, error) {
	return m.result, m.err
}

type mockRefreshTokenUC struct {
	result *usecases.AuthResult
	err    error
}

func (m *mockRefreshTokenUC) Execute(ctx context.Context, cmd usecases.RefreshTokenCommand) (*usecases.AuthResult, error) {
	return m.result, m.err
}

type mockGetProfileUC struct {
	user   *user.User
	err    error
	lastID uint
}

func (m *mockGetProfileUC) Execute(ctx context.Context, userID uint) (*user.User, error) {
	m.lastID = userID
	return m.user, m.err
}

// =====================================================================
// Helpers
// =====================================================================

func newTestUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("ada@example.com", "Ada", "hashed")
	require.NoError(t, err)
	return u
}

func newAuthResult(t *testing.T) *usecases.AuthResult {
	return &usecases.AuthResult{
		User:         newTestUser(t),
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
	}
}

type authHandlerMocks struct {
	register *mockAuthUC
	login    *mockLoginUC
	refresh  *mockRefreshTokenUC
	profile  *mockGetProfileUC
}

func newTestAuthHandler() (*AuthHandler, *authHandlerMocks) {
	m := &authHandlerMocks{
		register: &mockAuthUC{},
		login:    &mockLoginUC{},
		refresh:  &mockRefreshTokenUC{},
		profile:  &mockGetProfileUC{},
	}
	h := NewAuthHandler(m.register, m.login, m.refresh, m.profile, testutil.NewMockLogger())
	return h, m
}

// =====================================================================
// Tests
// =====================================================================

func TestAuthHandler_Register_Success(t *testing.T) {
	h, m := newTestAuthHandler()
	m.register.result = newAuthResult(t)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/register", map[string]any{
		"email":        "ada@example.com",
		"password":     "correct-horse",
		"display_name": "Ada",
	})

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var data dto.AuthResponse
	resp, err := testutil.ParseData(w, &data)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "access", data.AccessToken)
	assert.Equal(t, "Bearer", data.TokenType)
	assert.Equal(t, "ada@example.com", data.User.Email)
	assert.Equal(t, "Ada", m.register.lastReg.DisplayName)
}

func TestAuthHandler_Register_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"password": "correct-horse"}},
		{"malformed email", map[string]any{"email": "not-an-email", "password": "correct-horse"}},
		{"short password", map[string]any{"email": "ada@example.com", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestAuthHandler()
			c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/register", tt.body)

			h.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, m.register.called)
		})
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h, m := newTestAuthHandler()
	m.register.err = errors.NewConflictError("email already registered")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "ada@example.com",
		"password": "correct-horse",
	})

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "conflict", resp.Error.Type)
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, m := newTestAuthHandler()
		m.login.result = newAuthResult(t)

		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "ada@example.com",
			"password": "correct-horse",
		})
		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var data dto.AuthResponse
		_, err := testutil.ParseData(w, &data)
		require.NoError(t, err)
		assert.Equal(t, "refresh", data.RefreshToken)
		assert.EqualValues(t, 900, data.ExpiresIn)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		h, m := newTestAuthHandler()
		m.login.err = errors.NewUnauthorizedError("invalid email or password")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "ada@example.com",
			"password": "wrong",
		})
		h.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	h, m := newTestAuthHandler()
	m.refresh.err = errors.NewUnauthorizedError("invalid refresh token")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/refresh", map[string]any{"refresh_token": "expired"})
	h.RefreshToken(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = testutil.NewTestContext(http.MethodPost, "/api/auth/refresh", map[string]any{})
	h.RefreshToken(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		h, _ := newTestAuthHandler()
		c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/me", nil)

		h.Me(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns current user", func(t *testing.T) {
		h, m := newTestAuthHandler()
		m.profile.user = newTestUser(t)

		c, w := testutil.NewTestContext(http.MethodGet, "/api/auth/me", nil)
		testutil.SetAuthContext(c, 7, "usr_abc", "client")
		h.Me(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(7), m.profile.lastID)
		var data dto.UserResponse
		_, err := testutil.ParseData(w, &data)
		require.NoError(t, err)
		assert.Equal(t, "client", data.Role)
	})
}
