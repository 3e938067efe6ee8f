package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connecthub/connecthub/internal/domain/user"
	"github.com/connecthub/connecthub/internal/infrastructure/auth"
	"github.com/connecthub/connecthub/internal/infrastructure/ratelimit"
	"github.com/connecthub/connecthub/internal/shared/authorization"
	"github.com/connecthub/connecthub/internal/shared/constants"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserLookup struct {
	users map[string]*user.User
	err   error
}

func (f *fakeUserLookup) GetBySID(ctx context.Context, sid string) (*user.User, error) {
	return f.users[sid], f.err
}

func newStoredUser(t *testing.T, id uint, role authorization.UserRole, status user.Status) *user.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := user.ReconstructUser(id, "usr_test", "ada@example.com", "Ada", "hash", role, user.TierFree, status, nil, now, now, 1)
	require.NoError(t, err)
	return u
}

func serveAuth(mw *AuthMiddleware, header string) (*httptest.ResponseRecorder, map[string]any) {
	seen := map[string]any{}
	r := gin.New()
	r.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		seen["id"] = c.GetUint(constants.ContextKeyUserID)
		seen["role"] = c.GetString(constants.ContextKeyUserRole)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(constants.HeaderAuthorization, header)
	}
	r.ServeHTTP(w, req)
	return w, seen
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret-with-enough-length", 15, 7)
	// The token claims client; the stored account has since been promoted.
	pair, err := jwtSvc.Generate("usr_test", authorization.RoleClient)
	require.NoError(t, err)

	t.Run("stored role wins over token role", func(t *testing.T) {
		users := &fakeUserLookup{users: map[string]*user.User{
			"usr_test": newStoredUser(t, 42, authorization.RoleAdmin, user.StatusActive),
		}}
		w, seen := serveAuth(NewAuthMiddleware(jwtSvc, users, logger.NewNopLogger()), "Bearer "+pair.AccessToken)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(42), seen["id"])
		assert.Equal(t, "admin", seen["role"])
	})

	tests := []struct {
		name   string
		header string
		users  *fakeUserLookup
		status int
	}{
		{"missing header", "", &fakeUserLookup{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + pair.AccessToken, &fakeUserLookup{}, http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.RefreshToken, &fakeUserLookup{}, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", &fakeUserLookup{}, http.StatusUnauthorized},
		{"deleted account", "Bearer " + pair.AccessToken, &fakeUserLookup{users: map[string]*user.User{}}, http.StatusUnauthorized},
		{"disabled account", "Bearer " + pair.AccessToken, &fakeUserLookup{users: map[string]*user.User{
			"usr_test": newStoredUser(t, 42, authorization.RoleClient, user.StatusDisabled),
		}}, http.StatusForbidden},
		{"lookup failure", "Bearer " + pair.AccessToken, &fakeUserLookup{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, seen := serveAuth(NewAuthMiddleware(jwtSvc, tt.users, logger.NewNopLogger()), tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, seen)
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	return false, 0, errors.New("redis unavailable")
}

func (failingLimiter) Reset(ctx context.Context, key string) error { return nil }

func TestRateLimiter_Limit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(ratelimit.NewRedisRateLimiter(client, 2, time.Minute), "auth", logger.NewNopLogger())
	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "198.51.100.4:5000"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients have their own window")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(failingLimiter{}, "auth", logger.NewNopLogger())
	r := gin.New()
	r.POST("/login", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com/"}))
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.NewNopLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestAPIVersion(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		accept     string
		wantStatus int
		wantHeader string
	}{
		{name: "default", wantStatus: http.StatusOK, wantHeader: "1"},
		{name: "explicit header", header: "1", wantStatus: http.StatusOK, wantHeader: "1"},
		{name: "vendor accept", accept: "application/vnd.connecthub.v1+json", wantStatus: http.StatusOK, wantHeader: "1"},
		{name: "future version", header: "7", wantStatus: http.StatusBadRequest},
		{name: "garbage", header: "latest", wantStatus: http.StatusBadRequest},
		{name: "unsupported vendor", accept: "application/vnd.connecthub.v0+json", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(APIVersion())
			var seen int
			r.GET("/v", func(c *gin.Context) {
				seen = GetAPIVersion(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/v", nil)
			if tt.header != "" {
				req.Header.Set(HeaderAPIVersion, tt.header)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantHeader, w.Header().Get(HeaderAPIVersion))
				assert.Equal(t, CurrentAPIVersion, seen)
			}
		})
	}
}
