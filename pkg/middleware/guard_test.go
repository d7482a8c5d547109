package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/auth/authtest"
	"GHXPortal/internal/config"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type guardFixture struct {
	e      *echo.Echo
	tokens *auth.TokenManager
	users  *authtest.MemoryStore
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	tokens := auth.NewTokenManager(&config.AppConfig{JWTSecret: "guard-secret", TokenTTL: time.Hour})
	users := authtest.NewMemoryStore()
	guard, err := NewGuard(tokens, users, zap.NewNop())
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler(zap.NewNop())
	ok := func(c echo.Context) error {
		claims, _ := auth.ClaimsFrom(c)
		return c.String(http.StatusOK, string(claims.Role))
	}
	e.GET("/me", ok, guard.RequireAuth)
	e.GET("/admin", ok, guard.RequireAuth, guard.RequireAdmin)
	e.POST("/bookings", ok, guard.RequireAuth, guard.RequirePermission("bookings", "write"))
	e.POST("/mentors", ok, guard.RequireAuth, guard.RequirePermission("mentors", "write"))
	return &guardFixture{e: e, tokens: tokens, users: users}
}

// signIn stores an active user with the given role and returns its token.
func (f *guardFixture) signIn(t *testing.T, role auth.Role) (*auth.User, string) {
	t.Helper()
	user := &auth.User{ID: primitive.NewObjectID(), Email: primitive.NewObjectID().Hex() + "@example.com", Role: role, IsActive: true}
	require.NoError(t, f.users.CreateUser(context.Background(), user))
	token, _, err := f.tokens.GenerateJWT(user)
	require.NoError(t, err)
	return user, token
}

func (f *guardFixture) token(t *testing.T, role auth.Role) string {
	t.Helper()
	_, token := f.signIn(t, role)
	return token
}

func (f *guardFixture) do(method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apperr.Code {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestRequireAuth(t *testing.T) {
	f := newGuardFixture(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, "/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apperr.CodeUnauthorized, errorCode(t, rec))
		})
	}

	rec := f.do(http.MethodGet, "/me", "Bearer "+f.token(t, auth.RoleStartup))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "startup", rec.Body.String())
}

func TestRequireAuth_RejectsTokenFromAnotherKey(t *testing.T) {
	f := newGuardFixture(t)
	other := auth.NewTokenManager(&config.AppConfig{JWTSecret: "someone-else", TokenTTL: time.Hour})
	token, _, err := other.GenerateJWT(&auth.User{ID: primitive.NewObjectID(), Role: auth.RoleAdmin})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	f := newGuardFixture(t)

	rec := f.do(http.MethodGet, "/admin", "Bearer "+f.token(t, auth.RoleMentor))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperr.CodeForbidden, errorCode(t, rec))

	rec = f.do(http.MethodGet, "/admin", "Bearer "+f.token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	f := newGuardFixture(t)

	for _, role := range auth.MemberRoles {
		rec := f.do(http.MethodPost, "/bookings", "Bearer "+f.token(t, role))
		assert.Equal(t, http.StatusOK, rec.Code, "role %s should book sessions", role)
	}

	rec := f.do(http.MethodPost, "/mentors", "Bearer "+f.token(t, auth.RoleInvestor))
	require.Equal(t, http.StatusForbidden, rec.Code)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "mentors", env.Error.Details["resource"])
	assert.Equal(t, "write", env.Error.Details["action"])

	rec = f.do(http.MethodPost, "/mentors", "Bearer "+f.token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnforcerPolicy(t *testing.T) {
	enforcer, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		role, obj, act string
		want           bool
	}{
		{"admin", "users", "delete", true},
		{"admin", "stats", "read", true},
		{"guest", "programs", "read", true},
		{"mentor", "notifications", "write", true},
		{"startup", "programs", "write", false},
		{"investor", "users", "read", false},
		{"unknown", "programs", "read", false},
	}
	for _, tt := range tests {
		got, err := enforcer.Enforce(tt.role, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", tt.role, tt.act, tt.obj)
	}
}

func TestRequireAuth_DeactivatedAccount(t *testing.T) {
	f := newGuardFixture(t)
	user, token := f.signIn(t, auth.RoleStartup)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/bookings", "Bearer "+token).Code)

	user.IsActive = false
	require.NoError(t, f.users.UpdateUser(context.Background(), user))

	rec := f.do(http.MethodPost, "/bookings", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperr.CodeForbidden, errorCode(t, rec))
}

func TestRequireAuth_StoredRoleWins(t *testing.T) {
	f := newGuardFixture(t)
	user, token := f.signIn(t, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/admin", "Bearer "+token).Code)

	user.Role = auth.RoleInvestor
	require.NoError(t, f.users.UpdateUser(context.Background(), user))

	rec := f.do(http.MethodGet, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(http.MethodGet, "/me", "Bearer "+token)
	assert.Equal(t, "investor", rec.Body.String())
}

func TestRequireAuth_UnknownOrUnreadableAccount(t *testing.T) {
	f := newGuardFixture(t)
	ghost, _, err := f.tokens.GenerateJWT(&auth.User{ID: primitive.NewObjectID(), Role: auth.RoleAdmin})
	require.NoError(t, err)
	rec := f.do(http.MethodGet, "/me", "Bearer "+ghost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := f.token(t, auth.RoleMentor)
	f.users.Err = errors.New("server selection timeout")
	rec = f.do(http.MethodGet, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
