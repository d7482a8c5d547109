package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"GHXPortal/internal/admin"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/auth/authtest"
	"GHXPortal/internal/config"
	"GHXPortal/internal/placeholder"
	"GHXPortal/internal/profile"
	"GHXPortal/pkg/middleware"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type upDatabase struct{}

func (upDatabase) Ping(context.Context) error              { return nil }
func (upDatabase) DataSize(context.Context) (int64, error) { return 0, nil }

type routeFixture struct {
	e      *echo.Echo
	users  *authtest.MemoryStore
	tokens *auth.TokenManager
}

// newRouteFixture registers the real route table. Handlers the tests never
// reach stay nil; the guards answer before them.
func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()
	cfg := &config.AppConfig{
		Environment:                "production",
		JWTSecret:                  "routes-secret",
		TokenTTL:                   time.Hour,
		AuthRateLimit:              10,
		ProfileCompletionThreshold: 80,
	}
	logger := zap.NewNop()
	users := authtest.NewMemoryStore()
	tokens := auth.NewTokenManager(cfg)
	guard, err := middleware.NewGuard(tokens, users, logger)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = request.NewValidator()
	e.HTTPErrorHandler = response.ErrorHandler(logger)
	RegisterRoutes(e, Handlers{
		Config:      cfg,
		Logger:      logger,
		Guard:       guard,
		Profile:     profile.NewProfileHandler(profile.NewProfileService(users, cfg, logger)),
		Admin:       admin.NewAdminHandler(nil, upDatabase{}, logger),
		Placeholder: placeholder.NewHandler(),
	})
	return &routeFixture{e: e, users: users, tokens: tokens}
}

func (f *routeFixture) token(t *testing.T, role auth.Role) string {
	t.Helper()
	user := &auth.User{ID: primitive.NewObjectID(), Name: "Member", Email: primitive.NewObjectID().Hex() + "@example.com", Role: role, IsActive: true}
	require.NoError(t, f.users.CreateUser(context.Background(), user))
	token, _, err := f.tokens.GenerateJWT(user)
	require.NoError(t, err)
	return token
}

func (f *routeFixture) do(method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec.Code
}

var adminRoutes = []struct{ method, path string }{
	{http.MethodGet, "/api/admin/programs"},
	{http.MethodPost, "/api/admin/programs"},
	{http.MethodDelete, "/api/admin/mentors/64b7f0c2a1e4c3b2d1f0e9a8"},
	{http.MethodGet, "/api/admin/users"},
	{http.MethodGet, "/api/admin/stats"},
	{http.MethodPost, "/api/test-notifications"},
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newRouteFixture(t)
	for _, r := range adminRoutes {
		assert.Equal(t, http.StatusUnauthorized, f.do(r.method, r.path, ""), "%s %s", r.method, r.path)
	}
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	f := newRouteFixture(t)
	token := f.token(t, auth.RoleStartup)
	for _, r := range adminRoutes {
		assert.Equal(t, http.StatusForbidden, f.do(r.method, r.path, token), "%s %s", r.method, r.path)
	}
}

func TestUnknownAPIPathsAreNotFound(t *testing.T) {
	f := newRouteFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/does-not-exist", ""))
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/test-db", ""), "test-db is development only")
}

func TestPublicAndMemberRoutes(t *testing.T) {
	f := newRouteFixture(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/placeholder/40x20/Hi", ""))

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/profile/completion", ""))
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/notifications", ""))
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/profile/completion", f.token(t, auth.RoleInvestor)))
}
