package profile_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/auth/authtest"
	"GHXPortal/internal/config"
	"GHXPortal/internal/profile"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func gateContext(user *auth.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/bookings", nil), rec)
	c.Set(auth.ContextKey, &auth.JWTClaims{UserID: user.ID.Hex(), Role: user.Role})
	return c, rec
}

func TestRequireCompleteProfile(t *testing.T) {
	incomplete := &auth.User{Name: "Sam", Role: auth.RoleStartup, IsActive: true}
	complete := &auth.User{
		Name: "Ada", Role: auth.RoleStartup, IsActive: true,
		Profile: auth.Profile{
			Organization: "Engines", Position: "CEO", Bio: "bio", Phone: "1",
			Location: "London", LinkedInURL: "https://linkedin.com/in/ada", AvatarURL: "https://x.test/a.png",
		},
	}
	admin := &auth.User{Role: auth.RoleAdmin, IsActive: true}
	store := authtest.NewMemoryStore(incomplete, complete, admin)

	svc := profile.NewProfileService(store, &config.AppConfig{ProfileCompletionThreshold: 80}, zap.NewNop())
	gate := profile.NewProfileHandler(svc).RequireCompleteProfile(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	c, _ := gateContext(incomplete)
	err := gate(c)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
	assert.Equal(t, apperr.CodeProfileIncomplete, appErr.Code)
	assert.Contains(t, appErr.Details, "completion")

	c, rec := gateContext(complete)
	require.NoError(t, gate(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = gateContext(admin)
	require.NoError(t, gate(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateProfileRaisesCompletion(t *testing.T) {
	user := &auth.User{Name: "Sam", Role: auth.RoleGuest, IsActive: true}
	store := authtest.NewMemoryStore(user)
	svc := profile.NewProfileService(store, &config.AppConfig{ProfileCompletionThreshold: 50}, zap.NewNop())

	org, pos, bio, loc := "Acme", "CTO", "Builds things", "Lagos"
	resp, err := svc.UpdateProfile(context.Background(), user.ID, profile.UpdateProfileRequest{
		Organization: &org, Position: &pos, Bio: &bio, Location: &loc,
	})
	require.NoError(t, err)
	assert.Equal(t, 55, resp.Completion.Percentage)
	assert.True(t, resp.Completion.Complete)
	assert.Equal(t, 1, store.Updates)
}
