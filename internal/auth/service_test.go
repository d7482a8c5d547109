package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/auth/authtest"
	"GHXPortal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, email config.Email) error {
	return m.Called(ctx, email).Error(0)
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		BaseURL:   "http://portal.test",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
}

func newService(t *testing.T, store auth.UserStore, mailer config.Mailer) *auth.UserService {
	t.Helper()
	cfg := testConfig()
	return auth.NewUserService(store, auth.NewAuthService(mailer, cfg), auth.NewTokenManager(cfg), cfg, zap.NewNop())
}

func registerRequest(email string) auth.RegisterRequest {
	return auth.RegisterRequest{
		Name:            "Ada Lovelace",
		Email:           email,
		Password:        "supersecret",
		ConfirmPassword: "supersecret",
		Role:            auth.RoleStartup,
	}
}

func TestRegisterUser(t *testing.T) {
	store := authtest.NewMemoryStore()
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(e config.Email) bool {
		return e.To == "ada@example.com"
	})).Return(nil).Once()
	svc := newService(t, store, mailer)

	user, err := svc.RegisterUser(context.Background(), registerRequest("  Ada@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, auth.RoleStartup, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("supersecret", user.PasswordHash))
	assert.Equal(t, 1, store.Len())
	mailer.AssertExpectations(t)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	store := authtest.NewMemoryStore(&auth.User{Email: "ada@example.com", Role: auth.RoleGuest, IsActive: true})
	mailer := new(mockMailer)
	svc := newService(t, store, mailer)

	user, err := svc.RegisterUser(context.Background(), registerRequest("ada@example.com"))
	assert.Nil(t, user)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, apperr.CodeConflict, appErr.Code)
	assert.Equal(t, 0, store.Creates)
	assert.Equal(t, 1, store.Len())
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRegisterUser_PasswordMismatchSkipsStore(t *testing.T) {
	store := authtest.NewMemoryStore()
	store.Err = errors.New("store must not be called")
	svc := newService(t, store, new(mockMailer))

	req := registerRequest("ada@example.com")
	req.ConfirmPassword = "different"
	_, err := svc.RegisterUser(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))
}

func TestRegisterUser_RejectsAdminRole(t *testing.T) {
	svc := newService(t, authtest.NewMemoryStore(), new(mockMailer))
	req := registerRequest("ada@example.com")
	req.Role = auth.RoleAdmin
	_, err := svc.RegisterUser(context.Background(), req)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestRegisterUser_WelcomeEmailFailureKeepsUser(t *testing.T) {
	store := authtest.NewMemoryStore()
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc := newService(t, store, mailer)

	user, err := svc.RegisterUser(context.Background(), registerRequest("ada@example.com"))
	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, 1, store.Len())
}

func TestAuthenticateUser(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)
	existing := &auth.User{Email: "ada@example.com", PasswordHash: hash, Name: "Ada", Role: auth.RoleInvestor, IsActive: true}
	store := authtest.NewMemoryStore(existing)
	svc := newService(t, store, new(mockMailer))

	resp, err := svc.AuthenticateUser(context.Background(), auth.Credential{Email: "ADA@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, existing.ID.Hex(), resp.User.ID)

	stored, err := store.FindByID(context.Background(), existing.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)

	claims, err := auth.NewTokenManager(testConfig()).ValidateJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, existing.ID.Hex(), claims.UserID)
	assert.Equal(t, auth.RoleInvestor, claims.Role)
}

func TestAuthenticateUser_Failures(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)
	store := authtest.NewMemoryStore(
		&auth.User{Email: "ada@example.com", PasswordHash: hash, Role: auth.RoleGuest, IsActive: true},
		&auth.User{Email: "old@example.com", PasswordHash: hash, Role: auth.RoleGuest, IsActive: false},
	)
	svc := newService(t, store, new(mockMailer))
	ctx := context.Background()

	_, err = svc.AuthenticateUser(ctx, auth.Credential{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = svc.AuthenticateUser(ctx, auth.Credential{Email: "nobody@example.com", Password: "supersecret"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	_, err = svc.AuthenticateUser(ctx, auth.Credential{Email: "old@example.com", Password: "supersecret"})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestUpdateUser_AdminCannotDemoteSelf(t *testing.T) {
	admin := &auth.User{Email: "root@example.com", Role: auth.RoleAdmin, IsActive: true}
	store := authtest.NewMemoryStore(admin)
	svc := newService(t, store, new(mockMailer))

	role := auth.RoleGuest
	_, err := svc.UpdateUser(context.Background(), admin.ID, admin.ID, auth.UpdateUserRequest{Role: &role})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	err = svc.DeactivateUser(context.Background(), admin.ID, admin.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestSetupAdmin_OnlyOnce(t *testing.T) {
	store := authtest.NewMemoryStore()
	svc := newService(t, store, new(mockMailer))
	req := auth.SetupAdminRequest{Name: "Root", Email: "root@example.com", Password: "supersecret"}

	admin, err := svc.SetupAdmin(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)

	_, err = svc.SetupAdmin(context.Background(), auth.SetupAdminRequest{Name: "Two", Email: "two@example.com", Password: "supersecret"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}
