package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthService sends the account emails.
type AuthService struct {
	mailer  config.Mailer
	baseURL string
}

func NewAuthService(mailer config.Mailer, cfg *config.AppConfig) *AuthService {
	return &AuthService{mailer: mailer, baseURL: cfg.BaseURL}
}

func (a *AuthService) SendWelcomeEmail(ctx context.Context, user *User) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to the GHX innovation exchange. Complete your profile to unlock mentor sessions: <a href=\"%s/dashboard/profile\">%s/dashboard/profile</a></p>",
		html.EscapeString(user.Name), a.baseURL, a.baseURL)
	return a.mailer.Send(ctx, config.Email{To: user.Email, Subject: "Welcome to GHX", HTML: body})
}

type UserService struct {
	repo        UserStore
	authService *AuthService
	tokens      *TokenManager
	setupKey    string
	logger      *zap.Logger
}

func NewUserService(repo UserStore, authService *AuthService, tokens *TokenManager, cfg *config.AppConfig, logger *zap.Logger) *UserService {
	return &UserService{
		repo:        repo,
		authService: authService,
		tokens:      tokens,
		setupKey:    cfg.AdminSetupKey,
		logger:      logger.Named("auth"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a member account. Password confirmation is checked before
// the store is touched.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperr.BadRequest("Passwords do not match")
	}
	role := req.Role
	if role == "" {
		role = RoleGuest
	}
	if role == RoleAdmin || !role.Valid() {
		return nil, apperr.Validation("Invalid role")
	}

	email := normalizeEmail(req.Email)
	existingUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to look up user", zap.String("email", email), zap.Error(err))
		return nil, apperr.Internal("Failed to register user: "+err.Error(), err)
	}
	if existingUser != nil {
		return nil, apperr.Conflict("Email already registered")
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to register user: "+err.Error(), err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hashPassword,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperr.Conflict("Email already registered")
		}
		s.logger.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, apperr.Internal("Failed to register user: "+err.Error(), err)
	}

	if err := s.authService.SendWelcomeEmail(ctx, user); err != nil {
		s.logger.Warn("welcome email not sent", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", string(role)))
	return user, nil
}

// AuthenticateUser checks the credential and issues an access token.
func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (*LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(cred.Email))
	if err != nil {
		s.logger.Error("failed to look up user", zap.Error(err))
		return nil, apperr.Internal("Failed to authenticate: "+err.Error(), err)
	}
	if user == nil || !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("Account is deactivated")
	}

	token, expiresAt, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return nil, apperr.Internal("Token not generated", err)
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: ToUserResponse(user)}, nil
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch user", zap.String("user_id", id.Hex()), zap.Error(err))
		return nil, apperr.Internal("Failed to fetch user: "+err.Error(), err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter UserFilter) ([]*User, error) {
	users, err := s.repo.ListUsers(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, apperr.Internal("Failed to fetch users: "+err.Error(), err)
	}
	return users, nil
}

// UpdateUser applies an admin edit. Admins cannot demote or deactivate themselves.
func (s *UserService) UpdateUser(ctx context.Context, actorID, id primitive.ObjectID, req UpdateUserRequest) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID == id {
		if req.Role != nil && *req.Role != RoleAdmin {
			return nil, apperr.Forbidden("Admins cannot change their own role")
		}
		if req.IsActive != nil && !*req.IsActive {
			return nil, apperr.Forbidden("Admins cannot deactivate themselves")
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to update user", zap.String("user_id", id.Hex()), zap.Error(err))
		return nil, apperr.Internal("Failed to update user: "+err.Error(), err)
	}
	return user, nil
}

// DeactivateUser is the soft delete for accounts.
func (s *UserService) DeactivateUser(ctx context.Context, actorID, id primitive.ObjectID) error {
	inactive := false
	_, err := s.UpdateUser(ctx, actorID, id, UpdateUserRequest{IsActive: &inactive})
	return err
}

// SetupAdmin creates the first admin account. It refuses once any admin exists.
func (s *UserService) SetupAdmin(ctx context.Context, req SetupAdminRequest) (*User, error) {
	if s.setupKey != "" && req.SetupKey != s.setupKey {
		return nil, apperr.Forbidden("Invalid setup key")
	}
	admins, err := s.repo.CountUsers(ctx, UserFilter{Role: RoleAdmin})
	if err != nil {
		s.logger.Error("failed to count admins", zap.Error(err))
		return nil, apperr.Internal("Failed to set up admin: "+err.Error(), err)
	}
	if admins > 0 {
		return nil, apperr.Conflict("Admin account already exists")
	}

	email := normalizeEmail(req.Email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to set up admin: "+err.Error(), err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to set up admin: "+err.Error(), err)
	}

	if existing != nil {
		existing.Role = RoleAdmin
		existing.IsActive = true
		existing.PasswordHash = hash
		if err := s.repo.UpdateUser(ctx, existing); err != nil {
			return nil, apperr.Internal("Failed to set up admin: "+err.Error(), err)
		}
		s.logger.Info("existing user promoted to admin", zap.String("user_id", existing.ID.Hex()))
		return existing, nil
	}

	now := time.Now().UTC()
	admin := &User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		return nil, apperr.Internal("Failed to set up admin: "+err.Error(), err)
	}
	s.logger.Info("admin account created", zap.String("user_id", admin.ID.Hex()))
	return admin, nil
}
