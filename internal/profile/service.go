package profile

import (
	"context"
	"strings"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/internal/config"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UpdateProfileRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Organization *string  `json:"organization" validate:"omitempty,max=200"`
	Position     *string  `json:"position" validate:"omitempty,max=200"`
	Bio          *string  `json:"bio" validate:"omitempty,max=2000"`
	Phone        *string  `json:"phone" validate:"omitempty,max=40"`
	Location     *string  `json:"location" validate:"omitempty,max=200"`
	LinkedInURL  *string  `json:"linkedinUrl" validate:"omitempty,url"`
	AvatarURL    *string  `json:"avatarUrl" validate:"omitempty,url"`
	Interests    []string `json:"interests" validate:"omitempty,max=20,dive,min=1,max=60"`
}

type ProfileResponse struct {
	User       auth.UserResponse `json:"user"`
	Completion Completion        `json:"completion"`
}

type ProfileService struct {
	users     auth.UserStore
	threshold int
	logger    *zap.Logger
}

func NewProfileService(users auth.UserStore, cfg *config.AppConfig, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, threshold: cfg.ProfileCompletionThreshold, logger: logger.Named("profile")}
}

func (s *ProfileService) load(ctx context.Context, userID primitive.ObjectID) (*auth.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, apperr.Internal("Failed to load profile: "+err.Error(), err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*ProfileResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: auth.ToUserResponse(user), Completion: Compute(user, s.threshold)}, nil
}

func (s *ProfileService) GetCompletion(ctx context.Context, userID primitive.ObjectID) (Completion, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return Completion{}, err
	}
	return Compute(user, s.threshold), nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&user.Name, req.Name)
	set(&user.Profile.Organization, req.Organization)
	set(&user.Profile.Position, req.Position)
	set(&user.Profile.Bio, req.Bio)
	set(&user.Profile.Phone, req.Phone)
	set(&user.Profile.Location, req.Location)
	set(&user.Profile.LinkedInURL, req.LinkedInURL)
	set(&user.Profile.AvatarURL, req.AvatarURL)
	if req.Interests != nil {
		user.Profile.Interests = req.Interests
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to update profile", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, apperr.Internal("Failed to update profile: "+err.Error(), err)
	}
	return &ProfileResponse{User: auth.ToUserResponse(user), Completion: Compute(user, s.threshold)}, nil
}
