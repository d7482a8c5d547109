package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleGuest    Role = "guest"
	RoleStartup  Role = "startup"
	RoleInvestor Role = "investor"
	RoleMentor   Role = "mentor"
	RoleAdmin    Role = "admin"
)

// MemberRoles are the roles a user may pick at registration.
var MemberRoles = []Role{RoleGuest, RoleStartup, RoleInvestor, RoleMentor}

func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleStartup, RoleInvestor, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Name         string             `bson:"name"`
	Role         Role               `bson:"role"`
	IsActive     bool               `bson:"is_active"`
	Profile      Profile            `bson:"profile"`
	LastLoginAt  *time.Time         `bson:"last_login_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// Profile is the user-editable part of the account that the dashboard gates on.
type Profile struct {
	Organization string   `bson:"organization" json:"organization"`
	Position     string   `bson:"position" json:"position"`
	Bio          string   `bson:"bio" json:"bio"`
	Phone        string   `bson:"phone" json:"phone"`
	Location     string   `bson:"location" json:"location"`
	LinkedInURL  string   `bson:"linkedin_url" json:"linkedinUrl"`
	AvatarURL    string   `bson:"avatar_url" json:"avatarUrl"`
	Interests    []string `bson:"interests" json:"interests"`
}

// UserFilter narrows admin user listings. Zero values match everything.
type UserFilter struct {
	Role   Role
	Active *bool
	Query  string
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Role            Role   `json:"role" validate:"omitempty,oneof=guest startup investor mentor"`
}

type Credential struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetupAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	SetupKey string `json:"setupKey"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=guest startup investor mentor admin"`
	IsActive *bool   `json:"isActive"`
}

// UserResponse is the API shape of a user; the password hash never leaves the
// service.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	IsActive    bool       `json:"isActive"`
	Profile     Profile    `json:"profile"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Profile:     u.Profile,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ToUserResponses(users []*User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
