package dto

import (
	"time"

	"github.com/connecthub/connecthub/internal/domain/user"
)

type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name"`
	Role             string     `json:"role"`
	SubscriptionTier string     `json:"subscription_tier"`
	Status           string     `json:"status"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type PreferencesResponse struct {
	Theme               string    `json:"theme"`
	Language            string    `json:"language"`
	Timezone            string    `json:"timezone"`
	EmailNotifications  bool      `json:"email_notifications"`
	DefaultWorkspaceSID string    `json:"default_workspace_id,omitempty"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

type AuthResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

type UpdatePreferencesRequest struct {
	Theme               *string `json:"theme,omitempty" binding:"omitempty,oneof=light dark system"`
	Language            *string `json:"language,omitempty"`
	Timezone            *string `json:"timezone,omitempty"`
	EmailNotifications  *bool   `json:"email_notifications,omitempty"`
	DefaultWorkspaceSID *string `json:"default_workspace_id,omitempty"`
}

type ListUsersRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Role     string `form:"role" binding:"omitempty,oneof=admin client invited_user"`
	Tier     string `form:"tier" binding:"omitempty,oneof=free pro enterprise"`
	Status   string `form:"status" binding:"omitempty,oneof=active disabled"`
	Search   string `form:"search"`
}

type UpdateUserAccessRequest struct {
	Role             *string `json:"role,omitempty" binding:"omitempty,oneof=admin client invited_user"`
	SubscriptionTier *string `json:"subscription_tier,omitempty" binding:"omitempty,oneof=free pro enterprise"`
	Status           *string `json:"status,omitempty" binding:"omitempty,oneof=active disabled"`
}

func ToUserResponse(u *user.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:               u.SID(),
		Email:            u.Email(),
		DisplayName:      u.DisplayName(),
		Role:             u.Role().String(),
		SubscriptionTier: string(u.Tier()),
		Status:           string(u.Status()),
		LastLoginAt:      u.LastLoginAt(),
		CreatedAt:        u.CreatedAt(),
		UpdatedAt:        u.UpdatedAt(),
	}
}

func ToPreferencesResponse(p *user.Preferences) *PreferencesResponse {
	return &PreferencesResponse{
		Theme:               string(p.Theme),
		Language:            p.Language,
		Timezone:            p.Timezone,
		EmailNotifications:  p.EmailNotifications,
		DefaultWorkspaceSID: p.DefaultWorkspaceSID,
		UpdatedAt:           p.UpdatedAt,
	}
}
