package dto

import (
	"time"

	"jobpilot/internal/domain/user"
	"jobpilot/internal/usecase"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MeResponse struct {
	UserResponse
	LinkedInConnected bool `json:"linkedin_connected"`
	ProfileAnalyzed   bool `json:"profile_analyzed"`
}

type AuthResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func NewMeResponse(me usecase.Me) MeResponse {
	return MeResponse{
		UserResponse:      NewUserResponse(me.User),
		LinkedInConnected: me.LinkedInConnected,
		ProfileAnalyzed:   me.ProfileAnalyzed,
	}
}

func NewAuthResponse(u *user.User, tokens usecase.TokenPair) AuthResponse {
	out := AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}
	if u != nil {
		ur := NewUserResponse(*u)
		out.User = &ur
	}
	return out
}
