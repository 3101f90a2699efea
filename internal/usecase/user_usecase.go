package usecase

import (
	"context"
	"errors"

	"jobpilot/internal/domain/user"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
)

type UpdateMeInput struct {
	Email    *string
	Password *string
}

type Me struct {
	User              user.User `json:"user"`
	LinkedInConnected bool      `json:"linkedin_connected"`
	ProfileAnalyzed   bool      `json:"profile_analyzed"`
}

type UserUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (Me, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error)
}

type User struct {
	users    user.Repository
	profiles repository.ProfileRepository
}

func NewUserUsecase(users user.Repository, profiles repository.ProfileRepository) *User {
	return &User{users: users, profiles: profiles}
}

func (u *User) GetMe(ctx context.Context, userID uuid.UUID) (Me, error) {
	usr, err := u.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Me{}, ErrUserNotFound
		}
		return Me{}, ErrInternal
	}

	out := Me{User: usr.Public()}
	p, err := u.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		out.LinkedInConnected = p.Connected()
		out.ProfileAnalyzed = p.Analyzed()
	case !errors.Is(err, repository.ErrNotFound):
		return Me{}, ErrInternal
	}
	return out, nil
}

func (u *User) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateMeInput) (user.User, error) {
	usr, err := u.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, ErrInternal
	}

	if in.Email != nil {
		email := user.NormalizeEmail(*in.Email)
		if email == "" || !user.ValidEmail(email) {
			return user.User{}, ErrInvalidInput
		}
		if email != usr.Email {
			exists, err := u.users.ExistsByEmail(ctx, email)
			if err != nil {
				return user.User{}, ErrInternal
			}
			if exists {
				return user.User{}, ErrEmailAlreadyRegistered
			}
		}
		usr.Email = email
	}

	if in.Password != nil {
		if !isValidPassword(*in.Password) {
			return user.User{}, ErrInvalidInput
		}
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return user.User{}, err
		}
		usr.PasswordHash = hash
	}

	if err := u.users.UpdateUser(ctx, usr); err != nil {
		return user.User{}, ErrInternal
	}

	updated, err := u.users.GetUserByID(ctx, userID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return updated.Public(), nil
}
