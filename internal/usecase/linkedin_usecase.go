package usecase

import (
	"context"
	"errors"
	"strings"

	"jobpilot/internal/domain/profile"
	"jobpilot/internal/infrastructure/linkedin"
	"jobpilot/internal/pkg/jwt"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LinkedInOAuth is the part of the LinkedIn client the connect flow needs.
type LinkedInOAuth interface {
	Enabled() bool
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (linkedin.Token, error)
	FetchMember(ctx context.Context, accessToken string) (linkedin.Member, error)
}

type LinkedInUsecase interface {
	AuthorizeURL(ctx context.Context, userID uuid.UUID) (string, error)
	Connect(ctx context.Context, userID uuid.UUID, code, state string) (profile.Profile, error)
	Disconnect(ctx context.Context, userID uuid.UUID) error
}

type LinkedIn struct {
	oauth    LinkedInOAuth
	tokens   jwt.Service
	profiles repository.ProfileRepository
	analyzer ProfileUsecase
	logger   *zap.Logger
}

// NewLinkedInUsecase wires the connect flow. analyzer may be nil; when set,
// a freshly connected profile is analyzed right away.
func NewLinkedInUsecase(oauth LinkedInOAuth, tokens jwt.Service, profiles repository.ProfileRepository, analyzer ProfileUsecase, logger *zap.Logger) *LinkedIn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkedIn{oauth: oauth, tokens: tokens, profiles: profiles, analyzer: analyzer, logger: logger.Named("linkedin")}
}

func (u *LinkedIn) AuthorizeURL(_ context.Context, userID uuid.UUID) (string, error) {
	if !u.oauth.Enabled() {
		return "", ErrLinkedInNotConfigured
	}
	state, err := u.tokens.GenerateStateToken(userID)
	if err != nil {
		return "", ErrInternal
	}
	url, err := u.oauth.AuthCodeURL(state)
	if err != nil {
		return "", ErrLinkedInNotConfigured
	}
	return url, nil
}

func (u *LinkedIn) Connect(ctx context.Context, userID uuid.UUID, code, state string) (profile.Profile, error) {
	if !u.oauth.Enabled() {
		return profile.Profile{}, ErrLinkedInNotConfigured
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return profile.Profile{}, ErrInvalidInput
	}
	if claims, err := u.tokens.Parse(state, jwt.TokenTypeState); err != nil || claims.UserID != userID {
		return profile.Profile{}, ErrInvalidState
	}

	tok, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		u.logger.Warn("token exchange failed", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, ErrLinkedInFailed
	}
	member, err := u.oauth.FetchMember(ctx, tok.AccessToken)
	if err != nil {
		u.logger.Warn("profile fetch failed", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, ErrLinkedInFailed
	}

	p := profile.Profile{
		UserID:       userID,
		LinkedInID:   member.ID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Payload:      member.Payload,
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		p.TokenExpiry = &exp
	}

	stored, err := u.profiles.Upsert(ctx, p)
	if err != nil {
		u.logger.Error("store profile", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, ErrInternal
	}
	u.logger.Info("linkedin connected", zap.String("user_id", userID.String()), zap.String("linkedin_id", member.ID))

	if u.analyzer != nil {
		analyzed, err := u.analyzer.AnalyzeProfile(ctx, userID)
		if err != nil {
			u.logger.Warn("initial profile analysis failed", zap.String("user_id", userID.String()), zap.Error(err))
			return stored, nil
		}
		return analyzed, nil
	}
	return stored, nil
}

func (u *LinkedIn) Disconnect(ctx context.Context, userID uuid.UUID) error {
	if err := u.profiles.DeleteByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return ErrInternal
	}
	u.logger.Info("linkedin disconnected", zap.String("user_id", userID.String()))
	return nil
}
