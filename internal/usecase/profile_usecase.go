package usecase

import (
	"context"
	"errors"
	"fmt"

	"jobpilot/internal/domain/profile"
	"jobpilot/internal/infrastructure/analysis"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileUsecase interface {
	AnalyzeProfile(ctx context.Context, userID uuid.UUID) (profile.Profile, error)
}

type Profile struct {
	profiles repository.ProfileRepository
	analyzer analysis.Client
	now      Clock
	logger   *zap.Logger
}

func NewProfileUsecase(profiles repository.ProfileRepository, analyzer analysis.Client, now Clock, logger *zap.Logger) *Profile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profile{profiles: profiles, analyzer: analyzer, now: clockOrNow(now), logger: logger.Named("profile")}
}

// AnalyzeProfile runs profile analysis on the stored LinkedIn payload and
// replaces the typed skills, experience and education of the profile.
func (u *Profile) AnalyzeProfile(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	p, err := u.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Profile{}, ErrProfileNotConnected
		}
		u.logger.Error("load profile", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, ErrInternal
	}
	if len(p.Payload) == 0 {
		return profile.Profile{}, ErrProfileIncomplete
	}

	res, err := u.analyzer.AnalyzeProfile(ctx, analysis.ProfileInput{Payload: p.Payload})
	if err != nil {
		u.logger.Warn("profile analysis failed", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	exp, edu := res.Experience, res.Education
	updated, err := u.profiles.UpdateAnalysis(ctx, userID, repository.ProfileAnalysisUpdate{
		Skills:     nonNilSkills(res.Skills),
		Experience: &exp,
		Education:  &edu,
		Summary:    res.Summary,
		AnalyzedAt: u.now(),
	})
	if err != nil {
		u.logger.Error("store profile analysis", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, ErrInternal
	}

	u.logger.Info("profile analyzed",
		zap.String("user_id", userID.String()),
		zap.Int("skills", len(updated.Skills)),
	)
	return updated, nil
}

func nonNilSkills(s []profile.Skill) []profile.Skill {
	if s == nil {
		return []profile.Skill{}
	}
	return s
}
