package usecase

import (
	"context"
	"strings"
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/profile"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Nil fields of the update inputs keep their stored value.

type CriteriaInput struct {
	MinMatchThreshold  *int
	SkillsWeight       *int
	ExperienceWeight   *int
	EducationWeight    *int
	PreferredCompanies []string
}

type ApplicationSettingInput struct {
	DailyLimit          *int
	ApplicationTime     *string
	CustomMessage       *string
	NotifyOnApplication *bool
	NotifyOnResponse    *bool
}

type PreferenceInput struct {
	Location        *string
	Industries      []string
	JobTypes        []string
	ExperienceLevel *string
	SalaryMin       *int
	SalaryMax       *int
}

type SettingsUsecase interface {
	GetCriteria(ctx context.Context, userID uuid.UUID) (match.Criteria, error)
	UpdateCriteria(ctx context.Context, userID uuid.UUID, in CriteriaInput) (match.Criteria, error)
	GetApplicationSetting(ctx context.Context, userID uuid.UUID) (application.Setting, error)
	UpdateApplicationSetting(ctx context.Context, userID uuid.UUID, in ApplicationSettingInput) (application.Setting, error)
	GetPreference(ctx context.Context, userID uuid.UUID) (profile.Preference, error)
	UpdatePreference(ctx context.Context, userID uuid.UUID, in PreferenceInput) (profile.Preference, error)
	SetAutomationActive(ctx context.Context, userID uuid.UUID, active bool) (application.Setting, error)
}

type Settings struct {
	criteria    repository.CriteriaRepository
	settings    repository.ApplicationSettingRepository
	preferences repository.PreferenceRepository
	logger      *zap.Logger
}

func NewSettingsUsecase(
	criteria repository.CriteriaRepository,
	settings repository.ApplicationSettingRepository,
	preferences repository.PreferenceRepository,
	logger *zap.Logger,
) *Settings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Settings{criteria: criteria, settings: settings, preferences: preferences, logger: logger.Named("settings")}
}

func (u *Settings) GetCriteria(ctx context.Context, userID uuid.UUID) (match.Criteria, error) {
	c, err := u.criteria.GetOrCreate(ctx, userID)
	if err != nil {
		return match.Criteria{}, u.internal("load criteria", userID, err)
	}
	return c, nil
}

func (u *Settings) UpdateCriteria(ctx context.Context, userID uuid.UUID, in CriteriaInput) (match.Criteria, error) {
	c, err := u.criteria.GetOrCreate(ctx, userID)
	if err != nil {
		return match.Criteria{}, u.internal("load criteria", userID, err)
	}

	for _, f := range []struct {
		in  *int
		dst *int
	}{
		{in.MinMatchThreshold, &c.MinMatchThreshold},
		{in.SkillsWeight, &c.SkillsWeight},
		{in.ExperienceWeight, &c.ExperienceWeight},
		{in.EducationWeight, &c.EducationWeight},
	} {
		if f.in == nil {
			continue
		}
		if *f.in < 0 || *f.in > 100 {
			return match.Criteria{}, ErrInvalidInput
		}
		*f.dst = *f.in
	}
	if in.PreferredCompanies != nil {
		c.PreferredCompanies = cleanList(in.PreferredCompanies)
	}

	updated, err := u.criteria.Update(ctx, c)
	if err != nil {
		return match.Criteria{}, u.internal("update criteria", userID, err)
	}
	return updated, nil
}

func (u *Settings) GetApplicationSetting(ctx context.Context, userID uuid.UUID) (application.Setting, error) {
	s, err := u.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return application.Setting{}, u.internal("load application settings", userID, err)
	}
	return s, nil
}

func (u *Settings) UpdateApplicationSetting(ctx context.Context, userID uuid.UUID, in ApplicationSettingInput) (application.Setting, error) {
	s, err := u.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return application.Setting{}, u.internal("load application settings", userID, err)
	}

	if in.DailyLimit != nil {
		if *in.DailyLimit < 1 {
			return application.Setting{}, ErrInvalidInput
		}
		s.DailyLimit = *in.DailyLimit
	}
	if in.ApplicationTime != nil {
		at := strings.TrimSpace(*in.ApplicationTime)
		if _, err := time.Parse("15:04", at); err != nil {
			return application.Setting{}, ErrInvalidInput
		}
		s.ApplicationTime = at
	}
	if in.CustomMessage != nil {
		s.CustomMessage = strings.TrimSpace(*in.CustomMessage)
	}
	if in.NotifyOnApplication != nil {
		s.NotifyOnApplication = *in.NotifyOnApplication
	}
	if in.NotifyOnResponse != nil {
		s.NotifyOnResponse = *in.NotifyOnResponse
	}

	updated, err := u.settings.Update(ctx, s)
	if err != nil {
		return application.Setting{}, u.internal("update application settings", userID, err)
	}
	return updated, nil
}

func (u *Settings) GetPreference(ctx context.Context, userID uuid.UUID) (profile.Preference, error) {
	p, err := u.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		return profile.Preference{}, u.internal("load preferences", userID, err)
	}
	return p, nil
}

func (u *Settings) UpdatePreference(ctx context.Context, userID uuid.UUID, in PreferenceInput) (profile.Preference, error) {
	p, err := u.preferences.GetOrCreate(ctx, userID)
	if err != nil {
		return profile.Preference{}, u.internal("load preferences", userID, err)
	}

	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Industries != nil {
		p.Industries = cleanList(in.Industries)
	}
	if in.JobTypes != nil {
		p.JobTypes = cleanList(in.JobTypes)
	}
	if in.ExperienceLevel != nil {
		p.ExperienceLevel = strings.TrimSpace(*in.ExperienceLevel)
	}
	if in.SalaryMin != nil {
		p.SalaryMin = in.SalaryMin
	}
	if in.SalaryMax != nil {
		p.SalaryMax = in.SalaryMax
	}
	if (p.SalaryMin != nil && *p.SalaryMin < 0) || (p.SalaryMax != nil && *p.SalaryMax < 0) {
		return profile.Preference{}, ErrInvalidInput
	}
	if p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin > *p.SalaryMax {
		return profile.Preference{}, ErrInvalidInput
	}

	updated, err := u.preferences.Update(ctx, p)
	if err != nil {
		return profile.Preference{}, u.internal("update preferences", userID, err)
	}
	return updated, nil
}

// SetAutomationActive flips the stored automation flag. Nothing runs on a
// schedule; the flag is reported back through settings and dashboard stats.
func (u *Settings) SetAutomationActive(ctx context.Context, userID uuid.UUID, active bool) (application.Setting, error) {
	s, err := u.settings.SetActive(ctx, userID, active)
	if err != nil {
		return application.Setting{}, u.internal("set automation flag", userID, err)
	}
	u.logger.Info("automation toggled", zap.String("user_id", userID.String()), zap.Bool("active", active))
	return s, nil
}

func (u *Settings) internal(op string, userID uuid.UUID, err error) error {
	u.logger.Error(op, zap.String("user_id", userID.String()), zap.Error(err))
	return ErrInternal
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
