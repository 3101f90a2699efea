package usecase

import (
	"context"
	"errors"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/profile"
	"jobpilot/internal/domain/summary"
	"jobpilot/internal/domain/user"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const exportSummaryLimit = 366

// DataExport is everything stored for one user. Profile is nil when no
// LinkedIn account is connected.
type DataExport struct {
	User         user.User
	Profile      *profile.Profile
	Preference   profile.Preference
	Criteria     match.Criteria
	Setting      application.Setting
	Applications []repository.ApplicationListRow
	Matches      []repository.MatchListRow
	Summaries    []summary.DailySummary
}

type AccountDataUsecase interface {
	Export(ctx context.Context, userID uuid.UUID) (DataExport, error)
	DeleteMatches(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteApplications(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type AccountDataDeps struct {
	Users        user.Repository
	Profiles     repository.ProfileRepository
	Preferences  repository.PreferenceRepository
	Criteria     repository.CriteriaRepository
	Settings     repository.ApplicationSettingRepository
	Applications repository.ApplicationRepository
	Matches      repository.JobMatchRepository
	Summaries    repository.DailySummaryRepository
	Logger       *zap.Logger
}

type AccountData struct {
	d      AccountDataDeps
	logger *zap.Logger
}

func NewAccountDataUsecase(d AccountDataDeps) *AccountData {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountData{d: d, logger: logger.Named("account_data")}
}

func (u *AccountData) Export(ctx context.Context, userID uuid.UUID) (DataExport, error) {
	var (
		out DataExport
		err error
	)

	out.User, err = u.d.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return DataExport{}, ErrUserNotFound
		}
		return DataExport{}, u.internal("load user", userID, err)
	}
	out.User = out.User.Public()

	p, err := u.d.Profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		p.AccessToken = ""
		p.RefreshToken = ""
		out.Profile = &p
	case !errors.Is(err, repository.ErrNotFound):
		return DataExport{}, u.internal("load profile", userID, err)
	}

	if out.Preference, err = u.d.Preferences.GetOrCreate(ctx, userID); err != nil {
		return DataExport{}, u.internal("load preferences", userID, err)
	}
	if out.Criteria, err = u.d.Criteria.GetOrCreate(ctx, userID); err != nil {
		return DataExport{}, u.internal("load criteria", userID, err)
	}
	if out.Setting, err = u.d.Settings.GetOrCreate(ctx, userID); err != nil {
		return DataExport{}, u.internal("load application settings", userID, err)
	}
	if out.Applications, err = u.d.Applications.ListByUser(ctx, userID); err != nil {
		return DataExport{}, u.internal("list applications", userID, err)
	}
	out.Matches, err = u.d.Matches.List(ctx, userID, repository.MatchListFilter{
		MinScore: 0,
		MaxScore: 100,
		Status:   repository.ApplicationFilterAll,
	})
	if err != nil {
		return DataExport{}, u.internal("list matches", userID, err)
	}
	if out.Summaries, err = u.d.Summaries.List(ctx, userID, exportSummaryLimit); err != nil {
		return DataExport{}, u.internal("list summaries", userID, err)
	}

	u.logger.Info("data exported", zap.String("user_id", userID.String()))
	return out, nil
}

// DeleteMatches removes every match of the user. Stored daily summaries keep
// the counts they were computed with.
func (u *AccountData) DeleteMatches(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := u.d.Matches.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, u.internal("delete matches", userID, err)
	}
	u.logger.Info("matches deleted", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return n, nil
}

func (u *AccountData) DeleteApplications(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := u.d.Applications.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, u.internal("delete applications", userID, err)
	}
	u.logger.Info("applications deleted", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return n, nil
}

func (u *AccountData) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := u.d.Users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return u.internal("delete user", userID, err)
	}
	u.logger.Info("account deleted", zap.String("user_id", userID.String()))
	return nil
}

func (u *AccountData) internal(op string, userID uuid.UUID, err error) error {
	u.logger.Error(op, zap.String("user_id", userID.String()), zap.Error(err))
	return ErrInternal
}
