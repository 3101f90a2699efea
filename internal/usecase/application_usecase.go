package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/summary"
	"jobpilot/internal/infrastructure/linkedin"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationSubmitter interface {
	Submit(ctx context.Context, req linkedin.SubmitRequest) (linkedin.Submission, error)
}

type UpdateStatusInput struct {
	Status string
	Notes  *string
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, userID, jobID uuid.UUID) (application.JobApplication, error)
	ListApplications(ctx context.Context, userID uuid.UUID) ([]repository.ApplicationListRow, error)
	UpdateStatus(ctx context.Context, userID, applicationID uuid.UUID, in UpdateStatusInput) (application.JobApplication, error)
}

type Application struct {
	jobs         repository.JobRepository
	profiles     repository.ProfileRepository
	applications repository.ApplicationRepository
	submitter    ApplicationSubmitter
	notifier     Notifier
	now          Clock
	logger       *zap.Logger
}

func NewApplicationUsecase(
	jobs repository.JobRepository,
	profiles repository.ProfileRepository,
	applications repository.ApplicationRepository,
	submitter ApplicationSubmitter,
	notifier Notifier,
	now Clock,
	logger *zap.Logger,
) *Application {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		jobs:         jobs,
		profiles:     profiles,
		applications: applications,
		submitter:    submitter,
		notifier:     notifierOrNop(notifier),
		now:          clockOrNow(now),
		logger:       logger.Named("application"),
	}
}

// Apply submits an application for (user, job). The daily limit check and
// the insert run under a per-user lock, so concurrent applies by one user
// can never exceed the limit.
func (u *Application) Apply(ctx context.Context, userID, jobID uuid.UUID) (application.JobApplication, error) {
	j, err := u.loadJob(ctx, jobID)
	if err != nil {
		return application.JobApplication{}, err
	}

	applied, err := u.applications.Exists(ctx, userID, jobID)
	if err != nil {
		u.logger.Error("check application", zap.Error(err))
		return application.JobApplication{}, ErrInternal
	}
	if applied {
		return application.JobApplication{}, ErrAlreadyApplied
	}

	p, err := u.profiles.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		u.logger.Error("load profile", zap.Error(err))
		return application.JobApplication{}, ErrInternal
	}
	if err != nil || !p.Connected() {
		return application.JobApplication{}, ErrProfileNotConnected
	}

	now := u.now().UTC()
	dayStart := summary.Day(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var (
		created   application.JobApplication
		submitted *linkedin.Submission
	)
	err = u.applications.WithUserLock(ctx, userID, func(store repository.ApplicationStore) error {
		setting, err := store.Setting(ctx, userID)
		if err != nil {
			return err
		}

		applied, err := store.Exists(ctx, userID, jobID)
		if err != nil {
			return err
		}
		if applied {
			return ErrAlreadyApplied
		}

		count, err := store.CountAppliedBetween(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if count >= setting.DailyLimit {
			u.logger.Info("daily limit reached",
				zap.String("user_id", userID.String()),
				zap.Int("count", count),
				zap.Int("limit", setting.DailyLimit),
			)
			return ErrDailyLimitReached
		}

		// Submit runs while the user's lock is held, so a failed insert below
		// leaves a sent submission with no row.
		// TODO: insert a pending row first and mark it submitted afterwards
		// before wiring a non-simulated submitter.
		start := time.Now()
		sub, err := u.submitter.Submit(ctx, linkedin.SubmitRequest{
			UserID:        userID,
			AccessToken:   p.AccessToken,
			ExternalJobID: j.ExternalJobID,
			Message:       setting.CustomMessage,
		})
		if err != nil {
			u.logger.Warn("submission failed", zap.String("user_id", userID.String()), zap.String("job_id", jobID.String()), zap.Error(err))
			return ErrLinkedInFailed
		}
		latency := time.Since(start)
		submitted = &sub

		if err := store.LogAPICall(ctx, application.APICallLog{
			UserID:       userID,
			Endpoint:     sub.Endpoint,
			Method:       sub.Method,
			StatusCode:   sub.StatusCode,
			ResponseTime: latency.Seconds(),
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		a := application.JobApplication{
			ID:                    uuid.New(),
			UserID:                userID,
			JobID:                 jobID,
			ExternalApplicationID: sub.ExternalApplicationID,
			Status:                application.StatusSubmitted,
			AppliedAt:             now,
		}
		if err := store.Create(ctx, a); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyApplied
			}
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return application.JobApplication{}, err
		}
		if submitted != nil {
			u.logger.Error("submission sent but not recorded",
				zap.String("user_id", userID.String()),
				zap.String("job_id", jobID.String()),
				zap.String("external_application_id", submitted.ExternalApplicationID),
				zap.Error(err),
			)
			return application.JobApplication{}, ErrInternal
		}
		u.logger.Error("apply", zap.String("user_id", userID.String()), zap.String("job_id", jobID.String()), zap.Error(err))
		return application.JobApplication{}, ErrInternal
	}

	u.logger.Info("application submitted",
		zap.String("user_id", userID.String()),
		zap.String("job_id", jobID.String()),
		zap.String("external_application_id", created.ExternalApplicationID),
	)
	u.notifier.Notify(userID, EventApplicationSubmitted, map[string]any{
		"application_id": created.ID,
		"job_id":         j.ID,
		"job_title":      j.Title,
		"company":        j.Company,
	})
	return created, nil
}

func (u *Application) ListApplications(ctx context.Context, userID uuid.UUID) ([]repository.ApplicationListRow, error) {
	rows, err := u.applications.ListByUser(ctx, userID)
	if err != nil {
		u.logger.Error("list applications", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return rows, nil
}

func (u *Application) UpdateStatus(ctx context.Context, userID, applicationID uuid.UUID, in UpdateStatusInput) (application.JobApplication, error) {
	to, ok := application.ParseStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !ok {
		return application.JobApplication{}, ErrInvalidInput
	}

	a, err := u.applications.GetByID(ctx, userID, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return application.JobApplication{}, ErrApplicationNotFound
		}
		return application.JobApplication{}, ErrInternal
	}
	if !a.Status.CanTransition(to) {
		return application.JobApplication{}, ErrInvalidTransition
	}

	a.Status = to
	if to.IsResponse() && a.ResponseAt == nil {
		at := u.now().UTC()
		a.ResponseAt = &at
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	updated, err := u.applications.UpdateStatus(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return application.JobApplication{}, ErrApplicationNotFound
		}
		u.logger.Error("update application status", zap.String("application_id", applicationID.String()), zap.Error(err))
		return application.JobApplication{}, ErrInternal
	}
	return updated, nil
}

func (u *Application) loadJob(ctx context.Context, jobID uuid.UUID) (job.Job, error) {
	if jobID == uuid.Nil {
		return job.Job{}, ErrJobNotFound
	}
	j, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, ErrJobNotFound
		}
		u.logger.Error("load job", zap.String("job_id", jobID.String()), zap.Error(err))
		return job.Job{}, ErrInternal
	}
	return j, nil
}
