package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobpilot/internal/domain/job"
	"jobpilot/internal/infrastructure/importer"
	"jobpilot/internal/repository"
	"jobpilot/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobImporter interface {
	Fetch(ctx context.Context, rawURL string) (importer.Posting, error)
}

type SearchJobsInput struct {
	Keywords string
	Location string
}

type SearchJobsResult struct {
	Jobs    []job.Job
	Created int
	Matched int
}

type JobUsecase interface {
	SearchJobs(ctx context.Context, userID uuid.UUID, in SearchJobsInput) (SearchJobsResult, error)
	ImportJob(ctx context.Context, userID uuid.UUID, rawURL string) (job.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (job.Job, error)
}

type Jobs struct {
	jobs     repository.JobRepository
	importer JobImporter
	matcher  MatchingUsecase
	logger   *zap.Logger
}

// NewJobUsecase wires job discovery. matcher may be nil; when set, every job
// returned by a search or import is matched against the user's profile.
func NewJobUsecase(jobs repository.JobRepository, imp JobImporter, matcher MatchingUsecase, logger *zap.Logger) *Jobs {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Jobs{jobs: jobs, importer: imp, matcher: matcher, logger: logger.Named("jobs")}
}

// SearchJobs stores the sample catalogue, skipping postings already known by
// external id. Keywords and location order the result by relevance but do
// not filter it.
func (u *Jobs) SearchJobs(ctx context.Context, userID uuid.UUID, in SearchJobsInput) (SearchJobsResult, error) {
	u.logger.Info("job search",
		zap.String("user_id", userID.String()),
		zap.String("keywords", strings.TrimSpace(in.Keywords)),
		zap.String("location", strings.TrimSpace(in.Location)),
	)

	out := SearchJobsResult{Jobs: make([]job.Job, 0)}
	for _, sample := range job.Samples() {
		sample.ID = uuid.New()
		stored, created, err := u.jobs.CreateIfNotExists(ctx, sample)
		if err != nil {
			u.logger.Error("store job", zap.String("external_id", sample.ExternalJobID), zap.Error(err))
			return SearchJobsResult{}, ErrInternal
		}
		if created {
			out.Created++
		}
		out.Jobs = append(out.Jobs, stored)
	}

	out.Jobs = search.Rank(out.Jobs, search.ParseQuery(in.Keywords, in.Location), time.Now().UTC())
	out.Matched = u.matchAll(ctx, userID, out.Jobs)
	return out, nil
}

func (u *Jobs) ImportJob(ctx context.Context, userID uuid.UUID, rawURL string) (job.Job, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return job.Job{}, ErrInvalidInput
	}
	if u.importer == nil {
		return job.Job{}, ErrImportFailed
	}

	p, err := u.importer.Fetch(ctx, rawURL)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrInvalidURL), errors.Is(err, importer.ErrNoJobPosting):
			return job.Job{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		default:
			return job.Job{}, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
	}

	stored, created, err := u.jobs.CreateIfNotExists(ctx, job.Job{
		ID:             uuid.New(),
		ExternalJobID:  p.ExternalJobID,
		Title:          p.Title,
		Company:        p.Company,
		Location:       p.Location,
		Description:    p.Description,
		JobURL:         p.JobURL,
		EmploymentType: p.EmploymentType,
		Industries:     []string{},
		PostedAt:       p.PostedAt,
	})
	if err != nil {
		u.logger.Error("store imported job", zap.String("external_id", p.ExternalJobID), zap.Error(err))
		return job.Job{}, ErrInternal
	}
	u.logger.Info("job imported",
		zap.String("user_id", userID.String()),
		zap.String("job_id", stored.ID.String()),
		zap.Bool("created", created),
	)

	u.matchAll(ctx, userID, []job.Job{stored})
	return stored, nil
}

func (u *Jobs) GetJob(ctx context.Context, jobID uuid.UUID) (job.Job, error) {
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

// matchAll computes matches for jobs and returns how many succeeded. A
// profile that is not analyzed yet ends the loop quietly; other failures are
// logged and skipped.
func (u *Jobs) matchAll(ctx context.Context, userID uuid.UUID, jobs []job.Job) int {
	if u.matcher == nil {
		return 0
	}
	matched := 0
	for _, j := range jobs {
		if _, err := u.matcher.GetOrComputeMatch(ctx, userID, j.ID); err != nil {
			if errors.Is(err, ErrProfileIncomplete) {
				return matched
			}
			u.logger.Warn("match after search failed", zap.String("job_id", j.ID.String()), zap.Error(err))
			continue
		}
		matched++
	}
	return matched
}
