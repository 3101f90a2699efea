package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/matching"
	"jobpilot/internal/domain/profile"
	"jobpilot/internal/infrastructure/analysis"
	"jobpilot/internal/infrastructure/cache"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const refreshLockTTL = 5 * time.Minute

// Locker is a best-effort mutual exclusion keyed by string.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

type MatchFilter struct {
	MinScore *int
	MaxScore *int
	Status   string
}

type MatchDetail struct {
	Match       match.JobMatch
	Job         job.Job
	Analysis    *job.Analysis
	Application *application.JobApplication
	Bucket      matching.Bucket
}

type MatchingUsecase interface {
	GetOrComputeMatch(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error)
	RefreshMatch(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error)
	RefreshAllMatches(ctx context.Context, userID uuid.UUID) (int, error)
	ListMatches(ctx context.Context, userID uuid.UUID, f MatchFilter) ([]repository.MatchListRow, error)
	GetMatchDetail(ctx context.Context, userID, jobID uuid.UUID) (MatchDetail, error)
	AnalyzeJob(ctx context.Context, jobID uuid.UUID) (job.Analysis, error)
}

type MatchingDeps struct {
	Jobs         repository.JobRepository
	Analyses     repository.JobAnalysisRepository
	Matches      repository.JobMatchRepository
	Profiles     repository.ProfileRepository
	Criteria     repository.CriteriaRepository
	Applications repository.ApplicationRepository
	Analyzer     analysis.Client
	Locker       Locker
	Notifier     Notifier
	Now          Clock
	Logger       *zap.Logger
}

type Matching struct {
	jobs         repository.JobRepository
	analyses     repository.JobAnalysisRepository
	matches      repository.JobMatchRepository
	profiles     repository.ProfileRepository
	criteria     repository.CriteriaRepository
	applications repository.ApplicationRepository
	analyzer     analysis.Client
	locker       Locker
	notifier     Notifier
	now          Clock
	logger       *zap.Logger
}

func NewMatchingUsecase(d MatchingDeps) *Matching {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locker := d.Locker
	if locker == nil {
		locker = cache.Disabled()
	}
	return &Matching{
		jobs:         d.Jobs,
		analyses:     d.Analyses,
		matches:      d.Matches,
		profiles:     d.Profiles,
		criteria:     d.Criteria,
		applications: d.Applications,
		analyzer:     d.Analyzer,
		locker:       locker,
		notifier:     notifierOrNop(d.Notifier),
		now:          clockOrNow(d.Now),
		logger:       logger.Named("matching"),
	}
}

// GetOrComputeMatch returns the stored match for (user, job), computing and
// storing it first when absent. Concurrent callers all receive the single
// stored row.
func (u *Matching) GetOrComputeMatch(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error) {
	j, err := u.loadJob(ctx, jobID)
	if err != nil {
		return match.JobMatch{}, err
	}

	existing, err := u.matches.Get(ctx, userID, jobID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		u.logger.Error("load match", zap.String("user_id", userID.String()), zap.String("job_id", jobID.String()), zap.Error(err))
		return match.JobMatch{}, ErrInternal
	}

	p, err := u.loadAnalyzedProfile(ctx, userID)
	if err != nil {
		return match.JobMatch{}, err
	}
	return u.compute(ctx, p, j)
}

// RefreshMatch computes a new match for (user, job) and swaps it for the
// stored one. The stored match is kept when the analysis fails.
func (u *Matching) RefreshMatch(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error) {
	j, err := u.loadJob(ctx, jobID)
	if err != nil {
		return match.JobMatch{}, err
	}
	p, err := u.loadAnalyzedProfile(ctx, userID)
	if err != nil {
		return match.JobMatch{}, err
	}
	return u.refresh(ctx, p, j)
}

// RefreshAllMatches refreshes the user's match for every stored job in
// turn. It stops at the first failure and reports how many were refreshed
// before it; matches refreshed by then stay refreshed.
func (u *Matching) RefreshAllMatches(ctx context.Context, userID uuid.UUID) (int, error) {
	unlock, acquired, err := u.locker.TryLock(ctx, cache.RefreshLockKey(userID), refreshLockTTL)
	if err != nil {
		u.logger.Warn("refresh lock unavailable, continuing unlocked", zap.Error(err))
		acquired = true
	}
	if !acquired {
		return 0, ErrRefreshInProgress
	}
	if unlock == nil {
		unlock = func(context.Context) error { return nil }
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			u.logger.Warn("release refresh lock", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}()

	p, err := u.loadAnalyzedProfile(ctx, userID)
	if err != nil {
		return 0, err
	}

	jobs, err := u.jobs.ListAll(ctx)
	if err != nil {
		u.logger.Error("list jobs", zap.Error(err))
		return 0, ErrInternal
	}

	refreshed := 0
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := u.refresh(ctx, p, j); err != nil {
			u.logger.Warn("bulk refresh stopped",
				zap.String("user_id", userID.String()),
				zap.String("job_id", j.ID.String()),
				zap.Int("refreshed", refreshed),
				zap.Error(err),
			)
			return refreshed, err
		}
		refreshed++
	}

	u.logger.Info("matches refreshed", zap.String("user_id", userID.String()), zap.Int("count", refreshed))
	u.notifier.Notify(userID, EventMatchesRefreshed, map[string]any{"count": refreshed})
	return refreshed, nil
}

func (u *Matching) ListMatches(ctx context.Context, userID uuid.UUID, f MatchFilter) ([]repository.MatchListRow, error) {
	filter := repository.MatchListFilter{MinScore: 0, MaxScore: 100, Status: repository.ApplicationFilterAll}
	if f.MinScore != nil {
		filter.MinScore = *f.MinScore
	}
	if f.MaxScore != nil {
		filter.MaxScore = *f.MaxScore
	}
	if filter.MinScore < 0 || filter.MaxScore > 100 || filter.MinScore > filter.MaxScore {
		return nil, ErrInvalidInput
	}
	switch repository.ApplicationFilter(f.Status) {
	case "", repository.ApplicationFilterAll:
	case repository.ApplicationFilterApplied, repository.ApplicationFilterNotApplied:
		filter.Status = repository.ApplicationFilter(f.Status)
	default:
		return nil, ErrInvalidInput
	}

	rows, err := u.matches.List(ctx, userID, filter)
	if err != nil {
		u.logger.Error("list matches", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return rows, nil
}

func (u *Matching) GetMatchDetail(ctx context.Context, userID, jobID uuid.UUID) (MatchDetail, error) {
	j, err := u.loadJob(ctx, jobID)
	if err != nil {
		return MatchDetail{}, err
	}

	m, err := u.matches.Get(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MatchDetail{}, ErrMatchNotFound
		}
		return MatchDetail{}, ErrInternal
	}

	out := MatchDetail{Match: m, Job: j, Bucket: matching.BucketOf(m.MatchScore)}

	a, err := u.analyses.GetByJobID(ctx, jobID)
	switch {
	case err == nil:
		out.Analysis = &a
	case !errors.Is(err, repository.ErrNotFound):
		return MatchDetail{}, ErrInternal
	}

	app, err := u.applications.GetByJob(ctx, userID, jobID)
	switch {
	case err == nil:
		out.Application = &app
	case !errors.Is(err, repository.ErrNotFound):
		return MatchDetail{}, ErrInternal
	}
	return out, nil
}

// AnalyzeJob returns the job's requirement analysis, calling the analysis
// service only when none is stored yet.
func (u *Matching) AnalyzeJob(ctx context.Context, jobID uuid.UUID) (job.Analysis, error) {
	j, err := u.loadJob(ctx, jobID)
	if err != nil {
		return job.Analysis{}, err
	}
	return u.analysisFor(ctx, j)
}

// refresh evaluates the match before touching the stored row, so a failed
// analysis leaves the previous match in place.
func (u *Matching) refresh(ctx context.Context, p profile.Profile, j job.Job) (match.JobMatch, error) {
	m, err := u.evaluate(ctx, p, j)
	if err != nil {
		return match.JobMatch{}, err
	}
	stored, err := u.matches.Replace(ctx, m)
	if err != nil {
		u.logger.Error("replace match", zap.String("user_id", p.UserID.String()), zap.String("job_id", j.ID.String()), zap.Error(err))
		return match.JobMatch{}, ErrInternal
	}
	u.matchStored(p.UserID, j, stored)
	return stored, nil
}

func (u *Matching) compute(ctx context.Context, p profile.Profile, j job.Job) (match.JobMatch, error) {
	m, err := u.evaluate(ctx, p, j)
	if err != nil {
		return match.JobMatch{}, err
	}
	stored, created, err := u.matches.CreateIfAbsent(ctx, m)
	if err != nil {
		u.logger.Error("store match", zap.String("user_id", p.UserID.String()), zap.String("job_id", j.ID.String()), zap.Error(err))
		return match.JobMatch{}, ErrInternal
	}
	if created {
		u.matchStored(p.UserID, j, stored)
	}
	return stored, nil
}

// evaluate runs the analysis calls for (profile, job) and returns the match
// without storing it. Only the job analysis is persisted.
func (u *Matching) evaluate(ctx context.Context, p profile.Profile, j job.Job) (match.JobMatch, error) {
	a, err := u.analysisFor(ctx, j)
	if err != nil {
		return match.JobMatch{}, err
	}

	crit, err := u.criteria.GetOrCreate(ctx, p.UserID)
	if err != nil {
		u.logger.Error("load criteria", zap.String("user_id", p.UserID.String()), zap.Error(err))
		return match.JobMatch{}, ErrInternal
	}

	res, err := u.analyzer.MatchJobToProfile(ctx, buildMatchInput(p, j, a, crit))
	if err != nil {
		u.logger.Warn("match analysis failed", zap.String("user_id", p.UserID.String()), zap.String("job_id", j.ID.String()), zap.Error(err))
		return match.JobMatch{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return match.JobMatch{
		ID:              uuid.New(),
		UserID:          p.UserID,
		JobID:           j.ID,
		MatchScore:      matching.ClampScore(res.MatchScore),
		MatchingSkills:  nonNilStrings(res.MatchingSkills),
		MissingSkills:   nonNilStrings(res.MissingSkills),
		ExperienceMatch: res.ExperienceMatch,
		EducationMatch:  res.EducationMatch,
		Summary:         res.Summary,
		Details:         res.Raw,
		SchemaVersion:   match.SchemaVersion,
		CreatedAt:       u.now().UTC(),
	}, nil
}

func (u *Matching) matchStored(userID uuid.UUID, j job.Job, m match.JobMatch) {
	u.logger.Info("match stored",
		zap.String("user_id", userID.String()),
		zap.String("job_id", j.ID.String()),
		zap.Int("score", m.MatchScore),
		zap.String("bucket", string(matching.BucketOf(m.MatchScore))),
	)
	u.notifier.Notify(userID, EventMatchCreated, map[string]any{
		"job_id":      j.ID,
		"job_title":   j.Title,
		"company":     j.Company,
		"match_score": m.MatchScore,
	})
}

func (u *Matching) analysisFor(ctx context.Context, j job.Job) (job.Analysis, error) {
	a, err := u.analyses.GetByJobID(ctx, j.ID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		u.logger.Error("load job analysis", zap.String("job_id", j.ID.String()), zap.Error(err))
		return job.Analysis{}, ErrInternal
	}

	res, err := u.analyzer.AnalyzeJob(ctx, jobInput(j))
	if err != nil {
		u.logger.Warn("job analysis failed", zap.String("job_id", j.ID.String()), zap.Error(err))
		return job.Analysis{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	stored, created, err := u.analyses.CreateIfAbsent(ctx, job.Analysis{
		ID:                     uuid.New(),
		JobID:                  j.ID,
		RequiredSkills:         res.RequiredSkills,
		ExperienceRequirements: res.ExperienceRequirements,
		EducationRequirements:  res.EducationRequirements,
		Summary:                res.Summary,
		Raw:                    res.Raw,
		SchemaVersion:          job.SchemaVersion,
	})
	if err != nil {
		u.logger.Error("store job analysis", zap.String("job_id", j.ID.String()), zap.Error(err))
		return job.Analysis{}, ErrInternal
	}
	if created {
		u.logger.Info("job analyzed", zap.String("job_id", j.ID.String()), zap.Int("required_skills", len(stored.RequiredSkills)))
	}
	return stored, nil
}

func (u *Matching) loadJob(ctx context.Context, jobID uuid.UUID) (job.Job, error) {
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

func (u *Matching) loadAnalyzedProfile(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	p, err := u.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Profile{}, ErrProfileIncomplete
		}
		u.logger.Error("load profile", zap.String("user_id", userID.String()), zap.Error(err))
		return profile.Profile{}, ErrInternal
	}
	if !p.Analyzed() {
		return profile.Profile{}, ErrProfileIncomplete
	}
	return p, nil
}

func jobInput(j job.Job) analysis.JobInput {
	return analysis.JobInput{
		Title:          j.Title,
		Company:        j.Company,
		Location:       j.Location,
		Description:    j.Description,
		EmploymentType: j.EmploymentType,
		Industries:     j.Industries,
	}
}

func buildMatchInput(p profile.Profile, j job.Job, a job.Analysis, c match.Criteria) analysis.MatchInput {
	return analysis.MatchInput{
		Profile: analysis.MatchProfile{
			Skills:     p.Skills,
			Experience: p.Experience,
			Education:  p.Education,
			Summary:    p.AnalysisSummary,
			Payload:    p.Payload,
		},
		Job: analysis.MatchJob{
			JobInput:               jobInput(j),
			RequiredSkills:         a.RequiredSkills,
			ExperienceRequirements: a.ExperienceRequirements,
			EducationRequirements:  a.EducationRequirements,
		},
		Criteria: analysis.MatchCriteria{
			MinMatchThreshold:  c.MinMatchThreshold,
			SkillsWeight:       c.SkillsWeight,
			ExperienceWeight:   c.ExperienceWeight,
			EducationWeight:    c.EducationWeight,
			PreferredCompanies: c.PreferredCompanies,
		},
	}
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
