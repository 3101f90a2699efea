package usecase

import (
	"context"
	"errors"
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/matching"
	"jobpilot/internal/domain/summary"
	"jobpilot/internal/infrastructure/cache"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	statsWindowDays = 30
	summaryCacheTTL = 24 * time.Hour
)

type SummaryCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalApplications  int                        `json:"total_applications"`
	StatusCounts       map[application.Status]int `json:"status_counts"`
	TotalMatches       int                        `json:"total_matches"`
	MatchBuckets       map[matching.Bucket]int    `json:"match_buckets"`
	ApplicationsPerDay []DayCount                 `json:"applications_per_day"`
	AutomationActive   bool                       `json:"automation_active"`
	LinkedInConnected  bool                       `json:"linkedin_connected"`
}

type SummaryUsecase interface {
	GetOrComputeSummary(ctx context.Context, userID uuid.UUID, date time.Time) (summary.DailySummary, error)
	ListSummaries(ctx context.Context, userID uuid.UUID, limit int) ([]summary.DailySummary, error)
	Stats(ctx context.Context, userID uuid.UUID) (Stats, error)
}

type SummaryDeps struct {
	Summaries    repository.DailySummaryRepository
	Matches      repository.JobMatchRepository
	Applications repository.ApplicationRepository
	Settings     repository.ApplicationSettingRepository
	Profiles     repository.ProfileRepository
	Cache        SummaryCache
	Now          Clock
	Logger       *zap.Logger
}

type Summary struct {
	summaries    repository.DailySummaryRepository
	matches      repository.JobMatchRepository
	applications repository.ApplicationRepository
	settings     repository.ApplicationSettingRepository
	profiles     repository.ProfileRepository
	cache        SummaryCache
	now          Clock
	logger       *zap.Logger
}

func NewSummaryUsecase(d SummaryDeps) *Summary {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := d.Cache
	if c == nil {
		c = cache.Disabled()
	}
	return &Summary{
		summaries:    d.Summaries,
		matches:      d.Matches,
		applications: d.Applications,
		settings:     d.Settings,
		profiles:     d.Profiles,
		cache:        c,
		now:          clockOrNow(d.Now),
		logger:       logger.Named("summary"),
	}
}

// GetOrComputeSummary returns the summary of date (a UTC day). The first
// request for a day computes and stores it; later requests return the stored
// row unchanged, even if matches or applications of that day change.
func (u *Summary) GetOrComputeSummary(ctx context.Context, userID uuid.UUID, date time.Time) (summary.DailySummary, error) {
	day := summary.Day(date)
	if day.After(summary.Day(u.now())) {
		return summary.DailySummary{}, ErrInvalidInput
	}

	key := cache.SummaryKey(userID, day)
	var cached summary.DailySummary
	if found, err := u.cache.GetJSON(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	stored, err := u.summaries.Get(ctx, userID, day)
	switch {
	case err == nil:
		u.remember(ctx, key, stored)
		return stored, nil
	case !errors.Is(err, repository.ErrNotFound):
		u.logger.Error("load summary", zap.String("user_id", userID.String()), zap.Error(err))
		return summary.DailySummary{}, ErrInternal
	}

	s, err := u.compute(ctx, userID, day)
	if err != nil {
		return summary.DailySummary{}, err
	}

	stored, created, err := u.summaries.CreateIfAbsent(ctx, s)
	if err != nil {
		u.logger.Error("store summary", zap.String("user_id", userID.String()), zap.Error(err))
		return summary.DailySummary{}, ErrInternal
	}
	if created {
		u.logger.Info("daily summary computed",
			zap.String("user_id", userID.String()),
			zap.String("date", day.Format(time.DateOnly)),
			zap.Int("jobs_analyzed", stored.JobsAnalyzed),
			zap.Int("applications", stored.ApplicationsSubmitted),
		)
	}
	u.remember(ctx, key, stored)
	return stored, nil
}

func (u *Summary) ListSummaries(ctx context.Context, userID uuid.UUID, limit int) ([]summary.DailySummary, error) {
	if limit < 0 {
		return nil, ErrInvalidInput
	}
	out, err := u.summaries.List(ctx, userID, limit)
	if err != nil {
		u.logger.Error("list summaries", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Summary) Stats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	out := Stats{
		StatusCounts: make(map[application.Status]int, len(application.Statuses)),
		MatchBuckets: map[matching.Bucket]int{
			matching.BucketExcellent: 0,
			matching.BucketGood:      0,
			matching.BucketFair:      0,
			matching.BucketPoor:      0,
		},
	}

	byStatus, err := u.applications.CountByStatus(ctx, userID)
	if err != nil {
		return Stats{}, u.internal("count applications by status", err)
	}
	for _, st := range application.Statuses {
		out.StatusCounts[st] = byStatus[st]
		out.TotalApplications += byStatus[st]
	}

	scores, err := u.matches.ListScores(ctx, userID)
	if err != nil {
		return Stats{}, u.internal("list match scores", err)
	}
	out.TotalMatches = len(scores)
	for _, s := range scores {
		out.MatchBuckets[matching.BucketOf(s)]++
	}

	today := summary.Day(u.now())
	since := today.AddDate(0, 0, -(statsWindowDays - 1))
	perDay, err := u.applications.CountPerDay(ctx, userID, since)
	if err != nil {
		return Stats{}, u.internal("count applications per day", err)
	}
	counts := make(map[string]int, len(perDay))
	for _, dc := range perDay {
		counts[summary.Day(dc.Date).Format(time.DateOnly)] = dc.Count
	}
	out.ApplicationsPerDay = make([]DayCount, 0, statsWindowDays)
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		k := d.Format(time.DateOnly)
		out.ApplicationsPerDay = append(out.ApplicationsPerDay, DayCount{Date: k, Count: counts[k]})
	}

	setting, err := u.settings.GetOrCreate(ctx, userID)
	if err != nil {
		return Stats{}, u.internal("load application settings", err)
	}
	out.AutomationActive = setting.IsActive

	p, err := u.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		out.LinkedInConnected = p.Connected()
	case !errors.Is(err, repository.ErrNotFound):
		return Stats{}, u.internal("load profile", err)
	}
	return out, nil
}

func (u *Summary) compute(ctx context.Context, userID uuid.UUID, day time.Time) (summary.DailySummary, error) {
	next := day.AddDate(0, 0, 1)

	rows, err := u.matches.ListCreatedBetween(ctx, userID, day, next)
	if err != nil {
		return summary.DailySummary{}, u.internal("list matches of day", err)
	}
	applied, err := u.applications.CountAppliedBetween(ctx, userID, day, next)
	if err != nil {
		return summary.DailySummary{}, u.internal("count applications of day", err)
	}

	s := summary.DailySummary{
		ID:                    uuid.New(),
		UserID:                userID,
		Date:                  day,
		JobsAnalyzed:          len(rows),
		ApplicationsSubmitted: applied,
		TopMatches:            make([]summary.TopMatch, 0, summary.TopMatchLimit),
	}
	for _, r := range rows {
		switch matching.BucketOf(r.Match.MatchScore) {
		case matching.BucketExcellent:
			s.ExcellentMatches++
		case matching.BucketGood:
			s.GoodMatches++
		case matching.BucketFair:
			s.FairMatches++
		default:
			s.PoorMatches++
		}
		// rows arrive highest score first
		if len(s.TopMatches) < summary.TopMatchLimit {
			s.TopMatches = append(s.TopMatches, summary.TopMatch{
				JobID:      r.Match.JobID,
				JobTitle:   r.Title,
				Company:    r.Company,
				MatchScore: r.Match.MatchScore,
				Applied:    r.Applied,
			})
		}
	}
	return s, nil
}

func (u *Summary) remember(ctx context.Context, key string, s summary.DailySummary) {
	if err := u.cache.SetJSON(ctx, key, s, summaryCacheTTL); err != nil {
		u.logger.Debug("cache summary", zap.String("key", key), zap.Error(err))
	}
}

func (u *Summary) internal(op string, err error) error {
	u.logger.Error(op, zap.Error(err))
	return ErrInternal
}
