package repository

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/summary"

	"github.com/google/uuid"
)

type DailySummaryRepository interface {
	Get(ctx context.Context, userID uuid.UUID, date time.Time) (summary.DailySummary, error)
	// CreateIfAbsent stores s unless (user, date) already has a summary, and
	// returns the stored row either way.
	CreateIfAbsent(ctx context.Context, s summary.DailySummary) (summary.DailySummary, bool, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]summary.DailySummary, error)
}

type PostgresDailySummaryRepository struct {
	db database.DB
}

func NewPostgresDailySummaryRepository(db database.DB) *PostgresDailySummaryRepository {
	return &PostgresDailySummaryRepository{db: db}
}

const summaryColumns = `id, user_id, date, jobs_analyzed, excellent_matches, good_matches, fair_matches,
	poor_matches, applications_submitted, top_matches, created_at`

func (r *PostgresDailySummaryRepository) Get(ctx context.Context, userID uuid.UUID, date time.Time) (summary.DailySummary, error) {
	return scanSummary(r.db.QueryRow(ctx,
		`SELECT `+summaryColumns+` FROM daily_summaries WHERE user_id = $1 AND date = $2`,
		userID, summary.Day(date),
	))
}

func (r *PostgresDailySummaryRepository) CreateIfAbsent(ctx context.Context, s summary.DailySummary) (summary.DailySummary, bool, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	top := s.TopMatches
	if top == nil {
		top = []summary.TopMatch{}
	}
	topJSON, err := toJSON(top)
	if err != nil {
		return summary.DailySummary{}, false, err
	}

	n, err := r.db.Exec(ctx,
		`INSERT INTO daily_summaries (id, user_id, date, jobs_analyzed, excellent_matches, good_matches, fair_matches,
			poor_matches, applications_submitted, top_matches)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id, date) DO NOTHING`,
		s.ID, s.UserID, summary.Day(s.Date), s.JobsAnalyzed, s.ExcellentMatches, s.GoodMatches, s.FairMatches,
		s.PoorMatches, s.ApplicationsSubmitted, topJSON,
	)
	if err != nil {
		return summary.DailySummary{}, false, fmt.Errorf("insert daily summary: %w", err)
	}

	stored, err := r.Get(ctx, s.UserID, s.Date)
	if err != nil {
		return summary.DailySummary{}, false, err
	}
	return stored, n > 0, nil
}

func (r *PostgresDailySummaryRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]summary.DailySummary, error) {
	if limit <= 0 {
		limit = 30
	}
	if limit > 366 {
		limit = 366
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+summaryColumns+` FROM daily_summaries WHERE user_id = $1 ORDER BY date DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]summary.DailySummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSummary(row database.Row) (summary.DailySummary, error) {
	var (
		s   summary.DailySummary
		top []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.JobsAnalyzed, &s.ExcellentMatches, &s.GoodMatches, &s.FairMatches,
		&s.PoorMatches, &s.ApplicationsSubmitted, &top, &s.CreatedAt)
	if err != nil {
		return summary.DailySummary{}, classify(err)
	}
	if err := fromJSON(top, &s.TopMatches); err != nil {
		return summary.DailySummary{}, err
	}
	if s.TopMatches == nil {
		s.TopMatches = []summary.TopMatch{}
	}
	s.Date = summary.Day(s.Date)
	return s, nil
}
