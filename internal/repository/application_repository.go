package repository

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/application"

	"github.com/google/uuid"
)

// ApplicationStore is the set of operations available while the per-user
// application lock is held.
type ApplicationStore interface {
	Setting(ctx context.Context, userID uuid.UUID) (application.Setting, error)
	Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	CountAppliedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
	Create(ctx context.Context, a application.JobApplication) error
	LogAPICall(ctx context.Context, l application.APICallLog) error
}

type ApplicationListRow struct {
	Application application.JobApplication
	Title       string
	Company     string
	Location    string
	JobURL      string
}

type DailyCount struct {
	Date  time.Time
	Count int
}

type ApplicationRepository interface {
	Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (application.JobApplication, error)
	GetByJob(ctx context.Context, userID, jobID uuid.UUID) (application.JobApplication, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ApplicationListRow, error)
	UpdateStatus(ctx context.Context, a application.JobApplication) (application.JobApplication, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAppliedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[application.Status]int, error)
	// CountPerDay groups applications applied at or after since by UTC day.
	CountPerDay(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyCount, error)
	// WithUserLock runs fn in a transaction holding a lock scoped to userID,
	// so concurrent calls for the same user are serialized.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ApplicationStore) error) error
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

const applicationColumns = `a.id, a.user_id, a.job_id, a.external_application_id, a.status, a.applied_at, a.response_at, a.notes`

func (r *PostgresApplicationRepository) Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	return applicationExists(ctx, r.db, userID, jobID)
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (application.JobApplication, error) {
	return scanApplication(r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications a WHERE a.id = $1 AND a.user_id = $2`, id, userID))
}

func (r *PostgresApplicationRepository) GetByJob(ctx context.Context, userID, jobID uuid.UUID) (application.JobApplication, error) {
	return scanApplication(r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications a WHERE a.user_id = $1 AND a.job_id = $2`, userID, jobID))
}

func (r *PostgresApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]ApplicationListRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+`, j.title, j.company, j.location, j.job_url
		 FROM job_applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.user_id = $1
		 ORDER BY a.applied_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ApplicationListRow, 0)
	for rows.Next() {
		var it ApplicationListRow
		a, err := scanApplication(rowFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &it.Title, &it.Company, &it.Location, &it.JobURL)...)
		}))
		if err != nil {
			return nil, err
		}
		it.Application = a
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, a application.JobApplication) (application.JobApplication, error) {
	return scanApplication(r.db.QueryRow(ctx,
		`UPDATE job_applications a SET status = $3, response_at = $4, notes = $5
		 WHERE a.id = $1 AND a.user_id = $2
		 RETURNING `+applicationColumns,
		a.ID, a.UserID, string(a.Status), a.ResponseAt, a.Notes,
	))
}

func (r *PostgresApplicationRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM job_applications WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete applications: %w", err)
	}
	return n, nil
}

func (r *PostgresApplicationRepository) CountAppliedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	return countAppliedBetween(ctx, r.db, userID, from, to)
}

func (r *PostgresApplicationRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[application.Status]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(1) FROM job_applications WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[application.Status]int{}
	for rows.Next() {
		var (
			st string
			c  int
		)
		if err := rows.Scan(&st, &c); err != nil {
			return nil, err
		}
		out[application.Status(st)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) CountPerDay(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT (applied_at AT TIME ZONE 'UTC')::date AS day, COUNT(1)
		 FROM job_applications
		 WHERE user_id = $1 AND applied_at >= $2
		 GROUP BY day
		 ORDER BY day ASC`,
		userID, since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DailyCount, 0)
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresApplicationRepository) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ApplicationStore) error) error {
	return database.WithXactLock(ctx, r.db, "applications:"+userID.String(), func(tx database.Tx) error {
		return fn(txApplicationStore{q: tx})
	})
}

type txApplicationStore struct {
	q database.Querier
}

func (s txApplicationStore) Setting(ctx context.Context, userID uuid.UUID) (application.Setting, error) {
	return getOrCreateSetting(ctx, s.q, userID)
}

func (s txApplicationStore) Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error) {
	return applicationExists(ctx, s.q, userID, jobID)
}

func (s txApplicationStore) CountAppliedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	return countAppliedBetween(ctx, s.q, userID, from, to)
}

func (s txApplicationStore) Create(ctx context.Context, a application.JobApplication) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO job_applications (id, user_id, job_id, external_application_id, status, applied_at, response_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.JobID, a.ExternalApplicationID, string(a.Status), a.AppliedAt.UTC(), a.ResponseAt, a.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", classify(err))
	}
	return nil
}

func (s txApplicationStore) LogAPICall(ctx context.Context, l application.APICallLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO api_call_logs (id, user_id, endpoint, method, status_code, response_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.UserID, l.Endpoint, l.Method, l.StatusCode, l.ResponseTime, l.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert api call log: %w", err)
	}
	return nil
}

func applicationExists(ctx context.Context, q database.Querier, userID, jobID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_applications WHERE user_id = $1 AND job_id = $2)`, userID, jobID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func countAppliedBetween(ctx context.Context, q database.Querier, userID uuid.UUID, from, to time.Time) (int, error) {
	var c int
	err := q.QueryRow(ctx,
		`SELECT COUNT(1) FROM job_applications WHERE user_id = $1 AND applied_at >= $2 AND applied_at < $3`,
		userID, from.UTC(), to.UTC(),
	).Scan(&c)
	if err != nil {
		return 0, err
	}
	return c, nil
}

func scanApplication(row database.Row) (application.JobApplication, error) {
	var (
		a      application.JobApplication
		status string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.JobID, &a.ExternalApplicationID, &status, &a.AppliedAt, &a.ResponseAt, &a.Notes); err != nil {
		return application.JobApplication{}, classify(err)
	}
	a.Status = application.Status(status)
	return a, nil
}
