package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/match"

	"github.com/google/uuid"
)

type ApplicationFilter string

const (
	ApplicationFilterAll        ApplicationFilter = "all"
	ApplicationFilterApplied    ApplicationFilter = "applied"
	ApplicationFilterNotApplied ApplicationFilter = "not_applied"
)

// MatchListFilter bounds are inclusive.
type MatchListFilter struct {
	MinScore int
	MaxScore int
	Status   ApplicationFilter
}

// MatchListRow is a match joined with the job it scores and whether the user
// has applied to that job.
type MatchListRow struct {
	Match   match.JobMatch
	Title   string
	Company string
	Applied bool
}

type JobMatchRepository interface {
	Get(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error)
	// CreateIfAbsent stores m unless (user, job) already has a match, and
	// returns the stored row either way.
	CreateIfAbsent(ctx context.Context, m match.JobMatch) (match.JobMatch, bool, error)
	// Replace swaps the stored match for (user, job) with m in one
	// transaction. The previous row survives when the insert fails.
	Replace(ctx context.Context, m match.JobMatch) (match.JobMatch, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	List(ctx context.Context, userID uuid.UUID, f MatchListFilter) ([]MatchListRow, error)
	// ListCreatedBetween returns matches created in [from, to), highest score first.
	ListCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]MatchListRow, error)
	ListScores(ctx context.Context, userID uuid.UUID) ([]int, error)
}

type PostgresJobMatchRepository struct {
	db database.DB
}

func NewPostgresJobMatchRepository(db database.DB) *PostgresJobMatchRepository {
	return &PostgresJobMatchRepository{db: db}
}

const matchColumns = `m.id, m.user_id, m.job_id, m.match_score, m.matching_skills, m.missing_skills,
	m.experience_match, m.education_match, m.summary, m.details, m.schema_version, m.created_at`

const matchListSelect = `SELECT ` + matchColumns + `, j.title, j.company,
	EXISTS(SELECT 1 FROM job_applications a WHERE a.user_id = m.user_id AND a.job_id = m.job_id)
	FROM job_matches m
	JOIN jobs j ON j.id = m.job_id`

func (r *PostgresJobMatchRepository) Get(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error) {
	return getMatch(ctx, r.db, userID, jobID)
}

func getMatch(ctx context.Context, q database.Querier, userID, jobID uuid.UUID) (match.JobMatch, error) {
	row := q.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM job_matches m WHERE m.user_id = $1 AND m.job_id = $2`,
		userID, jobID,
	)
	return scanMatch(row)
}

func (r *PostgresJobMatchRepository) CreateIfAbsent(ctx context.Context, m match.JobMatch) (match.JobMatch, bool, error) {
	n, err := insertMatch(ctx, r.db, m, true)
	if err != nil {
		return match.JobMatch{}, false, err
	}
	stored, err := r.Get(ctx, m.UserID, m.JobID)
	if err != nil {
		return match.JobMatch{}, false, err
	}
	return stored, n > 0, nil
}

func (r *PostgresJobMatchRepository) Replace(ctx context.Context, m match.JobMatch) (match.JobMatch, error) {
	var stored match.JobMatch
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM job_matches WHERE user_id = $1 AND job_id = $2`, m.UserID, m.JobID); err != nil {
			return fmt.Errorf("delete job match: %w", err)
		}
		if _, err := insertMatch(ctx, tx, m, false); err != nil {
			return err
		}
		var err error
		stored, err = getMatch(ctx, tx, m.UserID, m.JobID)
		return err
	})
	if err != nil {
		return match.JobMatch{}, err
	}
	return stored, nil
}

// insertMatch writes m. With skipConflict an existing (user, job) row is
// kept and 0 is returned.
func insertMatch(ctx context.Context, q database.Querier, m match.JobMatch, skipConflict bool) (int64, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	matching, err := toJSON(stringsOrEmpty(m.MatchingSkills))
	if err != nil {
		return 0, err
	}
	missing, err := toJSON(stringsOrEmpty(m.MissingSkills))
	if err != nil {
		return 0, err
	}
	exp, err := toJSON(m.ExperienceMatch)
	if err != nil {
		return 0, err
	}
	edu, err := toJSON(m.EducationMatch)
	if err != nil {
		return 0, err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	query := `INSERT INTO job_matches (id, user_id, job_id, match_score, matching_skills, missing_skills,
			experience_match, education_match, summary, details, schema_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if skipConflict {
		query += ` ON CONFLICT (user_id, job_id) DO NOTHING`
	}
	n, err := q.Exec(ctx, query,
		m.ID, m.UserID, m.JobID, m.MatchScore, matching, missing, exp, edu, m.Summary,
		nullableJSON(m.Details), match.SchemaVersion, m.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert job match: %w", classify(err))
	}
	return n, nil
}

func (r *PostgresJobMatchRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM job_matches WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete job matches: %w", err)
	}
	return n, nil
}

func (r *PostgresJobMatchRepository) List(ctx context.Context, userID uuid.UUID, f MatchListFilter) ([]MatchListRow, error) {
	where := []string{"m.user_id = $1", "m.match_score >= $2", "m.match_score <= $3"}
	args := []any{userID, f.MinScore, f.MaxScore}

	applied := `EXISTS(SELECT 1 FROM job_applications a WHERE a.user_id = m.user_id AND a.job_id = m.job_id)`
	switch f.Status {
	case ApplicationFilterApplied:
		where = append(where, applied)
	case ApplicationFilterNotApplied:
		where = append(where, "NOT "+applied)
	}

	query := matchListSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY m.match_score DESC, m.created_at DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanMatchRows(rows)
}

func (r *PostgresJobMatchRepository) ListCreatedBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]MatchListRow, error) {
	rows, err := r.db.Query(ctx,
		matchListSelect+` WHERE m.user_id = $1 AND m.created_at >= $2 AND m.created_at < $3
		 ORDER BY m.match_score DESC, m.created_at ASC`,
		userID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return scanMatchRows(rows)
}

func (r *PostgresJobMatchRepository) ListScores(ctx context.Context, userID uuid.UUID) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT match_score FROM job_matches WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int, 0)
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMatchRows(rows database.Rows) ([]MatchListRow, error) {
	defer rows.Close()

	out := make([]MatchListRow, 0)
	for rows.Next() {
		var it MatchListRow
		m, err := scanMatch(rowFunc(func(dest ...any) error {
			return rows.Scan(append(dest, &it.Title, &it.Company, &it.Applied)...)
		}))
		if err != nil {
			return nil, err
		}
		it.Match = m
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func scanMatch(row database.Row) (match.JobMatch, error) {
	var (
		m                                    match.JobMatch
		matching, missing, exp, edu, details []byte
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.JobID, &m.MatchScore, &matching, &missing,
		&exp, &edu, &m.Summary, &details, &m.SchemaVersion, &m.CreatedAt,
	)
	if err != nil {
		return match.JobMatch{}, classify(err)
	}
	if err := checkSchemaVersion("job_matches", m.SchemaVersion, match.SchemaVersion); err != nil {
		return match.JobMatch{}, err
	}
	if err := fromJSON(matching, &m.MatchingSkills); err != nil {
		return match.JobMatch{}, err
	}
	if err := fromJSON(missing, &m.MissingSkills); err != nil {
		return match.JobMatch{}, err
	}
	if err := fromJSON(exp, &m.ExperienceMatch); err != nil {
		return match.JobMatch{}, err
	}
	if err := fromJSON(edu, &m.EducationMatch); err != nil {
		return match.JobMatch{}, err
	}
	m.MatchingSkills = stringsOrEmpty(m.MatchingSkills)
	m.MissingSkills = stringsOrEmpty(m.MissingSkills)
	if len(details) > 0 {
		m.Details = append([]byte(nil), details...)
	}
	return m, nil
}
