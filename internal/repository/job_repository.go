package repository

import (
	"context"
	"fmt"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/job"

	"github.com/google/uuid"
)

type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (job.Job, error)
	GetByExternalID(ctx context.Context, externalID string) (job.Job, error)
	// CreateIfNotExists inserts j unless a job with the same external id is
	// stored, and returns the stored row either way.
	CreateIfNotExists(ctx context.Context, j job.Job) (job.Job, bool, error)
	ListAll(ctx context.Context) ([]job.Job, error)
}

type JobAnalysisRepository interface {
	GetByJobID(ctx context.Context, jobID uuid.UUID) (job.Analysis, error)
	// CreateIfAbsent stores a unless the job already has an analysis, and
	// returns the stored row either way.
	CreateIfAbsent(ctx context.Context, a job.Analysis) (job.Analysis, bool, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, external_id, title, company, location, description, job_url, employment_type,
	seniority_level, industries, posted_at, metadata, created_at`

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	return scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

func (r *PostgresJobRepository) GetByExternalID(ctx context.Context, externalID string) (job.Job, error) {
	return scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE external_id = $1`, externalID))
}

func (r *PostgresJobRepository) CreateIfNotExists(ctx context.Context, j job.Job) (job.Job, bool, error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	industries, err := toJSON(stringsOrEmpty(j.Industries))
	if err != nil {
		return job.Job{}, false, err
	}

	n, err := r.db.Exec(ctx,
		`INSERT INTO jobs (id, external_id, title, company, location, description, job_url, employment_type,
			seniority_level, industries, posted_at, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (external_id) DO NOTHING`,
		j.ID, j.ExternalJobID, j.Title, j.Company, j.Location, j.Description, j.JobURL, j.EmploymentType,
		j.SeniorityLevel, industries, j.PostedAt, nullableJSON(j.Metadata),
	)
	if err != nil {
		return job.Job{}, false, fmt.Errorf("insert job: %w", err)
	}

	stored, err := r.GetByExternalID(ctx, j.ExternalJobID)
	if err != nil {
		return job.Job{}, false, err
	}
	return stored, n > 0, nil
}

func (r *PostgresJobRepository) ListAll(ctx context.Context) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j                    job.Job
		industries, metadata []byte
	)
	err := row.Scan(
		&j.ID, &j.ExternalJobID, &j.Title, &j.Company, &j.Location, &j.Description, &j.JobURL, &j.EmploymentType,
		&j.SeniorityLevel, &industries, &j.PostedAt, &metadata, &j.CreatedAt,
	)
	if err != nil {
		return job.Job{}, classify(err)
	}
	if err := fromJSON(industries, &j.Industries); err != nil {
		return job.Job{}, err
	}
	j.Industries = stringsOrEmpty(j.Industries)
	if len(metadata) > 0 {
		j.Metadata = append([]byte(nil), metadata...)
	}
	return j, nil
}

type PostgresJobAnalysisRepository struct {
	db database.DB
}

func NewPostgresJobAnalysisRepository(db database.DB) *PostgresJobAnalysisRepository {
	return &PostgresJobAnalysisRepository{db: db}
}

const analysisColumns = `id, job_id, required_skills, experience_requirements, education_requirements,
	summary, raw, schema_version, created_at`

func (r *PostgresJobAnalysisRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (job.Analysis, error) {
	return scanAnalysis(r.db.QueryRow(ctx, `SELECT `+analysisColumns+` FROM job_analyses WHERE job_id = $1`, jobID))
}

func (r *PostgresJobAnalysisRepository) CreateIfAbsent(ctx context.Context, a job.Analysis) (job.Analysis, bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	skills, err := toJSON(a.RequiredSkills)
	if err != nil {
		return job.Analysis{}, false, err
	}
	exp, err := toJSON(a.ExperienceRequirements)
	if err != nil {
		return job.Analysis{}, false, err
	}
	edu, err := toJSON(a.EducationRequirements)
	if err != nil {
		return job.Analysis{}, false, err
	}

	n, err := r.db.Exec(ctx,
		`INSERT INTO job_analyses (id, job_id, required_skills, experience_requirements, education_requirements,
			summary, raw, schema_version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (job_id) DO NOTHING`,
		a.ID, a.JobID, skills, exp, edu, a.Summary, nullableJSON(a.Raw), job.SchemaVersion,
	)
	if err != nil {
		return job.Analysis{}, false, fmt.Errorf("insert job analysis: %w", err)
	}

	stored, err := r.GetByJobID(ctx, a.JobID)
	if err != nil {
		return job.Analysis{}, false, err
	}
	return stored, n > 0, nil
}

func scanAnalysis(row database.Row) (job.Analysis, error) {
	var (
		a                         job.Analysis
		skills, exp, edu, rawBlob []byte
	)
	err := row.Scan(&a.ID, &a.JobID, &skills, &exp, &edu, &a.Summary, &rawBlob, &a.SchemaVersion, &a.CreatedAt)
	if err != nil {
		return job.Analysis{}, classify(err)
	}
	if err := checkSchemaVersion("job_analyses", a.SchemaVersion, job.SchemaVersion); err != nil {
		return job.Analysis{}, err
	}
	if err := fromJSON(skills, &a.RequiredSkills); err != nil {
		return job.Analysis{}, err
	}
	if err := fromJSON(exp, &a.ExperienceRequirements); err != nil {
		return job.Analysis{}, err
	}
	if err := fromJSON(edu, &a.EducationRequirements); err != nil {
		return job.Analysis{}, err
	}
	if len(rawBlob) > 0 {
		a.Raw = append([]byte(nil), rawBlob...)
	}
	return a, nil
}
