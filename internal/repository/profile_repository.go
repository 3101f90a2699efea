package repository

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/profile"

	"github.com/google/uuid"
)

// ProfileAnalysisUpdate carries the typed output of a profile analysis run.
type ProfileAnalysisUpdate struct {
	Skills     []profile.Skill
	Experience *profile.Experience
	Education  *profile.Education
	Summary    string
	AnalyzedAt time.Time
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error)
	// Upsert stores identity data for the user, keeping analysis results.
	Upsert(ctx context.Context, p profile.Profile) (profile.Profile, error)
	UpdateAnalysis(ctx context.Context, userID uuid.UUID, in ProfileAnalysisUpdate) (profile.Profile, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type PreferenceRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (profile.Preference, error)
	Update(ctx context.Context, p profile.Preference) (profile.Preference, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `id, user_id, linkedin_id, access_token, refresh_token, token_expiry, payload,
	skills, experience, education, analysis_summary, schema_version, analyzed_at, last_updated`

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM linkedin_profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) Upsert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO linkedin_profiles (id, user_id, linkedin_id, access_token, refresh_token, token_expiry, payload, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			linkedin_id = EXCLUDED.linkedin_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expiry = EXCLUDED.token_expiry,
			payload = EXCLUDED.payload,
			last_updated = now()
		 RETURNING `+profileColumns,
		p.ID, p.UserID, p.LinkedInID, p.AccessToken, p.RefreshToken, p.TokenExpiry, nullableJSON(p.Payload),
	)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) UpdateAnalysis(ctx context.Context, userID uuid.UUID, in ProfileAnalysisUpdate) (profile.Profile, error) {
	skills, err := toJSON(in.Skills)
	if err != nil {
		return profile.Profile{}, err
	}
	exp, err := toJSON(in.Experience)
	if err != nil {
		return profile.Profile{}, err
	}
	edu, err := toJSON(in.Education)
	if err != nil {
		return profile.Profile{}, err
	}

	row := r.db.QueryRow(ctx,
		`UPDATE linkedin_profiles SET
			skills = $2, experience = $3, education = $4, analysis_summary = $5,
			schema_version = $6, analyzed_at = $7, last_updated = now()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		userID, skills, exp, edu, in.Summary, profile.SchemaVersion, in.AnalyzedAt.UTC(),
	)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM linkedin_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row database.Row) (profile.Profile, error) {
	var (
		p                         profile.Profile
		payload, skills, exp, edu []byte
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.LinkedInID, &p.AccessToken, &p.RefreshToken, &p.TokenExpiry, &payload,
		&skills, &exp, &edu, &p.AnalysisSummary, &p.SchemaVersion, &p.AnalyzedAt, &p.LastUpdated,
	)
	if err != nil {
		return profile.Profile{}, classify(err)
	}
	if err := checkSchemaVersion("linkedin_profiles", p.SchemaVersion, profile.SchemaVersion); err != nil {
		return profile.Profile{}, err
	}
	if len(payload) > 0 {
		p.Payload = append([]byte(nil), payload...)
	}
	if err := fromJSON(skills, &p.Skills); err != nil {
		return profile.Profile{}, err
	}
	if err := fromJSON(exp, &p.Experience); err != nil {
		return profile.Profile{}, err
	}
	if err := fromJSON(edu, &p.Education); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

type PostgresPreferenceRepository struct {
	db database.DB
}

func NewPostgresPreferenceRepository(db database.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

const preferenceColumns = `user_id, location, industries, job_types, experience_level, salary_min, salary_max, updated_at`

func (r *PostgresPreferenceRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (profile.Preference, error) {
	d := profile.DefaultPreference(userID)
	if _, err := r.db.Exec(ctx,
		`INSERT INTO job_preferences (user_id, location) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, d.Location,
	); err != nil {
		return profile.Preference{}, fmt.Errorf("ensure preferences: %w", err)
	}
	row := r.db.QueryRow(ctx, `SELECT `+preferenceColumns+` FROM job_preferences WHERE user_id = $1`, userID)
	return scanPreference(row)
}

func (r *PostgresPreferenceRepository) Update(ctx context.Context, p profile.Preference) (profile.Preference, error) {
	industries, err := toJSON(stringsOrEmpty(p.Industries))
	if err != nil {
		return profile.Preference{}, err
	}
	jobTypes, err := toJSON(stringsOrEmpty(p.JobTypes))
	if err != nil {
		return profile.Preference{}, err
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO job_preferences (user_id, location, industries, job_types, experience_level, salary_min, salary_max, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			location = EXCLUDED.location,
			industries = EXCLUDED.industries,
			job_types = EXCLUDED.job_types,
			experience_level = EXCLUDED.experience_level,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			updated_at = now()
		 RETURNING `+preferenceColumns,
		p.UserID, p.Location, industries, jobTypes, p.ExperienceLevel, p.SalaryMin, p.SalaryMax,
	)
	return scanPreference(row)
}

func scanPreference(row database.Row) (profile.Preference, error) {
	var (
		p                    profile.Preference
		industries, jobTypes []byte
	)
	if err := row.Scan(&p.UserID, &p.Location, &industries, &jobTypes, &p.ExperienceLevel, &p.SalaryMin, &p.SalaryMax, &p.UpdatedAt); err != nil {
		return profile.Preference{}, classify(err)
	}
	if err := fromJSON(industries, &p.Industries); err != nil {
		return profile.Preference{}, err
	}
	if err := fromJSON(jobTypes, &p.JobTypes); err != nil {
		return profile.Preference{}, err
	}
	p.Industries = stringsOrEmpty(p.Industries)
	p.JobTypes = stringsOrEmpty(p.JobTypes)
	return p, nil
}
