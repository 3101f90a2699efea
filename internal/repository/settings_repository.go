package repository

import (
	"context"
	"fmt"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/match"

	"github.com/google/uuid"
)

type CriteriaRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (match.Criteria, error)
	Update(ctx context.Context, c match.Criteria) (match.Criteria, error)
}

type ApplicationSettingRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (application.Setting, error)
	Update(ctx context.Context, s application.Setting) (application.Setting, error)
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (application.Setting, error)
}

type PostgresCriteriaRepository struct {
	db database.DB
}

func NewPostgresCriteriaRepository(db database.DB) *PostgresCriteriaRepository {
	return &PostgresCriteriaRepository{db: db}
}

const criteriaColumns = `user_id, min_match_threshold, skills_weight, experience_weight, education_weight,
	preferred_companies, updated_at`

func (r *PostgresCriteriaRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (match.Criteria, error) {
	d := match.DefaultCriteria(userID)
	if _, err := r.db.Exec(ctx,
		`INSERT INTO matching_criteria (user_id, min_match_threshold, skills_weight, experience_weight, education_weight)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, d.MinMatchThreshold, d.SkillsWeight, d.ExperienceWeight, d.EducationWeight,
	); err != nil {
		return match.Criteria{}, fmt.Errorf("ensure criteria: %w", err)
	}
	return scanCriteria(r.db.QueryRow(ctx, `SELECT `+criteriaColumns+` FROM matching_criteria WHERE user_id = $1`, userID))
}

func (r *PostgresCriteriaRepository) Update(ctx context.Context, c match.Criteria) (match.Criteria, error) {
	companies, err := toJSON(stringsOrEmpty(c.PreferredCompanies))
	if err != nil {
		return match.Criteria{}, err
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO matching_criteria (user_id, min_match_threshold, skills_weight, experience_weight, education_weight,
			preferred_companies, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			min_match_threshold = EXCLUDED.min_match_threshold,
			skills_weight = EXCLUDED.skills_weight,
			experience_weight = EXCLUDED.experience_weight,
			education_weight = EXCLUDED.education_weight,
			preferred_companies = EXCLUDED.preferred_companies,
			updated_at = now()
		 RETURNING `+criteriaColumns,
		c.UserID, c.MinMatchThreshold, c.SkillsWeight, c.ExperienceWeight, c.EducationWeight, companies,
	)
	return scanCriteria(row)
}

func scanCriteria(row database.Row) (match.Criteria, error) {
	var (
		c         match.Criteria
		companies []byte
	)
	if err := row.Scan(&c.UserID, &c.MinMatchThreshold, &c.SkillsWeight, &c.ExperienceWeight, &c.EducationWeight, &companies, &c.UpdatedAt); err != nil {
		return match.Criteria{}, classify(err)
	}
	if err := fromJSON(companies, &c.PreferredCompanies); err != nil {
		return match.Criteria{}, err
	}
	c.PreferredCompanies = stringsOrEmpty(c.PreferredCompanies)
	return c, nil
}

type PostgresApplicationSettingRepository struct {
	db database.DB
}

func NewPostgresApplicationSettingRepository(db database.DB) *PostgresApplicationSettingRepository {
	return &PostgresApplicationSettingRepository{db: db}
}

const settingColumns = `user_id, daily_limit, application_time, is_active, custom_message,
	notify_on_application, notify_on_response, updated_at`

func (r *PostgresApplicationSettingRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (application.Setting, error) {
	return getOrCreateSetting(ctx, r.db, userID)
}

func (r *PostgresApplicationSettingRepository) Update(ctx context.Context, s application.Setting) (application.Setting, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO application_settings (user_id, daily_limit, application_time, is_active, custom_message,
			notify_on_application, notify_on_response, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (user_id) DO UPDATE SET
			daily_limit = EXCLUDED.daily_limit,
			application_time = EXCLUDED.application_time,
			is_active = EXCLUDED.is_active,
			custom_message = EXCLUDED.custom_message,
			notify_on_application = EXCLUDED.notify_on_application,
			notify_on_response = EXCLUDED.notify_on_response,
			updated_at = now()
		 RETURNING `+settingColumns,
		s.UserID, s.DailyLimit, s.ApplicationTime, s.IsActive, s.CustomMessage, s.NotifyOnApplication, s.NotifyOnResponse,
	)
	return scanSetting(row)
}

func (r *PostgresApplicationSettingRepository) SetActive(ctx context.Context, userID uuid.UUID, active bool) (application.Setting, error) {
	if _, err := getOrCreateSetting(ctx, r.db, userID); err != nil {
		return application.Setting{}, err
	}
	row := r.db.QueryRow(ctx,
		`UPDATE application_settings SET is_active = $2, updated_at = now() WHERE user_id = $1 RETURNING `+settingColumns,
		userID, active,
	)
	return scanSetting(row)
}

func getOrCreateSetting(ctx context.Context, q database.Querier, userID uuid.UUID) (application.Setting, error) {
	d := application.DefaultSetting(userID)
	if _, err := q.Exec(ctx,
		`INSERT INTO application_settings (user_id, daily_limit, application_time, is_active,
			notify_on_application, notify_on_response)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, d.DailyLimit, d.ApplicationTime, d.IsActive, d.NotifyOnApplication, d.NotifyOnResponse,
	); err != nil {
		return application.Setting{}, fmt.Errorf("ensure application settings: %w", err)
	}
	return scanSetting(q.QueryRow(ctx, `SELECT `+settingColumns+` FROM application_settings WHERE user_id = $1`, userID))
}

func scanSetting(row database.Row) (application.Setting, error) {
	var s application.Setting
	err := row.Scan(&s.UserID, &s.DailyLimit, &s.ApplicationTime, &s.IsActive, &s.CustomMessage,
		&s.NotifyOnApplication, &s.NotifyOnResponse, &s.UpdatedAt)
	if err != nil {
		return application.Setting{}, classify(err)
	}
	return s, nil
}
