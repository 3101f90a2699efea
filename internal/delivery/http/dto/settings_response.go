package dto

import (
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/profile"
)

type CriteriaResponse struct {
	MinMatchThreshold  int       `json:"min_match_threshold"`
	SkillsWeight       int       `json:"skills_weight"`
	ExperienceWeight   int       `json:"experience_weight"`
	EducationWeight    int       `json:"education_weight"`
	PreferredCompanies []string  `json:"preferred_companies"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ApplicationSettingResponse struct {
	DailyLimit          int       `json:"daily_limit"`
	ApplicationTime     string    `json:"application_time"`
	IsActive            bool      `json:"is_active"`
	CustomMessage       string    `json:"custom_message"`
	NotifyOnApplication bool      `json:"notify_on_application"`
	NotifyOnResponse    bool      `json:"notify_on_response"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type PreferenceResponse struct {
	Location        string    `json:"location"`
	Industries      []string  `json:"industries"`
	JobTypes        []string  `json:"job_types"`
	ExperienceLevel string    `json:"experience_level"`
	SalaryMin       *int      `json:"salary_min"`
	SalaryMax       *int      `json:"salary_max"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewCriteriaResponse(c match.Criteria) CriteriaResponse {
	return CriteriaResponse{
		MinMatchThreshold:  c.MinMatchThreshold,
		SkillsWeight:       c.SkillsWeight,
		ExperienceWeight:   c.ExperienceWeight,
		EducationWeight:    c.EducationWeight,
		PreferredCompanies: nonNil(c.PreferredCompanies),
		UpdatedAt:          c.UpdatedAt,
	}
}

func NewApplicationSettingResponse(s application.Setting) ApplicationSettingResponse {
	return ApplicationSettingResponse{
		DailyLimit:          s.DailyLimit,
		ApplicationTime:     s.ApplicationTime,
		IsActive:            s.IsActive,
		CustomMessage:       s.CustomMessage,
		NotifyOnApplication: s.NotifyOnApplication,
		NotifyOnResponse:    s.NotifyOnResponse,
		UpdatedAt:           s.UpdatedAt,
	}
}

func NewPreferenceResponse(p profile.Preference) PreferenceResponse {
	return PreferenceResponse{
		Location:        p.Location,
		Industries:      nonNil(p.Industries),
		JobTypes:        nonNil(p.JobTypes),
		ExperienceLevel: p.ExperienceLevel,
		SalaryMin:       p.SalaryMin,
		SalaryMax:       p.SalaryMax,
		UpdatedAt:       p.UpdatedAt,
	}
}
