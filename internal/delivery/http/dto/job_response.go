package dto

import (
	"time"

	"jobpilot/internal/domain/job"
	"jobpilot/internal/usecase"

	"github.com/google/uuid"
)

type JobResponse struct {
	ID             uuid.UUID  `json:"id"`
	ExternalJobID  string     `json:"external_job_id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	Description    string     `json:"description"`
	JobURL         string     `json:"job_url"`
	EmploymentType string     `json:"employment_type,omitempty"`
	SeniorityLevel string     `json:"seniority_level,omitempty"`
	Industries     []string   `json:"industries"`
	PostedAt       *time.Time `json:"posted_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type JobAnalysisResponse struct {
	JobID                  uuid.UUID                  `json:"job_id"`
	RequiredSkills         []job.RequiredSkill        `json:"required_skills"`
	ExperienceRequirements job.ExperienceRequirements `json:"experience_requirements"`
	EducationRequirements  job.EducationRequirements  `json:"education_requirements"`
	Summary                string                     `json:"summary"`
	CreatedAt              time.Time                  `json:"created_at"`
}

type SearchJobsResponse struct {
	Jobs    []JobResponse `json:"jobs"`
	Created int           `json:"created"`
	Matched int           `json:"matched"`
}

func NewJobResponse(j job.Job) JobResponse {
	industries := j.Industries
	if industries == nil {
		industries = []string{}
	}
	return JobResponse{
		ID:             j.ID,
		ExternalJobID:  j.ExternalJobID,
		Title:          j.Title,
		Company:        j.Company,
		Location:       j.Location,
		Description:    j.Description,
		JobURL:         j.JobURL,
		EmploymentType: j.EmploymentType,
		SeniorityLevel: j.SeniorityLevel,
		Industries:     industries,
		PostedAt:       j.PostedAt,
		CreatedAt:      j.CreatedAt,
	}
}

func NewJobAnalysisResponse(a job.Analysis) JobAnalysisResponse {
	skills := a.RequiredSkills
	if skills == nil {
		skills = []job.RequiredSkill{}
	}
	return JobAnalysisResponse{
		JobID:                  a.JobID,
		RequiredSkills:         skills,
		ExperienceRequirements: a.ExperienceRequirements,
		EducationRequirements:  a.EducationRequirements,
		Summary:                a.Summary,
		CreatedAt:              a.CreatedAt,
	}
}

func NewSearchJobsResponse(r usecase.SearchJobsResult) SearchJobsResponse {
	out := SearchJobsResponse{Jobs: make([]JobResponse, 0, len(r.Jobs)), Created: r.Created, Matched: r.Matched}
	for _, j := range r.Jobs {
		out.Jobs = append(out.Jobs, NewJobResponse(j))
	}
	return out
}
