package dto

import (
	"time"

	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/matching"
	"jobpilot/internal/repository"
	"jobpilot/internal/usecase"

	"github.com/google/uuid"
)

type MatchResponse struct {
	ID              uuid.UUID             `json:"id"`
	JobID           uuid.UUID             `json:"job_id"`
	MatchScore      int                   `json:"match_score"`
	Bucket          matching.Bucket       `json:"bucket"`
	MatchingSkills  []string              `json:"matching_skills"`
	MissingSkills   []string              `json:"missing_skills"`
	ExperienceMatch match.ExperienceMatch `json:"experience_match"`
	EducationMatch  match.EducationMatch  `json:"education_match"`
	Summary         string                `json:"summary"`
	CreatedAt       time.Time             `json:"created_at"`
}

type MatchListItemResponse struct {
	MatchResponse
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
	Applied  bool   `json:"applied"`
}

type MatchDetailResponse struct {
	Match       MatchResponse        `json:"match"`
	Job         JobResponse          `json:"job"`
	Analysis    *JobAnalysisResponse `json:"analysis"`
	Application *ApplicationResponse `json:"application"`
}

type RefreshMatchesResponse struct {
	Refreshed int `json:"refreshed"`
}

func NewMatchResponse(m match.JobMatch) MatchResponse {
	return MatchResponse{
		ID:              m.ID,
		JobID:           m.JobID,
		MatchScore:      m.MatchScore,
		Bucket:          matching.BucketOf(m.MatchScore),
		MatchingSkills:  nonNil(m.MatchingSkills),
		MissingSkills:   nonNil(m.MissingSkills),
		ExperienceMatch: m.ExperienceMatch,
		EducationMatch:  m.EducationMatch,
		Summary:         m.Summary,
		CreatedAt:       m.CreatedAt,
	}
}

func NewMatchListResponse(rows []repository.MatchListRow) []MatchListItemResponse {
	out := make([]MatchListItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, MatchListItemResponse{
			MatchResponse: NewMatchResponse(r.Match),
			JobTitle:      r.Title,
			Company:       r.Company,
			Applied:       r.Applied,
		})
	}
	return out
}

func NewMatchDetailResponse(d usecase.MatchDetail) MatchDetailResponse {
	out := MatchDetailResponse{Match: NewMatchResponse(d.Match), Job: NewJobResponse(d.Job)}
	out.Match.Bucket = d.Bucket
	if d.Analysis != nil {
		a := NewJobAnalysisResponse(*d.Analysis)
		out.Analysis = &a
	}
	if d.Application != nil {
		a := NewApplicationResponse(*d.Application)
		out.Application = &a
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
