package dto

import (
	"time"

	"jobpilot/internal/domain/profile"
)

// ProfileResponse never carries the stored OAuth credentials.
type ProfileResponse struct {
	LinkedInID      string              `json:"linkedin_id"`
	Connected       bool                `json:"connected"`
	Skills          []profile.Skill     `json:"skills"`
	Experience      *profile.Experience `json:"experience"`
	Education       *profile.Education  `json:"education"`
	AnalysisSummary string              `json:"analysis_summary"`
	AnalyzedAt      *time.Time          `json:"analyzed_at"`
	LastUpdated     time.Time           `json:"last_updated"`
}

type AuthorizeURLResponse struct {
	URL string `json:"url"`
}

func NewProfileResponse(p profile.Profile) ProfileResponse {
	skills := p.Skills
	if skills == nil {
		skills = []profile.Skill{}
	}
	return ProfileResponse{
		LinkedInID:      p.LinkedInID,
		Connected:       p.Connected(),
		Skills:          skills,
		Experience:      p.Experience,
		Education:       p.Education,
		AnalysisSummary: p.AnalysisSummary,
		AnalyzedAt:      p.AnalyzedAt,
		LastUpdated:     p.LastUpdated,
	}
}
