package dto

import (
	"time"

	"jobpilot/internal/domain/summary"
)

type DailySummaryResponse struct {
	Date                  string             `json:"date"`
	JobsAnalyzed          int                `json:"jobs_analyzed"`
	ExcellentMatches      int                `json:"excellent_matches"`
	GoodMatches           int                `json:"good_matches"`
	FairMatches           int                `json:"fair_matches"`
	PoorMatches           int                `json:"poor_matches"`
	ApplicationsSubmitted int                `json:"applications_submitted"`
	TopMatches            []summary.TopMatch `json:"top_matches"`
}

type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func NewDailySummaryResponse(s summary.DailySummary) DailySummaryResponse {
	top := s.TopMatches
	if top == nil {
		top = []summary.TopMatch{}
	}
	return DailySummaryResponse{
		Date:                  s.Date.Format(time.DateOnly),
		JobsAnalyzed:          s.JobsAnalyzed,
		ExcellentMatches:      s.ExcellentMatches,
		GoodMatches:           s.GoodMatches,
		FairMatches:           s.FairMatches,
		PoorMatches:           s.PoorMatches,
		ApplicationsSubmitted: s.ApplicationsSubmitted,
		TopMatches:            top,
	}
}

func NewDailySummaryListResponse(list []summary.DailySummary) []DailySummaryResponse {
	out := make([]DailySummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, NewDailySummaryResponse(s))
	}
	return out
}
