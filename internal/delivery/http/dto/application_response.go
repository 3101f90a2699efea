package dto

import (
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
)

type ApplicationResponse struct {
	ID                    uuid.UUID          `json:"id"`
	JobID                 uuid.UUID          `json:"job_id"`
	ExternalApplicationID string             `json:"external_application_id"`
	Status                application.Status `json:"status"`
	AppliedAt             time.Time          `json:"applied_at"`
	ResponseAt            *time.Time         `json:"response_at"`
	Notes                 string             `json:"notes"`
}

type ApplicationListItemResponse struct {
	ApplicationResponse
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	JobURL   string `json:"job_url"`
}

func NewApplicationResponse(a application.JobApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:                    a.ID,
		JobID:                 a.JobID,
		ExternalApplicationID: a.ExternalApplicationID,
		Status:                a.Status,
		AppliedAt:             a.AppliedAt,
		ResponseAt:            a.ResponseAt,
		Notes:                 a.Notes,
	}
}

func NewApplicationListResponse(rows []repository.ApplicationListRow) []ApplicationListItemResponse {
	out := make([]ApplicationListItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ApplicationListItemResponse{
			ApplicationResponse: NewApplicationResponse(r.Application),
			JobTitle:            r.Title,
			Company:             r.Company,
			Location:            r.Location,
			JobURL:              r.JobURL,
		})
	}
	return out
}
