package dto

import "jobpilot/internal/usecase"

type DataExportResponse struct {
	User         UserResponse                  `json:"user"`
	Profile      *ProfileResponse              `json:"linkedin_profile"`
	Preferences  PreferenceResponse            `json:"preferences"`
	Criteria     CriteriaResponse              `json:"matching_criteria"`
	Settings     ApplicationSettingResponse    `json:"application_settings"`
	Applications []ApplicationListItemResponse `json:"applications"`
	Matches      []MatchListItemResponse       `json:"matches"`
	Summaries    []DailySummaryResponse        `json:"daily_summaries"`
}

func NewDataExportResponse(e usecase.DataExport) DataExportResponse {
	out := DataExportResponse{
		User:         NewUserResponse(e.User),
		Preferences:  NewPreferenceResponse(e.Preference),
		Criteria:     NewCriteriaResponse(e.Criteria),
		Settings:     NewApplicationSettingResponse(e.Setting),
		Applications: NewApplicationListResponse(e.Applications),
		Matches:      NewMatchListResponse(e.Matches),
		Summaries:    NewDailySummaryListResponse(e.Summaries),
	}
	if e.Profile != nil {
		p := NewProfileResponse(*e.Profile)
		out.Profile = &p
	}
	return out
}
