// Package profile holds the LinkedIn profile of a user together with the
// typed attributes produced by profile analysis.
package profile

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the version of the typed skills/experience/education
// blobs written by this build. Rows with a higher version are rejected.
const SchemaVersion = 1

type Skill struct {
	Name      string  `json:"name"`
	Level     string  `json:"level"`
	Relevance float64 `json:"relevance"`
}

type Experience struct {
	TotalYears           int      `json:"total_years"`
	Domains              []string `json:"domains"`
	Seniority            string   `json:"seniority"`
	ManagementExperience bool     `json:"management_experience"`
	Industries           []string `json:"industries"`
}

type Education struct {
	HighestDegree           string   `json:"highest_degree"`
	DegreeLevel             int      `json:"degree_level"`
	Fields                  []string `json:"fields"`
	PrestigiousInstitutions bool     `json:"prestigious_institutions"`
}

type Profile struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	LinkedInID   string
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time

	// Payload is the raw profile document returned by the identity provider.
	Payload json.RawMessage

	Skills          []Skill
	Experience      *Experience
	Education       *Education
	AnalysisSummary string
	SchemaVersion   int
	AnalyzedAt      *time.Time
	LastUpdated     time.Time
}

// Connected reports whether the profile holds a usable access credential.
func (p Profile) Connected() bool {
	return p.AccessToken != ""
}

// Analyzed reports whether profile analysis has produced typed attributes.
func (p Profile) Analyzed() bool {
	return len(p.Payload) > 0 && (len(p.Skills) > 0 || p.Experience != nil || p.Education != nil)
}

func (p Profile) SkillNames() []string {
	out := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		if s.Name == "" {
			continue
		}
		out = append(out, s.Name)
	}
	return out
}

type Preference struct {
	UserID          uuid.UUID
	Location        string
	Industries      []string
	JobTypes        []string
	ExperienceLevel string
	SalaryMin       *int
	SalaryMax       *int
	UpdatedAt       time.Time
}

func DefaultPreference(userID uuid.UUID) Preference {
	return Preference{UserID: userID, Location: "UAE", Industries: []string{}, JobTypes: []string{}}
}
