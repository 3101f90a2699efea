package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = 1

const (
	ImportanceRequired  = "required"
	ImportancePreferred = "preferred"
)

type Job struct {
	ID             uuid.UUID
	ExternalJobID  string
	Title          string
	Company        string
	Location       string
	Description    string
	JobURL         string
	EmploymentType string
	SeniorityLevel string
	Industries     []string
	PostedAt       *time.Time
	Metadata       json.RawMessage
	CreatedAt      time.Time
}

type RequiredSkill struct {
	Name       string `json:"name"`
	Importance string `json:"importance"`
}

type ExperienceRequirements struct {
	Years      int      `json:"years"`
	Seniority  string   `json:"seniority"`
	Management bool     `json:"management"`
	Domains    []string `json:"domains"`
}

type EducationRequirements struct {
	DegreeLevel int      `json:"degree_level"`
	Fields      []string `json:"fields"`
	Required    bool     `json:"required"`
}

// Analysis is the cached requirement extraction for a job. At most one
// exists per job and it is never recomputed once stored.
type Analysis struct {
	ID                     uuid.UUID
	JobID                  uuid.UUID
	RequiredSkills         []RequiredSkill
	ExperienceRequirements ExperienceRequirements
	EducationRequirements  EducationRequirements
	Summary                string
	Raw                    json.RawMessage
	SchemaVersion          int
	CreatedAt              time.Time
}

func (a Analysis) SkillNames() []string {
	out := make([]string, 0, len(a.RequiredSkills))
	for _, s := range a.RequiredSkills {
		out = append(out, s.Name)
	}
	return out
}
