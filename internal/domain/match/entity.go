package match

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = 1

const (
	DefaultMinMatchThreshold = 80
	DefaultSkillsWeight      = 40
	DefaultExperienceWeight  = 35
	DefaultEducationWeight   = 25
)

type ExperienceMatch struct {
	HasRequiredYears     bool `json:"has_required_years"`
	HasRequiredSeniority bool `json:"has_required_seniority"`
	HasDomainExperience  bool `json:"has_domain_experience"`
}

type EducationMatch struct {
	HasRequiredDegree bool `json:"has_required_degree"`
	HasRelevantField  bool `json:"has_relevant_field"`
}

// JobMatch is keyed by (UserID, JobID). It is immutable once stored; a
// refresh deletes it and computes a new one.
type JobMatch struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	JobID           uuid.UUID
	MatchScore      int
	MatchingSkills  []string
	MissingSkills   []string
	ExperienceMatch ExperienceMatch
	EducationMatch  EducationMatch
	Summary         string
	Details         json.RawMessage
	SchemaVersion   int
	CreatedAt       time.Time
}

type Criteria struct {
	UserID             uuid.UUID
	MinMatchThreshold  int
	SkillsWeight       int
	ExperienceWeight   int
	EducationWeight    int
	PreferredCompanies []string
	UpdatedAt          time.Time
}

func DefaultCriteria(userID uuid.UUID) Criteria {
	return Criteria{
		UserID:             userID,
		MinMatchThreshold:  DefaultMinMatchThreshold,
		SkillsWeight:       DefaultSkillsWeight,
		ExperienceWeight:   DefaultExperienceWeight,
		EducationWeight:    DefaultEducationWeight,
		PreferredCompanies: []string{},
	}
}
