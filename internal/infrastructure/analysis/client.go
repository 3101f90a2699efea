// Package analysis talks to the AI service that extracts structured data
// from profiles and job postings and scores profile/job fit.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"jobpilot/internal/config"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/matching"
	"jobpilot/internal/domain/profile"

	"go.uber.org/zap"
)

// ErrAnalysisUnavailable means the analysis backend could not produce a
// usable answer. Callers must abort the operation that needed it.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

const (
	TypeProfileAnalysis = "profile_analysis"
	TypeJobAnalysis     = "job_analysis"
	TypeJobMatching     = "job_matching"
)

type Client interface {
	AnalyzeProfile(ctx context.Context, in ProfileInput) (ProfileAnalysis, error)
	AnalyzeJob(ctx context.Context, in JobInput) (JobAnalysis, error)
	MatchJobToProfile(ctx context.Context, in MatchInput) (MatchResult, error)
}

type ProfileInput struct {
	Payload json.RawMessage
}

type ProfileAnalysis struct {
	Name       string             `json:"name,omitempty"`
	Headline   string             `json:"headline,omitempty"`
	Skills     []profile.Skill    `json:"skills"`
	Experience profile.Experience `json:"experience"`
	Education  profile.Education  `json:"education"`
	Summary    string             `json:"summary"`
	Raw        json.RawMessage    `json:"-"`
}

type JobInput struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	EmploymentType string   `json:"employment_type,omitempty"`
	Industries     []string `json:"industries,omitempty"`
}

type JobAnalysis struct {
	RequiredSkills         []job.RequiredSkill        `json:"required_skills"`
	ExperienceRequirements job.ExperienceRequirements `json:"experience_requirements"`
	EducationRequirements  job.EducationRequirements  `json:"education_requirements"`
	Summary                string                     `json:"summary"`
	Raw                    json.RawMessage            `json:"-"`
}

type MatchProfile struct {
	Skills     []profile.Skill     `json:"skills"`
	Experience *profile.Experience `json:"experience,omitempty"`
	Education  *profile.Education  `json:"education,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Payload    json.RawMessage     `json:"payload,omitempty"`
}

type MatchJob struct {
	JobInput
	RequiredSkills         []job.RequiredSkill        `json:"required_skills"`
	ExperienceRequirements job.ExperienceRequirements `json:"experience_requirements"`
	EducationRequirements  job.EducationRequirements  `json:"education_requirements"`
}

type MatchCriteria struct {
	MinMatchThreshold  int      `json:"min_match_threshold"`
	SkillsWeight       int      `json:"skills_weight"`
	ExperienceWeight   int      `json:"experience_weight"`
	EducationWeight    int      `json:"education_weight"`
	PreferredCompanies []string `json:"preferred_companies"`
}

type MatchInput struct {
	Profile  MatchProfile  `json:"profile"`
	Job      MatchJob      `json:"job"`
	Criteria MatchCriteria `json:"criteria"`
}

type MatchResult struct {
	MatchScore      int                   `json:"match_score"`
	MatchingSkills  []string              `json:"matching_skills"`
	MissingSkills   []string              `json:"missing_skills"`
	ExperienceMatch match.ExperienceMatch `json:"experience_match"`
	EducationMatch  match.EducationMatch  `json:"education_match"`
	Summary         string                `json:"summary"`
	Raw             json.RawMessage       `json:"-"`
}

// New picks the backend from configuration: the HTTP service when an API
// key is set, Gemini when selected and keyed, otherwise the local simulator.
func New(ctx context.Context, cfg config.AnalysisConfig, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("analysis")

	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		logger.Info("using http analysis backend", zap.String("url", cfg.APIURL))
		return NewHTTPClient(cfg.APIURL, cfg.APIKey, cfg.Timeout, logger), nil
	case cfg.Provider == "gemini" && strings.TrimSpace(cfg.GeminiAPIKey) != "":
		gen, err := NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini backend: %w", err)
		}
		logger.Info("using gemini analysis backend", zap.String("model", gen.Model()))
		return NewGeminiClient(gen, logger, cfg.MaxLogLength), nil
	default:
		logger.Warn("no analysis credentials configured, using simulator")
		return NewSimulator(cfg.SimulatorSeed, logger), nil
	}
}

type matchWire struct {
	MatchScore      float64               `json:"match_score"`
	MatchingSkills  []string              `json:"matching_skills"`
	MissingSkills   []string              `json:"missing_skills"`
	ExperienceMatch match.ExperienceMatch `json:"experience_match"`
	EducationMatch  match.EducationMatch  `json:"education_match"`
	Summary         string                `json:"summary"`
}

func decodeProfile(raw []byte) (ProfileAnalysis, error) {
	var out ProfileAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return ProfileAnalysis{}, fmt.Errorf("%w: decode profile analysis: %v", ErrAnalysisUnavailable, err)
	}
	out.Raw = append(json.RawMessage(nil), raw...)
	return out, nil
}

func decodeJob(raw []byte) (JobAnalysis, error) {
	var out JobAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return JobAnalysis{}, fmt.Errorf("%w: decode job analysis: %v", ErrAnalysisUnavailable, err)
	}
	for i := range out.RequiredSkills {
		out.RequiredSkills[i].Importance = normalizeImportance(out.RequiredSkills[i].Importance)
	}
	out.Raw = append(json.RawMessage(nil), raw...)
	return out, nil
}

func decodeMatch(raw []byte) (MatchResult, error) {
	var w matchWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return MatchResult{}, fmt.Errorf("%w: decode match result: %v", ErrAnalysisUnavailable, err)
	}
	if math.IsNaN(w.MatchScore) || math.IsInf(w.MatchScore, 0) {
		return MatchResult{}, fmt.Errorf("%w: invalid match score", ErrAnalysisUnavailable)
	}
	return MatchResult{
		MatchScore:      matching.ClampScore(int(math.Round(w.MatchScore))),
		MatchingSkills:  nonNil(w.MatchingSkills),
		MissingSkills:   nonNil(w.MissingSkills),
		ExperienceMatch: w.ExperienceMatch,
		EducationMatch:  w.EducationMatch,
		Summary:         w.Summary,
		Raw:             append(json.RawMessage(nil), raw...),
	}, nil
}

func normalizeImportance(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), job.ImportancePreferred) {
		return job.ImportancePreferred
	}
	return job.ImportanceRequired
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
