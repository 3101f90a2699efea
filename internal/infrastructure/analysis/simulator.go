package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/matching"
	"jobpilot/internal/domain/profile"

	"go.uber.org/zap"
)

const (
	simulatedMinScore = 50
	simulatedMaxScore = 95
)

// Simulator stands in for the analysis service when no credentials are
// configured. Skill extraction is rule based; match scores come from the
// seeded random source.
type Simulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewSimulator seeds the score source with seed, or with the clock when
// seed is zero.
func NewSimulator(seed int64, logger *zap.Logger) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
		logger: logger,
	}
}

type localized struct {
	Localized map[string]string `json:"localized"`
}

type simulatedProfilePayload struct {
	FirstName localized `json:"firstName"`
	LastName  localized `json:"lastName"`
	Headline  localized `json:"headline"`
}

func (s *Simulator) AnalyzeProfile(_ context.Context, in ProfileInput) (ProfileAnalysis, error) {
	var p simulatedProfilePayload
	if len(in.Payload) > 0 {
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			s.logger.Debug("profile payload not decoded, using defaults", zap.Error(err))
		}
	}

	out := ProfileAnalysis{
		Name:     strings.TrimSpace(p.FirstName.Localized["en_US"] + " " + p.LastName.Localized["en_US"]),
		Headline: p.Headline.Localized["en_US"],
		Skills: []profile.Skill{
			{Name: "Python", Level: "expert", Relevance: 0.9},
			{Name: "JavaScript", Level: "intermediate", Relevance: 0.7},
			{Name: "React", Level: "intermediate", Relevance: 0.8},
			{Name: "SQL", Level: "expert", Relevance: 0.85},
			{Name: "Data Analysis", Level: "intermediate", Relevance: 0.75},
			{Name: "Project Management", Level: "intermediate", Relevance: 0.6},
			{Name: "Communication", Level: "expert", Relevance: 0.8},
			{Name: "Problem Solving", Level: "expert", Relevance: 0.9},
		},
		Experience: profile.Experience{
			TotalYears: 5,
			Domains:    []string{"Software Development", "Web Development", "Data Analysis"},
			Seniority:  "mid",
			Industries: []string{"Technology", "Finance"},
		},
		Education: profile.Education{
			HighestDegree: "Bachelor's Degree in Computer Science",
			DegreeLevel:   2,
			Fields:        []string{"Computer Science", "Information Technology"},
		},
	}
	out.Summary = fmt.Sprintf(
		"Experienced professional with expertise in Python, SQL, and data analysis. Has %d years of experience in %s. Holds a %s.",
		out.Experience.TotalYears, strings.Join(out.Experience.Domains, ", "), out.Education.HighestDegree,
	)
	return withRaw(out, func(v *ProfileAnalysis, raw json.RawMessage) { v.Raw = raw })
}

func (s *Simulator) AnalyzeJob(_ context.Context, in JobInput) (JobAnalysis, error) {
	title := strings.ToLower(in.Title)

	out := JobAnalysis{
		RequiredSkills: skillsForTitle(title),
		ExperienceRequirements: job.ExperienceRequirements{
			Years:     3,
			Seniority: "mid",
			Domains:   []string{"Business"},
		},
		EducationRequirements: job.EducationRequirements{
			DegreeLevel: 2,
			Fields:      []string{"Business", "Related Field"},
			Required:    true,
		},
	}
	if strings.Contains(strings.ToLower(in.Company), "tech") {
		out.ExperienceRequirements.Domains = []string{"Technology"}
	}
	if strings.Contains(title, "developer") {
		out.EducationRequirements.Fields = []string{"Computer Science", "Information Technology"}
	}

	top := make([]string, 0, 3)
	for i := 0; i < len(out.RequiredSkills) && i < 3; i++ {
		top = append(top, out.RequiredSkills[i].Name)
	}
	out.Summary = fmt.Sprintf(
		"This %s position at %s requires skills in %s. Candidates should have at least %d years of experience and a Bachelor's degree in a relevant field.",
		in.Title, in.Company, strings.Join(top, ", "), out.ExperienceRequirements.Years,
	)
	return withRaw(out, func(v *JobAnalysis, raw json.RawMessage) { v.Raw = raw })
}

func (s *Simulator) MatchJobToProfile(_ context.Context, in MatchInput) (MatchResult, error) {
	profileSkills := make([]string, 0, len(in.Profile.Skills))
	for _, sk := range in.Profile.Skills {
		profileSkills = append(profileSkills, sk.Name)
	}
	reqs := make([]matching.Requirement, 0, len(in.Job.RequiredSkills))
	for _, rs := range in.Job.RequiredSkills {
		reqs = append(reqs, matching.Requirement{SkillName: rs.Name, IsMandatory: rs.Importance != job.ImportancePreferred})
	}
	overlap := matching.Overlap(profileSkills, reqs)

	out := MatchResult{
		MatchScore:      matching.ClampScore(s.score()),
		MatchingSkills:  overlap.MatchedSkills,
		MissingSkills:   overlap.MissingSkillNames(),
		ExperienceMatch: experienceMatch(in.Profile.Experience, in.Job.ExperienceRequirements),
		EducationMatch:  educationMatch(in.Profile.Education, in.Job.EducationRequirements),
	}
	out.Summary = fmt.Sprintf("You have a %d%% match with this %s position at %s.", out.MatchScore, in.Job.Title, in.Job.Company)
	if len(out.MatchingSkills) > 0 {
		out.Summary += fmt.Sprintf(" You match on key skills like %s.", strings.Join(out.MatchingSkills, ", "))
	}
	if len(out.MissingSkills) > 0 {
		out.Summary += fmt.Sprintf(" You could improve in %s.", strings.Join(out.MissingSkills, ", "))
	}

	s.logger.Debug("simulated match",
		zap.String("job_title", in.Job.Title),
		zap.Int("score", out.MatchScore),
		zap.Int("matching", len(out.MatchingSkills)),
		zap.Int("missing", len(out.MissingSkills)),
	)
	return withRaw(out, func(v *MatchResult, raw json.RawMessage) { v.Raw = raw })
}

func (s *Simulator) score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return simulatedMinScore + s.rng.IntN(simulatedMaxScore-simulatedMinScore+1)
}

func skillsForTitle(title string) []job.RequiredSkill {
	req := func(name string) job.RequiredSkill {
		return job.RequiredSkill{Name: name, Importance: job.ImportanceRequired}
	}
	pref := func(name string) job.RequiredSkill {
		return job.RequiredSkill{Name: name, Importance: job.ImportancePreferred}
	}

	switch {
	case strings.Contains(title, "developer") || strings.Contains(title, "engineer"):
		return []job.RequiredSkill{req("Python"), pref("JavaScript"), req("SQL"), req("Git"), req("Problem Solving")}
	case strings.Contains(title, "data") || strings.Contains(title, "analyst"):
		return []job.RequiredSkill{req("SQL"), req("Python"), req("Data Analysis"), pref("Statistics"), pref("Visualization")}
	case strings.Contains(title, "manager") || strings.Contains(title, "lead"):
		return []job.RequiredSkill{req("Project Management"), req("Leadership"), req("Communication"), pref("Strategic Thinking"), pref("Budgeting")}
	default:
		return []job.RequiredSkill{req("Communication"), req("Problem Solving"), req("Teamwork"), pref("Time Management"), pref("Microsoft Office")}
	}
}

var seniorityRank = map[string]int{
	"intern":    0,
	"entry":     1,
	"junior":    1,
	"mid":       2,
	"senior":    3,
	"lead":      4,
	"principal": 4,
	"executive": 5,
}

func experienceMatch(have *profile.Experience, want job.ExperienceRequirements) match.ExperienceMatch {
	if have == nil {
		return match.ExperienceMatch{}
	}
	out := match.ExperienceMatch{
		HasRequiredYears:     have.TotalYears >= want.Years,
		HasRequiredSeniority: seniorityRank[strings.ToLower(have.Seniority)] >= seniorityRank[strings.ToLower(want.Seniority)],
	}
	if len(want.Domains) == 0 {
		out.HasDomainExperience = true
	} else {
		pool := append(append([]string{}, have.Domains...), have.Industries...)
		out.HasDomainExperience = anyOverlap(pool, want.Domains)
	}
	return out
}

func educationMatch(have *profile.Education, want job.EducationRequirements) match.EducationMatch {
	if have == nil {
		return match.EducationMatch{HasRequiredDegree: !want.Required}
	}
	return match.EducationMatch{
		HasRequiredDegree: !want.Required || have.DegreeLevel >= want.DegreeLevel,
		HasRelevantField:  len(want.Fields) == 0 || anyOverlap(have.Fields, want.Fields),
	}
}

func anyOverlap(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[strings.ToLower(strings.TrimSpace(v))]; ok {
			return true
		}
	}
	return false
}

// withRaw records the JSON form of v on itself, mirroring what a remote
// backend would have returned.
func withRaw[T any](v T, set func(*T, json.RawMessage)) (T, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return v, fmt.Errorf("marshal simulated result: %w", err)
	}
	set(&v, b)
	return v, nil
}

var _ Client = (*Simulator)(nil)
