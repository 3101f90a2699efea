package matching

import (
	"strings"
)

type Bucket string

const (
	BucketExcellent Bucket = "excellent"
	BucketGood      Bucket = "good"
	BucketFair      Bucket = "fair"
	BucketPoor      Bucket = "poor"
)

// BucketOf classifies a match score. Ranges are half-open: [90,100]
// excellent, [70,90) good, [50,70) fair, below 50 poor.
func BucketOf(score int) Bucket {
	switch {
	case score >= 90:
		return BucketExcellent
	case score >= 70:
		return BucketGood
	case score >= 50:
		return BucketFair
	default:
		return BucketPoor
	}
}

type Requirement struct {
	SkillName   string
	IsMandatory bool
}

type MissingSkill struct {
	SkillName   string
	IsMandatory bool
}

type Result struct {
	MatchedSkills    []string
	MissingSkills    []MissingSkill
	MandatoryMissing bool
}

func (r Result) MissingSkillNames() []string {
	out := make([]string, 0, len(r.MissingSkills))
	for _, m := range r.MissingSkills {
		out = append(out, m.SkillName)
	}
	return out
}

// Overlap splits job requirements into the ones covered by the profile
// skills and the ones missing. Names compare case-insensitively; mandatory
// requirements are listed before optional ones.
func Overlap(profileSkills []string, reqs []Requirement) Result {
	have := make(map[string]struct{}, len(profileSkills))
	for _, s := range profileSkills {
		k := normalizeSkill(s)
		if k == "" {
			continue
		}
		have[k] = struct{}{}
	}

	mandatory := make([]Requirement, 0)
	optional := make([]Requirement, 0)
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		k := normalizeSkill(r.SkillName)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if r.IsMandatory {
			mandatory = append(mandatory, r)
		} else {
			optional = append(optional, r)
		}
	}

	res := Result{
		MatchedSkills: make([]string, 0, len(reqs)),
		MissingSkills: make([]MissingSkill, 0),
	}
	for _, group := range [][]Requirement{mandatory, optional} {
		for _, r := range group {
			if _, ok := have[normalizeSkill(r.SkillName)]; ok {
				res.MatchedSkills = append(res.MatchedSkills, strings.TrimSpace(r.SkillName))
				continue
			}
			if r.IsMandatory {
				res.MandatoryMissing = true
			}
			res.MissingSkills = append(res.MissingSkills, MissingSkill{SkillName: strings.TrimSpace(r.SkillName), IsMandatory: r.IsMandatory})
		}
	}
	return res
}

func ClampScore(v int) int {
	return clampInt(v, 0, 100)
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
