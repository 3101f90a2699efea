package search

import (
	"sort"
	"strings"
	"time"

	"jobpilot/internal/domain/job"
)

const maxRelevance = 10

type JobScore struct {
	Relevance   float64
	Location    float64
	Freshness   float64
	DataQuality float64
	FinalScore  float64
}

func ComputeRelevance(j job.Job, variants []string) float64 {
	title := strings.ToLower(j.Title)
	desc := strings.ToLower(j.Description)
	company := strings.ToLower(j.Company)

	score := 0.0
	for _, v := range variants {
		if v == "" {
			continue
		}
		if strings.Contains(title, v) {
			score += 3
		}
		if strings.Contains(desc, v) {
			score++
		}
		if strings.Contains(company, v) {
			score++
		}
		if score >= maxRelevance {
			return maxRelevance
		}
	}
	return score
}

// ComputeLocation rewards postings whose location mentions the wanted one.
// "uae" also matches the emirates postings usually name instead.
func ComputeLocation(j job.Job, location string) float64 {
	if location == "" {
		return 0
	}
	have := strings.ToLower(j.Location)
	if strings.Contains(have, location) {
		return 3
	}
	if location == "uae" || location == "united arab emirates" {
		for _, e := range []string{"dubai", "abu dhabi", "sharjah", "ajman", "ras al khaimah", "fujairah", "umm al quwain"} {
			if strings.Contains(have, e) {
				return 2
			}
		}
	}
	return 0
}

func ComputeFreshness(j job.Job, now time.Time) float64 {
	var t time.Time
	switch {
	case j.PostedAt != nil && !j.PostedAt.IsZero():
		t = *j.PostedAt
	case !j.CreatedAt.IsZero():
		t = j.CreatedAt
	default:
		return 0
	}

	age := now.Sub(t)
	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 3*24*time.Hour:
		return 4
	case age <= 7*24*time.Hour:
		return 3
	case age <= 14*24*time.Hour:
		return 2
	case age <= 30*24*time.Hour:
		return 1
	default:
		return 0
	}
}

func ComputeDataQuality(j job.Job) float64 {
	score := 0.0
	for _, s := range []string{j.Title, j.Company, j.Location, j.JobURL} {
		if strings.TrimSpace(s) != "" {
			score++
		}
	}
	if len(strings.TrimSpace(j.Description)) > 100 {
		score++
	}
	return score
}

func ScoreJob(j job.Job, q Query, now time.Time) JobScore {
	s := JobScore{
		Relevance:   ComputeRelevance(j, q.Variants),
		Location:    ComputeLocation(j, q.Location),
		Freshness:   ComputeFreshness(j, now),
		DataQuality: ComputeDataQuality(j),
	}
	s.FinalScore = s.Relevance*2 + s.Location + s.Freshness*1.5 + s.DataQuality*0.5
	return s
}

// Rank orders jobs by score, best first, keeping the input order for ties.
// An empty query returns jobs unchanged.
func Rank(jobs []job.Job, q Query, now time.Time) []job.Job {
	if len(jobs) == 0 || q.Empty() {
		return jobs
	}

	scores := make([]float64, len(jobs))
	idx := make([]int, len(jobs))
	for i := range jobs {
		scores[i] = ScoreJob(jobs[i], q, now).FinalScore
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]job.Job, 0, len(jobs))
	for _, i := range idx {
		out = append(out, jobs[i])
	}
	return out
}
