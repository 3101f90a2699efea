package summary

import (
	"time"

	"github.com/google/uuid"
)

const TopMatchLimit = 5

type TopMatch struct {
	JobID      uuid.UUID `json:"job_id"`
	JobTitle   string    `json:"job_title"`
	Company    string    `json:"company"`
	MatchScore int       `json:"match_score"`
	Applied    bool      `json:"applied"`
}

// DailySummary is keyed by (UserID, Date) and computed once. Later changes
// to matches or applications of that date are not reflected.
type DailySummary struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Date                  time.Time  `json:"date"`
	JobsAnalyzed          int        `json:"jobs_analyzed"`
	ExcellentMatches      int        `json:"excellent_matches"`
	GoodMatches           int        `json:"good_matches"`
	FairMatches           int        `json:"fair_matches"`
	PoorMatches           int        `json:"poor_matches"`
	ApplicationsSubmitted int        `json:"applications_submitted"`
	TopMatches            []TopMatch `json:"top_matches"`
	CreatedAt             time.Time  `json:"created_at"`
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
