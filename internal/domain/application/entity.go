package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusViewed    Status = "viewed"
	StatusResponded Status = "responded"
	StatusRejected  Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusSubmitted, StatusViewed, StatusResponded, StatusRejected}

var transitions = map[Status][]Status{
	StatusPending:   {StatusSubmitted, StatusRejected},
	StatusSubmitted: {StatusViewed, StatusResponded, StatusRejected},
	StatusViewed:    {StatusResponded, StatusRejected},
}

func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransition reports whether an application may move from one status to
// another. Responded and rejected are terminal.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsResponse reports whether the status records an employer reaction.
func (s Status) IsResponse() bool {
	return s == StatusViewed || s == StatusResponded || s == StatusRejected
}

// JobApplication is keyed by (UserID, JobID); its existence is the
// "already applied" guard.
type JobApplication struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	JobID                 uuid.UUID
	ExternalApplicationID string
	Status                Status
	AppliedAt             time.Time
	ResponseAt            *time.Time
	Notes                 string
}

const (
	DefaultDailyLimit      = 5
	DefaultApplicationTime = "09:00"
)

type Setting struct {
	UserID              uuid.UUID
	DailyLimit          int
	ApplicationTime     string
	IsActive            bool
	CustomMessage       string
	NotifyOnApplication bool
	NotifyOnResponse    bool
	UpdatedAt           time.Time
}

func DefaultSetting(userID uuid.UUID) Setting {
	return Setting{
		UserID:              userID,
		DailyLimit:          DefaultDailyLimit,
		ApplicationTime:     DefaultApplicationTime,
		IsActive:            false,
		NotifyOnApplication: true,
		NotifyOnResponse:    true,
	}
}

type APICallLog struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Endpoint     string
	Method       string
	StatusCode   int
	ResponseTime float64 // seconds
	CreatedAt    time.Time
}
