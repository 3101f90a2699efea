package usecase

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventMatchCreated         = "match_created"
	EventApplicationSubmitted = "application_submitted"
	EventMatchesRefreshed     = "matches_refreshed"
)

// Notifier pushes events to a user's live sessions. Delivery is best effort.
type Notifier interface {
	Notify(userID uuid.UUID, eventType string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uuid.UUID, string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Clock returns the current time. Tests replace it to pin "today".
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
