package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/profile"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type applicationFixture struct {
	db        *memDB
	submitter *mockSubmitter
	notifier  *mockNotifier
	now       time.Time
	uc        *Application
}

func newApplicationFixture() *applicationFixture {
	db := newMemDB()
	f := &applicationFixture{
		db:        db,
		submitter: &mockSubmitter{},
		notifier:  &mockNotifier{},
		now:       time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
	}
	f.uc = NewApplicationUsecase(
		mockJobRepo{db},
		mockProfileRepo{db},
		mockApplicationRepo{db},
		f.submitter,
		f.notifier,
		func() time.Time { return f.now },
		nil,
	)
	return f
}

func TestApplication_Apply_Success(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	j := f.db.addJob("Engineer", "Acme")

	a, err := f.uc.Apply(context.Background(), userID, j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.Status != application.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", a.Status)
	}
	if want := "app_" + j.ExternalJobID + "_" + userID.String(); a.ExternalApplicationID != want {
		t.Fatalf("expected external id %q, got %q", want, a.ExternalApplicationID)
	}
	if !a.AppliedAt.Equal(f.now) {
		t.Fatalf("expected applied_at %v, got %v", f.now, a.AppliedAt)
	}
	if len(f.db.apiCalls) != 1 {
		t.Fatalf("expected 1 api call log, got %d", len(f.db.apiCalls))
	}
	call := f.db.apiCalls[0]
	if call.Endpoint != "linkedin/jobs/"+j.ExternalJobID+"/applications" || call.Method != "POST" || call.StatusCode != 200 {
		t.Fatalf("unexpected api call log: %+v", call)
	}
	if f.notifier.count(EventApplicationSubmitted) != 1 {
		t.Fatalf("expected application_submitted event")
	}
}

func TestApplication_Apply_AlreadyApplied(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	j := f.db.addJob("Engineer", "Acme")

	if _, err := f.uc.Apply(context.Background(), userID, j.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := f.uc.Apply(context.Background(), userID, j.ID)
	if !errors.Is(err, ErrAlreadyApplied) || KindOf(err) != KindConflict {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if got := f.submitter.calls.Load(); got != 1 {
		t.Fatalf("second apply must not submit, got %d submissions", got)
	}
}

func TestApplication_Apply_Preconditions(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	j := f.db.addJob("Engineer", "Acme")

	if _, err := f.uc.Apply(context.Background(), userID, uuid.New()); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	_, err := f.uc.Apply(context.Background(), userID, j.ID)
	if !errors.Is(err, ErrProfileNotConnected) || KindOf(err) != KindPreconditionFailed {
		t.Fatalf("expected ErrProfileNotConnected, got %v", err)
	}

	f.db.profiles[userID] = profile.Profile{ID: uuid.New(), UserID: userID}
	if _, err := f.uc.Apply(context.Background(), userID, j.ID); !errors.Is(err, ErrProfileNotConnected) {
		t.Fatalf("expected ErrProfileNotConnected without access token, got %v", err)
	}
	if f.submitter.calls.Load() != 0 || f.db.applicationCount(userID) != 0 {
		t.Fatalf("nothing may be submitted or stored")
	}
}

func TestApplication_Apply_DailyLimit(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")

	for i := 0; i < application.DefaultDailyLimit; i++ {
		j := f.db.addJob("Engineer", "Acme")
		if _, err := f.uc.Apply(context.Background(), userID, j.ID); err != nil {
			t.Fatalf("apply %d: unexpected err: %v", i+1, err)
		}
	}

	extra := f.db.addJob("One Too Many", "Acme")
	_, err := f.uc.Apply(context.Background(), userID, extra.ID)
	if !errors.Is(err, ErrDailyLimitReached) || KindOf(err) != KindRateLimited {
		t.Fatalf("expected ErrDailyLimitReached, got %v", err)
	}
	if got := f.db.applicationCount(userID); got != application.DefaultDailyLimit {
		t.Fatalf("expected %d applications, got %d", application.DefaultDailyLimit, got)
	}
	if got := f.submitter.calls.Load(); got != application.DefaultDailyLimit {
		t.Fatalf("rejected apply must not submit, got %d submissions", got)
	}

	// the limit is per UTC day
	f.now = f.now.Add(24 * time.Hour)
	if _, err := f.uc.Apply(context.Background(), userID, extra.ID); err != nil {
		t.Fatalf("expected apply on the next day to succeed, got %v", err)
	}
}

func TestApplication_Apply_ConcurrentNeverExceedsLimit(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	f.db.settings[userID] = application.Setting{UserID: userID, DailyLimit: 3, ApplicationTime: "09:00"}

	const attempts = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		limited int
	)
	for i := 0; i < attempts; i++ {
		j := f.db.addJob("Engineer", "Acme")
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Apply(context.Background(), userID, j.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrDailyLimitReached):
				limited++
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 3 || limited != attempts-3 {
		t.Fatalf("expected 3 accepted and %d limited, got %d and %d", attempts-3, ok, limited)
	}
	if got := f.db.applicationCount(userID); got != 3 {
		t.Fatalf("expected 3 stored applications, got %d", got)
	}
}

func TestApplication_Apply_SubmissionFailure(t *testing.T) {
	f := newApplicationFixture()
	f.submitter.err = errors.New("linkedin 503")
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	j := f.db.addJob("Engineer", "Acme")

	_, err := f.uc.Apply(context.Background(), userID, j.ID)
	if !errors.Is(err, ErrLinkedInFailed) || KindOf(err) != KindUpstreamFailure {
		t.Fatalf("expected ErrLinkedInFailed, got %v", err)
	}
	if f.db.applicationCount(userID) != 0 || len(f.db.apiCalls) != 0 {
		t.Fatalf("failed submission must leave no rows")
	}
	if f.notifier.count(EventApplicationSubmitted) != 0 {
		t.Fatalf("failed submission must not notify")
	}
}

func TestApplication_Apply_UnrecordedSubmissionLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newApplicationFixture()
	f.uc = NewApplicationUsecase(
		mockJobRepo{f.db},
		mockProfileRepo{f.db},
		mockApplicationRepo{f.db},
		f.submitter,
		f.notifier,
		func() time.Time { return f.now },
		zap.New(core),
	)
	f.db.failAPILog = errors.New("connection reset")
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	j := f.db.addJob("Engineer", "Acme")

	_, err := f.uc.Apply(context.Background(), userID, j.ID)
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if f.submitter.calls.Load() != 1 || f.db.applicationCount(userID) != 0 {
		t.Fatalf("expected one submission and no stored application")
	}
	entries := logs.FilterMessage("submission sent but not recorded").All()
	if len(entries) != 1 {
		t.Fatalf("expected the unrecorded submission to be logged, got %v", logs.All())
	}
	if got := entries[0].ContextMap()["external_application_id"]; got != "app_"+j.ExternalJobID+"_"+userID.String() {
		t.Fatalf("external_application_id = %v", got)
	}
}

func TestApplication_UpdateStatus(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	j := f.db.addJob("Engineer", "Acme")
	a, err := f.uc.Apply(context.Background(), userID, j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	f.now = f.now.Add(48 * time.Hour)
	notes := "  recruiter called  "
	viewed, err := f.uc.UpdateStatus(context.Background(), userID, a.ID, UpdateStatusInput{Status: "Viewed", Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if viewed.Status != application.StatusViewed || viewed.ResponseAt == nil || !viewed.ResponseAt.Equal(f.now) {
		t.Fatalf("expected viewed with response_at set, got %+v", viewed)
	}
	if viewed.Notes != "recruiter called" {
		t.Fatalf("expected trimmed notes, got %q", viewed.Notes)
	}

	_, err = f.uc.UpdateStatus(context.Background(), userID, a.ID, UpdateStatusInput{Status: "submitted"})
	if !errors.Is(err, ErrInvalidTransition) || KindOf(err) != KindConflict {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := f.uc.UpdateStatus(context.Background(), userID, a.ID, UpdateStatusInput{Status: "hired"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.uc.UpdateStatus(context.Background(), uuid.New(), a.ID, UpdateStatusInput{Status: "rejected"}); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound for another user, got %v", err)
	}
}

func TestApplication_ListApplications(t *testing.T) {
	f := newApplicationFixture()
	userID := uuid.New()
	f.db.addAnalyzedProfile(userID, "Python")
	j := f.db.addJob("Engineer", "Acme")
	if _, err := f.uc.Apply(context.Background(), userID, j.ID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	rows, err := f.uc.ListApplications(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Engineer" || rows[0].Company != "Acme" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
