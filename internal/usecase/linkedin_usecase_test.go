package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"jobpilot/internal/infrastructure/linkedin"

	"github.com/google/uuid"
)

type mockOAuth struct {
	enabled     bool
	exchangeErr error
}

func (m mockOAuth) Enabled() bool { return m.enabled }

func (m mockOAuth) AuthCodeURL(state string) (string, error) {
	return "https://www.linkedin.com/oauth/v2/authorization?state=" + state, nil
}

func (m mockOAuth) Exchange(_ context.Context, code string) (linkedin.Token, error) {
	if m.exchangeErr != nil {
		return linkedin.Token{}, m.exchangeErr
	}
	return linkedin.Token{AccessToken: "at-" + code, RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
}

func (m mockOAuth) FetchMember(_ context.Context, accessToken string) (linkedin.Member, error) {
	return linkedin.Member{ID: "member-1", Payload: json.RawMessage(`{"id":"member-1","localizedFirstName":"Jane"}`)}, nil
}

func TestLinkedIn_ConnectFlow(t *testing.T) {
	db := newMemDB()
	tokens := newTestJWT()
	analyzer := &mockAnalyzer{}
	profiles := NewProfileUsecase(mockProfileRepo{db}, analyzer, nil, nil)
	uc := NewLinkedInUsecase(mockOAuth{enabled: true}, tokens, mockProfileRepo{db}, profiles, nil)
	userID := uuid.New()

	url, err := uc.AuthorizeURL(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	state := url[strings.Index(url, "state=")+len("state="):]

	if _, err := uc.Connect(context.Background(), uuid.New(), "code", state); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("state of another user must be rejected, got %v", err)
	}

	p, err := uc.Connect(context.Background(), userID, "code", state)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !p.Connected() || p.AccessToken != "at-code" || p.LinkedInID != "member-1" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if !p.Analyzed() || analyzer.profileCalls.Load() != 1 {
		t.Fatalf("expected the new profile to be analyzed")
	}

	if err := uc.Disconnect(context.Background(), userID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := uc.Disconnect(context.Background(), userID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestLinkedIn_Failures(t *testing.T) {
	db := newMemDB()
	tokens := newTestJWT()
	userID := uuid.New()

	off := NewLinkedInUsecase(mockOAuth{}, tokens, mockProfileRepo{db}, nil, nil)
	if _, err := off.AuthorizeURL(context.Background(), userID); KindOf(err) != KindPreconditionFailed {
		t.Fatalf("expected precondition failure, got %v", err)
	}

	broken := NewLinkedInUsecase(mockOAuth{enabled: true, exchangeErr: errors.New("bad code")}, tokens, mockProfileRepo{db}, nil, nil)
	state, _ := tokens.GenerateStateToken(userID)
	if _, err := broken.Connect(context.Background(), userID, "code", state); !errors.Is(err, ErrLinkedInFailed) {
		t.Fatalf("expected ErrLinkedInFailed, got %v", err)
	}
	if _, err := broken.Connect(context.Background(), userID, " ", state); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty code, got %v", err)
	}
	if len(db.profiles) != 0 {
		t.Fatalf("failed connects must not store a profile")
	}
}

func TestProfile_AnalyzeProfile(t *testing.T) {
	db := newMemDB()
	analyzer := &mockAnalyzer{}
	uc := NewProfileUsecase(mockProfileRepo{db}, analyzer, nil, nil)
	userID := uuid.New()

	if _, err := uc.AnalyzeProfile(context.Background(), userID); !errors.Is(err, ErrProfileNotConnected) {
		t.Fatalf("expected ErrProfileNotConnected, got %v", err)
	}

	p := db.addAnalyzedProfile(userID)
	p.Payload = nil
	db.profiles[userID] = p
	if _, err := uc.AnalyzeProfile(context.Background(), userID); !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}

	db.addAnalyzedProfile(userID)
	got, err := uc.AnalyzeProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got.Skills) != 1 || got.Skills[0].Name != "Python" || got.AnalyzedAt == nil {
		t.Fatalf("expected stored analysis, got %+v", got)
	}
}
