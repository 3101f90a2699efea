package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobpilot/internal/delivery/http/handler"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/summary"
	"jobpilot/internal/pkg/jwt"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/repository"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type fakeMatching struct {
	listed    bool
	filter    usecase.MatchFilter
	refreshed int
	err       error
}

func (f *fakeMatching) GetOrComputeMatch(_ context.Context, userID, jobID uuid.UUID) (match.JobMatch, error) {
	if f.err != nil {
		return match.JobMatch{}, f.err
	}
	return match.JobMatch{ID: uuid.New(), UserID: userID, JobID: jobID, MatchScore: 91}, nil
}

func (f *fakeMatching) RefreshMatch(ctx context.Context, userID, jobID uuid.UUID) (match.JobMatch, error) {
	return f.GetOrComputeMatch(ctx, userID, jobID)
}

func (f *fakeMatching) RefreshAllMatches(context.Context, uuid.UUID) (int, error) {
	return f.refreshed, f.err
}

func (f *fakeMatching) ListMatches(_ context.Context, _ uuid.UUID, filter usecase.MatchFilter) ([]repository.MatchListRow, error) {
	f.listed = true
	f.filter = filter
	return []repository.MatchListRow{{Match: match.JobMatch{MatchScore: 85}, Title: "Engineer", Company: "Acme"}}, nil
}

func (f *fakeMatching) GetMatchDetail(context.Context, uuid.UUID, uuid.UUID) (usecase.MatchDetail, error) {
	return usecase.MatchDetail{}, usecase.ErrMatchNotFound
}

func (f *fakeMatching) AnalyzeJob(context.Context, uuid.UUID) (job.Analysis, error) {
	return job.Analysis{}, f.err
}

type fakeJobs struct{}

func (fakeJobs) SearchJobs(context.Context, uuid.UUID, usecase.SearchJobsInput) (usecase.SearchJobsResult, error) {
	return usecase.SearchJobsResult{}, nil
}

func (fakeJobs) ImportJob(context.Context, uuid.UUID, string) (job.Job, error) {
	return job.Job{}, usecase.ErrInvalidInput
}

func (fakeJobs) GetJob(_ context.Context, jobID uuid.UUID) (job.Job, error) {
	return job.Job{ID: jobID, Title: "Go Developer"}, nil
}

type fakeApplications struct {
	err error
}

func (f fakeApplications) Apply(_ context.Context, userID, jobID uuid.UUID) (application.JobApplication, error) {
	if f.err != nil {
		return application.JobApplication{}, f.err
	}
	return application.JobApplication{ID: uuid.New(), UserID: userID, JobID: jobID, Status: application.StatusSubmitted}, nil
}

func (f fakeApplications) ListApplications(context.Context, uuid.UUID) ([]repository.ApplicationListRow, error) {
	return nil, f.err
}

func (f fakeApplications) UpdateStatus(context.Context, uuid.UUID, uuid.UUID, usecase.UpdateStatusInput) (application.JobApplication, error) {
	return application.JobApplication{}, usecase.ErrInvalidTransition
}

type fakeSummary struct {
	date time.Time
}

func (f *fakeSummary) GetOrComputeSummary(_ context.Context, userID uuid.UUID, date time.Time) (summary.DailySummary, error) {
	f.date = date
	return summary.DailySummary{UserID: userID, Date: summary.Day(date), JobsAnalyzed: 3}, nil
}

func (f *fakeSummary) ListSummaries(context.Context, uuid.UUID, int) ([]summary.DailySummary, error) {
	return nil, usecase.ErrInvalidInput
}

func (f *fakeSummary) Stats(context.Context, uuid.UUID) (usecase.Stats, error) {
	return usecase.Stats{}, errors.New("connection reset")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fixture struct {
	app      *fiber.App
	token    string
	matching *fakeMatching
	summary  *fakeSummary
}

func newFixture(t *testing.T, apps fakeApplications) fixture {
	t.Helper()
	tokens := jwt.NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour, time.Minute)
	token, err := tokens.GenerateAccessToken(uuid.New(), "jane@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	f := fixture{token: token, matching: &fakeMatching{}, summary: &fakeSummary{}}
	f.app = fiber.New()
	f.app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	api := f.app.Group("/api/v1")
	handler.NewHealthHandler(map[string]handler.Pinger{
		"database": fakePinger{},
		"redis":    nil,
	}).RegisterRoutes(api)
	Register(api, middleware.NewAuthMiddleware(tokens).Middleware(), Handlers{
		Jobs:         handler.NewJobsHandler(fakeJobs{}, f.matching),
		Matches:      handler.NewMatchHandler(f.matching),
		Applications: handler.NewApplicationHandler(apps),
		Dashboard:    handler.NewDashboardHandler(f.summary, nil),
	})
	return f
}

func (f fixture) do(t *testing.T, method, path string) (int, response.SemanticResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+f.token)
	return send(t, f.app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, response.SemanticResponse) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	var out response.SemanticResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	if out.Status != resp.StatusCode {
		t.Fatalf("envelope status %d differs from HTTP status %d", out.Status, resp.StatusCode)
	}
	return resp.StatusCode, out
}

func TestRoutes_RequireAccessToken(t *testing.T) {
	f := newFixture(t, fakeApplications{})

	status, _ := send(t, f.app, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/matches", nil))
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/matches", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	if status, _ := send(t, f.app, req); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", status)
	}

	if status, _ := send(t, f.app, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)); status != fiber.StatusOK {
		t.Fatalf("health must be public, got %d", status)
	}
}

func TestRoutes_MatchListIsNotAJobID(t *testing.T) {
	f := newFixture(t, fakeApplications{})

	status, body := f.do(t, http.MethodGet, "/api/v1/jobs/matches?min_score=80&status=not_applied")
	if status != fiber.StatusOK || !f.matching.listed {
		t.Fatalf("expected the match list, got %d %+v", status, body)
	}
	if f.matching.filter.MinScore == nil || *f.matching.filter.MinScore != 80 || f.matching.filter.MaxScore != nil {
		t.Fatalf("unexpected filter: %+v", f.matching.filter)
	}
	if f.matching.filter.Status != "not_applied" {
		t.Fatalf("unexpected status filter: %q", f.matching.filter.Status)
	}

	jobID := uuid.New()
	status, body = f.do(t, http.MethodGet, "/api/v1/jobs/"+jobID.String())
	data, _ := body.Data.(map[string]any)
	if status != fiber.StatusOK || data["id"] != jobID.String() {
		t.Fatalf("expected the job, got %d %+v", status, body)
	}

	if status, _ := f.do(t, http.MethodGet, "/api/v1/jobs/matches?min_score=high"); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric score, got %d", status)
	}
}

func TestRoutes_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"rate limited", usecase.ErrDailyLimitReached, fiber.StatusTooManyRequests, "rate_limited", usecase.ErrDailyLimitReached.Error()},
		{"conflict", usecase.ErrAlreadyApplied, fiber.StatusConflict, "conflict", usecase.ErrAlreadyApplied.Error()},
		{"precondition", usecase.ErrProfileIncomplete, fiber.StatusPreconditionFailed, "precondition_failed", usecase.ErrProfileIncomplete.Error()},
		{"not found", usecase.ErrJobNotFound, fiber.StatusNotFound, "not_found", usecase.ErrJobNotFound.Error()},
		{"upstream", fmt.Errorf("%w: timeout", usecase.ErrLinkedInFailed), fiber.StatusBadGateway, "upstream_failure", "linkedin request failed: timeout"},
		{"internal", usecase.ErrInternal, fiber.StatusInternalServerError, "", response.MessageInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fakeApplications{err: tt.err})
			status, body := f.do(t, http.MethodPost, "/api/v1/jobs/"+uuid.NewString()+"/apply")
			if status != tt.status || body.Message != tt.message {
				t.Fatalf("expected %d %q, got %d %q", tt.status, tt.message, status, body.Message)
			}
			if tt.code == "" {
				if body.Data != nil {
					t.Fatalf("internal errors must not carry data, got %+v", body.Data)
				}
				return
			}
			data, _ := body.Data.(map[string]any)
			if data["code"] != tt.code {
				t.Fatalf("expected code %q, got %+v", tt.code, body.Data)
			}
		})
	}
}

func TestRoutes_Apply(t *testing.T) {
	f := newFixture(t, fakeApplications{})

	status, body := f.do(t, http.MethodPost, "/api/v1/jobs/"+uuid.NewString()+"/apply")
	data, _ := body.Data.(map[string]any)
	if status != fiber.StatusCreated || data["status"] != string(application.StatusSubmitted) {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}

	if status, _ := f.do(t, http.MethodPatch, "/api/v1/applications/not-a-uuid/status"); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %d", status)
	}
}

func TestRoutes_RefreshAllReportsPartialProgress(t *testing.T) {
	f := newFixture(t, fakeApplications{})
	f.matching.refreshed = 2
	f.matching.err = fmt.Errorf("%w: boom", usecase.ErrAnalysisFailed)

	status, body := f.do(t, http.MethodPost, "/api/v1/jobs/matches/refresh")
	data, _ := body.Data.(map[string]any)
	if status != fiber.StatusBadGateway || data["refreshed"] != float64(2) {
		t.Fatalf("unexpected response: %d %+v", status, body)
	}
}

func TestRoutes_Dashboard(t *testing.T) {
	f := newFixture(t, fakeApplications{})

	status, body := f.do(t, http.MethodGet, "/api/v1/dashboard/summary?date=2025-05-20")
	data, _ := body.Data.(map[string]any)
	if status != fiber.StatusOK || data["date"] != "2025-05-20" || data["jobs_analyzed"] != float64(3) {
		t.Fatalf("unexpected summary: %d %+v", status, body)
	}
	if !f.summary.date.Equal(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date passed: %v", f.summary.date)
	}

	if status, _ := f.do(t, http.MethodGet, "/api/v1/dashboard/summary?date=20-05-2025"); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", status)
	}
	if status, _ := f.do(t, http.MethodGet, "/api/v1/dashboard/summaries?limit=-1"); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a negative limit, got %d", status)
	}

	status, body = f.do(t, http.MethodGet, "/api/v1/dashboard/stats")
	if status != fiber.StatusInternalServerError || body.Message != response.MessageInternalServerError {
		t.Fatalf("expected a masked 500, got %d %+v", status, body)
	}
}

func TestHealth_ReportsDependencies(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	handler.NewHealthHandler(map[string]handler.Pinger{
		"database": fakePinger{err: errors.New("down")},
		"redis":    nil,
	}).RegisterRoutes(app)

	status, body := send(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	data, _ := body.Data.(map[string]any)
	deps, _ := data["dependencies"].(map[string]any)
	if status != fiber.StatusServiceUnavailable || deps["database"] != "down" || deps["redis"] != "disabled" {
		t.Fatalf("unexpected health: %d %+v", status, body)
	}
}
