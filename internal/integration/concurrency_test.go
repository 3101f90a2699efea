package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/database"
	"jobpilot/internal/database/migration"
	dbpostgres "jobpilot/internal/database/postgres"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/profile"
	"jobpilot/internal/domain/user"
	"jobpilot/internal/infrastructure/analysis"
	"jobpilot/internal/infrastructure/linkedin"
	"jobpilot/internal/repository"
	"jobpilot/internal/usecase"
	"jobpilot/migrations"

	"github.com/google/uuid"
)

type repos struct {
	users        *repository.PostgresUserRepository
	jobs         *repository.PostgresJobRepository
	analyses     *repository.PostgresJobAnalysisRepository
	matches      *repository.PostgresJobMatchRepository
	profiles     *repository.PostgresProfileRepository
	criteria     *repository.PostgresCriteriaRepository
	settings     *repository.PostgresApplicationSettingRepository
	applications *repository.PostgresApplicationRepository
	summaries    *repository.PostgresDailySummaryRepository
}

func newRepos(db database.DB) repos {
	return repos{
		users:        repository.NewPostgresUserRepository(db),
		jobs:         repository.NewPostgresJobRepository(db),
		analyses:     repository.NewPostgresJobAnalysisRepository(db),
		matches:      repository.NewPostgresJobMatchRepository(db),
		profiles:     repository.NewPostgresProfileRepository(db),
		criteria:     repository.NewPostgresCriteriaRepository(db),
		settings:     repository.NewPostgresApplicationSettingRepository(db),
		applications: repository.NewPostgresApplicationRepository(db),
		summaries:    repository.NewPostgresDailySummaryRepository(db),
	}
}

func (r repos) matching() *usecase.Matching {
	return usecase.NewMatchingUsecase(usecase.MatchingDeps{
		Jobs:         r.jobs,
		Analyses:     r.analyses,
		Matches:      r.matches,
		Profiles:     r.profiles,
		Criteria:     r.criteria,
		Applications: r.applications,
		Analyzer:     analysis.NewSimulator(7, nil),
	})
}

func TestIntegration_ConcurrentMatchesShareOneRow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	runMigrations(t, ctx, db)

	r := newRepos(db)
	userID := ensureUser(t, ctx, db, r)
	jobID := ensureJob(t, ctx, db, r, "Backend Developer")
	uc := r.matching()

	const callers = 16
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := uc.GetOrComputeMatch(ctx, userID, jobID)
			ids[i], errs[i] = m.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got match %s, caller 0 got %s", i, ids[i], ids[0])
		}
	}
	if got := countRows(t, ctx, db, `SELECT COUNT(1) FROM job_matches WHERE user_id = $1 AND job_id = $2`, userID, jobID); got != 1 {
		t.Fatalf("expected 1 job_matches row, got %d", got)
	}
	if got := countRows(t, ctx, db, `SELECT COUNT(1) FROM job_analyses WHERE job_id = $1`, jobID); got != 1 {
		t.Fatalf("expected 1 job_analyses row, got %d", got)
	}

	refreshed, err := uc.RefreshMatch(ctx, userID, jobID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.ID == ids[0] {
		t.Fatalf("expected refresh to store a new match")
	}
	if got := countRows(t, ctx, db, `SELECT COUNT(1) FROM job_matches WHERE user_id = $1 AND job_id = $2`, userID, jobID); got != 1 {
		t.Fatalf("expected 1 job_matches row after refresh, got %d", got)
	}
}

func TestIntegration_ConcurrentAppliesRespectDailyLimit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	runMigrations(t, ctx, db)

	r := newRepos(db)
	userID := ensureUser(t, ctx, db, r)

	s, err := r.settings.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	s.DailyLimit = 5
	if _, err := r.settings.Update(ctx, s); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	uc := usecase.NewApplicationUsecase(
		r.jobs, r.profiles, r.applications,
		linkedin.NewSimulatedSubmitter(nil),
		nil, nil, nil,
	)

	const attempts = 6
	jobIDs := make([]uuid.UUID, attempts)
	for i := range jobIDs {
		jobIDs[i] = ensureJob(t, ctx, db, r, "Engineer")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		limited int
	)
	for _, jobID := range jobIDs {
		wg.Add(1)
		go func(jobID uuid.UUID) {
			defer wg.Done()
			_, err := uc.Apply(ctx, userID, jobID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case usecase.KindOf(err) == usecase.KindRateLimited:
				limited++
			default:
				t.Errorf("apply %s: %v", jobID, err)
			}
		}(jobID)
	}
	wg.Wait()

	if ok != 5 || limited != 1 {
		t.Fatalf("expected 5 accepted and 1 rate limited, got %d and %d", ok, limited)
	}
	if got := countRows(t, ctx, db, `SELECT COUNT(1) FROM job_applications WHERE user_id = $1`, userID); got != 5 {
		t.Fatalf("expected 5 job_applications rows, got %d", got)
	}
	if got := countRows(t, ctx, db, `SELECT COUNT(1) FROM api_call_logs WHERE user_id = $1`, userID); got != 5 {
		t.Fatalf("expected 5 api_call_logs rows, got %d", got)
	}
}

func TestIntegration_ConcurrentSummariesShareOneRow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	runMigrations(t, ctx, db)

	r := newRepos(db)
	userID := ensureUser(t, ctx, db, r)
	jobID := ensureJob(t, ctx, db, r, "Data Analyst")
	if _, err := r.matching().GetOrComputeMatch(ctx, userID, jobID); err != nil {
		t.Fatalf("match: %v", err)
	}

	uc := usecase.NewSummaryUsecase(usecase.SummaryDeps{
		Summaries:    r.summaries,
		Matches:      r.matches,
		Applications: r.applications,
		Settings:     r.settings,
		Profiles:     r.profiles,
	})
	today := time.Now().UTC()

	const callers = 8
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := uc.GetOrComputeSummary(ctx, userID, today)
			ids[i], errs[i] = s.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got summary %s, caller 0 got %s", i, ids[i], ids[0])
		}
	}
	if got := countRows(t, ctx, db, `SELECT COUNT(1) FROM daily_summaries WHERE user_id = $1`, userID); got != 1 {
		t.Fatalf("expected 1 daily_summaries row, got %d", got)
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("JOBPILOT_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("JOBPILOT_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("JOBPILOT_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	usr := stringsOrDefault(os.Getenv("JOBPILOT_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("JOBPILOT_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("JOBPILOT_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || usr == "" {
		t.Skip("missing test DB env vars: set JOBPILOT_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:       host,
		DBPort:       port,
		DBName:       name,
		DBUser:       usr,
		DBPassword:   pass,
		DBSSLMode:    ssl,
		PoolMaxConns: 20,
	}, nil)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func runMigrations(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()

	r := migration.Runner{FS: migrations.FS}
	if _, err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

// ensureUser creates a user with a connected, analyzed profile. The user and
// everything it owns is removed when the test ends.
func ensureUser(t *testing.T, ctx context.Context, db database.DB, r repos) uuid.UUID {
	t.Helper()

	id := uuid.New()
	if err := r.users.CreateUser(ctx, user.User{ID: id, Email: "it-" + id.String()[:8] + "@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		if _, err := db.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id); err != nil {
			t.Errorf("cleanup user: %v", err)
		}
	})

	if _, err := r.profiles.Upsert(ctx, profile.Profile{
		UserID:      id,
		LinkedInID:  "li-" + id.String()[:8],
		AccessToken: "token",
		Payload:     []byte(`{"localizedFirstName":"Test"}`),
	}); err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	if _, err := r.profiles.UpdateAnalysis(ctx, id, repository.ProfileAnalysisUpdate{
		Skills:     []profile.Skill{{Name: "Python", Level: "expert", Relevance: 0.9}, {Name: "SQL", Level: "expert", Relevance: 0.8}},
		Experience: &profile.Experience{TotalYears: 5, Seniority: "mid", Domains: []string{}, Industries: []string{}},
		Education:  &profile.Education{DegreeLevel: 2, Fields: []string{"Computer Science"}},
		Summary:    "integration profile",
		AnalyzedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("analyze profile: %v", err)
	}
	return id
}

func ensureJob(t *testing.T, ctx context.Context, db database.DB, r repos, title string) uuid.UUID {
	t.Helper()

	j, _, err := r.jobs.CreateIfNotExists(ctx, job.Job{
		ID:            uuid.New(),
		ExternalJobID: "it-" + uuid.NewString(),
		Title:         title,
		Company:       "Integration Co",
		Location:      "Dubai, UAE",
		Industries:    []string{},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	t.Cleanup(func() {
		if _, err := db.Exec(context.Background(), `DELETE FROM jobs WHERE id = $1`, j.ID); err != nil {
			t.Errorf("cleanup job: %v", err)
		}
	})
	return j.ID
}

func countRows(t *testing.T, ctx context.Context, db database.DB, query string, args ...any) int {
	t.Helper()

	var n int
	if err := db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
