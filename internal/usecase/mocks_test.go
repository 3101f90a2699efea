package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"jobpilot/internal/domain/application"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/domain/match"
	"jobpilot/internal/domain/profile"
	"jobpilot/internal/domain/summary"
	"jobpilot/internal/domain/user"
	"jobpilot/internal/infrastructure/analysis"
	"jobpilot/internal/infrastructure/linkedin"
	"jobpilot/internal/repository"

	"github.com/google/uuid"
)

type pairKey struct {
	userID uuid.UUID
	other  uuid.UUID
}

// memDB backs every mock repository so joins (match -> job, applied flag)
// behave like the SQL ones.
type memDB struct {
	mu sync.Mutex

	users        map[uuid.UUID]user.User
	jobs         map[uuid.UUID]job.Job
	analyses     map[uuid.UUID]job.Analysis
	matches      map[pairKey]match.JobMatch
	profiles     map[uuid.UUID]profile.Profile
	preferences  map[uuid.UUID]profile.Preference
	criteria     map[uuid.UUID]match.Criteria
	settings     map[uuid.UUID]application.Setting
	applications map[pairKey]application.JobApplication
	apiCalls     []application.APICallLog
	summaries    map[string]summary.DailySummary

	userLocks sync.Map

	failMatchCreate error
	failAPILog      error
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[uuid.UUID]user.User{},
		jobs:         map[uuid.UUID]job.Job{},
		analyses:     map[uuid.UUID]job.Analysis{},
		matches:      map[pairKey]match.JobMatch{},
		profiles:     map[uuid.UUID]profile.Profile{},
		preferences:  map[uuid.UUID]profile.Preference{},
		criteria:     map[uuid.UUID]match.Criteria{},
		settings:     map[uuid.UUID]application.Setting{},
		applications: map[pairKey]application.JobApplication{},
		summaries:    map[string]summary.DailySummary{},
	}
}

func (db *memDB) addJob(title, company string) job.Job {
	db.mu.Lock()
	defer db.mu.Unlock()
	j := job.Job{ID: uuid.New(), ExternalJobID: "ext-" + uuid.NewString()[:8], Title: title, Company: company, Industries: []string{}}
	db.jobs[j.ID] = j
	return j
}

func (db *memDB) addAnalyzedProfile(userID uuid.UUID, skills ...string) profile.Profile {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := profile.Profile{
		ID:          uuid.New(),
		UserID:      userID,
		LinkedInID:  "li-" + userID.String()[:8],
		AccessToken: "token",
		Payload:     json.RawMessage(`{"localizedFirstName":"Test"}`),
		Experience:  &profile.Experience{TotalYears: 5, Seniority: "mid"},
		Education:   &profile.Education{DegreeLevel: 2},
	}
	for _, s := range skills {
		p.Skills = append(p.Skills, profile.Skill{Name: s, Level: "advanced", Relevance: 0.8})
	}
	db.profiles[userID] = p
	return p
}

func (db *memDB) matchCount(userID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for k := range db.matches {
		if k.userID == userID {
			n++
		}
	}
	return n
}

func (db *memDB) applicationCount(userID uuid.UUID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for k := range db.applications {
		if k.userID == userID {
			n++
		}
	}
	return n
}

func (db *memDB) listRow(m match.JobMatch) repository.MatchListRow {
	j := db.jobs[m.JobID]
	_, applied := db.applications[pairKey{m.UserID, m.JobID}]
	return repository.MatchListRow{Match: m, Title: j.Title, Company: j.Company, Applied: applied}
}

// users

type mockUserRepo struct{ db *memDB }

func (r mockUserRepo) CreateUser(_ context.Context, u user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.db.users[u.ID] = u
	return nil
}

func (r mockUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r mockUserRepo) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetUserByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r mockUserRepo) UpdateUser(_ context.Context, u user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	r.db.users[u.ID] = u
	return nil
}

func (r mockUserRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.db.users, id)
	delete(r.db.profiles, id)
	for k := range r.db.matches {
		if k.userID == id {
			delete(r.db.matches, k)
		}
	}
	for k := range r.db.applications {
		if k.userID == id {
			delete(r.db.applications, k)
		}
	}
	return nil
}

// jobs and analyses

type mockJobRepo struct{ db *memDB }

func (r mockJobRepo) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	j, ok := r.db.jobs[id]
	if !ok {
		return job.Job{}, repository.ErrNotFound
	}
	return j, nil
}

func (r mockJobRepo) GetByExternalID(_ context.Context, externalID string) (job.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, j := range r.db.jobs {
		if j.ExternalJobID == externalID {
			return j, nil
		}
	}
	return job.Job{}, repository.ErrNotFound
}

func (r mockJobRepo) CreateIfNotExists(_ context.Context, j job.Job) (job.Job, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.jobs {
		if existing.ExternalJobID == j.ExternalJobID {
			return existing, false, nil
		}
	}
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.CreatedAt = time.Now().UTC()
	r.db.jobs[j.ID] = j
	return j, true, nil
}

func (r mockJobRepo) ListAll(context.Context) ([]job.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]job.Job, 0, len(r.db.jobs))
	for _, j := range r.db.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Title < out[b].Title })
	return out, nil
}

type mockAnalysisRepo struct{ db *memDB }

func (r mockAnalysisRepo) GetByJobID(_ context.Context, jobID uuid.UUID) (job.Analysis, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.analyses[jobID]
	if !ok {
		return job.Analysis{}, repository.ErrNotFound
	}
	return a, nil
}

func (r mockAnalysisRepo) CreateIfAbsent(_ context.Context, a job.Analysis) (job.Analysis, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if existing, ok := r.db.analyses[a.JobID]; ok {
		return existing, false, nil
	}
	r.db.analyses[a.JobID] = a
	return a, true, nil
}

// matches

type mockMatchRepo struct{ db *memDB }

func (r mockMatchRepo) Get(_ context.Context, userID, jobID uuid.UUID) (match.JobMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.matches[pairKey{userID, jobID}]
	if !ok {
		return match.JobMatch{}, repository.ErrNotFound
	}
	return m, nil
}

func (r mockMatchRepo) CreateIfAbsent(_ context.Context, m match.JobMatch) (match.JobMatch, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failMatchCreate != nil {
		return match.JobMatch{}, false, r.db.failMatchCreate
	}
	k := pairKey{m.UserID, m.JobID}
	if existing, ok := r.db.matches[k]; ok {
		return existing, false, nil
	}
	r.db.matches[k] = m
	return m, true, nil
}

func (r mockMatchRepo) Replace(_ context.Context, m match.JobMatch) (match.JobMatch, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failMatchCreate != nil {
		return match.JobMatch{}, r.db.failMatchCreate
	}
	r.db.matches[pairKey{m.UserID, m.JobID}] = m
	return m, nil
}

func (r mockMatchRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k := range r.db.matches {
		if k.userID == userID {
			delete(r.db.matches, k)
			n++
		}
	}
	return n, nil
}

func (r mockMatchRepo) List(_ context.Context, userID uuid.UUID, f repository.MatchListFilter) ([]repository.MatchListRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]repository.MatchListRow, 0)
	for k, m := range r.db.matches {
		if k.userID != userID || m.MatchScore < f.MinScore || m.MatchScore > f.MaxScore {
			continue
		}
		row := r.db.listRow(m)
		if f.Status == repository.ApplicationFilterApplied && !row.Applied {
			continue
		}
		if f.Status == repository.ApplicationFilterNotApplied && row.Applied {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Match.MatchScore > out[b].Match.MatchScore })
	return out, nil
}

func (r mockMatchRepo) ListCreatedBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]repository.MatchListRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]repository.MatchListRow, 0)
	for k, m := range r.db.matches {
		if k.userID != userID || m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		out = append(out, r.db.listRow(m))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Match.MatchScore > out[b].Match.MatchScore })
	return out, nil
}

func (r mockMatchRepo) ListScores(_ context.Context, userID uuid.UUID) ([]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]int, 0)
	for k, m := range r.db.matches {
		if k.userID == userID {
			out = append(out, m.MatchScore)
		}
	}
	return out, nil
}

// profiles and preferences

type mockProfileRepo struct{ db *memDB }

func (r mockProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (profile.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return profile.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (r mockProfileRepo) Upsert(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if existing, ok := r.db.profiles[p.UserID]; ok {
		p.ID = existing.ID
		p.Skills, p.Experience, p.Education = existing.Skills, existing.Experience, existing.Education
	} else {
		p.ID = uuid.New()
	}
	r.db.profiles[p.UserID] = p
	return p, nil
}

func (r mockProfileRepo) UpdateAnalysis(_ context.Context, userID uuid.UUID, in repository.ProfileAnalysisUpdate) (profile.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return profile.Profile{}, repository.ErrNotFound
	}
	at := in.AnalyzedAt
	p.Skills, p.Experience, p.Education, p.AnalysisSummary, p.AnalyzedAt = in.Skills, in.Experience, in.Education, in.Summary, &at
	r.db.profiles[userID] = p
	return p, nil
}

func (r mockProfileRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.profiles, userID)
	return nil
}

type mockPreferenceRepo struct{ db *memDB }

func (r mockPreferenceRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (profile.Preference, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.preferences[userID]
	if !ok {
		p = profile.DefaultPreference(userID)
		r.db.preferences[userID] = p
	}
	return p, nil
}

func (r mockPreferenceRepo) Update(_ context.Context, p profile.Preference) (profile.Preference, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.preferences[p.UserID] = p
	return p, nil
}

// settings

type mockCriteriaRepo struct{ db *memDB }

func (r mockCriteriaRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (match.Criteria, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.criteria[userID]
	if !ok {
		c = match.DefaultCriteria(userID)
		r.db.criteria[userID] = c
	}
	return c, nil
}

func (r mockCriteriaRepo) Update(_ context.Context, c match.Criteria) (match.Criteria, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.criteria[c.UserID] = c
	return c, nil
}

type mockSettingRepo struct{ db *memDB }

func (r mockSettingRepo) GetOrCreate(_ context.Context, userID uuid.UUID) (application.Setting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.settingLocked(userID), nil
}

func (r mockSettingRepo) Update(_ context.Context, s application.Setting) (application.Setting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.settings[s.UserID] = s
	return s, nil
}

func (r mockSettingRepo) SetActive(_ context.Context, userID uuid.UUID, active bool) (application.Setting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s := r.db.settingLocked(userID)
	s.IsActive = active
	r.db.settings[userID] = s
	return s, nil
}

func (db *memDB) settingLocked(userID uuid.UUID) application.Setting {
	s, ok := db.settings[userID]
	if !ok {
		s = application.DefaultSetting(userID)
		db.settings[userID] = s
	}
	return s
}

// applications

type mockApplicationRepo struct{ db *memDB }

func (r mockApplicationRepo) Setting(_ context.Context, userID uuid.UUID) (application.Setting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.settingLocked(userID), nil
}

func (r mockApplicationRepo) Exists(_ context.Context, userID, jobID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.applications[pairKey{userID, jobID}]
	return ok, nil
}

func (r mockApplicationRepo) Create(_ context.Context, a application.JobApplication) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := pairKey{a.UserID, a.JobID}
	if _, ok := r.db.applications[k]; ok {
		return repository.ErrConflict
	}
	r.db.applications[k] = a
	return nil
}

func (r mockApplicationRepo) LogAPICall(_ context.Context, l application.APICallLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failAPILog != nil {
		return r.db.failAPILog
	}
	r.db.apiCalls = append(r.db.apiCalls, l)
	return nil
}

func (r mockApplicationRepo) GetByID(_ context.Context, userID, id uuid.UUID) (application.JobApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for k, a := range r.db.applications {
		if k.userID == userID && a.ID == id {
			return a, nil
		}
	}
	return application.JobApplication{}, repository.ErrNotFound
}

func (r mockApplicationRepo) GetByJob(_ context.Context, userID, jobID uuid.UUID) (application.JobApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.applications[pairKey{userID, jobID}]
	if !ok {
		return application.JobApplication{}, repository.ErrNotFound
	}
	return a, nil
}

func (r mockApplicationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]repository.ApplicationListRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]repository.ApplicationListRow, 0)
	for k, a := range r.db.applications {
		if k.userID != userID {
			continue
		}
		j := r.db.jobs[a.JobID]
		out = append(out, repository.ApplicationListRow{Application: a, Title: j.Title, Company: j.Company})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Application.AppliedAt.After(out[b].Application.AppliedAt) })
	return out, nil
}

func (r mockApplicationRepo) UpdateStatus(_ context.Context, a application.JobApplication) (application.JobApplication, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := pairKey{a.UserID, a.JobID}
	if _, ok := r.db.applications[k]; !ok {
		return application.JobApplication{}, repository.ErrNotFound
	}
	r.db.applications[k] = a
	return a, nil
}

func (r mockApplicationRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k := range r.db.applications {
		if k.userID == userID {
			delete(r.db.applications, k)
			n++
		}
	}
	return n, nil
}

func (r mockApplicationRepo) CountAppliedBetween(_ context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for k, a := range r.db.applications {
		if k.userID == userID && !a.AppliedAt.Before(from) && a.AppliedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r mockApplicationRepo) CountByStatus(_ context.Context, userID uuid.UUID) (map[application.Status]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[application.Status]int{}
	for k, a := range r.db.applications {
		if k.userID == userID {
			out[a.Status]++
		}
	}
	return out, nil
}

func (r mockApplicationRepo) CountPerDay(_ context.Context, userID uuid.UUID, since time.Time) ([]repository.DailyCount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	byDay := map[time.Time]int{}
	for k, a := range r.db.applications {
		if k.userID == userID && !a.AppliedAt.Before(since) {
			byDay[summary.Day(a.AppliedAt)]++
		}
	}
	out := make([]repository.DailyCount, 0, len(byDay))
	for d, n := range byDay {
		out = append(out, repository.DailyCount{Date: d, Count: n})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out, nil
}

func (r mockApplicationRepo) WithUserLock(_ context.Context, userID uuid.UUID, fn func(repository.ApplicationStore) error) error {
	l, _ := r.db.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(r)
}

// summaries

type mockSummaryRepo struct {
	db   *memDB
	gets atomic.Int32
}

func summaryKey(userID uuid.UUID, d time.Time) string {
	return userID.String() + "/" + d.Format(time.DateOnly)
}

func (r *mockSummaryRepo) Get(_ context.Context, userID uuid.UUID, date time.Time) (summary.DailySummary, error) {
	r.gets.Add(1)
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.summaries[summaryKey(userID, date)]
	if !ok {
		return summary.DailySummary{}, repository.ErrNotFound
	}
	return s, nil
}

func (r *mockSummaryRepo) CreateIfAbsent(_ context.Context, s summary.DailySummary) (summary.DailySummary, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := summaryKey(s.UserID, s.Date)
	if existing, ok := r.db.summaries[k]; ok {
		return existing, false, nil
	}
	s.CreatedAt = time.Now().UTC()
	r.db.summaries[k] = s
	return s, true, nil
}

func (r *mockSummaryRepo) List(_ context.Context, userID uuid.UUID, limit int) ([]summary.DailySummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]summary.DailySummary, 0)
	for _, s := range r.db.summaries {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// collaborators

type mockAnalyzer struct {
	profileCalls atomic.Int32
	jobCalls     atomic.Int32
	matchCalls   atomic.Int32

	score    int
	jobErr   error
	matchErr error
	// failMatchOnCall makes the n-th match call (1-based) fail.
	failMatchOnCall int32
	delay           time.Duration
}

func (m *mockAnalyzer) AnalyzeProfile(_ context.Context, _ analysis.ProfileInput) (analysis.ProfileAnalysis, error) {
	m.profileCalls.Add(1)
	return analysis.ProfileAnalysis{
		Skills:     []profile.Skill{{Name: "Python", Level: "advanced", Relevance: 0.9}},
		Experience: profile.Experience{TotalYears: 5, Seniority: "mid", Domains: []string{}, Industries: []string{}},
		Education:  profile.Education{DegreeLevel: 2, Fields: []string{}},
		Summary:    "analyzed",
	}, nil
}

func (m *mockAnalyzer) AnalyzeJob(_ context.Context, _ analysis.JobInput) (analysis.JobAnalysis, error) {
	m.jobCalls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.jobErr != nil {
		return analysis.JobAnalysis{}, m.jobErr
	}
	return analysis.JobAnalysis{
		RequiredSkills: []job.RequiredSkill{
			{Name: "Python", Importance: job.ImportanceRequired},
			{Name: "Git", Importance: job.ImportancePreferred},
		},
		Summary: "job analysis",
	}, nil
}

func (m *mockAnalyzer) MatchJobToProfile(_ context.Context, in analysis.MatchInput) (analysis.MatchResult, error) {
	n := m.matchCalls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.matchErr != nil {
		return analysis.MatchResult{}, m.matchErr
	}
	if m.failMatchOnCall > 0 && n == m.failMatchOnCall {
		return analysis.MatchResult{}, analysis.ErrAnalysisUnavailable
	}
	return analysis.MatchResult{
		MatchScore:     m.score,
		MatchingSkills: []string{"Python"},
		MissingSkills:  []string{"Git"},
		Summary:        "match for " + in.Job.Title,
	}, nil
}

type notification struct {
	userID    uuid.UUID
	eventType string
}

type mockNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *mockNotifier) Notify(userID uuid.UUID, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{userID: userID, eventType: eventType})
}

func (n *mockNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.eventType == eventType {
			c++
		}
	}
	return c
}

type mockSubmitter struct {
	calls atomic.Int32
	err   error
}

func (s *mockSubmitter) Submit(_ context.Context, req linkedin.SubmitRequest) (linkedin.Submission, error) {
	s.calls.Add(1)
	if s.err != nil {
		return linkedin.Submission{}, s.err
	}
	return linkedin.Submission{
		ExternalApplicationID: "app_" + req.ExternalJobID + "_" + req.UserID.String(),
		Endpoint:              "linkedin/jobs/" + req.ExternalJobID + "/applications",
		Method:                "POST",
		StatusCode:            200,
	}, nil
}

type mockLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *mockLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	noop := func(context.Context) error { return nil }
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return noop, false, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return noop, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mockCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = b
	return nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
