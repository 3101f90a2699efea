package seeder

import (
	"context"

	"jobpilot/internal/database"
	"jobpilot/internal/domain/job"
	"jobpilot/internal/repository"
)

// SampleJobsSeeder stores the sample job catalogue used by job search.
type SampleJobsSeeder struct{}

func (SampleJobsSeeder) Name() string { return "sample_jobs" }

func (SampleJobsSeeder) Seed(ctx context.Context, db database.DB) (int, error) {
	if err := EnsureTableColumns(ctx, db, "jobs", "id", "external_id", "title", "company", "industries"); err != nil {
		return 0, err
	}

	repo := repository.NewPostgresJobRepository(db)
	inserted := 0
	for _, j := range job.Samples() {
		_, created, err := repo.CreateIfNotExists(ctx, j)
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}
