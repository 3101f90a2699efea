// Package seeder loads the sample job catalogue into a migrated database.
// Seeders are idempotent and safe to run on every start.
package seeder

import (
	"context"
	"fmt"

	"jobpilot/internal/database"

	"go.uber.org/zap"
)

type Seeder interface {
	Name() string
	// Seed returns the number of rows it inserted.
	Seed(ctx context.Context, db database.DB) (int, error)
}

func Defaults() []Seeder {
	return []Seeder{SampleJobsSeeder{}}
}

type Runner struct {
	Seeders []Seeder
	Logger  *zap.Logger
}

// Run applies every seeder in order and stops at the first failure.
func (r Runner) Run(ctx context.Context, db database.DB) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	total := 0
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		n, err := s.Seed(ctx, db)
		total += n
		if err != nil {
			return total, fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		logger.Info("seeded", zap.String("seeder", s.Name()), zap.Int("inserted", n))
	}
	return total, nil
}
