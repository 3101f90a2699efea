package app

import (
	"context"
	"fmt"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/database"
	"jobpilot/internal/database/migration"
	dbpostgres "jobpilot/internal/database/postgres"
	"jobpilot/internal/database/seeder"
	"jobpilot/internal/infrastructure/analysis"
	"jobpilot/internal/infrastructure/cache"
	"jobpilot/internal/infrastructure/importer"
	"jobpilot/internal/infrastructure/linkedin"
	"jobpilot/internal/pkg/jwt"
	"jobpilot/internal/repository"
	"jobpilot/internal/usecase"
	"jobpilot/internal/ws"
	"jobpilot/migrations"

	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

type Usecases struct {
	Auth         *usecase.Auth
	User         *usecase.User
	LinkedIn     *usecase.LinkedIn
	Profile      *usecase.Profile
	Jobs         *usecase.Jobs
	Matching     *usecase.Matching
	Applications *usecase.Application
	Summary      *usecase.Summary
	Settings     *usecase.Settings
	AccountData  *usecase.AccountData
}

// Container owns every long-lived dependency of the process.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	JWT    *jwt.HMACService
	Hub    *ws.Hub

	Usecases Usecases
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	analyzer, err := analysis.New(ctx, cfg.Analysis, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(ctx, cfg.Redis, logger),
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
			cfg.JWT.StateExpiresIn,
		),
		Hub: ws.NewHub(logger),
	}
	c.Usecases = c.buildUsecases(analyzer)
	return c, nil
}

func (c *Container) buildUsecases(analyzer analysis.Client) Usecases {
	db, logger := c.DB, c.Logger

	users := repository.NewPostgresUserRepository(db)
	jobs := repository.NewPostgresJobRepository(db)
	analyses := repository.NewPostgresJobAnalysisRepository(db)
	matches := repository.NewPostgresJobMatchRepository(db)
	profiles := repository.NewPostgresProfileRepository(db)
	preferences := repository.NewPostgresPreferenceRepository(db)
	criteria := repository.NewPostgresCriteriaRepository(db)
	settings := repository.NewPostgresApplicationSettingRepository(db)
	applications := repository.NewPostgresApplicationRepository(db)
	summaries := repository.NewPostgresDailySummaryRepository(db)

	profileUC := usecase.NewProfileUsecase(profiles, analyzer, nil, logger)
	matchingUC := usecase.NewMatchingUsecase(usecase.MatchingDeps{
		Jobs:         jobs,
		Analyses:     analyses,
		Matches:      matches,
		Profiles:     profiles,
		Criteria:     criteria,
		Applications: applications,
		Analyzer:     analyzer,
		Locker:       c.Cache,
		Notifier:     c.Hub,
		Logger:       logger,
	})

	return Usecases{
		Auth:     usecase.NewAuthUsecase(users, c.JWT, logger),
		User:     usecase.NewUserUsecase(users, profiles),
		LinkedIn: usecase.NewLinkedInUsecase(linkedin.New(c.Config.LinkedIn, logger), c.JWT, profiles, profileUC, logger),
		Profile:  profileUC,
		Jobs:     usecase.NewJobUsecase(jobs, importer.NewPageImporter(0, logger), matchingUC, logger),
		Matching: matchingUC,
		Applications: usecase.NewApplicationUsecase(
			jobs, profiles, applications,
			linkedin.NewSimulatedSubmitter(logger),
			c.Hub, nil, logger,
		),
		Summary: usecase.NewSummaryUsecase(usecase.SummaryDeps{
			Summaries:    summaries,
			Matches:      matches,
			Applications: applications,
			Settings:     settings,
			Profiles:     profiles,
			Cache:        c.Cache,
			Logger:       logger,
		}),
		Settings: usecase.NewSettingsUsecase(criteria, settings, preferences, logger),
		AccountData: usecase.NewAccountDataUsecase(usecase.AccountDataDeps{
			Users:        users,
			Profiles:     profiles,
			Preferences:  preferences,
			Criteria:     criteria,
			Settings:     settings,
			Applications: applications,
			Matches:      matches,
			Summaries:    summaries,
			Logger:       logger,
		}),
	}
}

func (c *Container) migrator() migration.Runner {
	return migration.Runner{FS: migrations.FS, Dir: c.Config.App.MigrationsDir, Logger: c.Logger.Named("migrate")}
}

// Migrate applies pending migrations and returns how many ran.
func (c *Container) Migrate(ctx context.Context) (int, error) {
	return c.migrator().Run(ctx, c.DB.SQLDB())
}

func (c *Container) MigrationStatus(ctx context.Context) ([]migration.Status, error) {
	return c.migrator().Status(ctx, c.DB.SQLDB())
}

func (c *Container) Seed(ctx context.Context) (int, error) {
	r := seeder.Runner{Seeders: seeder.Defaults(), Logger: c.Logger.Named("seed")}
	return r.Run(ctx, c.DB)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn("close cache", zap.Error(err))
		}
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
