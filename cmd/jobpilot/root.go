package main

import (
	"context"
	"fmt"
	"os"

	"jobpilot/internal/app"
	"jobpilot/internal/config"
	"jobpilot/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	envFile  string
	logJSON  bool
	logDebug bool

	rootCmd = &cobra.Command{
		Use:          "jobpilot",
		Short:        "jobpilot matches LinkedIn profiles to jobs and tracks applications",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file read before the environment (sets CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load, ignored when missing")
	rootCmd.PersistentFlags().BoolVarP(&logJSON, "json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().BoolVarP(&logDebug, "debug", "d", false, "verbose/debug output")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, summaryCmd, refreshMatchesCmd)
}

// setup loads configuration and opens every dependency. The caller closes
// the container and syncs the logger.
func setup(ctx context.Context) (*app.Container, *zap.Logger, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	if cfgFile != "" {
		if err := os.Setenv("CONFIG_FILE", cfgFile); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.App.LogJSON = cfg.App.LogJSON || logJSON
	cfg.App.LogDebug = cfg.App.LogDebug || logDebug

	lg, err := logger.New(cfg.App.LogJSON, cfg.App.LogDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	c, err := app.NewContainer(ctx, cfg, lg)
	if err != nil {
		_ = lg.Sync()
		return nil, nil, err
	}
	return c, lg, nil
}

func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	ctx := cmd.Context()
	c, lg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			lg.Warn("cleanup error", zap.Error(err))
		}
		_ = lg.Sync()
	}()
	return fn(ctx, c)
}
