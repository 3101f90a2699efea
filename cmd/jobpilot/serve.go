package main

import (
	"context"
	"os/signal"
	"syscall"

	"jobpilot/internal/app"

	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and websocket notifications",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if serveMigrate {
				if _, err := c.Migrate(ctx); err != nil {
					return err
				}
			}
			return app.Serve(ctx, c)
		})
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply pending migrations before serving")
}
