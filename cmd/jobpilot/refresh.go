package main

import (
	"context"
	"fmt"

	"jobpilot/internal/app"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var refreshUser string

var refreshMatchesCmd = &cobra.Command{
	Use:   "refresh-matches",
	Short: "Recompute every stored match of a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, err := uuid.Parse(refreshUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			n, err := c.Usecases.Matching.RefreshAllMatches(ctx, userID)
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d matches\n", n)
			return err
		})
	},
}

func init() {
	refreshMatchesCmd.Flags().StringVar(&refreshUser, "user", "", "user id")
	_ = refreshMatchesCmd.MarkFlagRequired("user")
}
