package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobpilot/internal/app"
	"jobpilot/internal/delivery/http/dto"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	summaryUser string
	summaryDate string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the daily summary of a user, computing it when missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, err := uuid.Parse(summaryUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		date := time.Now().UTC()
		if summaryDate != "" {
			date, err = time.Parse(time.DateOnly, summaryDate)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			s, err := c.Usecases.Summary.GetOrComputeSummary(ctx, userID, date)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(dto.NewDailySummaryResponse(s))
		})
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryUser, "user", "", "user id")
	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "UTC date as YYYY-MM-DD (default today)")
	_ = summaryCmd.MarkFlagRequired("user")
}
