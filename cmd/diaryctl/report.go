package main

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"emotional-diary/internal/services"
	"emotional-diary/internal/stats"
)

// printReport connects, builds one report and writes it as indented JSON.
// Callers parse their flags first so bad input never touches the database.
func printReport(cmd *cobra.Command, build func(s *services.StatisticsService) (interface{}, error)) error {
	a, err := connect(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s := services.NewStatisticsService(a.repo, a.logger, a.metrics, services.StatisticsOptions{
		ExcludeUnparseableDates: a.cfg.Stats.ExcludeUnparseableDates,
	})

	report, err := build(s)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// newReportCmd prints the same reports the API serves, straight from the database
func newReportCmd() *cobra.Command {
	var userID int64

	reportCmd := &cobra.Command{Use: "report", Short: "Print mood reports as JSON"}
	reportCmd.PersistentFlags().Int64VarP(&userID, "user", "u", 0, "Owner user id (required)")
	_ = reportCmd.MarkPersistentFlagRequired("user")

	var month, year string
	monthlyCmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly summary with weekly averages",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, y, err := stats.ParseMonthPeriod(month, year)
			if err != nil {
				return err
			}
			return printReport(cmd, func(s *services.StatisticsService) (interface{}, error) {
				return s.MonthlySummary(cmd.Context(), userID, m, y)
			})
		},
	}
	monthlyCmd.Flags().StringVarP(&month, "month", "m", "", "Month 1-12 (required)")
	monthlyCmd.Flags().StringVarP(&year, "year", "y", "", "Year (required)")
	_ = monthlyCmd.MarkFlagRequired("month")
	_ = monthlyCmd.MarkFlagRequired("year")

	var yearlyYear string
	yearlyCmd := &cobra.Command{
		Use:   "yearly",
		Short: "Yearly summary broken down per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := stats.ParseYear(yearlyYear)
			if err != nil {
				return err
			}
			return printReport(cmd, func(s *services.StatisticsService) (interface{}, error) {
				return s.YearlySummary(cmd.Context(), userID, y)
			})
		},
	}
	yearlyCmd.Flags().StringVarP(&yearlyYear, "year", "y", "", "Year (required)")
	_ = yearlyCmd.MarkFlagRequired("year")

	var days string
	trendsCmd := &cobra.Command{
		Use:   "trends",
		Short: "Daily moods and score counts over the last days",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := stats.ParseDays(days)
			if err != nil {
				return err
			}
			return printReport(cmd, func(s *services.StatisticsService) (interface{}, error) {
				return s.MoodTrends(cmd.Context(), userID, d)
			})
		},
	}
	trendsCmd.Flags().StringVarP(&days, "days", "d", strconv.Itoa(stats.DefaultTrendDays), "Window length in days")

	reportCmd.AddCommand(monthlyCmd, yearlyCmd, trendsCmd)
	return reportCmd
}
