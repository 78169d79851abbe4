package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmemorize/jmemorize/internal/database"
	"github.com/jmemorize/jmemorize/internal/history"
	"github.com/jmemorize/jmemorize/internal/statistics"
)

func newStatsCommand() *cobra.Command {
	var (
		lessonName string
		period     string
		year       int
		month      int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learn session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}
			if !validPeriod(period) {
				return fmt.Errorf("--period must be one of day, week, month or year")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			var result statistics.StatisticsResult
			if cfg.Database.Enabled {
				db, err := database.Open(cfg.Database)
				if err != nil {
					return fmt.Errorf("database.Open() > %w", err)
				}
				defer func() { _ = db.Close() }()

				repo := history.NewDBRepository(db)
				result, err = statistics.CalculateFromRepository(
					cmd.Context(), repo, lessonName, statistics.Period(period), year, month)
				if err != nil {
					return fmt.Errorf("statistics.CalculateFromRepository() > %w", err)
				}
			} else {
				l, err := loadLesson(cfg, lessonName)
				if err != nil {
					return err
				}
				result = statistics.CalculateStatistics(
					l.History().Summaries(), statistics.Period(period), year, month)
			}

			printStatistics(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&lessonName, "lesson", "l", "", "Lesson name or path")
	cmd.Flags().StringVar(&period, "period", string(statistics.PeriodMonth), "Group by period: day, week, month or year")
	cmd.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	cmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")

	return cmd
}

func validPeriod(period string) bool {
	for _, p := range statistics.Periods {
		if string(p) == period {
			return true
		}
	}
	return false
}

func printStatistics(result statistics.StatisticsResult) {
	if len(result.Periods) == 0 {
		fmt.Println("No learn sessions recorded.")
		return
	}

	fmt.Printf("%-10s %9s %8s %7s %7s %8s %10s %6s\n",
		"Period", "Sessions", "Minutes", "Passed", "Failed", "Skipped", "Relearned", "Rate")
	for _, p := range result.Periods {
		fmt.Printf("%-10s %9d %8d %7d %7d %8d %10d %5d%%\n",
			p.Period, p.Sessions, p.Minutes, p.Passed, p.Failed, p.Skipped, p.Relearned, p.PassRate())
	}

	a := result.Aggregate
	fmt.Printf("%-10s %9d %8d %7d %7d %8d %10d\n",
		"Total", a.Sessions, a.Minutes, a.Passed, a.Failed, a.Skipped, a.Relearned)
}
