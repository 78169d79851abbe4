package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmemorize/jmemorize/internal/cli"
	"github.com/jmemorize/jmemorize/internal/config"
	"github.com/jmemorize/jmemorize/internal/database"
	"github.com/jmemorize/jmemorize/internal/history"
	"github.com/jmemorize/jmemorize/internal/learn"
	"github.com/jmemorize/jmemorize/internal/lesson"
)

func newLearnCommand() *cobra.Command {
	var (
		lessonName     string
		categoryPath   string
		cardLimit      int
		timeLimit      int
		noRetest       bool
		shuffleRatio   float64
		sides          string
		schedulePreset string
		groupByCat     bool
		unlearnedOnly  bool
		expiredOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Start an interactive learn session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			learnCfg := cfg.Learn
			applyLearnFlags(cmd.Flags(), &learnCfg, learnFlagValues{
				cardLimit:      cardLimit,
				timeLimit:      timeLimit,
				noRetest:       noRetest,
				shuffleRatio:   shuffleRatio,
				sides:          sides,
				schedulePreset: schedulePreset,
				groupByCat:     groupByCat,
			})

			settings, err := learnCfg.ToSettings()
			if err != nil {
				return fmt.Errorf("learnCfg.ToSettings() > %w", err)
			}

			l, err := loadLesson(cfg, lessonName)
			if err != nil {
				return err
			}
			category, err := findCategory(l, categoryPath)
			if err != nil {
				return err
			}

			learnUnlearned := !expiredOnly
			learnExpired := !unlearnedOnly

			provider := learn.NewProvider(l)
			studyCLI := cli.NewStudyCLI(provider)
			if err := studyCLI.Run(ctx, settings, category, learnUnlearned, learnExpired); err != nil {
				return fmt.Errorf("studyCLI.Run() > %w", err)
			}

			if l.CanSave() {
				if err := provider.SaveLesson(); err != nil {
					return fmt.Errorf("provider.SaveLesson() > %w", err)
				}
			}

			if cfg.Database.Enabled {
				if err := persistLastSummary(cmd, cfg, l); err != nil {
					slog.Warn("failed to persist session summary", "error", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lessonName, "lesson", "l", "", "Lesson name or path")
	cmd.Flags().StringVarP(&categoryPath, "category", "c", "", "Category path within the lesson, e.g. All/Biology")
	cmd.Flags().IntVar(&cardLimit, "card-limit", 0, "Maximum number of cards to check (0 for no limit)")
	cmd.Flags().IntVar(&timeLimit, "time-limit", 0, "Session time limit in minutes (0 for no limit)")
	cmd.Flags().BoolVar(&noRetest, "no-retest", false, "Do not retest failed cards in the same session")
	cmd.Flags().Float64Var(&shuffleRatio, "shuffle", 0, "Fraction of cards asked in random order (0 to 1)")
	cmd.Flags().StringVar(&sides, "sides", "", "Which sides to ask: normal, flipped, random or both")
	cmd.Flags().StringVar(&schedulePreset, "schedule", "", "Schedule preset: constant, linear, quadratic or exponential")
	cmd.Flags().BoolVar(&groupByCat, "group-by-category", false, "Keep cards of one category together")
	cmd.Flags().BoolVar(&unlearnedOnly, "unlearned-only", false, "Only learn cards that were never passed")
	cmd.Flags().BoolVar(&expiredOnly, "expired-only", false, "Only learn cards that are due for review")

	return cmd
}

type learnFlagValues struct {
	cardLimit      int
	timeLimit      int
	noRetest       bool
	shuffleRatio   float64
	sides          string
	schedulePreset string
	groupByCat     bool
}

// applyLearnFlags overrides the configured learn settings with the flags
// the user actually set.
func applyLearnFlags(flags *pflag.FlagSet, learnCfg *config.LearnConfig, values learnFlagValues) {
	if flags.Changed("card-limit") {
		learnCfg.CardLimit = values.cardLimit
	}
	if flags.Changed("time-limit") {
		learnCfg.TimeLimitMinutes = values.timeLimit
	}
	if flags.Changed("no-retest") {
		learnCfg.RetestFailedCards = !values.noRetest
	}
	if flags.Changed("shuffle") {
		learnCfg.ShuffleRatio = values.shuffleRatio
	}
	if flags.Changed("sides") {
		learnCfg.Sides = values.sides
	}
	if flags.Changed("schedule") {
		learnCfg.Schedule.Preset = values.schedulePreset
		learnCfg.Schedule.Intervals = nil
	}
	if flags.Changed("group-by-category") {
		learnCfg.GroupByCategory = values.groupByCat
	}
}

// persistLastSummary stores the newest history entry of the lesson in the
// database.
func persistLastSummary(cmd *cobra.Command, cfg *config.Config, l *lesson.Lesson) error {
	summary := l.History().LastSummary()
	if summary == nil {
		return nil
	}
	return persistSummary(cmd, cfg.Database, l.Name(), summary)
}

func persistSummary(cmd *cobra.Command, cfg config.DatabaseConfig, lessonName string, summary *history.SessionSummary) error {
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	defer func() { _ = db.Close() }()

	record := &history.SummaryRecord{
		Lesson:          lessonName,
		StartedAt:       summary.Start,
		EndedAt:         summary.End,
		DurationMinutes: summary.DurationMinutes,
		Passed:          summary.Passed,
		Failed:          summary.Failed,
		Skipped:         summary.Skipped,
		Relearned:       summary.Relearned,
	}
	repo := history.NewDBRepository(db)
	if err := repo.Create(cmd.Context(), record); err != nil {
		return fmt.Errorf("repo.Create() > %w", err)
	}
	return nil
}
