package statistics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmemorize/jmemorize/internal/history"
)

// Period selects the granularity session summaries are grouped by.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists the supported grouping granularities.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// SessionStatistics holds aggregated results for one time period.
type SessionStatistics struct {
	Period    string // "2025-01-30" daily, "2025-W05" weekly, "2025-01" monthly, "2025" yearly
	Sessions  int
	Minutes   int
	Passed    int
	Failed    int
	Skipped   int
	Relearned int
}

// PassRate returns the percentage of passed grades in this period, rounded
// to the nearest integer.
func (s SessionStatistics) PassRate() int {
	total := s.Passed + s.Failed
	if total == 0 {
		return 0
	}
	return int(float64(s.Passed)/float64(total)*100 + 0.5)
}

// AggregateStatistics holds totals across all periods.
type AggregateStatistics struct {
	Sessions  int
	Minutes   int
	Passed    int
	Failed    int
	Skipped   int
	Relearned int
}

// StatisticsResult holds both per-period and aggregate statistics.
type StatisticsResult struct {
	Periods   []SessionStatistics
	Aggregate AggregateStatistics
}

// CalculateStatistics groups session summaries by the given period.
// It accepts optional year and month filters (0 means no filter); the month
// filter is ignored unless a year is given.
func CalculateStatistics(summaries []history.SessionSummary, period Period, year, month int) StatisticsResult {
	stats := make(map[string]*SessionStatistics)
	var aggregate AggregateStatistics

	for _, summary := range summaries {
		if summary.Start.IsZero() {
			continue
		}
		if !matchesFilter(summary.Start, year, month) {
			continue
		}

		key := periodKey(summary.Start, period)
		if stats[key] == nil {
			stats[key] = &SessionStatistics{Period: key}
		}

		s := stats[key]
		s.Sessions++
		s.Minutes += summary.DurationMinutes
		s.Passed += summary.Passed
		s.Failed += summary.Failed
		s.Skipped += summary.Skipped
		s.Relearned += summary.Relearned

		aggregate.Sessions++
		aggregate.Minutes += summary.DurationMinutes
		aggregate.Passed += summary.Passed
		aggregate.Failed += summary.Failed
		aggregate.Skipped += summary.Skipped
		aggregate.Relearned += summary.Relearned
	}

	periods := make([]SessionStatistics, 0, len(stats))
	for _, s := range stats {
		periods = append(periods, *s)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period < periods[j].Period
	})

	return StatisticsResult{Periods: periods, Aggregate: aggregate}
}

// CalculateFromRepository loads persisted summaries and aggregates them.
// An empty lesson name aggregates over all lessons.
func CalculateFromRepository(
	ctx context.Context,
	repo history.Repository,
	lessonName string,
	period Period,
	year, month int,
) (StatisticsResult, error) {
	var (
		records []history.SummaryRecord
		err     error
	)
	if lessonName != "" {
		records, err = repo.FindByLesson(ctx, lessonName)
	} else {
		records, err = repo.FindAll(ctx)
	}
	if err != nil {
		return StatisticsResult{}, fmt.Errorf("repository query > %w", err)
	}

	summaries := make([]history.SessionSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.Summary())
	}
	return CalculateStatistics(summaries, period, year, month), nil
}

func periodKey(t time.Time, period Period) string {
	switch period {
	case PeriodDay:
		return t.Format("2006-01-02")
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

func matchesFilter(t time.Time, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if t.Year() != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return int(t.Month()) == filterMonth
}
