package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jmemorize/jmemorize/internal/history"
	mock_history "github.com/jmemorize/jmemorize/internal/mocks/history"
)

func summaryOn(t time.Time, passed, failed int) history.SessionSummary {
	return history.NewSessionSummary(t, t.Add(20*time.Minute), passed, failed, 0, 0)
}

func TestCalculateStatistics(t *testing.T) {
	january := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	february := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	lastYear := time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)

	summaries := []history.SessionSummary{
		summaryOn(january, 5, 1),
		summaryOn(january.AddDate(0, 0, 1), 3, 3),
		summaryOn(february, 2, 0),
		summaryOn(lastYear, 7, 1),
	}

	tests := []struct {
		name        string
		period      Period
		year        int
		month       int
		wantPeriods []string
		wantTotal   int
	}{
		{
			name:        "monthly over everything",
			period:      PeriodMonth,
			wantPeriods: []string{"2024-12", "2025-01", "2025-02"},
			wantTotal:   4,
		},
		{
			name:        "filter by year",
			period:      PeriodMonth,
			year:        2025,
			wantPeriods: []string{"2025-01", "2025-02"},
			wantTotal:   3,
		},
		{
			name:        "filter by year and month",
			period:      PeriodDay,
			year:        2025,
			month:       1,
			wantPeriods: []string{"2025-01-15", "2025-01-16"},
			wantTotal:   2,
		},
		{
			name:        "yearly grouping",
			period:      PeriodYear,
			wantPeriods: []string{"2024", "2025"},
			wantTotal:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStatistics(summaries, tt.period, tt.year, tt.month)

			require.Len(t, got.Periods, len(tt.wantPeriods))
			for i, want := range tt.wantPeriods {
				assert.Equal(t, want, got.Periods[i].Period)
			}
			assert.Equal(t, tt.wantTotal, got.Aggregate.Sessions)
		})
	}
}

func TestCalculateStatistics_Aggregation(t *testing.T) {
	day := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	summaries := []history.SessionSummary{
		summaryOn(day, 4, 2),
		summaryOn(day.Add(2*time.Hour), 6, 0),
	}

	got := CalculateStatistics(summaries, PeriodDay, 0, 0)

	require.Len(t, got.Periods, 1)
	period := got.Periods[0]
	assert.Equal(t, 2, period.Sessions)
	assert.Equal(t, 40, period.Minutes)
	assert.Equal(t, 10, period.Passed)
	assert.Equal(t, 2, period.Failed)
	assert.Equal(t, 83, period.PassRate())

	assert.Equal(t, 10, got.Aggregate.Passed)
	assert.Equal(t, 2, got.Aggregate.Failed)
}

func TestCalculateStatistics_WeeklyKeys(t *testing.T) {
	// 2025-01-01 falls into ISO week 1 of 2025.
	newYear := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	got := CalculateStatistics([]history.SessionSummary{summaryOn(newYear, 1, 0)}, PeriodWeek, 0, 0)

	require.Len(t, got.Periods, 1)
	assert.Equal(t, "2025-W01", got.Periods[0].Period)
}

func TestCalculateFromRepository(t *testing.T) {
	start := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	records := []history.SummaryRecord{
		{
			Lesson:          "biology",
			StartedAt:       start,
			EndedAt:         start.Add(15 * time.Minute),
			DurationMinutes: 15,
			Passed:          8,
			Failed:          2,
		},
	}

	tests := []struct {
		name       string
		lessonName string
		setup      func(repo *mock_history.MockRepository)
		wantErr    bool
	}{
		{
			name:       "queries one lesson",
			lessonName: "biology",
			setup: func(repo *mock_history.MockRepository) {
				repo.EXPECT().FindByLesson(gomock.Any(), "biology").Return(records, nil)
			},
		},
		{
			name: "queries all lessons",
			setup: func(repo *mock_history.MockRepository) {
				repo.EXPECT().FindAll(gomock.Any()).Return(records, nil)
			},
		},
		{
			name: "propagates repository errors",
			setup: func(repo *mock_history.MockRepository) {
				repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_history.NewMockRepository(ctrl)
			tt.setup(repo)

			got, err := CalculateFromRepository(context.Background(), repo, tt.lessonName, PeriodMonth, 0, 0)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got.Periods, 1)
			assert.Equal(t, "2025-04", got.Periods[0].Period)
			assert.Equal(t, 8, got.Aggregate.Passed)
		})
	}
}
