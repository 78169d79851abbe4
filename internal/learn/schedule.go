// Package learn implements the Leitner scheduling core: review schedules,
// session settings and the learn session state machine.
package learn

import (
	"fmt"
	"time"
)

// Preset names a built-in review schedule.
type Preset string

const (
	PresetConstant    Preset = "constant"
	PresetLinear      Preset = "linear"
	PresetQuadratic   Preset = "quadratic"
	PresetExponential Preset = "exponential"
)

// Presets lists all built-in schedule presets.
var Presets = []Preset{PresetConstant, PresetLinear, PresetQuadratic, PresetExponential}

// presetIntervals maps a preset to its per-level day intervals, the first
// entry belonging to level 1. Cards above the last configured level keep
// the longest interval.
var presetIntervals = map[Preset][]int{
	PresetConstant:    {1, 1, 1, 1, 1, 1, 1, 1},
	PresetLinear:      {1, 2, 3, 4, 5, 6, 7, 8},
	PresetQuadratic:   {1, 4, 9, 16, 25, 36, 49, 64},
	PresetExponential: {1, 2, 4, 8, 16, 32, 64, 128},
}

// FixedTime is a time of day at which cards expire when a fixed daily
// expiration is configured.
type FixedTime struct {
	Hour   int
	Minute int
}

// ParseFixedTime parses "HH:MM" into a FixedTime.
func ParseFixedTime(value string) (FixedTime, error) {
	var ft FixedTime
	if _, err := fmt.Sscanf(value, "%d:%d", &ft.Hour, &ft.Minute); err != nil {
		return FixedTime{}, fmt.Errorf("invalid fixed expiration time %q: expected HH:MM", value)
	}
	if ft.Hour < 0 || ft.Hour > 23 || ft.Minute < 0 || ft.Minute > 59 {
		return FixedTime{}, fmt.Errorf("invalid fixed expiration time %q: hour must be 0-23 and minute 0-59", value)
	}
	return ft, nil
}

// Schedule maps a Leitner level to the number of days until a card at that
// level expires again. Level 0 cards never expire.
type Schedule struct {
	intervals []int
	fixedTime *FixedTime
}

// NewPresetSchedule builds a schedule from a built-in preset.
func NewPresetSchedule(preset Preset) (*Schedule, error) {
	intervals, ok := presetIntervals[preset]
	if !ok {
		return nil, fmt.Errorf("unknown schedule preset %q", preset)
	}
	return &Schedule{intervals: append([]int(nil), intervals...)}, nil
}

// NewCustomSchedule builds a schedule from caller-supplied day intervals,
// one entry per level starting at level 1. Malformed intervals are rejected
// here so that a bad schedule can never reach the scheduler.
func NewCustomSchedule(intervalDays []int) (*Schedule, error) {
	s := &Schedule{intervals: append([]int(nil), intervalDays...)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the schedule for structural problems.
func (s *Schedule) Validate() error {
	if len(s.intervals) == 0 {
		return fmt.Errorf("schedule has no intervals")
	}
	for i, days := range s.intervals {
		if days < 1 {
			return fmt.Errorf("schedule interval for level %d is %d days, must be at least 1", i+1, days)
		}
	}
	return nil
}

// SetFixedExpirationTime makes all computed expiration dates fall on the
// given time of day.
func (s *Schedule) SetFixedExpirationTime(ft FixedTime) {
	s.fixedTime = &ft
}

// FixedExpirationTime returns the configured daily expiration time, or nil.
func (s *Schedule) FixedExpirationTime() *FixedTime {
	return s.fixedTime
}

// Intervals returns the configured per-level day intervals, the first entry
// belonging to level 1.
func (s *Schedule) Intervals() []int {
	return append([]int(nil), s.intervals...)
}

// Interval returns the number of days until a card that just reached the
// given level expires. Levels beyond the configured range are clamped to
// the last entry. Level 0 has no interval; callers must treat it as
// "never expires".
func (s *Schedule) Interval(level int) int {
	if level <= 0 {
		return 0
	}
	idx := level - 1
	if idx >= len(s.intervals) {
		idx = len(s.intervals) - 1
	}
	return s.intervals[idx]
}

// Expiration computes when a card that reached the given level at the given
// test time becomes due again. Level 0 cards never expire, which is
// reported as nil.
//
// With a fixed daily expiration time configured, the naive tested+interval
// result is snapped to the next occurrence of that time of day.
func (s *Schedule) Expiration(level int, tested time.Time) *time.Time {
	if level <= 0 {
		return nil
	}

	expires := tested.AddDate(0, 0, s.Interval(level))

	if s.fixedTime != nil {
		snapped := time.Date(expires.Year(), expires.Month(), expires.Day(),
			s.fixedTime.Hour, s.fixedTime.Minute, 0, 0, expires.Location())
		if snapped.Before(expires) {
			snapped = snapped.AddDate(0, 0, 1)
		}
		expires = snapped
	}

	return &expires
}
