package learn

import (
	"fmt"
	"time"
)

// SidesMode controls which side of a card is shown as the question.
type SidesMode string

const (
	// SidesNormal always asks the front side.
	SidesNormal SidesMode = "normal"
	// SidesFlipped always asks the back side.
	SidesFlipped SidesMode = "flipped"
	// SidesRandom picks a side at random for every draw.
	SidesRandom SidesMode = "random"
	// SidesBoth requires both sides to be answered correctly the configured
	// number of times before the card advances a level.
	SidesBoth SidesMode = "both"
)

// Settings configures a learn session. A Settings value is immutable from
// the session's point of view; the session never writes to it.
type Settings struct {
	CardLimitEnabled bool
	CardLimit        int

	TimeLimitEnabled bool
	TimeLimit        time.Duration

	// RetestFailedCards re-queues failed cards within the same session.
	RetestFailedCards bool

	// ShuffleRatio is the fraction of the candidate pool that is randomly
	// reordered; the remainder keeps the deterministic order.
	ShuffleRatio float64

	Sides SidesMode

	// AmountToTestFront and AmountToTestBack apply in SidesBoth mode: how
	// often each side must be passed before the card's level advances.
	AmountToTestFront int
	AmountToTestBack  int

	// GroupByCategory keeps cards of the same category adjacent in the
	// deterministic part of the session order.
	GroupByCategory bool

	Schedule *Schedule
}

// NewSettings returns settings with the defaults of the desktop
// application: linear schedule, failed cards retested, front side asked,
// no limits.
func NewSettings() *Settings {
	schedule, err := NewPresetSchedule(PresetLinear)
	if err != nil {
		panic(err)
	}
	return &Settings{
		RetestFailedCards: true,
		Sides:             SidesNormal,
		AmountToTestFront: 1,
		AmountToTestBack:  1,
		Schedule:          schedule,
	}
}

// Validate rejects malformed settings. This runs at configuration time so
// that a bad Settings value can never enter a session.
func (s *Settings) Validate() error {
	if s.CardLimitEnabled && s.CardLimit < 1 {
		return fmt.Errorf("card limit is enabled but set to %d", s.CardLimit)
	}
	if s.TimeLimitEnabled && s.TimeLimit <= 0 {
		return fmt.Errorf("time limit is enabled but set to %s", s.TimeLimit)
	}
	if s.ShuffleRatio < 0 || s.ShuffleRatio > 1 {
		return fmt.Errorf("shuffle ratio %v is outside [0, 1]", s.ShuffleRatio)
	}
	switch s.Sides {
	case SidesNormal, SidesFlipped, SidesRandom, SidesBoth:
	default:
		return fmt.Errorf("unknown sides mode %q", s.Sides)
	}
	if s.AmountToTestFront < 1 || s.AmountToTestBack < 1 {
		return fmt.Errorf("amount to test must be at least 1 per side, got front=%d back=%d",
			s.AmountToTestFront, s.AmountToTestBack)
	}
	if s.Schedule == nil {
		return fmt.Errorf("settings have no schedule")
	}
	if err := s.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	return nil
}
