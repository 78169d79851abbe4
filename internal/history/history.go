// Package history stores summaries of finished learn sessions and provides
// aggregate statistics over them.
package history

import "time"

// SessionSummary is the record of one finished learn session.
type SessionSummary struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`

	// DurationMinutes is the wall clock length of the session in minutes.
	DurationMinutes int `yaml:"duration_minutes"`

	Passed    int `yaml:"passed"`
	Failed    int `yaml:"failed"`
	Skipped   int `yaml:"skipped"`
	Relearned int `yaml:"relearned"`
}

// NewSessionSummary builds a summary for the given session bounds and
// counts, deriving the duration from start and end.
func NewSessionSummary(start, end time.Time, passed, failed, skipped, relearned int) SessionSummary {
	return SessionSummary{
		Start:           start,
		End:             end,
		DurationMinutes: int(end.Sub(start) / time.Minute),
		Passed:          passed,
		Failed:          failed,
		Skipped:         skipped,
		Relearned:       relearned,
	}
}

// History accumulates session summaries in the order the sessions ended.
type History struct {
	summaries []SessionSummary
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// AddSummary appends a summary.
func (h *History) AddSummary(summary SessionSummary) {
	h.summaries = append(h.summaries, summary)
}

// Summaries returns all summaries, oldest first.
func (h *History) Summaries() []SessionSummary {
	return append([]SessionSummary(nil), h.summaries...)
}

// RecentSummaries returns at most limit of the newest summaries, oldest
// first.
func (h *History) RecentSummaries(limit int) []SessionSummary {
	n := len(h.summaries)
	if limit < n {
		n = limit
	}
	return append([]SessionSummary(nil), h.summaries[len(h.summaries)-n:]...)
}

// LastSummary returns the newest summary, or nil if the history is empty.
func (h *History) LastSummary() *SessionSummary {
	if len(h.summaries) == 0 {
		return nil
	}
	summary := h.summaries[len(h.summaries)-1]
	return &summary
}

// SessionsSummary returns the totals over all summaries, spanning from the
// first session's start to the last session's end. Returns nil for an
// empty history.
func (h *History) SessionsSummary() *SessionSummary {
	if len(h.summaries) == 0 {
		return nil
	}

	total := SessionSummary{
		Start: h.summaries[0].Start,
		End:   h.summaries[len(h.summaries)-1].End,
	}
	for _, s := range h.summaries {
		total.DurationMinutes += s.DurationMinutes
		total.Passed += s.Passed
		total.Failed += s.Failed
		total.Skipped += s.Skipped
		total.Relearned += s.Relearned
	}
	return &total
}

// Average returns the per-session averages. For an empty history it returns
// a zero summary anchored at the current time.
func (h *History) Average() SessionSummary {
	total := h.SessionsSummary()
	if total == nil {
		now := time.Now()
		return SessionSummary{Start: now, End: now}
	}

	count := len(h.summaries)
	return SessionSummary{
		Start:           total.Start,
		End:             total.End,
		DurationMinutes: total.DurationMinutes / count,
		Passed:          total.Passed / count,
		Failed:          total.Failed / count,
		Skipped:         total.Skipped / count,
		Relearned:       total.Relearned / count,
	}
}
