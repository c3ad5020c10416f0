package domain

import "time"

// EngineStatus is the terminal state of one category's hunt.
type EngineStatus string

const (
	StatusPending             EngineStatus = "pending"
	StatusRunning             EngineStatus = "running"
	StatusSucceeded           EngineStatus = "succeeded"
	StatusSucceededAfterRetry EngineStatus = "succeeded_after_retry"
	StatusPartiallySucceeded  EngineStatus = "partially_succeeded"
	StatusFailedTerminally    EngineStatus = "failed_terminally"
	StatusSkipped             EngineStatus = "skipped"
)

// Terminal reports whether a category reached a final state.
func (s EngineStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusSucceededAfterRetry, StatusPartiallySucceeded,
		StatusFailedTerminally, StatusSkipped:
		return true
	}
	return false
}

// CategoryResult records one engine's outcome inside a RunSummary.
type CategoryResult struct {
	Group     CategoryGroup
	Status    EngineStatus
	Attempts  int
	Attempted int // candidate records seen
	New       int // accepted and persisted
	Duplicate int // rejected by the dedup index
	Failed    int // source adapters that failed outright
	Errors    []string
}

// RunSummary is the immutable outcome of one orchestrated hunt. It is
// consumed by the notifier and the dashboard; only its article records
// are persisted long-term.
type RunSummary struct {
	RunID      string
	Session    TradingSession
	StartedAt  time.Time
	FinishedAt time.Time

	CalendarSynced bool
	Categories     []CategoryResult

	// Success is true iff no category failed terminally.
	Success bool

	// Notified captures the best-effort delivery outcome; it never
	// influences Success.
	Notified bool
}

// Result returns the entry for a group, or nil if the group never ran.
func (s *RunSummary) Result(group CategoryGroup) *CategoryResult {
	for i := range s.Categories {
		if s.Categories[i].Group == group {
			return &s.Categories[i]
		}
	}
	return nil
}

// TotalNew sums newly accepted records across categories.
func (s *RunSummary) TotalNew() int {
	total := 0
	for _, c := range s.Categories {
		total += c.New
	}
	return total
}

// AllErrors flattens every category's error descriptions.
func (s *RunSummary) AllErrors() []string {
	var all []string
	for _, c := range s.Categories {
		all = append(all, c.Errors...)
	}
	return all
}

// CalendarEvent is one economic or earnings entry refreshed by calendar sync.
type CalendarEvent struct {
	Name       string
	Ticker     string // empty for macro events
	Type       string // MACRO_EVENT or EARNINGS
	Date       time.Time
	Importance string
	Time       string
}
