package domain

import "time"

// RefreshOutcome labels the result of the most recent refresh cycle.
type RefreshOutcome string

const (
	OutcomeNever   RefreshOutcome = "never"
	OutcomeSuccess RefreshOutcome = "success"
	OutcomeFailure RefreshOutcome = "failure"
)

// ScheduleState is a point-in-time snapshot of the ingestion scheduler.
// Running is true for the entire duration of one refresh cycle and false
// otherwise; a new cycle is refused, not queued, while it is true.
// Mutated only by the scheduler itself.
type ScheduleState struct {
	Running    bool           `json:"running"`
	Expression string         `json:"expression"`
	Timezone   string         `json:"timezone"`
	LastRun    time.Time      `json:"last_run,omitempty"`
	Outcome    RefreshOutcome `json:"outcome"`
	LastCount  int            `json:"last_count"`
	LastError  string         `json:"last_error,omitempty"`
}
