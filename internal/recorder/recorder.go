package recorder

import "time"

// Run statuses.
const (
	StatusOK      = "ok"      // new observations written
	StatusNoop    = "noop"    // nothing new, nothing written
	StatusPartial = "partial" // written, but some series failed to fetch
	StatusFailed  = "failed"  // aborted, nothing written
)

// Run is the record of one updater invocation.
type Run struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"` // "update" or "seed"
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Status       string    `json:"status"`
	Fetched      int       `json:"fetched"`
	Appended     int       `json:"appended"`
	FailedSeries []string  `json:"failed_series,omitempty"`
	Committed    bool      `json:"committed"`
	Revision     string    `json:"revision,omitempty"` // short commit hash when committed
	Error        string    `json:"error,omitempty"`
}

// Recorder persists run history for the dashboard and operators.
type Recorder interface {
	RecordRun(run *Run) error
	RecentRuns(limit int) ([]Run, error)
	Close() error
}
