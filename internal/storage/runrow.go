package storage

import "time"

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	FailOn    string    `json:"fail_on_severity,omitempty"`
	ExitCode  int       `json:"exit_code"`
	Offenses  int       `json:"offenses"`
}
