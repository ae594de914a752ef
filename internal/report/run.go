package report

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Run is a report frozen with its run metadata, as written, stored and served.
type Run struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	Source         string    `json:"source"`
	FailOnSeverity string    `json:"fail_on_severity,omitempty"`
	Snapshot
}

// NewRun freezes rep under a fresh id.
func NewRun(rep *Report, source, failOn string, started time.Time) *Run {
	return &Run{
		ID:             NewRunID(started),
		StartedAt:      started.UTC(),
		Source:         source,
		FailOnSeverity: failOn,
		Snapshot:       rep.Snapshot(),
	}
}

// NewRunID is "run-<yyyymmddThhmmss>-<6 hex>".
func NewRunID(t time.Time) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	return "run-" + t.UTC().Format("20060102T150405") + "-" + hex.EncodeToString(b[:])
}
