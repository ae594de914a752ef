package storage

import (
	"encoding/json"
	"time"

	"github.com/codewithboateng/doclint/internal/results"
)

// ListRuns returns a lightweight list of runs, newest first.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT id, started_at, source, fail_on, exit_code, offenses
		  FROM runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(db.rebind(q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RunRow{}
	for rows.Next() {
		var rr RunRow
		var startedAt string
		if err := rows.Scan(&rr.ID, &startedAt, &rr.Source, &rr.FailOn, &rr.ExitCode, &rr.Offenses); err != nil {
			return nil, err
		}
		rr.StartedAt = parseTime(startedAt)
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListOffenses returns a run's offenses at or above minSeverity, in report
// order. An empty minSeverity returns all of them.
func (db *DB) ListOffenses(runID, minSeverity string) ([]results.Offense, error) {
	q := `
		SELECT rule_id, severity, type, name, message, location, location_line, extra_json
		  FROM offenses
		 WHERE run_id = ?
		   AND ` + rank("severity") + ` >= ` + rank("?") + `
		 ORDER BY seq`
	rows, err := db.conn.Query(db.rebind(q), runID, minSeverity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []results.Offense{}
	for rows.Next() {
		var o results.Offense
		var extra string
		if err := rows.Scan(&o.RuleID, &o.Severity, &o.Type, &o.Name, &o.Message,
			&o.Location, &o.LocationLine, &extra); err != nil {
			return nil, err
		}
		o.Extra = map[string]any{}
		if extra != "" {
			if err := json.Unmarshal([]byte(extra), &o.Extra); err != nil {
				return nil, err
			}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func rank(expr string) string {
	return "(CASE " + expr + " WHEN 'error' THEN 3 WHEN 'warning' THEN 2 WHEN 'convention' THEN 1 ELSE 0 END)"
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
