package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codewithboateng/doclint/internal/report"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("storage: run not found")

// SaveRun upserts the run and replaces its offense rows in one transaction.
func (db *DB) SaveRun(run *report.Run) error {
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(db.rebind(`
INSERT INTO runs(id, started_at, source, fail_on, exit_code, offenses, run_json)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  started_at=excluded.started_at,
  source=excluded.source,
  fail_on=excluded.fail_on,
  exit_code=excluded.exit_code,
  offenses=excluded.offenses,
  run_json=excluded.run_json`),
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano), run.Source, run.FailOnSeverity,
		run.ExitCode, len(run.Offenses), string(body))
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	if _, err := tx.Exec(db.rebind(`DELETE FROM offenses WHERE run_id = ?`), run.ID); err != nil {
		return fmt.Errorf("clear offenses: %w", err)
	}

	stmt, err := tx.Prepare(db.rebind(`
INSERT INTO offenses(run_id, seq, rule_id, severity, type, name, message, location, location_line, extra_json)
VALUES(?,?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, o := range run.Offenses {
		extra, err := json.Marshal(o.Extra)
		if err != nil {
			return fmt.Errorf("marshal offense %d: %w", i, err)
		}
		if _, err := stmt.Exec(run.ID, i, o.RuleID, o.Severity, o.Type, o.Name, o.Message,
			o.Location, o.LocationLine, string(extra)); err != nil {
			return fmt.Errorf("insert offense %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadRun returns the stored run document.
func (db *DB) LoadRun(id string) (*report.Run, error) {
	var body string
	err := db.conn.QueryRow(db.rebind(`SELECT run_json FROM runs WHERE id = ?`), id).Scan(&body)
	return decodeRun(body, err)
}

// LoadLatestRun returns the most recently started run.
func (db *DB) LoadLatestRun() (*report.Run, error) {
	var body string
	err := db.conn.QueryRow(`SELECT run_json FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&body)
	return decodeRun(body, err)
}

func decodeRun(body string, err error) (*report.Run, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var run report.Run
	if err := json.Unmarshal([]byte(body), &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}

func (db *DB) HasRun(id string) (bool, error) {
	var one int
	err := db.conn.QueryRow(db.rebind(`SELECT 1 FROM runs WHERE id = ? LIMIT 1`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
