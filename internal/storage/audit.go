package storage

import (
	"encoding/json"
	"time"
)

type AuditEntry struct {
	TS        time.Time      `json:"ts"`
	Principal string         `json:"principal,omitempty"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// LogAudit records who did what to which run. Meta may be nil.
func (db *DB) LogAudit(principal, action, resource string, meta map[string]any) error {
	var mj *string
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		s := string(b)
		mj = &s
	}
	_, err := db.conn.Exec(db.rebind(`INSERT INTO audit(ts, principal, action, resource, meta_json) VALUES(?,?,?,?,?)`),
		time.Now().UTC().Format(time.RFC3339Nano), principal, action, resource, mj)
	return err
}

// ListAudit returns the newest entries first.
func (db *DB) ListAudit(limit int) ([]AuditEntry, error) {
	rows, err := db.conn.Query(db.rebind(`
SELECT ts, COALESCE(principal,''), action, COALESCE(resource,''), COALESCE(meta_json,'')
  FROM audit ORDER BY ts DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var ts, meta string
		if err := rows.Scan(&ts, &e.Principal, &e.Action, &e.Resource, &meta); err != nil {
			return nil, err
		}
		e.TS = parseTime(ts)
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &e.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
