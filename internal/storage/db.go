package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // CGO-free SQLite driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DB stores lint runs in SQLite or PostgreSQL.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects to driver ("sqlite" or "pgx"/"postgres"). For SQLite the dsn
// is a file path.
func Open(driver, dsn string) (*DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite3":
		return OpenSQLite(dsn)
	case DriverPostgres, "postgres", "postgresql":
		c, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &DB{conn: c, driver: DriverPostgres}, nil
	}
	return nil, fmt.Errorf("storage: unsupported driver %q", driver)
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	// Pragmas via DSN keep it portable with the modernc driver.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &DB{conn: c, driver: DriverSQLite}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) Driver() string { return db.driver }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
  id          TEXT PRIMARY KEY,
  started_at  TEXT,          -- RFC3339Nano
  source      TEXT,
  fail_on     TEXT,
  exit_code   INTEGER NOT NULL DEFAULT 0,
  offenses    INTEGER NOT NULL DEFAULT 0,
  run_json    TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS offenses (
  run_id        TEXT NOT NULL,
  seq           INTEGER NOT NULL,
  rule_id       TEXT,
  severity      TEXT,
  type          TEXT,
  name          TEXT,
  message       TEXT,
  location      TEXT,
  location_line INTEGER,
  extra_json    TEXT,
  PRIMARY KEY (run_id, seq),
  FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
)`,
	`CREATE INDEX IF NOT EXISTS idx_offenses_run ON offenses(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_offenses_rule ON offenses(rule_id)`,
	`CREATE TABLE IF NOT EXISTS audit (
  ts        TEXT NOT NULL,
  principal TEXT,
  action    TEXT NOT NULL,
  resource  TEXT,
  meta_json TEXT
)`,
}

// CreateSchema ensures tables exist. Statements run one at a time so both
// drivers accept them.
func (db *DB) CreateSchema() error {
	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) rebind(q string) string {
	if db.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
