package store

import (
	"strconv"
	"strings"
)

// #region drivers
// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// #endregion drivers

// #region schema
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS patients (
	id_number     TEXT PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	history_json  TEXT NOT NULL,
	scans_json    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS triage_log (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id            TEXT NOT NULL,
	trigger_type       TEXT NOT NULL,
	urgency            TEXT NOT NULL,
	guardrail          INTEGER NOT NULL,
	escalation_called  INTEGER NOT NULL,
	escalation_reason  TEXT,
	payload_json       TEXT,
	created_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_triage_log_case ON triage_log(case_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS patients (
	id_number     TEXT PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	history_json  TEXT NOT NULL,
	scans_json    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS triage_log (
	id                 BIGSERIAL PRIMARY KEY,
	case_id            TEXT NOT NULL,
	trigger_type       TEXT NOT NULL,
	urgency            TEXT NOT NULL,
	guardrail          INTEGER NOT NULL,
	escalation_called  INTEGER NOT NULL,
	escalation_reason  TEXT,
	payload_json       TEXT,
	created_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_triage_log_case ON triage_log(case_id);
`

// #endregion schema

// #region rebind
// Rebind rewrites ? placeholders to $1, $2, ... for postgres. Queries for
// other drivers are returned unchanged.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// #endregion rebind
