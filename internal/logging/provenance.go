package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/field-triage/internal/store"
)

// #region recorder
// Recorder appends to and reads the triage audit log. Rows are never
// updated or deleted.
type Recorder struct {
	db     *sql.DB
	rebind func(string) string
}

// NewRecorder creates a recorder over the store's database.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{db: s.DB(), rebind: s.Rebind}
}

// #endregion recorder

// #region log-decision
// LogDecision writes an entry to the triage_log table.
func (r *Recorder) LogDecision(ctx context.Context, entry CaseEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO triage_log (case_id, trigger_type, urgency, guardrail, escalation_called, escalation_reason, payload_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.CaseID,
		entry.TriggerType,
		entry.Urgency,
		boolInt(entry.Guardrail),
		boolInt(entry.EscalationCalled),
		nullIfEmpty(entry.EscalationReason),
		nullIfEmpty(entry.PayloadJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region list
const selectColumns = `SELECT id, case_id, trigger_type, urgency, guardrail, escalation_called, escalation_reason, payload_json, created_at FROM triage_log`

// ListRecent returns up to n entries, newest first.
func (r *Recorder) ListRecent(ctx context.Context, n int) ([]CaseEntry, error) {
	if n <= 0 {
		n = 20
	}
	return r.query(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, n)
}

// ListCase returns every entry for caseID in insertion order.
func (r *Recorder) ListCase(ctx context.Context, caseID string) ([]CaseEntry, error) {
	return r.query(ctx, selectColumns+` WHERE case_id = ? ORDER BY id ASC`, caseID)
}

func (r *Recorder) query(ctx context.Context, q string, args ...any) ([]CaseEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query triage log: %w", err)
	}
	defer rows.Close()

	var out []CaseEntry
	for rows.Next() {
		var e CaseEntry
		var guardrail, called int
		var reason, payload sql.NullString
		var created string
		if err := rows.Scan(&e.ID, &e.CaseID, &e.TriggerType, &e.Urgency, &guardrail, &called, &reason, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan triage log: %w", err)
		}
		e.Guardrail = guardrail != 0
		e.EscalationCalled = called != 0
		e.EscalationReason = reason.String
		e.PayloadJSON = payload.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triage log: %w", err)
	}
	return out, nil
}

// #endregion list

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
