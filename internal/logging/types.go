package logging

import "time"

// #region trigger-types
// Trigger types recorded in triage_log.trigger_type.
const (
	TriggerRun      = "triage_run"
	TriggerFollowup = "followup"
)

// #endregion trigger-types

// #region case-entry
// CaseEntry is a single row in the triage_log table.
type CaseEntry struct {
	ID               int64
	CaseID           string
	TriggerType      string
	Urgency          string
	Guardrail        bool
	EscalationCalled bool
	EscalationReason string
	PayloadJSON      string
	CreatedAt        time.Time
}

// #endregion case-entry
