package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
)

// #region types

// Runner runs one session. *orchestrator.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, sess orchestrator.Session) orchestrator.RunOutput
}

// CaseResult captures the outcome of replaying one fixture case.
type CaseResult struct {
	CaseID string
	Output orchestrator.RunOutput
	Diffs  []string // empty when every checked field matched
}

// Match reports whether the replayed case reproduced its expectations.
func (r CaseResult) Match() bool {
	return len(r.Diffs) == 0
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total    int
	Matches  int
	Diverged int
}

// #endregion types

// #region replay

// ReplayCase runs one fixture case and compares it against its expectations.
func ReplayCase(ctx context.Context, r Runner, fc FixtureCase) CaseResult {
	out := r.Run(ctx, fc.Session.ToSession())
	return CaseResult{CaseID: fc.CaseID, Output: out, Diffs: Compare(fc.Expected, out)}
}

// Replay runs every case in order.
func Replay(ctx context.Context, r Runner, cases []FixtureCase) []CaseResult {
	results := make([]CaseResult, 0, len(cases))
	for _, fc := range cases {
		results = append(results, ReplayCase(ctx, r, fc))
	}
	return results
}

// Compare lists the checked fields of out that differ from exp.
func Compare(exp FixtureExpected, out orchestrator.RunOutput) []string {
	var diffs []string
	if exp.Urgency != "" && string(out.Triage.Urgency) != exp.Urgency {
		diffs = append(diffs, fmt.Sprintf("urgency: expected %s, got %s", exp.Urgency, out.Triage.Urgency))
	}
	if exp.Guardrail != nil && out.Triage.GuardrailTriggered != *exp.Guardrail {
		diffs = append(diffs, fmt.Sprintf("guardrail: expected %t, got %t", *exp.Guardrail, out.Triage.GuardrailTriggered))
	}
	if exp.EscalationCalled != nil && out.Escalation.Called != *exp.EscalationCalled {
		diffs = append(diffs, fmt.Sprintf("escalation_called: expected %t, got %t", *exp.EscalationCalled, out.Escalation.Called))
	}
	if exp.NextStep != "" && out.Triage.RecommendedNextStep != exp.NextStep {
		diffs = append(diffs, fmt.Sprintf("next_step: expected %q, got %q", exp.NextStep, out.Triage.RecommendedNextStep))
	}
	if exp.VerificationComplete != nil && out.VerificationComplete != *exp.VerificationComplete {
		diffs = append(diffs, fmt.Sprintf("verification_complete: expected %t, got %t", *exp.VerificationComplete, out.VerificationComplete))
	}
	return diffs
}

// Summarize counts matching and diverging cases.
func Summarize(results []CaseResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Match() {
			s.Matches++
		}
	}
	s.Diverged = s.Total - s.Matches
	return s
}

// #endregion replay
