package replay

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
)

// #region fixture-tests

// TestFixture_GoldenCases replays the offline golden cases. Changes to the
// keyword tables, thresholds or escalation rules show up here as drift.
func TestFixture_GoldenCases(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "golden_cases.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) == 0 {
		t.Fatal("fixture has no cases")
	}

	o := orchestrator.New(orchestrator.DefaultConfig(), orchestrator.Deps{})
	results := Replay(context.Background(), o, f.Cases)

	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}
	for _, r := range results {
		if !r.Match() {
			t.Errorf("case %s diverged: %v", r.CaseID, r.Diffs)
		}
	}
	if s := Summarize(results); s.Diverged != 0 || s.Matches != s.Total {
		t.Errorf("summary = %+v", s)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing fixture")
	}
}

// #endregion fixture-tests

// #region compare-tests

func TestCompare(t *testing.T) {
	yes, no := true, false
	out := orchestrator.RunOutput{
		Triage: clinical.Result{
			Urgency:             clinical.Urgent,
			GuardrailTriggered:  false,
			RecommendedNextStep: "Same-day review",
		},
		Escalation: escalation.Outcome{Called: true},
	}

	tests := []struct {
		name      string
		exp       FixtureExpected
		wantDiffs int
	}{
		{"empty expectations", FixtureExpected{}, 0},
		{"all match", FixtureExpected{Urgency: "urgent", Guardrail: &no, EscalationCalled: &yes, NextStep: "Same-day review"}, 0},
		{"urgency differs", FixtureExpected{Urgency: "routine"}, 1},
		{"several differ", FixtureExpected{Guardrail: &yes, EscalationCalled: &no, VerificationComplete: &yes}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.exp, out); len(got) != tt.wantDiffs {
				t.Errorf("Compare = %v, want %d diffs", got, tt.wantDiffs)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]CaseResult{{CaseID: "a"}, {CaseID: "b", Diffs: []string{"x"}}, {CaseID: "c"}})
	if s.Total != 3 || s.Matches != 2 || s.Diverged != 1 {
		t.Errorf("summary = %+v", s)
	}
}

// #endregion compare-tests
