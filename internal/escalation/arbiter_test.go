package escalation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
)

// #region mocks
type mockGenerator struct {
	text  string
	err   error
	calls int
	last  codec.Request
}

func (m *mockGenerator) Generate(_ context.Context, req codec.Request) (string, error) {
	m.calls++
	m.last = req
	return m.text, m.err
}

// #endregion mocks

// #region settle-tests
func TestSettle_ForcedSkipsDecider(t *testing.T) {
	decider := &mockGenerator{text: "NO"}
	a := NewArbiter(DefaultConfig(), decider, nil)

	out := a.Settle(context.Background(), a.Decide(clinical.Emergency, false), clinical.Intake{})
	if !out.Called || out.Verdict != VerdictForced {
		t.Fatalf("outcome = %+v", out)
	}
	if decider.calls != 0 {
		t.Fatal("decider must not be consulted for non-routine urgency")
	}
}

func TestSettle_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Disabled = true
	a := NewArbiter(cfg, &mockGenerator{text: "YES"}, nil)
	out := a.Settle(context.Background(), a.Decide(clinical.Urgent, true), clinical.Intake{})
	if out.Called || out.Verdict != VerdictSkip {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestSettle_DeferredToDecider(t *testing.T) {
	tests := []struct {
		name   string
		gen    *mockGenerator
		called bool
		reason string
	}{
		{"yes", &mockGenerator{text: "YES - scan image needs review"}, true, "Decider: YES - scan image needs review"},
		{"no multiline", &mockGenerator{text: "No.\nSimple cold."}, false, "Decider: NO - Simple cold."},
		{"bare yes", &mockGenerator{text: "**Yes**"}, true, "Decider: YES."},
		{"unclear", &mockGenerator{text: "Maybe, hard to say"}, false, "Decider answer unclear; keeping deterministic triage."},
		{"error", &mockGenerator{err: errors.New("down")}, false, "Decider unavailable; keeping deterministic triage."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewArbiter(DefaultConfig(), tt.gen, nil)
			out := a.Settle(context.Background(), a.Decide(clinical.Routine, false), clinical.Intake{Symptoms: []string{"cough"}})
			if out.Called != tt.called || out.Verdict != VerdictDefer {
				t.Fatalf("outcome = %+v", out)
			}
			if out.Reason != tt.reason {
				t.Fatalf("reason = %q, want %q", out.Reason, tt.reason)
			}
			if tt.gen.calls != 1 {
				t.Fatalf("decider calls = %d", tt.gen.calls)
			}
			if tt.gen.last.MaxNewTokens != 96 {
				t.Fatalf("decider budget not applied: %d", tt.gen.last.MaxNewTokens)
			}
		})
	}
}

func TestSettle_UrgentIgnoresDeciderVerdict(t *testing.T) {
	for _, answer := range []string{"NO", "YES", ""} {
		a := NewArbiter(DefaultConfig(), &mockGenerator{text: answer}, nil)
		out := a.Settle(context.Background(), a.Decide(clinical.Urgent, false), clinical.Intake{})
		if !out.Called {
			t.Fatalf("decider answer %q changed an urgent call", answer)
		}
	}
}

// #endregion settle-tests

// #region recommend-tests
func TestRecommend(t *testing.T) {
	model := &mockGenerator{text: `{"urgency":"urgent","immediate_actions":["Call the nurse"]}`}
	a := NewArbiter(DefaultConfig(), nil, model)
	prior := clinical.Result{Urgency: clinical.Routine, RecommendedNextStep: "Routine follow-up in 24-72 hours"}

	out := a.Recommend(context.Background(), clinical.Intake{ScanImagePath: "scan.png", Symptoms: []string{"fever"}}, prior)
	if out.Structured == nil || out.Structured.Urgency != "urgent" {
		t.Fatalf("output = %+v", out)
	}
	if model.last.ImagePath != "scan.png" {
		t.Fatalf("image not forwarded: %q", model.last.ImagePath)
	}
	if !strings.Contains(model.last.Prompt, "Current triage urgency: routine") {
		t.Fatalf("prompt = %s", model.last.Prompt)
	}

	res, _ := a.Reconcile(prior, out)
	if res.Urgency != clinical.Urgent || res.ImmediateActions[0] != "Call the nurse" {
		t.Fatalf("reconciled = %+v", res)
	}
}

func TestRecommend_Unavailable(t *testing.T) {
	a := NewArbiter(DefaultConfig(), nil, codec.Fallback{})
	out := a.Recommend(context.Background(), clinical.Intake{}, clinical.Result{Urgency: clinical.Urgent})
	if out.Raw != "" || out.Structured != nil {
		t.Fatalf("expected empty output, got %+v", out)
	}
}

// #endregion recommend-tests
