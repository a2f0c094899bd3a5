package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/logging"
	"github.com/danielpatrickdp/field-triage/internal/verify"
)

// #region mocks

type mockRecorder struct {
	entries []logging.CaseEntry
	err     error
}

func (m *mockRecorder) LogDecision(_ context.Context, e logging.CaseEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func newTestOrchestrator(cfg Config, deps Deps) *Orchestrator {
	o := New(cfg, deps)
	o.newID = func() string { return "case-1" }
	return o
}

func routineSession() Session {
	return Session{Session: intake.Session{Message: "mild cough since yesterday", Duration: "1 day"}}
}

// #endregion

// #region transition-tests

func TestAdvance(t *testing.T) {
	tests := []struct {
		name      string
		current   Phase
		c         conversation
		questions int
		want      Phase
	}{
		{"match goes to intake", PhaseVerifyUser, conversation{}, 0, PhaseGenerateIntake},
		{"mismatch asks", PhaseVerifyUser, conversation{verification: verify.Result{Mismatch: true}}, 0, PhaseVerificationFollowup},
		{"followup then intake", PhaseVerificationFollowup, conversation{}, 0, PhaseGenerateIntake},
		{"intake then decide", PhaseGenerateIntake, conversation{}, 0, PhaseDecideEscalation},
		{"called escalates", PhaseDecideEscalation, conversation{outcome: escalation.Outcome{Called: true}}, 0, PhaseEscalate},
		{"not called responds", PhaseDecideEscalation, conversation{}, 0, PhaseInitialResponse},
		{"escalate then respond", PhaseEscalate, conversation{}, 0, PhaseInitialResponse},
		{"no questions done", PhaseInitialResponse, conversation{}, 0, PhaseDone},
		{"questions pending", PhaseInitialResponse, conversation{}, 2, PhaseFollowup},
		{"questions exhausted", PhaseFollowup, conversation{asked: 2}, 2, PhaseDone},
		{"unknown phase", Phase("bogus"), conversation{}, 3, PhaseDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := advance(tt.current, tt.c, tt.questions); got != tt.want {
				t.Errorf("advance(%s) = %s, want %s", tt.current, got, tt.want)
			}
		})
	}
}

// #endregion

// #region run-tests

func TestRun_RoutineOffline(t *testing.T) {
	o := newTestOrchestrator(DefaultConfig(), Deps{})

	out, trace := o.RunTrace(context.Background(), routineSession())

	wantTrace := []Phase{PhaseVerifyUser, PhaseGenerateIntake, PhaseDecideEscalation, PhaseInitialResponse, PhaseDone}
	if diff := cmp.Diff(wantTrace, trace); diff != "" {
		t.Errorf("trace (-want +got):\n%s", diff)
	}
	if out.CaseID != "case-1" || out.Triage.CaseID != "case-1" {
		t.Errorf("case id not propagated: %q / %q", out.CaseID, out.Triage.CaseID)
	}
	if out.Triage.Urgency != clinical.Routine {
		t.Errorf("urgency = %s, want routine", out.Triage.Urgency)
	}
	if out.Escalation.Called || out.Escalation.Verdict != escalation.VerdictDefer {
		t.Errorf("unexpected escalation: %+v", out.Escalation)
	}
	if out.EscalationFeedback != "" {
		t.Errorf("feedback should be empty without escalation, got %q", out.EscalationFeedback)
	}
	if len(out.Dialogue) != 1 || !strings.HasPrefix(out.Dialogue[0], "Assistant: Verification notes: Identity incomplete") {
		t.Errorf("unexpected dialogue: %v", out.Dialogue)
	}
}

func TestRun_GuardrailEmergencyIsPinned(t *testing.T) {
	clinicalGen := codec.GeneratorFunc(func(context.Context, codec.Request) (string, error) {
		return `{"urgency": "routine", "recommended_next_step": "Rest at home", "immediate_actions": ["Sleep"], "rationale": "looks minor"}`, nil
	})
	o := newTestOrchestrator(DefaultConfig(), Deps{
		Arbiter: escalation.NewArbiter(escalation.DefaultConfig(), nil, clinicalGen),
	})

	out, trace := o.RunTrace(context.Background(), Session{Session: intake.Session{
		Message:  "sudden one-sided weakness in the arm",
		Duration: "1 hour",
	}})

	if !containsPhase(trace, PhaseEscalate) {
		t.Fatalf("expected escalate phase, trace=%v", trace)
	}
	if out.Triage.Urgency != clinical.Emergency || !out.Triage.GuardrailTriggered {
		t.Errorf("guardrail emergency lowered: urgency=%s guardrail=%t", out.Triage.Urgency, out.Triage.GuardrailTriggered)
	}
	if out.Escalation.Verdict != escalation.VerdictForced || !out.Escalation.Called {
		t.Errorf("escalation = %+v, want forced call", out.Escalation)
	}
	if out.Triage.RecommendedNextStep != "Rest at home" {
		t.Errorf("next step = %q", out.Triage.RecommendedNextStep)
	}
	if !strings.Contains(out.EscalationFeedback, "looks minor") {
		t.Errorf("feedback = %q", out.EscalationFeedback)
	}
}

func TestRun_VerificationFollowup(t *testing.T) {
	tests := []struct {
		name         string
		answer       string
		wantComplete bool
	}{
		{"accepted", "Yes, the ID is mine", true},
		{"blank", "", false},
		{"no", "no", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(DefaultConfig(), Deps{})
			sess := routineSession()
			sess.CameraEnabled = true
			sess.Identity = clinical.Identity{FirstName: "Jan", LastName: "Kowal", IDNumber: "X1", AgeYears: clinical.IntPtr(30)}
			sess.CameraEstimate = verify.Estimate{AgeYears: clinical.IntPtr(60)}
			sess.VerificationAnswer = tt.answer

			out, trace := o.RunTrace(context.Background(), sess)
			if !containsPhase(trace, PhaseVerificationFollowup) {
				t.Fatalf("expected verification followup, trace=%v", trace)
			}
			if out.VerificationComplete != tt.wantComplete {
				t.Errorf("complete = %t, want %t (notes=%v)", out.VerificationComplete, tt.wantComplete, out.VerificationNotes)
			}
		})
	}
}

func TestRun_CameraWithoutSymptoms(t *testing.T) {
	o := newTestOrchestrator(DefaultConfig(), Deps{})
	out := o.Run(context.Background(), Session{Session: intake.Session{
		Message:       "I feel tired",
		Duration:      "1 day",
		CameraEnabled: true,
	}})

	if diff := cmp.Diff([]string{clinical.SentinelSymptom}, out.Intake.Symptoms); diff != "" {
		t.Errorf("symptoms mismatch (-want +got):\n%s", diff)
	}
	if out.Intake.SceneDescription == "" || len(out.Intake.Findings) != 0 {
		t.Errorf("camera record: scene=%q findings=%v", out.Intake.SceneDescription, out.Intake.Findings)
	}
	if len(out.Intake.Transcript) < 3 || !strings.Contains(out.Intake.Transcript[2], "main symptoms") {
		t.Errorf("symptoms question not asked first: %v", out.Intake.Transcript)
	}
	if out.Triage.Urgency != clinical.Routine {
		t.Errorf("urgency = %s, want routine", out.Triage.Urgency)
	}
}

func TestRun_FollowupsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxQuestions = 2
	o := newTestOrchestrator(cfg, Deps{})

	sess := routineSession()
	sess.Questions = []string{"What should I do now?", "Where is the bus stop?", "never asked"}
	out := o.Run(context.Background(), sess)

	if len(out.Dialogue) != 5 {
		t.Fatalf("dialogue has %d lines, want 5: %v", len(out.Dialogue), out.Dialogue)
	}
	if out.Dialogue[1] != "User: What should I do now?" {
		t.Errorf("user turn = %q", out.Dialogue[1])
	}
	if !strings.HasPrefix(out.Dialogue[2], "Assistant: Urgency is routine. Do this now: 1) ") {
		t.Errorf("recap turn = %q", out.Dialogue[2])
	}
	if !strings.HasPrefix(out.Dialogue[4], "Assistant: This is a general support question.") {
		t.Errorf("general turn = %q", out.Dialogue[4])
	}
	for _, line := range out.Dialogue {
		if strings.Contains(line, "never asked") {
			t.Errorf("question beyond MaxQuestions was answered")
		}
	}
}

func TestRunFromSymptoms_EscalationUnavailable(t *testing.T) {
	o := newTestOrchestrator(DefaultConfig(), Deps{})
	out := o.RunFromSymptoms(context.Background(), "severe chest pain radiating to arm", clinical.EnvRemoteVillage)

	if out.Triage.Urgency != clinical.Emergency {
		t.Errorf("urgency = %s, want emergency", out.Triage.Urgency)
	}
	if !out.Escalation.Called {
		t.Error("emergency should call the escalation model")
	}
	if !strings.Contains(out.EscalationFeedback, "no response") {
		t.Errorf("feedback = %q", out.EscalationFeedback)
	}
	if out.Intake.Environment != clinical.EnvRemoteVillage {
		t.Errorf("environment = %s", out.Intake.Environment)
	}
}

// #endregion

// #region audit-tests

func TestRun_RecordsAudit(t *testing.T) {
	rec := &mockRecorder{}
	o := newTestOrchestrator(DefaultConfig(), Deps{Recorder: rec})

	out := o.Run(context.Background(), routineSession())
	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.CaseID != "case-1" || e.TriggerType != logging.TriggerRun || e.Urgency != "routine" {
		t.Errorf("unexpected entry: %+v", e)
	}
	var payload RunOutput
	if err := json.Unmarshal([]byte(e.PayloadJSON), &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.CaseID != out.CaseID {
		t.Errorf("payload case id = %q", payload.CaseID)
	}

	answer := o.AnswerFollowup(context.Background(), "what now", out)
	if !strings.HasPrefix(answer, "Assistant: Urgency is routine.") {
		t.Errorf("answer = %q", answer)
	}
	if len(rec.entries) != 2 || rec.entries[1].TriggerType != logging.TriggerFollowup {
		t.Errorf("follow-up not recorded: %+v", rec.entries)
	}
}

func TestPayloadJSON(t *testing.T) {
	got, ok := payloadJSON("case-1", map[string]string{"question": "q"})
	if !ok || got != `{"question":"q"}` {
		t.Errorf("payloadJSON = %q, %t", got, ok)
	}
	if got, ok := payloadJSON("case-1", map[string]any{"bad": make(chan int)}); ok || got != "" {
		t.Errorf("unencodable payload accepted: %q", got)
	}
}

func TestRun_AuditFailureIsSwallowed(t *testing.T) {
	o := newTestOrchestrator(DefaultConfig(), Deps{Recorder: &mockRecorder{err: errors.New("disk full")}})
	out := o.Run(context.Background(), routineSession())
	if out.Triage.Urgency != clinical.Routine || len(out.Dialogue) == 0 {
		t.Errorf("run affected by audit failure: %+v", out)
	}
}

// #endregion

func containsPhase(trace []Phase, p Phase) bool {
	for _, t := range trace {
		if t == p {
			return true
		}
	}
	return false
}
