package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
)

// #region mocks
type mockLookup struct {
	history []string
	scans   []string
	found   bool
	err     error
	calls   int
}

func (m *mockLookup) Lookup(_ context.Context, _, _, _ string) ([]string, []string, bool, error) {
	m.calls++
	return m.history, m.scans, m.found, m.err
}

type mockGenerator struct {
	text    string
	err     error
	lastReq codec.Request
}

func (m *mockGenerator) Generate(_ context.Context, req codec.Request) (string, error) {
	m.lastReq = req
	return m.text, m.err
}

func newTestRouter(lookup PatientLookup, gen codec.Generator) *Router {
	return NewRouter(DefaultRouterConfig(), lookup, gen)
}

func contains(items []string, substr string) bool {
	for _, s := range items {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// #endregion mocks

// #region scenario-tests
func TestRun_LowSpO2ForcesEmergency(t *testing.T) {
	r := newTestRouter(nil, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Symptoms: []string{"cough"},
		Vitals:   clinical.VitalSigns{SpO2Percent: clinical.IntPtr(88)},
	})
	if res.Urgency != clinical.Emergency || !res.GuardrailTriggered {
		t.Fatalf("urgency=%s guardrail=%v", res.Urgency, res.GuardrailTriggered)
	}
	if !contains(res.Rationale, rationaleGuardrailHeld) {
		t.Fatalf("rationale missing guardrail line: %v", res.Rationale)
	}
}

func TestRun_PersistentVomitingIsUrgent(t *testing.T) {
	r := newTestRouter(nil, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Symptoms: []string{"persistent vomiting"},
		Vitals:   clinical.VitalSigns{SpO2Percent: clinical.IntPtr(97)},
	})
	if res.Urgency != clinical.Urgent || res.GuardrailTriggered {
		t.Fatalf("urgency=%s guardrail=%v", res.Urgency, res.GuardrailTriggered)
	}
}

func TestRun_StrokeNotesForceEmergency(t *testing.T) {
	r := newTestRouter(nil, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Symptoms: []string{clinical.SentinelSymptom},
		Notes:    "Family reports stroke signs with one-sided weakness and fever",
		Vitals:   clinical.VitalSigns{SpO2Percent: clinical.IntPtr(97)},
	})
	if res.Urgency != clinical.Emergency || !res.GuardrailTriggered {
		t.Fatalf("urgency=%s guardrail=%v", res.Urgency, res.GuardrailTriggered)
	}
	if !contains(res.GuardrailReasons, "stroke") || !contains(res.GuardrailReasons, "one-sided weakness") {
		t.Fatalf("reasons = %v", res.GuardrailReasons)
	}
}

func TestRun_RemoteVillageEmergency(t *testing.T) {
	r := newTestRouter(nil, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Symptoms:    []string{"shortness of breath"},
		Environment: clinical.EnvRemoteVillage,
	})
	if !strings.Contains(res.RecommendedNextStep, "nurse-led stabilization") {
		t.Fatalf("next step = %q", res.RecommendedNextStep)
	}
	if len(res.EnvironmentGuidance) == 0 {
		t.Fatal("expected environment guidance")
	}
}

func TestRun_VerifiedPatientWithRecord(t *testing.T) {
	lookup := &mockLookup{
		history: []string{"Asthma since childhood"},
		scans:   []string{"2022 chest x-ray clear", "2024 knee MRI"},
		found:   true,
	}
	r := newTestRouter(lookup, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Identity: clinical.Identity{FirstName: "Anna", LastName: "Kowalska", IDNumber: "PL-998877"},
		Symptoms: []string{"chest pain"},
	})
	if !res.PatientVerified || !res.PatientRecordFound {
		t.Fatalf("verified=%v found=%v", res.PatientVerified, res.PatientRecordFound)
	}
	if len(res.PatientHistory) == 0 {
		t.Fatal("expected history")
	}
	if len(res.RelevantScans) != 1 || res.RelevantScans[0] != "2022 chest x-ray clear" {
		t.Fatalf("relevant scans = %v", res.RelevantScans)
	}
	if res.Rationale[0] != rationaleRecordFound {
		t.Fatalf("first rationale = %q", res.Rationale[0])
	}
}

// #endregion scenario-tests

// #region identity-tests
func TestRun_IncompleteIdentitySkipsLookup(t *testing.T) {
	lookup := &mockLookup{found: true, history: []string{"x"}}
	r := newTestRouter(lookup, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Identity: clinical.Identity{FirstName: "Anna"},
		Symptoms: []string{"cough"},
	})
	if lookup.calls != 0 {
		t.Fatal("lookup must not run for incomplete identity")
	}
	if res.PatientVerified || res.Rationale[0] != rationaleNoIdentity {
		t.Fatalf("verified=%v rationale=%v", res.PatientVerified, res.Rationale)
	}
}

func TestRun_LookupErrorTreatedAsNotFound(t *testing.T) {
	lookup := &mockLookup{err: errors.New("db locked")}
	r := newTestRouter(lookup, nil)
	res := r.Run(context.Background(), clinical.Intake{
		Identity: clinical.Identity{FirstName: "A", LastName: "B", IDNumber: "1"},
		Symptoms: []string{"cough"},
	})
	if !res.PatientVerified || res.PatientRecordFound {
		t.Fatalf("verified=%v found=%v", res.PatientVerified, res.PatientRecordFound)
	}
	if res.Rationale[0] != rationaleNoRecord {
		t.Fatalf("rationale = %v", res.Rationale)
	}
}

// #endregion identity-tests

// #region summary-tests
func TestRun_SummaryFromGenerator(t *testing.T) {
	gen := &mockGenerator{text: "Patient needs same-day review."}
	r := newTestRouter(nil, gen)
	res := r.Run(context.Background(), clinical.Intake{
		Symptoms:      []string{"fever"},
		ScanImagePath: "/tmp/scan.png",
	})
	if res.Summary != "Patient needs same-day review." {
		t.Fatalf("summary = %q", res.Summary)
	}
	if gen.lastReq.ImagePath != "/tmp/scan.png" {
		t.Fatalf("image path not forwarded: %q", gen.lastReq.ImagePath)
	}
	if !strings.Contains(gen.lastReq.Prompt, "Urgency: urgent") {
		t.Fatalf("prompt missing urgency: %s", gen.lastReq.Prompt)
	}
}

func TestRun_SummaryFallback(t *testing.T) {
	for _, gen := range []codec.Generator{
		nil,
		codec.Fallback{},
		&mockGenerator{err: errors.New("timeout")},
		&mockGenerator{text: codec.FallbackBanner + " Set a backend."},
	} {
		r := newTestRouter(nil, gen)
		res := r.Run(context.Background(), clinical.Intake{Symptoms: []string{"mild headache"}})
		if !strings.HasPrefix(res.Summary, "Preliminary triage level: routine.") {
			t.Fatalf("%T: summary = %q", gen, res.Summary)
		}
	}
}

func TestBuildSummaryPrompt_Placeholders(t *testing.T) {
	p := BuildSummaryPrompt(SummaryInput{Urgency: clinical.Routine})
	if !strings.Contains(p, noHistoryLine) || !strings.Contains(p, noScansLine) {
		t.Fatalf("prompt missing placeholders: %s", p)
	}
}

// #endregion summary-tests

// #region property-tests
func TestRun_UrgencyAlwaysValid(t *testing.T) {
	r := newTestRouter(nil, nil)
	inputs := []clinical.Intake{
		{},
		{Symptoms: []string{""}},
		{Notes: "unconscious", Vitals: clinical.VitalSigns{SpO2Percent: clinical.IntPtr(0)}},
		{Symptoms: []string{"fever"}, Environment: "unknown_place"},
	}
	for i, in := range inputs {
		res := r.Run(context.Background(), in)
		if !res.Urgency.Valid() {
			t.Fatalf("case %d: invalid urgency %q", i, res.Urgency)
		}
		if len(res.ImmediateActions) == 0 || res.RecommendedNextStep == "" {
			t.Fatalf("case %d: empty recommendation", i)
		}
	}
}

// #endregion property-tests
