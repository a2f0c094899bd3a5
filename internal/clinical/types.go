package clinical

import "strings"

// #region vitals
// VitalSigns holds optional readings. Nil means not measured.
type VitalSigns struct {
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	HeartRateBPM *int     `json:"heart_rate_bpm,omitempty"`
	SpO2Percent  *int     `json:"spo2_percent,omitempty"`
	SystolicBP   *int     `json:"systolic_bp,omitempty"`
	DiastolicBP  *int     `json:"diastolic_bp,omitempty"`
}

// IntPtr is a convenience for building VitalSigns literals.
func IntPtr(v int) *int { return &v }

// FloatPtr is a convenience for building VitalSigns literals.
func FloatPtr(v float64) *float64 { return &v }

// #endregion vitals

// #region identity
// Identity is the claimed identity of the patient.
type Identity struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IDNumber  string `json:"id_number,omitempty"`
	AgeYears  *int   `json:"age_years,omitempty"`
	Sex       string `json:"sex,omitempty"`
}

// Complete reports whether name and ID are all present.
func (id Identity) Complete() bool {
	return strings.TrimSpace(id.FirstName) != "" &&
		strings.TrimSpace(id.LastName) != "" &&
		strings.TrimSpace(id.IDNumber) != ""
}

// #endregion identity

// #region intake
// SentinelSymptom is used when no symptom could be extracted.
const SentinelSymptom = "general malaise"

// Intake is the structured case record produced by the intake loop.
// It is not modified once built.
type Intake struct {
	Identity         Identity    `json:"identity"`
	Symptoms         []string    `json:"symptoms"`
	Duration         string      `json:"duration,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	Transcript       []string    `json:"transcript,omitempty"`
	SceneDescription string      `json:"scene_description,omitempty"`
	Findings         []string    `json:"findings,omitempty"`
	Vitals           VitalSigns  `json:"vitals"`
	ScanFindings     string      `json:"scan_findings,omitempty"`
	ScanImagePath    string      `json:"scan_image_path,omitempty"`
	Environment      Environment `json:"environment"`
}

// HasRealSymptoms reports whether at least one symptom other than the
// sentinel was detected.
func (in Intake) HasRealSymptoms() bool {
	return HasRealSymptoms(in.Symptoms)
}

// HasRealSymptoms reports whether symptoms has any non-sentinel label.
func HasRealSymptoms(symptoms []string) bool {
	for _, s := range symptoms {
		if s != "" && s != SentinelSymptom {
			return true
		}
	}
	return false
}

// #endregion intake

// #region result
// Result is the triage outcome for one case. Stages never edit a Result in
// place; they derive a new one with Clone or WithRationale.
type Result struct {
	CaseID              string   `json:"case_id,omitempty"`
	Urgency             Urgency  `json:"urgency"`
	GuardrailTriggered  bool     `json:"guardrail_triggered"`
	GuardrailReasons    []string `json:"guardrail_reasons,omitempty"`
	PatientVerified     bool     `json:"patient_verified"`
	PatientRecordFound  bool     `json:"patient_record_found"`
	PatientHistory      []string `json:"patient_history,omitempty"`
	RelevantScans       []string `json:"relevant_scans,omitempty"`
	Rationale           []string `json:"rationale"`
	ImmediateActions    []string `json:"immediate_actions"`
	RecommendedNextStep string   `json:"recommended_next_step"`
	EnvironmentGuidance []string `json:"environment_guidance,omitempty"`
	Summary             string   `json:"summary"`
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	out := r
	out.GuardrailReasons = CloneStrings(r.GuardrailReasons)
	out.PatientHistory = CloneStrings(r.PatientHistory)
	out.RelevantScans = CloneStrings(r.RelevantScans)
	out.Rationale = CloneStrings(r.Rationale)
	out.ImmediateActions = CloneStrings(r.ImmediateActions)
	out.EnvironmentGuidance = CloneStrings(r.EnvironmentGuidance)
	return out
}

// WithRationale returns a copy of r with lines appended to the rationale trail.
func (r Result) WithRationale(lines ...string) Result {
	out := r.Clone()
	out.Rationale = append(out.Rationale, lines...)
	return out
}

// CloneStrings copies a string slice, preserving nil.
func CloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// #endregion result
