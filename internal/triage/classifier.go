package triage

import (
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region keywords

// DefaultEmergencyKeywords escalate a case straight to emergency.
var DefaultEmergencyKeywords = []string{
	"severe chest pain", "difficulty breathing", "shortness of breath",
	"unconscious", "seizure", "stroke", "one-sided weakness",
	"heavy bleeding", "coughing blood", "suicidal",
}

// DefaultUrgentKeywords mark potentially serious patterns.
var DefaultUrgentKeywords = []string{
	"chest pain", "chest pressure", "pain in chest", "fever",
	"persistent vomiting", "dehydration", "worsening cough",
	"blood in urine", "abdominal pain", "pregnant with pain",
}

// #endregion keywords

// #region rationale-lines
const (
	rationaleEmergency = "Emergency symptom or critical oxygen level detected."
	rationaleUrgent    = "Potentially serious symptom pattern detected."
	rationaleRoutine   = "No hard emergency triggers detected from provided inputs."
	rationaleScans     = "Scan findings were included and considered for prioritization."
)

// #endregion rationale-lines

// #region config
// ClassifierConfig holds the keyword tables and SpO2 thresholds.
type ClassifierConfig struct {
	EmergencyKeywords []string
	UrgentKeywords    []string
	EmergencySpO2     int
	UrgentSpO2        int
}

// DefaultClassifierConfig returns the built-in tables with 90/94 thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		EmergencyKeywords: clinical.CloneStrings(DefaultEmergencyKeywords),
		UrgentKeywords:    clinical.CloneStrings(DefaultUrgentKeywords),
		EmergencySpO2:     90,
		UrgentSpO2:        94,
	}
}

// #endregion config

// #region classify

// Classify assigns an urgency tier from aggregated text and vitals. It is
// only consulted when the guardrail did not fire. The returned lines extend
// the rationale trail.
func Classify(cfg ClassifierConfig, text string, vitals clinical.VitalSigns, scanFindings string) (clinical.Urgency, []string) {
	lower := strings.ToLower(text)
	spo2 := vitals.SpO2Percent

	var urgency clinical.Urgency
	var lines []string
	switch {
	case containsAny(lower, cfg.EmergencyKeywords) || (spo2 != nil && *spo2 < cfg.EmergencySpO2):
		urgency = clinical.Emergency
		lines = append(lines, rationaleEmergency)
	case containsAny(lower, cfg.UrgentKeywords) || (spo2 != nil && *spo2 < cfg.UrgentSpO2):
		urgency = clinical.Urgent
		lines = append(lines, rationaleUrgent)
	default:
		urgency = clinical.Routine
		lines = append(lines, rationaleRoutine)
	}

	if strings.TrimSpace(scanFindings) != "" {
		lines = append(lines, rationaleScans)
	}
	return urgency, lines
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// #endregion classify
