package intake

import (
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region extractor
// Extractor turns raw patient text into symptom labels and simulated camera
// observations.
type Extractor interface {
	// Symptoms returns normalized symptom labels; never empty.
	Symptoms(text string, transcript []string) []string
	// DescribeScene returns a one-sentence camera scene description.
	DescribeScene(text string) string
	// ScanSkin returns visible-injury findings; may be empty.
	ScanSkin(text string) []string
}

// #endregion extractor

// #region symptom-table
type symptomRule struct {
	label    string
	variants []string
}

// symptomRules is checked in order; each label is emitted at most once.
var symptomRules = []symptomRule{
	{"shortness of breath", []string{"shortness of breath", "breathless", "difficulty breathing"}},
	{"chest pain", []string{"chest pain"}},
	{"fever", []string{"fever", "high temperature"}},
	{"cough", []string{"cough"}},
	{"abdominal pain", []string{"abdominal pain", "stomach pain"}},
	{"vomiting", []string{"vomiting", "vomit"}},
	{"bleeding", []string{"bleeding", "blood loss"}},
	{"abrasion", []string{"abrasion", "scrape", "wound", "cut"}},
}

// #endregion symptom-table

// #region scene-table
const (
	sceneBreathing = "Patient appears fatigued with mild increased breathing effort."
	sceneInjury    = "Visible superficial skin injury noted on exposed area."
	sceneStable    = "Patient visible in stable seated posture; no obvious distress detected."

	findingAbrasion = "Possible superficial abrasion detected"
	findingBleeding = "Possible active bleeding signal detected"
)

var (
	breathingCues = []string{"cough", "breath"}
	injuryCues    = []string{"wound", "cut", "abrasion"}
	abrasionCues  = []string{"abrasion", "scrape", "cut", "wound"}
)

// #endregion scene-table

// #region mock
// MockExtractor is a keyword-table stand-in for the interview and camera
// models.
type MockExtractor struct{}

// Symptoms matches the symptom table against text and transcript.
func (MockExtractor) Symptoms(text string, transcript []string) []string {
	lower := strings.ToLower(text + " " + strings.Join(transcript, " "))
	var out []string
	for _, rule := range symptomRules {
		if anyIn(lower, rule.variants) {
			out = append(out, rule.label)
		}
	}
	if len(out) == 0 {
		return []string{clinical.SentinelSymptom}
	}
	return out
}

// DescribeScene picks a canned description from breathing and injury cues.
func (MockExtractor) DescribeScene(text string) string {
	lower := strings.ToLower(text)
	switch {
	case anyIn(lower, breathingCues):
		return sceneBreathing
	case anyIn(lower, injuryCues):
		return sceneInjury
	default:
		return sceneStable
	}
}

// ScanSkin reports abrasion and bleeding findings.
func (MockExtractor) ScanSkin(text string) []string {
	lower := strings.ToLower(text)
	var findings []string
	if anyIn(lower, abrasionCues) {
		findings = append(findings, findingAbrasion)
	}
	if strings.Contains(lower, "bleeding") {
		findings = append(findings, findingBleeding)
	}
	return findings
}

func anyIn(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// #endregion mock
