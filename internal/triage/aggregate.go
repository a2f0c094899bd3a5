package triage

import (
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region aggregate
// Aggregate joins every free-text signal of a case into one lower-cased
// blob used for keyword matching.
func Aggregate(in clinical.Intake, history, scans []string) string {
	parts := []string{
		strings.Join(in.Symptoms, " "),
		in.Notes,
		in.ScanFindings,
		strings.Join(in.Transcript, " "),
		in.SceneDescription,
		strings.Join(in.Findings, " "),
		strings.Join(history, " "),
		strings.Join(scans, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// #endregion aggregate

// #region scan-selection
const (
	maxMatchedScans = 3
	recentScans     = 2
	minTokenLen     = 4
)

// SelectRelevantScans returns up to three scans sharing a word of four or
// more letters with a symptom label, else the two most recent scans.
func SelectRelevantScans(scans, symptoms []string) []string {
	if len(scans) == 0 {
		return nil
	}

	var tokens []string
	seen := make(map[string]bool)
	for _, s := range symptoms {
		for _, tok := range strings.Fields(strings.ToLower(s)) {
			if len(tok) >= minTokenLen && !seen[tok] {
				seen[tok] = true
				tokens = append(tokens, tok)
			}
		}
	}

	if len(tokens) > 0 {
		var matched []string
		for _, scan := range scans {
			lower := strings.ToLower(scan)
			for _, tok := range tokens {
				if strings.Contains(lower, tok) {
					matched = append(matched, scan)
					break
				}
			}
			if len(matched) == maxMatchedScans {
				break
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}

	start := len(scans) - recentScans
	if start < 0 {
		start = 0
	}
	return clinical.CloneStrings(scans[start:])
}

// #endregion scan-selection
