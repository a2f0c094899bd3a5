package triage

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

func TestAggregate(t *testing.T) {
	in := clinical.Intake{
		Symptoms:         []string{"Cough"},
		Notes:            "Started Tuesday",
		ScanFindings:     "Opacity Left Lobe",
		Transcript:       []string{"Q: a A: b"},
		SceneDescription: "Seated",
		Findings:         []string{"Possible superficial abrasion detected"},
	}
	got := Aggregate(in, []string{"Asthma"}, []string{"2023 X-RAY"})
	for _, want := range []string{"cough", "started tuesday", "opacity left lobe", "q: a a: b", "seated", "abrasion", "asthma", "2023 x-ray"} {
		if !strings.Contains(got, want) {
			t.Errorf("aggregate %q missing %q", got, want)
		}
	}
	if got != strings.ToLower(got) {
		t.Error("aggregate must be lower case")
	}
}

func TestSelectRelevantScans(t *testing.T) {
	scans := []string{
		"2021 abdominal ultrasound normal",
		"2022 chest x-ray clear",
		"2023 knee MRI",
		"2024 chest CT follow-up",
		"2024 chest x-ray mild opacity",
		"2025 chest x-ray clear",
	}
	tests := []struct {
		name     string
		scans    []string
		symptoms []string
		want     []string
	}{
		{"no scans", nil, []string{"chest pain"}, nil},
		{"match capped at three", scans, []string{"chest pain"}, []string{scans[1], scans[3], scans[4]}},
		{"no match takes last two", scans, []string{"fever"}, scans[4:]},
		{"short tokens ignored", scans, []string{"cut", "leg"}, scans[4:]},
		{"single scan", scans[:1], []string{"rash"}, scans[:1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRelevantScans(tt.scans, tt.symptoms)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
