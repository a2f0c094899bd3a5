package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
	"github.com/danielpatrickdp/field-triage/internal/verify"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded session and the outcome it must reproduce.
type FixtureCase struct {
	CaseID   string          `json:"case_id"`
	Session  FixtureSession  `json:"session"`
	Expected FixtureExpected `json:"expected"`
}

// FixtureSession mirrors orchestrator.Session with JSON tags.
type FixtureSession struct {
	Identity           clinical.Identity   `json:"identity"`
	Environment        string              `json:"environment"`
	Message            string              `json:"message"`
	Duration           string              `json:"duration"`
	Vitals             clinical.VitalSigns `json:"vitals"`
	ScanFindings       string              `json:"scan_findings"`
	ScanImagePath      string              `json:"scan_image_path"`
	CameraEnabled      bool                `json:"camera_enabled"`
	CameraAgeYears     *int                `json:"camera_age_years"`
	CameraSex          string              `json:"camera_sex"`
	VerificationAnswer string              `json:"verification_answer"`
	Answers            map[string]string   `json:"answers"`
	Questions          []string            `json:"questions"`
	ForceEscalation    bool                `json:"force_escalation"`
}

// FixtureExpected lists the checked outcome fields. Nil pointers and empty
// strings are not checked.
type FixtureExpected struct {
	Urgency              string `json:"urgency"`
	Guardrail            *bool  `json:"guardrail,omitempty"`
	EscalationCalled     *bool  `json:"escalation_called,omitempty"`
	NextStep             string `json:"recommended_next_step,omitempty"`
	VerificationComplete *bool  `json:"verification_complete,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToSession converts a FixtureSession to an orchestrator Session.
func (fs *FixtureSession) ToSession() orchestrator.Session {
	return orchestrator.Session{
		Session: intake.Session{
			Identity:      fs.Identity,
			Environment:   clinical.Environment(fs.Environment),
			Message:       fs.Message,
			Duration:      fs.Duration,
			Vitals:        fs.Vitals,
			ScanFindings:  fs.ScanFindings,
			ScanImagePath: fs.ScanImagePath,
			CameraEnabled: fs.CameraEnabled,
			Answers:       fs.Answers,
		},
		CameraEstimate:     verify.Estimate{AgeYears: fs.CameraAgeYears, Sex: fs.CameraSex},
		VerificationAnswer: fs.VerificationAnswer,
		Questions:          fs.Questions,
		ForceEscalation:    fs.ForceEscalation,
	}
}

// #endregion fixture-loader
