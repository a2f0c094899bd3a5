package orchestrator

// #region imports
import (
	"context"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/logging"
	"github.com/danielpatrickdp/field-triage/internal/verify"
)

// #endregion

// #region phase

// Phase is a node of the conversation state machine.
type Phase string

const (
	PhaseVerifyUser           Phase = "verify_user"
	PhaseVerificationFollowup Phase = "verification_followup"
	PhaseGenerateIntake       Phase = "generate_intake"
	PhaseDecideEscalation     Phase = "decide_escalation"
	PhaseEscalate             Phase = "escalate"
	PhaseInitialResponse      Phase = "initial_response"
	PhaseFollowup             Phase = "followup"
	PhaseDone                 Phase = "done"
)

// #endregion

// #region session

// Session is the input for one conversation run.
type Session struct {
	intake.Session

	// CameraEstimate is compared with the claimed identity when the camera
	// is enabled.
	CameraEstimate verify.Estimate
	// VerificationAnswer answers the identity clarification question.
	VerificationAnswer string
	// Questions are follow-up questions asked after the initial response.
	Questions       []string
	ForceEscalation bool
}

// #endregion

// #region run-output

// RunOutput is the full record of one conversation run.
type RunOutput struct {
	CaseID               string             `json:"case_id"`
	Intake               clinical.Intake    `json:"intake"`
	Triage               clinical.Result    `json:"triage"`
	VerificationNotes    []string           `json:"verification_notes"`
	VerificationComplete bool               `json:"verification_complete"`
	Escalation           escalation.Outcome `json:"escalation"`
	EscalationFeedback   string             `json:"escalation_feedback,omitempty"`
	Dialogue             []string           `json:"dialogue"`
}

// #endregion

// #region recorder

// Recorder persists audit entries. *logging.Recorder satisfies it.
type Recorder interface {
	LogDecision(ctx context.Context, entry logging.CaseEntry) error
}

// #endregion

// #region config

// DefaultMaxQuestions bounds follow-up questions per run.
const DefaultMaxQuestions = 8

// Config holds orchestrator limits.
type Config struct {
	MaxQuestions int
	Verify       verify.Config
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MaxQuestions: DefaultMaxQuestions,
		Verify:       verify.DefaultConfig(),
	}
}

// #endregion
