package orchestrator

import (
	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/verify"
)

// #region conversation

// conversation is the per-step record of a run. Steps return a new value;
// the dialogue slice is copied before append.
type conversation struct {
	verification verify.Result
	intake       clinical.Intake
	triage       clinical.Result
	decision     escalation.Decision
	outcome      escalation.Outcome
	feedback     string
	dialogue     []string
	asked        int
}

func (c conversation) say(lines ...string) conversation {
	out := make([]string, len(c.dialogue), len(c.dialogue)+len(lines))
	copy(out, c.dialogue)
	c.dialogue = append(out, lines...)
	return c
}

// #endregion

// #region transition

// advance is the pure transition function of the conversation machine.
// questions is the number of follow-up questions that will be answered.
func advance(current Phase, c conversation, questions int) Phase {
	switch current {
	case PhaseVerifyUser:
		if c.verification.Mismatch {
			return PhaseVerificationFollowup
		}
		return PhaseGenerateIntake
	case PhaseVerificationFollowup:
		return PhaseGenerateIntake
	case PhaseGenerateIntake:
		return PhaseDecideEscalation
	case PhaseDecideEscalation:
		if c.outcome.Called {
			return PhaseEscalate
		}
		return PhaseInitialResponse
	case PhaseEscalate:
		return PhaseInitialResponse
	case PhaseInitialResponse, PhaseFollowup:
		if c.asked < questions {
			return PhaseFollowup
		}
		return PhaseDone
	}
	return PhaseDone
}

// #endregion
