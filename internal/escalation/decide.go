package escalation

import (
	"fmt"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region verdict
// Verdict is the tag of an escalation Decision.
type Verdict string

const (
	// VerdictSkip never calls the clinical model.
	VerdictSkip Verdict = "skip"
	// VerdictDefer leaves the choice to the cheap decider model.
	VerdictDefer Verdict = "defer"
	// VerdictForced always calls the clinical model.
	VerdictForced Verdict = "forced"
)

// Decision is the tagged escalation decision for one case.
type Decision struct {
	Verdict Verdict
	Reason  string
}

// #endregion verdict

// #region decide
// Decide picks the escalation verdict. Disabled wins over everything;
// non-routine urgency forces the call regardless of any model opinion; a
// caller override forces it for routine cases; otherwise the decider model
// is consulted.
func Decide(disabled bool, u clinical.Urgency, forced bool) Decision {
	switch {
	case disabled:
		return Decision{Verdict: VerdictSkip, Reason: "Disabled by TRIAGE_DISABLE_ESCALATION."}
	case u == clinical.Urgent || u == clinical.Emergency:
		return Decision{Verdict: VerdictForced, Reason: fmt.Sprintf("Automatic escalation call for non-routine triage (%s).", u)}
	case forced:
		return Decision{Verdict: VerdictForced, Reason: "Forced by session flag."}
	default:
		return Decision{Verdict: VerdictDefer, Reason: "Routine triage; deferring to decider model."}
	}
}

// #endregion decide

// #region outcome
// Outcome records whether the clinical model was called and why.
type Outcome struct {
	Called  bool    `json:"called"`
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason"`
}

// #endregion outcome
