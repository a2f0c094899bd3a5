package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
)

// #region config
// Config controls the arbiter.
type Config struct {
	Disabled       bool
	DeciderBudget  codec.Budget
	ClinicalBudget codec.Budget
	Heuristics     Heuristics
}

// DefaultConfig returns a short decider budget and the default clinical one.
func DefaultConfig() Config {
	decider := codec.DefaultBudget()
	decider.MaxNewTokens = 96
	return Config{
		DeciderBudget:  decider,
		ClinicalBudget: codec.DefaultBudget(),
		Heuristics:     DefaultHeuristics(),
	}
}

// #endregion config

// #region arbiter
// Arbiter decides whether to call the clinical model and folds its reply
// back into the triage result. The decider is the cheap text model and
// clinical is the multimodal one; either may be nil.
type Arbiter struct {
	cfg      Config
	decider  codec.Generator
	clinical codec.Generator
}

// NewArbiter creates an arbiter.
func NewArbiter(cfg Config, decider, clinicalModel codec.Generator) *Arbiter {
	if cfg.Heuristics.UrgencyOrder == nil {
		cfg.Heuristics = DefaultHeuristics()
	}
	return &Arbiter{cfg: cfg, decider: decider, clinical: clinicalModel}
}

// Decide applies the configured disable switch to Decide.
func (a *Arbiter) Decide(u clinical.Urgency, forced bool) Decision {
	return Decide(a.cfg.Disabled, u, forced)
}

// Settle turns a Decision into an Outcome, consulting the decider model
// only for deferred decisions.
func (a *Arbiter) Settle(ctx context.Context, d Decision, in clinical.Intake) Outcome {
	switch d.Verdict {
	case VerdictForced:
		return Outcome{Called: true, Verdict: d.Verdict, Reason: d.Reason}
	case VerdictDefer:
		call, reason := a.Classify(ctx, in)
		return Outcome{Called: call, Verdict: d.Verdict, Reason: reason}
	default:
		return Outcome{Called: false, Verdict: d.Verdict, Reason: d.Reason}
	}
}

// #endregion arbiter

// #region classify
const deciderPrompt = `You route field triage cases. Decide whether this case needs review by a multimodal clinical model.
Answer YES or NO on the first line, then one short reason.
Symptoms: %s
Duration: %s
Notes: %s
Scan findings: %s
Scan image attached: %t`

// Classify asks the decider model for a YES/NO escalation verdict. An
// unavailable or unclear decider means no call.
func (a *Arbiter) Classify(ctx context.Context, in clinical.Intake) (bool, string) {
	prompt := fmt.Sprintf(deciderPrompt,
		strings.Join(in.Symptoms, ", "), orNone(in.Duration), orNone(in.Notes),
		orNone(in.ScanFindings), in.ScanImagePath != "")

	text, ok := codec.Call(ctx, a.decider, codec.Request{Prompt: prompt}, a.cfg.DeciderBudget)
	if !ok {
		return false, "Decider unavailable; keeping deterministic triage."
	}
	call, reason, parsed := parseYesNo(text)
	if !parsed {
		log.Printf("[ESCALATE] unclear decider answer: %.80q", text)
		return false, "Decider answer unclear; keeping deterministic triage."
	}
	verdict := "NO"
	if call {
		verdict = "YES"
	}
	if reason == "" {
		return call, "Decider: " + verdict + "."
	}
	return call, "Decider: " + verdict + " - " + reason
}

// parseYesNo reads a leading YES or NO and returns the remaining text.
func parseYesNo(text string) (bool, string, bool) {
	trimmed := strings.TrimSpace(text)
	word, rest, _ := strings.Cut(trimmed, "\n")
	fields := strings.Fields(word)
	if len(fields) == 0 {
		return false, "", false
	}
	head := strings.ToLower(strings.Trim(fields[0], ".,:;!*\"'"))
	reason := strings.TrimSpace(strings.Join(fields[1:], " ") + " " + rest)
	reason = strings.TrimLeft(reason, "-:,. ")
	switch head {
	case "yes":
		return true, reason, true
	case "no":
		return false, reason, true
	}
	return false, "", false
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

// #endregion classify

// #region recommend
const clinicalPrompt = `You are a clinical decision-support model reviewing a field triage case.
Respond with strict JSON only, using exactly these keys:
{"urgency": "emergency|urgent|routine", "recommended_next_step": "...", "immediate_actions": ["..."], "rationale": "..."}
Case intake: %s
Current triage urgency: %s
Current next step: %s
Current actions: %s
Guardrail reasons: %s
Environment guidance: %s`

// Recommend asks the clinical model for recommendations. An empty Raw in the
// result means the model did not answer.
func (a *Arbiter) Recommend(ctx context.Context, in clinical.Intake, prior clinical.Result) ModelOutput {
	intakeJSON, err := json.Marshal(in)
	if err != nil {
		intakeJSON = []byte("{}")
	}
	prompt := fmt.Sprintf(clinicalPrompt,
		intakeJSON, prior.Urgency, prior.RecommendedNextStep,
		strings.Join(prior.ImmediateActions, " | "),
		orNone(strings.Join(prior.GuardrailReasons, " | ")),
		orNone(strings.Join(prior.EnvironmentGuidance, " | ")))

	text, ok := codec.Call(ctx, a.clinical, codec.Request{Prompt: prompt, ImagePath: in.ScanImagePath}, a.cfg.ClinicalBudget)
	if !ok {
		log.Printf("[ESCALATE] clinical model unavailable")
		return ModelOutput{}
	}
	return NewModelOutput(text)
}

// Reconcile applies the configured heuristics to Reconcile.
func (a *Arbiter) Reconcile(prior clinical.Result, out ModelOutput) (clinical.Result, string) {
	return Reconcile(prior, out, a.cfg.Heuristics)
}

// #endregion recommend
