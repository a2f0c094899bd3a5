package gate

import "github.com/danielpatrickdp/field-triage/internal/clinical"

// #region trigger-type
// TriggerType enumerates hard guardrail categories.
type TriggerType string

const (
	TriggerNeuro         TriggerType = "neuro"
	TriggerConsciousness TriggerType = "consciousness"
	TriggerBleeding      TriggerType = "bleeding"
	TriggerRespiratory   TriggerType = "respiratory"
	TriggerCardiac       TriggerType = "cardiac"
	TriggerSelfHarm      TriggerType = "self_harm"
	TriggerOxygen        TriggerType = "oxygen"
)

// #endregion trigger-type

// #region trigger
// Trigger is one matched hard safety condition.
type Trigger struct {
	Type   TriggerType
	Term   string // matched phrase; empty for the SpO2 trigger
	Reason string
}

// HardTerm pairs a trigger phrase with its category.
type HardTerm struct {
	Phrase string      `yaml:"phrase" json:"phrase"`
	Type   TriggerType `yaml:"type" json:"type"`
}

// #endregion trigger

// #region gate-config
// GateConfig holds the guardrail vocabulary and oxygen threshold.
type GateConfig struct {
	HardTerms     []HardTerm
	EmergencySpO2 int // SpO2 strictly below this fires
}

// DefaultHardTerms is the built-in trigger vocabulary, checked in order.
var DefaultHardTerms = []HardTerm{
	{"unconscious", TriggerConsciousness},
	{"seizure", TriggerNeuro},
	{"stroke", TriggerNeuro},
	{"one-sided weakness", TriggerNeuro},
	{"suicidal", TriggerSelfHarm},
	{"coughing blood", TriggerBleeding},
	{"heavy bleeding", TriggerBleeding},
	{"possible active bleeding signal detected", TriggerBleeding},
	{"severe chest pain", TriggerCardiac},
	{"shortness of breath", TriggerRespiratory},
	{"difficulty breathing", TriggerRespiratory},
}

// DefaultGateConfig returns the built-in vocabulary and a 90% SpO2 threshold.
func DefaultGateConfig() GateConfig {
	terms := make([]HardTerm, len(DefaultHardTerms))
	copy(terms, DefaultHardTerms)
	return GateConfig{
		HardTerms:     terms,
		EmergencySpO2: 90,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of a guardrail screen. When Triggered is true
// Urgency is always emergency and Triggers is non-empty.
type GateDecision struct {
	Triggered bool
	Urgency   clinical.Urgency // empty when not triggered
	Triggers  []Trigger
}

// Reasons returns the human-readable reason of every trigger, in match order.
func (d GateDecision) Reasons() []string {
	if len(d.Triggers) == 0 {
		return nil
	}
	out := make([]string, len(d.Triggers))
	for i, t := range d.Triggers {
		out[i] = t.Reason
	}
	return out
}

// #endregion gate-decision
