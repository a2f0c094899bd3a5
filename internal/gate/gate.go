package gate

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region gate
// Gate screens aggregated case text and vitals for hard safety triggers.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Screen collects every hard trigger present in text and vitals. Matching is
// a case-insensitive substring search. Any trigger forces emergency.
func (g *Gate) Screen(text string, vitals clinical.VitalSigns) GateDecision {
	lower := strings.ToLower(text)
	var triggers []Trigger

	for _, term := range g.config.HardTerms {
		phrase := strings.ToLower(strings.TrimSpace(term.Phrase))
		if phrase == "" || !strings.Contains(lower, phrase) {
			continue
		}
		triggers = append(triggers, Trigger{
			Type:   term.Type,
			Term:   term.Phrase,
			Reason: fmt.Sprintf("Detected guardrail symptom: %s.", term.Phrase),
		})
	}

	if vitals.SpO2Percent != nil && *vitals.SpO2Percent < g.config.EmergencySpO2 {
		triggers = append(triggers, Trigger{
			Type: TriggerOxygen,
			Reason: fmt.Sprintf("Detected critical SpO2: %d%% below emergency threshold %d%%.",
				*vitals.SpO2Percent, g.config.EmergencySpO2),
		})
	}

	if len(triggers) == 0 {
		return GateDecision{}
	}
	return GateDecision{
		Triggered: true,
		Urgency:   clinical.Emergency,
		Triggers:  triggers,
	}
}

// #endregion gate
