package triage

import "github.com/danielpatrickdp/field-triage/internal/clinical"

// #region tiers
type tier struct {
	actions  []string
	nextStep string
}

var baseTiers = map[clinical.Urgency]tier{
	clinical.Emergency: {
		actions: []string{
			"Seek emergency care immediately.",
			"Do not delay for home treatment.",
			"If available, keep monitoring breathing and consciousness.",
		},
		nextStep: "Immediate emergency transfer",
	},
	clinical.Urgent: {
		actions: []string{
			"Arrange in-person clinical review as soon as possible (same day).",
			"Track symptoms and vitals every 2-4 hours.",
			"Escalate to emergency if symptoms worsen.",
		},
		nextStep: "Same-day clinical evaluation",
	},
	clinical.Routine: {
		actions: []string{
			"Supportive care and close monitoring at home.",
			"Hydration, rest, and symptom log.",
			"Escalate if new red-flag symptoms appear.",
		},
		nextStep: "Routine follow-up in 24-72 hours",
	},
}

// #endregion tiers

// #region base-recommendation
// BaseRecommendation maps an urgency to its fixed action list and next-step
// label. The returned slice is a fresh copy. Invalid urgencies get the
// emergency tier.
func BaseRecommendation(u clinical.Urgency) ([]string, string) {
	t, ok := baseTiers[u]
	if !ok {
		t = baseTiers[clinical.Emergency]
	}
	return clinical.CloneStrings(t.actions), t.nextStep
}

// #endregion base-recommendation
