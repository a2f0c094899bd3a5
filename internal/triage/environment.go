package triage

import "github.com/danielpatrickdp/field-triage/internal/clinical"

// #region profile
// Profile bundles the guidance and constraints of a deployment context.
type Profile struct {
	Name            clinical.Environment
	GuidanceNote    string
	EscalationNote  string
	CareConstraints []string
}

// Profiles indexes profiles by environment tag.
type Profiles map[clinical.Environment]Profile

// DefaultProfiles returns the three built-in environment profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		clinical.EnvStandard: {
			Name:           clinical.EnvStandard,
			GuidanceNote:   "Standard referral pathways are assumed to be available.",
			EscalationNote: "If red flags are present, proceed directly to hospital emergency care.",
		},
		clinical.EnvRemoteVillage: {
			Name:           clinical.EnvRemoteVillage,
			GuidanceNote:   "Remote setting with no physician nearby; nurse-led stabilization and monitoring are primary.",
			EscalationNote: "If emergency signs are present, arrange fastest available transport while continuing stabilization.",
			CareConstraints: []string{
				"No immediate physician access.",
				"Advanced imaging may not be available locally.",
				"Care plan should prioritize practical bedside monitoring steps.",
			},
		},
		clinical.EnvLimitedAccess: {
			Name:           clinical.EnvLimitedAccess,
			GuidanceNote:   "Public/private service access may be delayed or limited by cost and local availability.",
			EscalationNote: "For urgent cases, prioritize same-day SOR/NPL pathways and nearest available diagnostics.",
			CareConstraints: []string{
				"Some diagnostics (for example MRI) may be unavailable in the city.",
				"Budget constraints should be considered when proposing tests.",
				"Prefer stepwise diagnostics and feasible referrals.",
			},
		},
	}
}

// Lookup returns the profile for env, falling back to standard. The alias
// spelling of the resource-limited tag is accepted.
func (p Profiles) Lookup(env clinical.Environment) Profile {
	if prof, ok := p[clinical.NormalizeEnvironment(string(env))]; ok {
		return prof
	}
	if prof, ok := p[clinical.EnvStandard]; ok {
		return prof
	}
	return DefaultProfiles()[clinical.EnvStandard]
}

// #endregion profile

// #region overrides
type override struct {
	nextStep string // empty keeps the base next step
	actions  []string
}

var remoteOverrides = map[clinical.Urgency]override{
	clinical.Emergency: {
		nextStep: "Immediate nurse-led stabilization and transport coordination",
		actions:  []string{"Nurse should monitor airway, breathing, circulation continuously until transfer."},
	},
	clinical.Urgent: {
		nextStep: "Nurse assessment today with earliest feasible referral plan",
		actions:  []string{"Define referral trigger list if travel cannot happen immediately."},
	},
	clinical.Routine: {
		nextStep: "Scheduled nurse re-check within 24 hours",
		actions:  []string{"Schedule nurse re-check within 24 hours due to limited physician access."},
	},
}

var limitedAccessActions = []string{
	"Prefer available lower-cost diagnostics first when clinically safe.",
	"If MRI is unavailable locally, refer to nearest city only when it changes management.",
}

var limitedAccessOverrides = map[clinical.Urgency]override{
	clinical.Emergency: {nextStep: "Immediate SOR/ER referral with available local transport", actions: limitedAccessActions},
	clinical.Urgent:    {nextStep: "Same-day NPL/SOR assessment and stepwise low-cost diagnostics", actions: limitedAccessActions},
	clinical.Routine:   {nextStep: "Primary care follow-up with staged diagnostics based on affordability", actions: limitedAccessActions},
}

const (
	rationaleRemote  = "Recommendations adapted for remote village constraints."
	rationaleLimited = "Recommendations adapted for limited service and budget constraints."
)

// #endregion overrides

// #region adapt
// Adaptation is the environment-shaped recommendation.
type Adaptation struct {
	Actions   []string
	NextStep  string
	Guidance  []string // guidance note followed by care constraints
	Rationale []string
}

// Adapt applies exactly one environment profile to a base recommendation.
// Unknown tags are handled as standard. actions is not modified.
func Adapt(profiles Profiles, env clinical.Environment, u clinical.Urgency, actions []string, nextStep string) Adaptation {
	env = clinical.NormalizeEnvironment(string(env))
	prof := profiles.Lookup(env)

	out := Adaptation{
		Actions:  clinical.CloneStrings(actions),
		NextStep: nextStep,
		Guidance: append([]string{prof.GuidanceNote}, prof.CareConstraints...),
	}

	var table map[clinical.Urgency]override
	switch env {
	case clinical.EnvRemoteVillage:
		table = remoteOverrides
		out.Rationale = []string{rationaleRemote}
	case clinical.EnvLimitedAccess:
		table = limitedAccessOverrides
		out.Rationale = []string{rationaleLimited}
	default:
		out.Actions = append(out.Actions, prof.EscalationNote)
		return out
	}

	ov, ok := table[u]
	if !ok {
		ov = table[clinical.Emergency]
	}
	if ov.nextStep != "" {
		out.NextStep = ov.nextStep
	}
	out.Actions = append(out.Actions, ov.actions...)
	return out
}

// #endregion adapt
