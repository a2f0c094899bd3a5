package triage

import (
	"context"
	"log"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
	"github.com/danielpatrickdp/field-triage/internal/gate"
)

// #region lookup
// PatientLookup finds stored history and scans for a claimed identity.
// found is false when no record matches; err is reserved for store failures.
type PatientLookup interface {
	Lookup(ctx context.Context, firstName, lastName, idNumber string) (history, scans []string, found bool, err error)
}

// #endregion lookup

// #region rationale-lines
const (
	rationaleRecordFound   = "Patient identity verified and local history was retrieved."
	rationaleNoRecord      = "Patient identity provided, but no local record was found."
	rationaleNoIdentity    = "Patient identity was not fully provided; proceeding without history lookup."
	rationaleGuardrailHeld = "Safety guardrail override applied."
)

// #endregion rationale-lines

// #region config
// RouterConfig bundles the deterministic tables used by the router.
type RouterConfig struct {
	Gate       gate.GateConfig
	Classifier ClassifierConfig
	Profiles   Profiles
	Budget     codec.Budget
}

// DefaultRouterConfig returns the built-in tables.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Gate:       gate.DefaultGateConfig(),
		Classifier: DefaultClassifierConfig(),
		Profiles:   DefaultProfiles(),
		Budget:     codec.DefaultBudget(),
	}
}

// #endregion config

// #region router
// Router runs the deterministic triage pipeline for one intake. A Router
// holds no per-case state and may be shared across goroutines when its
// collaborators are safe for concurrent use.
type Router struct {
	cfg        RouterConfig
	gate       *gate.Gate
	patients   PatientLookup
	summarizer *Summarizer
}

// NewRouter creates a router. patients and gen may be nil.
func NewRouter(cfg RouterConfig, patients PatientLookup, gen codec.Generator) *Router {
	if cfg.Profiles == nil {
		cfg.Profiles = DefaultProfiles()
	}
	return &Router{
		cfg:        cfg,
		gate:       gate.NewGate(cfg.Gate),
		patients:   patients,
		summarizer: NewSummarizer(gen, cfg.Budget),
	}
}

// Run executes identity check, record lookup, scan selection, guardrail,
// classification, recommendation, environment shaping and summarization.
func (r *Router) Run(ctx context.Context, in clinical.Intake) clinical.Result {
	res := clinical.Result{PatientVerified: in.Identity.Complete()}

	// Identity and history
	if res.PatientVerified {
		history, scans, found := r.lookup(ctx, in.Identity)
		res.PatientRecordFound = found
		if found {
			res.PatientHistory = history
			res.RelevantScans = SelectRelevantScans(scans, in.Symptoms)
			res.Rationale = append(res.Rationale, rationaleRecordFound)
		} else {
			res.Rationale = append(res.Rationale, rationaleNoRecord)
		}
	} else {
		res.Rationale = append(res.Rationale, rationaleNoIdentity)
	}

	text := Aggregate(in, res.PatientHistory, res.RelevantScans)

	// Guardrail, then classifier when the guardrail is silent
	decision := r.gate.Screen(text, in.Vitals)
	if decision.Triggered {
		res.Urgency = decision.Urgency
		res.GuardrailTriggered = true
		res.GuardrailReasons = decision.Reasons()
		res.Rationale = append(res.Rationale, rationaleGuardrailHeld)
		log.Printf("[TRIAGE] guardrail fired: %d trigger(s)", len(decision.Triggers))
	} else {
		u, lines := Classify(r.cfg.Classifier, text, in.Vitals, in.ScanFindings)
		res.Urgency = u
		res.Rationale = append(res.Rationale, lines...)
	}

	// Recommendations shaped by environment
	actions, next := BaseRecommendation(res.Urgency)
	adapted := Adapt(r.cfg.Profiles, in.Environment, res.Urgency, actions, next)
	res.ImmediateActions = adapted.Actions
	res.RecommendedNextStep = adapted.NextStep
	res.EnvironmentGuidance = adapted.Guidance
	res.Rationale = append(res.Rationale, adapted.Rationale...)

	res.Summary = r.summarizer.Summarize(ctx, SummaryInput{
		Intake:              in,
		Urgency:             res.Urgency,
		Rationale:           res.Rationale,
		Actions:             res.ImmediateActions,
		NextStep:            res.RecommendedNextStep,
		EnvironmentGuidance: res.EnvironmentGuidance,
		History:             res.PatientHistory,
		Scans:               res.RelevantScans,
		GuardrailReasons:    res.GuardrailReasons,
	})

	return res.Clone()
}

func (r *Router) lookup(ctx context.Context, id clinical.Identity) ([]string, []string, bool) {
	if r.patients == nil {
		return nil, nil, false
	}
	history, scans, found, err := r.patients.Lookup(ctx, id.FirstName, id.LastName, id.IDNumber)
	if err != nil {
		log.Printf("[TRIAGE] patient lookup failed: %v", err)
		return nil, nil, false
	}
	return history, scans, found
}

// #endregion router
