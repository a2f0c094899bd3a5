package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/field-triage/internal/codec"
	"github.com/danielpatrickdp/field-triage/internal/dialogue"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/logging"
	"github.com/danielpatrickdp/field-triage/internal/orchestrator"
	"github.com/danielpatrickdp/field-triage/internal/store"
	"github.com/danielpatrickdp/field-triage/internal/triage"
)

// #region runtime

// healthTimeout bounds the startup health probe of each model backend.
const healthTimeout = 2 * time.Second

// Runtime is a fully wired pipeline built from Settings.
type Runtime struct {
	Settings     Settings
	Store        *store.Store // nil when opened without a store
	Recorder     *logging.Recorder
	Orchestrator *orchestrator.Orchestrator

	closers []func() error
}

// OpenRuntime opens both model backends and, when withStore is set, the
// patient store and audit log.
func OpenRuntime(s Settings, withStore bool) (*Runtime, error) {
	rt := &Runtime{Settings: s}

	decider, closeDecider, err := codec.Open(s.DeciderBackend())
	if err != nil {
		return nil, fmt.Errorf("open decider backend: %w", err)
	}
	rt.closers = append(rt.closers, closeDecider)
	checkHealth("decider", decider)

	clinicalModel, closeClinical, err := codec.Open(s.ClinicalBackend())
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open clinical backend: %w", err)
	}
	rt.closers = append(rt.closers, closeClinical)
	checkHealth("clinical", clinicalModel)

	var patients triage.PatientLookup
	var recorder orchestrator.Recorder
	if withStore {
		st, err := store.Open(s.Database.Driver, s.Database.DSN)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, st.Close)
		rt.Store = st
		rt.Recorder = logging.NewRecorder(st)
		patients = st
		recorder = rt.Recorder
	}

	rt.Orchestrator = orchestrator.New(s.OrchestratorConfig(), orchestrator.Deps{
		Intake:   intake.NewLoop(nil, s.MaxIntakeTurns),
		Router:   triage.NewRouter(s.RouterConfig(), patients, clinicalModel),
		Arbiter:  escalation.NewArbiter(s.ArbiterConfig(), decider, clinicalModel),
		Dialogue: dialogue.NewController(decider, s.CallBudget()),
		Recorder: recorder,
	})
	log.Printf("[CONFIG] runtime ready: env=%s location=%q decider=%s clinical=%s store=%t",
		s.Env(), s.LocationLabel, s.DeciderBackend().Kind, s.ClinicalBackend().Kind, withStore)
	return rt, nil
}

type healthChecker interface {
	Health(ctx context.Context) (string, error)
}

// checkHealth logs the model a backend reports. Backends without a health
// endpoint are skipped and failures are not fatal.
func checkHealth(role string, g codec.Generator) (string, error) {
	hc, ok := g.(healthChecker)
	if !ok {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()
	model, err := hc.Health(ctx)
	if err != nil {
		log.Printf("[CONFIG] %s backend health check failed: %v", role, err)
		return "", err
	}
	log.Printf("[CONFIG] %s backend serving model %q", role, model)
	return model, nil
}

// Close releases backends and the store in reverse open order.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// #endregion runtime
