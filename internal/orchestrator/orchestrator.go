package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
	"github.com/danielpatrickdp/field-triage/internal/dialogue"
	"github.com/danielpatrickdp/field-triage/internal/escalation"
	"github.com/danielpatrickdp/field-triage/internal/intake"
	"github.com/danielpatrickdp/field-triage/internal/logging"
	"github.com/danielpatrickdp/field-triage/internal/triage"
	"github.com/danielpatrickdp/field-triage/internal/verify"
)

// #endregion

// #region orchestrator-struct

// Deps are the pipeline components an Orchestrator drives. Nil fields get
// offline defaults: mock extractors, no patient store, no models, no audit.
type Deps struct {
	Intake   *intake.Loop
	Router   *triage.Router
	Arbiter  *escalation.Arbiter
	Dialogue *dialogue.Controller
	Recorder Recorder
}

// Orchestrator runs the conversation state machine over the triage pipeline.
type Orchestrator struct {
	cfg      Config
	intake   *intake.Loop
	router   *triage.Router
	arbiter  *escalation.Arbiter
	dialogue *dialogue.Controller
	recorder Recorder
	newID    func() string
}

// #endregion

// #region constructor

// New creates an orchestrator.
func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultMaxQuestions
	}
	if cfg.Verify.AgeTolerance <= 0 {
		cfg.Verify = verify.DefaultConfig()
	}
	o := &Orchestrator{
		cfg:      cfg,
		intake:   deps.Intake,
		router:   deps.Router,
		arbiter:  deps.Arbiter,
		dialogue: deps.Dialogue,
		recorder: deps.Recorder,
		newID:    uuid.NewString,
	}
	if o.intake == nil {
		o.intake = intake.NewLoop(nil, 0)
	}
	if o.router == nil {
		o.router = triage.NewRouter(triage.DefaultRouterConfig(), nil, nil)
	}
	if o.arbiter == nil {
		o.arbiter = escalation.NewArbiter(escalation.DefaultConfig(), nil, nil)
	}
	if o.dialogue == nil {
		o.dialogue = dialogue.NewController(nil, codec.DefaultBudget())
	}
	return o
}

// #endregion

// #region run

// Run drives one session from verification to the last follow-up answer.
func (o *Orchestrator) Run(ctx context.Context, sess Session) RunOutput {
	out, _ := o.RunTrace(ctx, sess)
	return out
}

// RunTrace is Run that also returns the sequence of executed phases.
func (o *Orchestrator) RunTrace(ctx context.Context, sess Session) (RunOutput, []Phase) {
	caseID := o.newID()
	questions := len(sess.Questions)
	if questions > o.cfg.MaxQuestions {
		log.Printf("[ORCH] case %s: %d follow-up questions, answering first %d", caseID, questions, o.cfg.MaxQuestions)
		questions = o.cfg.MaxQuestions
	}

	var c conversation
	var trace []Phase
	phase := PhaseVerifyUser
	for phase != PhaseDone {
		trace = append(trace, phase)
		c = o.step(ctx, phase, c, sess)
		phase = advance(phase, c, questions)
	}
	trace = append(trace, PhaseDone)

	c.triage.CaseID = caseID
	out := RunOutput{
		CaseID:               caseID,
		Intake:               c.intake,
		Triage:               c.triage,
		VerificationNotes:    clinical.CloneStrings(c.verification.Notes),
		VerificationComplete: c.verification.Complete,
		Escalation:           c.outcome,
		EscalationFeedback:   c.feedback,
		Dialogue:             c.dialogue,
	}
	log.Printf("[ORCH] case %s: urgency=%s guardrail=%t escalation=%t", caseID, out.Triage.Urgency, out.Triage.GuardrailTriggered, out.Escalation.Called)
	o.record(ctx, out)
	return out, trace
}

// RunFromSymptoms runs a session built from free text alone.
func (o *Orchestrator) RunFromSymptoms(ctx context.Context, text string, env clinical.Environment) RunOutput {
	return o.Run(ctx, Session{Session: intake.Session{Message: text, Environment: env}})
}

// #endregion

// #region step

func (o *Orchestrator) step(ctx context.Context, phase Phase, c conversation, sess Session) conversation {
	switch phase {
	case PhaseVerifyUser:
		c.verification = verify.Check(sess.Identity, sess.CameraEnabled, sess.CameraEstimate, o.cfg.Verify)

	case PhaseVerificationFollowup:
		c.verification = verify.Resolve(c.verification, sess.VerificationAnswer)

	case PhaseGenerateIntake:
		c.intake = o.intake.Run(sess.Session)
		c.triage = o.router.Run(ctx, c.intake)

	case PhaseDecideEscalation:
		c.decision = o.arbiter.Decide(c.triage.Urgency, sess.ForceEscalation)
		c.outcome = o.arbiter.Settle(ctx, c.decision, c.intake)
		log.Printf("[ORCH] escalation verdict=%s called=%t", c.outcome.Verdict, c.outcome.Called)

	case PhaseEscalate:
		reply := o.arbiter.Recommend(ctx, c.intake, c.triage)
		c.triage, c.feedback = o.arbiter.Reconcile(c.triage, reply)

	case PhaseInitialResponse:
		c = c.say(o.dialogue.Initial(dialogueContext(c.verification.Notes, c.outcome, c.triage, c.feedback)))

	case PhaseFollowup:
		q := sess.Questions[c.asked]
		answer := o.dialogue.Answer(ctx, q, dialogueContext(c.verification.Notes, c.outcome, c.triage, c.feedback))
		c = c.say(dialogue.SpeakerUser+q, answer)
		c.asked++
	}
	return c
}

func dialogueContext(notes []string, outcome escalation.Outcome, res clinical.Result, feedback string) dialogue.Context {
	return dialogue.Context{
		VerificationNotes:  notes,
		Escalation:         dialogue.EscalationSummary{Called: outcome.Called, Reason: outcome.Reason},
		Triage:             res,
		EscalationFeedback: feedback,
	}
}

// #endregion

// #region followup

// AnswerFollowup answers a question about a finished run. The caller owns
// out and decides whether to append the turn to its dialogue.
func (o *Orchestrator) AnswerFollowup(ctx context.Context, question string, out RunOutput) string {
	answer := o.dialogue.Answer(ctx, question, dialogueContext(out.VerificationNotes, out.Escalation, out.Triage, out.EscalationFeedback))
	if o.recorder == nil {
		return answer
	}
	payload, ok := payloadJSON(out.CaseID, map[string]string{"question": question, "answer": answer})
	if !ok {
		return answer
	}
	o.log(ctx, logging.CaseEntry{
		CaseID:           out.CaseID,
		TriggerType:      logging.TriggerFollowup,
		Urgency:          string(out.Triage.Urgency),
		Guardrail:        out.Triage.GuardrailTriggered,
		EscalationCalled: out.Escalation.Called,
		PayloadJSON:      payload,
	})
	return answer
}

// #endregion

// #region audit

func (o *Orchestrator) record(ctx context.Context, out RunOutput) {
	if o.recorder == nil {
		return
	}
	payload, ok := payloadJSON(out.CaseID, out)
	if !ok {
		return
	}
	o.log(ctx, logging.CaseEntry{
		CaseID:           out.CaseID,
		TriggerType:      logging.TriggerRun,
		Urgency:          string(out.Triage.Urgency),
		Guardrail:        out.Triage.GuardrailTriggered,
		EscalationCalled: out.Escalation.Called,
		EscalationReason: out.Escalation.Reason,
		PayloadJSON:      payload,
	})
}

// payloadJSON encodes an audit payload. Failures are logged and the entry
// is skipped.
func payloadJSON(caseID string, v any) (string, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[ORCH] marshal audit payload for case %s: %v", caseID, err)
		return "", false
	}
	return string(data), true
}

func (o *Orchestrator) log(ctx context.Context, entry logging.CaseEntry) {
	if err := o.recorder.LogDecision(ctx, entry); err != nil {
		log.Printf("[ORCH] audit write failed for case %s: %v", entry.CaseID, err)
	}
}

// #endregion
