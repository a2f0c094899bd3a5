package intake

import (
	"fmt"
	"log"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region states
// State is a node of the intake state machine.
type State string

const (
	StateInitialize     State = "initialize"
	StateCollectSignals State = "collect_signals"
	StateAssess         State = "assess_completeness"
	StateAskFollowup    State = "ask_followup"
	StateCamera         State = "camera_step"
	StateFinalize       State = "finalize"
)

// Required fields, in the order they are asked for.
const (
	FieldSymptoms = "symptoms"
	FieldDuration = "duration"
)

// DefaultMaxTurns bounds the number of non-finalizing iterations.
const DefaultMaxTurns = 4

const unknownAnswer = "unknown"

var questions = map[string]string{
	FieldDuration: "How long have these symptoms been present?",
	FieldSymptoms: "Can you describe your main symptoms in a few words?",
}

const genericQuestion = "Can you provide more details?"

// toolPrefix marks transcript lines written by the loop's own tools.
const toolPrefix = "Tool:"

// #endregion states

// #region session
// Session is the caller-supplied input for one intake run.
type Session struct {
	Identity      clinical.Identity
	Environment   clinical.Environment
	Message       string
	Duration      string
	Vitals        clinical.VitalSigns
	ScanFindings  string
	ScanImagePath string
	CameraEnabled bool
	// Answers holds pre-supplied follow-up answers keyed by field name.
	Answers map[string]string
}

// #endregion session

// #region loop-state
// loopState is the per-step record. Steps return a new value; slices are
// copied before append so earlier values stay intact.
type loopState struct {
	transcript []string
	aggregated string
	symptoms   []string
	duration   string
	missing    []string
	turns      int
	cameraDone bool
	scene      string
	findings   []string
}

func (s loopState) complete() bool {
	return len(s.missing) == 0
}

// patientLines drops tool output so only patient statements reach symptom
// extraction. Tool findings enter the record through findings.
func patientLines(transcript []string) []string {
	var out []string
	for _, line := range transcript {
		if !strings.HasPrefix(line, toolPrefix) {
			out = append(out, line)
		}
	}
	return out
}

func appendLine(lines []string, line string) []string {
	out := make([]string, len(lines), len(lines)+1)
	copy(out, lines)
	return append(out, line)
}

// #endregion loop-state

// #region transition
// next is the pure transition function of the intake machine. It is given
// the state just executed and the record it produced.
func next(current State, s loopState, cameraEnabled bool, maxTurns int) State {
	switch current {
	case StateInitialize, StateCamera, StateAskFollowup:
		return StateCollectSignals
	case StateCollectSignals:
		return StateAssess
	case StateAssess:
		if cameraEnabled && !s.cameraDone {
			return StateCamera
		}
		if s.complete() || s.turns >= maxTurns {
			return StateFinalize
		}
		return StateAskFollowup
	}
	return StateFinalize
}

// #endregion transition

// #region loop
// Loop runs the bounded intake state machine.
type Loop struct {
	extractor Extractor
	maxTurns  int
}

// NewLoop creates an intake loop. A nil extractor uses MockExtractor and a
// non-positive maxTurns uses DefaultMaxTurns.
func NewLoop(extractor Extractor, maxTurns int) *Loop {
	if extractor == nil {
		extractor = MockExtractor{}
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Loop{extractor: extractor, maxTurns: maxTurns}
}

// Run drives the machine from initialize to finalize and returns the intake.
func (l *Loop) Run(sess Session) clinical.Intake {
	in, _ := l.RunTrace(sess)
	return in
}

// RunTrace is Run that also returns the sequence of executed states.
func (l *Loop) RunTrace(sess Session) (clinical.Intake, []State) {
	state := StateInitialize
	var s loopState
	var trace []State
	for state != StateFinalize {
		trace = append(trace, state)
		s = l.apply(state, s, sess)
		state = next(state, s, sess.CameraEnabled, l.maxTurns)
	}
	trace = append(trace, StateFinalize)
	log.Printf("[INTAKE] finalized after %d turn(s), symptoms=%v", s.turns, s.symptoms)
	return l.finalize(s, sess), trace
}

// apply executes one non-final state.
func (l *Loop) apply(state State, s loopState, sess Session) loopState {
	switch state {
	case StateInitialize:
		opening := strings.TrimSpace(sess.Message)
		shown := opening
		if shown == "" {
			shown = "No initial statement."
		}
		return loopState{
			transcript: []string{"Patient opening statement: " + shown},
			aggregated: opening,
			duration:   strings.TrimSpace(sess.Duration),
		}

	case StateCollectSignals:
		s.symptoms = l.extractor.Symptoms(s.aggregated, patientLines(s.transcript))
		return s

	case StateAssess:
		var missing []string
		if !clinical.HasRealSymptoms(s.symptoms) {
			missing = append(missing, FieldSymptoms)
		}
		if s.duration == "" {
			missing = append(missing, FieldDuration)
		}
		s.missing = missing
		return s

	case StateCamera:
		scene := l.extractor.DescribeScene(s.aggregated)
		findings := l.extractor.ScanSkin(s.aggregated)
		shown := "[none]"
		if len(findings) > 0 {
			shown = "[" + strings.Join(findings, ", ") + "]"
		}
		s.transcript = appendLine(s.transcript, fmt.Sprintf("%scamera observation => %s; abrasions => %s", toolPrefix, scene, shown))
		s.scene = scene
		s.findings = findings
		s.cameraDone = true
		s.turns++
		return s

	case StateAskFollowup:
		field := ""
		if len(s.missing) > 0 {
			field = s.missing[0]
		}
		question, ok := questions[field]
		if !ok {
			question = genericQuestion
		}
		answer := strings.TrimSpace(sess.Answers[field])
		shown := answer
		if shown == "" {
			shown = unknownAnswer
		}
		s.transcript = appendLine(s.transcript, fmt.Sprintf("Q: %s A: %s", question, shown))
		if answer != "" {
			s.aggregated = strings.TrimSpace(s.aggregated + " " + answer)
			if field == FieldDuration {
				s.duration = answer
			}
		}
		s.turns++
		return s
	}
	return s
}

// finalize builds the immutable intake record.
func (l *Loop) finalize(s loopState, sess Session) clinical.Intake {
	symptoms := clinical.CloneStrings(s.symptoms)
	if len(symptoms) == 0 {
		symptoms = []string{clinical.SentinelSymptom}
	}
	return clinical.Intake{
		Identity:         sess.Identity,
		Symptoms:         symptoms,
		Duration:         s.duration,
		Notes:            strings.TrimSpace(s.aggregated),
		Transcript:       clinical.CloneStrings(s.transcript),
		SceneDescription: s.scene,
		Findings:         clinical.CloneStrings(s.findings),
		Vitals:           sess.Vitals,
		ScanFindings:     sess.ScanFindings,
		ScanImagePath:    sess.ScanImagePath,
		Environment:      clinical.NormalizeEnvironment(string(sess.Environment)),
	}
}

// #endregion loop
