package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
)

// #region summary-input
// SummaryInput is the decision trail handed to the summarizer.
type SummaryInput struct {
	Intake              clinical.Intake
	Urgency             clinical.Urgency
	Rationale           []string
	Actions             []string
	NextStep            string
	EnvironmentGuidance []string
	History             []string
	Scans               []string
	GuardrailReasons    []string
}

// #endregion summary-input

// #region prompt
const (
	noHistoryLine = "No prior history found in local DB."
	noScansLine   = "No relevant prior scans found in local DB."
)

// BuildSummaryPrompt renders the decision trail as a plain-language
// summarization request.
func BuildSummaryPrompt(in SummaryInput) string {
	intakeJSON, err := json.Marshal(in.Intake)
	if err != nil {
		intakeJSON = []byte("{}")
	}
	history := in.History
	if len(history) == 0 {
		history = []string{noHistoryLine}
	}
	scans := in.Scans
	if len(scans) == 0 {
		scans = []string{noScansLine}
	}

	var b strings.Builder
	b.WriteString("You are a medical triage assistant. Summarize this case for a field worker in plain language. ")
	b.WriteString("Do not provide definitive diagnosis.\n")
	fmt.Fprintf(&b, "Intake: %s\n", intakeJSON)
	fmt.Fprintf(&b, "Urgency: %s\n", in.Urgency)
	fmt.Fprintf(&b, "Rationale: %s\n", quoteList(in.Rationale))
	fmt.Fprintf(&b, "Immediate actions: %s\n", quoteList(in.Actions))
	fmt.Fprintf(&b, "Next step: %s\n", in.NextStep)
	fmt.Fprintf(&b, "Environment guidance: %s\n", quoteList(in.EnvironmentGuidance))
	fmt.Fprintf(&b, "Patient history context: %s\n", quoteList(history))
	fmt.Fprintf(&b, "Relevant prior scans context: %s\n", quoteList(scans))
	fmt.Fprintf(&b, "Guardrail reasons: %s\n", quoteList(in.GuardrailReasons))
	return b.String()
}

// DefaultSummary is the deterministic summary used when no model answers.
func DefaultSummary(u clinical.Urgency, actions []string, nextStep string) string {
	return fmt.Sprintf("Preliminary triage level: %s. Immediate actions: %s Recommended next step: %s.",
		u, strings.Join(actions, " "), nextStep)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// #endregion prompt

// #region summarizer
// Summarizer produces the narrative summary through a generator and falls
// back to DefaultSummary.
type Summarizer struct {
	gen    codec.Generator
	budget codec.Budget
}

// NewSummarizer creates a summarizer. gen may be nil.
func NewSummarizer(gen codec.Generator, budget codec.Budget) *Summarizer {
	return &Summarizer{gen: gen, budget: budget}
}

// Summarize never fails; model problems yield the templated summary.
func (s *Summarizer) Summarize(ctx context.Context, in SummaryInput) string {
	req := codec.Request{
		Prompt:    BuildSummaryPrompt(in),
		ImagePath: in.Intake.ScanImagePath,
	}
	if text, ok := codec.Call(ctx, s.gen, req, s.budget); ok && !strings.HasPrefix(text, codec.FallbackBanner) {
		return text
	}
	log.Printf("[TRIAGE] summary generator unavailable, using template")
	return DefaultSummary(in.Urgency, in.Actions, in.NextStep)
}

// #endregion summarizer
