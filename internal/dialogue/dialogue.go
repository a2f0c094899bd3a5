package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
	"github.com/danielpatrickdp/field-triage/internal/codec"
)

// #region constants
const (
	// SpeakerAssistant prefixes every assistant turn.
	SpeakerAssistant = "Assistant: "
	// SpeakerUser prefixes every user turn.
	SpeakerUser = "User: "

	maxFeedbackChars = 1200
	maxRecapActions  = 3

	generalSupport = "This is a general support question. I can help with practical non-medical guidance, logistics, and next steps."
)

var (
	thoughtMarker = regexp.MustCompile(`(?i)<unused\d+>\s*thought\b`)
	thinkBlock    = regexp.MustCompile(`(?is)<think>.*?</think>`)
)

// #endregion constants

// #region context
// Context is the triage state a conversation is grounded on.
type Context struct {
	VerificationNotes  []string
	Escalation         EscalationSummary
	Triage             clinical.Result
	EscalationFeedback string
}

// EscalationSummary is the escalation record shown in the opening turn.
type EscalationSummary struct {
	Called bool
	Reason string
}

// #endregion context

// #region controller
// Controller produces assistant turns. The generator may be nil, in which
// case every free-form answer uses the templated fallback.
type Controller struct {
	gen    codec.Generator
	budget codec.Budget
}

// NewController creates a dialogue controller.
func NewController(gen codec.Generator, budget codec.Budget) *Controller {
	return &Controller{gen: gen, budget: budget}
}

// Initial renders the opening assistant turn.
func (c *Controller) Initial(dc Context) string {
	msg := fmt.Sprintf("Verification notes: %s Escalation model called: %t (%s). Triage urgency: %s. Recommended next step: %s.",
		sentence(strings.Join(dc.VerificationNotes, " ")), dc.Escalation.Called, dc.Escalation.Reason,
		dc.Triage.Urgency, dc.Triage.RecommendedNextStep)
	if fb := strings.TrimSpace(dc.EscalationFeedback); fb != "" {
		msg += " Escalation feedback: " + fb
	}
	return SpeakerAssistant + msg
}

// Answer replies to one follow-up question. Recap questions never reach the
// generator.
func (c *Controller) Answer(ctx context.Context, question string, dc Context) string {
	if IsRecap(question) {
		return SpeakerAssistant + Recap(dc.Triage)
	}

	text, ok := codec.Call(ctx, c.gen, codec.Request{Prompt: buildPrompt(question, dc)}, c.budget)
	answer := ""
	if ok {
		answer = Clean(text)
	}
	if answer == "" {
		answer = fallback(question, dc.Triage)
	}
	return SpeakerAssistant + answer
}

// #endregion controller

// #region prompt
func buildPrompt(question string, dc Context) string {
	feedback := strings.TrimSpace(dc.EscalationFeedback)
	if r := []rune(feedback); len(r) > maxFeedbackChars {
		feedback = string(r[:maxFeedbackChars]) + "..."
	}
	if feedback == "" {
		feedback = "none"
	}

	var b strings.Builder
	b.WriteString("You are a concise clinical assistant handling patient follow-up questions.\n")
	b.WriteString("Answer directly in plain text (max 3 short sentences), no markdown, no bullet list, no chain-of-thought.\n")
	b.WriteString("If the user asks logistics or transport, provide practical local-next-step guidance.\n")
	b.WriteString("If the user asks medical follow-up, align with the triage urgency and recommended next step.\n")
	fmt.Fprintf(&b, "Verification notes: %s\n", strings.Join(dc.VerificationNotes, " "))
	fmt.Fprintf(&b, "Triage urgency: %s\n", dc.Triage.Urgency)
	fmt.Fprintf(&b, "Triage recommended next step: %s\n", dc.Triage.RecommendedNextStep)
	fmt.Fprintf(&b, "Triage immediate actions: %s\n", strings.Join(dc.Triage.ImmediateActions, " | "))
	fmt.Fprintf(&b, "Escalation context (optional): %s\n", feedback)
	fmt.Fprintf(&b, "User follow-up question: %s\n", question)
	b.WriteString("Return only the assistant answer text.")
	return b.String()
}

// #endregion prompt

// #region post-process
// Clean strips reasoning markers and speaker tags from a model answer and
// returns "" when the answer is unusable.
func Clean(answer string) string {
	answer = thinkBlock.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(thoughtMarker.ReplaceAllString(answer, ""))
	if looksLikeCaseAnalysis(answer) || strings.HasPrefix(answer, codec.FallbackBanner) {
		return ""
	}
	if len(answer) >= len("assistant:") && strings.EqualFold(answer[:len("assistant:")], "assistant:") {
		answer = strings.TrimSpace(answer[len("assistant:"):])
	}
	return answer
}

func looksLikeCaseAnalysis(answer string) bool {
	return containsAny(strings.ToLower(answer), caseAnalysisMarkers)
}

// #endregion post-process

// #region recap
// IsRecap reports whether question asks to repeat the plan.
func IsRecap(question string) bool {
	return containsAny(strings.ToLower(question), recapTriggers)
}

// Recap lists the top actions and next step of r.
func Recap(r clinical.Result) string {
	var items []string
	for _, a := range r.ImmediateActions {
		if a = strings.TrimSpace(a); a != "" {
			items = append(items, fmt.Sprintf("%d) %s", len(items)+1, a))
		}
		if len(items) == maxRecapActions {
			break
		}
	}
	if len(items) == 0 {
		return fmt.Sprintf("Urgency is %s. Next step: %s.", r.Urgency, r.RecommendedNextStep)
	}
	return fmt.Sprintf("Urgency is %s. Do this now: %s. Next step: %s.",
		r.Urgency, strings.Join(items, "; "), r.RecommendedNextStep)
}

func fallback(question string, r clinical.Result) string {
	if !containsAny(strings.ToLower(question), medicalTerms) {
		return generalSupport
	}
	return fmt.Sprintf("Based on current triage, urgency remains %s. Next step: %s.", r.Urgency, r.RecommendedNextStep)
}

// sentence terminates s with a period, or returns "none." when s is blank.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "none."
	case strings.HasSuffix(s, "."):
		return s
	}
	return s + "."
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// #endregion recap
