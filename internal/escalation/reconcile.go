package escalation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region model-output
// Structured is the JSON shape requested from the clinical model.
type Structured struct {
	Urgency             string
	RecommendedNextStep string
	ImmediateActions    []string
	Rationale           string
}

// ModelOutput is the raw clinical model reply plus its parsed form, when the
// reply contained a JSON object.
type ModelOutput struct {
	Raw        string
	Structured *Structured
}

// NewModelOutput parses raw into a ModelOutput.
func NewModelOutput(raw string) ModelOutput {
	raw = strings.TrimSpace(raw)
	out := ModelOutput{Raw: raw}
	if s, ok := ParseStructured(raw); ok {
		out.Structured = &s
	}
	return out
}

// #endregion model-output

// #region parse
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseStructured extracts the first JSON object from text. Code fences and
// prose around the object are tolerated. Actions that are not a list of
// values are dropped.
func ParseStructured(text string) (Structured, bool) {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Structured{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Structured{}, false
	}

	var s Structured
	s.Urgency = stringField(raw["urgency"])
	s.RecommendedNextStep = stringField(raw["recommended_next_step"])
	s.Rationale = stringField(raw["rationale"])
	if list, ok := raw["immediate_actions"].([]any); ok {
		for _, item := range list {
			if v := strings.TrimSpace(stringField(item)); v != "" {
				s.ImmediateActions = append(s.ImmediateActions, v)
			}
		}
	}
	return s, true
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// #endregion parse

// #region feedback
const (
	feedbackUnavailable = "Escalation model returned no response; using baseline triage."
	feedbackUnusable    = "Escalation model response was non-clinical/instructional; using baseline triage."
	defaultRationale    = "Recommendations generated by escalation model."
)

// #endregion feedback

// #region reconcile
// Reconcile folds the clinical model reply into prior and returns the new
// result plus a feedback note for the dialogue. It does not modify prior.
// A guardrail-forced emergency is never lowered.
func Reconcile(prior clinical.Result, out ModelOutput, h Heuristics) (clinical.Result, string) {
	switch {
	case out.Structured != nil:
		return reconcileStructured(prior, *out.Structured), out.Raw
	case strings.TrimSpace(out.Raw) == "":
		return prior.Clone(), feedbackUnavailable
	case IsMeta(out.Raw, h):
		return prior.Clone(), feedbackUnusable
	default:
		return reconcileFreeText(prior, out.Raw, h), out.Raw
	}
}

func reconcileStructured(prior clinical.Result, s Structured) clinical.Result {
	res := prior.Clone()

	var held []string
	if u, ok := clinical.ParseUrgency(s.Urgency); ok {
		res.Urgency = pinUrgency(prior, u)
		if res.Urgency != u {
			held = append(held, guardrailHeldLine(u))
		}
	}
	if step := strings.TrimSpace(s.RecommendedNextStep); step != "" {
		res.RecommendedNextStep = step
	}
	if len(s.ImmediateActions) > 0 {
		res.ImmediateActions = clinical.CloneStrings(s.ImmediateActions)
	}

	rationale := strings.TrimSpace(s.Rationale)
	if rationale == "" {
		rationale = defaultRationale
	}
	return res.WithRationale(append([]string{"Escalation model rationale: " + rationale}, held...)...)
}

func reconcileFreeText(prior clinical.Result, raw string, h Heuristics) clinical.Result {
	res := prior.Clone()
	text := strings.TrimSpace(raw)

	var held []string
	if u, ok := UrgencyFromText(text, h); ok {
		res.Urgency = pinUrgency(prior, u)
		if res.Urgency != u {
			held = append(held, guardrailHeldLine(u))
		}
	}

	if actions := ExtractActions(text, h); len(actions) > 0 {
		res.ImmediateActions = actions
		res.RecommendedNextStep = actions[0]
	}

	return res.WithRationale(append([]string{"Escalation model free-text rationale: " + truncate(text, h.RationaleChars)}, held...)...)
}

// pinUrgency keeps a guardrail emergency against a less severe suggestion.
func pinUrgency(prior clinical.Result, suggested clinical.Urgency) clinical.Urgency {
	if prior.GuardrailTriggered && !suggested.AtLeast(prior.Urgency) {
		return prior.Urgency
	}
	return suggested
}

func guardrailHeldLine(suggested clinical.Urgency) string {
	return fmt.Sprintf("Guardrail emergency retained over model urgency %q.", suggested)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// #endregion reconcile

// #region free-text
var (
	listMarker    = regexp.MustCompile(`^([-*]|\d+\.)\s+`)
	sentenceSplit = regexp.MustCompile(`[.;]\s+`)
)

// IsMeta reports whether text echoes instructions instead of answering.
func IsMeta(text string, h Heuristics) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, m := range h.MetaMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// UrgencyFromText returns the first tier, in h.UrgencyOrder, whose literal
// appears in text.
func UrgencyFromText(text string, h Heuristics) (clinical.Urgency, bool) {
	lower := strings.ToLower(text)
	for _, u := range h.UrgencyOrder {
		if strings.Contains(lower, string(u)) {
			return u, true
		}
	}
	return "", false
}

// ExtractActions returns actionable lines from free text: list items first,
// then up to h.MaxSentenceActions sentences when no list item qualifies.
func ExtractActions(text string, h Heuristics) []string {
	var actions []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := strings.TrimSpace(line)
		if !listMarker.MatchString(cleaned) {
			continue
		}
		item := strings.TrimSpace(listMarker.ReplaceAllString(cleaned, ""))
		if isActionable(item, h) {
			actions = append(actions, item)
		}
	}
	if len(actions) > 0 {
		return actions
	}

	for _, part := range sentenceSplit.Split(text, -1) {
		sentence := strings.TrimSpace(part)
		if sentence == "" || !isActionable(sentence, h) {
			continue
		}
		actions = append(actions, sentence)
		if len(actions) >= h.MaxSentenceActions {
			break
		}
	}
	return actions
}

func isActionable(line string, h Heuristics) bool {
	lower := strings.ToLower(line)
	for _, p := range h.BlockedPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	words := strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		for _, v := range h.ActionVerbs {
			if verbForm(w, v) {
				return true
			}
		}
	}
	return false
}

// verbForm matches a word against a verb and its simple inflections.
func verbForm(word, verb string) bool {
	if word == verb {
		return true
	}
	if rest, ok := strings.CutPrefix(word, verb); ok {
		last := verb[len(verb)-1:]
		switch rest {
		case "s", "es", "ing", "ed", last + "ing", last + "ed":
			return true
		case "d":
			return strings.HasSuffix(verb, "e")
		}
		return false
	}
	if stem, ok := strings.CutSuffix(verb, "e"); ok {
		return word == stem+"ing"
	}
	return false
}

// #endregion free-text
