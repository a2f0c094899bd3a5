package escalation

import "github.com/danielpatrickdp/field-triage/internal/clinical"

// #region tables

// urgencyWordOrder is the search order for tier words in free text; the
// first tier whose literal appears wins.
var urgencyWordOrder = []clinical.Urgency{
	clinical.Emergency,
	clinical.Urgent,
	clinical.Routine,
}

// blockedPrefixes mark lines that restate the case instead of advising.
var blockedPrefixes = []string{
	"patient:",
	"symptoms:",
	"interview:",
	"vitals:",
	"scan:",
	"environment:",
	"analysis:",
	"case summary:",
	"triage assessment:",
}

// actionVerbs qualify a line as actionable guidance.
var actionVerbs = []string{
	"go", "seek", "call", "monitor", "rest", "hydrate", "use",
	"take", "avoid", "start", "arrange", "transfer", "refer", "contact",
}

// metaMarkers identify responses that echo the instructions instead of
// answering them.
var metaMarkers = []string{
	"the user wants me to act as",
	"output must be strict json",
	"return only",
	"do not include keys",
	"no markdown, no bullets",
	"provide a json output",
}

// #endregion tables

// #region heuristics
// Heuristics is the declarative configuration for free-text reconciliation.
type Heuristics struct {
	UrgencyOrder       []clinical.Urgency
	BlockedPrefixes    []string
	ActionVerbs        []string
	MetaMarkers        []string
	MaxSentenceActions int
	RationaleChars     int
}

// DefaultHeuristics returns copies of the built-in tables.
func DefaultHeuristics() Heuristics {
	order := make([]clinical.Urgency, len(urgencyWordOrder))
	copy(order, urgencyWordOrder)
	return Heuristics{
		UrgencyOrder:       order,
		BlockedPrefixes:    clinical.CloneStrings(blockedPrefixes),
		ActionVerbs:        clinical.CloneStrings(actionVerbs),
		MetaMarkers:        clinical.CloneStrings(metaMarkers),
		MaxSentenceActions: 3,
		RationaleChars:     300,
	}
}

// #endregion heuristics
