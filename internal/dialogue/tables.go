package dialogue

// #region tables

// recapTriggers are questions answered straight from the action list.
var recapTriggers = []string{
	"what should i do",
	"what do i do",
	"what should i do now",
	"what now",
	"repeat what i should do",
	"next step",
	"what are the steps",
	"what actions",
	"what should be done",
}

// caseAnalysisMarkers flag replies that restate the case instead of
// answering.
var caseAnalysisMarkers = []string{
	"case analysis",
	"case summary",
	"triage assessment",
	"patient:",
	"symptoms:",
}

// medicalTerms mark a question as medical; questions with none of them get
// the general-support fallback.
var medicalTerms = []string{
	"pain", "fever", "breath", "bleeding", "cough", "stroke",
	"vomit", "symptom", "dose", "drug", "medicine",
}

// #endregion tables
