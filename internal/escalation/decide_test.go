package escalation

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		disabled bool
		urgency  clinical.Urgency
		forced   bool
		want     Verdict
	}{
		{"disabled beats emergency", true, clinical.Emergency, true, VerdictSkip},
		{"emergency forced", false, clinical.Emergency, false, VerdictForced},
		{"urgent forced", false, clinical.Urgent, false, VerdictForced},
		{"routine deferred", false, clinical.Routine, false, VerdictDefer},
		{"routine caller forced", false, clinical.Routine, true, VerdictForced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.disabled, tt.urgency, tt.forced)
			if d.Verdict != tt.want {
				t.Fatalf("verdict = %s, want %s", d.Verdict, tt.want)
			}
			if d.Reason == "" {
				t.Fatal("reason must not be empty")
			}
		})
	}
	if d := Decide(false, clinical.Urgent, false); !strings.Contains(d.Reason, "(urgent)") {
		t.Fatalf("reason = %q", d.Reason)
	}
}
