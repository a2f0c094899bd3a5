package verify

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

func TestCheck(t *testing.T) {
	full := clinical.Identity{FirstName: "Anna", LastName: "Kowalska", IDNumber: "PL-998877", AgeYears: clinical.IntPtr(42), Sex: "female"}

	tests := []struct {
		name     string
		id       clinical.Identity
		camera   bool
		est      Estimate
		mismatch bool
		notes    int
	}{
		{"complete no camera", full, false, Estimate{AgeYears: clinical.IntPtr(80)}, false, 1},
		{"incomplete", clinical.Identity{FirstName: "Anna"}, true, Estimate{}, false, 1},
		{"age within tolerance", full, true, Estimate{AgeYears: clinical.IntPtr(56)}, false, 1},
		{"age at tolerance", full, true, Estimate{AgeYears: clinical.IntPtr(57)}, true, 2},
		{"age below", full, true, Estimate{AgeYears: clinical.IntPtr(20)}, true, 2},
		{"sex case insensitive", full, true, Estimate{Sex: "FEMALE"}, false, 1},
		{"sex mismatch", full, true, Estimate{Sex: "male"}, true, 2},
		{"both mismatch", full, true, Estimate{AgeYears: clinical.IntPtr(10), Sex: "male"}, true, 3},
		{"no claimed age", clinical.Identity{FirstName: "A", LastName: "B", IDNumber: "1"}, true, Estimate{AgeYears: clinical.IntPtr(10)}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.id, tt.camera, tt.est, DefaultConfig())
			if r.Mismatch != tt.mismatch || r.Complete == tt.mismatch {
				t.Fatalf("mismatch=%v complete=%v", r.Mismatch, r.Complete)
			}
			if len(r.Notes) != tt.notes {
				t.Fatalf("notes = %v", r.Notes)
			}
		})
	}
}

func TestCheck_NoteText(t *testing.T) {
	id := clinical.Identity{AgeYears: clinical.IntPtr(30)}
	r := Check(id, true, Estimate{AgeYears: clinical.IntPtr(60)}, DefaultConfig())
	if r.Notes[1] != "Camera age estimate mismatch (60) vs claimed age (30)." {
		t.Fatalf("note = %q", r.Notes[1])
	}
}

func TestResolve(t *testing.T) {
	base := Result{Notes: []string{"n"}, Mismatch: true}
	tests := []struct {
		answer   string
		complete bool
		last     string
	}{
		{"Yes, the photo is of my mother", true, "Verification accepted after follow-up."},
		{"no", false, "Verification unresolved; continuing with caution."},
		{" NO ", false, "Verification unresolved; continuing with caution."},
		{"", false, "Verification unresolved; continuing with caution."},
	}
	for _, tt := range tests {
		r := Resolve(base, tt.answer)
		if r.Complete != tt.complete {
			t.Errorf("%q: complete=%v", tt.answer, r.Complete)
		}
		if got := r.Notes[len(r.Notes)-1]; got != tt.last {
			t.Errorf("%q: last note = %q", tt.answer, got)
		}
		if !strings.HasPrefix(r.Notes[1], "Verification follow-up answer: ") {
			t.Errorf("%q: answer note = %q", tt.answer, r.Notes[1])
		}
	}
	if len(base.Notes) != 1 {
		t.Fatal("Resolve mutated its input")
	}
	if r := Resolve(base, ""); r.Notes[1] != "Verification follow-up answer: No clarification provided." {
		t.Fatalf("blank answer note = %q", r.Notes[1])
	}
}
