package verify

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/field-triage/internal/clinical"
)

// #region types
// Estimate is a secondary biometric reading, for example from a camera.
type Estimate struct {
	AgeYears *int
	Sex      string
}

// Present reports whether the estimate carries any reading.
func (e Estimate) Present() bool {
	return e.AgeYears != nil || strings.TrimSpace(e.Sex) != ""
}

// Config holds verification tolerances.
type Config struct {
	AgeTolerance int // mismatch when |estimate - claimed| >= AgeTolerance
}

// DefaultConfig returns a 15-year age tolerance.
func DefaultConfig() Config {
	return Config{AgeTolerance: 15}
}

// Result is the outcome of identity verification.
type Result struct {
	Notes    []string
	Mismatch bool // a clarifying turn is required
	Complete bool // verification considered settled
}

// #endregion types

// #region check
// Check records identity completeness and compares the claimed age and sex
// with an estimate when the camera is enabled.
func Check(id clinical.Identity, cameraEnabled bool, est Estimate, cfg Config) Result {
	var notes []string
	if id.Complete() {
		notes = append(notes, "Identity provided: name and ID present.")
	} else {
		notes = append(notes, "Identity incomplete: proceeding with reduced verification confidence.")
	}

	mismatch := false
	if cameraEnabled && est.Present() {
		if est.AgeYears != nil && id.AgeYears != nil {
			if abs(*est.AgeYears-*id.AgeYears) >= cfg.AgeTolerance {
				mismatch = true
				notes = append(notes, fmt.Sprintf("Camera age estimate mismatch (%d) vs claimed age (%d).", *est.AgeYears, *id.AgeYears))
			}
		}
		estSex := strings.TrimSpace(est.Sex)
		claimed := strings.TrimSpace(id.Sex)
		if estSex != "" && claimed != "" && !strings.EqualFold(estSex, claimed) {
			mismatch = true
			notes = append(notes, fmt.Sprintf("Camera sex estimate mismatch (%s) vs claimed sex (%s).", estSex, claimed))
		}
	}

	return Result{Notes: notes, Mismatch: mismatch, Complete: !mismatch}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion check

// #region resolve
const noClarification = "No clarification provided."

// Resolve applies the answer to the clarifying identity question. A blank
// answer or a plain "no" leaves verification unresolved.
func Resolve(r Result, answer string) Result {
	out := Result{Notes: clinical.CloneStrings(r.Notes), Mismatch: r.Mismatch}
	answer = strings.TrimSpace(answer)
	shown := answer
	if shown == "" {
		shown = noClarification
	}
	out.Notes = append(out.Notes, "Verification follow-up answer: "+shown)
	if answer != "" && !strings.EqualFold(answer, "no") {
		out.Notes = append(out.Notes, "Verification accepted after follow-up.")
		out.Complete = true
	} else {
		out.Notes = append(out.Notes, "Verification unresolved; continuing with caution.")
	}
	return out
}

// #endregion resolve
