package clinical

import "strings"

// #region urgency
// Urgency is the triage tier assigned to a case.
type Urgency string

const (
	Routine   Urgency = "routine"
	Urgent    Urgency = "urgent"
	Emergency Urgency = "emergency"
)

// Valid reports whether u is one of the three tier literals.
func (u Urgency) Valid() bool {
	switch u {
	case Routine, Urgent, Emergency:
		return true
	}
	return false
}

// Severity orders tiers: routine=1, urgent=2, emergency=3. Invalid values are 0.
func (u Urgency) Severity() int {
	switch u {
	case Routine:
		return 1
	case Urgent:
		return 2
	case Emergency:
		return 3
	}
	return 0
}

// AtLeast reports whether u is as severe as other.
func (u Urgency) AtLeast(other Urgency) bool {
	return u.Severity() >= other.Severity()
}

// ParseUrgency accepts the tier literals, trimmed and case-insensitive.
func ParseUrgency(s string) (Urgency, bool) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", false
	}
	return u, true
}

// #endregion urgency

// #region environment
// Environment identifies the deployment context a case is handled in.
type Environment string

const (
	EnvStandard      Environment = "standard"
	EnvRemoteVillage Environment = "remote_village"
	EnvLimitedAccess Environment = "limited_access_region"

	// envLimitedAccessAlias is an older spelling of EnvLimitedAccess still
	// found in saved runtime configs.
	envLimitedAccessAlias Environment = "limited_access_poland"
)

// NormalizeEnvironment lower-cases and trims a tag and folds the alias onto
// the canonical resource-limited tag. Empty input maps to standard. Unknown
// tags are returned as-is; profile lookup treats them as standard.
func NormalizeEnvironment(tag string) Environment {
	env := Environment(strings.ToLower(strings.TrimSpace(tag)))
	switch env {
	case "":
		return EnvStandard
	case envLimitedAccessAlias:
		return EnvLimitedAccess
	}
	return env
}

// Known reports whether e is one of the closed set of environment tags.
func (e Environment) Known() bool {
	switch e {
	case EnvStandard, EnvRemoteVillage, EnvLimitedAccess:
		return true
	}
	return false
}

// #endregion environment
