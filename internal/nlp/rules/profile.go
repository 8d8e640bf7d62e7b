// Package rules decides, per candidate span, whether to keep it as an
// entity.  Every precision/recall trade-off lives here as a named heuristic
// gated by an explicit strictness profile, so each rule can be audited and
// tested on its own.
package rules

import (
	"github.com/hc-tap/clinspan/pkg/errors"
)

// Profile names.
const (
	ProfileDefault    = "default"
	ProfileStrict     = "strict"
	ProfileStrictLite = "strict-lite"
)

// Profile is the policy table for one strictness level.  Each field names a
// heuristic toggle; the engine consults the table instead of branching on
// the profile name.
type Profile struct {
	Name string

	// HistoryCutoff rejects problem candidates that begin after the
	// earliest history/ROS/HPI section marker in the document.
	HistoryCutoff bool

	// HighConfidenceExempt spares the fixed high-confidence problem
	// vocabulary from the history cutoff and from section gating.
	HighConfidenceExempt bool

	// SectionGating enables the ROS / history-section positive-context
	// gates for problems and the section rescue for dose-less,
	// suffix-less medications.
	SectionGating bool

	// TrackRejections accumulates named rejection-reason counters for
	// operator visibility.  Counter values are not part of the data
	// contract.
	TrackRejections bool
}

// DefaultProfile keeps every candidate the shared heuristics allow; no
// section-aware suppression.
func DefaultProfile() Profile {
	return Profile{Name: ProfileDefault}
}

// StrictProfile applies the history cutoff with no exemptions plus full
// section gating, and tracks rejection reasons.
func StrictProfile() Profile {
	return Profile{
		Name:            ProfileStrict,
		HistoryCutoff:   true,
		SectionGating:   true,
		TrackRejections: true,
	}
}

// StrictLiteProfile is StrictProfile with the high-confidence problem
// vocabulary exempted from the history cutoff and section gates.
func StrictLiteProfile() Profile {
	return Profile{
		Name:                 ProfileStrictLite,
		HistoryCutoff:        true,
		HighConfidenceExempt: true,
		SectionGating:        true,
		TrackRejections:      true,
	}
}

// ProfileByName resolves a profile name to its policy table.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case ProfileDefault, "":
		return DefaultProfile(), nil
	case ProfileStrict:
		return StrictProfile(), nil
	case ProfileStrictLite:
		return StrictLiteProfile(), nil
	}
	return Profile{}, errors.Newf(errors.ErrCodeInvalidProfile, "unknown rule profile %q", name)
}
