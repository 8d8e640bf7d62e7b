// Package sections locates clinical section headings in note text and maps
// character offsets to canonical section names.  Detection is a heading scan
// rather than a document-structure parse: good enough for the dictated-note
// layouts in the corpus, and pluggable behind the Detector interface when a
// smarter segmenter is needed.
package sections

import (
	"regexp"
	"sort"
)

// Interval is a half-open [Start, End) region of the note covered by one
// canonical section.  Multiple intervals may carry the same name when a
// heading repeats.
type Interval struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Detector produces ordered section intervals for a note.  Implementations
// must return intervals sorted by Start with the final interval ending at
// len(text); text before the first heading is uncovered.
type Detector interface {
	Detect(text string) []Interval
}

// SectionUnknown is the name reported for offsets outside every interval.
const SectionUnknown = "unknown"

// Canonical section names.
const (
	SectionReviewOfSystems     = "review of systems"
	SectionPastMedicalHistory  = "past medical history"
	SectionFamilyHistory       = "family history"
	SectionSocialHistory       = "social history"
	SectionHPI                 = "history of present illness"
	SectionChiefComplaint      = "chief complaint"
	SectionAssessment          = "assessment"
	SectionImpression          = "impression"
	SectionPlan                = "plan"
	SectionMedications         = "medications"
)

// headingSynonym maps a recognized heading phrase to its canonical name.
// Order matters: phrases are scanned in this fixed order, so at a given
// offset the first table entry wins.
type headingSynonym struct {
	phrase    string
	canonical string
}

var headingTable = []headingSynonym{
	{"ros", SectionReviewOfSystems},
	{"review of systems", SectionReviewOfSystems},
	{"pmh", SectionPastMedicalHistory},
	{"past medical history", SectionPastMedicalHistory},
	{"fhx", SectionFamilyHistory},
	{"family hx", SectionFamilyHistory},
	{"family history", SectionFamilyHistory},
	{"a/p", SectionPlan},
	{"assessment", SectionAssessment},
	{"impression", SectionImpression},
	{"plan", SectionPlan},
	{"chief complaint", SectionChiefComplaint},
	{"history of present illness", SectionHPI},
	{"social history", SectionSocialHistory},
	{"medications", SectionMedications},
}

// headingDetector is the default heading-scan Detector.
type headingDetector struct {
	patterns []*regexp.Regexp
}

// NewDetector builds the default heading-scan detector over the fixed
// synonym table.
func NewDetector() Detector {
	d := &headingDetector{patterns: make([]*regexp.Regexp, len(headingTable))}
	for i, h := range headingTable {
		// Heading phrase, case-insensitive, optionally followed by a colon.
		d.patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(h.phrase) + `\s*:?`)
	}
	return d
}

type headingMatch struct {
	canonical string
	offset    int
	order     int // table position, for the fixed tie-break
}

// Detect scans text for every heading occurrence and derives contiguous
// intervals: each runs from one heading's offset to the next heading's
// offset, the last extending to end-of-text.
func (d *headingDetector) Detect(text string) []Interval {
	var matches []headingMatch
	for i, pat := range d.patterns {
		for _, loc := range pat.FindAllStringIndex(text, -1) {
			matches = append(matches, headingMatch{
				canonical: headingTable[i].canonical,
				offset:    loc[0],
				order:     i,
			})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].offset != matches[b].offset {
			return matches[a].offset < matches[b].offset
		}
		return matches[a].order < matches[b].order
	})

	intervals := make([]Interval, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].offset
		}
		if end <= m.offset {
			// A longer phrase and its abbreviation can start at the same
			// offset; the zero-width interval carries no text.
			continue
		}
		intervals = append(intervals, Interval{Name: m.canonical, Start: m.offset, End: end})
	}
	return intervals
}

// At returns the canonical name of the interval containing offset, or
// SectionUnknown when no interval covers it.
func At(intervals []Interval, offset int) string {
	for _, iv := range intervals {
		if iv.Start <= offset && offset < iv.End {
			return iv.Name
		}
	}
	return SectionUnknown
}

// InAny reports whether the span starting at begin falls inside an interval
// whose name is in names.
func InAny(intervals []Interval, begin int, names map[string]bool) bool {
	for _, iv := range intervals {
		if names[iv.Name] && iv.Start <= begin && begin < iv.End {
			return true
		}
	}
	return false
}

// EarliestOf returns the smallest Start among intervals whose name is in
// names, and ok=false when none match.  The rule engine uses it to find the
// history cutoff offset.
func EarliestOf(intervals []Interval, names map[string]bool) (int, bool) {
	earliest := -1
	for _, iv := range intervals {
		if !names[iv.Name] {
			continue
		}
		if earliest == -1 || iv.Start < earliest {
			earliest = iv.Start
		}
	}
	return earliest, earliest != -1
}
