package rules

import (
	"regexp"
	"strings"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/internal/nlp/lexicon"
	"github.com/hc-tap/clinspan/internal/nlp/sections"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// Window radii in characters.
const (
	contextRadius  = 60 // keyword / dose / family-history checks
	negationRadius = 40 // negation cues look-behind only
)

// minTermLength rejects terms too short to be meaningful mentions.
const minTermLength = 4

// Rejection-reason counter names.
const (
	ReasonStopword        = "suppressed_stopword"
	ReasonNegation        = "suppressed_negation"
	ReasonFamilyHistory   = "suppressed_family_history"
	ReasonHistoryCutoff   = "suppressed_history_cutoff"
	ReasonNoContext       = "suppressed_no_context"
	ReasonByROS           = "suppressed_by_ros"
	ReasonByHistorySection = "suppressed_by_history_section"
	ReasonNoDose          = "suppressed_no_dose"
)

var (
	negationCues    = regexp.MustCompile(`\b(no|denies|without|free of)\b`)
	familyMembers   = regexp.MustCompile(`\b(mother|father|sister|brother)\b`)
	positiveContext = regexp.MustCompile(`\b(with|has|diagnosed|presents with|complains of|assessment)\b`)
	doseNearby      = regexp.MustCompile(`\b\d+\s*(mg|mcg|g|ml|units?|iu)\b`)
)

// historySectionNames are the markers whose earliest occurrence defines the
// history cutoff offset.
var historySectionNames = map[string]bool{
	sections.SectionPastMedicalHistory: true,
	sections.SectionReviewOfSystems:    true,
	sections.SectionHPI:                true,
	sections.SectionFamilyHistory:      true,
	sections.SectionSocialHistory:      true,
}

// assessmentSectionNames are the sections whose spans escape the history
// cutoff and the positive-context requirement.
var assessmentSectionNames = map[string]bool{
	sections.SectionAssessment: true,
	sections.SectionImpression: true,
	sections.SectionPlan:       true,
}

// pastSectionNames are the history sections gated under strict profiles.
var pastSectionNames = map[string]bool{
	sections.SectionPastMedicalHistory: true,
	sections.SectionFamilyHistory:      true,
	sections.SectionSocialHistory:      true,
}

// medicationSectionNames rescue dose-less, suffix-less medication spans
// under strict profiles.
var medicationSectionNames = map[string]bool{
	sections.SectionMedications: true,
	sections.SectionPlan:        true,
	sections.SectionAssessment:  true,
	sections.SectionImpression:  true,
}

// Candidate is one raw span under consideration, with its type-specific
// normalized term and the section its begin offset falls in.
type Candidate struct {
	Type    entity.Type
	Norm    string
	Begin   int
	End     int
	Section string
}

// Engine applies the keep/drop heuristics for a single note.  It is built
// per document: the lowered text and section map are scanned once at
// construction.  Keep is read-mostly; only the rejection counters mutate.
type Engine struct {
	profile   Profile
	text      string // lowered note text
	intervals []sections.Interval

	historyCutoff    int
	hasHistoryCutoff bool

	counters map[string]int
	log      logging.Logger
}

// NewEngine builds a rule engine for one normalized note text and its
// section map under the given profile.
func NewEngine(text string, intervals []sections.Interval, profile Profile, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewNop()
	}
	e := &Engine{
		profile:   profile,
		text:      strings.ToLower(text),
		intervals: intervals,
		counters:  make(map[string]int),
		log:       log,
	}
	e.historyCutoff, e.hasHistoryCutoff = sections.EarliestOf(intervals, historySectionNames)
	return e
}

// Keep decides whether the candidate survives as an entity.
func (e *Engine) Keep(c Candidate) bool {
	switch c.Type {
	case entity.TypeProblem:
		return e.keepProblem(c)
	case entity.TypeMedication:
		return e.keepMedication(c)
	}
	// Unscored types pass through the shared stopword check only.
	return len(c.Norm) >= minTermLength
}

// Counters returns a copy of the accumulated rejection-reason counts.
// Empty unless the profile enables tracking.
func (e *Engine) Counters() map[string]int {
	out := make(map[string]int, len(e.counters))
	for k, v := range e.counters {
		out[k] = v
	}
	return out
}

func (e *Engine) reject(c Candidate, reason string) bool {
	if e.profile.TrackRejections {
		e.counters[reason]++
	}
	e.log.Debug("candidate rejected",
		logging.String("term", c.Norm),
		logging.String("type", string(c.Type)),
		logging.String("reason", reason),
		logging.Int("begin", c.Begin),
	)
	return false
}

// ── Problems ────────────────────────────────────────────────────────────────

func (e *Engine) keepProblem(c Candidate) bool {
	if len(c.Norm) < minTermLength || lexicon.ProblemStopwords[c.Norm] {
		return e.reject(c, ReasonStopword)
	}
	if negationCues.MatchString(e.lookBehind(c.Begin, negationRadius)) {
		return e.reject(c, ReasonNegation)
	}
	win := e.window(c.Begin, c.End)
	if strings.Contains(win, "family history") || strings.Contains(win, "history of") ||
		familyMembers.MatchString(win) {
		return e.reject(c, ReasonFamilyHistory)
	}

	inAssessment := assessmentSectionNames[c.Section]
	highConfidence := lexicon.HighConfidenceProblems[c.Norm]
	positive := positiveContext.MatchString(win)

	if e.profile.SectionGating && !inAssessment {
		if c.Section == sections.SectionReviewOfSystems && !positive {
			if lexicon.GenericROSTerms[c.Norm] {
				return e.reject(c, ReasonByROS)
			}
			if !(e.profile.HighConfidenceExempt && highConfidence) {
				return e.reject(c, ReasonByROS)
			}
		}
		if pastSectionNames[c.Section] && !positive {
			if !(e.profile.HighConfidenceExempt && highConfidence) {
				return e.reject(c, ReasonByHistorySection)
			}
		}
	}

	if e.profile.HistoryCutoff && e.hasHistoryCutoff && !inAssessment &&
		c.Begin > e.historyCutoff {
		if !(e.profile.HighConfidenceExempt && highConfidence) {
			return e.reject(c, ReasonHistoryCutoff)
		}
	}

	if !inAssessment && !positive && !highConfidence && !hasClinicalAffix(c.Norm) {
		return e.reject(c, ReasonNoContext)
	}
	return true
}

// ── Medications ─────────────────────────────────────────────────────────────

func (e *Engine) keepMedication(c Candidate) bool {
	if len(c.Norm) < minTermLength || lexicon.MedicationStopwords[c.Norm] {
		return e.reject(c, ReasonStopword)
	}
	if hasDrugSuffix(c.Norm) {
		return true
	}
	if doseNearby.MatchString(e.window(c.Begin, c.End)) {
		return true
	}
	if e.profile.SectionGating && medicationSectionNames[c.Section] {
		return true
	}
	return e.reject(c, ReasonNoDose)
}

// ── Window helpers ──────────────────────────────────────────────────────────

// window returns the lowered text in [begin-contextRadius, end+contextRadius).
func (e *Engine) window(begin, end int) string {
	lo := begin - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(e.text) {
		hi = len(e.text)
	}
	if lo >= hi {
		return ""
	}
	return e.text[lo:hi]
}

// lookBehind returns the lowered text in [begin-radius, begin).
func (e *Engine) lookBehind(begin, radius int) string {
	lo := begin - radius
	if lo < 0 {
		lo = 0
	}
	if lo >= begin || begin > len(e.text) {
		return ""
	}
	return e.text[lo:begin]
}

func hasDrugSuffix(norm string) bool {
	// A dose may trail the normalized term only when the finder folded it
	// in; suffix checks apply to the first word.
	word := norm
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word = word[:i]
	}
	for _, suf := range lexicon.DrugNameSuffixes {
		if strings.HasSuffix(word, suf) {
			return true
		}
	}
	return false
}

func hasClinicalAffix(norm string) bool {
	for _, affix := range lexicon.ClinicalAffixes {
		if strings.Contains(norm, affix) {
			return true
		}
	}
	return false
}
