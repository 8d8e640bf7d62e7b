// Package extract wires the normalizer, section detector, span finder, and
// rule engine into the rule-based extraction pipeline, and runs it over a
// note corpus.
package extract

import (
	"context"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/metrics"
	"github.com/hc-tap/clinspan/internal/nlp/lexicon"
	"github.com/hc-tap/clinspan/internal/nlp/rules"
	"github.com/hc-tap/clinspan/internal/nlp/sections"
	"github.com/hc-tap/clinspan/internal/nlp/textnorm"
	"github.com/hc-tap/clinspan/internal/notes"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// Extractor confidence constants for the rule-based heuristics.
const (
	problemScore    = 0.90
	medicationScore = 0.95
)

// SourceRule tags records produced by the rule-based extractor.
const SourceRule = "rule"

// Extractor is the pluggable extraction contract.  Alternative extractors
// (model-backed, remote) implement it and emit the same record format.
type Extractor interface {
	// Name identifies the extractor in manifests and record source tags.
	Name() string

	// Extract produces the entity records for one note.
	Extract(ctx context.Context, note *notes.Note) ([]*entity.Record, error)
}

// Config holds the tunables of the rule-based extractor.
type Config struct {
	// RunID stamps every record with the producing run.
	RunID string

	// Profile selects the rule-engine strictness: default, strict, strict-lite.
	Profile string

	// ProblemTerms and MedicationTerms override the built-in lexicons when
	// non-empty.
	ProblemTerms    []string
	MedicationTerms []string

	// ExpandQualifiers adds severity/chronicity variants of each problem
	// term (chronic asthma, acute pancreatitis, ...).
	ExpandQualifiers bool
}

// RuleExtractor is the lexicon- and rule-based Extractor implementation.
type RuleExtractor struct {
	cfg      Config
	profile  rules.Profile
	detector sections.Detector
	problems *lexicon.Finder
	meds     *lexicon.Finder
	log      logging.Logger
	metrics  metrics.PipelineMetrics
}

// NewRuleExtractor builds the pipeline: profile resolution, lexicon
// compilation, and section detector wiring happen once here.
func NewRuleExtractor(cfg Config, log logging.Logger, m metrics.PipelineMetrics) (*RuleExtractor, error) {
	if log == nil {
		log = logging.NewNop()
	}
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	profile, err := rules.ProfileByName(cfg.Profile)
	if err != nil {
		return nil, err
	}

	problemTerms := cfg.ProblemTerms
	if len(problemTerms) == 0 {
		problemTerms = lexicon.DefaultProblemTerms
	}
	if cfg.ExpandQualifiers {
		problemTerms = lexicon.ExpandProblemTerms(problemTerms)
	}
	medTerms := cfg.MedicationTerms
	if len(medTerms) == 0 {
		medTerms = lexicon.DefaultMedicationTerms
	}

	problems, err := lexicon.NewFinder(problemTerms, false)
	if err != nil {
		return nil, err
	}
	meds, err := lexicon.NewFinder(medTerms, true)
	if err != nil {
		return nil, err
	}

	return &RuleExtractor{
		cfg:      cfg,
		profile:  profile,
		detector: sections.NewDetector(),
		problems: problems,
		meds:     meds,
		log:      log.Named("extract"),
		metrics:  m,
	}, nil
}

// Name implements Extractor.
func (x *RuleExtractor) Name() string { return SourceRule }

// Extract runs the full per-note pipeline: normalize, detect sections, find
// candidate spans, filter through the rule engine, assemble records.
// Offsets in the returned records index the normalized note text.
func (x *RuleExtractor) Extract(ctx context.Context, note *notes.Note) ([]*entity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := textnorm.NormalizeText(note.Text)
	if text == "" {
		return nil, nil
	}
	intervals := x.detector.Detect(text)
	engine := rules.NewEngine(text, intervals, x.profile, x.log)

	var kept []keptSpan
	for _, sp := range x.problems.Find(text) {
		c := rules.Candidate{
			Type:    entity.TypeProblem,
			Norm:    sp.Norm,
			Begin:   sp.Begin,
			End:     sp.End,
			Section: sections.At(intervals, sp.Begin),
		}
		if engine.Keep(c) {
			kept = append(kept, keptSpan{
				Type: c.Type, Begin: sp.Begin, End: sp.End,
				Text: sp.Text, Norm: sp.Norm, Section: c.Section, Score: problemScore,
			})
		}
	}
	for _, sp := range x.meds.Find(text) {
		c := rules.Candidate{
			Type:    entity.TypeMedication,
			Norm:    sp.Norm,
			Begin:   sp.Begin,
			End:     sp.End,
			Section: sections.At(intervals, sp.Begin),
		}
		if engine.Keep(c) {
			kept = append(kept, keptSpan{
				Type: c.Type, Begin: sp.Begin, End: sp.End,
				Text: sp.Text, Norm: sp.Norm, Section: c.Section, Score: medicationScore,
			})
		}
	}

	for reason, n := range engine.Counters() {
		for i := 0; i < n; i++ {
			x.metrics.RecordRejection(reason)
		}
	}

	return assemble(note.NoteID, x.cfg.RunID, SourceRule, len(text), kept, x.log), nil
}
