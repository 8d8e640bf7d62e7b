package eval

import (
	"context"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/metrics"
	"github.com/hc-tap/clinspan/internal/infrastructure/storage/manifest"
	"github.com/hc-tap/clinspan/internal/notes"
	"github.com/hc-tap/clinspan/pkg/errors"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// Block names used in the manifest and in metric labels.
const (
	BlockStrictExact         = "strict_exact"
	BlockStrictRelaxed       = "strict_relaxed"
	BlockIntersectionExact   = "intersection_exact"
	BlockIntersectionRelaxed = "intersection_relaxed"
)

// Params identifies one evaluation invocation.
type Params struct {
	RunID           string
	GoldPath        string
	PredictionsPath string
}

// Result is the outcome of one evaluation.  The metric blocks are nil when
// gold or predictions were missing; coverage is always populated.
type Result struct {
	RunID               string    `json:"run_id"`
	StrictExact         *Block    `json:"strict_exact"`
	StrictRelaxed       *Block    `json:"strict_relaxed"`
	IntersectionExact   *Block    `json:"intersection_exact"`
	IntersectionRelaxed *Block    `json:"intersection_relaxed"`
	Coverage            *Coverage `json:"coverage"`

	GoldMissing        bool `json:"gold_missing,omitempty"`
	PredictionsMissing bool `json:"predictions_missing,omitempty"`
}

// Skipped reports whether metric computation was skipped because an input
// file was absent.
func (r *Result) Skipped() bool { return r.GoldMissing || r.PredictionsMissing }

// Evaluator loads gold and prediction entity sets, matches them, and merges
// the resulting metrics into the run manifest.
type Evaluator struct {
	store   *manifest.Store
	log     logging.Logger
	metrics metrics.PipelineMetrics
}

// NewEvaluator assembles an evaluator.  store may be nil for compute-only
// invocations that skip persistence.
func NewEvaluator(store *manifest.Store, log logging.Logger, m metrics.PipelineMetrics) *Evaluator {
	if log == nil {
		log = logging.NewNop()
	}
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Evaluator{store: store, log: log.Named("eval"), metrics: m}
}

// Evaluate runs the full pipeline for one run: load, dedupe, match under
// every criterion, and persist.  Missing input files are reportable, not
// fatal: coverage is still computed and persisted with null metric blocks.
func (e *Evaluator) Evaluate(ctx context.Context, p Params) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.RunID == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "evaluation requires a run id")
	}

	gold, goldFound, err := notes.ReadEntityFileIfExists(p.GoldPath, e.log)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGoldMissing, "reading gold entities")
	}
	pred, predFound, err := notes.ReadEntityFileIfExists(p.PredictionsPath, e.log)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePredictionsMissing, "reading predictions")
	}
	gold = entity.Dedupe(gold)
	pred = entity.Dedupe(pred)

	coverage := computeCoverage(gold, pred)
	result := &Result{
		RunID:              p.RunID,
		Coverage:           &coverage,
		GoldMissing:        !goldFound,
		PredictionsMissing: !predFound,
	}

	if result.Skipped() {
		e.log.Warn("evaluation skipped, input file missing",
			logging.String("run_id", p.RunID),
			logging.Bool("gold_found", goldFound),
			logging.Bool("predictions_found", predFound),
		)
		if err := e.persist(result); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.StrictExact = buildBlock(matchCounts(gold, pred, SpanExact))
	result.StrictRelaxed = buildBlock(matchCounts(gold, pred, SpanRelaxed))

	goldNotes := noteSet(gold)
	shared := noteSet(pred)
	for id := range shared {
		if !goldNotes[id] {
			delete(shared, id)
		}
	}
	interGold := restrictToNotes(gold, shared)
	interPred := restrictToNotes(pred, shared)
	result.IntersectionExact = buildBlock(matchCounts(interGold, interPred, SpanExact))
	result.IntersectionRelaxed = buildBlock(matchCounts(interGold, interPred, SpanRelaxed))

	for name, block := range map[string]*Block{
		BlockStrictExact:         result.StrictExact,
		BlockStrictRelaxed:       result.StrictRelaxed,
		BlockIntersectionExact:   result.IntersectionExact,
		BlockIntersectionRelaxed: result.IntersectionRelaxed,
	} {
		e.metrics.RecordEvaluation(&metrics.EvaluationMetricParams{
			RunID:   p.RunID,
			Block:   name,
			MicroF1: block.MicroF1,
		})
	}

	if err := e.persist(result); err != nil {
		return nil, err
	}
	e.log.Info("evaluation finished",
		logging.String("run_id", p.RunID),
		logging.Float64("strict_exact_micro_f1", result.StrictExact.MicroF1),
		logging.Float64("strict_relaxed_micro_f1", result.StrictRelaxed.MicroF1),
		logging.Int("gold_outside_pred_notes", coverage.GoldOutsidePredNotes),
	)
	return result, nil
}

// persist merges the result into the manifest under the run's metrics key.
// Flat top-level f1 fields are refreshed only when this run is the
// manifest's designated active run, so evaluating a historical run never
// clobbers the current dashboard numbers.
func (e *Evaluator) persist(r *Result) error {
	if e.store == nil {
		return nil
	}
	err := e.store.Update(func(m manifest.Manifest) error {
		rm := m.RunMetrics(r.RunID)
		rm[BlockStrictExact] = r.StrictExact
		rm[BlockStrictRelaxed] = r.StrictRelaxed
		rm[BlockIntersectionExact] = r.IntersectionExact
		rm[BlockIntersectionRelaxed] = r.IntersectionRelaxed
		rm["coverage"] = r.Coverage

		if m.ActiveRunID() != r.RunID {
			return nil
		}
		if r.Skipped() {
			m["f1_exact_micro"] = nil
			m["f1_relaxed_micro"] = nil
			m["f1_exact_micro_intersection"] = nil
			m["f1_relaxed_micro_intersection"] = nil
		} else {
			m["f1_exact_micro"] = r.StrictExact.MicroF1
			m["f1_relaxed_micro"] = r.StrictRelaxed.MicroF1
			m["f1_exact_micro_intersection"] = r.IntersectionExact.MicroF1
			m["f1_relaxed_micro_intersection"] = r.IntersectionRelaxed.MicroF1
		}
		m["coverage_gold_outside_pred_notes"] = r.Coverage.GoldOutsidePredNotes
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeManifestWriteFailed, "persisting evaluation metrics")
	}
	return nil
}
