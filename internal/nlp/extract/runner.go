package extract

import (
	"context"
	"time"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/metrics"
	"github.com/hc-tap/clinspan/internal/infrastructure/storage/manifest"
	"github.com/hc-tap/clinspan/internal/notes"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// RunSummary reports one batch extraction run.
type RunSummary struct {
	RunID        string `json:"run_id"`
	Extractor    string `json:"extractor"`
	NoteCount    int    `json:"note_count"`
	EntityCount  int    `json:"entity_count"`
	Errors       int    `json:"errors"`
	DurationP50  int    `json:"duration_ms_p50"`
	DurationP95  int    `json:"duration_ms_p95"`
	BundlePath   string `json:"bundle_path"`
	TsStarted    string `json:"ts_started"`
	TsFinished   string `json:"ts_finished"`
}

// Runner drives an Extractor over the whole corpus, persists the entity
// records, and records the run in the manifest.  Processing is sequential
// by design: the workload is CPU-bound string scanning over KB-scale
// documents, so there is nothing to win from coordinating shared state.
type Runner struct {
	corpus    notes.Reader
	extractor Extractor
	sink      *notes.EntitySink
	store     *manifest.Store
	log       logging.Logger
	metrics   metrics.PipelineMetrics
	limit     int
}

// NewRunner assembles a batch runner.  sink and store may be nil for dry
// runs that only need the records in memory.
func NewRunner(
	corpus notes.Reader,
	extractor Extractor,
	sink *notes.EntitySink,
	store *manifest.Store,
	limit int,
	log logging.Logger,
	m metrics.PipelineMetrics,
) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Runner{
		corpus:    corpus,
		extractor: extractor,
		sink:      sink,
		store:     store,
		limit:     limit,
		log:       log.Named("runner"),
		metrics:   m,
	}
}

// Run processes every note, one at a time, and returns the run summary.
// Per-note failures count as errors and are logged; only corpus-level or
// persistence failures abort the run.
func (r *Runner) Run(ctx context.Context, runID string) (*RunSummary, []*entity.Record, error) {
	started := utcNow()

	docs, err := r.corpus.Notes(r.limit)
	if err != nil {
		return nil, nil, err
	}

	var (
		all       []*entity.Record
		durations []time.Duration
		errCount  int
	)
	for _, note := range docs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		t0 := time.Now()
		records, err := r.extractor.Extract(ctx, note)
		elapsed := time.Since(t0)
		if err != nil {
			errCount++
			r.log.Error("note extraction failed",
				logging.String("note_id", note.NoteID), logging.Err(err))
			continue
		}
		durations = append(durations, elapsed)
		r.metrics.RecordExtraction(&metrics.ExtractionMetricParams{
			RunID:       runID,
			Extractor:   r.extractor.Name(),
			DurationMs:  float64(elapsed) / float64(time.Millisecond),
			EntityCount: len(records),
		})

		if r.sink != nil {
			if err := r.sink.WriteNote(note.NoteID, records); err != nil {
				return nil, nil, err
			}
		}
		all = append(all, records...)
	}

	summary := &RunSummary{
		RunID:       runID,
		Extractor:   r.extractor.Name(),
		NoteCount:   len(docs),
		EntityCount: len(all),
		Errors:      errCount,
		DurationP50: MedianMs(durations),
		DurationP95: QuantileMs(durations, 0.95),
		TsStarted:   started,
		TsFinished:  utcNow(),
	}

	if r.sink != nil {
		bundle, err := r.sink.WriteBundle(runID, all)
		if err != nil {
			return nil, nil, err
		}
		summary.BundlePath = bundle
	}

	if r.store != nil {
		if err := r.recordRun(summary); err != nil {
			return nil, nil, err
		}
	}

	r.log.Info("extraction run finished",
		logging.String("run_id", runID),
		logging.Int("notes", summary.NoteCount),
		logging.Int("entities", summary.EntityCount),
		logging.Int("errors", summary.Errors),
	)
	return summary, all, nil
}

// recordRun merges the run into the manifest under the v2 schema.
func (r *Runner) recordRun(s *RunSummary) error {
	return r.store.Update(func(m manifest.Manifest) error {
		m["run_id"] = s.RunID
		m["extractor"] = s.Extractor
		m["ts_started"] = s.TsStarted
		m["ts_finished"] = s.TsFinished
		m["ts"] = s.TsFinished
		m["note_count"] = s.NoteCount
		m["entity_count"] = s.EntityCount
		m["duration_ms_p50"] = s.DurationP50
		m["duration_ms_p95"] = s.DurationP95
		m["errors"] = s.Errors
		if s.NoteCount > 0 {
			m["error_rate"] = float64(s.Errors) / float64(s.NoteCount)
		} else {
			m["error_rate"] = 0.0
		}
		if s.Errors == 0 {
			m["status"] = "success"
		} else {
			m["status"] = "partial"
		}
		return nil
	})
}

func utcNow() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
