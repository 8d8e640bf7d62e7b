// Package metrics collects operational telemetry for the extraction and
// evaluation engines behind a single interface, so the Prometheus-backed
// implementation can be swapped for a noop in tests and one-shot CLI runs.
package metrics

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsPrefix = "clinspan_"

var noteLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500}

// ExtractionMetricParams carries the data for one processed note.
type ExtractionMetricParams struct {
	RunID       string
	Extractor   string
	DurationMs  float64
	EntityCount int
}

// EvaluationMetricParams carries one computed metric block.
type EvaluationMetricParams struct {
	RunID   string
	Block   string // strict_exact | strict_relaxed | intersection_exact | intersection_relaxed
	MicroF1 float64
}

// PipelineStats is a point-in-time snapshot of pipeline telemetry.
type PipelineStats struct {
	NotesProcessed  int64   `json:"notes_processed"`
	EntitiesEmitted int64   `json:"entities_emitted"`
	Rejections      int64   `json:"rejections"`
	P50LatencyMs    float64 `json:"p50_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms"`
}

// PipelineMetrics is the telemetry contract for both engines.
type PipelineMetrics interface {
	// RecordExtraction records one processed note.
	RecordExtraction(params *ExtractionMetricParams)

	// RecordRejection records one rule-engine suppression by reason.
	RecordRejection(reason string)

	// RecordEvaluation records one computed micro-F1 block.
	RecordEvaluation(params *EvaluationMetricParams)

	// NoteLatency exposes the per-note latency histogram.
	NoteLatency() LatencyHistogram

	// Snapshot returns current pipeline totals.
	Snapshot() *PipelineStats
}

// LatencyHistogram provides percentile observation over latency samples.
type LatencyHistogram interface {
	// Observe records a latency sample in milliseconds.
	Observe(durationMs float64)

	// Percentile returns the value at percentile p (0-100) using the
	// nearest-rank method, 0 when no samples exist.
	Percentile(p float64) float64

	// Count returns the number of observed samples.
	Count() int64
}

// ─────────────────────────────────────────────────────────────────────────────
// Prometheus implementation
// ─────────────────────────────────────────────────────────────────────────────

type prometheusMetrics struct {
	noteDuration  *prometheus.HistogramVec
	notesTotal    *prometheus.CounterVec
	entitiesTotal *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	evalF1        *prometheus.GaugeVec

	latency    *latencyHistogram
	notes      atomic.Int64
	entities   atomic.Int64
	rejectCnt  atomic.Int64
}

// NewPrometheusMetrics creates a Prometheus-backed collector and registers
// every metric with the supplied Registerer (DefaultRegisterer when nil).
func NewPrometheusMetrics(registerer prometheus.Registerer) (PipelineMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &prometheusMetrics{latency: newLatencyHistogram()}

	m.noteDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + "note_duration_ms",
		Help:    "Per-note extraction duration in milliseconds.",
		Buckets: noteLatencyBuckets,
	}, []string{"run_id", "extractor"})

	m.notesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "notes_total",
		Help: "Notes processed by the extraction pipeline.",
	}, []string{"run_id", "extractor"})

	m.entitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "entities_total",
		Help: "Entity records emitted by the extraction pipeline.",
	}, []string{"run_id", "extractor"})

	m.rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "rule_rejections_total",
		Help: "Candidate spans suppressed by the contextual rule engine.",
	}, []string{"reason"})

	m.evalF1 = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: metricsPrefix + "eval_micro_f1",
		Help: "Micro F1 per evaluation block of the latest run.",
	}, []string{"run_id", "block"})

	for _, c := range []prometheus.Collector{
		m.noteDuration, m.notesTotal, m.entitiesTotal, m.rejections, m.evalF1,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordExtraction(params *ExtractionMetricParams) {
	if params == nil {
		return
	}
	m.noteDuration.WithLabelValues(params.RunID, params.Extractor).Observe(params.DurationMs)
	m.notesTotal.WithLabelValues(params.RunID, params.Extractor).Inc()
	m.entitiesTotal.WithLabelValues(params.RunID, params.Extractor).Add(float64(params.EntityCount))

	m.latency.Observe(params.DurationMs)
	m.notes.Add(1)
	m.entities.Add(int64(params.EntityCount))
}

func (m *prometheusMetrics) RecordRejection(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
	m.rejectCnt.Add(1)
}

func (m *prometheusMetrics) RecordEvaluation(params *EvaluationMetricParams) {
	if params == nil {
		return
	}
	m.evalF1.WithLabelValues(params.RunID, params.Block).Set(params.MicroF1)
}

func (m *prometheusMetrics) NoteLatency() LatencyHistogram { return m.latency }

func (m *prometheusMetrics) Snapshot() *PipelineStats {
	return &PipelineStats{
		NotesProcessed:  m.notes.Load(),
		EntitiesEmitted: m.entities.Load(),
		Rejections:      m.rejectCnt.Load(),
		P50LatencyMs:    m.latency.Percentile(50),
		P95LatencyMs:    m.latency.Percentile(95),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Noop implementation
// ─────────────────────────────────────────────────────────────────────────────

type noopMetrics struct {
	latency *latencyHistogram
}

// NewNoopMetrics returns a PipelineMetrics that records nothing except the
// latency histogram, which stays functional so percentile-based manifest
// fields remain correct without a Prometheus registry.
func NewNoopMetrics() PipelineMetrics {
	return &noopMetrics{latency: newLatencyHistogram()}
}

func (m *noopMetrics) RecordExtraction(params *ExtractionMetricParams) {
	if params != nil {
		m.latency.Observe(params.DurationMs)
	}
}
func (m *noopMetrics) RecordRejection(string)                  {}
func (m *noopMetrics) RecordEvaluation(*EvaluationMetricParams) {}
func (m *noopMetrics) NoteLatency() LatencyHistogram           { return m.latency }
func (m *noopMetrics) Snapshot() *PipelineStats {
	return &PipelineStats{
		P50LatencyMs: m.latency.Percentile(50),
		P95LatencyMs: m.latency.Percentile(95),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// latencyHistogram: sorted-slice nearest-rank percentiles
// ─────────────────────────────────────────────────────────────────────────────

type latencyHistogram struct {
	mu      sync.RWMutex
	samples []float64
	sorted  bool
}

func newLatencyHistogram() *latencyHistogram {
	return &latencyHistogram{}
}

func (h *latencyHistogram) Observe(durationMs float64) {
	h.mu.Lock()
	h.samples = append(h.samples, durationMs)
	h.sorted = false
	h.mu.Unlock()
}

func (h *latencyHistogram) Percentile(p float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.samples)
	if n == 0 {
		return 0
	}
	if !h.sorted {
		sort.Float64s(h.samples)
		h.sorted = true
	}
	if p <= 0 {
		return h.samples[0]
	}
	if p >= 100 {
		return h.samples[n-1]
	}
	k := int(math.Ceil(p / 100 * float64(n)))
	if k < 1 {
		k = 1
	}
	return h.samples[k-1]
}

func (h *latencyHistogram) Count() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return int64(len(h.samples))
}
