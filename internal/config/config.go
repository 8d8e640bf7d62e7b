// Package config defines all configuration structures for the clinspan
// pipeline.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/internal/nlp/rules"
)

// PathsConfig holds every file and directory the pipeline touches.  All
// state is file-based: a note corpus directory, JSONL entity outputs, a
// gold label file, and the run manifest.
type PathsConfig struct {
	NotesDir     string `mapstructure:"notes_dir"`
	EntitiesDir  string `mapstructure:"entities_dir"`
	EnrichedDir  string `mapstructure:"enriched_dir"`
	GoldPath     string `mapstructure:"gold_path"`
	ManifestPath string `mapstructure:"manifest_path"`
}

// BundlePath returns the bundled prediction file for a run, matching the
// layout the entity sink writes.
func (p PathsConfig) BundlePath(runID string) string {
	return filepath.Join(p.EnrichedDir, "run="+runID, "part-000.jsonl")
}

// ExtractionConfig holds rule-extractor tunables.
type ExtractionConfig struct {
	RunID            string `mapstructure:"run_id"`
	Profile          string `mapstructure:"profile"` // "default" | "strict" | "strict-lite"
	Limit            int    `mapstructure:"limit"`   // 0 means the whole corpus
	ExpandQualifiers bool   `mapstructure:"expand_qualifiers"`
}

// EvalConfig holds evaluation and reporting tunables.
type EvalConfig struct {
	// TopNotes caps how many FP-heavy notes the report command prints.
	TopNotes int `mapstructure:"top_notes"`
}

// MetricsConfig toggles the Prometheus registry.  The pipeline is a batch
// job, so metrics default off; long-lived deployments that scrape the
// process enable it.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the root configuration structure for the pipeline.
type Config struct {
	Paths      PathsConfig      `mapstructure:"paths"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Eval       EvalConfig       `mapstructure:"eval"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        logging.Config   `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error
// as fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Paths.NotesDir == "" {
		return fmt.Errorf("config: paths.notes_dir is required")
	}
	if c.Paths.ManifestPath == "" {
		return fmt.Errorf("config: paths.manifest_path is required")
	}
	if c.Extraction.RunID == "" {
		return fmt.Errorf("config: extraction.run_id is required")
	}
	if _, err := rules.ProfileByName(c.Extraction.Profile); err != nil {
		return fmt.Errorf("config: extraction.profile %q is invalid; expected default|strict|strict-lite", c.Extraction.Profile)
	}
	if c.Extraction.Limit < 0 {
		return fmt.Errorf("config: extraction.limit must be >= 0, got %d", c.Extraction.Limit)
	}
	if c.Eval.TopNotes < 0 {
		return fmt.Errorf("config: eval.top_notes must be >= 0, got %d", c.Eval.TopNotes)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}
