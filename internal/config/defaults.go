package config

import (
	"github.com/google/uuid"

	"github.com/hc-tap/clinspan/internal/nlp/rules"
)

// Default value constants.  The path defaults mirror the fixture layout
// the rest of the tooling expects.
const (
	DefaultNotesDir     = "fixtures/notes"
	DefaultEntitiesDir  = "fixtures/entities"
	DefaultEnrichedDir  = "fixtures/enriched/entities"
	DefaultGoldPath     = "gold/gold_LOCAL.jsonl"
	DefaultManifestPath = "fixtures/runs_LOCAL.json"

	DefaultRunID   = "LOCAL"
	DefaultProfile = rules.ProfileDefault

	DefaultEvalTopNotes = 5

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Paths.NotesDir == "" {
		cfg.Paths.NotesDir = DefaultNotesDir
	}
	if cfg.Paths.EntitiesDir == "" {
		cfg.Paths.EntitiesDir = DefaultEntitiesDir
	}
	if cfg.Paths.EnrichedDir == "" {
		cfg.Paths.EnrichedDir = DefaultEnrichedDir
	}
	if cfg.Paths.GoldPath == "" {
		cfg.Paths.GoldPath = DefaultGoldPath
	}
	if cfg.Paths.ManifestPath == "" {
		cfg.Paths.ManifestPath = DefaultManifestPath
	}

	if cfg.Extraction.RunID == "" {
		cfg.Extraction.RunID = DefaultRunID
	}
	if cfg.Extraction.Profile == "" {
		cfg.Extraction.Profile = DefaultProfile
	}

	if cfg.Eval.TopNotes == 0 {
		cfg.Eval.TopNotes = DefaultEvalTopNotes
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// FreshRunID generates a unique run identifier for ad hoc runs that must
// not overwrite the fixture run's outputs.
func FreshRunID() string {
	return "run-" + uuid.NewString()
}
