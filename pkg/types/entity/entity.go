// Package entity defines the canonical entity record exchanged between the
// extraction pipeline and the evaluation engine.  The record is the data
// contract of the system: extractors of any kind (rule-based, model-backed)
// must emit it, and evaluation consumes nothing else.
package entity

import (
	"fmt"
	"strings"
)

// Type is the clinical entity category.
type Type string

const (
	// TypeProblem marks diseases, symptoms, and other clinical problems.
	TypeProblem Type = "PROBLEM"

	// TypeMedication marks drug mentions, optionally including a dose.
	TypeMedication Type = "MEDICATION"

	// TypeTest marks labs/imaging/procedures.  Some extractor variants emit
	// it; the evaluation engine scores only PROBLEM and MEDICATION.
	TypeTest Type = "TEST"
)

// ScoredTypes lists the entity types the evaluation engine scores.
var ScoredTypes = []Type{TypeProblem, TypeMedication}

// Valid reports whether t is one of the known entity types.
func (t Type) Valid() bool {
	switch t {
	case TypeProblem, TypeMedication, TypeTest:
		return true
	}
	return false
}

// Record is a single extracted (or gold-curated) clinical mention.
// Begin/End are half-open character offsets into the normalized note text
// such that text[Begin:End] == Text.
type Record struct {
	NoteID   string  `json:"note_id"`
	RunID    string  `json:"run_id"`
	Type     Type    `json:"entity_type"`
	Text     string  `json:"text"`
	NormText string  `json:"norm_text"`
	Begin    int     `json:"begin"`
	End      int     `json:"end"`
	Score    float64 `json:"score"`
	Section  string  `json:"section"`

	// Source tags the producing extractor.  Evaluation ignores it.
	Source string `json:"source,omitempty"`
}

// Validate enforces the record invariants: a note id, a known entity type,
// and 0 <= Begin < End.  Records failing Validate must never reach storage
// or evaluation.
func (r *Record) Validate() error {
	if r.NoteID == "" {
		return fmt.Errorf("entity record missing note_id")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("entity record has unknown entity_type %q", r.Type)
	}
	if r.Begin < 0 || r.Begin >= r.End {
		return fmt.Errorf("entity record span invalid: begin=%d end=%d", r.Begin, r.End)
	}
	return nil
}

// Key is the deduplication identity of a record.  Two records with the same
// Key describe the same mention; case/whitespace differences in the
// normalized text do not produce distinct keys.
type Key struct {
	NoteID string
	Type   Type
	Begin  int
	End    int
	Norm   string
}

// DedupeKey derives the record's deduplication key.
func (r *Record) DedupeKey() Key {
	return Key{
		NoteID: r.NoteID,
		Type:   r.Type,
		Begin:  r.Begin,
		End:    r.End,
		Norm:   strings.ToLower(strings.TrimSpace(r.NormText)),
	}
}

// Overlaps reports whether the record's span overlaps [begin, end).
func (r *Record) Overlaps(begin, end int) bool {
	lo := r.Begin
	if begin > lo {
		lo = begin
	}
	hi := r.End
	if end < hi {
		hi = end
	}
	return hi-lo > 0
}

// Dedupe removes exact duplicates from records, preserving first-seen order.
// Running it twice yields the same result as running it once.
func Dedupe(records []*Record) []*Record {
	seen := make(map[Key]struct{}, len(records))
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		k := r.DedupeKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
