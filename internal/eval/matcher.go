// Package eval quantifies extraction quality against gold labels.  One
// invocation is a one-shot batch computation: load, dedupe, greedy-match,
// aggregate, persist.  There is no retry or intermediate state.
package eval

import (
	"strings"

	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// SpanCriterion selects how gold and predicted spans are compared.
type SpanCriterion int

const (
	// SpanExact requires identical (begin, end) offsets.
	SpanExact SpanCriterion = iota

	// SpanRelaxed requires only that the spans overlap.
	SpanRelaxed
)

// Counts holds the raw confusion counts for one entity type.
type Counts struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

type bucketKey struct {
	noteID string
	typ    entity.Type
}

// matchable reports whether a gold/prediction pair may be matched: same
// note, same type, equal normalized text, and spans satisfying the
// criterion.  Normalized text comparison folds case and whitespace; there
// is no fuzzy matching at this layer.
func matchable(g, p *entity.Record, criterion SpanCriterion) bool {
	if g.NoteID != p.NoteID || g.Type != p.Type {
		return false
	}
	if foldNorm(g.NormText) != foldNorm(p.NormText) {
		return false
	}
	if criterion == SpanExact {
		return g.Begin == p.Begin && g.End == p.End
	}
	return g.Overlaps(p.Begin, p.End)
}

func foldNorm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchCounts runs greedy first-unused matching per (note_id, entity_type)
// bucket and returns confusion counts per scored entity type.  Both inputs
// must already be deduplicated; file order is preserved inside each bucket,
// which makes the matching deterministic.  Unscored types are ignored.
func matchCounts(gold, pred []*entity.Record, criterion SpanCriterion) map[entity.Type]*Counts {
	counts := make(map[entity.Type]*Counts, len(entity.ScoredTypes))
	scored := make(map[entity.Type]bool, len(entity.ScoredTypes))
	for _, t := range entity.ScoredTypes {
		counts[t] = &Counts{}
		scored[t] = true
	}

	goldBuckets := make(map[bucketKey][]*entity.Record)
	predBuckets := make(map[bucketKey][]*entity.Record)
	var order []bucketKey
	for _, g := range gold {
		if !scored[g.Type] {
			continue
		}
		k := bucketKey{g.NoteID, g.Type}
		if _, seen := goldBuckets[k]; !seen {
			if _, other := predBuckets[k]; !other {
				order = append(order, k)
			}
		}
		goldBuckets[k] = append(goldBuckets[k], g)
	}
	for _, p := range pred {
		if !scored[p.Type] {
			continue
		}
		k := bucketKey{p.NoteID, p.Type}
		if _, seen := predBuckets[k]; !seen {
			if _, other := goldBuckets[k]; !other {
				order = append(order, k)
			}
		}
		predBuckets[k] = append(predBuckets[k], p)
	}

	for _, k := range order {
		golds := goldBuckets[k]
		preds := predBuckets[k]
		used := make([]bool, len(preds))
		c := counts[k.typ]
		for _, g := range golds {
			matched := false
			for i, p := range preds {
				if used[i] || !matchable(g, p, criterion) {
					continue
				}
				used[i] = true
				matched = true
				break
			}
			if matched {
				c.TP++
			} else {
				c.FN++
			}
		}
		for i := range preds {
			if !used[i] {
				c.FP++
			}
		}
	}
	return counts
}

// restrictToNotes filters records to those whose note id is in keep,
// preserving order.
func restrictToNotes(records []*entity.Record, keep map[string]bool) []*entity.Record {
	out := make([]*entity.Record, 0, len(records))
	for _, r := range records {
		if keep[r.NoteID] {
			out = append(out, r)
		}
	}
	return out
}

// noteSet collects the distinct note ids in records.
func noteSet(records []*entity.Record) map[string]bool {
	set := make(map[string]bool)
	for _, r := range records {
		set[r.NoteID] = true
	}
	return set
}
