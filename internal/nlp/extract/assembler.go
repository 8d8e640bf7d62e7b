package extract

import (
	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// keptSpan is a candidate that survived the rule engine, paired with the
// metadata needed to mint an entity record.
type keptSpan struct {
	Type    entity.Type
	Begin   int
	End     int
	Text    string
	Norm    string
	Section string
	Score   float64
}

// assemble turns kept spans into validated, deduplicated entity records.
// A span that violates the record invariants is dropped with a warning so a
// single bad note cannot abort a batch run; it is never clamped or "fixed".
func assemble(noteID, runID, source string, noteLen int, kept []keptSpan, log logging.Logger) []*entity.Record {
	records := make([]*entity.Record, 0, len(kept))
	for _, k := range kept {
		r := &entity.Record{
			NoteID:   noteID,
			RunID:    runID,
			Type:     k.Type,
			Text:     k.Text,
			NormText: k.Norm,
			Begin:    k.Begin,
			End:      k.End,
			Score:    k.Score,
			Section:  k.Section,
			Source:   source,
		}
		if err := r.Validate(); err != nil || r.End > noteLen {
			log.Warn("dropping invalid entity candidate",
				logging.String("note_id", noteID),
				logging.String("term", k.Norm),
				logging.Int("begin", k.Begin),
				logging.Int("end", k.End),
			)
			continue
		}
		records = append(records, r)
	}
	return entity.Dedupe(records)
}
