package eval

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hc-tap/clinspan/internal/infrastructure/monitoring/logging"
	"github.com/hc-tap/clinspan/internal/notes"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

// defaultTopNotes limits how many FP-heavy notes the report prints.
const defaultTopNotes = 5

// maxSpansPerNote limits how many false-positive spans are listed per note.
const maxSpansPerNote = 5

// NoteReport summarizes relaxed-mode matching for one note.
type NoteReport struct {
	NoteID string
	TP     int
	FP     []*entity.Record
	FN     []*entity.Record
}

// PerNoteReports runs relaxed greedy matching note by note over the
// gold/prediction note intersection and returns one report per shared
// note, sorted by false-positive count descending (note id ascending on
// ties).  It surfaces which notes drag precision down, which the aggregate
// metric blocks cannot show.
func PerNoteReports(gold, pred []*entity.Record) []*NoteReport {
	gold = entity.Dedupe(gold)
	pred = entity.Dedupe(pred)

	goldByNote := make(map[string][]*entity.Record)
	predByNote := make(map[string][]*entity.Record)
	for _, g := range gold {
		goldByNote[g.NoteID] = append(goldByNote[g.NoteID], g)
	}
	for _, p := range pred {
		predByNote[p.NoteID] = append(predByNote[p.NoteID], p)
	}

	var shared []string
	for id := range goldByNote {
		if _, ok := predByNote[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)

	reports := make([]*NoteReport, 0, len(shared))
	for _, id := range shared {
		golds := goldByNote[id]
		preds := predByNote[id]
		used := make([]bool, len(preds))
		r := &NoteReport{NoteID: id}
		for _, g := range golds {
			matched := false
			for i, p := range preds {
				if used[i] || !matchable(g, p, SpanRelaxed) {
					continue
				}
				used[i] = true
				matched = true
				break
			}
			if matched {
				r.TP++
			} else {
				r.FN = append(r.FN, g)
			}
		}
		for i, p := range preds {
			if !used[i] {
				r.FP = append(r.FP, p)
			}
		}
		reports = append(reports, r)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return len(reports[i].FP) > len(reports[j].FP)
	})
	return reports
}

// Reporter loads gold and prediction files and writes the FP-heavy note
// report in a terse operator-facing format.
type Reporter struct {
	log logging.Logger
}

func NewReporter(log logging.Logger) *Reporter {
	if log == nil {
		log = logging.NewNop()
	}
	return &Reporter{log: log.Named("report")}
}

// Write renders the report for the given files.  Missing or empty inputs
// produce an explanatory line instead of an error.
func (r *Reporter) Write(w io.Writer, goldPath, predPath string, top int) error {
	if top <= 0 {
		top = defaultTopNotes
	}
	gold, _, err := notes.ReadEntityFileIfExists(goldPath, r.log)
	if err != nil {
		return err
	}
	pred, _, err := notes.ReadEntityFileIfExists(predPath, r.log)
	if err != nil {
		return err
	}
	if len(gold) == 0 || len(pred) == 0 {
		_, err = fmt.Fprintln(w, "missing predictions or gold labels, nothing to report")
		return err
	}

	reports := PerNoteReports(gold, pred)
	if len(reports) == 0 {
		_, err = fmt.Fprintln(w, "no overlapping notes between gold and predictions")
		return err
	}
	if len(reports) > top {
		reports = reports[:top]
	}

	fmt.Fprintln(w, "top FP-heavy notes")
	for _, nr := range reports {
		fmt.Fprintf(w, "- %s: FP=%d TP=%d FN=%d\n", nr.NoteID, len(nr.FP), nr.TP, len(nr.FN))
		spans := nr.FP
		if len(spans) > maxSpansPerNote {
			spans = spans[:maxSpansPerNote]
		}
		for _, fp := range spans {
			text := strings.ReplaceAll(fp.Text, "\n", " ")
			fmt.Fprintf(w, "    [ ] %s :: %s (%d-%d)\n", fp.Type, text, fp.Begin, fp.End)
		}
	}
	return nil
}
