package eval

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hc-tap/clinspan/internal/notes"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

func TestPerNoteReports_OrdersByFalsePositives(t *testing.T) {
	gold := []*entity.Record{
		rec("n1", entity.TypeProblem, 10, 22, "hypertension"),
		rec("n2", entity.TypeProblem, 0, 6, "asthma"),
	}
	pred := []*entity.Record{
		rec("n1", entity.TypeProblem, 10, 22, "hypertension"),
		rec("n2", entity.TypeProblem, 0, 6, "asthma"),
		rec("n2", entity.TypeProblem, 30, 35, "fever"),
		rec("n2", entity.TypeMedication, 40, 49, "metformin"),
		rec("n3", entity.TypeProblem, 0, 5, "cough"), // no gold for n3
	}

	reports := PerNoteReports(gold, pred)
	require.Len(t, reports, 2) // only the gold/pred intersection
	assert.Equal(t, "n2", reports[0].NoteID)
	assert.Len(t, reports[0].FP, 2)
	assert.Equal(t, 1, reports[0].TP)
	assert.Empty(t, reports[0].FN)
	assert.Equal(t, "n1", reports[1].NoteID)
	assert.Empty(t, reports[1].FP)
}

func TestPerNoteReports_RelaxedMatchingAcrossOffsets(t *testing.T) {
	gold := []*entity.Record{rec("n1", entity.TypeProblem, 10, 22, "hypertension")}
	pred := []*entity.Record{rec("n1", entity.TypeProblem, 12, 24, "hypertension")}

	reports := PerNoteReports(gold, pred)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].TP)
	assert.Empty(t, reports[0].FP)
	assert.Empty(t, reports[0].FN)
}

func TestReporter_WritesTopNotes(t *testing.T) {
	dir := t.TempDir()
	goldPath := filepath.Join(dir, "gold.jsonl")
	predPath := filepath.Join(dir, "pred.jsonl")
	require.NoError(t, notes.WriteEntityFile(goldPath, []*entity.Record{
		rec("n1", entity.TypeProblem, 10, 22, "hypertension"),
	}))
	require.NoError(t, notes.WriteEntityFile(predPath, []*entity.Record{
		rec("n1", entity.TypeProblem, 10, 22, "hypertension"),
		rec("n1", entity.TypeProblem, 30, 35, "fever"),
	}))

	var buf bytes.Buffer
	require.NoError(t, NewReporter(nil).Write(&buf, goldPath, predPath, 5))
	out := buf.String()
	assert.Contains(t, out, "top FP-heavy notes")
	assert.Contains(t, out, "- n1: FP=1 TP=1 FN=0")
	assert.Contains(t, out, "PROBLEM :: fever (30-35)")
}

func TestReporter_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, NewReporter(nil).Write(&buf,
		filepath.Join(dir, "absent_gold.jsonl"),
		filepath.Join(dir, "absent_pred.jsonl"), 0))
	assert.Contains(t, buf.String(), "nothing to report")
}
