package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *Record {
	return &Record{
		NoteID:   "n1",
		RunID:    "LOCAL",
		Type:     TypeProblem,
		Text:     "Hypertension",
		NormText: "hypertension",
		Begin:    10,
		End:      22,
		Score:    0.90,
		Section:  "past medical history",
	}
}

func TestValidate_AcceptsWellFormedRecord(t *testing.T) {
	assert.NoError(t, validRecord().Validate())
}

func TestValidate_RejectsBadSpans(t *testing.T) {
	tests := []struct {
		name       string
		begin, end int
	}{
		{"begin equals end", 5, 5},
		{"begin after end", 9, 4},
		{"negative begin", -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			r.Begin, r.End = tt.begin, tt.end
			assert.Error(t, r.Validate())
		})
	}
}

func TestValidate_RejectsMissingNoteIDAndBadType(t *testing.T) {
	r := validRecord()
	r.NoteID = ""
	assert.Error(t, r.Validate())

	r = validRecord()
	r.Type = "DRUG"
	assert.Error(t, r.Validate())
}

func TestDedupeKey_FoldsCaseAndWhitespace(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.NormText = "  Hypertension "
	assert.Equal(t, a.DedupeKey(), b.DedupeKey())
}

func TestDedupe_CollapsesExactDuplicatesOnly(t *testing.T) {
	a := validRecord()
	dup := validRecord()
	shifted := validRecord()
	shifted.Begin, shifted.End = 11, 23 // near-duplicate, different offsets

	out := Dedupe([]*Record{a, dup, shifted})
	require.Len(t, out, 2)
	assert.Same(t, a, out[0])
	assert.Same(t, shifted, out[1])
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []*Record{validRecord(), validRecord(), validRecord()}
	once := Dedupe(in)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestOverlaps(t *testing.T) {
	r := validRecord() // [10, 22)
	assert.True(t, r.Overlaps(21, 30))
	assert.True(t, r.Overlaps(0, 11))
	assert.False(t, r.Overlaps(22, 30)) // touching is not overlapping
	assert.False(t, r.Overlaps(0, 10))
}

func TestRecord_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(validRecord())
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, field := range []string{"note_id", "run_id", "entity_type", "text", "norm_text", "begin", "end", "score", "section"} {
		assert.Contains(t, m, field)
	}
	assert.NotContains(t, m, "source") // omitted when empty
}
