package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFinder_RejectsEmptyTermList(t *testing.T) {
	_, err := NewFinder(nil, false)
	assert.Error(t, err)
}

func TestFind_CaseInsensitiveWordBoundary(t *testing.T) {
	f, err := NewFinder([]string{"hypertension"}, false)
	require.NoError(t, err)

	spans := f.Find("Known HYPERTENSION, controlled.")
	require.Len(t, spans, 1)
	assert.Equal(t, "HYPERTENSION", spans[0].Text)
	assert.Equal(t, "hypertension", spans[0].Norm)
	assert.Equal(t, 6, spans[0].Begin)
	assert.Equal(t, 18, spans[0].End)
}

func TestFind_NoPartialWordMatches(t *testing.T) {
	f, err := NewFinder([]string{"pain"}, false)
	require.NoError(t, err)
	assert.Empty(t, f.Find("painter repainted the wall"))
}

func TestFind_DoseExtension(t *testing.T) {
	f, err := NewFinder([]string{"metformin"}, true)
	require.NoError(t, err)

	spans := f.Find("Started metformin 500 mg twice daily.")
	require.Len(t, spans, 1)
	assert.Equal(t, "metformin 500 mg", spans[0].Text)
	assert.Equal(t, "metformin", spans[0].Norm)
	// Verbatim span invariant: text[Begin:End] == Text.
	assert.Equal(t, "Started metformin 500 mg twice daily."[spans[0].Begin:spans[0].End], spans[0].Text)
}

func TestFind_DoseOptional(t *testing.T) {
	f, err := NewFinder([]string{"lisinopril"}, true)
	require.NoError(t, err)

	spans := f.Find("Continue lisinopril as before.")
	require.Len(t, spans, 1)
	assert.Equal(t, "lisinopril", spans[0].Text)
}

func TestFind_DoseUnits(t *testing.T) {
	f, err := NewFinder([]string{"insulin"}, true)
	require.NoError(t, err)

	spans := f.Find("insulin 10 units at bedtime")
	require.Len(t, spans, 1)
	assert.Equal(t, "insulin 10 units", spans[0].Text)
}

func TestFind_OrderIsTermListThenLeftToRight(t *testing.T) {
	f, err := NewFinder([]string{"nausea", "fever"}, false)
	require.NoError(t, err)

	spans := f.Find("fever then nausea then nausea again")
	require.Len(t, spans, 3)
	assert.Equal(t, "nausea", spans[0].Norm)
	assert.Equal(t, "nausea", spans[1].Norm)
	assert.Less(t, spans[0].Begin, spans[1].Begin)
	assert.Equal(t, "fever", spans[2].Norm)
}

func TestFind_MultiWordTerm(t *testing.T) {
	f, err := NewFinder([]string{"chest tightness"}, false)
	require.NoError(t, err)

	spans := f.Find("Patient denies chest tightness.")
	require.Len(t, spans, 1)
	assert.Equal(t, "chest tightness", spans[0].Norm)
	assert.Equal(t, 15, spans[0].Begin)
}

func TestExpandProblemTerms(t *testing.T) {
	out := ExpandProblemTerms([]string{"asthma"})
	assert.Contains(t, out, "asthma")
	assert.Contains(t, out, "chronic asthma")
	assert.Contains(t, out, "acute asthma")
	// Longest variants sort first so they win span extraction downstream.
	assert.True(t, len(out[0]) >= len(out[len(out)-1]))
}
