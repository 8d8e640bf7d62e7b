package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hc-tap/clinspan/internal/nlp/textnorm"
	"github.com/hc-tap/clinspan/internal/notes"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

func newExtractor(t *testing.T, cfg Config) *RuleExtractor {
	t.Helper()
	if cfg.RunID == "" {
		cfg.RunID = "LOCAL"
	}
	x, err := NewRuleExtractor(cfg, nil, nil)
	require.NoError(t, err)
	return x
}

func extractText(t *testing.T, x *RuleExtractor, text string) []*entity.Record {
	t.Helper()
	records, err := x.Extract(context.Background(), &notes.Note{NoteID: "n1", Text: text})
	require.NoError(t, err)
	return records
}

func TestExtract_ProblemAndMedication(t *testing.T) {
	x := newExtractor(t, Config{})
	text := "Patient presents with hypertension. Medications: metformin 500 mg daily."
	records := extractText(t, x, text)
	require.Len(t, records, 2)

	byType := map[entity.Type]*entity.Record{}
	for _, r := range records {
		byType[r.Type] = r
	}

	prob := byType[entity.TypeProblem]
	require.NotNil(t, prob)
	assert.Equal(t, "hypertension", prob.NormText)
	assert.Equal(t, 0.90, prob.Score)

	med := byType[entity.TypeMedication]
	require.NotNil(t, med)
	assert.Equal(t, "metformin", med.NormText)
	assert.Equal(t, "metformin 500 mg", med.Text)
	assert.Equal(t, 0.95, med.Score)
	assert.Equal(t, "medications", med.Section)
}

func TestExtract_VerbatimSpanInvariant(t *testing.T) {
	x := newExtractor(t, Config{})
	raw := "Patient  presents with\n hypertension.  Medications: lisinopril 10 mg."
	normalized := textnorm.NormalizeText(raw)

	records := extractText(t, x, raw)
	require.NotEmpty(t, records)
	for _, r := range records {
		require.NoError(t, r.Validate())
		assert.LessOrEqual(t, r.End, len(normalized))
		assert.Equal(t, normalized[r.Begin:r.End], r.Text,
			"offsets must index the normalized note text")
	}
}

func TestExtract_NegatedProblemDropped(t *testing.T) {
	x := newExtractor(t, Config{})
	records := extractText(t, x, "Patient denies chest tightness.")
	assert.Empty(t, records)
}

func TestExtract_RunAndSourceStamps(t *testing.T) {
	x := newExtractor(t, Config{RunID: "RUN-7"})
	records := extractText(t, x, "Assessment: pneumonia improving.")
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, "RUN-7", r.RunID)
		assert.Equal(t, SourceRule, r.Source)
	}
}

func TestExtract_EmptyNote(t *testing.T) {
	x := newExtractor(t, Config{})
	records := extractText(t, x, "   \n\t ")
	assert.Empty(t, records)
}

func TestExtract_DeduplicatesRepeatedMentionKeepsDistinctOffsets(t *testing.T) {
	x := newExtractor(t, Config{})
	records := extractText(t, x, "Assessment: asthma stable. Plan: asthma action plan reviewed.")

	var spans [][2]int
	for _, r := range records {
		assert.Equal(t, "asthma", r.NormText)
		spans = append(spans, [2]int{r.Begin, r.End})
	}
	require.Len(t, records, 2, "same term at different offsets is two mentions")
	assert.NotEqual(t, spans[0], spans[1])
}

func TestExtract_CustomLexicon(t *testing.T) {
	x := newExtractor(t, Config{ProblemTerms: []string{"widgetosis"}})
	records := extractText(t, x, "Assessment: widgetosis confirmed.")
	require.Len(t, records, 1)
	assert.Equal(t, "widgetosis", records[0].NormText)
}

func TestExtract_ContextCancellation(t *testing.T) {
	x := newExtractor(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := x.Extract(ctx, &notes.Note{NoteID: "n1", Text: "whatever"})
	assert.Error(t, err)
}

func TestExtract_StrictProfileSuppressesROS(t *testing.T) {
	text := "ROS: headache, fever. Assessment: hypertension."

	loose := extractText(t, newExtractor(t, Config{Profile: "default"}), text)
	strict := extractText(t, newExtractor(t, Config{Profile: "strict"}), text)

	countProblems := func(rs []*entity.Record, norm string) int {
		n := 0
		for _, r := range rs {
			if r.Type == entity.TypeProblem && r.NormText == norm {
				n++
			}
		}
		return n
	}
	// Both keep the assessment finding; only strict drops the ROS boilerplate.
	assert.Equal(t, 1, countProblems(loose, "hypertension"))
	assert.Equal(t, 1, countProblems(strict, "hypertension"))
	assert.Equal(t, 0, countProblems(strict, "fever"))
	assert.Equal(t, 0, countProblems(strict, "headache"))
}
