package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hc-tap/clinspan/internal/nlp/sections"
	"github.com/hc-tap/clinspan/pkg/types/entity"
)

func engineFor(t *testing.T, text, profileName string) *Engine {
	t.Helper()
	profile, err := ProfileByName(profileName)
	require.NoError(t, err)
	return NewEngine(text, sections.NewDetector().Detect(text), profile, nil)
}

func candidateAt(text, term string, typ entity.Type, intervals []sections.Interval) Candidate {
	begin := strings.Index(strings.ToLower(text), term)
	return Candidate{
		Type:    typ,
		Norm:    term,
		Begin:   begin,
		End:     begin + len(term),
		Section: sections.At(intervals, begin),
	}
}

func TestKeep_NegatedProblemRejected(t *testing.T) {
	text := "Patient denies chest tightness."
	e := engineFor(t, text, ProfileDefault)
	c := candidateAt(text, "chest tightness", entity.TypeProblem, nil)
	assert.False(t, e.Keep(c))
}

func TestKeep_NegationCueNo(t *testing.T) {
	text := "No fever today per patient report."
	e := engineFor(t, text, ProfileDefault)
	assert.False(t, e.Keep(candidateAt(text, "fever", entity.TypeProblem, nil)))
}

func TestKeep_MedicationWithDoseInMedicationsSection(t *testing.T) {
	text := "Medications: metformin 500 mg daily."
	ivs := sections.NewDetector().Detect(text)
	for _, profile := range []string{ProfileDefault, ProfileStrict, ProfileStrictLite} {
		t.Run(profile, func(t *testing.T) {
			e := engineFor(t, text, profile)
			c := candidateAt(text, "metformin", entity.TypeMedication, ivs)
			assert.True(t, e.Keep(c), "dose context must accept without the suffix heuristic")
		})
	}
}

func TestKeep_MedicationBySuffix(t *testing.T) {
	text := "Continue lisinopril for blood pressure."
	e := engineFor(t, text, ProfileDefault)
	assert.True(t, e.Keep(candidateAt(text, "lisinopril", entity.TypeMedication, nil)))
}

func TestKeep_MedicationWithoutDoseOrSuffix(t *testing.T) {
	text := "Medications: insulin."
	ivs := sections.NewDetector().Detect(text)
	c := candidateAt(text, "insulin", entity.TypeMedication, ivs)

	// Rejected by default, rescued by the section gate under strict profiles.
	assert.False(t, engineFor(t, text, ProfileDefault).Keep(c))
	assert.True(t, engineFor(t, text, ProfileStrict).Keep(c))
	assert.True(t, engineFor(t, text, ProfileStrictLite).Keep(c))
}

func TestKeep_StopwordsRejected(t *testing.T) {
	text := "plan and history reviewed with dose adjustments"
	e := engineFor(t, text, ProfileDefault)

	assert.False(t, e.Keep(candidateAt(text, "plan", entity.TypeProblem, nil)))
	assert.False(t, e.Keep(candidateAt(text, "history", entity.TypeProblem, nil)))
	assert.False(t, e.Keep(candidateAt(text, "dose", entity.TypeMedication, nil)))
}

func TestKeep_ShortTermRejected(t *testing.T) {
	e := engineFor(t, "flu symptoms with fever", ProfileDefault)
	assert.False(t, e.Keep(Candidate{Type: entity.TypeProblem, Norm: "flu", Begin: 0, End: 3}))
}

func TestKeep_FamilyHistoryExclusion(t *testing.T) {
	text := "Mother has diabetes and hypertension."
	e := engineFor(t, text, ProfileDefault)
	assert.False(t, e.Keep(candidateAt(text, "diabetes", entity.TypeProblem, nil)))
}

func TestKeep_PositiveContextProblem(t *testing.T) {
	text := "Patient presents with chest pain radiating to the arm."
	e := engineFor(t, text, ProfileDefault)
	assert.True(t, e.Keep(candidateAt(text, "chest pain", entity.TypeProblem, nil)))
}

func TestKeep_ClinicalAffixSkipsContextRequirement(t *testing.T) {
	text := "Longstanding gastritis."
	e := engineFor(t, text, ProfileDefault)
	assert.True(t, e.Keep(candidateAt(text, "gastritis", entity.TypeProblem, nil)))
}

func TestKeep_NoContextNoAffixRejected(t *testing.T) {
	text := "Some cough noted."
	e := engineFor(t, text, ProfileDefault)
	assert.False(t, e.Keep(candidateAt(text, "cough", entity.TypeProblem, nil)))
}

func TestKeep_ROSGatingByProfile(t *testing.T) {
	text := "Chief Complaint: follow-up. ROS: fever."
	ivs := sections.NewDetector().Detect(text)
	c := candidateAt(text, "fever", entity.TypeProblem, ivs)
	require.Equal(t, sections.SectionReviewOfSystems, c.Section)

	// Generic ROS terms without positive context fall in every strict variant.
	assert.False(t, engineFor(t, text, ProfileStrict).Keep(c))
	assert.False(t, engineFor(t, text, ProfileStrictLite).Keep(c))
}

func TestKeep_HistorySectionGatingByProfile(t *testing.T) {
	text := "Chief Complaint: follow-up. PMH: hypertension."
	ivs := sections.NewDetector().Detect(text)
	c := candidateAt(text, "hypertension", entity.TypeProblem, ivs)
	require.Equal(t, sections.SectionPastMedicalHistory, c.Section)

	// strict suppresses history-section spans without positive context;
	// strict-lite exempts the high-confidence vocabulary.
	assert.False(t, engineFor(t, text, ProfileStrict).Keep(c))
	assert.True(t, engineFor(t, text, ProfileStrictLite).Keep(c))
	assert.True(t, engineFor(t, text, ProfileDefault).Keep(c))
}

func TestKeep_AssessmentSectionEscapesGates(t *testing.T) {
	text := "PMH: unremarkable. Assessment: pneumonia, community acquired."
	ivs := sections.NewDetector().Detect(text)
	c := candidateAt(text, "pneumonia", entity.TypeProblem, ivs)
	require.Equal(t, sections.SectionAssessment, c.Section)

	assert.True(t, engineFor(t, text, ProfileStrict).Keep(c))
}

func TestCounters_TrackedOnlyUnderStrictProfiles(t *testing.T) {
	text := "Chief Complaint: follow-up. ROS: fever."
	ivs := sections.NewDetector().Detect(text)
	c := candidateAt(text, "fever", entity.TypeProblem, ivs)

	strict := engineFor(t, text, ProfileStrict)
	strict.Keep(c)
	assert.Equal(t, 1, strict.Counters()[ReasonByROS])

	def := engineFor(t, "Patient denies chest tightness.", ProfileDefault)
	def.Keep(candidateAt("Patient denies chest tightness.", "chest tightness", entity.TypeProblem, nil))
	assert.Empty(t, def.Counters())
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("strict-lite")
	require.NoError(t, err)
	assert.True(t, p.HighConfidenceExempt)

	p, err = ProfileByName("")
	require.NoError(t, err)
	assert.Equal(t, ProfileDefault, p.Name)

	_, err = ProfileByName("paranoid")
	assert.Error(t, err)
}
