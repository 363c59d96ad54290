package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseOrderMatchesTrialArc(t *testing.T) {
	want := []Phase{
		PhaseOpening, PhasePetitionerEvidence, PhasePetitionerWitness,
		PhaseCrossExamination, PhaseRespondentEvidence, PhaseRespondentWitness,
		PhaseRebuttal, PhaseFinalArguments, PhaseJudgment, PhaseGameOver,
	}
	p := PhaseOpening
	for i, expected := range want {
		assert.Equal(t, expected, p, "step %d", i)
		p = p.Next()
	}
	// Next saturates at game over.
	assert.Equal(t, PhaseGameOver, PhaseGameOver.Next())
	assert.True(t, PhaseGameOver.Terminal())
	assert.False(t, PhaseJudgment.Terminal())
}

func TestPhaseNamesCoverEveryPhase(t *testing.T) {
	for p := PhaseOpening; ; p = p.Next() {
		assert.NotEqual(t, "unknown_phase", p.String(), "phase %d", int(p))
		if p.Terminal() {
			break
		}
	}
	assert.Equal(t, "cross_examination", PhaseCrossExamination.String())
	assert.Equal(t, "unknown_phase", Phase(99).String())
}

func TestPhaseClassification(t *testing.T) {
	assert.True(t, PhasePetitionerWitness.IsWitnessPhase())
	assert.True(t, PhaseRespondentWitness.IsWitnessPhase())
	assert.False(t, PhaseCrossExamination.IsWitnessPhase())
	assert.True(t, PhasePetitionerEvidence.IsEvidencePhase())
	assert.True(t, PhaseRespondentEvidence.IsEvidencePhase())
	assert.False(t, PhaseOpening.IsEvidencePhase())
}

func TestSubPhaseCycle(t *testing.T) {
	assert.Equal(t, SubPhaseCross, SubPhaseChief.Next())
	assert.Equal(t, SubPhaseReExam, SubPhaseCross.Next())
	assert.Equal(t, SubPhaseNone, SubPhaseReExam.Next())
}

func TestParseActionType(t *testing.T) {
	at, err := ParseActionType("offer_evidence")
	require.NoError(t, err)
	assert.Equal(t, ActionOfferEvidence, at)

	_, err = ParseActionType("file_appeal")
	require.ErrorIs(t, err, ErrUnknownActionType)
}

func TestSideOpponent(t *testing.T) {
	assert.Equal(t, SideRespondent, SidePetitioner.Opponent())
	assert.Equal(t, SidePetitioner, SideRespondent.Opponent())
}
