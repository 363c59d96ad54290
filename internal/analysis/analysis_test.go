package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtroom/internal/education"
	"courtroom/internal/types"
)

func loadDB(t *testing.T) *education.Catalogue {
	t.Helper()
	db, err := education.LoadCatalogue()
	require.NoError(t, err)
	return db
}

func sampleLog() (*Log, *Score) {
	log := &Log{}
	score := NewScore()

	log.Append(score, types.PhaseOpening, true, types.ActionMakeArgument, "opening statement", []Delta{
		{Category: types.ScorePersuasiveness, Points: 4, JudgeFavor: 2, Reason: "clean opening"},
	})
	log.Append(score, types.PhasePetitionerEvidence, true, types.ActionOfferEvidence, "offered P-1", []Delta{
		{Category: types.ScoreEvidenceHandling, Points: 6, JudgeFavor: 1, Reason: "exhibit admitted"},
	})
	log.Append(score, types.PhasePetitionerWitness, true, types.ActionAskQuestion, "chief examination", []Delta{
		{Category: types.ScoreWitnessExamination, Points: 1, Reason: "routine question"},
	})
	log.Append(score, types.PhaseCrossExamination, true, types.ActionAskQuestion, "caught contradiction", []Delta{
		{Category: types.ScoreWitnessExamination, Points: 9, JudgeFavor: 4, Reason: "contradiction exposed"},
	})
	log.Append(score, types.PhaseFinalArguments, true, types.ActionMakeArgument, "rambling closing", []Delta{
		{Category: types.ScoreDecorum, Points: -3, JudgeFavor: -2, Reason: "verbosity violation"},
	})
	return log, score
}

func TestReplayReproducesLiveScore(t *testing.T) {
	log, live := sampleLog()
	replayed := log.Replay()
	if diff := cmp.Diff(live, replayed); diff != "" {
		t.Fatalf("replayed score differs from live score (-live +replayed):\n%s", diff)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	log, _ := sampleLog()
	first := log.Replay()
	second := log.Replay()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("replay is not idempotent:\n%s", diff)
	}
}

func TestJudgeFavorBounded(t *testing.T) {
	s := NewScore()
	s.Apply(Delta{JudgeFavor: 500})
	assert.Equal(t, 100.0, s.JudgeFavor)
	s.Apply(Delta{JudgeFavor: -1000})
	assert.Equal(t, 0.0, s.JudgeFavor)
}

func TestEffectivenessClassification(t *testing.T) {
	log, _ := sampleLog()
	r := BuildReport(log, 100, loadDB(t), nil)
	require.Len(t, r.Reviews, 5)
	assert.Equal(t, Effective, r.Reviews[0].Effectiveness)
	assert.Equal(t, Neutral, r.Reviews[2].Effectiveness)
	assert.Equal(t, Ineffective, r.Reviews[4].Effectiveness)
}

func TestTurningPointThreshold(t *testing.T) {
	log, _ := sampleLog()
	r := BuildReport(log, 100, loadDB(t), nil)
	require.Len(t, r.TurningPoints, 1, "only the contradiction crosses the threshold")
	assert.Equal(t, "caught contradiction", r.TurningPoints[0].Entry.Summary)
	assert.Equal(t, 9.0, r.TurningPoints[0].Impact)
}

func TestMissedOpportunities(t *testing.T) {
	log := &Log{}
	score := NewScore()
	// Visited the evidence phase but never offered anything.
	log.Append(score, types.PhasePetitionerEvidence, true, types.ActionRequestResearch, "searched case law", nil)
	r := BuildReport(log, 100, loadDB(t), nil)

	found := false
	for _, m := range r.Missed {
		if m.Phase == types.PhasePetitionerEvidence && m.Action == types.ActionOfferEvidence {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{90, "A"}, {85, "A"}, {75, "B"}, {60, "C"}, {45, "D"}, {10, "F"}, {-5, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, grade(tc.total, 100), "total %.0f", tc.total)
	}
}

func TestRecommendationsTargetWeakCategories(t *testing.T) {
	log, _ := sampleLog()
	r := BuildReport(log, 100, loadDB(t), nil)
	require.NotEmpty(t, r.Recommendations)
	for _, rec := range r.Recommendations {
		assert.Equal(t, rec.Category, rec.Principle.Category, "tip must match the weak category")
	}
	// Weakest category first.
	for i := 1; i < len(r.Recommendations); i++ {
		assert.LessOrEqual(t, r.Recommendations[i-1].SubScore, r.Recommendations[i].SubScore)
	}
}

func TestSettlementReportedInDescription(t *testing.T) {
	log, _ := sampleLog()
	r := BuildReport(log, 100, loadDB(t), &SettlementRecord{Amount: 50000, By: types.SideRespondent, Rounds: 3})
	assert.Contains(t, r.Describe(), "settled for 50000")
}

func TestOptimalBaselineScalesWithCase(t *testing.T) {
	small := OptimalBaseline(1, 1)
	big := OptimalBaseline(4, 6)
	assert.Greater(t, big, small)
}
