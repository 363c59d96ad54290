package witness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtroom/internal/types"
)

func TestClassifyQuestion(t *testing.T) {
	cases := []struct {
		text string
		want QuestionStyle
	}{
		{"What did you see that evening?", StyleOpen},
		{"Describe the scene for the court.", StyleOpen},
		{"Isn't it true that you left early?", StyleLeading},
		{"You signed the contract, correct?", StyleLeading},
		{"Admit it, you falsified the ledger!", StyleAggressive},
		{"Answer the question.", StyleAggressive},
		{"Please state your name for the record.", StyleNeutral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyQuestion(tc.text), "text: %s", tc.text)
	}
}

func TestRevealMonotonicAndBounded(t *testing.T) {
	w := New("w1", "Dr. Rao", types.SidePetitioner, TemplateExpert)
	prev := w.RevealPercent()
	for i := 0; i < 40; i++ {
		w.AskQuestion(true, "What did you observe?")
		cur := w.RevealPercent()
		require.GreaterOrEqual(t, cur, prev, "reveal must never decrease")
		require.LessOrEqual(t, cur, 100)
		require.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
	assert.Equal(t, 100, w.RevealPercent())
}

func TestContradictionDetection(t *testing.T) {
	w := New("w1", "Mr. Sharma", types.SidePetitioner, TemplateEyewitness)
	w.RecordChiefAnswer("I delivered the signed contract on Monday morning.")

	hostilityBefore := w.stats.Hostility
	c, found := w.CheckCrossAnswer("I never delivered the signed contract.")
	require.True(t, found)
	assert.Equal(t, 1, w.ContradictionsCaught, "exactly one contradiction counted")
	assert.Greater(t, w.stats.Hostility, hostilityBefore, "hostility must rise")
	assert.Contains(t, c.ChiefAssertion, "delivered")

	// A consistent answer does not count.
	_, found = w.CheckCrossAnswer("I delivered the signed contract as agreed.")
	assert.False(t, found)
	assert.Equal(t, 1, w.ContradictionsCaught)
}

func TestSeededFactsCatchContradictions(t *testing.T) {
	w := New("w1", "Ms. Iyer", types.SideRespondent, TemplateCharacter)
	w.SeedFacts([]string{"The warehouse inspection happened in March."})
	_, found := w.CheckCrossAnswer("There was no warehouse inspection in March.")
	assert.True(t, found)
}

func TestBreakdownStickyUnderSustainedAggression(t *testing.T) {
	w := New("w1", "Mr. Verma", types.SideRespondent, TemplateEyewitness)
	broke := false
	for i := 0; i < 30 && !broke; i++ {
		out := w.AskQuestion(false, "Admit it, you lied to this court!")
		broke = out.BrokeDown
	}
	require.True(t, broke, "sustained aggressive cross must eventually break the witness")
	assert.Equal(t, ReactionBreakdown, w.Reaction())

	// Pinned even under gentle follow-up questions.
	out := w.AskQuestion(false, "What is your name?")
	assert.Equal(t, ReactionBreakdown, out.Reaction)
	assert.True(t, w.HasBrokenDown())
}

func TestDisplayViewRevealGating(t *testing.T) {
	w := New("w1", "Dr. Rao", types.SidePetitioner, TemplateExpert)

	v := w.DisplayView()
	assert.Nil(t, v.Stats, "numbers hidden below the reveal threshold")
	assert.NotEmpty(t, v.Hints, "qualitative hints only")

	for w.RevealPercent() < RevealNumericThreshold {
		w.AskQuestion(true, "What did you test in the laboratory?")
	}
	v = w.DisplayView()
	require.NotNil(t, v.Stats, "numbers visible once threshold is crossed")
	assert.Empty(t, v.Hints)
	assert.Equal(t, w.stats, *v.Stats)
}

func TestRapportFromFriendlyOpenExamination(t *testing.T) {
	w := New("w1", "Ms. Pillai", types.SidePetitioner, TemplateCharacter)
	for i := 0; i < 3; i++ {
		w.AskQuestion(true, "What happened next?")
	}
	assert.True(t, w.RapportBuilt())
}

func TestFingerprintIgnoresNoise(t *testing.T) {
	fps := fingerprints("Yes. No sir. I saw the respondent sign the agreement at noon.")
	require.Len(t, fps, 1, "short acknowledgements carry no signal")
	assert.False(t, strings.Contains(fps[0].text, "Yes"))
}
