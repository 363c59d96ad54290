package sidebar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtroom/internal/types"
)

func TestExcludeEvidenceGrantedWithGroundAndPatience(t *testing.T) {
	s := NewState(3)
	out, err := s.Evaluate(Request{
		Type:    types.SidebarExcludeEvidence,
		Reason:  "the exhibit is unfairly prejudicial and of doubtful authenticity",
		Exhibit: "email",
	}, 80)
	require.NoError(t, err)
	assert.True(t, out.Granted)
	assert.Equal(t, DirectiveExcludeEvidence, out.Directive)
	assert.Equal(t, "email", out.Exhibit)
	assert.Equal(t, 1, out.TurnCost)
}

func TestExcludeEvidenceDeniedOnLowPatience(t *testing.T) {
	s := NewState(3)
	out, err := s.Evaluate(Request{
		Type:    types.SidebarExcludeEvidence,
		Reason:  "the exhibit is prejudicial",
		Exhibit: "email",
	}, 30)
	require.NoError(t, err)
	assert.False(t, out.Granted)
	assert.Equal(t, DirectiveNone, out.Directive)
}

func TestAdjournmentPlausibilityRules(t *testing.T) {
	s := NewState(3)
	out, err := s.Evaluate(Request{Type: types.SidebarAdjournment, Reason: "our witness unavailable until tomorrow"}, 90)
	require.NoError(t, err)
	assert.True(t, out.Granted)
	assert.Equal(t, DirectiveAdjourn, out.Directive)
	assert.Zero(t, out.TurnCost, "the recess is not charged to the stage")

	out, err = s.Evaluate(Request{Type: types.SidebarAdjournment, Reason: "we would like more time"}, 90)
	require.NoError(t, err)
	assert.False(t, out.Granted)
}

func TestBudgetExhaustion(t *testing.T) {
	s := NewState(1)
	_, err := s.Evaluate(Request{Type: types.SidebarClarification, Reason: "which exhibit?"}, 90)
	require.NoError(t, err)
	_, err = s.Evaluate(Request{Type: types.SidebarClarification, Reason: "which witness?"}, 90)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResourceExhausted))
	assert.Len(t, s.History(), 1, "rejected-for-budget requests are not recorded")
}

func TestSettlementLifecycle(t *testing.T) {
	s := NewState(3)
	out, err := s.Evaluate(Request{Type: types.SidebarSettlement, Reason: "the parties wish to confer"}, 70)
	require.NoError(t, err)
	require.True(t, out.Granted)
	assert.Equal(t, DirectiveOpenSettlement, out.Directive)

	n := s.Settlement()
	require.True(t, n.Open())
	require.NoError(t, n.Propose(Offer{By: types.SideRespondent, Amount: 40000}))
	require.NoError(t, n.Propose(Offer{By: types.SidePetitioner, Amount: 70000}))

	accepted, err := n.Accept()
	require.NoError(t, err)
	assert.Equal(t, 70000.0, accepted.Amount)
	assert.False(t, n.Open(), "negotiation concludes on acceptance")

	got, ok := n.Accepted()
	require.True(t, ok)
	assert.Equal(t, accepted, got)
	assert.Equal(t, 2, n.Rounds())
}

func TestSettlementRejectResumesTrial(t *testing.T) {
	var n Negotiation
	n.open = true
	require.NoError(t, n.Propose(Offer{By: types.SideRespondent, Amount: 1000}))
	require.NoError(t, n.Reject())
	assert.False(t, n.Open())
	_, ok := n.Accepted()
	assert.False(t, ok)
}

func TestSettlementReopensAfterRejection(t *testing.T) {
	s := NewState(3)
	out, err := s.Evaluate(Request{Type: types.SidebarSettlement, Reason: "the parties wish to confer"}, 70)
	require.NoError(t, err)
	require.True(t, out.Granted)

	n := s.Settlement()
	require.NoError(t, n.Propose(Offer{By: types.SideRespondent, Amount: 5000}))
	require.NoError(t, n.Reject())
	require.False(t, n.Open())

	out, err = s.Evaluate(Request{Type: types.SidebarSettlement, Reason: "circumstances have changed"}, 70)
	require.NoError(t, err)
	require.True(t, out.Granted)
	assert.True(t, n.Open(), "a granted settlement sidebar starts a fresh round")
	assert.NoError(t, n.Propose(Offer{By: types.SideRespondent, Amount: 30000}))
}

func TestProposeRequiresOpenNegotiation(t *testing.T) {
	var n Negotiation
	err := n.Propose(Offer{By: types.SidePetitioner, Amount: 100})
	assert.Error(t, err)
}

func TestEvaluateOffer(t *testing.T) {
	claim := 100000.0
	cases := []struct {
		name      string
		offer     Offer
		recipient types.Side
		rounds    int
		want      OfferDecision
	}{
		{"petitioner accepts generous offer", Offer{By: types.SideRespondent, Amount: 65000}, types.SidePetitioner, 1, DecisionAccept},
		{"petitioner counters a middling offer", Offer{By: types.SideRespondent, Amount: 30000}, types.SidePetitioner, 1, DecisionCounter},
		{"petitioner walks from an insult", Offer{By: types.SideRespondent, Amount: 5000}, types.SidePetitioner, 1, DecisionReject},
		{"respondent accepts a modest demand", Offer{By: types.SidePetitioner, Amount: 60000}, types.SideRespondent, 1, DecisionAccept},
		{"respondent counters a steep demand", Offer{By: types.SidePetitioner, Amount: 95000}, types.SideRespondent, 1, DecisionCounter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EvaluateOffer(tc.offer, claim, tc.recipient, tc.rounds))
		})
	}
}

func TestCounterAmountMovesTowardMidpoint(t *testing.T) {
	claim := 100000.0
	offer := Offer{By: types.SideRespondent, Amount: 30000}
	counter := CounterAmount(offer, claim, types.SidePetitioner)
	assert.Greater(t, counter, offer.Amount)
	assert.Less(t, counter, claim)
}
