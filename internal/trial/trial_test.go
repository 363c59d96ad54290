package trial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"courtroom/internal/casefile"
	"courtroom/internal/config"
	"courtroom/internal/evidence"
	"courtroom/internal/gen"
	"courtroom/internal/types"
)

func sampleRecord() *casefile.Record {
	return &casefile.Record{
		Title:        "Okafor v. Meridian Logistics",
		Court:        "High Court of Judicature",
		Petitioner:   casefile.Party{Name: "Adaeze Okafor", Counsel: "Ms. Bello"},
		Respondent:   casefile.Party{Name: "Meridian Logistics Ltd.", Counsel: "Mr. Varga"},
		Issues:       []string{"whether the respondent's driver was negligent"},
		Compensation: 100000,
		Summary:      "A warehouse collision left the petitioner unable to work.",
		Witnesses: []casefile.WitnessProfile{
			{
				ID: "w-foreman", Name: "Daniel Iwu", Side: types.SidePetitioner,
				Template: casefile.TemplateEyewitness,
				KeyFacts: []string{"The forklift reversed without any warning signal."},
			},
			{
				ID: "w-manager", Name: "Petra Szabo", Side: types.SideRespondent,
				Template: casefile.TemplateHostileParty,
				KeyFacts: []string{"Every driver completed the safety certification."},
			},
		},
		Evidence: []casefile.EvidenceMeta{
			{ID: "ev-log", Side: types.SidePetitioner, Category: "document", Title: "Shift log"},
			{ID: "ev-photo", Side: types.SidePetitioner, Category: "photograph", Title: "Loading bay photo"},
			{ID: "ev-cert", Side: types.SideRespondent, Category: "record", Title: "Certification record"},
		},
		JudgeProfile: "pragmatist",
	}
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	e, err := NewEngine(cfg, gen.NewCanned(), zap.NewNop(),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	require.NoError(t, err)
	return e
}

func startSession(t *testing.T, e *Engine, side types.Side) *TrialSession {
	t.Helper()
	sess, _, err := e.StartSession(context.Background(), sampleRecord(), side)
	require.NoError(t, err)
	return sess
}

func TestStartSessionOpensWithPetitioner(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)

	assert.Equal(t, types.PhaseOpening, sess.Phase())
	assert.Equal(t, types.SidePetitioner, sess.TurnOwner())
	assert.True(t, sess.IsPlayerTurn())

	acts := e.AvailableActions(sess)
	assert.Contains(t, acts, types.ActionMakeArgument)
	assert.Contains(t, acts, types.ActionRestCase)
	assert.NotContains(t, acts, types.ActionNoQuestions)
	assert.NotContains(t, acts, types.ActionAskQuestion)
}

func TestStartSessionRejectsBrokenRecord(t *testing.T) {
	e := newTestEngine(t, nil)
	rec := sampleRecord()
	rec.Witnesses = nil
	_, _, err := e.StartSession(context.Background(), rec, types.SidePetitioner)
	require.Error(t, err)
}

func TestActionOutsidePhaseWhitelistRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)

	_, err := e.ProcessPlayerAction(context.Background(), sess,
		types.Action{Type: types.ActionAskQuestion, Text: "What did you see?"})
	require.ErrorIs(t, err, types.ErrInvalidActionForPhase)
	assert.Equal(t, types.PhaseOpening, sess.Phase())
	assert.Equal(t, 0, sess.PhaseTurn())
}

func TestProcessingOutOfTurnRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SideRespondent)

	// The petitioner opens, so the respondent player must wait.
	require.False(t, sess.IsPlayerTurn())
	_, err := e.ProcessPlayerAction(context.Background(), sess,
		types.Action{Type: types.ActionMakeArgument, Text: "My Lord, we deny it all."})
	require.ErrorIs(t, err, types.ErrNotPlayerTurn)

	_, err = e.RunAITurn(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, sess.IsPlayerTurn())
}

func TestMakeArgumentScoresPersuasiveness(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)

	res, err := e.ProcessPlayerAction(context.Background(), sess, types.Action{
		Type: types.ActionMakeArgument,
		Text: "Your honor, the evidence will show the respondent's driver reversed blind.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Messages)
	assert.Greater(t, sess.Score().Categories[types.ScorePersuasiveness], 0.0)
	require.NotNil(t, res.Timing)
}

// advanceToPlayerEvidence plays a petitioner session through the opening
// statements so the session sits at the petitioner evidence phase with the
// floor on the player.
func advanceToPlayerEvidence(t *testing.T, e *Engine, sess *TrialSession) {
	t.Helper()
	ctx := context.Background()
	_, err := e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionRestCase})
	require.NoError(t, err)
	for !sess.IsPlayerTurn() && !sess.Over() {
		_, err := e.RunAITurn(ctx, sess)
		require.NoError(t, err)
	}
	require.Equal(t, types.PhasePetitionerEvidence, sess.Phase())
	require.True(t, sess.IsPlayerTurn())
}

func TestOfferWithFoundationIsAdmitted(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)
	advanceToPlayerEvidence(t, e, sess)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionMarkForID, Exhibit: "ev-log"})
	require.NoError(t, err)

	res, err := e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionOfferEvidence, Exhibit: "ev-log"})
	require.NoError(t, err)

	it, ok := sess.locker.Item("ev-log")
	require.True(t, ok)
	assert.Equal(t, evidence.StatusAdmitted, it.Status)
	assert.True(t, hasEvent(res.Events, types.EventEvidenceAdmitted))
	assert.Greater(t, sess.Score().Categories[types.ScoreEvidenceHandling], 0.0)
}

func TestOfferWithoutFoundationDrawsObjection(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)
	advanceToPlayerEvidence(t, e, sess)

	res, err := e.ProcessPlayerAction(context.Background(), sess,
		types.Action{Type: types.ActionOfferEvidence, Exhibit: "ev-log"})
	require.NoError(t, err)

	it, ok := sess.locker.Item("ev-log")
	require.True(t, ok)
	assert.Equal(t, evidence.StatusExcluded, it.Status)
	assert.True(t, hasEvent(res.Events, types.EventEvidenceExcluded))
	// The tutor flags the skipped foundation too.
	require.NotNil(t, res.Flashcard)
	assert.Equal(t, "lay-foundation-first", res.Flashcard.Principle.ID)
}

func TestFlashcardBlocksNextAction(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)
	advanceToPlayerEvidence(t, e, sess)
	ctx := context.Background()

	res, err := e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionOfferEvidence, Exhibit: "ev-log"})
	require.NoError(t, err)
	require.NotNil(t, res.Flashcard)

	acts := e.AvailableActions(sess)
	require.Equal(t, []types.ActionType{types.ActionAcknowledgeLesson}, acts)

	_, err = e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionRestCase})
	require.ErrorIs(t, err, types.ErrInvalidActionForPhase)

	_, err = e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionAcknowledgeLesson})
	require.NoError(t, err)
	assert.Contains(t, e.AvailableActions(sess), types.ActionRestCase)
}

func TestIllegalEvidenceTransitionSurfaces(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)
	advanceToPlayerEvidence(t, e, sess)
	ctx := context.Background()

	// Present before admission is an illegal lifecycle position.
	_, err := e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionPresentEvidence, Exhibit: "ev-photo"})
	require.ErrorIs(t, err, types.ErrInvalidEvidenceState)

	// Offering the other side's exhibit is rejected before any mutation.
	_, err = e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionOfferEvidence, Exhibit: "ev-cert"})
	require.ErrorIs(t, err, types.ErrInvalidEvidenceState)
	it, _ := sess.locker.Item("ev-cert")
	assert.Equal(t, evidence.StatusNotIntroduced, it.Status)
}

func TestPhaseTurnLimitForcesAdvance(t *testing.T) {
	cfg := config.Default()
	cfg.Phases[types.PhaseOpening.String()] = config.PhaseRule{MaxTurns: 2, WarningTurn: 1}
	e := newTestEngine(t, cfg)
	sess := startSession(t, e, types.SidePetitioner)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess, types.Action{
		Type: types.ActionMakeArgument, Text: "Your honor, we will prove negligence."})
	require.NoError(t, err)
	require.Equal(t, types.PhaseOpening, sess.Phase())

	res, err := e.RunAITurn(ctx, sess)
	require.NoError(t, err)
	assert.True(t, res.PhaseAdvanced)
	assert.Equal(t, types.PhasePetitionerEvidence, sess.Phase())
}

func TestGrantedAdjournmentPausesThePhaseClock(t *testing.T) {
	cfg := config.Default()
	cfg.Phases[types.PhaseOpening.String()] = config.PhaseRule{MaxTurns: 2, WarningTurn: 1}
	e := newTestEngine(t, cfg)
	sess := startSession(t, e, types.SidePetitioner)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess, types.Action{
		Type: types.ActionRequestSidebar, Sidebar: types.SidebarAdjournment,
		Text: "our key witness unavailable until this afternoon"})
	require.NoError(t, err)
	require.Equal(t, types.PhaseOpening, sess.Phase())

	// The adjournment turn was given back, so both substantive turns
	// of the stage still fit before the bench moves on.
	_, err = e.ProcessPlayerAction(ctx, sess, types.Action{
		Type: types.ActionMakeArgument, Text: "Your honor, we will prove negligence."})
	require.NoError(t, err)
	assert.Equal(t, types.PhaseOpening, sess.Phase())

	res, err := e.RunAITurn(ctx, sess)
	require.NoError(t, err)
	assert.True(t, res.PhaseAdvanced)
	assert.Equal(t, types.PhasePetitionerEvidence, sess.Phase())
}

func TestResearchConsumesBudgetAndSurfacesExhaustion(t *testing.T) {
	cfg := config.Default()
	cfg.Budgets.Research = 1
	e := newTestEngine(t, cfg)
	sess := startSession(t, e, types.SidePetitioner)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionRequestResearch, Text: "negligence warning signal"})
	require.NoError(t, err)

	_, err = e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionRequestResearch, Text: "certification"})
	require.ErrorIs(t, err, types.ErrResourceExhausted)
	// The failed request neither consumed a turn nor ended the session.
	assert.Equal(t, types.PhaseOpening, sess.Phase())
}

func TestRepeatResearchDrainsTheReportedPatienceCost(t *testing.T) {
	cfg := config.Default()
	cfg.Budgets.Research = 2
	e := newTestEngine(t, cfg)
	sess := startSession(t, e, types.SidePetitioner)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionRequestResearch, Text: "negligence warning signal"})
	require.NoError(t, err)
	before := sess.judge.Patience()

	_, err = e.ProcessPlayerAction(ctx, sess,
		types.Action{Type: types.ActionRequestResearch, Text: "forklift certification"})
	require.NoError(t, err)
	assert.Equal(t, before-3, sess.judge.Patience(),
		"over-use costs the bench what the research desk reports")
}

func TestCitingUnresearchedAuthorityRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)

	_, err := e.ProcessPlayerAction(context.Background(), sess, types.Action{
		Type:     types.ActionMakeArgument,
		Text:     "Your honor, authority compels judgment for us.",
		Citation: "meril-v-okafor",
	})
	require.ErrorIs(t, err, types.ErrInvalidActionForPhase)
}

func TestSettlementShortCircuitsToJudgment(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess, types.Action{
		Type:    types.ActionRequestSidebar,
		Sidebar: types.SidebarSettlement,
		Text:    "the parties wish to explore terms",
	})
	require.NoError(t, err)
	require.True(t, sess.sidebar.Settlement().Open())

	// A demand at 60% of the claim is one the respondent takes.
	res, err := e.ProcessPlayerAction(ctx, sess, types.Action{
		Type: types.ActionProposeSettlement, Amount: 60000,
	})
	require.NoError(t, err)
	assert.True(t, hasEvent(res.Events, types.EventSettlementReached))
	assert.Equal(t, types.PhaseJudgment, sess.Phase())

	rec, ok := sess.Settled()
	require.True(t, ok)
	assert.Equal(t, 60000.0, rec.Amount)

	_, err = e.RunAITurn(ctx, sess)
	require.NoError(t, err)
	assert.True(t, sess.Over())

	report := sess.Report(e.Principles())
	require.NotNil(t, report.Settlement)
}

func TestExtensionIsFreeAndBounded(t *testing.T) {
	cfg := config.Default()
	cfg.Timer.Extensions = 1
	e := newTestEngine(t, cfg)
	sess := startSession(t, e, types.SidePetitioner)
	ctx := context.Background()

	_, err := e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionRequestExtension})
	require.NoError(t, err)
	assert.Equal(t, 0, sess.PhaseTurn(), "extensions must not consume a phase turn")

	_, err = e.ProcessPlayerAction(ctx, sess, types.Action{Type: types.ActionRequestExtension})
	require.ErrorIs(t, err, types.ErrResourceExhausted)
}

func TestSessionOverRejectsFurtherPlay(t *testing.T) {
	e := newTestEngine(t, nil)
	sess := startSession(t, e, types.SidePetitioner)
	playToCompletion(t, e, sess)

	_, err := e.ProcessPlayerAction(context.Background(), sess,
		types.Action{Type: types.ActionMakeArgument, Text: "one more word"})
	require.ErrorIs(t, err, types.ErrSessionOver)
	_, err = e.RunAITurn(context.Background(), sess)
	require.ErrorIs(t, err, types.ErrSessionOver)
}

func TestFullPlaythroughReachesVerdict(t *testing.T) {
	for _, side := range []types.Side{types.SidePetitioner, types.SideRespondent} {
		t.Run(string(side), func(t *testing.T) {
			e := newTestEngine(t, nil)
			sess := startSession(t, e, side)
			playToCompletion(t, e, sess)

			assert.True(t, sess.Over())
			assert.NotEmpty(t, sess.Transcript())

			report := sess.Report(e.Principles())
			require.NotNil(t, report)
			assert.NotEmpty(t, report.Grade)
		})
	}
}

// playToCompletion drives a session to game over with a simple policy:
// argue once per speech phase, move every exhibit in with foundation,
// examine each witness briefly, decline everything else.
func playToCompletion(t *testing.T, e *Engine, sess *TrialSession) {
	t.Helper()
	ctx := context.Background()
	argued := map[types.Phase]bool{}
	asked := map[string]int{}

	for i := 0; i < 600 && !sess.Over(); i++ {
		if !sess.IsPlayerTurn() {
			_, err := e.RunAITurn(ctx, sess)
			require.NoError(t, err)
			continue
		}
		acts := e.AvailableActions(sess)
		require.NotEmpty(t, acts)
		act := choosePlayerAction(sess, acts, argued, asked)
		_, err := e.ProcessPlayerAction(ctx, sess, act)
		require.NoError(t, err)
	}
	require.True(t, sess.Over(), "playthrough did not finish")
}

func choosePlayerAction(sess *TrialSession, acts []types.ActionType, argued map[types.Phase]bool, asked map[string]int) types.Action {
	has := func(t types.ActionType) bool {
		for _, a := range acts {
			if a == t {
				return true
			}
		}
		return false
	}

	switch {
	case has(types.ActionAcknowledgeLesson) && len(acts) == 1:
		return types.Action{Type: types.ActionAcknowledgeLesson}
	case has(types.ActionMakeArgument) && !argued[sess.Phase()]:
		argued[sess.Phase()] = true
		return types.Action{Type: types.ActionMakeArgument,
			Text: "Your honor, the record favors our client."}
	case has(types.ActionMarkForID):
		for _, it := range sess.locker.ForSide(sess.PlayerSide) {
			if it.Status == evidence.StatusNotIntroduced {
				return types.Action{Type: types.ActionMarkForID, Exhibit: it.ID}
			}
			if it.Status == evidence.StatusMarkedForID {
				return types.Action{Type: types.ActionOfferEvidence, Exhibit: it.ID}
			}
		}
		return types.Action{Type: types.ActionRestCase}
	case has(types.ActionAskQuestion):
		key := sess.Phase().String() + string(sess.SubPhase())
		if asked[key] < 1 {
			asked[key]++
			return types.Action{Type: types.ActionAskQuestion,
				Text: "Please describe for the court what you observed that day."}
		}
		return types.Action{Type: types.ActionNoQuestions}
	case has(types.ActionNoQuestions):
		return types.Action{Type: types.ActionNoQuestions}
	case has(types.ActionRestCase):
		return types.Action{Type: types.ActionRestCase}
	default:
		return types.Action{Type: acts[0]}
	}
}

func hasEvent(events []types.Event, kind types.EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}
