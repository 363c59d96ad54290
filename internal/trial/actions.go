package trial

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"courtroom/internal/analysis"
	"courtroom/internal/education"
	"courtroom/internal/evidence"
	"courtroom/internal/judge"
	"courtroom/internal/sidebar"
	"courtroom/internal/types"
	"courtroom/internal/witness"
)

// freeActions do not consume a phase turn and do not stop the turn timer:
// the player is still expected to act afterwards.
var freeActions = map[types.ActionType]bool{
	types.ActionRequestExtension:  true,
	types.ActionAcknowledgeLesson: true,
	types.ActionProposeSettlement: true,
	types.ActionAcceptSettlement:  true,
	types.ActionRejectSettlement:  true,
	types.ActionCounterSettlement: true,
}

type handlerFunc func(e *Engine, ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error

var handlers = map[types.ActionType]handlerFunc{
	types.ActionMakeArgument:          (*Engine).handleMakeArgument,
	types.ActionPresentEvidence:       (*Engine).handlePresentEvidence,
	types.ActionMarkForID:             (*Engine).handleMarkForID,
	types.ActionOfferEvidence:         (*Engine).handleOfferEvidence,
	types.ActionWithdrawEvidence:      (*Engine).handleWithdrawEvidence,
	types.ActionChallengeAuthenticity: (*Engine).handleChallengeAuthenticity,
	types.ActionObject:                (*Engine).handleObject,
	types.ActionCallWitness:           (*Engine).handleCallWitness,
	types.ActionAskQuestion:           (*Engine).handleAskQuestion,
	types.ActionNoQuestions:           (*Engine).handleNoQuestions,
	types.ActionRestCase:              (*Engine).handleRestCase,
	types.ActionRequestResearch:       (*Engine).handleRequestResearch,
	types.ActionRequestSidebar:        (*Engine).handleRequestSidebar,
	types.ActionRequestExtension:      (*Engine).handleRequestExtension,
	types.ActionProposeSettlement:     (*Engine).handleProposeSettlement,
	types.ActionAcceptSettlement:      (*Engine).handleAcceptSettlement,
	types.ActionRejectSettlement:      (*Engine).handleRejectSettlement,
	types.ActionCounterSettlement:     (*Engine).handleCounterSettlement,
	types.ActionAcknowledgeLesson:     (*Engine).handleAcknowledgeLesson,
}

// ProcessPlayerAction validates and executes one player move. Validation is
// complete before any state mutates: a rejected action leaves the session
// exactly as it was, including the turn clock.
func (e *Engine) ProcessPlayerAction(ctx context.Context, sess *TrialSession, act types.Action) (*TurnResult, error) {
	if sess == nil {
		return nil, fmt.Errorf("trial: nil session")
	}
	if sess.Over() {
		return nil, types.ErrSessionOver
	}
	if !sess.IsPlayerTurn() {
		return nil, fmt.Errorf("%w: the floor belongs to %s", types.ErrNotPlayerTurn, sess.turnOwner)
	}
	if sess.education.Pending() != nil && act.Type != types.ActionAcknowledgeLesson {
		return nil, fmt.Errorf("%w: acknowledge the learning moment before acting", types.ErrInvalidActionForPhase)
	}
	if !actionAllowed(e.AvailableActions(sess), act.Type) {
		return nil, fmt.Errorf("%w: %s is not available during %s", types.ErrInvalidActionForPhase, act.Type, sess.phase)
	}

	res := &TurnResult{}
	free := freeActions[act.Type]
	startPhase := sess.phase

	handler, ok := handlers[act.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownActionType, act.Type)
	}

	var deltas []analysis.Delta
	if err := handler(e, ctx, sess, act, res, &deltas); err != nil {
		return nil, err
	}

	// The action is committed; now the clock, the bench and the tutor
	// react to it.
	if !free {
		stats := sess.timer.Stop()
		res.Timing = &stats
		sess.meter.ApplyTiming(stats)
		if stats.Expired {
			deltas = append(deltas, analysis.Delta{
				Category: types.ScoreDecorum, Points: -1,
				Reason: "kept the court waiting past the allotted time",
			})
		}
	}

	questionStyle := ""
	if act.Type == types.ActionAskQuestion {
		questionStyle = string(witness.ClassifyQuestion(act.Text))
	}
	hostile := false
	if w, ok := sess.witnesses[sess.currentWitness]; ok {
		hostile = w.IsHostile()
	}

	assessment := sess.judge.EvaluateAction(startPhase, sess.subPhase, act, questionStyle, hostile)
	e.applyAssessment(sess, assessment, res, &deltas)

	e.detectMistakes(sess, act, questionStyle, hostile, res, &deltas)

	sess.actionLog.Append(sess.score, startPhase, true, act.Type, summarize(act), deltas)

	if assessment.ForceAdvance && !sess.Over() && !res.PhaseAdvanced {
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			"The court's patience with this stage is spent. We move on."))
		e.advancePhase(sess, res, "judge curtailed the phase")
	}

	if !free && !res.PhaseAdvanced {
		e.endTurn(sess, res)
	}

	res.Confidence = sess.meter.Snapshot()
	if sess.IsPlayerTurn() && !sess.Over() && !free {
		sess.timer.Start()
	}
	e.log.Debug("player action processed",
		zap.String("action", string(act.Type)),
		zap.String("phase", sess.phase.String()),
		zap.Int("phase_turn", sess.phaseTurn))
	return res, nil
}

func actionAllowed(list []types.ActionType, t types.ActionType) bool {
	for _, a := range list {
		if a == t {
			return true
		}
	}
	return false
}

func summarize(act types.Action) string {
	switch {
	case act.Text != "":
		return act.Text
	case act.Exhibit != "":
		return fmt.Sprintf("%s %s", act.Type, act.Exhibit)
	case act.Witness != "":
		return fmt.Sprintf("%s %s", act.Type, act.Witness)
	default:
		return string(act.Type)
	}
}

// applyAssessment folds the judge's reaction into score, confidence and
// surfaced events.
func (e *Engine) applyAssessment(sess *TrialSession, a judge.Assessment, res *TurnResult, deltas *[]analysis.Delta) {
	res.Violations = append(res.Violations, a.Violations...)
	if a.PatienceCost > 0 {
		*deltas = append(*deltas, analysis.Delta{
			Category:   types.ScoreDecorum,
			Points:     -float64(a.PatienceCost) / 3,
			JudgeFavor: -float64(len(a.Violations)),
			Reason:     violationSummary(a.Violations),
		})
	}
	sess.meter.NudgeJudgeApproval(float64(a.Recovered - a.PatienceCost))
	if a.Warning != "" {
		res.Warning = a.Warning
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name, a.Warning))
		res.Events = append(res.Events, types.Event{
			Kind: types.EventJudgeWarning, Detail: a.Warning, Phase: sess.phase,
		})
	}
}

func violationSummary(vs []judge.Violation) string {
	if len(vs) == 0 {
		return "tried the court's patience"
	}
	return vs[0].Detail
}

// detectMistakes runs the education classifier over the committed action.
func (e *Engine) detectMistakes(sess *TrialSession, act types.Action, questionStyle string, hostile bool, res *TurnResult, deltas *[]analysis.Delta) {
	ectx := education.Context{
		Phase:          sess.phase,
		SubPhase:       sess.subPhase,
		QuestionStyle:  questionStyle,
		WitnessHostile: hostile,
		FoundationLaid: sess.marked[act.Exhibit],
	}
	detections := e.classifier.Classify(act, ectx)
	for _, d := range detections {
		*deltas = append(*deltas, analysis.Delta{
			Category: d.Category, Points: -2, Reason: d.Summary,
		})
	}
	if card := sess.education.Observe(act, detections); card != nil {
		res.Flashcard = card
		res.Events = append(res.Events, types.Event{
			Kind:    types.EventLearningMoment,
			Detail:  card.Principle.Rule,
			Phase:   sess.phase,
			Subject: card.Principle.ID,
		})
	}
}

// --- speech and case presentation ---------------------------------------

func (e *Engine) handleMakeArgument(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if act.Text == "" {
		return fmt.Errorf("%w: an argument needs words", types.ErrInvalidActionForPhase)
	}
	if act.Citation != "" {
		if _, found := sess.research.Discovered(act.Citation); !found {
			return fmt.Errorf("%w: authority %q has not been researched", types.ErrInvalidActionForPhase, act.Citation)
		}
	}

	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide), act.Text))
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScorePersuasiveness, Points: 3, JudgeFavor: 1,
		Reason: "argued the case on the merits",
	})
	sess.meter.NudgeCoherence(2)
	sess.passFloor()

	if act.Citation != "" {
		entry, err := sess.research.MarkCited(act.Citation)
		if err != nil {
			return err
		}
		res.Messages = append(res.Messages, sess.say(types.RoleSystem, "Court reporter",
			fmt.Sprintf("Counsel relies on %s.", entry.Citation)))
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreLegalAccuracy, Points: 4, JudgeFavor: 2,
			Reason: fmt.Sprintf("grounded the argument in %s", entry.Citation),
		})
	}
	return nil
}

func (e *Engine) handleRestCase(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	e.restSide(sess, sess.PlayerSide, res)
	return nil
}

// --- evidence handling ---------------------------------------------------

func (e *Engine) playerExhibit(sess *TrialSession, id string) (evidence.Item, error) {
	if id == "" {
		return evidence.Item{}, fmt.Errorf("%w: no exhibit named", types.ErrInvalidEvidenceState)
	}
	it, ok := sess.locker.Item(id)
	if !ok {
		return evidence.Item{}, fmt.Errorf("%w: no such exhibit %q", types.ErrInvalidEvidenceState, id)
	}
	if it.Side != sess.PlayerSide {
		return evidence.Item{}, fmt.Errorf("%w: %s belongs to the other side", types.ErrInvalidEvidenceState, it.Exhibit)
	}
	return it, nil
}

func (e *Engine) handleMarkForID(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if _, err := e.playerExhibit(sess, act.Exhibit); err != nil {
		return err
	}
	it, err := sess.locker.Mark(act.Exhibit)
	if err != nil {
		return err
	}
	sess.marked[act.Exhibit] = true
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("We ask that this %s be marked as Exhibit %s for identification.", it.Category, it.Exhibit)))
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScoreEvidenceHandling, Points: 1,
		Reason: fmt.Sprintf("laid foundation for %s", it.Exhibit),
	})
	return nil
}

func (e *Engine) handlePresentEvidence(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	it, err := e.playerExhibit(sess, act.Exhibit)
	if err != nil {
		return err
	}
	if it.Status != evidence.StatusAdmitted {
		return fmt.Errorf("%w: %s is not in evidence", types.ErrInvalidEvidenceState, it.Exhibit)
	}
	speech := act.Text
	if speech == "" {
		speech = fmt.Sprintf("I draw the court's attention to Exhibit %s: %s.", it.Exhibit, it.Title)
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide), speech))
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScorePersuasiveness, Points: 2, JudgeFavor: 1,
		Reason: fmt.Sprintf("pressed Exhibit %s before the court", it.Exhibit),
	})
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScoreEvidenceHandling, Points: 1,
		Reason: "put admitted evidence to use",
	})
	return nil
}

func (e *Engine) handleOfferEvidence(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if _, err := e.playerExhibit(sess, act.Exhibit); err != nil {
		return err
	}
	it, err := sess.locker.Offer(act.Exhibit)
	if err != nil {
		return err
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("We offer Exhibit %s, %s, into evidence.", it.Exhibit, it.Title)))

	// Opposing counsel decides on the spot.
	opp := sess.PlayerSide.Opponent()
	if ground := aiObjectionToOffer(*it, sess.marked[act.Exhibit]); ground != types.GroundNone {
		res.Messages = append(res.Messages, sess.say(types.CounselFor(opp), sess.counselName(opp),
			fmt.Sprintf("Objection. %s.", groundPhrase(ground))))
		if _, err := sess.locker.Object(act.Exhibit); err != nil {
			return err
		}
		ruling := sess.judge.RuleOnObjection(ground, judge.ObjectionContext{
			Phase: sess.phase, SubPhase: sess.subPhase,
			AgainstEvidence: true, FoundationLaid: sess.marked[act.Exhibit],
		})
		if _, err := sess.locker.Rule(act.Exhibit, !ruling.Sustained); err != nil {
			return err
		}
		e.announceEvidenceRuling(sess, res, deltas, *it, ruling, true)
		return nil
	}

	if _, err := sess.locker.Admit(act.Exhibit); err != nil {
		return err
	}
	res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
		fmt.Sprintf("There being no objection, Exhibit %s is admitted.", it.Exhibit)))
	res.Events = append(res.Events, types.Event{
		Kind: types.EventEvidenceAdmitted, Phase: sess.phase, Subject: it.Exhibit,
		Detail: it.Title,
	})
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScoreEvidenceHandling, Points: 6, JudgeFavor: 1,
		Reason: fmt.Sprintf("moved Exhibit %s into evidence unopposed", it.Exhibit),
	})
	sess.meter.NudgeEvidenceHandling(4)
	return nil
}

// announceEvidenceRuling reports a ruling on the player's own offer.
func (e *Engine) announceEvidenceRuling(sess *TrialSession, res *TurnResult, deltas *[]analysis.Delta, it evidence.Item, ruling judge.Ruling, playerOffered bool) {
	if ruling.Sustained {
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			fmt.Sprintf("Sustained. %s. Exhibit %s is excluded.", capitalize(ruling.Rationale), it.Exhibit)))
		res.Events = append(res.Events, types.Event{
			Kind: types.EventEvidenceExcluded, Phase: sess.phase, Subject: it.Exhibit,
			Detail: ruling.Rationale,
		})
		if playerOffered {
			*deltas = append(*deltas, analysis.Delta{
				Category: types.ScoreEvidenceHandling, Points: -4, JudgeFavor: -1,
				Reason: fmt.Sprintf("Exhibit %s excluded: %s", it.Exhibit, ruling.Rationale),
			})
			sess.meter.NudgeEvidenceHandling(-5)
		}
		return
	}
	res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
		fmt.Sprintf("Overruled. %s. Exhibit %s is admitted.", capitalize(ruling.Rationale), it.Exhibit)))
	res.Events = append(res.Events, types.Event{
		Kind: types.EventEvidenceAdmitted, Phase: sess.phase, Subject: it.Exhibit,
		Detail: it.Title,
	})
	if playerOffered {
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreEvidenceHandling, Points: 6, JudgeFavor: 1,
			Reason: fmt.Sprintf("Exhibit %s admitted over objection", it.Exhibit),
		})
		sess.meter.NudgeEvidenceHandling(4)
	}
}

// aiObjectionToOffer is the opposing counsel's deterministic objection
// policy against the player's offers: documents and records offered without
// foundation draw a foundation objection, nothing else is fought.
func aiObjectionToOffer(it evidence.Item, foundationLaid bool) types.ObjectionGround {
	if !foundationLaid && (it.Category == "document" || it.Category == "record") {
		return types.GroundFoundation
	}
	return types.GroundNone
}

func groundPhrase(g types.ObjectionGround) string {
	switch g {
	case types.GroundLeading:
		return "Counsel is leading the witness"
	case types.GroundHearsay:
		return "The question calls for hearsay"
	case types.GroundRelevance:
		return "This is irrelevant to the matters at issue"
	case types.GroundSpeculation:
		return "The question calls for speculation"
	case types.GroundArgumentative:
		return "Counsel is arguing with the witness"
	case types.GroundCompound:
		return "The question is compound"
	case types.GroundAskedAndAnswered:
		return "Asked and answered"
	case types.GroundFoundation:
		return "No foundation has been laid"
	default:
		return "We object"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

func (e *Engine) handleWithdrawEvidence(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	it, err := sess.locker.Withdraw(act.Exhibit, sess.PlayerSide)
	if err != nil {
		return err
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("We withdraw Exhibit %s.", it.Exhibit)))
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScoreEvidenceHandling, Points: -1,
		Reason: fmt.Sprintf("withdrew Exhibit %s", it.Exhibit),
	})
	return nil
}

func (e *Engine) handleChallengeAuthenticity(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if act.Exhibit == "" {
		return fmt.Errorf("%w: no exhibit named", types.ErrInvalidEvidenceState)
	}
	it, ok := sess.locker.Item(act.Exhibit)
	if !ok {
		return fmt.Errorf("%w: no such exhibit %q", types.ErrInvalidEvidenceState, act.Exhibit)
	}
	if it.Side == sess.PlayerSide {
		return fmt.Errorf("%w: cannot challenge your own Exhibit %s", types.ErrInvalidEvidenceState, it.Exhibit)
	}
	challenged, err := sess.locker.Challenge(act.Exhibit)
	if err != nil {
		return err
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("We dispute the authenticity of Exhibit %s.", challenged.Exhibit)),
		sess.say(types.RoleJudge, sess.judge.Personality.Name,
			"Noted. The challenge goes to weight; the exhibit remains in evidence."))
	*deltas = append(*deltas, analysis.Delta{
		Category: types.ScoreLegalAccuracy, Points: 1,
		Reason: fmt.Sprintf("put the weight of Exhibit %s in issue", challenged.Exhibit),
	})
	return nil
}

// --- objections and response windows -------------------------------------

func (e *Engine) handleObject(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	w := sess.window
	if w == nil {
		return fmt.Errorf("%w: there is nothing to object to", types.ErrInvalidActionForPhase)
	}

	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("Objection. %s.", groundPhrase(act.Ground))))

	hostile := false
	if ws, ok := sess.witnesses[sess.currentWitness]; ok {
		hostile = ws.IsHostile()
	}
	ruling := sess.judge.RuleOnObjection(act.Ground, judge.ObjectionContext{
		Phase:           sess.phase,
		SubPhase:        sess.subPhase,
		QuestionStyle:   w.style,
		QuestionText:    w.question,
		WitnessHostile:  hostile,
		AgainstEvidence: w.kind == "offer",
		FoundationLaid:  sess.marked[w.exhibit],
	})

	if w.kind == "offer" {
		it, ok := sess.locker.Item(w.exhibit)
		if !ok {
			return fmt.Errorf("%w: offered exhibit %q vanished", types.ErrInvalidEvidenceState, w.exhibit)
		}
		if _, err := sess.locker.Object(w.exhibit); err != nil {
			return err
		}
		if _, err := sess.locker.Rule(w.exhibit, !ruling.Sustained); err != nil {
			return err
		}
		e.announceEvidenceRuling(sess, res, deltas, it, ruling, false)
	} else {
		if ruling.Sustained {
			res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
				fmt.Sprintf("Sustained. %s. The witness need not answer.", capitalize(ruling.Rationale))))
		} else {
			res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
				fmt.Sprintf("Overruled. %s. The witness will answer.", capitalize(ruling.Rationale))))
		}
	}

	if ruling.Sustained {
		res.Events = append(res.Events, types.Event{
			Kind: types.EventObjectionSustained, Phase: sess.phase,
			Detail: ruling.Rationale, Subject: w.exhibit,
		})
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreObjectionSuccess, Points: 6, JudgeFavor: 2,
			Reason: fmt.Sprintf("objection sustained: %s", ruling.Rationale),
		})
		sess.meter.NudgeJudgeApproval(4)
	} else {
		res.Events = append(res.Events, types.Event{
			Kind: types.EventObjectionOverruled, Phase: sess.phase,
			Detail: ruling.Rationale, Subject: w.exhibit,
		})
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreObjectionSuccess, Points: -2, JudgeFavor: -1,
			Reason: fmt.Sprintf("objection overruled: %s", ruling.Rationale),
		})
		sess.judge.NoteInterruption(2)
		sess.meter.NudgeJudgeApproval(-3)
		if w.kind == "question" {
			e.witnessAnswers(ctx, sess, res, deltas, *w)
		}
	}

	sess.window = nil
	sess.turnOwner = sess.computeOwner()
	return nil
}

func (e *Engine) handleNoQuestions(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if w := sess.window; w != nil {
		// Declining the window: the proceeding continues uninterrupted.
		if w.kind == "offer" {
			it, ok := sess.locker.Item(w.exhibit)
			if !ok {
				return fmt.Errorf("%w: offered exhibit %q vanished", types.ErrInvalidEvidenceState, w.exhibit)
			}
			if _, err := sess.locker.Admit(w.exhibit); err != nil {
				return err
			}
			res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
				fmt.Sprintf("There being no objection, Exhibit %s is admitted.", it.Exhibit)))
			res.Events = append(res.Events, types.Event{
				Kind: types.EventEvidenceAdmitted, Phase: sess.phase, Subject: it.Exhibit,
				Detail: it.Title,
			})
		} else {
			e.witnessAnswers(ctx, sess, res, deltas, *w)
		}
		sess.window = nil
		sess.turnOwner = sess.computeOwner()
		return nil
	}

	// The player is the examiner and is done with this sub-phase.
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			"No further questions."))
	e.endSubPhase(sess, res)
	return nil
}

func (e *Engine) handleCallWitness(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if sess.currentWitness != "" {
		return fmt.Errorf("%w: a witness is already on the stand", types.ErrInvalidActionForPhase)
	}
	if act.Witness != "" {
		// Requested witness jumps the queue if present.
		for i, id := range sess.witnessQueue {
			if id == act.Witness {
				sess.witnessQueue = append([]string{id}, append(sess.witnessQueue[:i], sess.witnessQueue[i+1:]...)...)
				break
			}
		}
	}
	m, ok := e.callNextWitness(sess)
	if !ok {
		return fmt.Errorf("%w: no witnesses remain to call", types.ErrInvalidActionForPhase)
	}
	res.Messages = append(res.Messages, m)
	return nil
}

func (e *Engine) handleAskQuestion(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if act.Text == "" {
		return fmt.Errorf("%w: a question needs words", types.ErrInvalidActionForPhase)
	}
	w, ok := sess.witnesses[sess.currentWitness]
	if !ok {
		return fmt.Errorf("%w: no witness is on the stand", types.ErrInvalidActionForPhase)
	}
	friendly := w.Side == sess.PlayerSide

	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide), act.Text))

	// Opposing counsel may object before the witness answers.
	style := witness.ClassifyQuestion(act.Text)
	if ground := aiObjectionToQuestion(style, friendly, sess.subPhase, w.IsHostile()); ground != types.GroundNone {
		opp := sess.PlayerSide.Opponent()
		res.Messages = append(res.Messages, sess.say(types.CounselFor(opp), sess.counselName(opp),
			fmt.Sprintf("Objection. %s.", groundPhrase(ground))))
		ruling := sess.judge.RuleOnObjection(ground, judge.ObjectionContext{
			Phase: sess.phase, SubPhase: sess.subPhase,
			QuestionStyle: string(style), QuestionText: act.Text,
			WitnessHostile: w.IsHostile(),
		})
		if ruling.Sustained {
			res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
				fmt.Sprintf("Sustained. %s. Rephrase or move on, counsel.", capitalize(ruling.Rationale))))
			res.Events = append(res.Events, types.Event{
				Kind: types.EventObjectionSustained, Phase: sess.phase, Detail: ruling.Rationale,
			})
			*deltas = append(*deltas, analysis.Delta{
				Category: types.ScoreWitnessExamination, Points: -2, JudgeFavor: -1,
				Reason: fmt.Sprintf("question disallowed: %s", ruling.Rationale),
			})
			sess.meter.NudgeWitnessControl(-2)
			return nil
		}
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			"Overruled. The witness will answer."))
		res.Events = append(res.Events, types.Event{
			Kind: types.EventObjectionOverruled, Phase: sess.phase, Detail: ruling.Rationale,
		})
	}

	outcome := w.AskQuestion(friendly, act.Text)
	answer := e.speak(ctx, sess, types.RoleWitness, w.Name,
		fmt.Sprintf("You are on the stand and feeling %s. Counsel asks: %q. Answer in character.", w.Reaction(), act.Text))
	res.Messages = append(res.Messages, answer)

	if friendly {
		w.RecordChiefAnswer(answer.Text)
	} else if contr, caught := w.CheckCrossAnswer(answer.Text); caught {
		res.Messages = append(res.Messages, sess.say(types.RoleSystem, "Court reporter",
			fmt.Sprintf("The answer contradicts earlier testimony that %q.", contr.ChiefAssertion)))
		res.Events = append(res.Events,
			types.Event{Kind: types.EventContradictionFound, Phase: sess.phase, Subject: w.ID, Detail: fmt.Sprintf("%q against %q", contr.CrossAssertion, contr.ChiefAssertion)},
			types.Event{Kind: types.EventGalleryMurmur, Phase: sess.phase, Detail: "a murmur runs through the gallery"})
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreWitnessExamination, Points: 9, JudgeFavor: 4,
			Reason: "caught the witness contradicting their chief testimony",
		})
		sess.meter.NudgeWitnessControl(6)
	}

	if outcome.BrokeDown {
		res.Events = append(res.Events,
			types.Event{Kind: types.EventWitnessBreakdown, Phase: sess.phase, Subject: w.ID},
			types.Event{Kind: types.EventGalleryMurmur, Phase: sess.phase, Detail: "the gallery stirs"})
		res.Messages = append(res.Messages, sess.say(types.RoleSystem, "Court reporter",
			fmt.Sprintf("%s struggles to continue.", w.Name)))
		if friendly {
			*deltas = append(*deltas, analysis.Delta{
				Category: types.ScoreWitnessExamination, Points: -4, JudgeFavor: -1,
				Reason: "drove their own witness to breakdown",
			})
		} else {
			*deltas = append(*deltas, analysis.Delta{
				Category: types.ScoreWitnessExamination, Points: 10, JudgeFavor: 3,
				Reason: "broke the witness's composure under cross",
			})
			sess.meter.NudgeWitnessControl(5)
		}
	} else if outcome.RevealDelta > 0 {
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreWitnessExamination, Points: 2,
			Reason: "drew new testimony from the witness",
		})
	}

	if outcome.Style == witness.StyleAggressive {
		sess.meter.NudgeWitnessControl(-2)
	} else {
		sess.meter.NudgeWitnessControl(1)
	}
	return nil
}

// aiObjectionToQuestion is the opposing counsel's objection policy against
// the player's questions.
func aiObjectionToQuestion(style witness.QuestionStyle, friendly bool, sub types.SubPhase, hostile bool) types.ObjectionGround {
	if friendly && sub == types.SubPhaseChief && style == witness.StyleLeading && !hostile {
		return types.GroundLeading
	}
	if !friendly && style == witness.StyleAggressive {
		return types.GroundArgumentative
	}
	return types.GroundNone
}

// witnessAnswers resolves a pending question window: the witness answers
// the AI examiner's question and the witness model moves.
func (e *Engine) witnessAnswers(ctx context.Context, sess *TrialSession, res *TurnResult, deltas *[]analysis.Delta, w responseWindow) {
	ws, ok := sess.witnesses[sess.currentWitness]
	if !ok {
		return
	}
	friendlyToAsker := ws.Side == w.asker
	outcome := ws.AskQuestion(friendlyToAsker, w.question)
	answer := e.speak(ctx, sess, types.RoleWitness, ws.Name,
		fmt.Sprintf("You are on the stand and feeling %s. Counsel asks: %q. Answer in character.", ws.Reaction(), w.question))
	res.Messages = append(res.Messages, answer)

	if friendlyToAsker {
		ws.RecordChiefAnswer(answer.Text)
	} else if ws.Side == sess.PlayerSide {
		// The AI is crossing the player's witness; a contradiction here
		// damages the player's case.
		if contr, caught := ws.CheckCrossAnswer(answer.Text); caught {
			res.Messages = append(res.Messages, sess.say(types.RoleSystem, "Court reporter",
				fmt.Sprintf("The answer contradicts earlier testimony that %q.", contr.ChiefAssertion)))
			res.Events = append(res.Events, types.Event{
				Kind: types.EventContradictionFound, Phase: sess.phase, Subject: ws.ID, Detail: fmt.Sprintf("%q against %q", contr.CrossAssertion, contr.ChiefAssertion),
			})
			*deltas = append(*deltas, analysis.Delta{
				Category: types.ScoreWitnessExamination, Points: -6, JudgeFavor: -3,
				Reason: "opposing counsel caught your witness contradicting themselves",
			})
			sess.meter.NudgeWitnessControl(-5)
		}
	}
	if outcome.BrokeDown && ws.Side == sess.PlayerSide {
		res.Events = append(res.Events, types.Event{
			Kind: types.EventWitnessBreakdown, Phase: sess.phase, Subject: ws.ID,
		})
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreWitnessExamination, Points: -5, JudgeFavor: -2,
			Reason: "your witness broke down under cross-examination",
		})
		sess.meter.NudgeWitnessControl(-4)
	}
}

// --- side channels -------------------------------------------------------

func (e *Engine) handleRequestResearch(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if act.Text == "" {
		return fmt.Errorf("%w: research needs a query", types.ErrInvalidActionForPhase)
	}
	result, err := sess.research.Search(act.Text)
	if err != nil {
		return err
	}
	if len(result.Entries) == 0 {
		res.Messages = append(res.Messages, sess.say(types.RoleSystem, "Research assistant",
			fmt.Sprintf("Nothing on point for %q.", act.Text)))
	} else {
		for _, entry := range result.Entries {
			res.Messages = append(res.Messages, sess.say(types.RoleSystem, "Research assistant",
				fmt.Sprintf("%s: %s", entry.Citation, entry.Summary)))
		}
		*deltas = append(*deltas, analysis.Delta{
			Category: types.ScoreLegalAccuracy, Points: 1,
			Reason: "researched the authorities",
		})
	}
	if result.PatienceCost > 0 {
		sess.judge.NoteInterruption(result.PatienceCost)
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			"Counsel will not treat the court's time as a library's."))
	}
	return nil
}

func (e *Engine) handleRequestSidebar(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	req := sidebar.Request{
		Type:    act.Sidebar,
		Reason:  act.Text,
		Exhibit: act.Exhibit,
		Witness: act.Witness,
	}
	outcome, err := sess.sidebar.Evaluate(req, sess.judge.Patience())
	if err != nil {
		return err
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("May it please the court, we request a sidebar: %s.", act.Text)))

	if !outcome.Granted {
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			fmt.Sprintf("Denied. %s.", capitalize(outcome.Reason))))
		sess.meter.NudgeJudgeApproval(-1)
		return nil
	}
	res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
		fmt.Sprintf("Granted. %s.", capitalize(outcome.Reason))))

	// The phase clock charges one turn per processed action; give back
	// whatever this interruption does not consume.
	if outcome.TurnCost < 1 {
		sess.adjournCredit += 1 - outcome.TurnCost
	}

	switch outcome.Directive {
	case sidebar.DirectiveExcludeEvidence:
		it, err := sess.locker.Exclude(outcome.Exhibit)
		if err != nil {
			return err
		}
		res.Events = append(res.Events, types.Event{
			Kind: types.EventEvidenceExcluded, Phase: sess.phase, Subject: it.Exhibit,
			Detail: "excluded after sidebar",
		})
		if it.Side != sess.PlayerSide {
			*deltas = append(*deltas, analysis.Delta{
				Category: types.ScoreEvidenceHandling, Points: 5, JudgeFavor: 2,
				Reason: fmt.Sprintf("had Exhibit %s excluded at sidebar", it.Exhibit),
			})
			sess.meter.NudgeEvidenceHandling(4)
		}
	case sidebar.DirectiveAdjourn:
		sess.judge.Recover(10)
		sess.meter.NudgeCoherence(3)
		res.Messages = append(res.Messages, sess.say(types.RoleClerk, "Clerk",
			"The court stands adjourned briefly."))
	case sidebar.DirectiveOpenSettlement:
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			"The parties may use this moment to discuss terms."))
	}
	return nil
}

func (e *Engine) handleRequestExtension(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if err := sess.timer.RequestExtension(); err != nil {
		return err
	}
	res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
		"A moment more, counsel. Use it."))
	return nil
}

func (e *Engine) handleAcknowledgeLesson(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	sess.education.Acknowledge()
	return nil
}

// --- settlement ----------------------------------------------------------

func (e *Engine) handleProposeSettlement(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	neg := sess.sidebar.Settlement()
	offer := sidebar.Offer{By: sess.PlayerSide, Amount: act.Amount, Terms: act.Text}
	if err := neg.Propose(offer); err != nil {
		return err
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("We are prepared to resolve this matter for %.0f.", offer.Amount)))
	return e.opponentConsidersOffer(ctx, sess, offer, res)
}

func (e *Engine) handleCounterSettlement(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	neg := sess.sidebar.Settlement()
	cur, ok := neg.Current()
	if !ok {
		return fmt.Errorf("%w: no offer to counter", types.ErrInvalidActionForPhase)
	}
	amount := act.Amount
	if amount <= 0 {
		amount = sidebar.CounterAmount(cur, sess.Case.Compensation, sess.PlayerSide)
	}
	offer := sidebar.Offer{By: sess.PlayerSide, Amount: amount, Terms: act.Text}
	if err := neg.Propose(offer); err != nil {
		return err
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			fmt.Sprintf("Our position is %.0f.", amount)))
	return e.opponentConsidersOffer(ctx, sess, offer, res)
}

func (e *Engine) handleAcceptSettlement(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	neg := sess.sidebar.Settlement()
	offer, err := neg.Accept()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidActionForPhase, err)
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			"Those terms are acceptable."))
	e.settle(sess, res, offer)
	return nil
}

func (e *Engine) handleRejectSettlement(ctx context.Context, sess *TrialSession, act types.Action, res *TurnResult, deltas *[]analysis.Delta) error {
	if err := sess.sidebar.Settlement().Reject(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidActionForPhase, err)
	}
	res.Messages = append(res.Messages,
		sess.say(types.CounselFor(sess.PlayerSide), sess.counselName(sess.PlayerSide),
			"We will take our chances with the court."),
		sess.say(types.RoleJudge, sess.judge.Personality.Name, "Very well. We proceed."))
	sess.turnOwner = sess.computeOwner()
	return nil
}

// opponentConsidersOffer runs the AI side's deterministic response to a
// live offer from the player.
func (e *Engine) opponentConsidersOffer(ctx context.Context, sess *TrialSession, offer sidebar.Offer, res *TurnResult) error {
	neg := sess.sidebar.Settlement()
	opp := sess.PlayerSide.Opponent()
	decision := sidebar.EvaluateOffer(offer, sess.Case.Compensation, opp, neg.Rounds())
	switch decision {
	case sidebar.DecisionAccept:
		accepted, err := neg.Accept()
		if err != nil {
			return err
		}
		res.Messages = append(res.Messages, sess.say(types.CounselFor(opp), sess.counselName(opp),
			"We can agree to that."))
		e.settle(sess, res, accepted)
	case sidebar.DecisionCounter:
		amount := sidebar.CounterAmount(offer, sess.Case.Compensation, opp)
		counter := sidebar.Offer{By: opp, Amount: amount}
		if err := neg.Propose(counter); err != nil {
			return err
		}
		res.Messages = append(res.Messages, sess.say(types.CounselFor(opp), sess.counselName(opp),
			fmt.Sprintf("Not at that figure. We could consider %.0f.", amount)))
	default:
		if err := neg.Reject(); err != nil {
			return err
		}
		res.Messages = append(res.Messages,
			sess.say(types.CounselFor(opp), sess.counselName(opp),
				"There is no basis for agreement. We proceed."))
		sess.turnOwner = sess.computeOwner()
	}
	return nil
}

// settle records the agreement and short-circuits the trial to judgment.
func (e *Engine) settle(sess *TrialSession, res *TurnResult, offer sidebar.Offer) {
	sess.settlement = &analysis.SettlementRecord{
		Amount: offer.Amount,
		By:     offer.By,
		Rounds: sess.sidebar.Settlement().Rounds(),
	}
	res.Events = append(res.Events, types.Event{
		Kind:   types.EventSettlementReached,
		Phase:  sess.phase,
		Detail: fmt.Sprintf("settled for %.0f", offer.Amount),
	})
	res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
		"The court is told the parties have reached terms. It will record a consent decree."))
	sess.window = nil
	sess.phase = types.PhaseJudgment
	sess.turnOwner = sess.PlayerSide.Opponent()
	res.PhaseAdvanced = true
	res.NewPhase = phasePtr(sess.phase)
	e.log.Info("settlement reached",
		zap.Float64("amount", offer.Amount),
		zap.String("by", string(offer.By)),
		zap.Int("rounds", sess.settlement.Rounds))
}
