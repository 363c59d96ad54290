package trial

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"courtroom/internal/analysis"
	"courtroom/internal/evidence"
	"courtroom/internal/types"
	"courtroom/internal/witness"
)

// aiQuestionsPerSubPhase caps how long the opposing counsel examines one
// witness in one sub-phase.
const aiQuestionsPerSubPhase = 2

// RunAITurn executes one turn for whichever non-player participant holds
// the floor: the opposing counsel in the ordinary phases, the bench in
// judgment. It is an error to call it on the player's turn.
func (e *Engine) RunAITurn(ctx context.Context, sess *TrialSession) (*TurnResult, error) {
	if sess == nil {
		return nil, fmt.Errorf("trial: nil session")
	}
	if sess.Over() {
		return nil, types.ErrSessionOver
	}
	if sess.IsPlayerTurn() {
		return nil, fmt.Errorf("%w: the floor belongs to the player", types.ErrNotPlayerTurn)
	}

	res := &TurnResult{}
	var deltas []analysis.Delta
	aiSide := sess.PlayerSide.Opponent()
	var acted types.ActionType

	switch {
	case sess.phase == types.PhaseJudgment:
		e.deliverJudgment(ctx, sess, res)
		res.Confidence = sess.meter.Snapshot()
		return res, nil

	case sess.phase == types.PhaseOpening || sess.phase == types.PhaseRebuttal || sess.phase == types.PhaseFinalArguments:
		acted = e.aiSpeech(ctx, sess, aiSide, res)

	case sess.phase.IsEvidencePhase():
		acted = e.aiPresentsEvidence(sess, aiSide, res)

	case sess.phase.IsWitnessPhase():
		acted = e.aiExamines(ctx, sess, aiSide, res)

	default:
		return nil, fmt.Errorf("%w: no move for %s in %s", types.ErrInvalidActionForPhase, aiSide, sess.phase)
	}

	if acted != "" {
		sess.actionLog.Append(sess.score, sess.phase, false, acted, "", deltas)
	}
	if !res.PhaseAdvanced {
		e.endTurn(sess, res)
	}
	res.Confidence = sess.meter.Snapshot()
	if sess.IsPlayerTurn() && !sess.Over() {
		sess.timer.Start()
	}
	e.log.Debug("ai turn processed",
		zap.String("action", string(acted)),
		zap.String("phase", sess.phase.String()))
	return res, nil
}

// aiSpeech: one argument for the phase, then rest.
func (e *Engine) aiSpeech(ctx context.Context, sess *TrialSession, aiSide types.Side, res *TurnResult) types.ActionType {
	if sess.aiArguments >= 1 || sess.rested[aiSide] {
		e.restSide(sess, aiSide, res)
		return types.ActionRestCase
	}
	sess.aiArguments++
	msg := e.speak(ctx, sess, types.CounselFor(aiSide), sess.counselName(aiSide),
		fmt.Sprintf("Deliver a short %s for your client in %s. The issues: %s.",
			speechKind(sess.phase), sess.Case.Title, joinIssues(sess.Case.Issues)))
	res.Messages = append(res.Messages, msg)
	sess.passFloor()
	return types.ActionMakeArgument
}

func speechKind(p types.Phase) string {
	switch p {
	case types.PhaseOpening:
		return "opening statement"
	case types.PhaseRebuttal:
		return "rebuttal"
	default:
		return "final argument"
	}
}

func joinIssues(issues []string) string {
	out := ""
	for i, is := range issues {
		if i > 0 {
			out += "; "
		}
		out += is
	}
	return out
}

// aiPresentsEvidence offers the next untouched exhibit and opens the
// player's objection window, or rests when the locker is spent.
func (e *Engine) aiPresentsEvidence(sess *TrialSession, aiSide types.Side, res *TurnResult) types.ActionType {
	var next *evidence.Item
	for _, it := range sess.locker.ForSide(aiSide) {
		if it.Status == evidence.StatusNotIntroduced {
			next = &it
			break
		}
	}
	if next == nil {
		e.restSide(sess, aiSide, res)
		return types.ActionRestCase
	}

	// The AI always lays foundation first.
	if _, err := sess.locker.Mark(next.ID); err == nil {
		sess.marked[next.ID] = true
	}
	if _, err := sess.locker.Offer(next.ID); err != nil {
		e.restSide(sess, aiSide, res)
		return types.ActionRestCase
	}
	res.Messages = append(res.Messages, sess.say(types.CounselFor(aiSide), sess.counselName(aiSide),
		fmt.Sprintf("We mark and offer Exhibit %s, %s, into evidence.", next.Exhibit, next.Title)))

	sess.window = &responseWindow{kind: "offer", exhibit: next.ID, asker: aiSide}
	sess.turnOwner = sess.PlayerSide
	return types.ActionOfferEvidence
}

// aiExamines asks the current witness a question, opening the player's
// objection window, or ends the sub-phase when its questions are spent.
func (e *Engine) aiExamines(ctx context.Context, sess *TrialSession, aiSide types.Side, res *TurnResult) types.ActionType {
	w, ok := sess.witnesses[sess.currentWitness]
	if !ok {
		e.endSubPhase(sess, res)
		return types.ActionNoQuestions
	}
	if sess.aiQuestions >= aiQuestionsPerSubPhase {
		res.Messages = append(res.Messages, sess.say(types.CounselFor(aiSide), sess.counselName(aiSide),
			"No further questions."))
		e.endSubPhase(sess, res)
		return types.ActionNoQuestions
	}
	sess.aiQuestions++

	friendly := w.Side == aiSide
	question := aiQuestionText(w, sess.aiQuestions, friendly)
	res.Messages = append(res.Messages, sess.say(types.CounselFor(aiSide), sess.counselName(aiSide), question))

	sess.window = &responseWindow{
		kind:     "question",
		question: question,
		style:    string(witness.ClassifyQuestion(question)),
		asker:    aiSide,
	}
	sess.turnOwner = sess.PlayerSide
	return types.ActionAskQuestion
}

// aiQuestionText composes the opposing counsel's question. Chief questions
// walk the witness through their account; cross questions press on it.
func aiQuestionText(w *witness.State, n int, friendly bool) string {
	if friendly {
		if n == 1 {
			return fmt.Sprintf("%s, please tell the court, in your own words, what you know of this matter.", w.Name)
		}
		return "What happened next?"
	}
	if n == 1 {
		return fmt.Sprintf("%s, you would agree your account has been less than complete, wouldn't you?", w.Name)
	}
	return "And yet you maintain that account today?"
}

// deliverJudgment closes the trial: a consent decree when the parties
// settled, otherwise a verdict weighed from judicial favor, the admitted
// evidence and what the witnesses were worth by the end.
func (e *Engine) deliverJudgment(ctx context.Context, sess *TrialSession, res *TurnResult) {
	if sess.settlement != nil {
		res.Messages = append(res.Messages,
			sess.say(types.RoleJudge, sess.judge.Personality.Name,
				fmt.Sprintf("The parties having reached terms at %.0f, the court records a consent decree and closes the file.", sess.settlement.Amount)),
			sess.say(types.RoleClerk, "Clerk", "The court stands adjourned."))
		e.advancePhase(sess, res, "consent decree entered")
		return
	}

	playerWins, margin := e.weighVerdict(sess)
	winner := sess.PlayerSide
	if !playerWins {
		winner = sess.PlayerSide.Opponent()
	}

	reasons := e.speak(ctx, sess, types.RoleJudge, sess.judge.Personality.Name,
		fmt.Sprintf("Deliver brief reasons for judgment in %s, finding for the %s.", sess.Case.Title, winner))
	res.Messages = append(res.Messages, reasons)
	res.Messages = append(res.Messages, sess.say(types.RoleClerk, "Clerk",
		fmt.Sprintf("Judgment for the %s. The court stands adjourned.", winner)))
	e.log.Info("verdict delivered",
		zap.String("winner", string(winner)),
		zap.Int("margin", margin))
	e.advancePhase(sess, res, "judgment delivered")
}

// weighVerdict reduces the session to a contested outcome: judicial favor
// is the base, each side's admitted exhibits and surviving witness
// credibility move it. A challenged exhibit is worth half.
func (e *Engine) weighVerdict(sess *TrialSession) (playerWins bool, margin int) {
	weight := func(side types.Side) int {
		total := 0
		for _, it := range sess.locker.AdmittedFor(side) {
			if it.AuthenticityChallenged {
				total += 3
			} else {
				total += 6
			}
		}
		for _, w := range sess.witnesses {
			if w.Side != side {
				continue
			}
			cred := w.Credibility()
			if w.HasBrokenDown() {
				cred /= 2
			}
			total += cred / 10
		}
		return total
	}

	playerWeight := weight(sess.PlayerSide)
	oppWeight := weight(sess.PlayerSide.Opponent())
	favor := int(sess.score.JudgeFavor) - 50 // player-centric, zero is neutral
	margin = playerWeight - oppWeight + favor
	return margin >= 0, margin
}
