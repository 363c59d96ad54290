package trial

import (
	"fmt"

	"go.uber.org/zap"

	"courtroom/internal/types"
)

// Phase progression. Each phase owns a turn counter, a floor owner and,
// for examination phases, a witness queue. The clock of a phase runs on
// every processed turn regardless of who acted; reaching the limit advances
// the phase whether or not either side was finished.
//
// Witness examination is split the way the docket orders it: the
// petitioner's witnesses are examined in chief during their own phase and
// crossed (with re-examination) during the standalone cross-examination
// phase; the respondent's witnesses run the full chief, cross,
// re-examination cycle inside their single phase.

// extraTurnsOnExtension is the phase-clock grant when the judge allows an
// extension.
const extraTurnsOnExtension = 3

func (s *TrialSession) effectiveMaxTurns() int {
	rule := s.cfg.PhaseRuleFor(s.phase)
	max := rule.MaxTurns
	if s.phaseExtended {
		max += extraTurnsOnExtension
	}
	// The phase clock still ticks on the adjournment turn itself; the
	// credit gives that turn back.
	max += s.adjournCredit
	return max
}

// computeOwner derives the floor owner from phase state.
func (s *TrialSession) computeOwner() types.Side {
	switch {
	case s.phase == types.PhaseRebuttal:
		return types.SidePetitioner
	case s.phase == types.PhaseOpening || s.phase == types.PhaseFinalArguments:
		// Alternating speeches, petitioner first; a rested side yields.
		// Side-channel actions keep the floor, so the speaker is tracked
		// rather than derived from the turn count.
		if s.rested[s.floor] {
			return s.floor.Opponent()
		}
		return s.floor
	case s.phase.IsEvidencePhase():
		return evidencePhaseSide(s.phase)
	case s.phase.IsWitnessPhase():
		return witnessPhaseExaminer(s.subPhase, witnessCallingSide(s.phase))
	default:
		// Judgment and game over: the bench holds the floor.
		return s.PlayerSide.Opponent()
	}
}

// enterPhase initializes per-phase state and emits the clerk's call.
func (e *Engine) enterPhase(sess *TrialSession, res *TurnResult) {
	sess.phaseTurn = 0
	sess.phaseExtended = false
	sess.adjournCredit = 0
	sess.window = nil
	sess.aiArguments = 0
	sess.aiQuestions = 0
	sess.floor = types.SidePetitioner
	sess.rested = map[types.Side]bool{}
	sess.subPhase = types.SubPhaseNone
	sess.witnessQueue = nil
	sess.currentWitness = ""

	switch sess.phase {
	case types.PhasePetitionerWitness:
		sess.subPhase = types.SubPhaseChief
		sess.queueWitnesses(types.SidePetitioner)
	case types.PhaseCrossExamination:
		sess.subPhase = types.SubPhaseCross
		sess.queueWitnesses(types.SidePetitioner)
	case types.PhaseRespondentWitness:
		sess.subPhase = types.SubPhaseChief
		sess.queueWitnesses(types.SideRespondent)
	}

	msg := sess.say(types.RoleClerk, "Clerk", phaseCall(sess.phase))
	res.Messages = append(res.Messages, msg)

	if sess.phase.IsWitnessPhase() {
		if m, ok := e.callNextWitness(sess); ok {
			res.Messages = append(res.Messages, m)
		} else {
			// No witnesses to examine: the phase is vacuous, skip it.
			e.advancePhase(sess, res, "no witnesses to examine")
			return
		}
	}
	sess.turnOwner = sess.computeOwner()
}

func (s *TrialSession) queueWitnesses(side types.Side) {
	for _, w := range s.Case.WitnessesFor(side) {
		if ws, ok := s.witnesses[w.ID]; ok && !ws.Excused() {
			s.witnessQueue = append(s.witnessQueue, w.ID)
		}
	}
}

// callNextWitness pops the queue onto the stand.
func (e *Engine) callNextWitness(sess *TrialSession) (types.Message, bool) {
	if len(sess.witnessQueue) == 0 {
		sess.currentWitness = ""
		return types.Message{}, false
	}
	sess.currentWitness = sess.witnessQueue[0]
	sess.witnessQueue = sess.witnessQueue[1:]
	w := sess.witnesses[sess.currentWitness]
	return sess.say(types.RoleClerk, "Clerk",
		fmt.Sprintf("The court calls %s to the stand.", w.Name)), true
}

// standDownWitness stands the current witness down and brings up the next,
// or reports the queue empty. Witnesses are excused for good only once
// their cross-examination cycle is complete; after chief examination alone
// they merely step down, since the cross-examination phase recalls them.
func (e *Engine) standDownWitness(sess *TrialSession, res *TurnResult, excuse bool) (more bool) {
	if w, ok := sess.witnesses[sess.currentWitness]; ok {
		if excuse {
			w.Excuse()
		}
		res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
			fmt.Sprintf("Thank you, %s. You may step down.", w.Name)))
	}
	sess.currentWitness = ""
	if m, ok := e.callNextWitness(sess); ok {
		sess.subPhase = initialSubPhase(sess.phase)
		res.Messages = append(res.Messages, m)
		return true
	}
	return false
}

func initialSubPhase(p types.Phase) types.SubPhase {
	if p == types.PhaseCrossExamination {
		return types.SubPhaseCross
	}
	return types.SubPhaseChief
}

// endSubPhase advances the examination cycle for the current witness. In
// the petitioner witness phase only the chief examination runs here; cross
// and re-examination of those witnesses belong to the standalone phase.
func (e *Engine) endSubPhase(sess *TrialSession, res *TurnResult) {
	done := false
	switch sess.phase {
	case types.PhasePetitionerWitness:
		done = true // chief only; cross comes later
	case types.PhaseCrossExamination:
		if sess.subPhase == types.SubPhaseCross {
			sess.subPhase = types.SubPhaseReExam
		} else {
			done = true
		}
	case types.PhaseRespondentWitness:
		sess.subPhase = sess.subPhase.Next()
		done = sess.subPhase == types.SubPhaseNone
	}
	sess.aiQuestions = 0
	if done {
		excuse := sess.phase != types.PhasePetitionerWitness
		if !e.standDownWitness(sess, res, excuse) {
			e.advancePhase(sess, res, "all witnesses examined")
			return
		}
	}
	sess.turnOwner = sess.computeOwner()
}

// advancePhase moves to the next phase and announces it.
func (e *Engine) advancePhase(sess *TrialSession, res *TurnResult, why string) {
	from := sess.phase
	sess.phase = sess.phase.Next()
	res.PhaseAdvanced = true
	res.NewPhase = phasePtr(sess.phase)
	res.Events = append(res.Events, types.Event{
		Kind:   types.EventPhaseAdvanced,
		Detail: why,
		Phase:  sess.phase,
	})
	e.log.Info("phase advanced",
		zap.String("from", from.String()),
		zap.String("to", sess.phase.String()),
		zap.String("why", why))

	if sess.phase == types.PhaseGameOver {
		sess.turnOwner = sess.PlayerSide.Opponent()
		return
	}
	if sess.phase == types.PhaseJudgment {
		res.Messages = append(res.Messages, sess.say(types.RoleClerk, "Clerk",
			"The court will now pronounce its judgment."))
		sess.turnOwner = sess.computeOwner()
		return
	}
	e.enterPhase(sess, res)
}

// endTurn runs the phase clock after any processed turn and enforces the
// schedule: warning near the limit, one extension if the rules and the
// judge's patience allow it, otherwise a forced advance.
func (e *Engine) endTurn(sess *TrialSession, res *TurnResult) {
	if sess.Over() || sess.phase == types.PhaseJudgment {
		return
	}
	sess.phaseTurn++
	rule := sess.cfg.PhaseRuleFor(sess.phase)

	if sess.phaseTurn == rule.WarningTurn && rule.WarningTurn < sess.effectiveMaxTurns() {
		res.Messages = append(res.Messages, sess.say(types.RoleClerk, "Clerk",
			"Counsel are reminded the court's time for this stage is nearly spent."))
	}

	if sess.phaseTurn >= sess.effectiveMaxTurns() {
		if rule.ExtensionAllowed && !sess.phaseExtended && sess.judge.Patience() >= 50 {
			sess.phaseExtended = true
			res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
				"The court will indulge counsel a little longer. Briefly."))
		} else {
			res.Messages = append(res.Messages, sess.say(types.RoleJudge, sess.judge.Personality.Name,
				"The court has heard enough on this stage. We move on."))
			e.advancePhase(sess, res, "phase turn limit reached")
			return
		}
	}

	if sess.window == nil && !sess.sidebar.Settlement().Open() {
		sess.turnOwner = sess.computeOwner()
	}
}

// passFloor hands the speech-phase floor to the other side unless they
// have rested.
func (s *TrialSession) passFloor() {
	next := s.floor.Opponent()
	if s.rested[next] {
		next = next.Opponent()
	}
	s.floor = next
}

// restSide records a rest_case and advances when both sides have rested or
// when the floor can no longer change hands.
func (e *Engine) restSide(sess *TrialSession, side types.Side, res *TurnResult) {
	sess.rested[side] = true
	res.Messages = append(res.Messages, sess.say(types.CounselFor(side), sess.counselName(side),
		"Nothing further at this stage. We rest."))

	bothRested := sess.rested[types.SidePetitioner] && sess.rested[types.SideRespondent]
	singleFloor := sess.phase == types.PhaseRebuttal || sess.phase.IsEvidencePhase()
	if bothRested || singleFloor {
		e.advancePhase(sess, res, "case rested")
		return
	}
	sess.passFloor()
}

func phaseCall(p types.Phase) string {
	switch p {
	case types.PhaseOpening:
		return "The parties will now make their opening statements."
	case types.PhasePetitionerEvidence:
		return "The petitioner may place its evidence before the court."
	case types.PhasePetitionerWitness:
		return "The petitioner may call its witnesses for examination-in-chief."
	case types.PhaseCrossExamination:
		return "The respondent may cross-examine the petitioner's witnesses."
	case types.PhaseRespondentEvidence:
		return "The respondent may place its evidence before the court."
	case types.PhaseRespondentWitness:
		return "The respondent may call its witnesses."
	case types.PhaseRebuttal:
		return "The petitioner may briefly rebut."
	case types.PhaseFinalArguments:
		return "The parties will now make their final arguments."
	default:
		return "The court proceeds."
	}
}
