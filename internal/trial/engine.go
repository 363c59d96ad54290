package trial

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"courtroom/internal/casefile"
	"courtroom/internal/config"
	"courtroom/internal/education"
	"courtroom/internal/judge"
	"courtroom/internal/logging"
	"courtroom/internal/pressure"
	"courtroom/internal/research"
	"courtroom/internal/types"
)

// Engine drives trial sessions. It holds only immutable collaborators; all
// mutable state lives in the TrialSession, so one engine can run any number
// of sessions in sequence.
type Engine struct {
	cfg        *config.Config
	gen        types.TextGenerator
	classifier education.Classifier
	caselaw    *research.Catalogue
	eduDB      *education.Catalogue
	log        *zap.Logger
	clock      func() time.Time
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithClassifier swaps the mistake classifier.
func WithClassifier(c education.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithClock injects the turn-timer clock. Tests use this to make timing
// deterministic.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// NewEngine builds an engine over a generator and config. The embedded
// case-law and principle catalogues are loaded once here.
func NewEngine(cfg *config.Config, generator types.TextGenerator, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if generator == nil {
		return nil, fmt.Errorf("trial: nil text generator")
	}
	caselaw, err := research.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("loading case-law catalogue: %w", err)
	}
	eduDB, err := education.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("loading principle catalogue: %w", err)
	}
	e := &Engine{
		cfg:        cfg,
		gen:        generator,
		classifier: education.NewKeywordClassifier(eduDB),
		caselaw:    caselaw,
		eduDB:      eduDB,
		log:        logging.For(logger, logging.CategoryTrial),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Principles exposes the loaded principle catalogue for post-game reports
// and the CLI reference command.
func (e *Engine) Principles() *education.Catalogue { return e.eduDB }

// StartSession validates the case record and opens a session with the
// player arguing the given side. The petitioner opens.
func (e *Engine) StartSession(ctx context.Context, rec *casefile.Record, side types.Side) (*TrialSession, *TurnResult, error) {
	if err := rec.Validate(); err != nil {
		return nil, nil, fmt.Errorf("case record rejected: %w", err)
	}
	if side != types.SidePetitioner && side != types.SideRespondent {
		return nil, nil, fmt.Errorf("unknown side %q", side)
	}

	sess := newSession(rec, side, e.cfg, e.caselaw, e.eduDB, e.clock)
	e.log.Info("session started",
		zap.String("session", sess.ID),
		zap.String("case", rec.Title),
		zap.String("player_side", string(side)),
		zap.String("difficulty", string(e.cfg.Difficulty)))

	res := &TurnResult{}
	sess.say(types.RoleClerk, "Clerk",
		fmt.Sprintf("All rise. %s, before %s. The court is now in session.", rec.Title, sess.judge.Personality.Name))
	e.speak(ctx, sess, types.RoleJudge, sess.judge.Personality.Name,
		fmt.Sprintf("You are opening the hearing of %s. Invite the petitioner's counsel to begin their opening statement.", rec.Title))
	res.Messages = sess.tail(2)

	if sess.IsPlayerTurn() {
		sess.timer.Start()
	}
	res.NewPhase = phasePtr(sess.phase)
	return sess, res, nil
}

// TurnResult is everything one processed turn produced, in order.
type TurnResult struct {
	Messages      []types.Message
	Events        []types.Event
	Violations    []judge.Violation
	Timing        *pressure.TimingStats
	Confidence    pressure.Update
	Warning       string // formal judge warning text, if one was issued
	Flashcard     *education.Flashcard
	PhaseAdvanced bool
	NewPhase      *types.Phase
}

func phasePtr(p types.Phase) *types.Phase { return &p }

// tail returns the last n transcript messages; turn handlers use it to
// report exactly what they appended.
func (s *TrialSession) tail(n int) []types.Message {
	if n > len(s.transcript) {
		n = len(s.transcript)
	}
	return append([]types.Message(nil), s.transcript[len(s.transcript)-n:]...)
}

// AvailableActions returns the player's whitelist for the current state.
// An empty slice means it is not the player's turn. A pending flashcard
// narrows the list to acknowledgement only.
func (e *Engine) AvailableActions(sess *TrialSession) []types.ActionType {
	if sess.Over() || !sess.IsPlayerTurn() {
		return nil
	}
	if sess.education.Pending() != nil {
		return []types.ActionType{types.ActionAcknowledgeLesson}
	}
	if sess.sidebar.Settlement().Open() {
		return settlementActions(sess)
	}
	if sess.window != nil {
		return []types.ActionType{types.ActionObject, types.ActionNoQuestions, types.ActionRequestSidebar}
	}

	var acts []types.ActionType
	switch {
	case sess.phase == types.PhaseOpening || sess.phase == types.PhaseRebuttal || sess.phase == types.PhaseFinalArguments:
		acts = append(acts, types.ActionMakeArgument, types.ActionRestCase)
	case sess.phase.IsEvidencePhase():
		if evidencePhaseSide(sess.phase) == sess.PlayerSide {
			acts = append(acts,
				types.ActionPresentEvidence, types.ActionMarkForID,
				types.ActionOfferEvidence, types.ActionWithdrawEvidence,
				types.ActionChallengeAuthenticity, types.ActionRestCase)
		}
	case sess.phase.IsWitnessPhase():
		acts = append(acts, types.ActionAskQuestion, types.ActionNoQuestions)
		if sess.currentWitness == "" {
			acts = append(acts, types.ActionCallWitness)
		}
	}

	// Side channels are open whenever the player holds the floor. Budget
	// exhaustion is surfaced by the handlers, not hidden from the list.
	acts = append(acts, types.ActionRequestResearch, types.ActionRequestSidebar)
	if sess.timer.Enabled() {
		acts = append(acts, types.ActionRequestExtension)
	}
	return acts
}

func settlementActions(sess *TrialSession) []types.ActionType {
	if _, onTable := sess.sidebar.Settlement().Current(); onTable {
		return []types.ActionType{
			types.ActionAcceptSettlement, types.ActionCounterSettlement,
			types.ActionRejectSettlement,
		}
	}
	return []types.ActionType{types.ActionProposeSettlement, types.ActionRejectSettlement}
}

// evidencePhaseSide returns the side presenting in an evidence phase.
func evidencePhaseSide(p types.Phase) types.Side {
	if p == types.PhaseRespondentEvidence {
		return types.SideRespondent
	}
	return types.SidePetitioner
}

// witnessPhaseExaminer returns the side examining in the current witness
// sub-phase: the calling side in chief and re-examination, the opponent on
// cross.
func witnessPhaseExaminer(sub types.SubPhase, callingSide types.Side) types.Side {
	if sub == types.SubPhaseCross {
		return callingSide.Opponent()
	}
	return callingSide
}

// witnessCallingSide returns whose witnesses take the stand in a phase.
func witnessCallingSide(p types.Phase) types.Side {
	if p == types.PhaseRespondentWitness {
		return types.SideRespondent
	}
	return types.SidePetitioner
}

// speak asks the generator for an utterance and appends it to the
// transcript. The resilient wrapper guarantees a line comes back.
func (e *Engine) speak(ctx context.Context, sess *TrialSession, role types.Role, speaker, situation string) types.Message {
	text, err := e.gen.Generate(ctx, types.GenRequest{
		Role:      role,
		Persona:   e.personaFor(sess, role, speaker),
		Situation: situation,
	})
	if err != nil {
		// Resilient generators never error; a raw one might. Degrade to a
		// neutral line rather than stalling the proceeding.
		e.log.Warn("generation failed", zap.String("role", string(role)), zap.Error(err))
		text = "(proceeds after a pause)"
	}
	return sess.say(role, speaker, text)
}

func (e *Engine) personaFor(sess *TrialSession, role types.Role, speaker string) string {
	switch role {
	case types.RoleJudge:
		p := sess.judge.Personality
		return fmt.Sprintf("%s, presiding judge, mood %s. Strict about procedure: %d%%.",
			p.Name, sess.judge.Mood(), p.Strictness)
	case types.RoleWitness:
		if w, ok := sess.witnesses[sess.currentWitness]; ok {
			return fmt.Sprintf("%s, a %s witness, currently %s.", speaker, w.Template, w.Reaction())
		}
		return speaker
	case types.RolePetitionerCounsel:
		return fmt.Sprintf("%s, counsel for %s.", speaker, sess.Case.Petitioner.Name)
	case types.RoleRespondentCounsel:
		return fmt.Sprintf("%s, counsel for %s.", speaker, sess.Case.Respondent.Name)
	}
	return speaker
}
