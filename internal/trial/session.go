// Package trial implements the phase orchestrator: the TrialSession
// aggregate, the per-phase action whitelists, player action dispatch and
// the AI turns for the opposing counsel, witnesses and the judge. The
// orchestrator owns every subsystem's state; subsystems only meet through
// values it passes between them.
package trial

import (
	"time"

	"github.com/google/uuid"

	"courtroom/internal/analysis"
	"courtroom/internal/casefile"
	"courtroom/internal/config"
	"courtroom/internal/education"
	"courtroom/internal/evidence"
	"courtroom/internal/judge"
	"courtroom/internal/pressure"
	"courtroom/internal/research"
	"courtroom/internal/sidebar"
	"courtroom/internal/types"
	"courtroom/internal/witness"
)

// responseWindow is a one-action window in which the non-acting side may
// object before the proceeding moves on: after an exhibit is offered or
// after a question is put to a witness.
type responseWindow struct {
	kind     string // "offer" or "question"
	exhibit  string
	question string
	style    string // lexical style of the pending question
	asker    types.Side
}

// TrialSession is the aggregate root: one playthrough of one case. It is
// created by Engine.StartSession, mutated only through the Engine, and
// discarded on reset; nothing survives it.
type TrialSession struct {
	ID         string
	Case       *casefile.Record
	PlayerSide types.Side

	cfg *config.Config

	phase         types.Phase
	subPhase      types.SubPhase
	phaseTurn     int
	turnOwner     types.Side
	floor         types.Side // current speaker in the alternating speech phases
	phaseExtended bool
	adjournCredit int // granted adjournments do not count against the phase clock

	// Witness scheduling within examination phases.
	witnessQueue   []string
	currentWitness string

	// Pending reactive window for the side opposite the last actor.
	window *responseWindow

	// Evidence foundation tracking: exhibits marked for identification.
	marked map[string]bool

	rested map[types.Side]bool

	// AI pacing within the current phase / sub-phase.
	aiArguments int
	aiQuestions int

	locker    *evidence.Locker
	witnesses map[string]*witness.State
	judge     *judge.State
	timer     *pressure.Timer
	meter     *pressure.Meter
	research  *research.State
	sidebar   *sidebar.State
	education *education.Tracker

	score      *analysis.Score
	actionLog  *analysis.Log
	settlement *analysis.SettlementRecord

	transcript []types.Message
}

func newSession(rec *casefile.Record, side types.Side, cfg *config.Config, caselaw *research.Catalogue, eduDB *education.Catalogue, clock func() time.Time) *TrialSession {
	var sources []evidence.Source
	for _, e := range rec.Evidence {
		sources = append(sources, evidence.Source{
			ID: e.ID, Side: e.Side, Category: e.Category,
			Title: e.Title, Description: e.Description,
		})
	}

	witnesses := make(map[string]*witness.State, len(rec.Witnesses))
	for _, w := range rec.Witnesses {
		ws := witness.New(w.ID, w.Name, w.Side, witness.Template(w.Template))
		ws.SeedFacts(w.KeyFacts)
		witnesses[w.ID] = ws
	}

	// Difficulty scales how fast the bench loses patience.
	j := judge.New(judge.PresetOrDefault(rec.JudgeProfile))
	switch cfg.Difficulty {
	case config.DifficultyEasy:
		j.Personality.Strictness -= 20
	case config.DifficultyHard:
		j.Personality.Strictness += 20
	}

	return &TrialSession{
		ID:         uuid.NewString(),
		Case:       rec,
		PlayerSide: side,
		cfg:        cfg,
		phase:      types.PhaseOpening,
		turnOwner:  types.SidePetitioner,
		floor:      types.SidePetitioner,
		marked:     make(map[string]bool),
		rested:     make(map[types.Side]bool),
		locker:     evidence.NewLocker(sources),
		witnesses:  witnesses,
		judge:      j,
		timer:      pressure.NewTimer(cfg.Features.Pressure && cfg.Timer.Enabled, cfg.Timer.Limit(), cfg.Timer.Extensions, clock),
		meter:      pressure.NewMeter(cfg.Features.Pressure),
		research:   research.NewState(caselaw, cfg.Budgets.Research),
		sidebar:    sidebar.NewState(cfg.Budgets.Sidebars),
		education:  education.NewTracker(eduDB, cfg.Budgets.Flashcards, cfg.Features.Education),
		score:      analysis.NewScore(),
		actionLog:  &analysis.Log{},
	}
}

// Phase returns the current trial phase.
func (s *TrialSession) Phase() types.Phase { return s.phase }

// SubPhase returns the current examination sub-phase.
func (s *TrialSession) SubPhase() types.SubPhase { return s.subPhase }

// PhaseTurn returns the turn counter within the current phase.
func (s *TrialSession) PhaseTurn() int { return s.phaseTurn }

// TurnOwner returns the side entitled to act next.
func (s *TrialSession) TurnOwner() types.Side { return s.turnOwner }

// IsPlayerTurn reports whether the player holds the floor.
func (s *TrialSession) IsPlayerTurn() bool { return s.turnOwner == s.PlayerSide }

// Over reports whether the trial has reached game over.
func (s *TrialSession) Over() bool { return s.phase.Terminal() }

// Settled returns the settlement record if the case settled.
func (s *TrialSession) Settled() (*analysis.SettlementRecord, bool) {
	return s.settlement, s.settlement != nil
}

// Transcript returns the ordered session log.
func (s *TrialSession) Transcript() []types.Message {
	return append([]types.Message(nil), s.transcript...)
}

// CurrentWitness returns the witness on the stand, if any.
func (s *TrialSession) CurrentWitness() (string, bool) {
	return s.currentWitness, s.currentWitness != ""
}

func (s *TrialSession) say(role types.Role, speaker, text string) types.Message {
	msg := types.NewMessage(role, speaker, text, s.phase, s.phaseTurn)
	s.transcript = append(s.transcript, msg)
	return msg
}

func (s *TrialSession) counselName(side types.Side) string {
	if side == types.SidePetitioner {
		if s.Case.Petitioner.Counsel != "" {
			return s.Case.Petitioner.Counsel
		}
		return "Counsel for the petitioner"
	}
	if s.Case.Respondent.Counsel != "" {
		return s.Case.Respondent.Counsel
	}
	return "Counsel for the respondent"
}

// --- display projections -------------------------------------------------

// EvidenceView returns the locker projection: all exhibits with status.
func (s *TrialSession) EvidenceView() []evidence.Item { return s.locker.Items() }

// WitnessView returns one witness's reveal-gated projection.
func (s *TrialSession) WitnessView(id string) (witness.View, bool) {
	w, ok := s.witnesses[id]
	if !ok {
		return witness.View{}, false
	}
	return w.DisplayView(), true
}

// WitnessViews returns the reveal-gated projection of every witness, in
// case-record order.
func (s *TrialSession) WitnessViews() []witness.View {
	var out []witness.View
	for _, p := range s.Case.Witnesses {
		if w, ok := s.witnesses[p.ID]; ok {
			out = append(out, w.DisplayView())
		}
	}
	return out
}

// JudgeView returns the judge projection.
func (s *TrialSession) JudgeView() judge.View { return s.judge.DisplayView() }

// ResearchView returns the research ledger projection.
func (s *TrialSession) ResearchView() research.View { return s.research.DisplayView() }

// SidebarView returns the sidebar ledger projection.
func (s *TrialSession) SidebarView() sidebar.View { return s.sidebar.DisplayView() }

// EducationView returns the education ledger projection.
func (s *TrialSession) EducationView() education.View { return s.education.DisplayView() }

// Score returns a copy of the running score.
func (s *TrialSession) Score() analysis.Score {
	cp := *s.score
	cats := make(map[types.ScoreCategory]float64, len(s.score.Categories))
	for k, v := range s.score.Categories {
		cats[k] = v
	}
	cp.Categories = cats
	return cp
}

// Report builds the post-game analysis. It is only meaningful once the
// session is over.
func (s *TrialSession) Report(db *education.Catalogue) *analysis.Report {
	optimal := analysis.OptimalBaseline(len(s.Case.Witnesses), len(s.Case.Evidence))
	return analysis.BuildReport(s.actionLog, optimal, db, s.settlement)
}
