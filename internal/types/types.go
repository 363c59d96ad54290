// Package types holds the shared value types of the trial engine: sides,
// roles, phases, actions, transcript messages and the interfaces the engine
// consumes from its collaborators.
//
// Subsystem packages (evidence, witness, judge, ...) depend on types but
// never on each other; the trial orchestrator is the only package that
// composes them.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Side identifies a party to the proceeding.
type Side string

const (
	SidePetitioner Side = "petitioner" // plaintiff in civil matters
	SideRespondent Side = "respondent" // defendant
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePetitioner {
		return SideRespondent
	}
	return SidePetitioner
}

// Role identifies who is speaking in the courtroom.
type Role string

const (
	RoleJudge             Role = "judge"
	RolePetitionerCounsel Role = "petitioner_counsel"
	RoleRespondentCounsel Role = "respondent_counsel"
	RoleWitness           Role = "witness"
	RoleClerk             Role = "clerk"
	RoleSystem            Role = "system"
)

// CounselFor returns the counsel role arguing for the given side.
func CounselFor(s Side) Role {
	if s == SidePetitioner {
		return RolePetitionerCounsel
	}
	return RoleRespondentCounsel
}

// Phase is a macro-stage of the trial. Phases are ordered and only ever
// advance; the zero value is PhaseOpening.
type Phase int

const (
	PhaseOpening Phase = iota
	PhasePetitionerEvidence
	PhasePetitionerWitness
	PhaseCrossExamination
	PhaseRespondentEvidence
	PhaseRespondentWitness
	PhaseRebuttal
	PhaseFinalArguments
	PhaseJudgment
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseOpening:            "opening_statements",
	PhasePetitionerEvidence: "petitioner_evidence",
	PhasePetitionerWitness:  "petitioner_witness_examination",
	PhaseCrossExamination:   "cross_examination",
	PhaseRespondentEvidence: "respondent_evidence",
	PhaseRespondentWitness:  "respondent_witness_examination",
	PhaseRebuttal:           "rebuttal",
	PhaseFinalArguments:     "final_arguments",
	PhaseJudgment:           "judgment",
	PhaseGameOver:           "game_over",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown_phase"
}

// Next returns the following phase. Next of PhaseGameOver is PhaseGameOver.
func (p Phase) Next() Phase {
	if p >= PhaseGameOver {
		return PhaseGameOver
	}
	return p + 1
}

// Terminal reports whether the trial has ended.
func (p Phase) Terminal() bool { return p == PhaseGameOver }

// IsWitnessPhase reports whether witness examination with sub-phase cycling
// runs in this phase.
func (p Phase) IsWitnessPhase() bool {
	return p == PhasePetitionerWitness || p == PhaseRespondentWitness
}

// IsEvidencePhase reports whether evidence presentation runs in this phase.
func (p Phase) IsEvidencePhase() bool {
	return p == PhasePetitionerEvidence || p == PhaseRespondentEvidence
}

// SubPhase is the intra-witness examination stage. Chief, cross and
// re-examination cycle once per witness before the outer phase advances.
type SubPhase string

const (
	SubPhaseNone   SubPhase = ""
	SubPhaseChief  SubPhase = "chief_examination"
	SubPhaseCross  SubPhase = "cross_examination"
	SubPhaseReExam SubPhase = "re_examination"
)

// Next returns the following sub-phase, or SubPhaseNone after re-exam.
func (s SubPhase) Next() SubPhase {
	switch s {
	case SubPhaseChief:
		return SubPhaseCross
	case SubPhaseCross:
		return SubPhaseReExam
	default:
		return SubPhaseNone
	}
}

// Message is one transcript entry. Messages are appended in the exact order
// subsystems produce them within a single turn and never reordered.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Speaker string    `json:"speaker"` // display name, e.g. witness name
	Text    string    `json:"text"`
	Phase   Phase     `json:"phase"`
	Turn    int       `json:"turn"`
	At      time.Time `json:"at"`
}

// NewMessage builds a transcript message with a fresh ID.
func NewMessage(role Role, speaker, text string, phase Phase, turn int) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Speaker: speaker,
		Text:    text,
		Phase:   phase,
		Turn:    turn,
		At:      time.Now(),
	}
}

// EventKind tags a dynamic courtroom event surfaced to the caller.
type EventKind string

const (
	EventObjectionSustained EventKind = "objection_sustained"
	EventObjectionOverruled EventKind = "objection_overruled"
	EventContradictionFound EventKind = "contradiction_found"
	EventWitnessBreakdown   EventKind = "witness_breakdown"
	EventJudgeWarning       EventKind = "judge_warning"
	EventPhaseAdvanced      EventKind = "phase_advanced"
	EventEvidenceAdmitted   EventKind = "evidence_admitted"
	EventEvidenceExcluded   EventKind = "evidence_excluded"
	EventGalleryMurmur      EventKind = "gallery_murmur"
	EventSettlementReached  EventKind = "settlement_reached"
	EventLearningMoment     EventKind = "learning_moment"
)

// Event is a dynamic occurrence produced while processing a turn.
type Event struct {
	Kind    EventKind `json:"kind"`
	Detail  string    `json:"detail"`
	Phase   Phase     `json:"phase"`
	Subject string    `json:"subject,omitempty"` // exhibit, witness or citation id
}
