// Package witness implements the per-witness credibility model: hidden
// stats nudged by every question, lexical question-style classification,
// contradiction detection against chief-examination answers, and the
// reveal-percentage contract that gates how much the display layer may
// disclose.
package witness

import (
	"fmt"

	"courtroom/internal/types"
)

// Template names a fixed personality preset.
type Template string

const (
	TemplateExpert       Template = "expert"
	TemplateEyewitness   Template = "eyewitness"
	TemplateHostileParty Template = "hostile_party"
	TemplateCharacter    Template = "character"
)

// Stats are the hidden per-witness attributes, each 0-100.
type Stats struct {
	Credibility    int `json:"credibility"`
	Nervousness    int `json:"nervousness"`
	Hostility      int `json:"hostility"`
	MemoryAccuracy int `json:"memory_accuracy"`
}

// templateStats maps each personality preset to base stats and a volatility
// multiplier applied to every stat delta.
var templateStats = map[Template]struct {
	base       Stats
	volatility int // percent, 100 = nominal
}{
	TemplateExpert:       {Stats{Credibility: 80, Nervousness: 15, Hostility: 10, MemoryAccuracy: 85}, 70},
	TemplateEyewitness:   {Stats{Credibility: 60, Nervousness: 45, Hostility: 20, MemoryAccuracy: 55}, 120},
	TemplateHostileParty: {Stats{Credibility: 50, Nervousness: 25, Hostility: 65, MemoryAccuracy: 70}, 110},
	TemplateCharacter:    {Stats{Credibility: 65, Nervousness: 35, Hostility: 15, MemoryAccuracy: 60}, 100},
}

// Reaction is the visible demeanor derived each turn from the hidden stats.
type Reaction string

const (
	ReactionCooperative Reaction = "cooperative"
	ReactionDefensive   Reaction = "defensive"
	ReactionHostile     Reaction = "hostile"
	ReactionNervous     Reaction = "nervous"
	ReactionConfused    Reaction = "confused"
	ReactionEvasive     Reaction = "evasive"
	ReactionConfident   Reaction = "confident"
	ReactionBreakdown   Reaction = "breakdown"
)

const (
	revealPerQuestion = 7
	// RevealNumericThreshold is the reveal percentage above which the
	// display layer may show numeric stats instead of qualitative hints.
	RevealNumericThreshold = 40

	breakdownHostility   = 80
	breakdownNervousness = 75
	breakdownStreak      = 2
)

// State tracks one witness for the life of a session.
type State struct {
	ID       string
	Name     string
	Side     types.Side
	Template Template

	stats  Stats
	reveal int

	QuestionsAsked       int
	ContradictionsCaught int

	brokenDown   bool
	rapportBuilt bool
	excused      bool

	reaction         Reaction
	aggressiveStreak int
	friendlyOpenRuns int

	facts []factFingerprint // cached from chief-examination answers
}

// New creates witness state from a case-record profile.
func New(id, name string, side types.Side, tmpl Template) *State {
	t, ok := templateStats[tmpl]
	if !ok {
		t = templateStats[TemplateCharacter]
	}
	return &State{
		ID:       id,
		Name:     name,
		Side:     side,
		Template: tmpl,
		stats:    t.base,
		reaction: ReactionCooperative,
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (s *State) scale(delta int) int {
	t, ok := templateStats[s.Template]
	if !ok {
		return delta
	}
	return delta * t.volatility / 100
}

// QuestionOutcome reports the effect of one question.
type QuestionOutcome struct {
	Style       QuestionStyle
	Reaction    Reaction
	RevealDelta int
	BrokeDown   bool // true only on the triggering question
}

// AskQuestion applies one question from the examining side. Friendly means
// the examiner called this witness (chief or re-examination); cross
// examination is hostile. Stats move deterministically from the question
// style and the personality template; reveal percentage only ever grows.
func (s *State) AskQuestion(friendly bool, text string) QuestionOutcome {
	style := ClassifyQuestion(text)
	s.QuestionsAsked++

	before := s.reveal
	s.reveal = clamp(s.reveal + revealPerQuestion)

	switch {
	case friendly && style == StyleOpen:
		s.friendlyOpenRuns++
		s.stats.Nervousness = clamp(s.stats.Nervousness - s.scale(4))
		s.stats.Credibility = clamp(s.stats.Credibility + s.scale(2))
		s.aggressiveStreak = 0
	case friendly && style == StyleLeading:
		// Coaching your own witness reads poorly even when unobjected.
		s.stats.Credibility = clamp(s.stats.Credibility - s.scale(2))
		s.aggressiveStreak = 0
	case !friendly && style == StyleAggressive:
		s.aggressiveStreak++
		s.stats.Hostility = clamp(s.stats.Hostility + s.scale(8))
		s.stats.Nervousness = clamp(s.stats.Nervousness + s.scale(7))
		s.stats.MemoryAccuracy = clamp(s.stats.MemoryAccuracy - s.scale(3))
	case !friendly && style == StyleLeading:
		s.stats.Nervousness = clamp(s.stats.Nervousness + s.scale(4))
		s.stats.Hostility = clamp(s.stats.Hostility + s.scale(2))
		s.aggressiveStreak = 0
	default:
		s.stats.Nervousness = clamp(s.stats.Nervousness + s.scale(1))
		s.aggressiveStreak = 0
	}

	if !s.rapportBuilt && friendly && s.friendlyOpenRuns >= 3 {
		s.rapportBuilt = true
		s.stats.Credibility = clamp(s.stats.Credibility + s.scale(5))
	}

	justBroke := false
	if !s.brokenDown && !friendly &&
		s.stats.Hostility >= breakdownHostility &&
		s.stats.Nervousness >= breakdownNervousness &&
		s.aggressiveStreak >= breakdownStreak {
		s.brokenDown = true
		justBroke = true
	}

	s.deriveReaction()
	return QuestionOutcome{
		Style:       style,
		Reaction:    s.reaction,
		RevealDelta: s.reveal - before,
		BrokeDown:   justBroke,
	}
}

// deriveReaction maps stats to a demeanor. Breakdown is sticky for the
// remainder of the examination.
func (s *State) deriveReaction() {
	switch {
	case s.brokenDown:
		s.reaction = ReactionBreakdown
	case s.stats.Hostility >= 70:
		s.reaction = ReactionHostile
	case s.stats.Nervousness >= 70:
		s.reaction = ReactionNervous
	case s.stats.Hostility >= 50:
		s.reaction = ReactionDefensive
	case s.stats.MemoryAccuracy <= 35:
		s.reaction = ReactionConfused
	case s.stats.Nervousness >= 50 && s.stats.Credibility <= 50:
		s.reaction = ReactionEvasive
	case s.stats.Credibility >= 75 && s.stats.Nervousness <= 30:
		s.reaction = ReactionConfident
	default:
		s.reaction = ReactionCooperative
	}
}

// RecordChiefAnswer caches the key assertions of a chief-examination answer
// as fact fingerprints for later contradiction checks.
func (s *State) RecordChiefAnswer(answer string) {
	s.facts = append(s.facts, fingerprints(answer)...)
}

// Contradiction describes a caught inconsistency between cross and chief
// testimony.
type Contradiction struct {
	ChiefAssertion string
	CrossAssertion string
}

// CheckCrossAnswer compares a cross-examination answer against the cached
// chief-examination assertions. A mismatch counts one contradiction, pushes
// hostility up and credibility down, and is surfaced as a scorable event.
func (s *State) CheckCrossAnswer(answer string) (Contradiction, bool) {
	cross := fingerprints(answer)
	for _, ca := range cross {
		for _, chief := range s.facts {
			if contradicts(chief, ca) {
				s.ContradictionsCaught++
				s.stats.Hostility = clamp(s.stats.Hostility + s.scale(8))
				s.stats.Credibility = clamp(s.stats.Credibility - s.scale(10))
				s.deriveReaction()
				return Contradiction{ChiefAssertion: chief.text, CrossAssertion: ca.text}, true
			}
		}
	}
	return Contradiction{}, false
}

// SeedFacts primes the fingerprint cache from the case record's key facts,
// so contradiction detection works even before any chief answer is spoken.
func (s *State) SeedFacts(facts []string) {
	for _, f := range facts {
		s.facts = append(s.facts, fingerprints(f)...)
	}
}

// Excuse ends this witness's examination.
func (s *State) Excuse() { s.excused = true }

// Excused reports whether the witness has been excused.
func (s *State) Excused() bool { return s.excused }

// Reaction returns the current demeanor.
func (s *State) Reaction() Reaction { return s.reaction }

// RevealPercent returns how much of the hidden stats has been discovered.
func (s *State) RevealPercent() int { return s.reveal }

// IsHostile reports the derived hostility flag.
func (s *State) IsHostile() bool {
	return s.Template == TemplateHostileParty || s.stats.Hostility >= 70
}

// HasBrokenDown reports the sticky breakdown flag.
func (s *State) HasBrokenDown() bool { return s.brokenDown }

// RapportBuilt reports whether friendly examination established rapport.
func (s *State) RapportBuilt() bool { return s.rapportBuilt }

// Credibility exposes the credibility stat to scoring.
func (s *State) Credibility() int { return s.stats.Credibility }

// View is the display projection. Numeric stats are only populated once the
// reveal percentage passes RevealNumericThreshold; below that only
// qualitative hints are exposed. This gating is the core's contract with
// the display layer, not a UI concern.
type View struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Side           types.Side `json:"side"`
	Reaction       Reaction   `json:"reaction"`
	RevealPercent  int        `json:"reveal_percent"`
	Questions      int        `json:"questions_asked"`
	Contradictions int        `json:"contradictions_caught"`
	Excused        bool       `json:"excused"`
	Hints          []string   `json:"hints"`
	Stats          *Stats     `json:"stats,omitempty"`
}

// DisplayView builds the reveal-gated projection.
func (s *State) DisplayView() View {
	v := View{
		ID:             s.ID,
		Name:           s.Name,
		Side:           s.Side,
		Reaction:       s.reaction,
		RevealPercent:  s.reveal,
		Questions:      s.QuestionsAsked,
		Contradictions: s.ContradictionsCaught,
		Excused:        s.excused,
	}
	if s.reveal >= RevealNumericThreshold {
		st := s.stats
		v.Stats = &st
		return v
	}
	v.Hints = s.hints()
	return v
}

func (s *State) hints() []string {
	var h []string
	switch {
	case s.stats.Credibility >= 70:
		h = append(h, fmt.Sprintf("%s comes across as believable", s.Name))
	case s.stats.Credibility <= 40:
		h = append(h, fmt.Sprintf("%s seems unreliable", s.Name))
	}
	if s.stats.Nervousness >= 60 {
		h = append(h, "visibly nervous on the stand")
	}
	if s.stats.Hostility >= 60 {
		h = append(h, "openly resistant to questioning")
	}
	if len(h) == 0 {
		h = append(h, "nothing notable yet; keep questioning")
	}
	return h
}
