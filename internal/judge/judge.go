// Package judge implements the judge disposition model: a fixed personality,
// a mutable mood, a patience meter drained by etiquette violations and
// recovered by disciplined advocacy, and the heuristic objection-ruling
// table. Patience and warnings gate the side-channel subsystems and can
// force a phase to end early.
package judge

import (
	"strings"

	"courtroom/internal/types"
)

// Personality is the judge's fixed trait set, chosen per session.
type Personality struct {
	Name            string
	PrefersBrevity  bool
	ValuesPrecedent bool
	TechnicalFocus  int // 0-100, appetite for procedural technicality
	Strictness      int // percent multiplier on patience costs, 100 = nominal
}

// Presets returns the built-in judge personalities.
func Presets() map[string]Personality {
	return map[string]Personality{
		"strict_proceduralist": {
			Name: "strict_proceduralist", PrefersBrevity: true,
			ValuesPrecedent: true, TechnicalFocus: 85, Strictness: 125,
		},
		"pragmatist": {
			Name: "pragmatist", PrefersBrevity: true,
			ValuesPrecedent: false, TechnicalFocus: 40, Strictness: 100,
		},
		"scholar": {
			Name: "scholar", PrefersBrevity: false,
			ValuesPrecedent: true, TechnicalFocus: 70, Strictness: 90,
		},
	}
}

// PresetOrDefault resolves a preset name, defaulting to the pragmatist.
func PresetOrDefault(name string) Personality {
	if p, ok := Presets()[name]; ok {
		return p
	}
	return Presets()["pragmatist"]
}

// Mood is the judge's visible disposition.
type Mood string

const (
	MoodNeutral    Mood = "neutral"
	MoodPleased    Mood = "pleased"
	MoodImpatient  Mood = "impatient"
	MoodAnnoyed    Mood = "annoyed"
	MoodInterested Mood = "interested"
	MoodSkeptical  Mood = "skeptical"
)

// Severity classifies a violation.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySerious  Severity = "serious"
)

func severityCost(s Severity) int {
	switch s {
	case SeverityMinor:
		return 3
	case SeverityModerate:
		return 7
	case SeveritySerious:
		return 15
	}
	return 0
}

// Violation is one etiquette or procedure breach found in an action.
type Violation struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Assessment is the judge's full response to one submitted action.
type Assessment struct {
	Violations   []Violation
	Warning      string // non-empty when a formal warning was issued
	ForceAdvance bool   // patience exhausted or third warning: curtail the phase
	PatienceCost int
	Recovered    int // patience regained by disciplined advocacy
}

// State is the judge's mutable disposition for one session.
type State struct {
	Personality Personality

	mood     Mood
	patience int

	QuestionsAsked int
	Interruptions  int
	Warnings       int

	recentTexts []string // sliding window for repetition detection
	goodStreak  int
}

// New creates judge state at full patience.
func New(p Personality) *State {
	return &State{Personality: p, mood: MoodNeutral, patience: 100}
}

// Patience returns the current patience level, 0-100.
func (s *State) Patience() int { return s.patience }

// Mood returns the current visible mood.
func (s *State) Mood() Mood { return s.mood }

func (s *State) drain(amount int) {
	amount = amount * s.Personality.Strictness / 100
	s.patience -= amount
	if s.patience < 0 {
		s.patience = 0
	}
}

// Recover credits patience back for disciplined courtroom behavior. Recovery
// is deliberately slow: the judge rewards discipline, not charm.
func (s *State) Recover(amount int) {
	s.patience += amount
	if s.patience > 100 {
		s.patience = 100
	}
}

var disrespectMarkers = []string{
	"ridiculous", "nonsense", "absurd", "stupid", "waste of time",
	"whatever", "this is a joke", "kangaroo court",
}

const (
	brevityWordLimit = 80
	conciseWordLimit = 25
	repetitionWindow = 6
)

// spokenAction reports whether the action carries courtroom speech that
// etiquette rules apply to.
func spokenAction(t types.ActionType) bool {
	switch t {
	case types.ActionMakeArgument, types.ActionAskQuestion, types.ActionObject,
		types.ActionPresentEvidence, types.ActionOfferEvidence:
		return true
	}
	return false
}

// EvaluateAction checks one submitted action for etiquette and
// phase-appropriateness, drains patience per violation, issues warnings and
// decides whether the phase must be curtailed. questionStyle is the lexical
// style of an ask_question action ("leading", "open", "aggressive", ...);
// witnessHostile marks a hostile witness, whom leading is permitted against.
func (s *State) EvaluateAction(phase types.Phase, subPhase types.SubPhase, act types.Action, questionStyle string, witnessHostile bool) Assessment {
	var a Assessment
	text := strings.TrimSpace(act.Text)
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))

	if spokenAction(act.Type) && text != "" {
		if act.Type == types.ActionMakeArgument && !strings.Contains(lower, "your honor") && !strings.Contains(lower, "my lord") {
			a.Violations = append(a.Violations, Violation{
				Kind: "unaddressed_remark", Severity: SeverityMinor,
				Detail: "arguments must be addressed to the bench",
			})
		}
		for _, m := range disrespectMarkers {
			if strings.Contains(lower, m) {
				a.Violations = append(a.Violations, Violation{
					Kind: "disrespect", Severity: SeveritySerious,
					Detail: "disrespectful language toward the court",
				})
				break
			}
		}
		if s.isRepetition(lower) {
			a.Violations = append(a.Violations, Violation{
				Kind: "excessive_repetition", Severity: SeverityModerate,
				Detail: "the court has heard this point already",
			})
		}
		if s.Personality.PrefersBrevity && words > brevityWordLimit {
			a.Violations = append(a.Violations, Violation{
				Kind: "verbosity", Severity: SeverityMinor,
				Detail: "the court expects brevity",
			})
		}
		s.remember(lower)
	}

	// Phase-appropriateness: leading your own witness in chief examination.
	if act.Type == types.ActionAskQuestion && subPhase == types.SubPhaseChief &&
		questionStyle == "leading" && !witnessHostile {
		a.Violations = append(a.Violations, Violation{
			Kind: "leading_in_chief", Severity: SeverityModerate,
			Detail: "leading questions are improper in chief examination",
		})
	}
	if act.Type == types.ActionAskQuestion && questionStyle == "aggressive" && subPhase != types.SubPhaseCross {
		a.Violations = append(a.Violations, Violation{
			Kind: "badgering", Severity: SeverityModerate,
			Detail: "counsel will not badger their own witness",
		})
	}

	warnedNow := false
	for _, v := range a.Violations {
		cost := severityCost(v.Severity)
		a.PatienceCost += cost * s.Personality.Strictness / 100
		s.drain(cost)
		if v.Severity == SeveritySerious || (v.Severity == SeverityModerate && s.patience < 50) {
			s.Warnings++
			warnedNow = true
			a.Warning = "the court warns counsel: " + v.Detail
		}
	}

	// Discipline earns a little patience back: a concise, well-formed
	// submission, or a correct citation before a precedent-minded judge.
	if len(a.Violations) == 0 && spokenAction(act.Type) && text != "" {
		recovered := 0
		if words > 0 && words <= conciseWordLimit {
			recovered += 2
		}
		if act.Citation != "" && s.Personality.ValuesPrecedent {
			recovered += 3
		}
		if recovered > 0 {
			s.Recover(recovered)
			a.Recovered = recovered
			s.goodStreak++
		}
	} else if len(a.Violations) > 0 {
		s.goodStreak = 0
	}

	// Curtailment is a reaction to this submission, not a standing state:
	// only the warning that reaches the third strike, or a violation that
	// empties the patience pool, cuts the phase short. A clean action after
	// earlier warnings keeps the recovery path open.
	if (warnedNow && s.Warnings >= 3) || (len(a.Violations) > 0 && s.patience == 0) {
		a.ForceAdvance = true
	}
	s.deriveMood()
	return a
}

func (s *State) remember(text string) {
	s.recentTexts = append(s.recentTexts, text)
	if len(s.recentTexts) > repetitionWindow {
		s.recentTexts = s.recentTexts[1:]
	}
}

// isRepetition flags near-identical resubmission of a recent statement.
func (s *State) isRepetition(text string) bool {
	words, _ := wordSet(text)
	if len(words) < 3 {
		return false
	}
	for _, prev := range s.recentTexts {
		prevWords, _ := wordSet(prev)
		if overlap(words, prevWords) >= 80 {
			return true
		}
	}
	return false
}

func wordSet(text string) (map[string]struct{}, int) {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[strings.Trim(w, ".,;:!?")] = struct{}{}
	}
	return set, len(set)
}

// overlap returns the percentage of a's words present in b.
func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 {
		return 0
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n * 100 / len(a)
}

func (s *State) deriveMood() {
	switch {
	case s.patience <= 20:
		s.mood = MoodAnnoyed
	case s.patience <= 45:
		s.mood = MoodImpatient
	case s.goodStreak >= 3:
		s.mood = MoodPleased
	case s.goodStreak >= 1 && s.Personality.TechnicalFocus >= 70:
		s.mood = MoodInterested
	case s.Warnings > 0:
		s.mood = MoodSkeptical
	default:
		s.mood = MoodNeutral
	}
}

// NoteInterruption counts an interruption of the proceeding (overruled
// objections, research recesses) and drains the patience it cost.
func (s *State) NoteInterruption(cost int) {
	s.Interruptions++
	s.drain(cost)
	s.deriveMood()
}

// View is the judge display projection. Traits are public; patience is
// reported as a coarse band, not a number.
type View struct {
	Personality     string `json:"personality"`
	Mood            Mood   `json:"mood"`
	PatienceBand    string `json:"patience_band"`
	Warnings        int    `json:"warnings"`
	Interruptions   int    `json:"interruptions"`
	PrefersBrevity  bool   `json:"prefers_brevity"`
	ValuesPrecedent bool   `json:"values_precedent"`
}

// DisplayView builds the projection for the presentation layer.
func (s *State) DisplayView() View {
	band := "composed"
	switch {
	case s.patience <= 20:
		band = "exasperated"
	case s.patience <= 45:
		band = "strained"
	case s.patience <= 70:
		band = "watchful"
	}
	return View{
		Personality:     s.Personality.Name,
		Mood:            s.mood,
		PatienceBand:    band,
		Warnings:        s.Warnings,
		Interruptions:   s.Interruptions,
		PrefersBrevity:  s.Personality.PrefersBrevity,
		ValuesPrecedent: s.Personality.ValuesPrecedent,
	}
}
