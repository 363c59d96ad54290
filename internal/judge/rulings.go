package judge

import (
	"strings"

	"courtroom/internal/types"
)

// Ruling is the judge's decision on an objection.
type Ruling struct {
	Sustained bool   `json:"sustained"`
	Rationale string `json:"rationale"`
}

// ObjectionContext carries what the judge weighs when ruling: the current
// phase, the nature of the preceding question or evidence, and whether the
// witness under examination is hostile.
type ObjectionContext struct {
	Phase           types.Phase
	SubPhase        types.SubPhase
	QuestionStyle   string // lexical style of the objected-to question
	QuestionText    string
	WitnessHostile  bool
	AgainstEvidence bool // objection targets an offered exhibit
	FoundationLaid  bool // exhibit was marked for identification first
}

var hearsayMarkers = []string{"told me", "heard that", "said that", "someone said", "i was told", "word was"}

var speculationMarkers = []string{"do you think", "would have", "could have", "what if", "imagine", "suppose", "might have"}

var irrelevanceMarkers = []string{"personal life", "unrelated", "years ago", "nothing to do with"}

// RuleOnObjection evaluates a stated ground against the current phase and
// the objected-to material using a fixed heuristic table. Ties default to
// Overruled.
func (s *State) RuleOnObjection(ground types.ObjectionGround, ctx ObjectionContext) Ruling {
	q := strings.ToLower(ctx.QuestionText)

	switch ground {
	case types.GroundLeading:
		if ctx.SubPhase == types.SubPhaseChief && !ctx.WitnessHostile && ctx.QuestionStyle == "leading" {
			return Ruling{Sustained: true, Rationale: "counsel may not lead their own witness in chief examination"}
		}
		if ctx.SubPhase == types.SubPhaseCross {
			return Ruling{Sustained: false, Rationale: "leading questions are permitted on cross-examination"}
		}
		return Ruling{Sustained: false, Rationale: "the question was not improperly leading"}

	case types.GroundHearsay:
		for _, m := range hearsayMarkers {
			if strings.Contains(q, m) {
				return Ruling{Sustained: true, Rationale: "the question invites an out-of-court statement for its truth"}
			}
		}
		return Ruling{Sustained: false, Rationale: "no hearsay is apparent on the face of the question"}

	case types.GroundSpeculation:
		for _, m := range speculationMarkers {
			if strings.Contains(q, m) {
				return Ruling{Sustained: true, Rationale: "the witness may only testify to personal knowledge"}
			}
		}
		return Ruling{Sustained: false, Rationale: "the question seeks factual recollection"}

	case types.GroundArgumentative:
		if ctx.QuestionStyle == "aggressive" {
			return Ruling{Sustained: true, Rationale: "counsel is arguing with the witness, not examining"}
		}
		return Ruling{Sustained: false, Rationale: "vigorous questioning is not of itself argumentative"}

	case types.GroundCompound:
		if strings.Count(ctx.QuestionText, "?") > 1 || strings.Contains(q, " and also ") {
			return Ruling{Sustained: true, Rationale: "one question at a time, counsel"}
		}
		return Ruling{Sustained: false, Rationale: "the question is single enough to answer"}

	case types.GroundAskedAndAnswered:
		if s.isRepetition(q) {
			return Ruling{Sustained: true, Rationale: "the witness has already answered this"}
		}
		return Ruling{Sustained: false, Rationale: "the ground is not made out"}

	case types.GroundRelevance:
		for _, m := range irrelevanceMarkers {
			if strings.Contains(q, m) {
				return Ruling{Sustained: true, Rationale: "the line of questioning strays from the issues"}
			}
		}
		// A technically minded judge gives the examiner latitude.
		if s.Personality.TechnicalFocus >= 70 {
			return Ruling{Sustained: false, Rationale: "relevance is arguable; the court will allow it"}
		}
		return Ruling{Sustained: false, Rationale: "the court sees the connection; overruled"}

	case types.GroundFoundation:
		if ctx.AgainstEvidence && !ctx.FoundationLaid {
			return Ruling{Sustained: true, Rationale: "the exhibit was not marked for identification"}
		}
		return Ruling{Sustained: false, Rationale: "an adequate foundation has been laid"}
	}

	return Ruling{Sustained: false, Rationale: "the ground is not recognized; overruled"}
}
