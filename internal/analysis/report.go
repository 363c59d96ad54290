package analysis

import (
	"fmt"
	"sort"

	"courtroom/internal/education"
	"courtroom/internal/types"
)

// Effectiveness classifies one action's net score impact.
type Effectiveness string

const (
	Effective   Effectiveness = "effective"
	Neutral     Effectiveness = "neutral"
	Ineffective Effectiveness = "ineffective"
)

const (
	effectiveThreshold    = 2.0
	turningPointThreshold = 8.0
)

// ActionReview is one replayed action in the report.
type ActionReview struct {
	Entry         LogEntry      `json:"entry"`
	Net           float64       `json:"net"`
	Effectiveness Effectiveness `json:"effectiveness"`
}

// TurningPoint is an event whose single impact crossed the significance
// threshold.
type TurningPoint struct {
	Entry  LogEntry `json:"entry"`
	Impact float64  `json:"impact"`
}

// MissedOpportunity marks a phase where no high-value action type was used
// although it was available.
type MissedOpportunity struct {
	Phase  types.Phase      `json:"phase"`
	Action types.ActionType `json:"action"`
	Advice string           `json:"advice"`
}

// Recommendation pairs a weak category with the matching principle.
type Recommendation struct {
	Category  types.ScoreCategory `json:"category"`
	SubScore  float64             `json:"sub_score"`
	Principle education.Principle `json:"principle"`
}

// SettlementRecord summarizes a settled (rather than adjudicated) outcome.
type SettlementRecord struct {
	Amount float64    `json:"amount"`
	By     types.Side `json:"by"`
	Rounds int        `json:"rounds"`
}

// Report is the full post-game analysis.
type Report struct {
	Score           *Score              `json:"score"`
	Grade           string              `json:"grade"`
	OptimalScore    float64             `json:"optimal_score"`
	Reviews         []ActionReview      `json:"reviews"`
	TurningPoints   []TurningPoint      `json:"turning_points"`
	Missed          []MissedOpportunity `json:"missed_opportunities"`
	Recommendations []Recommendation    `json:"recommendations"`
	Settlement      *SettlementRecord   `json:"settlement,omitempty"`
}

// highValueActions maps phases to the action type that wins them.
var highValueActions = map[types.Phase]types.ActionType{
	types.PhaseOpening:            types.ActionMakeArgument,
	types.PhasePetitionerEvidence: types.ActionOfferEvidence,
	types.PhasePetitionerWitness:  types.ActionAskQuestion,
	types.PhaseCrossExamination:   types.ActionAskQuestion,
	types.PhaseRespondentEvidence: types.ActionOfferEvidence,
	types.PhaseRespondentWitness:  types.ActionAskQuestion,
	types.PhaseRebuttal:           types.ActionMakeArgument,
	types.PhaseFinalArguments:     types.ActionMakeArgument,
}

var opportunityAdvice = map[types.ActionType]string{
	types.ActionMakeArgument:  "argue the phase; silence concedes it",
	types.ActionOfferEvidence: "move your exhibits into evidence while the phase is open",
	types.ActionAskQuestion:   "an unexamined witness persuades nobody",
}

// BuildReport replays the action log into the final analysis. The log, not
// the live score, is the source of truth: the replayed score is used for
// grading, which keeps re-derivation idempotent.
func BuildReport(log *Log, optimal float64, db *education.Catalogue, settlement *SettlementRecord) *Report {
	score := log.Replay()
	r := &Report{Score: score, OptimalScore: optimal, Settlement: settlement}

	phasesSeen := map[types.Phase]bool{}
	phaseUsed := map[types.Phase]map[types.ActionType]bool{}
	for _, e := range log.Entries() {
		net := e.Net()
		eff := Neutral
		switch {
		case net >= effectiveThreshold:
			eff = Effective
		case net <= -effectiveThreshold:
			eff = Ineffective
		}
		r.Reviews = append(r.Reviews, ActionReview{Entry: e, Net: net, Effectiveness: eff})
		if net >= turningPointThreshold || net <= -turningPointThreshold {
			r.TurningPoints = append(r.TurningPoints, TurningPoint{Entry: e, Impact: net})
		}
		phasesSeen[e.Phase] = true
		if e.Player {
			if phaseUsed[e.Phase] == nil {
				phaseUsed[e.Phase] = map[types.ActionType]bool{}
			}
			phaseUsed[e.Phase][e.Action] = true
		}
	}

	for phase, want := range highValueActions {
		if phasesSeen[phase] && !phaseUsed[phase][want] {
			r.Missed = append(r.Missed, MissedOpportunity{
				Phase:  phase,
				Action: want,
				Advice: opportunityAdvice[want],
			})
		}
	}
	sort.Slice(r.Missed, func(i, j int) bool { return r.Missed[i].Phase < r.Missed[j].Phase })

	r.Grade = grade(score.Total, optimal)
	r.Recommendations = recommendations(score, db)
	return r
}

// grade converts total points against the case's optimal baseline.
func grade(total, optimal float64) string {
	if optimal <= 0 {
		return "C"
	}
	ratio := total / optimal
	switch {
	case ratio >= 0.85:
		return "A"
	case ratio >= 0.70:
		return "B"
	case ratio >= 0.55:
		return "C"
	case ratio >= 0.40:
		return "D"
	}
	return "F"
}

// recommendations ranks the below-median categories, weakest first, and
// attaches the matching principle from the education catalogue.
func recommendations(score *Score, db *education.Catalogue) []Recommendation {
	cats := types.ScoreCategories()
	values := make([]float64, 0, len(cats))
	for _, c := range cats {
		values = append(values, score.Categories[c])
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median := sorted[len(sorted)/2]

	type weak struct {
		cat types.ScoreCategory
		val float64
	}
	var weaks []weak
	for _, c := range cats {
		if score.Categories[c] < median {
			weaks = append(weaks, weak{c, score.Categories[c]})
		}
	}
	sort.Slice(weaks, func(i, j int) bool { return weaks[i].val < weaks[j].val })

	var out []Recommendation
	for _, w := range weaks {
		ps := db.ForCategory(w.cat)
		if len(ps) == 0 {
			continue
		}
		out = append(out, Recommendation{Category: w.cat, SubScore: w.val, Principle: ps[0]})
	}
	return out
}

// OptimalBaseline pre-computes the best plausibly achievable score for a
// case from its shape: points for every exhibit admitted cleanly, every
// witness examined well, and disciplined argument in the speech phases.
func OptimalBaseline(witnesses, exhibits int) float64 {
	return 40 + 12*float64(exhibits) + 18*float64(witnesses)
}

// Describe renders a one-line summary for transcripts and logs.
func (r *Report) Describe() string {
	if r.Settlement != nil {
		return fmt.Sprintf("settled for %.0f after %d rounds; grade %s", r.Settlement.Amount, r.Settlement.Rounds, r.Grade)
	}
	return fmt.Sprintf("total %.1f of optimal %.1f; grade %s", r.Score.Total, r.OptimalScore, r.Grade)
}
