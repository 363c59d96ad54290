// Package sidebar implements the sidebar side channel: private procedural
// requests to the judge, evaluated against judge patience and
// request-type-specific plausibility rules, plus the nested settlement
// negotiation a sidebar may open. A granted exclusion or adjournment comes
// back as a directive the orchestrator applies; subsystems never reach into
// each other directly.
package sidebar

import (
	"fmt"
	"strings"

	"courtroom/internal/types"
)

// Request is one sidebar application.
type Request struct {
	Type    types.SidebarType `json:"type"`
	Reason  string            `json:"reason"`
	Exhibit string            `json:"exhibit,omitempty"`
	Witness string            `json:"witness,omitempty"`
}

// DirectiveKind names the session-level side effect of a granted request.
type DirectiveKind string

const (
	DirectiveNone            DirectiveKind = ""
	DirectiveExcludeEvidence DirectiveKind = "exclude_evidence"
	DirectiveAdjourn         DirectiveKind = "adjourn"
	DirectiveOpenSettlement  DirectiveKind = "open_settlement"
)

// Outcome is the judge's answer to a sidebar request.
type Outcome struct {
	Granted   bool          `json:"granted"`
	Reason    string        `json:"reason"`
	TurnCost  int           `json:"turn_cost"` // phase-clock turns the sidebar consumes; an adjournment consumes none
	Directive DirectiveKind `json:"directive,omitempty"`
	Exhibit   string        `json:"exhibit,omitempty"`
}

// Record is one ledger line of sidebar history.
type Record struct {
	Request Request `json:"request"`
	Outcome Outcome `json:"outcome"`
}

// State is the per-session sidebar ledger.
type State struct {
	budgetLeft int
	history    []Record
	settlement Negotiation
}

// NewState builds the ledger with a full request budget.
func NewState(budget int) *State {
	return &State{budgetLeft: budget}
}

// RequestsLeft reports the remaining budget.
func (s *State) RequestsLeft() int { return s.budgetLeft }

// History returns the request ledger.
func (s *State) History() []Record { return s.history }

// Settlement returns the nested negotiation state.
func (s *State) Settlement() *Negotiation { return &s.settlement }

func reasonMentions(reason string, any ...string) bool {
	r := strings.ToLower(reason)
	for _, m := range any {
		if strings.Contains(r, m) {
			return true
		}
	}
	return false
}

// Evaluate resolves a sidebar request against judge patience and the
// request type's plausibility rules. Every evaluated request, granted or
// not, costs a turn. An exhausted budget fails with ErrResourceExhausted
// before anything is recorded.
func (s *State) Evaluate(req Request, judgePatience int) (Outcome, error) {
	if s.budgetLeft <= 0 {
		return Outcome{}, fmt.Errorf("%w: sidebar budget spent", types.ErrResourceExhausted)
	}
	s.budgetLeft--

	out := Outcome{TurnCost: 1}
	switch req.Type {
	case types.SidebarExcludeEvidence:
		switch {
		case req.Exhibit == "":
			out.Reason = "counsel must identify the exhibit to be excluded"
		case judgePatience < 40:
			out.Reason = "the court has no appetite for further interruption"
		case reasonMentions(req.Reason, "prejudic", "authentic", "hearsay", "improper", "tamper"):
			out.Granted = true
			out.Directive = DirectiveExcludeEvidence
			out.Exhibit = req.Exhibit
			out.Reason = "the exhibit is struck from the record"
		default:
			out.Reason = "no recognized ground for exclusion was advanced"
		}
	case types.SidebarAdjournment:
		switch {
		case judgePatience < 60:
			out.Reason = "the trial will proceed; the court's calendar is not infinite"
		case reasonMentions(req.Reason, "witness unavailable", "new evidence", "health", "medical"):
			out.Granted = true
			out.Directive = DirectiveAdjourn
			out.Reason = "a short adjournment is granted"
			out.TurnCost = 0 // the recess is not charged to the stage
		default:
			out.Reason = "no sufficient cause for adjournment"
		}
	case types.SidebarClarification:
		if judgePatience >= 25 {
			out.Granted = true
			out.Reason = "the court will clarify its earlier direction"
		} else {
			out.Reason = "counsel should have been listening"
		}
	case types.SidebarSettlement:
		if judgePatience >= 30 {
			out.Granted = true
			out.Directive = DirectiveOpenSettlement
			out.Reason = "the parties may confer on settlement"
			s.settlement.reopen()
		} else {
			out.Reason = "the time for talking has passed; proceed"
		}
	default:
		out.Reason = "the request is not one the court entertains"
	}

	s.history = append(s.history, Record{Request: req, Outcome: out})
	return out, nil
}

// View is the sidebar display projection.
type View struct {
	RequestsLeft int            `json:"requests_left"`
	History      []Record       `json:"history"`
	Settlement   SettlementView `json:"settlement"`
}

// DisplayView builds the projection.
func (s *State) DisplayView() View {
	return View{
		RequestsLeft: s.budgetLeft,
		History:      s.history,
		Settlement:   s.settlement.view(),
	}
}
