package sidebar

import (
	"errors"

	"courtroom/internal/types"
)

// Negotiation is the nested settlement channel a granted settlement sidebar
// opens. An accepted offer short-circuits the trial straight to judgment
// with a settlement record instead of a contested verdict.
type Negotiation struct {
	open     bool
	offers   []Offer
	accepted *Offer
	closed   bool
}

// Offer is one settlement proposal.
type Offer struct {
	By     types.Side `json:"by"`
	Amount float64    `json:"amount"`
	Terms  string     `json:"terms,omitempty"`
}

var (
	errNotOpen = errors.New("no settlement negotiation is open")
	errNoOffer = errors.New("no offer is on the table")
)

// Open reports whether negotiation is live.
func (n *Negotiation) Open() bool { return n.open && !n.closed }

// reopen starts a fresh negotiation round. A rejection only closes the
// round it ended; a later granted settlement sidebar comes back to the
// table. An accepted settlement is final and stays closed.
func (n *Negotiation) reopen() {
	if n.accepted != nil {
		return
	}
	n.open = true
	n.closed = false
}

// Propose puts an offer on the table. Counter-offers go through the same
// path; the latest offer is the live one.
func (n *Negotiation) Propose(o Offer) error {
	if !n.Open() {
		return errNotOpen
	}
	n.offers = append(n.offers, o)
	return nil
}

// Current returns the live offer.
func (n *Negotiation) Current() (Offer, bool) {
	if len(n.offers) == 0 {
		return Offer{}, false
	}
	return n.offers[len(n.offers)-1], true
}

// Accept concludes negotiation on the live offer.
func (n *Negotiation) Accept() (Offer, error) {
	if !n.Open() {
		return Offer{}, errNotOpen
	}
	cur, ok := n.Current()
	if !ok {
		return Offer{}, errNoOffer
	}
	n.accepted = &cur
	n.closed = true
	return cur, nil
}

// Reject ends negotiation without agreement; the trial resumes.
func (n *Negotiation) Reject() error {
	if !n.Open() {
		return errNotOpen
	}
	n.closed = true
	return nil
}

// Accepted returns the accepted offer, if any.
func (n *Negotiation) Accepted() (Offer, bool) {
	if n.accepted == nil {
		return Offer{}, false
	}
	return *n.accepted, true
}

// Rounds reports how many offers were exchanged.
func (n *Negotiation) Rounds() int { return len(n.offers) }

// OfferDecision is the AI side's deterministic response to a live offer.
type OfferDecision string

const (
	DecisionAccept  OfferDecision = "accept"
	DecisionCounter OfferDecision = "counter"
	DecisionReject  OfferDecision = "reject"
)

// EvaluateOffer decides how the receiving side answers an offer, measured
// against the claimed compensation. The petitioner accepts generous offers,
// counters lowball ones for a while, and walks away from insults; the
// respondent mirrors the logic from the paying side.
func EvaluateOffer(o Offer, claim float64, recipient types.Side, rounds int) OfferDecision {
	if claim <= 0 {
		// Non-monetary dispute: settle only on explicit terms after a
		// couple of rounds of talking.
		if rounds >= 2 {
			return DecisionAccept
		}
		return DecisionCounter
	}
	ratio := o.Amount / claim
	if recipient == types.SidePetitioner {
		switch {
		case ratio >= 0.6:
			return DecisionAccept
		case ratio >= 0.25 && rounds < 3:
			return DecisionCounter
		case ratio >= 0.25:
			return DecisionReject
		default:
			return DecisionReject
		}
	}
	// Respondent receiving the petitioner's demand.
	switch {
	case ratio <= 0.7:
		return DecisionAccept
	case rounds < 3:
		return DecisionCounter
	default:
		return DecisionReject
	}
}

// CounterAmount computes the deterministic counter-offer the AI side makes:
// it moves a third of the way toward the midpoint of offer and claim.
func CounterAmount(o Offer, claim float64, by types.Side) float64 {
	mid := (o.Amount + claim) / 2
	if by == types.SidePetitioner {
		// Petitioner counters upward from the offer.
		return o.Amount + (mid-o.Amount)*2/3
	}
	return o.Amount - (o.Amount-mid)*2/3
}

// SettlementView is the negotiation display projection.
type SettlementView struct {
	Open     bool    `json:"open"`
	Offers   []Offer `json:"offers"`
	Settled  bool    `json:"settled"`
	Accepted *Offer  `json:"accepted,omitempty"`
}

func (n *Negotiation) view() SettlementView {
	v := SettlementView{Open: n.Open(), Offers: n.offers, Settled: n.accepted != nil}
	if n.accepted != nil {
		a := *n.accepted
		v.Accepted = &a
	}
	return v
}
