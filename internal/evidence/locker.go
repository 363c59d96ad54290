// Package evidence implements the evidence locker: every exhibit's admission
// lifecycle from marking through offer, objection, ruling, admission or
// exclusion. Transitions are monotonic along the lifecycle graph; an illegal
// transition fails with ErrInvalidEvidenceState and mutates nothing.
package evidence

import (
	"fmt"

	"courtroom/internal/types"
)

// Status is an exhibit's position in the admission lifecycle.
type Status string

const (
	StatusNotIntroduced Status = "not_introduced"
	StatusMarkedForID   Status = "marked_for_identification"
	StatusOffered       Status = "offered"
	StatusObjected      Status = "objected"
	StatusAdmitted      Status = "admitted"
	StatusExcluded      Status = "excluded"
	StatusWithdrawn     Status = "withdrawn"
)

// Item is one exhibit held by the locker.
type Item struct {
	ID                     string     // case-record evidence id
	Exhibit                string     // assigned exhibit number, e.g. "P-1"
	Side                   types.Side // owning side
	Category               string
	Title                  string
	Description            string
	Status                 Status
	AuthenticityChallenged bool
}

// legalTransitions is the lifecycle graph. Absence means the edge is illegal.
var legalTransitions = map[Status][]Status{
	StatusNotIntroduced: {StatusMarkedForID, StatusOffered, StatusWithdrawn},
	StatusMarkedForID:   {StatusOffered, StatusWithdrawn},
	StatusOffered:       {StatusObjected, StatusAdmitted, StatusWithdrawn},
	StatusObjected:      {StatusAdmitted, StatusExcluded, StatusWithdrawn},
	StatusAdmitted:      {StatusExcluded}, // sidebar exclusion only
	StatusExcluded:      {},
	StatusWithdrawn:     {},
}

func canTransition(from, to Status) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Locker owns all exhibits of one session.
type Locker struct {
	items map[string]*Item
	order []string
}

// Source describes an exhibit to stock the locker with.
type Source struct {
	ID          string
	Side        types.Side
	Category    string
	Title       string
	Description string
}

// NewLocker stocks a locker from case-record evidence, assigning exhibit
// numbers P-1.. and R-1.. in record order.
func NewLocker(sources []Source) *Locker {
	l := &Locker{items: make(map[string]*Item)}
	counts := map[types.Side]int{}
	for _, s := range sources {
		counts[s.Side]++
		prefix := "P"
		if s.Side == types.SideRespondent {
			prefix = "R"
		}
		l.items[s.ID] = &Item{
			ID:          s.ID,
			Exhibit:     fmt.Sprintf("%s-%d", prefix, counts[s.Side]),
			Side:        s.Side,
			Category:    s.Category,
			Title:       s.Title,
			Description: s.Description,
			Status:      StatusNotIntroduced,
		}
		l.order = append(l.order, s.ID)
	}
	return l
}

func (l *Locker) get(id string) (*Item, error) {
	it, ok := l.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: no such exhibit %q", types.ErrInvalidEvidenceState, id)
	}
	return it, nil
}

func (l *Locker) transition(id string, to Status) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if !canTransition(it.Status, to) {
		return nil, fmt.Errorf("%w: %s cannot move %s -> %s",
			types.ErrInvalidEvidenceState, it.Exhibit, it.Status, to)
	}
	it.Status = to
	return it, nil
}

// Mark marks an exhibit for identification.
func (l *Locker) Mark(id string) (*Item, error) {
	return l.transition(id, StatusMarkedForID)
}

// Offer moves an exhibit into evidence, pending objection or admission.
func (l *Locker) Offer(id string) (*Item, error) {
	return l.transition(id, StatusOffered)
}

// Object records the opponent's objection to an offered exhibit.
func (l *Locker) Object(id string) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusOffered {
		return nil, fmt.Errorf("%w: cannot object to %s in state %s",
			types.ErrInvalidEvidenceState, it.Exhibit, it.Status)
	}
	it.Status = StatusObjected
	return it, nil
}

// Rule resolves an objection: admitted on a sustained offer, excluded on a
// sustained objection.
func (l *Locker) Rule(id string, admit bool) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusObjected {
		return nil, fmt.Errorf("%w: no pending objection on %s",
			types.ErrInvalidEvidenceState, it.Exhibit)
	}
	if admit {
		it.Status = StatusAdmitted
	} else {
		it.Status = StatusExcluded
	}
	return it, nil
}

// Admit admits an unopposed offered exhibit directly.
func (l *Locker) Admit(id string) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusOffered {
		return nil, fmt.Errorf("%w: %s is not offered", types.ErrInvalidEvidenceState, it.Exhibit)
	}
	it.Status = StatusAdmitted
	return it, nil
}

// Withdraw pulls back an exhibit that has not yet been admitted. Only the
// owning side may withdraw.
func (l *Locker) Withdraw(id string, by types.Side) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if it.Side != by {
		return nil, fmt.Errorf("%w: %s belongs to the %s", types.ErrInvalidEvidenceState, it.Exhibit, it.Side)
	}
	return l.transition(id, StatusWithdrawn)
}

// Challenge flags an admitted exhibit's authenticity. Status is unchanged;
// challenging anything not admitted is illegal.
func (l *Locker) Challenge(id string) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusAdmitted {
		return nil, fmt.Errorf("%w: only admitted evidence can be challenged, %s is %s",
			types.ErrInvalidEvidenceState, it.Exhibit, it.Status)
	}
	it.AuthenticityChallenged = true
	return it, nil
}

// Exclude strikes an admitted exhibit, the effect of a granted sidebar.
func (l *Locker) Exclude(id string) (*Item, error) {
	it, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if it.Status != StatusAdmitted {
		return nil, fmt.Errorf("%w: only admitted evidence can be excluded via sidebar, %s is %s",
			types.ErrInvalidEvidenceState, it.Exhibit, it.Status)
	}
	it.Status = StatusExcluded
	return it, nil
}

// Item returns a copy of one exhibit.
func (l *Locker) Item(id string) (Item, bool) {
	it, ok := l.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Items returns copies of all exhibits in stocking order.
func (l *Locker) Items() []Item {
	out := make([]Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.items[id])
	}
	return out
}

// ForSide returns the exhibits owned by a side.
func (l *Locker) ForSide(s types.Side) []Item {
	var out []Item
	for _, id := range l.order {
		if l.items[id].Side == s {
			out = append(out, *l.items[id])
		}
	}
	return out
}

// WithStatus returns the exhibits currently in a given status.
func (l *Locker) WithStatus(st Status) []Item {
	var out []Item
	for _, id := range l.order {
		if l.items[id].Status == st {
			out = append(out, *l.items[id])
		}
	}
	return out
}

// Presentable answers the player's "what can I present": a side's exhibits
// still before offer.
func (l *Locker) Presentable(s types.Side) []Item {
	var out []Item
	for _, id := range l.order {
		it := l.items[id]
		if it.Side == s && (it.Status == StatusNotIntroduced || it.Status == StatusMarkedForID) {
			out = append(out, *it)
		}
	}
	return out
}

// Objectable answers the opponent's "what can I object to": the other side's
// exhibits currently offered.
func (l *Locker) Objectable(by types.Side) []Item {
	var out []Item
	for _, id := range l.order {
		it := l.items[id]
		if it.Side == by.Opponent() && it.Status == StatusOffered {
			out = append(out, *it)
		}
	}
	return out
}

// AdmittedFor returns a side's admitted exhibits.
func (l *Locker) AdmittedFor(s types.Side) []Item {
	var out []Item
	for _, id := range l.order {
		it := l.items[id]
		if it.Side == s && it.Status == StatusAdmitted {
			out = append(out, *it)
		}
	}
	return out
}
