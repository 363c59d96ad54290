package gen

import (
	"context"
	"fmt"

	"courtroom/internal/types"
)

// Canned is a deterministic generator for offline play and tests: each role
// rotates through a small set of serviceable courtroom lines. Deterministic
// output keeps full-playthrough tests reproducible.
type Canned struct {
	counters map[types.Role]int
}

// NewCanned builds the offline generator.
func NewCanned() *Canned {
	return &Canned{counters: make(map[types.Role]int)}
}

var cannedLines = map[types.Role][]string{
	types.RoleJudge: {
		"Proceed, counsel.",
		"The court will hear the next submission.",
		"Noted. Move along.",
	},
	types.RolePetitionerCounsel: {
		"Your honor, the evidence will show the respondent failed to perform.",
		"We press the point: the obligation was clear and it was breached.",
		"Nothing further on this point, your honor.",
	},
	types.RoleRespondentCounsel: {
		"Your honor, the petitioner's account does not survive scrutiny.",
		"The respondent acted reasonably at every step.",
		"We object to the characterization, your honor.",
	},
	types.RoleWitness: {
		"Yes, that is what I remember.",
		"I saw it with my own eyes, as I said.",
		"I am not certain, but that is my recollection.",
	},
	types.RoleClerk: {
		"All rise.",
		"The exhibit is entered in the record.",
	},
}

// Generate returns the role's next canned line.
func (c *Canned) Generate(_ context.Context, req types.GenRequest) (string, error) {
	lines, ok := cannedLines[req.Role]
	if !ok {
		return fmt.Sprintf("(%s continues)", req.Role), nil
	}
	line := lines[c.counters[req.Role]%len(lines)]
	c.counters[req.Role]++
	return line, nil
}
