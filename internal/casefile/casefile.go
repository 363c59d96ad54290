// Package casefile models the structured case record the engine consumes.
// Document ingestion (PDF extraction, field parsing) happens upstream; this
// package only loads and validates the already-structured YAML record.
package casefile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"courtroom/internal/types"
)

// WitnessTemplate names a fixed witness personality preset; the witness
// package maps templates to base stats.
type WitnessTemplate string

const (
	TemplateExpert       WitnessTemplate = "expert"
	TemplateEyewitness   WitnessTemplate = "eyewitness"
	TemplateHostileParty WitnessTemplate = "hostile_party"
	TemplateCharacter    WitnessTemplate = "character"
)

// WitnessProfile is one witness as described by the case record.
type WitnessProfile struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Side     types.Side      `yaml:"side"`
	Template WitnessTemplate `yaml:"template"`
	Summary  string          `yaml:"summary"`   // what they will testify to
	KeyFacts []string        `yaml:"key_facts"` // assertions made during chief examination
}

// EvidenceMeta is one evidence item as described by the case record.
type EvidenceMeta struct {
	ID          string     `yaml:"id"`
	Side        types.Side `yaml:"side"`
	Category    string     `yaml:"category"` // document, photograph, record, object
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
}

// Party names one side of the dispute.
type Party struct {
	Name    string `yaml:"name"`
	Counsel string `yaml:"counsel"` // display name of the side's advocate
}

// Record is the full structured case handed to StartSession.
type Record struct {
	Title        string           `yaml:"title"`
	Court        string           `yaml:"court"`
	Petitioner   Party            `yaml:"petitioner"`
	Respondent   Party            `yaml:"respondent"`
	Issues       []string         `yaml:"issues"`
	Compensation float64          `yaml:"compensation"` // claimed amount, if civil
	Summary      string           `yaml:"summary"`
	Witnesses    []WitnessProfile `yaml:"witnesses"`
	Evidence     []EvidenceMeta   `yaml:"evidence"`
	JudgeProfile string           `yaml:"judge_profile"` // judge personality preset name
}

// WitnessesFor returns the witnesses called by a side, in record order.
func (r *Record) WitnessesFor(s types.Side) []WitnessProfile {
	var out []WitnessProfile
	for _, w := range r.Witnesses {
		if w.Side == s {
			out = append(out, w)
		}
	}
	return out
}

// Witness looks up a witness profile by id.
func (r *Record) Witness(id string) (WitnessProfile, bool) {
	for _, w := range r.Witnesses {
		if w.ID == id {
			return w, true
		}
	}
	return WitnessProfile{}, false
}

// Load reads and validates a case record from YAML.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse case file: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Validate checks the structural invariants a playable case must satisfy.
func (r *Record) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(r.Petitioner.Name) == "" {
		problems = append(problems, "petitioner name is required")
	}
	if strings.TrimSpace(r.Respondent.Name) == "" {
		problems = append(problems, "respondent name is required")
	}
	if len(r.Issues) == 0 {
		problems = append(problems, "at least one issue is required")
	}
	if len(r.Witnesses) == 0 {
		problems = append(problems, "at least one witness is required")
	}
	seen := map[string]bool{}
	for i, w := range r.Witnesses {
		if strings.TrimSpace(w.ID) == "" {
			problems = append(problems, fmt.Sprintf("witness %d has no id", i))
			continue
		}
		if seen[w.ID] {
			problems = append(problems, fmt.Sprintf("duplicate witness id %q", w.ID))
		}
		seen[w.ID] = true
		if w.Side != types.SidePetitioner && w.Side != types.SideRespondent {
			problems = append(problems, fmt.Sprintf("witness %q has invalid side %q", w.ID, w.Side))
		}
	}
	seenEv := map[string]bool{}
	for i, e := range r.Evidence {
		if strings.TrimSpace(e.ID) == "" {
			problems = append(problems, fmt.Sprintf("evidence %d has no id", i))
			continue
		}
		if seenEv[e.ID] {
			problems = append(problems, fmt.Sprintf("duplicate evidence id %q", e.ID))
		}
		seenEv[e.ID] = true
		if e.Side != types.SidePetitioner && e.Side != types.SideRespondent {
			problems = append(problems, fmt.Sprintf("evidence %q has invalid side %q", e.ID, e.Side))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid case record: %s", strings.Join(problems, "; "))
	}
	return nil
}
