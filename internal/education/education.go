// Package education implements mistake detection against a fixed database
// of legal principles, the flashcard "learning moment" flow and per-category
// mastery tracking. Detection is keyword-driven by design; stricter
// classifiers can be swapped in behind the Classifier interface without
// touching the orchestrator.
package education

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"courtroom/internal/types"
)

//go:embed principles.yaml
var principlesYAML []byte

// Severity grades a principle breach.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySerious  Severity = "serious"
)

// Principle is one entry of the fixed legal-principle database.
type Principle struct {
	ID           string              `yaml:"id"`
	Category     types.ScoreCategory `yaml:"category"`
	Severity     Severity            `yaml:"severity"`
	Rule         string              `yaml:"rule"`
	WrongExample string              `yaml:"wrong_example"`
	RightExample string              `yaml:"right_example"`
}

// Catalogue is the loaded principle database.
type Catalogue struct {
	principles []Principle
	byID       map[string]Principle
}

// LoadCatalogue parses the embedded principle database.
func LoadCatalogue() (*Catalogue, error) {
	var doc struct {
		Principles []Principle `yaml:"principles"`
	}
	if err := yaml.Unmarshal(principlesYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse principle database: %w", err)
	}
	c := &Catalogue{principles: doc.Principles, byID: make(map[string]Principle, len(doc.Principles))}
	for _, p := range doc.Principles {
		c.byID[p.ID] = p
	}
	return c, nil
}

// Principle looks up a database entry.
func (c *Catalogue) Principle(id string) (Principle, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// All returns every principle in catalogue order.
func (c *Catalogue) All() []Principle {
	out := make([]Principle, len(c.principles))
	copy(out, c.principles)
	return out
}

// ForCategory returns the principles of one score category.
func (c *Catalogue) ForCategory(cat types.ScoreCategory) []Principle {
	var out []Principle
	for _, p := range c.principles {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// Context gives the classifier what the orchestrator knows about the action
// under evaluation.
type Context struct {
	Phase          types.Phase
	SubPhase       types.SubPhase
	QuestionStyle  string // lexical style of an ask_question action
	WitnessHostile bool
	FoundationLaid bool // exhibit was marked before the offer
}

// Detection is one matched mistake.
type Detection struct {
	PrincipleID string              `json:"principle_id"`
	Category    types.ScoreCategory `json:"category"`
	Severity    Severity            `json:"severity"`
	Summary     string              `json:"summary"`
}

// Classifier matches submitted actions against the principle database.
// The default is the keyword classifier below; the interface exists so a
// rule-engine or learned classifier can replace it.
type Classifier interface {
	Classify(act types.Action, ctx Context) []Detection
}

// KeywordClassifier is the default lexical mistake matcher.
type KeywordClassifier struct {
	db *Catalogue
}

// NewKeywordClassifier builds the default classifier over the database.
func NewKeywordClassifier(db *Catalogue) *KeywordClassifier {
	return &KeywordClassifier{db: db}
}

var groundKeywords = []string{
	"leading", "hearsay", "relevance", "irrelevant", "speculation",
	"argumentative", "compound", "asked and answered", "foundation",
}

var absoluteMarkers = []string{"obviously", "clearly", "everyone knows", "undeniable", "beyond any doubt"}

func (k *KeywordClassifier) detect(id, summary string) Detection {
	p, _ := k.db.Principle(id)
	return Detection{PrincipleID: id, Category: p.Category, Severity: p.Severity, Summary: summary}
}

// Classify applies the category-specific keyword rules.
func (k *KeywordClassifier) Classify(act types.Action, ctx Context) []Detection {
	var out []Detection
	text := strings.ToLower(act.Text)

	switch act.Type {
	case types.ActionObject:
		if act.Ground == types.GroundNone && !containsAny(text, groundKeywords) {
			out = append(out, k.detect("specific-objection-ground",
				"the objection stated no recognized ground"))
		}

	case types.ActionAskQuestion:
		if ctx.SubPhase == types.SubPhaseChief && ctx.QuestionStyle == "leading" && !ctx.WitnessHostile {
			out = append(out, k.detect("no-leading-in-chief",
				"a leading question was put to counsel's own witness"))
		}
		if ctx.SubPhase == types.SubPhaseCross && ctx.QuestionStyle == "open" {
			out = append(out, k.detect("control-the-cross",
				"an open question surrendered control on cross-examination"))
		}
		if ctx.QuestionStyle == "aggressive" {
			out = append(out, k.detect("no-badgering",
				"the question badgers the witness"))
		}

	case types.ActionMakeArgument:
		if text != "" && !strings.Contains(text, "your honor") && !strings.Contains(text, "my lord") {
			out = append(out, k.detect("address-the-bench",
				"the submission was not addressed to the court"))
		}
		if containsAny(text, absoluteMarkers) && act.Citation == "" {
			out = append(out, k.detect("no-absolutes",
				"an unsupported absolute claim weakens the argument"))
		}

	case types.ActionOfferEvidence, types.ActionPresentEvidence:
		if !ctx.FoundationLaid {
			out = append(out, k.detect("lay-foundation-first",
				"the exhibit was offered without being marked for identification"))
		}
	}
	return out
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// actionCategory maps an action type to the score category mastery is
// tracked under.
func actionCategory(t types.ActionType) (types.ScoreCategory, bool) {
	switch t {
	case types.ActionObject:
		return types.ScoreObjectionSuccess, true
	case types.ActionAskQuestion:
		return types.ScoreWitnessExamination, true
	case types.ActionMakeArgument:
		return types.ScorePersuasiveness, true
	case types.ActionOfferEvidence, types.ActionPresentEvidence, types.ActionMarkForID, types.ActionWithdrawEvidence:
		return types.ScoreEvidenceHandling, true
	}
	return "", false
}

// Flashcard is a queued learning moment. The player must acknowledge it
// before their next action; AI turns are never blocked.
type Flashcard struct {
	Principle Principle `json:"principle"`
	Trigger   string    `json:"trigger"` // what the player did
}

// Tracker is the per-session education ledger.
type Tracker struct {
	db      *Catalogue
	enabled bool

	flashcardsLeft int
	pending        *Flashcard

	mistakes map[types.ScoreCategory]int
	mastery  map[types.ScoreCategory]int
	shown    map[types.ScoreCategory]bool
}

// NewTracker builds the ledger. A disabled tracker observes nothing.
func NewTracker(db *Catalogue, flashcardBudget int, enabled bool) *Tracker {
	return &Tracker{
		db:             db,
		enabled:        enabled,
		flashcardsLeft: flashcardBudget,
		mistakes:       make(map[types.ScoreCategory]int),
		mastery:        make(map[types.ScoreCategory]int),
		shown:          make(map[types.ScoreCategory]bool),
	}
}

// Observe ingests a player action's detections. The first detection counts
// a mistake and, while the flashcard budget lasts, queues a learning moment.
// A clean action in a category already taught counts toward mastery.
// Returns the newly queued flashcard, if any.
func (t *Tracker) Observe(act types.Action, detections []Detection) *Flashcard {
	if !t.enabled {
		return nil
	}
	if len(detections) == 0 {
		if cat, ok := actionCategory(act.Type); ok && t.shown[cat] {
			t.mastery[cat]++
		}
		return nil
	}
	d := detections[0]
	t.mistakes[d.Category]++
	if t.pending != nil || t.flashcardsLeft <= 0 {
		return nil
	}
	p, ok := t.db.Principle(d.PrincipleID)
	if !ok {
		return nil
	}
	t.flashcardsLeft--
	t.shown[d.Category] = true
	t.pending = &Flashcard{Principle: p, Trigger: d.Summary}
	return t.pending
}

// Pending returns the unacknowledged flashcard, if any.
func (t *Tracker) Pending() *Flashcard { return t.pending }

// Acknowledge clears the blocking flashcard.
func (t *Tracker) Acknowledge() { t.pending = nil }

// MistakeCount reports mistakes recorded for a category.
func (t *Tracker) MistakeCount(cat types.ScoreCategory) int { return t.mistakes[cat] }

// Mastery reports clean actions in a category after its learning moment.
func (t *Tracker) Mastery(cat types.ScoreCategory) int { return t.mastery[cat] }

// FlashcardsLeft reports the remaining flashcard budget.
func (t *Tracker) FlashcardsLeft() int { return t.flashcardsLeft }

// View is the education display projection.
type View struct {
	Enabled        bool                        `json:"enabled"`
	FlashcardsLeft int                         `json:"flashcards_left"`
	Pending        *Flashcard                  `json:"pending,omitempty"`
	Mistakes       map[types.ScoreCategory]int `json:"mistakes"`
	Mastery        map[types.ScoreCategory]int `json:"mastery"`
}

// DisplayView builds the projection.
func (t *Tracker) DisplayView() View {
	mistakes := make(map[types.ScoreCategory]int, len(t.mistakes))
	for k, v := range t.mistakes {
		mistakes[k] = v
	}
	mastery := make(map[types.ScoreCategory]int, len(t.mastery))
	for k, v := range t.mastery {
		mastery[k] = v
	}
	return View{
		Enabled:        t.enabled,
		FlashcardsLeft: t.flashcardsLeft,
		Pending:        t.pending,
		Mistakes:       mistakes,
		Mastery:        mastery,
	}
}
