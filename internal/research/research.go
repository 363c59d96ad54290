// Package research implements the legal-research side channel: a fixed
// query-matchable catalogue of case law, a limited per-session search
// budget, and the citation ledger. Searching costs the player a turn and,
// when over-used, the judge's patience.
package research

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"courtroom/internal/types"
)

//go:embed caselaw.yaml
var caselawYAML []byte

// Bucket is an entry's relevance tier.
type Bucket string

const (
	BucketCore       Bucket = "core"
	BucketSupporting Bucket = "supporting"
	BucketPeripheral Bucket = "peripheral"
)

// CitationStatus tracks what the player has done with a discovered entry.
type CitationStatus string

const (
	StatusDiscovered CitationStatus = "discovered"
	StatusCited      CitationStatus = "cited"
)

// Entry is one case-law authority in the catalogue.
type Entry struct {
	ID       string   `yaml:"id"`
	Citation string   `yaml:"citation"`
	Bucket   Bucket   `yaml:"bucket"`
	Keywords []string `yaml:"keywords"`
	Summary  string   `yaml:"summary"`
}

// Catalogue is the fixed authority set for a session.
type Catalogue struct {
	entries []Entry
	byID    map[string]Entry
}

// LoadCatalogue parses the embedded case-law database.
func LoadCatalogue() (*Catalogue, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(caselawYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse case-law catalogue: %w", err)
	}
	c := &Catalogue{entries: doc.Entries, byID: make(map[string]Entry, len(doc.Entries))}
	for _, e := range doc.Entries {
		c.byID[e.ID] = e
	}
	return c, nil
}

// Entry looks up an authority by id.
func (c *Catalogue) Entry(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// match reports how many query terms the entry matches.
func (e Entry) match(terms []string) int {
	hay := strings.ToLower(e.Citation + " " + e.Summary + " " + strings.Join(e.Keywords, " "))
	n := 0
	for _, t := range terms {
		if strings.Contains(hay, t) {
			n++
		}
	}
	return n
}

// bucketRank orders buckets for result sorting, core first.
func bucketRank(b Bucket) int {
	switch b {
	case BucketCore:
		return 0
	case BucketSupporting:
		return 1
	}
	return 2
}

// SearchRecord is one ledger line.
type SearchRecord struct {
	Query   string `json:"query"`
	Matches int    `json:"matches"`
}

// State is the per-session research ledger.
type State struct {
	catalogue *Catalogue

	budgetLeft int
	budgetSize int

	discovered map[string]CitationStatus
	searches   []SearchRecord
}

// NewState builds the ledger with a full search budget.
func NewState(cat *Catalogue, budget int) *State {
	return &State{
		catalogue:  cat,
		budgetLeft: budget,
		budgetSize: budget,
		discovered: make(map[string]CitationStatus),
	}
}

// SearchResult is what a search returns to the orchestrator.
type SearchResult struct {
	Entries      []Entry
	PatienceCost int // judge patience the interruption costs; grows with over-use
}

// Search consumes one search from the budget and returns catalogue entries
// matching the query by keyword containment, core authorities first. An
// exhausted budget fails with ErrResourceExhausted and records nothing.
func (s *State) Search(query string) (SearchResult, error) {
	if s.budgetLeft <= 0 {
		return SearchResult{}, fmt.Errorf("%w: research budget spent", types.ErrResourceExhausted)
	}
	s.budgetLeft--

	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,;:!?\"'")
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}

	type scored struct {
		e Entry
		n int
	}
	var hits []scored
	for _, e := range s.catalogue.entries {
		if n := e.match(terms); n > 0 {
			hits = append(hits, scored{e, n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].n != hits[j].n {
			return hits[i].n > hits[j].n
		}
		return bucketRank(hits[i].e.Bucket) < bucketRank(hits[j].e.Bucket)
	})

	res := SearchResult{}
	for _, h := range hits {
		res.Entries = append(res.Entries, h.e)
		if _, ok := s.discovered[h.e.ID]; !ok {
			s.discovered[h.e.ID] = StatusDiscovered
		}
	}
	s.searches = append(s.searches, SearchRecord{Query: query, Matches: len(res.Entries)})

	// The court tolerates a little homework; repeated recesses grate.
	if used := s.budgetSize - s.budgetLeft; used*2 > s.budgetSize {
		res.PatienceCost = 3
	}
	return res, nil
}

// MarkCited records that a discovered authority was cited in open court.
// Citing something never discovered is rejected.
func (s *State) MarkCited(id string) (Entry, error) {
	if _, ok := s.discovered[id]; !ok {
		return Entry{}, fmt.Errorf("authority %q has not been discovered through research", id)
	}
	s.discovered[id] = StatusCited
	e, _ := s.catalogue.Entry(id)
	return e, nil
}

// Discovered reports an authority's citation status.
func (s *State) Discovered(id string) (CitationStatus, bool) {
	st, ok := s.discovered[id]
	return st, ok
}

// SearchesLeft reports the remaining budget.
func (s *State) SearchesLeft() int { return s.budgetLeft }

// View is the research display projection.
type View struct {
	SearchesUsed int            `json:"searches_used"`
	SearchesLeft int            `json:"searches_left"`
	Searches     []SearchRecord `json:"searches"`
	Discovered   []EntryView    `json:"discovered"`
}

// EntryView pairs an authority with its citation status.
type EntryView struct {
	Entry  Entry          `json:"entry"`
	Status CitationStatus `json:"status"`
}

// DisplayView builds the projection, authorities in catalogue order.
func (s *State) DisplayView() View {
	v := View{
		SearchesUsed: s.budgetSize - s.budgetLeft,
		SearchesLeft: s.budgetLeft,
		Searches:     s.searches,
	}
	for _, e := range s.catalogue.entries {
		if st, ok := s.discovered[e.ID]; ok {
			v.Discovered = append(v.Discovered, EntryView{Entry: e, Status: st})
		}
	}
	return v
}
