// Package analysis implements the running score and the post-game report:
// six category sub-scores plus judge favor accumulated live during play,
// and a replay of the action log that classifies actions, finds turning
// points and missed opportunities, grades the performance and attaches
// recommendations from the principle database.
package analysis

import "courtroom/internal/types"

// Delta is one scorable event's contribution to the running score. Every
// point awarded or docked during play is recorded as a delta in the action
// log, which is what makes the final report's replay reproduce the live
// score exactly.
type Delta struct {
	Category   types.ScoreCategory `json:"category"`
	Points     float64             `json:"points"`
	JudgeFavor float64             `json:"judge_favor"` // nudge to the favor percentage
	Reason     string              `json:"reason"`
}

// Score is the running aggregate.
type Score struct {
	Categories map[types.ScoreCategory]float64 `json:"categories"`
	Total      float64                         `json:"total"`
	JudgeFavor float64                         `json:"judge_favor"` // 0-100
}

// NewScore starts all sub-scores at zero and judge favor at the midpoint.
func NewScore() *Score {
	cats := make(map[types.ScoreCategory]float64, 6)
	for _, c := range types.ScoreCategories() {
		cats[c] = 0
	}
	return &Score{Categories: cats, JudgeFavor: 50}
}

// Apply folds one delta into the score.
func (s *Score) Apply(d Delta) {
	if d.Category != "" {
		s.Categories[d.Category] += d.Points
	}
	s.Total += d.Points
	s.JudgeFavor += d.JudgeFavor
	if s.JudgeFavor < 0 {
		s.JudgeFavor = 0
	}
	if s.JudgeFavor > 100 {
		s.JudgeFavor = 100
	}
}

// LogEntry records one processed action and every delta it produced.
type LogEntry struct {
	Index   int              `json:"index"`
	Phase   types.Phase      `json:"phase"`
	Player  bool             `json:"player"` // player action vs AI turn
	Action  types.ActionType `json:"action"`
	Summary string           `json:"summary"`
	Deltas  []Delta          `json:"deltas"`
}

// Net is the entry's total point impact.
func (e LogEntry) Net() float64 {
	var n float64
	for _, d := range e.Deltas {
		n += d.Points
	}
	return n
}

// Log is the ordered action record of one session.
type Log struct {
	entries []LogEntry
}

// Append records an action and applies its deltas to the live score.
func (l *Log) Append(s *Score, phase types.Phase, player bool, action types.ActionType, summary string, deltas []Delta) {
	for _, d := range deltas {
		s.Apply(d)
	}
	l.entries = append(l.entries, LogEntry{
		Index:   len(l.entries),
		Phase:   phase,
		Player:  player,
		Action:  action,
		Summary: summary,
		Deltas:  deltas,
	})
}

// Entries returns the recorded log.
func (l *Log) Entries() []LogEntry { return l.entries }

// Replay re-derives a score from the log alone. For any session, Replay of
// the full log equals the live score.
func (l *Log) Replay() *Score {
	s := NewScore()
	for _, e := range l.entries {
		for _, d := range e.Deltas {
			s.Apply(d)
		}
	}
	return s
}
