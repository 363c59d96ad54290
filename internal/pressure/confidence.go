package pressure

// Sub-metric weights of the confidence score. Judge approval and argument
// coherence dominate; witness control and evidence handling split the rest.
const (
	weightJudgeApproval    = 0.30
	weightCoherence        = 0.30
	weightWitnessControl   = 0.20
	weightEvidenceHandling = 0.20
)

// Trend describes the confidence score's recent direction.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// SubMetrics are the four weighted components, each 0-100.
type SubMetrics struct {
	JudgeApproval     float64 `json:"judge_approval"`
	ArgumentCoherence float64 `json:"argument_coherence"`
	WitnessControl    float64 `json:"witness_control"`
	EvidenceHandling  float64 `json:"evidence_handling"`
}

// Update is the per-action confidence snapshot returned to the caller.
type Update struct {
	Enabled         bool       `json:"enabled"`
	Score           float64    `json:"score"`
	Sub             SubMetrics `json:"sub_metrics"`
	Trend           Trend      `json:"trend"`
	ConfidentStreak int        `json:"confident_streak"`
	HesitantStreak  int        `json:"hesitant_streak"`
}

// Meter is the confidence score with its four sub-metrics and streaks.
type Meter struct {
	enabled bool
	sub     SubMetrics

	lastScore       float64
	trend           Trend
	confidentStreak int
	hesitantStreak  int
}

// NewMeter starts every sub-metric at the neutral midpoint.
func NewMeter(enabled bool) *Meter {
	m := &Meter{
		enabled: enabled,
		sub: SubMetrics{
			JudgeApproval:     50,
			ArgumentCoherence: 50,
			WitnessControl:    50,
			EvidenceHandling:  50,
		},
		trend: TrendStable,
	}
	m.lastScore = m.score()
	return m
}

func clampMetric(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (m *Meter) score() float64 {
	return m.sub.JudgeApproval*weightJudgeApproval +
		m.sub.ArgumentCoherence*weightCoherence +
		m.sub.WitnessControl*weightWitnessControl +
		m.sub.EvidenceHandling*weightEvidenceHandling
}

// NudgeJudgeApproval moves the judge-approval sub-metric.
func (m *Meter) NudgeJudgeApproval(delta float64) {
	if !m.enabled {
		return
	}
	m.sub.JudgeApproval = clampMetric(m.sub.JudgeApproval + delta)
}

// NudgeCoherence moves the argument-coherence sub-metric.
func (m *Meter) NudgeCoherence(delta float64) {
	if !m.enabled {
		return
	}
	m.sub.ArgumentCoherence = clampMetric(m.sub.ArgumentCoherence + delta)
}

// NudgeWitnessControl moves the witness-control sub-metric.
func (m *Meter) NudgeWitnessControl(delta float64) {
	if !m.enabled {
		return
	}
	m.sub.WitnessControl = clampMetric(m.sub.WitnessControl + delta)
}

// NudgeEvidenceHandling moves the evidence-handling sub-metric.
func (m *Meter) NudgeEvidenceHandling(delta float64) {
	if !m.enabled {
		return
	}
	m.sub.EvidenceHandling = clampMetric(m.sub.EvidenceHandling + delta)
}

// ApplyTiming penalizes argument coherence for both extremes: a rushed
// answer and a judge-prompted one (clock ran out) each read as shaky
// advocacy.
func (m *Meter) ApplyTiming(stats TimingStats) {
	if !m.enabled {
		return
	}
	if stats.Expired {
		m.NudgeCoherence(-6)
	} else if stats.Rushed {
		m.NudgeCoherence(-3)
	}
}

// Snapshot closes the action: recomputes the score, derives the trend and
// advances the streaks. Streaks feed feedback and minor bonuses only.
func (m *Meter) Snapshot() Update {
	if !m.enabled {
		return Update{Enabled: false}
	}
	score := m.score()
	switch {
	case score > m.lastScore+0.5:
		m.trend = TrendRising
	case score < m.lastScore-0.5:
		m.trend = TrendFalling
	default:
		m.trend = TrendStable
	}
	if score >= 65 {
		m.confidentStreak++
		m.hesitantStreak = 0
	} else if score <= 40 {
		m.hesitantStreak++
		m.confidentStreak = 0
	} else {
		m.confidentStreak = 0
		m.hesitantStreak = 0
	}
	m.lastScore = score
	return Update{
		Enabled:         true,
		Score:           score,
		Sub:             m.sub,
		Trend:           m.trend,
		ConfidentStreak: m.confidentStreak,
		HesitantStreak:  m.hesitantStreak,
	}
}

// Coherence exposes the coherence sub-metric for tests and scoring.
func (m *Meter) Coherence() float64 { return m.sub.ArgumentCoherence }
