// Package pressure implements the per-turn timer and the confidence meter.
// Pressure is soft: an expired timer is recorded and scored, never blocks
// submission. The whole subsystem can be disabled, in which case every
// operation is inert.
package pressure

import (
	"fmt"
	"time"

	"courtroom/internal/types"
)

// Level buckets how much of the turn clock is gone.
type Level string

const (
	LevelCalm     Level = "calm"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// TimingStats reports one completed turn's clock.
type TimingStats struct {
	Elapsed        time.Duration `json:"elapsed"`
	Limit          time.Duration `json:"limit"`
	Remaining      time.Duration `json:"remaining"`
	Expired        bool          `json:"time_expired"`
	Rushed         bool          `json:"rushed"` // answered almost immediately
	Level          Level         `json:"pressure_level"`
	ExtensionsLeft int           `json:"extensions_left"`
}

// Timer is the per-active-turn clock. It starts when turn ownership passes
// to the player and stops when the action is submitted.
type Timer struct {
	enabled        bool
	limit          time.Duration
	extensionsLeft int

	startedAt time.Time
	running   bool

	clock func() time.Time
}

// NewTimer builds a turn timer. A zero or negative extension pool means no
// extensions. clock may be nil for wall time; tests inject their own.
func NewTimer(enabled bool, limit time.Duration, extensions int, clock func() time.Time) *Timer {
	if clock == nil {
		clock = time.Now
	}
	if extensions < 0 {
		extensions = 0
	}
	return &Timer{enabled: enabled, limit: limit, extensionsLeft: extensions, clock: clock}
}

// Enabled reports whether the pressure subsystem is active.
func (t *Timer) Enabled() bool { return t.enabled }

// Start begins the clock for the player's turn. Starting an already running
// timer restarts it.
func (t *Timer) Start() {
	if !t.enabled {
		return
	}
	t.startedAt = t.clock()
	t.running = true
}

// Stop ends the clock and reports the turn's timing. A stopped or disabled
// timer reports zeroes with level calm.
func (t *Timer) Stop() TimingStats {
	stats := TimingStats{Limit: t.limit, Level: LevelCalm, ExtensionsLeft: t.extensionsLeft}
	if !t.enabled || !t.running {
		return stats
	}
	t.running = false
	stats.Elapsed = t.clock().Sub(t.startedAt)
	stats.Remaining = t.limit - stats.Elapsed
	if stats.Remaining < 0 {
		stats.Remaining = 0
		stats.Expired = true
	}
	if t.limit > 0 {
		stats.Rushed = stats.Elapsed*10 < t.limit // under 10% of the clock
		used := float64(stats.Elapsed) / float64(t.limit)
		switch {
		case stats.Expired || used >= 0.9:
			stats.Level = LevelCritical
		case used >= 0.7:
			stats.Level = LevelHigh
		case used >= 0.4:
			stats.Level = LevelModerate
		}
	}
	return stats
}

// RequestExtension consumes one extension from the session pool and resets
// the running clock. An empty pool fails with ErrResourceExhausted.
func (t *Timer) RequestExtension() error {
	if !t.enabled {
		return nil
	}
	if t.extensionsLeft <= 0 {
		return fmt.Errorf("%w: no extensions remain", types.ErrResourceExhausted)
	}
	t.extensionsLeft--
	t.startedAt = t.clock()
	t.running = true
	return nil
}

// ExtensionsLeft reports the remaining extension pool.
func (t *Timer) ExtensionsLeft() int { return t.extensionsLeft }
