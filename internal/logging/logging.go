// Package logging provides categorized loggers for the trial engine.
// Every subsystem logs through a named child of one shared zap logger so a
// single debug flag in the CLI lights up the whole engine.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names one engine subsystem.
type Category string

const (
	CategoryTrial     Category = "trial"     // orchestrator, phases, turns
	CategoryEvidence  Category = "evidence"  // locker transitions
	CategoryWitness   Category = "witness"   // stats, reactions, contradictions
	CategoryJudge     Category = "judge"     // mood, patience, rulings
	CategoryPressure  Category = "pressure"  // timers, confidence meter
	CategoryResearch  Category = "research"  // case-law searches
	CategorySidebar   Category = "sidebar"   // sidebar requests, settlement
	CategoryEducation Category = "education" // mistake detection, flashcards
	CategoryAnalysis  Category = "analysis"  // scoring, post-game report
	CategoryGen       Category = "gen"       // text-generation collaborator
)

// For returns a named child logger for the category. A nil base yields a
// no-op logger so library code never has to nil-check.
func For(base *zap.Logger, c Category) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(string(c))
}

// NewCLI builds the logger used by cmd/courtroom: production encoding at
// info level, debug level when verbose is set.
func NewCLI(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
