// Package config defines the engine configuration: difficulty presets,
// per-phase turn limits, timer settings and the per-session budgets for the
// side-channel subsystems. Configuration loads from YAML with environment
// overrides; every knob has a sane default so a zero-config session works.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"courtroom/internal/types"
)

// Difficulty scales the engine's generosity: turn limits, timer lengths and
// budgets shrink as difficulty rises.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty string, defaulting empty to normal.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return Difficulty(s), nil
	case "":
		return DifficultyNormal, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// PhaseRule bounds one trial phase.
type PhaseRule struct {
	MaxTurns         int  `yaml:"max_turns"`
	WarningTurn      int  `yaml:"warning_turn"` // turn at which the clerk warns time is short
	ExtensionAllowed bool `yaml:"extension_allowed"`
}

// TimerConfig controls the per-turn soft timer.
type TimerConfig struct {
	Enabled      bool `yaml:"enabled"`
	LimitSeconds int  `yaml:"limit_seconds"`
	Extensions   int  `yaml:"extensions"` // per-session extension pool
}

// Limit returns the configured turn limit as a duration.
func (t TimerConfig) Limit() time.Duration {
	return time.Duration(t.LimitSeconds) * time.Second
}

// Budgets caps the side-channel subsystems per session.
type Budgets struct {
	Research   int `yaml:"research"`
	Sidebars   int `yaml:"sidebars"`
	Flashcards int `yaml:"flashcards"`
}

// Features toggles optional subsystems. Disabled subsystems stay inert but
// keep their zero-valued state so display projections never nil-panic.
type Features struct {
	Pressure  bool `yaml:"pressure"`
	Education bool `yaml:"education"`
}

// GenConfig bounds the external text-generation collaborator.
type GenConfig struct {
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
}

// Timeout returns the per-call generation timeout.
func (g GenConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Config is the full engine configuration.
type Config struct {
	Difficulty Difficulty           `yaml:"difficulty"`
	Phases     map[string]PhaseRule `yaml:"phases"` // keyed by Phase.String()
	Timer      TimerConfig          `yaml:"timer"`
	Budgets    Budgets              `yaml:"budgets"`
	Features   Features             `yaml:"features"`
	Gen        GenConfig            `yaml:"gen"`
}

// PhaseRuleFor returns the rule for a phase, falling back to a permissive
// default for phases missing from the map.
func (c *Config) PhaseRuleFor(p types.Phase) PhaseRule {
	if r, ok := c.Phases[p.String()]; ok {
		return r
	}
	return PhaseRule{MaxTurns: 8, WarningTurn: 6, ExtensionAllowed: false}
}

// Default returns the normal-difficulty configuration.
func Default() *Config {
	return ForDifficulty(DifficultyNormal)
}

// ForDifficulty returns the preset for a difficulty level.
func ForDifficulty(d Difficulty) *Config {
	cfg := &Config{
		Difficulty: d,
		Phases: map[string]PhaseRule{
			types.PhaseOpening.String():            {MaxTurns: 4, WarningTurn: 3, ExtensionAllowed: false},
			types.PhasePetitionerEvidence.String(): {MaxTurns: 10, WarningTurn: 8, ExtensionAllowed: true},
			types.PhasePetitionerWitness.String():  {MaxTurns: 16, WarningTurn: 13, ExtensionAllowed: true},
			types.PhaseCrossExamination.String():   {MaxTurns: 12, WarningTurn: 10, ExtensionAllowed: true},
			types.PhaseRespondentEvidence.String(): {MaxTurns: 10, WarningTurn: 8, ExtensionAllowed: true},
			types.PhaseRespondentWitness.String():  {MaxTurns: 16, WarningTurn: 13, ExtensionAllowed: true},
			types.PhaseRebuttal.String():           {MaxTurns: 4, WarningTurn: 3, ExtensionAllowed: false},
			types.PhaseFinalArguments.String():     {MaxTurns: 4, WarningTurn: 3, ExtensionAllowed: false},
			types.PhaseJudgment.String():           {MaxTurns: 2, WarningTurn: 2, ExtensionAllowed: false},
		},
		Timer:    TimerConfig{Enabled: true, LimitSeconds: 120, Extensions: 2},
		Budgets:  Budgets{Research: 5, Sidebars: 3, Flashcards: 6},
		Features: Features{Pressure: true, Education: true},
		Gen:      GenConfig{Model: "gemini-2.0-flash", TimeoutSeconds: 30, Retries: 2},
	}
	switch d {
	case DifficultyEasy:
		cfg.Timer.LimitSeconds = 180
		cfg.Timer.Extensions = 3
		cfg.Budgets = Budgets{Research: 8, Sidebars: 4, Flashcards: 10}
	case DifficultyHard:
		cfg.Timer.LimitSeconds = 75
		cfg.Timer.Extensions = 1
		cfg.Budgets = Budgets{Research: 3, Sidebars: 2, Flashcards: 3}
		for name, r := range cfg.Phases {
			r.MaxTurns = r.MaxTurns * 3 / 4
			if r.WarningTurn >= r.MaxTurns {
				r.WarningTurn = r.MaxTurns - 1
			}
			cfg.Phases[name] = r
		}
	}
	return cfg
}

// Load reads a YAML config file on top of the difficulty preset named in it,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var probe struct {
		Difficulty Difficulty `yaml:"difficulty"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	d, err := ParseDifficulty(string(probe.Difficulty))
	if err != nil {
		return nil, err
	}
	cfg := ForDifficulty(d)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Environment overrides: COURTROOM_<KNOB> beats the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COURTROOM_TIMER_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timer.LimitSeconds = n
		}
	}
	if v := os.Getenv("COURTROOM_TIMER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Timer.Enabled = b
		}
	}
	if v := os.Getenv("COURTROOM_GEN_MODEL"); v != "" {
		c.Gen.Model = v
	}
	if v := os.Getenv("COURTROOM_RESEARCH_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Budgets.Research = n
		}
	}
}
