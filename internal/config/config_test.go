package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtroom/internal/types"
)

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, DifficultyNormal, d)

	d, err = ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	_, err = ParseDifficulty("nightmare")
	require.Error(t, err)
}

func TestDefaultCoversEveryPhase(t *testing.T) {
	cfg := Default()
	for p := types.PhaseOpening; !p.Terminal(); p = p.Next() {
		rule := cfg.PhaseRuleFor(p)
		assert.Greater(t, rule.MaxTurns, 0, "phase %s", p)
		assert.Less(t, rule.WarningTurn, rule.MaxTurns+1, "phase %s", p)
	}
	assert.True(t, cfg.Timer.Enabled)
	assert.True(t, cfg.Features.Pressure)
	assert.True(t, cfg.Features.Education)
}

func TestPhaseRuleFallback(t *testing.T) {
	cfg := &Config{Phases: map[string]PhaseRule{}}
	rule := cfg.PhaseRuleFor(types.PhaseOpening)
	assert.Equal(t, 8, rule.MaxTurns)
	assert.False(t, rule.ExtensionAllowed)
}

func TestHardPresetTightensBudgets(t *testing.T) {
	normal := ForDifficulty(DifficultyNormal)
	hard := ForDifficulty(DifficultyHard)

	assert.Less(t, hard.Timer.LimitSeconds, normal.Timer.LimitSeconds)
	assert.Less(t, hard.Budgets.Research, normal.Budgets.Research)
	for name, r := range hard.Phases {
		assert.Greater(t, r.MaxTurns, r.WarningTurn-1, "phase %s", name)
		assert.LessOrEqual(t, r.MaxTurns, normal.Phases[name].MaxTurns, "phase %s", name)
	}
}

func TestLoadLayersFileOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
difficulty: easy
timer:
  enabled: true
  limit_seconds: 240
  extensions: 5
budgets:
  research: 9
  sidebars: 4
  flashcards: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DifficultyEasy, cfg.Difficulty)
	assert.Equal(t, 240, cfg.Timer.LimitSeconds)
	assert.Equal(t, 9, cfg.Budgets.Research)
	// Untouched knobs keep the easy-preset values.
	assert.Equal(t, "gemini-2.0-flash", cfg.Gen.Model)
}

func TestLoadRejectsUnknownDifficulty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("difficulty: impossible\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	t.Setenv("COURTROOM_TIMER_LIMIT", "45")
	t.Setenv("COURTROOM_TIMER_ENABLED", "false")
	t.Setenv("COURTROOM_GEN_MODEL", "gemini-exp")
	t.Setenv("COURTROOM_RESEARCH_BUDGET", "0")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("difficulty: normal\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Timer.LimitSeconds)
	assert.False(t, cfg.Timer.Enabled)
	assert.Equal(t, "gemini-exp", cfg.Gen.Model)
	assert.Equal(t, 0, cfg.Budgets.Research)
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("COURTROOM_TIMER_LIMIT", "soon")

	cfg := Default()
	cfg.applyEnvOverrides()
	assert.Equal(t, 120, cfg.Timer.LimitSeconds)
}
