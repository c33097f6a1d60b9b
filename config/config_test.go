package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "npcsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
	assert.Equal(t, time.Second/60, cfg.Sim.Step())
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
[sim]
tick_rate = 30
combat_seed = 7

[arena]
headless = true
ticks = 600

[logging]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Sim.TickRate)
	assert.Equal(t, uint64(7), cfg.Sim.CombatSeed)
	assert.Equal(t, uint64(12345), cfg.Sim.WanderSeed)
	assert.True(t, cfg.Arena.Headless)
	assert.Equal(t, 600, cfg.Arena.Ticks)
	assert.Equal(t, "arena", cfg.Arena.Layout)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[sim]\nwander_seed = 1\n")
	t.Setenv("NPCSIM_SIM_WANDER_SEED", "99")
	t.Setenv("NPCSIM_ARENA_HEADLESS", "true")
	t.Setenv("NPCSIM_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), cfg.Sim.WanderSeed)
	assert.True(t, cfg.Arena.Headless)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad_toml", "[sim\n"},
		{"zero_tick_rate", "[sim]\ntick_rate = 0\n"},
		{"bad_cell_size", "[arena]\ncell_size = -1\n"},
		{"bad_format", "[logging]\nformat = \"xml\"\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.body))
			assert.Error(t, err)
		})
	}
}
