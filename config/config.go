package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Sim     SimConfig     `toml:"sim" envPrefix:"SIM_"`
	Prefabs PrefabsConfig `toml:"prefabs" envPrefix:"PREFABS_"`
	Arena   ArenaConfig   `toml:"arena" envPrefix:"ARENA_"`
	Logging LoggingConfig `toml:"logging" envPrefix:"LOG_"`
}

type SimConfig struct {
	TickRate    int     `toml:"tick_rate" env:"TICK_RATE"` // ticks per second
	CombatSeed  uint64  `toml:"combat_seed" env:"COMBAT_SEED"`
	WanderSeed  uint64  `toml:"wander_seed" env:"WANDER_SEED"`
	PlayerSpeed float64 `toml:"player_speed" env:"PLAYER_SPEED"`
}

// Step is the fixed simulation step.
func (c SimConfig) Step() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

type PrefabsConfig struct {
	Dir       string `toml:"dir" env:"DIR"`
	HotReload bool   `toml:"hot_reload" env:"HOT_RELOAD"`
}

type ArenaConfig struct {
	Layout   string  `toml:"layout" env:"LAYOUT"`
	Headless bool    `toml:"headless" env:"HEADLESS"`
	Ticks    int     `toml:"ticks" env:"TICKS"` // headless run length, 0 runs forever
	CellSize float64 `toml:"cell_size" env:"CELL_SIZE"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // "json" or "console"
}

// Load reads path on top of the defaults and then applies NPCSIM_*
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "NPCSIM_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("config: sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	if c.Arena.CellSize <= 0 {
		return fmt.Errorf("config: arena.cell_size must be positive, got %g", c.Arena.CellSize)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:    60,
			CombatSeed:  12345,
			WanderSeed:  12345,
			PlayerSpeed: 5,
		},
		Prefabs: PrefabsConfig{
			Dir:       "prefabs",
			HotReload: true,
		},
		Arena: ArenaConfig{
			Layout:   "arena",
			Headless: false,
			Ticks:    0,
			CellSize: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
