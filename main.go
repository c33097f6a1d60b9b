package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/config"
	"github.com/milk9111/npcsim/logging"
	"github.com/milk9111/npcsim/prefabs"
	"github.com/milk9111/npcsim/system"
)

func main() {
	configPath := flag.String("config", "npcsim.toml", "path to the TOML config (optional)")
	arena := flag.String("arena", "", "arena layout in prefabs/ (basename, .yaml optional)")
	headless := flag.Bool("headless", false, "run the simulation without a window")
	debug := flag.Bool("debug", false, "enable debug logging")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *arena != "" {
		cfg.Arena.Layout = *arena
	}
	if *headless {
		cfg.Arena.Headless = true
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	prefabs.Dir = cfg.Prefabs.Dir
	world, err := system.NewWorld(cfg.Arena.Layout,
		system.WithWorldLogger(logger),
		system.WithSeeds(cfg.Sim.CombatSeed, cfg.Sim.WanderSeed),
		system.WithPlayerSpeed(cfg.Sim.PlayerSpeed),
		system.WithCellSize(cfg.Arena.CellSize),
	)
	if err != nil {
		logger.Fatal("failed to load arena", zap.String("arena", cfg.Arena.Layout), zap.Error(err))
	}

	var changes <-chan prefabs.Change
	if cfg.Prefabs.HotReload {
		watcher, err := prefabs.NewWatcher(cfg.Prefabs.Dir)
		if err != nil {
			logger.Warn("prefab hot reload disabled", zap.String("dir", cfg.Prefabs.Dir), zap.Error(err))
		} else {
			defer watcher.Close()
			go func() {
				for err := range watcher.Errors {
					logger.Warn("prefab watcher", zap.Error(err))
				}
			}()
			changes = watcher.Changes
		}
	}

	if cfg.Arena.Headless {
		runHeadless(world, cfg, changes, logger)
		return
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("npcsim - " + cfg.Arena.Layout)
	ebiten.SetTPS(cfg.Sim.TickRate)

	game := NewGame(world, cfg, changes, logger)
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		logger.Fatal("game exited", zap.Error(err))
	}
}

// runHeadless steps the world with no player input. A positive tick count
// runs as fast as possible; otherwise the world ticks in real time until
// interrupted.
func runHeadless(w *system.World, cfg *config.Config, changes <-chan prefabs.Change, logger *zap.Logger) {
	counts := make(map[component.CombatEventType]int)
	w.Events.Subscribe(func(evt component.CombatEvent) {
		counts[evt.Type]++
	})

	dt := cfg.Sim.Step().Seconds()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var tick <-chan time.Time
	if cfg.Arena.Ticks <= 0 {
		ticker := time.NewTicker(cfg.Sim.Step())
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for n := 0; cfg.Arena.Ticks <= 0 || n < cfg.Arena.Ticks; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				logger.Info("interrupted")
				break loop
			case <-tick:
			}
		}
		applyChanges(w, changes, logger)
		w.Step(dt, system.Input{})
	}

	logger.Info("headless run finished",
		zap.Float64("elapsed", w.Elapsed()),
		zap.Bool("player_alive", w.PlayerAlive()),
		zap.Int("npcs", w.NPCs.Len()),
		zap.Int("hits", counts[component.EventHit]),
		zap.Int("deaths", counts[component.EventDeath]),
		zap.Int("projectiles", counts[component.EventProjectileSpawned]))
}

// applyChanges drains pending prefab edits without blocking.
func applyChanges(w *system.World, changes <-chan prefabs.Change, logger *zap.Logger) error {
	var last error
	for {
		select {
		case ch, ok := <-changes:
			if !ok {
				return last
			}
			if err := w.ApplyChange(ch); err != nil {
				logger.Warn("prefab reload failed", zap.String("path", ch.Path), zap.Stringer("kind", ch.Kind), zap.Error(err))
				last = err
				continue
			}
			logger.Info("prefab reloaded", zap.String("path", ch.Path), zap.Stringer("kind", ch.Kind))
		default:
			return last
		}
	}
}
