package main

import (
	"math"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/config"
	"github.com/milk9111/npcsim/prefabs"
	"github.com/milk9111/npcsim/system"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	stickDeadzone = 0.2
)

type Game struct {
	frames int

	world   *system.World
	cfg     *config.Config
	changes <-chan prefabs.Change
	log     *zap.Logger
	dt      float64

	paused  bool
	quit    bool
	pauseUI *ebitenui.UI
	status  string
}

func NewGame(world *system.World, cfg *config.Config, changes <-chan prefabs.Change, log *zap.Logger) *Game {
	g := &Game{
		world:   world,
		cfg:     cfg,
		changes: changes,
		log:     log,
		dt:      cfg.Sim.Step().Seconds(),
	}
	g.pauseUI = NewPauseUI(g)
	return g
}

func (g *Game) Update() error {
	g.frames++
	if g.quit {
		return ebiten.Termination
	}

	if err := applyChanges(g.world, g.changes, g.log); err != nil {
		g.status = "reload failed: " + err.Error()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload()
	}

	g.world.Step(g.dt, g.readInput())
	return nil
}

// reload rebuilds the arena from prefabs, keeping the current world if the
// layout no longer loads.
func (g *Game) reload() {
	if err := g.world.Load(g.cfg.Arena.Layout); err != nil {
		g.log.Warn("arena reload failed", zap.Error(err))
		g.status = "reload failed: " + err.Error()
		return
	}
	g.status = ""
}

func (g *Game) readInput() system.Input {
	var in system.Input

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Move.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Move.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Move.Y++
	}

	cx, cy := ebiten.CursorPosition()
	in.Aim = g.toWorld(float64(cx), float64(cy))
	in.Attack = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || ebiten.IsKeyPressed(ebiten.KeySpace)

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			in.Move = common.V(lx, ly)
		}

		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if pos, ok := g.world.Store.Position(g.world.Player); ok && math.Hypot(rx, ry) > stickDeadzone {
			in.Aim = pos.Add(common.V(rx, ry).Normalize().Scale(5))
		}
		in.Attack = in.Attack || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomRight)
	}
	return in
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawArena(screen)
	g.drawHUD(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
