package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
)

var (
	backgroundColor = color.RGBA{R: 0x1e, G: 0x23, B: 0x2a, A: 0xff}
	wallColor       = color.RGBA{R: 0x55, G: 0x5d, B: 0x68, A: 0xff}
	playerColor     = color.RGBA{R: 0x3d, G: 0x9b, B: 0xe9, A: 0xff}
	fallbackColor   = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	facingColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0}
	projectileColor = color.RGBA{R: 0xf1, G: 0xc4, B: 0x0f, A: 0xff}
	healthBack      = color.RGBA{R: 0x40, G: 0x00, B: 0x00, A: 0xff}
	healthFront     = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	provokedColor   = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
)

// scale maps arena units to screen pixels so the whole arena fits.
func (g *Game) scale() float64 {
	a := g.world.Arena
	if a.Width <= 0 || a.Height <= 0 {
		return 1
	}
	return math.Min(baseWidth/a.Width, baseHeight/a.Height)
}

func (g *Game) toWorld(x, y float64) common.Vec2 {
	s := g.scale()
	return common.V(x/s, y/s)
}

func (g *Game) toScreen(p common.Vec2) (float32, float32) {
	s := g.scale()
	return float32(p.X * s), float32(p.Y * s)
}

func (g *Game) drawArena(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s := float32(g.scale())

	for _, wall := range g.world.Space.Walls() {
		x, y := g.toScreen(common.V(wall.MinX, wall.MinY))
		vector.FillRect(screen, x, y, float32(wall.Width())*s, float32(wall.Height())*s, wallColor, false)
	}

	g.world.NPCs.Each(func(e ecs.Entity, st *component.NPCState) bool {
		clr := color.Color(fallbackColor)
		radius := g.world.Space.BodyRadius(e)
		if _, a, ok := g.world.ArchetypeOf(e); ok && a.Color != nil {
			clr = a.Color.Color
		}
		g.drawBody(screen, e, st.Position, st.Facing, radius, clr)
		if st.Provoked {
			x, y := g.toScreen(st.Position)
			vector.StrokeCircle(screen, x, y, float32(radius)*s+2, 1, provokedColor, true)
		}
		return true
	})

	if pos, ok := g.world.Store.Position(g.world.Player); ok {
		facing, _ := g.world.Store.Facing(g.world.Player)
		g.drawBody(screen, g.world.Player, pos, facing, g.world.Space.BodyRadius(g.world.Player), playerColor)
	}

	for _, p := range g.world.Combat.Projectiles() {
		x, y := g.toScreen(p.Position)
		vector.FillCircle(screen, x, y, max(float32(p.Radius)*s, 2), projectileColor, true)
	}
}

func (g *Game) drawBody(screen *ebiten.Image, e ecs.Entity, pos common.Vec2, facing, radius float64, clr color.Color) {
	s := float32(g.scale())
	x, y := g.toScreen(pos)
	r := float32(radius) * s
	vector.FillCircle(screen, x, y, r, clr, true)

	tip := pos.Add(common.FromAngle(facing).Scale(radius))
	tx, ty := g.toScreen(tip)
	vector.StrokeLine(screen, x, y, tx, ty, 2, facingColor, true)

	hp, ok := g.world.Store.HealthPercent(e)
	if !ok {
		return
	}
	w := 2 * r
	vector.FillRect(screen, x-r, y-r-6, w, 3, healthBack, false)
	vector.FillRect(screen, x-r, y-r-6, w*float32(common.Clamp(hp, 0, 1)), 3, healthFront, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	text := fmt.Sprintf("FPS: %.0f  t=%.1fs  NPCs: %d  projectiles: %d",
		ebiten.ActualFPS(), g.world.Elapsed(), g.world.NPCs.Len(), len(g.world.Combat.Projectiles()))
	if hp, ok := g.world.Store.HealthPercent(g.world.Player); ok {
		text += fmt.Sprintf("  HP: %.0f%%", hp*100)
	} else {
		text += "  player down, R to restart"
	}
	if g.status != "" {
		text += "\n" + g.status
	}
	ebitenutil.DebugPrint(screen, text)

	if !ebiten.IsKeyPressed(ebiten.KeyTab) {
		return
	}
	y := 40
	g.world.NPCs.Each(func(e ecs.Entity, st *component.NPCState) bool {
		name, _, _ := g.world.ArchetypeOf(e)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %-8s %-11s target=%s", e, name, st.CurrentBehavior, st.Target), 10, y)
		y += 16
		return true
	})
}
