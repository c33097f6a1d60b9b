package component

import (
	"math"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/ecs"
)

// CombatPosition is where a combatant stands and which way it faces
// (radians, 0 = +X).
type CombatPosition struct {
	Pos    common.Vec2
	Facing float64
}

func NewCombatPosition(x, y float64) CombatPosition {
	return CombatPosition{Pos: common.V(x, y)}
}

func (p CombatPosition) WithFacing(facing float64) CombatPosition {
	p.Facing = facing
	return p
}

func (p CombatPosition) DistanceTo(o CombatPosition) float64 {
	return common.Distance(p.Pos, o.Pos)
}

func (p CombatPosition) AngleTo(o CombatPosition) float64 {
	return common.Heading(p.Pos, o.Pos)
}

func (p CombatPosition) DirectionTo(o CombatPosition) common.Vec2 {
	return o.Pos.Sub(p.Pos).Normalize()
}

func (p CombatPosition) AABB(halfW, halfH float64) common.AABB {
	return common.AABBFromCenter(p.Pos, halfW, halfH)
}

// Projectile is a ranged attack in flight.
type Projectile struct {
	Source     ecs.Entity
	Position   common.Vec2
	Velocity   common.Vec2
	Damage     float64
	DamageType DamageType
	Knockback  float64
	TTL        float64
	Kind       ProjectileKind
	Radius     float64
}

func NewProjectile(source ecs.Entity, pos, vel common.Vec2, damage float64, kind ProjectileKind) Projectile {
	return Projectile{
		Source:     source,
		Position:   pos,
		Velocity:   vel,
		Damage:     damage,
		DamageType: DamagePhysical,
		Knockback:  3,
		TTL:        5,
		Kind:       kind,
		Radius:     0.2,
	}
}

func (p *Projectile) AABB() common.AABB {
	return common.AABBFromCenter(p.Position, p.Radius, p.Radius)
}

// Update integrates position and burns down the time to live.
func (p *Projectile) Update(dt float64) {
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	p.TTL -= dt
}

func (p *Projectile) IsActive() bool {
	return p.TTL > 0
}

// Heading returns the direction of travel in radians.
func (p *Projectile) Heading() float64 {
	return math.Atan2(p.Velocity.Y, p.Velocity.X)
}
