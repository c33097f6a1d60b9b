package component

import (
	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/ecs"
)

// CombatStorage exposes the combat-relevant state owned by the host.
// Stats returns a live pointer; callers that must not observe their own
// writes take a Clone first.
type CombatStorage interface {
	Stats(e ecs.Entity) (*CombatStats, bool)
	CombatPosition(e ecs.Entity) (CombatPosition, bool)
	Weapon(id ItemID) (WeaponStats, bool)
	ApplyKnockback(e ecs.Entity, impulse common.Vec2)
	OnDeath(e ecs.Entity)
}

// CollisionQuery tests boxes against static world geometry.
type CollisionQuery interface {
	CheckCollision(box common.AABB) bool
}

// NPCWorld answers navigation questions. NextWaypoint is a single-step hint;
// ok=false means "head straight for the destination".
type NPCWorld interface {
	HasLineOfSight(from, to common.Vec2) bool
	NextWaypoint(from, to common.Vec2) (common.Vec2, bool)
	IsWalkable(pos common.Vec2) bool
}

// NPCStorage is where NPC movement is published.
type NPCStorage interface {
	Position(e ecs.Entity) (common.Vec2, bool)
	SetPosition(e ecs.Entity, pos common.Vec2)
	Facing(e ecs.Entity) (float64, bool)
	SetFacing(e ecs.Entity, facing float64)
	HealthPercent(e ecs.Entity) (float64, bool)
}
