package component

import (
	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/ecs"
)

// CombatEventType defines the kind of combat event.
type CombatEventType string

const (
	EventHit               CombatEventType = "hit"
	EventDamageApplied     CombatEventType = "damage_applied"
	EventDeath             CombatEventType = "death"
	EventAttackDropped     CombatEventType = "attack_dropped"
	EventProjectileSpawned CombatEventType = "projectile_spawned"
	EventProjectileImpact  CombatEventType = "projectile_impact"
	EventProjectileExpired CombatEventType = "projectile_expired"
)

// CombatEvent is emitted during combat resolution.
type CombatEvent struct {
	Type       CombatEventType
	Attacker   ecs.Entity
	Target     ecs.Entity
	Damage     float64
	DamageType DamageType
	Position   common.Vec2
	Knockback  common.Vec2
	Critical   bool
	Projectile ProjectileKind
}

// CombatEventHandler handles combat events.
type CombatEventHandler func(evt CombatEvent)

// CombatEventEmitter fans combat events out to its handlers.
type CombatEventEmitter struct {
	Handlers []CombatEventHandler
}

// Subscribe registers h for every future event.
func (e *CombatEventEmitter) Subscribe(h CombatEventHandler) {
	if e == nil || h == nil {
		return
	}
	e.Handlers = append(e.Handlers, h)
}

// Emit sends a combat event to all handlers.
func (e *CombatEventEmitter) Emit(evt CombatEvent) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(evt)
		}
	}
}

// EventFromDamage builds an event of type t describing d.
func EventFromDamage(t CombatEventType, d DamageEvent) CombatEvent {
	return CombatEvent{
		Type:       t,
		Attacker:   d.Source,
		Target:     d.Target,
		Damage:     d.Damage,
		DamageType: d.DamageType,
		Position:   d.Position,
		Knockback:  d.Knockback,
		Critical:   d.Critical,
	}
}
