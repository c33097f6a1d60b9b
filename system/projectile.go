package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
)

// UpdateProjectiles moves every projectile, removes those that hit world
// geometry and then drops expired ones. Hitting entities is left to the
// host; storage is accepted so that integration has what it needs.
func (s *CombatSystem) UpdateProjectiles(dt float64, _ component.CombatStorage, collision component.CollisionQuery) {
	kept := s.projectiles[:0]
	for i := range s.projectiles {
		p := s.projectiles[i]
		p.Update(dt)

		if collision != nil && collision.CheckCollision(p.AABB()) {
			s.log.Debug("projectile impact",
				zap.Stringer("source", p.Source),
				zap.Float64("x", p.Position.X),
				zap.Float64("y", p.Position.Y))
			s.emitter.Emit(projectileEvent(component.EventProjectileImpact, p))
			continue
		}
		if !p.IsActive() {
			s.emitter.Emit(projectileEvent(component.EventProjectileExpired, p))
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(s.projectiles); i++ {
		s.projectiles[i] = component.Projectile{}
	}
	s.projectiles = kept
}

func projectileEvent(t component.CombatEventType, p component.Projectile) component.CombatEvent {
	return component.CombatEvent{
		Type:       t,
		Attacker:   p.Source,
		Damage:     p.Damage,
		DamageType: p.DamageType,
		Position:   p.Position,
		Projectile: p.Kind,
	}
}

// HitTest reports the entity a projectile overlaps, if any.
type HitTest func(p *component.Projectile) (ecs.Entity, bool)

// ResolveProjectileHits consumes every projectile that hit reports as
// touching an entity and turns it into a damage event against that entity.
// The projectile's damage already includes the shooter's multiplier; crits
// are rolled with the shooter's current stats when they still exist.
func (s *CombatSystem) ResolveProjectileHits(storage component.CombatStorage, hit HitTest) []component.DamageEvent {
	if storage == nil || hit == nil {
		return nil
	}
	var events []component.DamageEvent
	kept := s.projectiles[:0]
	for i := range s.projectiles {
		p := s.projectiles[i]
		target, ok := hit(&p)
		if !ok || target == p.Source {
			kept = append(kept, p)
			continue
		}
		ts, ok := storage.Stats(target)
		if !ok || ts.IsDead() {
			kept = append(kept, p)
			continue
		}

		shooter := component.NewCombatStats().WithCritChance(0)
		if as, ok := storage.Stats(p.Source); ok {
			shooter = as.Clone()
		}
		shooter.DamageMultiplier = 1
		weapon := component.NewWeaponStats(p.Damage).WithDamageType(p.DamageType).WithKnockback(p.Knockback)

		ev := s.calculateDamage(p.Source, target, shooter, ts.Clone(), weapon, p.Position)
		events = append(events, ev)
		s.events = append(s.events, ev)
		s.emitter.Emit(projectileEvent(component.EventProjectileImpact, p))
		s.emitter.Emit(component.EventFromDamage(component.EventHit, ev))
	}
	for i := len(kept); i < len(s.projectiles); i++ {
		s.projectiles[i] = component.Projectile{}
	}
	s.projectiles = kept
	return events
}
