package system

import (
	"go.uber.org/zap"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
)

// calculateDamage turns one hit into a DamageEvent. It advances the crit
// generator exactly once and mutates nothing else.
func (s *CombatSystem) calculateDamage(attacker, target ecs.Entity, as, ts *component.CombatStats, weapon component.WeaponStats, pos common.Vec2) component.DamageEvent {
	base := weapon.Damage * as.DamageMultiplier

	critical := s.rng.Float64() < as.CritChance+weapon.CritBonus
	raw := base
	if critical {
		raw *= as.CritMultiplier
	}

	blocked := 0.0
	if weapon.DamageType == component.DamagePhysical {
		blocked = raw * ts.ArmorReduction()
	}
	resisted := (raw - blocked) * ts.Resistance(weapon.DamageType)
	final := max(0, raw-blocked-resisted)

	return component.DamageEvent{
		Source:     attacker,
		Target:     target,
		Damage:     final,
		DamageType: weapon.DamageType,
		Position:   pos,
		Knockback:  knockbackVector(weapon.Knockback),
		Critical:   critical,
		Blocked:    blocked,
		Resisted:   resisted,
	}
}

// knockbackVector points along world +X.
// TODO: push along the attacker->target bearing once hosts agree on it;
// callers already have both positions in calculateDamage.
func knockbackVector(force float64) common.Vec2 {
	if force <= 0 {
		return common.Vec2{}
	}
	return common.V(force, 0)
}

// ApplyDamageEvent applies ev to its target through storage: health is
// reduced, knockback forwarded and OnDeath called when the hit is lethal.
// It reports whether the target is dead afterwards. Targets without stats
// are ignored.
func (s *CombatSystem) ApplyDamageEvent(ev component.DamageEvent, storage component.CombatStorage) bool {
	if storage == nil {
		return false
	}
	stats, ok := storage.Stats(ev.Target)
	if !ok {
		return false
	}
	wasDead := stats.IsDead()
	dead := stats.TakeDamage(ev.Damage)

	if ev.HasKnockback() {
		storage.ApplyKnockback(ev.Target, ev.Knockback)
	}
	s.emitter.Emit(component.EventFromDamage(component.EventDamageApplied, ev))

	if dead && !wasDead {
		s.log.Info("combatant killed",
			zap.Stringer("target", ev.Target),
			zap.Stringer("source", ev.Source),
			zap.Float64("damage", ev.Damage))
		storage.OnDeath(ev.Target)
		s.emitter.Emit(component.EventFromDamage(component.EventDeath, ev))
	}
	return dead
}

// ApplyDamage subtracts ev's damage from stats and reports death.
func (s *CombatSystem) ApplyDamage(ev component.DamageEvent, stats *component.CombatStats) bool {
	if stats == nil {
		return false
	}
	return stats.TakeDamage(ev.Damage)
}
