package component

import "maps"

const minAttackSpeed = 0.1

// CombatStats holds a combatant's health and offensive/defensive numbers.
type CombatStats struct {
	Health           float64
	MaxHealth        float64
	Armor            float64
	Resistances      map[DamageType]float64
	AttackSpeed      float64
	DamageMultiplier float64
	CritChance       float64
	CritMultiplier   float64
	AttackCooldown   float64
}

// NewCombatStats returns stats with the standard defaults.
func NewCombatStats() *CombatStats {
	return &CombatStats{
		Health:           100,
		MaxHealth:        100,
		Resistances:      map[DamageType]float64{},
		AttackSpeed:      1,
		DamageMultiplier: 1,
		CritChance:       0.05,
		CritMultiplier:   2,
	}
}

// WithHealth sets both current and maximum health.
func (s *CombatStats) WithHealth(health float64) *CombatStats {
	s.Health = health
	s.MaxHealth = health
	return s
}

func (s *CombatStats) WithArmor(armor float64) *CombatStats {
	s.Armor = armor
	return s
}

func (s *CombatStats) WithResistance(t DamageType, value float64) *CombatStats {
	if s.Resistances == nil {
		s.Resistances = map[DamageType]float64{}
	}
	s.Resistances[t] = clamp01(value)
	return s
}

func (s *CombatStats) WithAttackSpeed(speed float64) *CombatStats {
	s.AttackSpeed = max(speed, minAttackSpeed)
	return s
}

func (s *CombatStats) WithDamageMultiplier(mult float64) *CombatStats {
	s.DamageMultiplier = max(mult, 0)
	return s
}

func (s *CombatStats) WithCritChance(chance float64) *CombatStats {
	s.CritChance = chance
	return s
}

// Clone returns an independent copy.
func (s *CombatStats) Clone() *CombatStats {
	if s == nil {
		return nil
	}
	c := *s
	c.Resistances = maps.Clone(s.Resistances)
	return &c
}

func (s *CombatStats) IsDead() bool {
	return s == nil || s.Health <= 0
}

// HealthPercent returns health as a fraction of max in [0,1].
func (s *CombatStats) HealthPercent() float64 {
	if s == nil || s.MaxHealth <= 0 {
		return 0
	}
	return clamp01(s.Health / s.MaxHealth)
}

// Heal restores health up to MaxHealth.
func (s *CombatStats) Heal(amount float64) {
	if s == nil || amount <= 0 {
		return
	}
	s.Health = min(s.Health+amount, s.MaxHealth)
}

// TakeDamage subtracts amount, clamping health to [0, MaxHealth], and
// reports whether the combatant is now dead.
func (s *CombatStats) TakeDamage(amount float64) bool {
	if s == nil {
		return false
	}
	s.Health -= amount
	if s.Health < 0 {
		s.Health = 0
	}
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
	return s.IsDead()
}

// Resistance returns the resistance for t, zero if unset.
func (s *CombatStats) Resistance(t DamageType) float64 {
	if s == nil {
		return 0
	}
	return clamp01(s.Resistances[t])
}

func (s *CombatStats) ArmorReduction() float64 {
	if s == nil {
		return 0
	}
	return ArmorReduction(s.Armor)
}

// ArmorReduction is the fraction of physical damage blocked by armor.
func ArmorReduction(armor float64) float64 {
	if armor <= 0 {
		return 0
	}
	return armor / (armor + 100)
}

// Tick counts the attack cooldown down, never below zero.
func (s *CombatStats) Tick(dt float64) {
	if s == nil {
		return
	}
	s.AttackCooldown = max(s.AttackCooldown-dt, 0)
}

func (s *CombatStats) CanAttack() bool {
	return s != nil && s.AttackCooldown <= 0 && !s.IsDead()
}

// SetCooldown starts a cooldown of base seconds scaled by attack speed.
func (s *CombatStats) SetCooldown(base float64) {
	if s == nil {
		return
	}
	s.AttackCooldown = max(base/max(s.AttackSpeed, minAttackSpeed), 0)
}

// WeaponStats is the read-only description of a weapon.
type WeaponStats struct {
	Damage     float64
	DamageType DamageType
	Shape      AttackShape
	Cooldown   float64
	Knockback  float64
	CritBonus  float64
}

// DefaultWeaponStats is used when an attack names no weapon, or an
// unknown one.
func DefaultWeaponStats() WeaponStats {
	return WeaponStats{
		Damage:     10,
		DamageType: DamagePhysical,
		Shape:      DefaultAttackShape(),
		Cooldown:   0.5,
		Knockback:  5,
	}
}

func NewWeaponStats(damage float64) WeaponStats {
	w := DefaultWeaponStats()
	w.Damage = damage
	return w
}

func (w WeaponStats) WithDamageType(t DamageType) WeaponStats {
	w.DamageType = t
	return w
}

func (w WeaponStats) WithShape(shape AttackShape) WeaponStats {
	w.Shape = shape
	return w
}

func (w WeaponStats) WithCooldown(cooldown float64) WeaponStats {
	w.Cooldown = max(cooldown, 0.1)
	return w
}

func (w WeaponStats) WithKnockback(knockback float64) WeaponStats {
	w.Knockback = knockback
	return w
}

func (w WeaponStats) WithCritBonus(bonus float64) WeaponStats {
	w.CritBonus = bonus
	return w
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
