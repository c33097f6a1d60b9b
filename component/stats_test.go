package component

import (
	"math"
	"testing"

	"github.com/milk9111/npcsim/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArmorReduction(t *testing.T) {
	cases := []struct {
		name  string
		armor float64
		want  float64
	}{
		{"none", 0, 0},
		{"negative", -20, 0},
		{"fifty", 50, 50.0 / 150.0},
		{"hundred_halves", 100, 0.5},
		{"heavy", 900, 0.9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, ArmorReduction(c.armor), 1e-12)
			s := NewCombatStats().WithArmor(c.armor)
			assert.InDelta(t, c.want, s.ArmorReduction(), 1e-12)
		})
	}
}

func TestArmorReductionCurve(t *testing.T) {
	for a := 0.0; a <= 1000; a += 7.5 {
		got := ArmorReduction(a)
		require.InDelta(t, a/(a+100), got, 1e-12, "armor %v", a)
		require.Less(t, got, 1.0)
	}
}

func TestRawDamageSumsParts(t *testing.T) {
	events := []DamageEvent{
		{Damage: 5, Blocked: 5},
		{Damage: 10, Resisted: 10},
		{Damage: 3.25, Blocked: 1.5, Resisted: 0.25},
		{},
	}
	for _, e := range events {
		assert.Equal(t, e.Damage+e.Blocked+e.Resisted, e.RawDamage())
	}
}

func TestCooldownNeverNegative(t *testing.T) {
	cases := []struct {
		name  string
		speed float64
		base  float64
		dt    float64
	}{
		{"unit_speed", 1, 1, 0.25},
		{"double_speed", 2, 1, 0.125},
		{"half_speed", 0.5, 0.5, 0.25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewCombatStats().WithAttackSpeed(c.speed)
			s.SetCooldown(c.base)
			require.False(t, s.CanAttack())

			need := c.base / c.speed
			elapsed := 0.0
			for i := 0; i < 64; i++ {
				s.Tick(c.dt)
				elapsed += c.dt
				require.GreaterOrEqual(t, s.AttackCooldown, 0.0)
				assert.Equal(t, elapsed >= need, s.CanAttack(), "elapsed %v need %v", elapsed, need)
			}
		})
	}
}

func TestDeadCannotAttack(t *testing.T) {
	s := NewCombatStats()
	require.True(t, s.CanAttack())
	assert.True(t, s.TakeDamage(250))
	assert.Equal(t, 0.0, s.Health)
	assert.False(t, s.CanAttack())
}

func TestHealthClamped(t *testing.T) {
	s := NewCombatStats().WithHealth(50)
	s.TakeDamage(-30)
	assert.Equal(t, 50.0, s.Health)
	s.TakeDamage(20)
	s.Heal(100)
	assert.Equal(t, 50.0, s.Health)
	assert.Equal(t, 1.0, s.HealthPercent())
}

func TestBuilderClamps(t *testing.T) {
	s := NewCombatStats().
		WithResistance(DamageFire, 1.5).
		WithResistance(DamageIce, -1).
		WithAttackSpeed(0).
		WithDamageMultiplier(-2)
	assert.Equal(t, 1.0, s.Resistance(DamageFire))
	assert.Equal(t, 0.0, s.Resistance(DamageIce))
	assert.Equal(t, 0.0, s.Resistance(DamagePoison))
	assert.Equal(t, 0.1, s.AttackSpeed)
	assert.Equal(t, 0.0, s.DamageMultiplier)

	w := NewWeaponStats(20).WithCooldown(0)
	assert.Equal(t, 0.1, w.Cooldown)
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewCombatStats().WithResistance(DamageFire, 0.5)
	c := s.Clone()
	c.Resistances[DamageFire] = 0
	c.Health = 1
	assert.Equal(t, 0.5, s.Resistance(DamageFire))
	assert.Equal(t, 100.0, s.Health)
}

func TestProjectileActiveTracksTTL(t *testing.T) {
	cases := []struct {
		name   string
		dt     float64
		active bool
	}{
		{"partial", 1, true},
		{"exact", 5, false},
		{"overshoot", 7, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewProjectile(0, common.Vec2{}, common.V(10, 0), 10, ProjectileArrow)
			require.True(t, p.IsActive())
			p.Update(c.dt)
			assert.Equal(t, c.active, p.IsActive())
			assert.Equal(t, p.TTL > 0, p.IsActive())
			assert.InDelta(t, 10*c.dt, p.Position.X, 1e-9)
		})
	}
}

func TestDamageTypeText(t *testing.T) {
	var d DamageType
	require.NoError(t, d.UnmarshalText([]byte("Fire")))
	assert.Equal(t, DamageFire, d)
	assert.Error(t, d.UnmarshalText([]byte("plasma")))
	assert.Equal(t, "electric", DamageElectric.String())
}

func TestCombatPositionAngles(t *testing.T) {
	a := NewCombatPosition(0, 0)
	b := NewCombatPosition(0, 2)
	assert.InDelta(t, math.Pi/2, a.AngleTo(b), 1e-12)
	assert.InDelta(t, 2, a.DistanceTo(b), 1e-12)
	assert.True(t, a.DirectionTo(a).IsZero())
}
