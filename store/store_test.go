package store

import (
	"testing"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	got map[ecs.Entity]common.Vec2
}

func (r *recordingSink) ApplyImpulse(e ecs.Entity, impulse common.Vec2) {
	r.got[e] = r.got[e].Add(impulse)
}

func TestStoreRoundTrip(t *testing.T) {
	var a ecs.Allocator
	s := New()
	e := a.Create()
	s.Add(e, common.V(1, 2), 0.5, component.NewCombatStats().WithHealth(40))

	cp, ok := s.CombatPosition(e)
	require.True(t, ok)
	assert.Equal(t, common.V(1, 2), cp.Pos)
	assert.Equal(t, 0.5, cp.Facing)

	s.SetPosition(e, common.V(3, 4))
	s.SetFacing(e, 1)
	pos, _ := s.Position(e)
	facing, _ := s.Facing(e)
	assert.Equal(t, common.V(3, 4), pos)
	assert.Equal(t, 1.0, facing)

	st, ok := s.Stats(e)
	require.True(t, ok)
	st.TakeDamage(10)
	hp, ok := s.HealthPercent(e)
	require.True(t, ok)
	assert.InDelta(t, 0.75, hp, 1e-12)

	s.Remove(e)
	assert.False(t, s.Has(e))
	_, ok = s.HealthPercent(e)
	assert.False(t, ok)
}

func TestStoreWithoutStats(t *testing.T) {
	var a ecs.Allocator
	s := New()
	e := a.Create()
	s.Add(e, common.V(0, 0), 0, nil)
	_, ok := s.Stats(e)
	assert.False(t, ok)
	_, ok = s.HealthPercent(e)
	assert.False(t, ok)
}

func TestStoreKnockbackAndDeaths(t *testing.T) {
	var a ecs.Allocator
	sink := &recordingSink{got: map[ecs.Entity]common.Vec2{}}
	s := New(WithKnockbackSink(sink))
	e := a.Create()

	s.ApplyKnockback(e, common.V(5, 0))
	s.ApplyKnockback(e, common.V(0, 1))
	assert.Equal(t, common.V(5, 1), sink.got[e])

	s.OnDeath(e)
	assert.Equal(t, []ecs.Entity{e}, s.TakeDeaths())
	assert.Empty(t, s.TakeDeaths())
}

func TestStoreWeaponsAndCooldowns(t *testing.T) {
	var a ecs.Allocator
	s := New()
	s.SetWeapon(3, component.NewWeaponStats(25))
	w, ok := s.Weapon(3)
	require.True(t, ok)
	assert.Equal(t, 25.0, w.Damage)
	_, ok = s.Weapon(4)
	assert.False(t, ok)

	e := a.Create()
	st := component.NewCombatStats()
	st.SetCooldown(1)
	s.Add(e, common.V(0, 0), 0, st)
	s.TickCooldowns(0.25)
	s.TickCooldowns(2)
	assert.Equal(t, 0.0, st.AttackCooldown)
}
