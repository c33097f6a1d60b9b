package system

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/npcsim/behavior"
	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
	"github.com/milk9111/npcsim/physics"
	"github.com/milk9111/npcsim/store"
)

const player = ecs.Entity(100)

// openWorld has no walls.
type openWorld struct{}

func (openWorld) HasLineOfSight(_, _ common.Vec2) bool { return true }
func (openWorld) NextWaypoint(_, to common.Vec2) (common.Vec2, bool) {
	return to, true
}
func (openWorld) IsWalkable(common.Vec2) bool { return true }

func tick(s *NPCSystem, n int, dt float64, playerPos common.Vec2, st *store.Store, cs *CombatSystem) {
	p := ecs.Entity(0)
	var storage component.NPCStorage
	if st != nil {
		storage = st
		if st.Has(player) {
			p = player
		}
	}
	for range n {
		s.Update(dt, p, playerPos, openWorld{}, storage, cs)
	}
}

func TestNeutralProvokeAndDeaggro(t *testing.T) {
	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCNeutral, common.V(0, 0))
	require.NoError(t, err)

	s.Provoke(npc, ecs.Entity(50))
	got, ok := s.Get(npc)
	require.True(t, ok)
	assert.True(t, got.Provoked)
	assert.Equal(t, ecs.Entity(50), got.Target)

	tick(s, 19, 0.5, common.V(30, 30), store.New(), nil)
	got, _ = s.Get(npc)
	assert.True(t, got.Provoked, "still angry after 9.5s")

	tick(s, 1, 0.5, common.V(30, 30), store.New(), nil)
	got, _ = s.Get(npc)
	assert.False(t, got.Provoked)
	assert.False(t, got.HasTarget())
}

func TestProvokeIgnoredByPassive(t *testing.T) {
	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCPassive, common.V(0, 0))
	require.NoError(t, err)

	s.Provoke(npc, ecs.Entity(50))
	s.Provoke(ecs.Entity(77), ecs.Entity(50))
	got, _ := s.Get(npc)
	assert.False(t, got.Provoked)
	assert.False(t, got.HasTarget())
}

func TestNPCLifecycle(t *testing.T) {
	s := NewNPCSystem()
	e, err := s.SpawnNPC(component.NPCHostile, common.V(1, 2))
	require.NoError(t, err)
	assert.True(t, e.Valid())
	assert.Equal(t, 1, s.Len())

	assert.ErrorIs(t, s.RegisterNPC(e, component.NPCHostile, common.V(0, 0)), ErrAlreadyRegistered)
	assert.ErrorIs(t, s.RegisterNPC(0, component.NPCHostile, common.V(0, 0)), ErrNPCNotFound)

	external := ecs.FromRaw(3<<32 | 5)
	require.NoError(t, s.RegisterNPC(external, component.NPCMerchant, common.V(4, 4)))
	assert.Equal(t, 2, s.Len())
	for range 6 {
		fresh, err := s.SpawnNPC(component.NPCPassive, common.V(0, 0))
		require.NoError(t, err)
		assert.NotEqual(t, external.Index(), fresh.Index())
	}

	st, err := s.DespawnNPC(e)
	require.NoError(t, err)
	assert.Equal(t, component.NPCHostile, st.Type)
	assert.Equal(t, common.V(1, 2), st.Home)

	_, err = s.DespawnNPC(e)
	var nf *NPCNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, e, nf.Entity)
	_, ok := s.Get(e)
	assert.False(t, ok)
}

func TestMissingBehaviorTree(t *testing.T) {
	s := NewNPCSystem()
	s.RegisterBehaviorTree(component.NPCGuard, nil)
	_, ok := s.BehaviorTree(component.NPCGuard)
	assert.False(t, ok)

	_, err := s.SpawnNPC(component.NPCGuard, common.V(0, 0))
	var bnf *BehaviorNotFoundError
	require.ErrorAs(t, err, &bnf)
	assert.Equal(t, component.NPCGuard, bnf.Type)
	assert.ErrorIs(t, s.RegisterNPC(ecs.Entity(9), component.NPCGuard, common.V(0, 0)), ErrBehaviorNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestHostileAcquiresAndAttacks(t *testing.T) {
	st := store.New()
	st.Add(player, common.V(1, 0), math.Pi, component.NewCombatStats())
	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCHostile, common.V(0, 0))
	require.NoError(t, err)
	st.Add(npc, common.V(0, 0), 0, component.NewCombatStats().WithCritChance(0))
	cs := NewCombatSystem()

	tick(s, 1, 0.1, common.V(1, 0), st, cs)
	got, _ := s.Get(npc)
	assert.Equal(t, player, got.Target)
	assert.Equal(t, component.BehaviorAttack, got.CurrentBehavior)
	assert.Equal(t, 1, cs.QueueLen())
	assert.InDelta(t, 1.0, got.AttackCooldown, 1e-9)

	events := cs.ProcessAttacks(st, noWalls{})
	require.Len(t, events, 1)
	assert.Equal(t, npc, events[0].Source)
	assert.Equal(t, player, events[0].Target)

	// Cooling down, so it closes in instead.
	tick(s, 1, 0.1, common.V(1, 0), st, cs)
	got, _ = s.Get(npc)
	assert.Equal(t, component.BehaviorChase, got.CurrentBehavior)
	assert.Equal(t, 0, cs.QueueLen())
	assert.InDelta(t, 0.3, got.Position.X, 1e-9)
}

func TestHostileIgnoresDistantPlayer(t *testing.T) {
	st := store.New()
	st.Add(player, common.V(50, 50), 0, component.NewCombatStats())
	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCHostile, common.V(0, 0))
	require.NoError(t, err)

	tick(s, 1, 0.1, common.V(50, 50), st, nil)
	got, _ := s.Get(npc)
	assert.False(t, got.HasTarget())
	assert.Equal(t, component.BehaviorWander, got.CurrentBehavior)
	require.True(t, got.HasWander)
	assert.LessOrEqual(t, common.Distance(got.WanderTarget, got.Home), got.WanderRadius)
}

func TestWanderIsDeterministic(t *testing.T) {
	run := func() []common.Vec2 {
		s := NewNPCSystem(WithWanderSeed(7))
		npc, err := s.SpawnNPC(component.NPCPassive, common.V(10, 10))
		require.NoError(t, err)
		var path []common.Vec2
		for range 100 {
			s.Update(0.1, 0, common.Vec2{}, openWorld{}, nil, nil)
			got, _ := s.Get(npc)
			path = append(path, got.Position)
		}
		return path
	}
	a := run()
	assert.Equal(t, a, run())
	assert.NotEqual(t, common.V(10, 10), a[len(a)-1])
}

func TestPassiveFlees(t *testing.T) {
	st := store.New()
	st.Add(player, common.V(2, 0), 0, component.NewCombatStats())
	s := NewNPCSystem(WithAcquirers(component.NPCHostile, component.NPCPassive))
	npc, err := s.SpawnNPC(component.NPCPassive, common.V(0, 0))
	require.NoError(t, err)
	st.Add(npc, common.V(0, 0), 0, component.NewCombatStats())

	tick(s, 1, 0.1, common.V(2, 0), st, nil)
	got, _ := s.Get(npc)
	assert.Equal(t, component.BehaviorFlee, got.CurrentBehavior)
	assert.InDelta(t, -0.45, got.Position.X, 1e-9)
	assert.InDelta(t, math.Pi, math.Abs(got.Facing), 1e-9)

	pos, ok := st.Position(npc)
	require.True(t, ok)
	assert.Equal(t, got.Position, pos)
	facing, _ := st.Facing(npc)
	assert.Equal(t, got.Facing, facing)
}

func TestOnlyHostilesAcquireByDefault(t *testing.T) {
	for _, c := range []struct {
		typ  component.NPCType
		want bool
	}{
		{component.NPCHostile, true},
		{component.NPCPassive, false},
		{component.NPCGuard, false},
		{component.NPCMerchant, false},
		{component.NPCNeutral, false},
	} {
		t.Run(c.typ.String(), func(t *testing.T) {
			st := store.New()
			st.Add(player, common.V(3, 0), 0, component.NewCombatStats())
			s := NewNPCSystem()
			npc, err := s.SpawnNPC(c.typ, common.V(0, 0))
			require.NoError(t, err)

			tick(s, 1, 0.1, common.V(3, 0), st, nil)
			got, _ := s.Get(npc)
			assert.Equal(t, c.want, got.HasTarget())
			if !c.want {
				assert.NotEqual(t, component.BehaviorFlee, got.CurrentBehavior)
				assert.NotEqual(t, component.BehaviorChase, got.CurrentBehavior)
			}
		})
	}
}

func TestProvokableArchetypes(t *testing.T) {
	s := NewNPCSystem()
	guard, err := s.SpawnNPC(component.NPCGuard, common.V(0, 0))
	require.NoError(t, err)
	s.Provoke(guard, ecs.Entity(50))
	got, _ := s.Get(guard)
	assert.False(t, got.Provoked)

	s = NewNPCSystem(WithProvokable(component.NPCNeutral, component.NPCGuard))
	guard, err = s.SpawnNPC(component.NPCGuard, common.V(0, 0))
	require.NoError(t, err)
	s.Provoke(guard, ecs.Entity(50))
	got, _ = s.Get(guard)
	assert.True(t, got.Provoked)
	assert.Equal(t, ecs.Entity(50), got.Target)
}

func TestRegisterRejectsOccupiedSlot(t *testing.T) {
	s := NewNPCSystem()
	hostile, err := s.SpawnNPC(component.NPCHostile, common.V(0, 0))
	require.NoError(t, err)

	otherGen := ecs.FromRaw(1<<32 | uint64(hostile.Index()))
	require.NotEqual(t, hostile, otherGen)
	assert.ErrorIs(t, s.RegisterNPC(otherGen, component.NPCPassive, common.V(1, 1)), ErrAlreadyRegistered)
	assert.Equal(t, 1, s.Len())

	_, err = s.DespawnNPC(hostile)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.ByType(component.NPCHostile))
}

func TestGuardPatrols(t *testing.T) {
	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCGuard, common.V(0, 0))
	require.NoError(t, err)
	require.NoError(t, s.SetPatrol(npc, []common.Vec2{common.V(2, 0), common.V(2, 2)}, openWorld{}))

	tick(s, 10, 0.1, common.Vec2{}, nil, nil)
	got, _ := s.Get(npc)
	assert.Equal(t, component.BehaviorPatrol, got.CurrentBehavior)
	assert.Equal(t, 1, got.PatrolIndex)
	assert.InDelta(t, 2, got.Position.X, 0.5)
}

func TestSetPatrolValidatesRoute(t *testing.T) {
	space := physics.NewSpace(common.NewAABB(0, 0, 20, 20), 1)
	space.AddWall(common.NewAABB(9, 0, 11, 20))

	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCGuard, common.V(2, 2))
	require.NoError(t, err)

	cases := []struct {
		name  string
		route []common.Vec2
		want  error
	}{
		{"reachable", []common.Vec2{common.V(2, 8), common.V(5, 5)}, nil},
		{"inside_wall", []common.Vec2{common.V(10, 5)}, ErrPathfindingFailed},
		{"other_side", []common.Vec2{common.V(3, 3), common.V(15, 5)}, ErrPathfindingFailed},
		{"outside_bounds", []common.Vec2{common.V(-5, 5)}, ErrPathfindingFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := s.SetPatrol(npc, c.route, space)
			if c.want == nil {
				require.NoError(t, err)
				got, _ := s.Get(npc)
				assert.Equal(t, c.route, got.Patrol)
				return
			}
			assert.ErrorIs(t, err, c.want)
		})
	}

	var pf *PathfindingFailedError
	require.ErrorAs(t, s.SetPatrol(npc, []common.Vec2{common.V(3, 3), common.V(15, 5)}, space), &pf)
	assert.Equal(t, common.V(3, 3), pf.From)
	assert.Equal(t, common.V(15, 5), pf.To)

	assert.ErrorIs(t, s.SetPatrol(ecs.Entity(999), nil, space), ErrNPCNotFound)
}

func TestHealthBelowReadsStorage(t *testing.T) {
	s := NewNPCSystem()
	s.RegisterBehaviorTree(component.NPCHostile, behavior.NewTree("coward", behavior.Sel(
		behavior.Seq(behavior.Cond(behavior.HealthBelow{Threshold: 0.5}), behavior.Do(component.ActFlee{})),
		behavior.Do(component.ActIdle{}),
	)))
	npc, err := s.SpawnNPC(component.NPCHostile, common.V(0, 0))
	require.NoError(t, err)

	st := store.New()
	stats := component.NewCombatStats()
	st.Add(npc, common.V(0, 0), 0, stats)

	tick(s, 1, 0.1, common.Vec2{}, st, nil)
	got, _ := s.Get(npc)
	assert.Equal(t, component.BehaviorIdle, got.CurrentBehavior)

	stats.TakeDamage(60)
	tick(s, 1, 0.1, common.Vec2{}, st, nil)
	got, _ = s.Get(npc)
	assert.Equal(t, component.BehaviorFlee, got.CurrentBehavior)
	assert.Equal(t, 0.0, got.BehaviorTime)
}

func TestMerchantReturnsHome(t *testing.T) {
	s := NewNPCSystem()
	npc, err := s.SpawnNPC(component.NPCMerchant, common.V(0, 0))
	require.NoError(t, err)
	live, ok := s.State(npc)
	require.True(t, ok)
	live.Position = common.V(3, 0)

	tick(s, 1, 0.1, common.Vec2{}, nil, nil)
	got, _ := s.Get(npc)
	assert.Equal(t, component.BehaviorReturnHome, got.CurrentBehavior)
	assert.InDelta(t, 2.7, got.Position.X, 1e-9)
}

func TestQueries(t *testing.T) {
	s := NewNPCSystem()
	a, _ := s.SpawnNPC(component.NPCHostile, common.V(0, 0))
	b, _ := s.SpawnNPC(component.NPCPassive, common.V(3, 0))
	c, _ := s.SpawnNPC(component.NPCHostile, common.V(10, 0))

	assert.Equal(t, []ecs.Entity{a, c}, s.ByType(component.NPCHostile))
	assert.Empty(t, s.ByType(component.NPCGuard))
	assert.Equal(t, []ecs.Entity{a, b}, s.InRange(common.V(1, 0), 2))

	var seen []ecs.Entity
	s.Each(func(e ecs.Entity, _ *component.NPCState) bool {
		seen = append(seen, e)
		return len(seen) < 2
	})
	assert.Equal(t, []ecs.Entity{a, b}, seen)

	got, _ := s.Get(a)
	got.Position = common.V(99, 99)
	again, _ := s.Get(a)
	assert.Equal(t, common.V(0, 0), again.Position)
}
