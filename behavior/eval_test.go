package behavior

import (
	"testing"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWorld answers line-of-sight queries from a fixed script and
// counts how often it was asked.
type scriptedWorld struct {
	sight     []bool
	sightHits int
}

func (w *scriptedWorld) HasLineOfSight(_, _ common.Vec2) bool {
	i := w.sightHits
	w.sightHits++
	if i < len(w.sight) {
		return w.sight[i]
	}
	return false
}

func (w *scriptedWorld) NextWaypoint(_, to common.Vec2) (common.Vec2, bool) { return to, false }
func (w *scriptedWorld) IsWalkable(common.Vec2) bool                        { return true }

func npcWithTarget(t component.NPCType, pos common.Vec2) *component.NPCState {
	s := component.NewNPCState(t, pos)
	s.SetTarget(ecs.FromRaw(7))
	return s
}

func TestSelectorShortCircuits(t *testing.T) {
	w := &scriptedWorld{sight: []bool{false, true, true}}
	ctx := &Context{NPC: npcWithTarget(component.NPCHostile, common.V(0, 0)), World: w}

	root := Sel(
		Seq(Cond(TargetVisible{}), Do(component.ActFlee{})),
		Seq(Cond(TargetVisible{}), Do(component.ActChase{})),
		Seq(Cond(TargetVisible{}), Do(component.ActAttack{})),
	)
	status, act := Evaluate(ctx, root)
	assert.Equal(t, Success, status)
	assert.Equal(t, component.ActChase{}, act)
	assert.Equal(t, 2, w.sightHits, "third child must not be evaluated")
}

func TestSequenceKeepsLastAction(t *testing.T) {
	ctx := &Context{NPC: component.NewNPCState(component.NPCPassive, common.V(0, 0))}
	status, act := Evaluate(ctx, Seq(Do(component.ActWander{}), AlwaysSucceed{}, Do(component.ActIdle{}), AlwaysSucceed{}))
	assert.Equal(t, Success, status)
	assert.Equal(t, component.ActIdle{}, act)

	status, act = Evaluate(ctx, Seq(Do(component.ActWander{}), AlwaysFail{}))
	assert.Equal(t, Failure, status)
	assert.Nil(t, act)
}

func TestNodeStatuses(t *testing.T) {
	ctx := &Context{NPC: component.NewNPCState(component.NPCPassive, common.V(0, 0))}
	cases := []struct {
		name   string
		node   Node
		status Status
		act    component.NPCAction
	}{
		{"succeed", AlwaysSucceed{}, Success, nil},
		{"fail", AlwaysFail{}, Failure, nil},
		{"action_running", Do(component.ActTrade{}), Running, component.ActTrade{}},
		{"invert_success", Not(AlwaysSucceed{}), Failure, nil},
		{"invert_failure", Not(AlwaysFail{}), Success, nil},
		{"invert_running_keeps_action", Not(Do(component.ActFlee{})), Running, component.ActFlee{}},
		{"empty_selector", Sel(), Failure, nil},
		{"empty_sequence", Seq(), Success, nil},
		{"selector_passes_running", Sel(AlwaysFail{}, Do(component.ActWander{})), Running, component.ActWander{}},
		{"condition_never_acts", Cond(IsAtHome{}), Success, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, act := Evaluate(ctx, c.node)
			assert.Equal(t, c.status, status)
			assert.Equal(t, c.act, act)
		})
	}
}

func TestPredicates(t *testing.T) {
	home := common.V(0, 0)
	cases := []struct {
		name  string
		setup func(s *component.NPCState, ctx *Context)
		pred  Predicate
		want  bool
	}{
		{"no_target", func(*component.NPCState, *Context) {}, HasTarget{}, false},
		{"has_target", func(s *component.NPCState, _ *Context) { s.SetTarget(ecs.FromRaw(3)) }, HasTarget{}, true},
		{"in_range_needs_target", func(_ *component.NPCState, c *Context) { c.Target = common.V(1, 0) }, TargetInRange{Range: 2}, false},
		{"in_range", func(s *component.NPCState, c *Context) {
			s.SetTarget(ecs.FromRaw(3))
			c.Target = common.V(2, 0)
		}, TargetInRange{Range: 2}, true},
		{"out_of_range", func(s *component.NPCState, c *Context) {
			s.SetTarget(ecs.FromRaw(3))
			c.Target = common.V(2.5, 0)
		}, TargetInRange{Range: 2}, false},
		{"at_home", func(*component.NPCState, *Context) {}, IsAtHome{}, true},
		{"too_far", func(s *component.NPCState, _ *Context) { s.Position = common.V(30, 0) }, TooFarFromHome{}, true},
		{"in_wander_radius", func(s *component.NPCState, _ *Context) { s.Position = common.V(5, 0) }, InWanderRadius{}, true},
		{"provoked", func(s *component.NPCState, _ *Context) { s.Provoked = true }, IsProvoked{}, true},
		{"cooldown_blocks_attack", func(s *component.NPCState, _ *Context) { s.AttackCooldown = 0.5 }, CanAttack{}, false},
		{"ready_to_attack", func(*component.NPCState, *Context) {}, CanAttack{}, true},
		{"health_unknown", func(*component.NPCState, *Context) {}, HealthBelow{Threshold: 0.95}, false},
		{"health_low", func(_ *component.NPCState, c *Context) {
			c.Health, c.HealthKnown = 0.2, true
		}, HealthBelow{Threshold: 0.3}, true},
		{"health_fine", func(_ *component.NPCState, c *Context) {
			c.Health, c.HealthKnown = 0.8, true
		}, HealthBelow{Threshold: 0.3}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := component.NewNPCState(component.NPCNeutral, home)
			ctx := &Context{NPC: s, World: &scriptedWorld{}}
			c.setup(s, ctx)
			assert.Equal(t, c.want, Check(ctx, c.pred))
		})
	}
}

func TestTreeDecideFallsBackToIdle(t *testing.T) {
	ctx := &Context{NPC: component.NewNPCState(component.NPCPassive, common.V(0, 0))}

	var nilTree *Tree
	assert.Equal(t, component.ActIdle{}, nilTree.Decide(ctx))
	assert.Equal(t, component.ActIdle{}, NewTree("fail", AlwaysFail{}).Decide(ctx))
	assert.Equal(t, component.ActIdle{}, NewTree("succeed", AlwaysSucceed{}).Decide(ctx))
	require.Equal(t, component.ActWander{}, NewTree("w", Do(component.ActWander{})).Decide(ctx))
}
