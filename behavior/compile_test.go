package behavior

import (
	"errors"
	"testing"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hostileYAML = `
name: hostile
root:
  selector:
    - sequence:
        - condition: has_target
        - condition: {target_in_range: 2}
        - condition: can_attack
        - action: attack
    - sequence:
        - condition: has_target
        - condition: {target_in_range: 15}
        - action: chase
    - sequence:
        - condition: too_far_from_home
        - action: return_home
    - action: wander
`

func TestParseTreeMatchesBuiltin(t *testing.T) {
	tree, err := ParseTree([]byte(hostileYAML))
	require.NoError(t, err)
	assert.Equal(t, HostileTree(), tree)
}

func TestParseTreeNodeKinds(t *testing.T) {
	src := `
name: mixed
root:
  selector:
    - inverter:
        condition: is_at_home
    - fail
    - succeed: {}
    - sequence:
        - condition: {health_below: 0.25}
        - action: {move_to: [3, 4.5]}
    - action:
        patrol: [[0, 0], {x: 5, y: 0}]
    - action: {patrol: }
`
	tree, err := ParseTree([]byte(src))
	require.NoError(t, err)

	want := NewTree("mixed", Sel(
		Not(Cond(IsAtHome{})),
		AlwaysFail{},
		AlwaysSucceed{},
		Seq(Cond(HealthBelow{Threshold: 0.25}), Do(component.ActMoveTo{Dest: common.V(3, 4.5)})),
		Do(component.ActPatrol{Waypoints: []common.Vec2{common.V(0, 0), common.V(5, 0)}}),
		Do(component.ActPatrol{}),
	))
	assert.Equal(t, want, tree)
}

func TestParseTreeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"missing_root", "name: x\n"},
		{"unknown_node", "root: {loop: []}\n"},
		{"unknown_condition", "root: {condition: is_hungry}\n"},
		{"unknown_action", "root: {action: dance}\n"},
		{"bad_range", "root: {condition: {target_in_range: far}}\n"},
		{"bad_point", "root: {action: {move_to: [1]}}\n"},
		{"two_kinds", "root: {action: idle, fail: {}}\n"},
		{"script_without_loader", "root: {condition: {script: scripts/x.tengo}}\n"},
		{"not_yaml", "root: [\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseTree([]byte(c.src))
			assert.Error(t, err)
		})
	}
}

func TestParseTreeScriptCondition(t *testing.T) {
	loads := 0
	loader := func(path string) ([]byte, error) {
		loads++
		if path != "scripts/near.tengo" {
			return nil, errors.New("missing")
		}
		return []byte(`result := ctx.has_target && ctx.distance < 4`), nil
	}
	src := `
name: scripted
root:
  selector:
    - sequence:
        - condition: {script: scripts/near.tengo}
        - action: flee
    - sequence:
        - condition: {script: scripts/near.tengo}
        - action: chase
    - action: idle
`
	tree, err := ParseTree([]byte(src), WithScriptLoader(loader))
	require.NoError(t, err)
	assert.Equal(t, 1, loads, "scripts are compiled once per tree")

	npc := npcWithTarget(component.NPCPassive, common.V(0, 0))
	assert.Equal(t, component.ActFlee{}, tree.Decide(&Context{NPC: npc, Target: common.V(3, 0)}))
	assert.Equal(t, component.ActIdle{}, tree.Decide(&Context{NPC: npc, Target: common.V(6, 0)}))

	_, err = ParseTree([]byte("root: {condition: {script: scripts/other.tengo}}\n"), WithScriptLoader(loader))
	assert.Error(t, err)
}

func TestPanickingScriptFallsThrough(t *testing.T) {
	loader := func(string) ([]byte, error) {
		return []byte("z := 0\nresult := 10 / z > 1"), nil
	}
	src := `
root:
  selector:
    - sequence:
        - condition: {script: broken.tengo}
        - action: return_home
    - action: patrol
`
	tree, err := ParseTree([]byte(src), WithScriptLoader(loader))
	require.NoError(t, err)

	npc := component.NewNPCState(component.NPCGuard, common.V(0, 0))
	assert.NotPanics(t, func() {
		assert.Equal(t, component.ActPatrol{}, tree.Decide(&Context{NPC: npc}))
	})
}
