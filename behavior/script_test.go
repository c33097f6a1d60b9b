package behavior

import (
	"testing"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ctx  func() *Context
		want bool
	}{
		{
			name: "health_threshold",
			src:  `result := ctx.health >= 0 && ctx.health < 0.25`,
			ctx: func() *Context {
				return &Context{NPC: component.NewNPCState(component.NPCGuard, common.V(0, 0)), Health: 0.1, HealthKnown: true}
			},
			want: true,
		},
		{
			name: "unknown_health_is_negative",
			src:  `result := ctx.health < 0`,
			ctx: func() *Context {
				return &Context{NPC: component.NewNPCState(component.NPCGuard, common.V(0, 0))}
			},
			want: true,
		},
		{
			name: "visible_calls_world",
			src:  `result := ctx.visible()`,
			ctx: func() *Context {
				return &Context{NPC: component.NewNPCState(component.NPCGuard, common.V(0, 0)), World: &scriptedWorld{sight: []bool{true}}}
			},
			want: true,
		},
		{
			name: "type_name",
			src:  `result := ctx.type == "guard"`,
			ctx: func() *Context {
				return &Context{NPC: component.NewNPCState(component.NPCGuard, common.V(0, 0))}
			},
			want: true,
		},
		{
			name: "missing_result",
			src:  `x := 1`,
			ctx: func() *Context {
				return &Context{NPC: component.NewNPCState(component.NPCGuard, common.V(0, 0))}
			},
			want: false,
		},
		{
			name: "runtime_error",
			src:  "z := 0\nresult := 10 / z > 1",
			ctx: func() *Context {
				return &Context{NPC: component.NewNPCState(component.NPCGuard, common.V(0, 0))}
			},
			want: false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := CompileScript(c.name, []byte(c.src), nil)
			require.NoError(t, err)
			assert.Equal(t, c.want, s.Eval(c.ctx()))
			assert.Equal(t, c.want, s.Eval(c.ctx()), "scripts hold no state between runs")
		})
	}
}

func TestCompileScriptSyntaxError(t *testing.T) {
	_, err := CompileScript("broken", []byte(`result := (`), nil)
	assert.Error(t, err)
}
