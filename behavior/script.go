package behavior

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"
)

// Script is a data-authored predicate. The source sees a read-only `ctx`
// map describing the NPC and must assign a boolean `result`.
//
//	result := ctx.has_target && ctx.health < 0.25
type Script struct {
	Name     string
	compiled *tengo.Compiled
	log      *zap.Logger
}

// CompileScript compiles src once; every Eval runs a clone of it.
func CompileScript(name string, src []byte, log *zap.Logger) (*Script, error) {
	if log == nil {
		log = zap.NewNop()
	}
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math", "text"))
	if err := script.Add("ctx", map[string]interface{}{}); err != nil {
		return nil, fmt.Errorf("behavior: script %s: %w", name, err)
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("behavior: compile script %s: %w", name, err)
	}
	return &Script{Name: name, compiled: compiled, log: log}, nil
}

// Eval runs the script against ctx. Runtime errors, including panics
// raised inside the VM, and a missing or non-boolean result count as false.
func (s *Script) Eval(ctx *Context) (ok bool) {
	if s == nil || s.compiled == nil || ctx == nil || ctx.NPC == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Debug("script panicked", zap.String("script", s.Name), zap.Any("panic", r))
			ok = false
		}
	}()
	run := s.compiled.Clone()
	if err := run.Set("ctx", scriptContext(ctx)); err != nil {
		s.log.Debug("script context rejected", zap.String("script", s.Name), zap.Error(err))
		return false
	}
	if err := run.Run(); err != nil {
		s.log.Debug("script failed", zap.String("script", s.Name), zap.Error(err))
		return false
	}
	if !run.IsDefined("result") {
		return false
	}
	return run.Get("result").Bool()
}

func scriptContext(ctx *Context) map[string]interface{} {
	npc := ctx.NPC
	health := -1.0
	if ctx.HealthKnown {
		health = ctx.Health
	}
	return map[string]interface{}{
		"type":          npc.Type.String(),
		"x":             npc.Position.X,
		"y":             npc.Position.Y,
		"home_x":        npc.Home.X,
		"home_y":        npc.Home.Y,
		"target_x":      ctx.Target.X,
		"target_y":      ctx.Target.Y,
		"has_target":    npc.HasTarget(),
		"distance":      npc.DistanceTo(ctx.Target),
		"home_distance": npc.DistanceTo(npc.Home),
		"aggro_range":   npc.AggroRange,
		"wander_radius": npc.WanderRadius,
		"provoked":      npc.Provoked,
		"attack_ready":  npc.AttackCooldown <= 0,
		"behavior_time": npc.BehaviorTime,
		"health":        health,
		"visible": &tengo.UserFunction{Name: "visible", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if ctx.World != nil && ctx.World.HasLineOfSight(npc.Position, ctx.Target) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		}},
	}
}
