package behavior

import (
	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
)

// Context is the read-only input to one evaluation.
type Context struct {
	NPC    *component.NPCState
	Target common.Vec2
	World  component.NPCWorld

	// Health is the NPC's own health fraction, valid when HealthKnown.
	Health      float64
	HealthKnown bool
}

// Evaluate reduces node to a status and the action it selected, if any.
func Evaluate(ctx *Context, node Node) (Status, component.NPCAction) {
	switch n := node.(type) {
	case Sequence:
		var last component.NPCAction
		for _, child := range n.Children {
			status, act := Evaluate(ctx, child)
			if status == Failure {
				return Failure, nil
			}
			if act != nil {
				last = act
			}
		}
		return Success, last
	case Selector:
		for _, child := range n.Children {
			status, act := Evaluate(ctx, child)
			if status != Failure {
				return status, act
			}
		}
		return Failure, nil
	case Condition:
		if Check(ctx, n.Pred) {
			return Success, nil
		}
		return Failure, nil
	case Inverter:
		status, act := Evaluate(ctx, n.Child)
		switch status {
		case Success:
			return Failure, act
		case Failure:
			return Success, act
		default:
			return status, act
		}
	case Action:
		return Running, n.Act
	case AlwaysSucceed:
		return Success, nil
	case AlwaysFail:
		return Failure, nil
	default:
		return Failure, nil
	}
}

// Check evaluates a single predicate.
func Check(ctx *Context, pred Predicate) bool {
	if ctx == nil || ctx.NPC == nil {
		return false
	}
	npc := ctx.NPC
	switch p := pred.(type) {
	case HasTarget:
		return npc.HasTarget()
	case TargetInRange:
		return npc.HasTarget() && npc.DistanceTo(ctx.Target) <= p.Range
	case TargetVisible:
		return npc.HasTarget() && ctx.World != nil && ctx.World.HasLineOfSight(npc.Position, ctx.Target)
	case IsAtHome:
		return npc.IsAtHome()
	case TooFarFromHome:
		return npc.IsTooFarFromHome()
	case HealthBelow:
		return ctx.HealthKnown && ctx.Health < p.Threshold
	case IsProvoked:
		return npc.Provoked
	case InWanderRadius:
		return npc.InWanderRadius()
	case CanAttack:
		return npc.AttackCooldown <= 0
	case *Script:
		return p.Eval(ctx)
	default:
		return false
	}
}
