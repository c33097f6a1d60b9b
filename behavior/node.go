package behavior

import "github.com/milk9111/npcsim/component"

// Status is the outcome of evaluating a node.
type Status uint8

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Node is one of Sequence, Selector, Condition, Inverter, Action,
// AlwaysSucceed or AlwaysFail. Trees are never mutated once built.
type Node interface {
	isNode()
}

// Sequence fails on the first failing child.
type Sequence struct {
	Children []Node
}

// Selector returns the first child result that is not a failure.
type Selector struct {
	Children []Node
}

type Condition struct {
	Pred Predicate
}

// Inverter swaps success and failure; running passes through.
type Inverter struct {
	Child Node
}

// Action is always running and carries its payload.
type Action struct {
	Act component.NPCAction
}

type AlwaysSucceed struct{}

type AlwaysFail struct{}

func (Sequence) isNode()      {}
func (Selector) isNode()      {}
func (Condition) isNode()     {}
func (Inverter) isNode()      {}
func (Action) isNode()        {}
func (AlwaysSucceed) isNode() {}
func (AlwaysFail) isNode()    {}

func Seq(children ...Node) Node { return Sequence{Children: children} }
func Sel(children ...Node) Node { return Selector{Children: children} }
func Cond(p Predicate) Node     { return Condition{Pred: p} }
func Not(child Node) Node       { return Inverter{Child: child} }

func Do(a component.NPCAction) Node { return Action{Act: a} }

// Tree is a named root node shared by every NPC of an archetype.
type Tree struct {
	Name string
	Root Node
}

func NewTree(name string, root Node) *Tree {
	return &Tree{Name: name, Root: root}
}

// Decide evaluates the tree and returns the selected action, falling back
// to idling when the tree fails or produces nothing.
func (t *Tree) Decide(ctx *Context) component.NPCAction {
	if t == nil || t.Root == nil {
		return component.ActIdle{}
	}
	status, act := Evaluate(ctx, t.Root)
	if status == Failure || act == nil {
		return component.ActIdle{}
	}
	return act
}
