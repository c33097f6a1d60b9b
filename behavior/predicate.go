package behavior

// Predicate is a named test against the evaluation context. The set is
// closed; Evaluate switches over every implementation.
type Predicate interface {
	isPredicate()
}

type HasTarget struct{}

// TargetInRange requires a target no further than Range away.
type TargetInRange struct {
	Range float64
}

type TargetVisible struct{}

type IsAtHome struct{}

type TooFarFromHome struct{}

// HealthBelow compares the NPC's own health fraction against Threshold.
// Unknown health never satisfies it.
type HealthBelow struct {
	Threshold float64
}

type IsProvoked struct{}

type InWanderRadius struct{}

type CanAttack struct{}

func (HasTarget) isPredicate()      {}
func (TargetInRange) isPredicate()  {}
func (TargetVisible) isPredicate()  {}
func (IsAtHome) isPredicate()       {}
func (TooFarFromHome) isPredicate() {}
func (HealthBelow) isPredicate()    {}
func (IsProvoked) isPredicate()     {}
func (InWanderRadius) isPredicate() {}
func (CanAttack) isPredicate()      {}
func (*Script) isPredicate()        {}
