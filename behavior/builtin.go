package behavior

import "github.com/milk9111/npcsim/component"

// HostileTree attacks in reach, chases within detection range, heads home
// when it strays too far and wanders otherwise.
func HostileTree() *Tree {
	return NewTree("hostile", Sel(
		Seq(
			Cond(HasTarget{}),
			Cond(TargetInRange{Range: 2}),
			Cond(CanAttack{}),
			Do(component.ActAttack{}),
		),
		Seq(
			Cond(HasTarget{}),
			Cond(TargetInRange{Range: 15}),
			Do(component.ActChase{}),
		),
		Seq(
			Cond(TooFarFromHome{}),
			Do(component.ActReturnHome{}),
		),
		Do(component.ActWander{}),
	))
}

func PassiveTree() *Tree {
	return NewTree("passive", Sel(
		Seq(
			Cond(HasTarget{}),
			Cond(TargetInRange{Range: 5}),
			Do(component.ActFlee{}),
		),
		Seq(
			Cond(TooFarFromHome{}),
			Do(component.ActReturnHome{}),
		),
		Do(component.ActWander{}),
	))
}

// NeutralTree behaves like HostileTree but only while provoked.
func NeutralTree() *Tree {
	return NewTree("neutral", Sel(
		Seq(
			Cond(IsProvoked{}),
			Cond(HasTarget{}),
			Cond(TargetInRange{Range: 2}),
			Cond(CanAttack{}),
			Do(component.ActAttack{}),
		),
		Seq(
			Cond(IsProvoked{}),
			Cond(HasTarget{}),
			Do(component.ActChase{}),
		),
		Seq(
			Cond(TooFarFromHome{}),
			Do(component.ActReturnHome{}),
		),
		Do(component.ActWander{}),
	))
}

// GuardTree engages inside its patrol area and walks its route otherwise.
func GuardTree() *Tree {
	return NewTree("guard", Sel(
		Seq(
			Cond(HasTarget{}),
			Cond(TargetInRange{Range: 2}),
			Cond(CanAttack{}),
			Do(component.ActAttack{}),
		),
		Seq(
			Cond(HasTarget{}),
			Cond(InWanderRadius{}),
			Do(component.ActChase{}),
		),
		Do(component.ActPatrol{}),
	))
}

func MerchantTree() *Tree {
	return NewTree("merchant", Sel(
		Seq(
			Cond(HasTarget{}),
			Cond(TargetInRange{Range: 3}),
			Do(component.ActTrade{}),
		),
		Seq(
			Not(Cond(IsAtHome{})),
			Do(component.ActReturnHome{}),
		),
		Do(component.ActIdle{}),
	))
}

// DefaultTree returns the built-in tree for t, or nil for an unknown type.
func DefaultTree(t component.NPCType) *Tree {
	switch t {
	case component.NPCHostile:
		return HostileTree()
	case component.NPCPassive:
		return PassiveTree()
	case component.NPCNeutral:
		return NeutralTree()
	case component.NPCGuard:
		return GuardTree()
	case component.NPCMerchant:
		return MerchantTree()
	default:
		return nil
	}
}
