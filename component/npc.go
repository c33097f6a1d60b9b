package component

import (
	"fmt"
	"strings"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/ecs"
)

// NPCType is an NPC archetype.
type NPCType uint8

const (
	NPCPassive NPCType = iota
	NPCNeutral
	NPCHostile
	NPCMerchant
	NPCGuard
)

// NPCTypes lists every archetype in declaration order.
var NPCTypes = []NPCType{NPCPassive, NPCNeutral, NPCHostile, NPCMerchant, NPCGuard}

var npcTypeNames = [...]string{"passive", "neutral", "hostile", "merchant", "guard"}

func (t NPCType) String() string {
	if int(t) < len(npcTypeNames) {
		return npcTypeNames[t]
	}
	return fmt.Sprintf("NPCType(%d)", t)
}

func (t *NPCType) UnmarshalText(text []byte) error {
	parsed, err := ParseNPCType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseNPCType accepts the lower-case archetype names.
func ParseNPCType(s string) (NPCType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range npcTypeNames {
		if n == name {
			return NPCType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown npc type %q", s)
}

// DefaultAggroRange is the flee, provoke or detection distance.
func (t NPCType) DefaultAggroRange() float64 {
	switch t {
	case NPCPassive:
		return 5
	case NPCNeutral:
		return 3
	case NPCHostile:
		return 10
	case NPCGuard:
		return 15
	default:
		return 0
	}
}

func (t NPCType) DefaultWanderRadius() float64 {
	switch t {
	case NPCPassive:
		return 8
	case NPCNeutral:
		return 5
	case NPCHostile:
		return 12
	case NPCMerchant:
		return 2
	case NPCGuard:
		return 3
	default:
		return 0
	}
}

func (t NPCType) CanAttack() bool {
	return t == NPCNeutral || t == NPCHostile || t == NPCGuard
}

func (t NPCType) Flees() bool {
	return t == NPCPassive || t == NPCMerchant
}

// BehaviorID identifies the behavior an NPC is currently executing.
type BehaviorID uint32

const (
	BehaviorIdle BehaviorID = iota
	BehaviorWander
	BehaviorChase
	BehaviorAttack
	BehaviorFlee
	BehaviorReturnHome
	BehaviorPatrol
	BehaviorTrade
	BehaviorMoveTo
)

var behaviorNames = [...]string{"idle", "wander", "chase", "attack", "flee", "return_home", "patrol", "trade", "move_to"}

func (b BehaviorID) String() string {
	if int(b) < len(behaviorNames) {
		return behaviorNames[b]
	}
	return fmt.Sprintf("BehaviorID(%d)", b)
}

// NPCAction is the single action a behavior tree selects for a tick.
type NPCAction interface {
	BehaviorID() BehaviorID
}

type (
	ActIdle       struct{}
	ActWander     struct{}
	ActChase      struct{}
	ActAttack     struct{}
	ActFlee       struct{}
	ActReturnHome struct{}
	ActTrade      struct{}
)

// ActPatrol walks Waypoints in order. An empty list means the NPC's own route.
type ActPatrol struct {
	Waypoints []common.Vec2
}

type ActMoveTo struct {
	Dest common.Vec2
}

func (ActIdle) BehaviorID() BehaviorID       { return BehaviorIdle }
func (ActWander) BehaviorID() BehaviorID     { return BehaviorWander }
func (ActChase) BehaviorID() BehaviorID      { return BehaviorChase }
func (ActAttack) BehaviorID() BehaviorID     { return BehaviorAttack }
func (ActFlee) BehaviorID() BehaviorID       { return BehaviorFlee }
func (ActReturnHome) BehaviorID() BehaviorID { return BehaviorReturnHome }
func (ActPatrol) BehaviorID() BehaviorID     { return BehaviorPatrol }
func (ActTrade) BehaviorID() BehaviorID      { return BehaviorTrade }
func (ActMoveTo) BehaviorID() BehaviorID     { return BehaviorMoveTo }

const DefaultNPCSpeed = 3.0

// NPCState is everything the NPC system tracks for one NPC.
type NPCState struct {
	Type            NPCType
	CurrentBehavior BehaviorID
	// Target is the zero Entity when the NPC has no target.
	Target         ecs.Entity
	Home           common.Vec2
	AggroRange     float64
	WanderRadius   float64
	LastSeenTarget common.Vec2
	HasLastSeen    bool
	WanderTarget   common.Vec2
	HasWander      bool
	Position       common.Vec2
	Facing         float64
	Speed          float64
	Weapon         ItemID
	AttackCooldown float64
	Provoked       bool
	DeaggroTimer   float64
	Patrol         []common.Vec2
	PatrolIndex    int
	BehaviorTime   float64
}

func NewNPCState(t NPCType, pos common.Vec2) *NPCState {
	return &NPCState{
		Type:         t,
		Home:         pos,
		AggroRange:   t.DefaultAggroRange(),
		WanderRadius: t.DefaultWanderRadius(),
		Position:     pos,
		Speed:        DefaultNPCSpeed,
	}
}

func (s *NPCState) WithPatrol(waypoints []common.Vec2) *NPCState {
	s.Patrol = append([]common.Vec2(nil), waypoints...)
	s.PatrolIndex = 0
	return s
}

func (s *NPCState) WithSpeed(speed float64) *NPCState {
	s.Speed = speed
	return s
}

func (s *NPCState) WithWeapon(id ItemID) *NPCState {
	s.Weapon = id
	return s
}

func (s *NPCState) WithAggroRange(r float64) *NPCState {
	s.AggroRange = r
	return s
}

func (s *NPCState) WithWanderRadius(r float64) *NPCState {
	s.WanderRadius = r
	return s
}

// SetTarget gives the NPC its single target.
func (s *NPCState) SetTarget(e ecs.Entity) {
	s.Target = e
}

func (s *NPCState) HasTarget() bool {
	return s.Target.Valid()
}

func (s *NPCState) ClearTarget() {
	s.Target = 0
}

func (s *NPCState) IsAtHome() bool {
	return common.Distance(s.Position, s.Home) < 1
}

func (s *NPCState) IsTooFarFromHome() bool {
	return common.Distance(s.Position, s.Home) > s.WanderRadius*2
}

func (s *NPCState) InWanderRadius() bool {
	return common.Distance(s.Position, s.Home) <= s.WanderRadius
}

func (s *NPCState) DistanceTo(p common.Vec2) float64 {
	return common.Distance(s.Position, p)
}

// DirectionTo is the unit vector toward p, zero when already there.
func (s *NPCState) DirectionTo(p common.Vec2) common.Vec2 {
	d := p.Sub(s.Position)
	if d.Len() < 0.001 {
		return common.Vec2{}
	}
	return d.Normalize()
}

// Clone copies the state, including the patrol route.
func (s *NPCState) Clone() *NPCState {
	if s == nil {
		return nil
	}
	c := *s
	c.Patrol = append([]common.Vec2(nil), s.Patrol...)
	return &c
}
