package system

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/milk9111/npcsim/behavior"
	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
)

const (
	defaultWanderSeed = 12345
	deaggroSeconds    = 10.0
	wanderRepick      = 3.0
	arriveDistance    = 0.5
	stopDistance      = 0.1
	npcAttackRange    = 2.0
	npcAttackDamage   = 10.0
	npcAttackCooldown = 1.0
	wanderSpeedFactor = 0.5
	fleeSpeedFactor   = 1.5
	fleeLookahead     = 2.0
)

// NPCSystem owns every NPC's state and one behavior tree per archetype.
// Update ticks them all in a stable order.
type NPCSystem struct {
	npcs  ecs.SparseSet[*component.NPCState]
	trees map[component.NPCType]*behavior.Tree
	owned map[ecs.Entity]struct{}

	acquirers  map[component.NPCType]bool
	provokable map[component.NPCType]bool

	alloc *ecs.Allocator
	rng   *common.LCG
	log   *zap.Logger
}

type NPCOption func(*NPCSystem)

func WithNPCLogger(log *zap.Logger) NPCOption {
	return func(s *NPCSystem) {
		if log != nil {
			s.log = log
		}
	}
}

// WithWanderSeed seeds the generator used to pick wander targets.
func WithWanderSeed(seed uint64) NPCOption {
	return func(s *NPCSystem) { s.rng = common.NewLCG(seed) }
}

// WithAllocator makes SpawnNPC mint handles from a shared allocator so NPC
// ids never collide with the host's other entities.
func WithAllocator(a *ecs.Allocator) NPCOption {
	return func(s *NPCSystem) {
		if a != nil {
			s.alloc = a
		}
	}
}

// WithAcquirers sets the archetypes that pick up the player on sight.
// Only hostiles do by default.
func WithAcquirers(types ...component.NPCType) NPCOption {
	return func(s *NPCSystem) { s.acquirers = typeSet(types) }
}

// WithProvokable sets the archetypes that turn on whoever hurts them.
// Only neutrals do by default.
func WithProvokable(types ...component.NPCType) NPCOption {
	return func(s *NPCSystem) { s.provokable = typeSet(types) }
}

func typeSet(types []component.NPCType) map[component.NPCType]bool {
	set := make(map[component.NPCType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// NewNPCSystem returns a system with the built-in tree registered for
// every archetype.
func NewNPCSystem(opts ...NPCOption) *NPCSystem {
	s := &NPCSystem{
		trees:      make(map[component.NPCType]*behavior.Tree, len(component.NPCTypes)),
		owned:      make(map[ecs.Entity]struct{}),
		acquirers:  typeSet([]component.NPCType{component.NPCHostile}),
		provokable: typeSet([]component.NPCType{component.NPCNeutral}),
		alloc:      &ecs.Allocator{},
		rng:        common.NewLCG(defaultWanderSeed),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range component.NPCTypes {
		s.trees[t] = behavior.DefaultTree(t)
	}
	return s
}

// RegisterBehaviorTree replaces the tree used by every NPC of type t.
// A nil tree unregisters it.
func (s *NPCSystem) RegisterBehaviorTree(t component.NPCType, tree *behavior.Tree) {
	if tree == nil {
		delete(s.trees, t)
		return
	}
	s.trees[t] = tree
	s.log.Info("behavior tree registered", zap.Stringer("type", t), zap.String("tree", tree.Name))
}

func (s *NPCSystem) BehaviorTree(t component.NPCType) (*behavior.Tree, bool) {
	tree, ok := s.trees[t]
	return tree, ok
}

// SpawnNPC creates a new NPC of type t at pos.
func (s *NPCSystem) SpawnNPC(t component.NPCType, pos common.Vec2) (ecs.Entity, error) {
	if _, ok := s.trees[t]; !ok {
		return 0, &BehaviorNotFoundError{Type: t}
	}
	e := s.alloc.Create()
	s.npcs.Set(e, component.NewNPCState(t, pos))
	s.owned[e] = struct{}{}
	s.log.Info("npc spawned", zap.Stringer("entity", e), zap.Stringer("type", t),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	return e, nil
}

// RegisterNPC adopts an entity created elsewhere.
func (s *NPCSystem) RegisterNPC(e ecs.Entity, t component.NPCType, pos common.Vec2) error {
	if !e.Valid() {
		return fmt.Errorf("register npc: %w", &NPCNotFoundError{Entity: e})
	}
	if _, taken := s.npcs.Occupant(e); taken {
		return &AlreadyRegisteredError{Entity: e}
	}
	if _, ok := s.trees[t]; !ok {
		return &BehaviorNotFoundError{Type: t}
	}
	if !s.alloc.IsAlive(e) {
		s.alloc.Reserve(e)
	}
	s.npcs.Set(e, component.NewNPCState(t, pos))
	s.log.Info("npc registered", zap.Stringer("entity", e), zap.Stringer("type", t))
	return nil
}

// DespawnNPC removes e and returns its final state.
func (s *NPCSystem) DespawnNPC(e ecs.Entity) (*component.NPCState, error) {
	st, ok := s.npcs.Remove(e)
	if !ok {
		return nil, &NPCNotFoundError{Entity: e}
	}
	if _, mine := s.owned[e]; mine {
		delete(s.owned, e)
		s.alloc.Destroy(e)
	}
	s.log.Info("npc despawned", zap.Stringer("entity", e))
	return st, nil
}

// Provoke makes a provokable NPC (neutral unless configured otherwise)
// target attacker and resets its de-aggro timer. Others ignore it.
func (s *NPCSystem) Provoke(e, attacker ecs.Entity) {
	st, ok := s.npcs.Get(e)
	if !ok {
		return
	}
	if !s.provokable[st.Type] {
		return
	}
	st.Provoked = true
	st.SetTarget(attacker)
	st.DeaggroTimer = deaggroSeconds
	s.log.Debug("npc provoked", zap.Stringer("entity", e), zap.Stringer("attacker", attacker))
}

// SetPatrol assigns a looping route after checking every leg is reachable.
func (s *NPCSystem) SetPatrol(e ecs.Entity, waypoints []common.Vec2, world component.NPCWorld) error {
	st, ok := s.npcs.Get(e)
	if !ok {
		return &NPCNotFoundError{Entity: e}
	}
	if world != nil {
		from := st.Position
		for _, to := range waypoints {
			if !world.IsWalkable(to) {
				return &PathfindingFailedError{From: from, To: to}
			}
			if !world.HasLineOfSight(from, to) {
				if _, ok := world.NextWaypoint(from, to); !ok {
					return &PathfindingFailedError{From: from, To: to}
				}
			}
			from = to
		}
	}
	st.WithPatrol(waypoints)
	return nil
}

func (s *NPCSystem) Len() int {
	return s.npcs.Len()
}

// Get returns a copy of e's state.
func (s *NPCSystem) Get(e ecs.Entity) (component.NPCState, bool) {
	st, ok := s.npcs.Get(e)
	if !ok {
		return component.NPCState{}, false
	}
	return *st.Clone(), true
}

// State returns e's live state for callers that need to adjust it.
func (s *NPCSystem) State(e ecs.Entity) (*component.NPCState, bool) {
	return s.npcs.Get(e)
}

// Each visits NPCs in update order until fn returns false.
func (s *NPCSystem) Each(fn func(e ecs.Entity, st *component.NPCState) bool) {
	s.npcs.Each(fn)
}

func (s *NPCSystem) ByType(t component.NPCType) []ecs.Entity {
	var out []ecs.Entity
	s.npcs.Each(func(e ecs.Entity, st *component.NPCState) bool {
		if st.Type == t {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (s *NPCSystem) InRange(pos common.Vec2, r float64) []ecs.Entity {
	var out []ecs.Entity
	s.npcs.Each(func(e ecs.Entity, st *component.NPCState) bool {
		if common.Distance(st.Position, pos) <= r {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Update ticks every NPC once: timers, de-aggro, target acquisition, tree
// evaluation, action execution, then publishing position and facing to
// storage. NPCs that disappear mid-tick are skipped.
func (s *NPCSystem) Update(dt float64, player ecs.Entity, playerPos common.Vec2, world component.NPCWorld, storage component.NPCStorage, combat *CombatSystem) {
	for _, e := range s.npcs.Entities() {
		live, ok := s.npcs.Get(e)
		if !ok {
			continue
		}
		st := live.Clone()

		st.AttackCooldown = max(st.AttackCooldown-dt, 0)
		st.BehaviorTime += dt

		if st.Provoked {
			st.DeaggroTimer = max(st.DeaggroTimer-dt, 0)
			if st.DeaggroTimer <= 0 {
				st.Provoked = false
				st.ClearTarget()
				s.log.Debug("npc calmed down", zap.Stringer("entity", e))
			}
		}

		if !st.HasTarget() && s.acquiresTargets(st) && player.Valid() {
			if st.DistanceTo(playerPos) <= st.AggroRange && (world == nil || world.HasLineOfSight(st.Position, playerPos)) {
				st.SetTarget(player)
				st.LastSeenTarget, st.HasLastSeen = playerPos, true
			}
		}

		targetPos := s.targetPosition(st, player, playerPos, storage)
		ctx := &behavior.Context{NPC: st, Target: targetPos, World: world}
		if storage != nil {
			ctx.Health, ctx.HealthKnown = storage.HealthPercent(e)
		}
		action := s.trees[st.Type].Decide(ctx)

		if id := action.BehaviorID(); id != st.CurrentBehavior {
			s.log.Debug("npc behavior changed", zap.Stringer("entity", e),
				zap.Stringer("from", st.CurrentBehavior), zap.Stringer("to", id))
			st.CurrentBehavior = id
			st.BehaviorTime = 0
		}
		s.execute(e, st, action, dt, targetPos, world, combat)

		if !s.npcs.Has(e) {
			continue
		}
		s.npcs.Set(e, st)
		if storage != nil {
			storage.SetPosition(e, st.Position)
			storage.SetFacing(e, st.Facing)
		}
	}
}

// acquiresTargets reports whether st picks up the player on sight.
func (s *NPCSystem) acquiresTargets(st *component.NPCState) bool {
	return s.acquirers[st.Type] && st.AggroRange > 0
}

func (s *NPCSystem) targetPosition(st *component.NPCState, player ecs.Entity, playerPos common.Vec2, storage component.NPCStorage) common.Vec2 {
	if !st.HasTarget() || st.Target == player || storage == nil {
		return playerPos
	}
	if p, ok := storage.Position(st.Target); ok {
		return p
	}
	return playerPos
}

func (s *NPCSystem) execute(e ecs.Entity, st *component.NPCState, action component.NPCAction, dt float64, targetPos common.Vec2, world component.NPCWorld, combat *CombatSystem) {
	switch a := action.(type) {
	case component.ActIdle:
	case component.ActWander:
		s.wander(st, dt, world)
	case component.ActPatrol:
		patrol(st, a.Waypoints, dt, world)
	case component.ActChase:
		st.LastSeenTarget, st.HasLastSeen = targetPos, true
		moveToward(st, targetPos, dt, world)
	case component.ActAttack:
		st.Facing = common.Heading(st.Position, targetPos)
		s.attack(e, st, combat)
	case component.ActFlee:
		dir := st.DirectionTo(targetPos)
		away := st.Position.Sub(dir.Scale(st.Speed * fleeLookahead))
		moveToward(st, away, dt*fleeSpeedFactor, world)
	case component.ActReturnHome:
		moveToward(st, st.Home, dt, world)
	case component.ActTrade:
		st.Facing = common.Heading(st.Position, targetPos)
	case component.ActMoveTo:
		moveToward(st, a.Dest, dt, world)
	}
}

func (s *NPCSystem) wander(st *component.NPCState, dt float64, world component.NPCWorld) {
	if !st.HasWander || st.BehaviorTime > wanderRepick {
		st.BehaviorTime = 0
		angle := s.rng.Float64() * 2 * math.Pi
		dist := s.rng.Float64() * st.WanderRadius
		target := st.Home.Add(common.FromAngle(angle).Scale(dist))
		if world == nil || world.IsWalkable(target) {
			st.WanderTarget, st.HasWander = target, true
		}
	}
	if st.HasWander && st.DistanceTo(st.WanderTarget) > arriveDistance {
		moveToward(st, st.WanderTarget, dt*wanderSpeedFactor, world)
	}
}

func patrol(st *component.NPCState, waypoints []common.Vec2, dt float64, world component.NPCWorld) {
	points := waypoints
	if len(points) == 0 {
		points = st.Patrol
	}
	if len(points) == 0 {
		return
	}
	target := points[st.PatrolIndex%len(points)]
	if st.DistanceTo(target) < arriveDistance {
		st.PatrolIndex = (st.PatrolIndex + 1) % len(points)
		return
	}
	moveToward(st, target, dt, world)
}

func (s *NPCSystem) attack(e ecs.Entity, st *component.NPCState, combat *CombatSystem) {
	if !st.HasTarget() || st.AttackCooldown > 0 || combat == nil {
		return
	}
	intent := component.NewAttackIntent(e, component.TargetEntity{Entity: st.Target}).
		WithWeapon(st.Weapon).
		WithShape(component.Melee{Range: npcAttackRange, Arc: math.Pi / 2}).
		WithDamage(npcAttackDamage)
	if err := combat.QueueAttack(intent); err != nil {
		s.log.Debug("npc attack rejected", zap.Stringer("entity", e), zap.Error(err))
		return
	}
	st.AttackCooldown = npcAttackCooldown
}

// moveToward steps st toward target along one waypoint hint from world.
// The step is only taken if it lands somewhere walkable.
func moveToward(st *component.NPCState, target common.Vec2, dt float64, world component.NPCWorld) {
	dist := st.DistanceTo(target)
	if dist < stopDistance {
		return
	}
	next := target
	if world != nil {
		if wp, ok := world.NextWaypoint(st.Position, target); ok {
			next = wp
		}
	}
	dir := st.DirectionTo(next)
	if dir.IsZero() {
		return
	}
	step := min(st.Speed*dt, st.DistanceTo(next), dist)
	pos := st.Position.Add(dir.Scale(step))
	if world != nil && !world.IsWalkable(pos) {
		return
	}
	st.Position = pos
	st.Facing = dir.Angle()
}
