package system

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
	"github.com/milk9111/npcsim/physics"
	"github.com/milk9111/npcsim/prefabs"
	"github.com/milk9111/npcsim/store"
)

const (
	defaultPlayerSpeed  = 5.0
	defaultPlayerRadius = 0.4
	meleeAssist         = 1.0
)

// Input is the player's intent for one tick.
type Input struct {
	Move   common.Vec2
	Aim    common.Vec2
	Attack bool
}

// World owns one arena: entity storage, the physics space, and the NPC and
// combat systems, stepped together by Step.
type World struct {
	Store  *store.Store
	Space  *physics.Space
	NPCs   *NPCSystem
	Combat *CombatSystem
	Events *component.CombatEventEmitter
	Arena  prefabs.ArenaSpec
	Player ecs.Entity

	alloc        *ecs.Allocator
	archetypes   map[string]prefabs.ArchetypeSpec
	spawnedAs    map[ecs.Entity]string
	weapons      map[string]component.ItemID
	playerWeapon component.ItemID
	playerSpeed  float64
	elapsed      float64

	opts worldOptions
	log  *zap.Logger
}

type worldOptions struct {
	log         *zap.Logger
	combatSeed  uint64
	wanderSeed  uint64
	playerSpeed float64
	cellSize    float64
}

type WorldOption func(*worldOptions)

func WithWorldLogger(log *zap.Logger) WorldOption {
	return func(o *worldOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithSeeds fixes the crit and wander generators for reproducible runs.
func WithSeeds(combat, wander uint64) WorldOption {
	return func(o *worldOptions) {
		o.combatSeed = combat
		o.wanderSeed = wander
	}
}

func WithPlayerSpeed(speed float64) WorldOption {
	return func(o *worldOptions) {
		if speed > 0 {
			o.playerSpeed = speed
		}
	}
}

// WithCellSize sets the navigation cell size for arenas that don't name one.
func WithCellSize(size float64) WorldOption {
	return func(o *worldOptions) {
		if size > 0 {
			o.cellSize = size
		}
	}
}

// NewWorld creates a world and loads the named arena layout with its
// archetypes, weapons and behavior trees.
func NewWorld(layout string, opts ...WorldOption) (*World, error) {
	w := &World{}
	w.configure(opts)
	if err := w.Load(layout); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *World) configure(opts []WorldOption) {
	w.opts = worldOptions{
		log:         zap.NewNop(),
		combatSeed:  defaultCombatSeed,
		wanderSeed:  defaultWanderSeed,
		playerSpeed: defaultPlayerSpeed,
		cellSize:    1,
	}
	for _, opt := range opts {
		opt(&w.opts)
	}
	w.log = w.opts.log
}

// Load replaces the world's contents with the named layout.
func (w *World) Load(layout string) error {
	if w == nil {
		return fmt.Errorf("world is nil")
	}
	arena, err := prefabs.LoadArena(layout)
	if err != nil {
		return err
	}
	archetypes, err := prefabs.LoadArchetypes()
	if err != nil {
		return err
	}
	weapons, err := prefabs.LoadWeapons()
	if err != nil {
		return err
	}
	if err := w.Build(arena, archetypes, weapons); err != nil {
		return err
	}
	return w.ReloadTrees()
}

// Build resets the world from already decoded specs. NPCs start on the
// built-in trees; ReloadTrees swaps in the prefab ones.
func (w *World) Build(arena prefabs.ArenaSpec, archetypes prefabs.ArchetypesSpec, weapons prefabs.WeaponsSpec) error {
	if w.log == nil {
		w.configure(nil)
	}
	cell := arena.CellSize
	if cell <= 0 {
		cell = w.opts.cellSize
	}

	w.Arena = arena
	w.Space = physics.NewSpace(arena.Bounds(), cell)
	w.Store = store.New(store.WithLogger(w.log), store.WithKnockbackSink(w.Space))
	w.Events = &component.CombatEventEmitter{}
	w.alloc = &ecs.Allocator{}
	w.NPCs = NewNPCSystem(
		WithNPCLogger(w.log),
		WithWanderSeed(w.opts.wanderSeed),
		WithAllocator(w.alloc),
		// Guards in an arena fight back when struck.
		WithProvokable(component.NPCNeutral, component.NPCGuard),
	)
	w.Combat = NewCombatSystem(
		WithCombatLogger(w.log),
		WithCombatSeed(w.opts.combatSeed),
		WithCombatEmitter(w.Events),
	)
	w.archetypes = archetypes.Archetypes
	w.spawnedAs = make(map[ecs.Entity]string)
	w.Player = 0
	w.playerSpeed = w.opts.playerSpeed
	w.elapsed = 0

	if err := w.registerWeapons(weapons); err != nil {
		return err
	}
	w.spawnWalls(arena.Walls)
	if err := w.spawnPlayer(arena.Player); err != nil {
		return err
	}
	if err := w.spawnNPCs(arena.NPCs); err != nil {
		return err
	}
	w.log.Info("arena loaded",
		zap.String("arena", arena.Name),
		zap.Int("walls", len(arena.Walls)),
		zap.Int("npcs", w.NPCs.Len()))
	return nil
}

func (w *World) registerWeapons(spec prefabs.WeaponsSpec) error {
	w.weapons = make(map[string]component.ItemID, len(spec.Weapons))
	for name, ws := range spec.Weapons {
		stats, err := ws.Stats()
		if err != nil {
			return fmt.Errorf("weapon %s: %w", name, err)
		}
		w.Store.SetWeapon(ws.ID, stats)
		w.weapons[name] = ws.ID
	}
	return nil
}

// ReloadTrees recompiles the archetype trees from prefabs and registers
// them. On error the current trees stay in place.
func (w *World) ReloadTrees() error {
	archetypes, err := prefabs.LoadArchetypes()
	if err != nil {
		return err
	}
	trees, err := prefabs.LoadTrees(archetypes, w.log)
	if err != nil {
		return err
	}
	for t, tree := range trees {
		w.NPCs.RegisterBehaviorTree(t, tree)
	}
	return nil
}

// ReloadWeapons re-reads the weapon table into storage.
func (w *World) ReloadWeapons() error {
	weapons, err := prefabs.LoadWeapons()
	if err != nil {
		return err
	}
	return w.registerWeapons(weapons)
}

// ApplyChange reacts to an edited prefab file.
func (w *World) ApplyChange(ch prefabs.Change) error {
	switch {
	case ch.Kind == prefabs.ChangeTree, ch.Kind == prefabs.ChangeScript:
		return w.ReloadTrees()
	case filepath.Base(ch.Path) == "weapons.yaml":
		return w.ReloadWeapons()
	case filepath.Base(ch.Path) == "archetypes.yaml":
		return w.ReloadTrees()
	default:
		w.log.Info("prefab change needs a reload", zap.String("path", ch.Path))
		return nil
	}
}

// Elapsed is the simulated time since Build.
func (w *World) Elapsed() float64 {
	return w.elapsed
}

// ArchetypeOf returns the archetype e was spawned from.
func (w *World) ArchetypeOf(e ecs.Entity) (string, prefabs.ArchetypeSpec, bool) {
	name, ok := w.spawnedAs[e]
	if !ok {
		return "", prefabs.ArchetypeSpec{}, false
	}
	return name, w.archetypes[name], true
}

func (w *World) PlayerAlive() bool {
	return w.Player.Valid()
}

// Step advances the arena by dt: player intent, NPC decisions, attack
// resolution, projectiles, knockback physics, then removal of the dead.
func (w *World) Step(dt float64, in Input) {
	if dt <= 0 {
		return
	}
	w.elapsed += dt
	w.Store.TickCooldowns(dt)

	w.stepPlayer(dt, in)
	playerPos, _ := w.Store.Position(w.Player)
	w.NPCs.Update(dt, w.Player, playerPos, w.Space, w.Store, w.Combat)

	for _, ev := range w.Combat.ProcessAttacks(w.Store, w.Space) {
		w.applyDamage(ev)
	}
	w.Combat.UpdateProjectiles(dt, w.Store, w.Space)
	for _, ev := range w.Combat.ResolveProjectileHits(w.Store, w.projectileHit) {
		w.applyDamage(ev)
	}

	w.stepPhysics(dt)
	w.reap()
}

func (w *World) stepPlayer(dt float64, in Input) {
	if !w.Player.Valid() {
		return
	}
	pos, ok := w.Store.Position(w.Player)
	if !ok {
		return
	}
	if dir := in.Move.Normalize(); !dir.IsZero() {
		next := pos.Add(dir.Scale(w.playerSpeed * dt))
		if w.Space.IsWalkable(next) {
			pos = next
			w.Store.SetPosition(w.Player, pos)
		}
		w.Store.SetFacing(w.Player, dir.Angle())
	}
	if !in.Attack {
		return
	}

	w.Store.SetFacing(w.Player, common.Heading(pos, in.Aim))
	weapon, ok := w.Store.Weapon(w.playerWeapon)
	if !ok {
		weapon = component.DefaultWeaponStats()
	}
	intent := component.NewAttackIntent(w.Player, w.aimTarget(pos, in.Aim, weapon.Shape)).
		WithWeapon(w.playerWeapon).
		WithShape(weapon.Shape).
		WithDamage(weapon.Damage).
		WithDamageType(weapon.DamageType)
	if err := w.Combat.QueueAttack(intent); err != nil {
		w.log.Debug("player attack rejected", zap.Error(err))
	}
}

// aimTarget picks the entity the player is aiming at for melee and area
// weapons. Ranged weapons always fire at the aim point.
func (w *World) aimTarget(pos, aim common.Vec2, shape component.AttackShape) component.AttackTarget {
	var reach float64
	switch s := shape.(type) {
	case component.Melee:
		reach = s.Range
	case component.Area:
		reach = s.Radius
	default:
		return component.TargetPosition{Pos: aim}
	}
	best, bestDist := ecs.Entity(0), reach+meleeAssist
	for _, e := range w.Store.Entities() {
		if e == w.Player {
			continue
		}
		p, ok := w.Store.Position(e)
		if !ok {
			continue
		}
		if d := common.Distance(p, aim); d < bestDist {
			best, bestDist = e, d
		}
	}
	if best.Valid() {
		return component.TargetEntity{Entity: best}
	}
	return component.TargetPosition{Pos: aim}
}

func (w *World) applyDamage(ev component.DamageEvent) {
	w.Combat.ApplyDamageEvent(ev, w.Store)
	if ev.Source.Valid() && ev.Source != ev.Target {
		w.NPCs.Provoke(ev.Target, ev.Source)
	}
}

func (w *World) projectileHit(p *component.Projectile) (ecs.Entity, bool) {
	for _, e := range w.Store.Entities() {
		if e == p.Source {
			continue
		}
		pos, ok := w.Store.Position(e)
		if !ok {
			continue
		}
		r := w.Space.BodyRadius(e)
		if r <= 0 {
			continue
		}
		if common.Distance(pos, p.Position) <= r+p.Radius {
			return e, true
		}
	}
	return 0, false
}

// stepPhysics lets knockback carry bodies. Storage stays the authority on
// intended movement; the space only adds what impulses did on top.
func (w *World) stepPhysics(dt float64) {
	entities := w.Store.Entities()
	for _, e := range entities {
		if pos, ok := w.Store.Position(e); ok {
			w.Space.SetBodyPosition(e, pos)
		}
	}
	w.Space.Step(dt)
	for _, e := range entities {
		if w.Space.BodySpeed(e) == 0 {
			continue
		}
		pos, ok := w.Space.BodyPosition(e)
		if !ok || !w.Space.IsWalkable(pos) {
			continue
		}
		w.Store.SetPosition(e, pos)
		if st, ok := w.NPCs.State(e); ok {
			st.Position = pos
		}
	}
}

func (w *World) reap() {
	for _, e := range w.Store.TakeDeaths() {
		w.remove(e)
	}
}

func (w *World) remove(e ecs.Entity) {
	if e == w.Player {
		w.log.Info("player died", zap.Float64("elapsed", w.elapsed))
		w.Player = 0
		w.alloc.Destroy(e)
	} else if _, err := w.NPCs.DespawnNPC(e); err != nil {
		w.log.Warn("dead entity is not an npc", zap.Stringer("entity", e), zap.Error(err))
	}
	delete(w.spawnedAs, e)
	w.Store.Remove(e)
	w.Space.RemoveBody(e)
	w.NPCs.Each(func(_ ecs.Entity, st *component.NPCState) bool {
		if st.Target == e {
			st.ClearTarget()
			st.Provoked = false
		}
		return true
	})
}
