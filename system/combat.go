package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
)

const defaultCombatSeed = 12345

// CombatSystem resolves queued attack intents into damage events and
// simulates projectiles. It owns no entity state; everything about
// combatants is read from and written to the storage passed per call.
type CombatSystem struct {
	queue       []component.AttackIntent
	events      []component.DamageEvent
	projectiles []component.Projectile

	rng     *common.XorShift64
	emitter *component.CombatEventEmitter
	log     *zap.Logger
}

type CombatOption func(*CombatSystem)

// WithCombatSeed seeds the critical hit generator.
func WithCombatSeed(seed uint64) CombatOption {
	return func(s *CombatSystem) { s.rng = common.NewXorShift64(seed) }
}

func WithCombatLogger(log *zap.Logger) CombatOption {
	return func(s *CombatSystem) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCombatEmitter routes hit, damage, death and projectile events to em.
func WithCombatEmitter(em *component.CombatEventEmitter) CombatOption {
	return func(s *CombatSystem) { s.emitter = em }
}

func NewCombatSystem(opts ...CombatOption) *CombatSystem {
	s := &CombatSystem{
		rng: common.NewXorShift64(defaultCombatSeed),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueueAttack appends intent to the FIFO drained by ProcessAttacks.
func (s *CombatSystem) QueueAttack(intent component.AttackIntent) error {
	if err := validateIntent(intent); err != nil {
		return err
	}
	s.queue = append(s.queue, intent)
	return nil
}

func (s *CombatSystem) QueueLen() int {
	return len(s.queue)
}

// DamageEvents returns the events produced by the last ProcessAttacks or
// Attack calls since ClearEvents.
func (s *CombatSystem) DamageEvents() []component.DamageEvent {
	return s.events
}

func (s *CombatSystem) ClearEvents() {
	s.events = s.events[:0]
}

// Projectiles returns the live projectiles. The slice is owned by the system.
func (s *CombatSystem) Projectiles() []component.Projectile {
	return s.projectiles
}

// ProcessAttacks drains the whole queue. Intents whose attacker is
// missing, dead or cooling down are dropped without an event.
func (s *CombatSystem) ProcessAttacks(storage component.CombatStorage, collision component.CollisionQuery) []component.DamageEvent {
	s.events = s.events[:0]
	pending := s.queue
	s.queue = nil
	for _, intent := range pending {
		events, err := s.resolve(intent, storage, collision, false)
		if err != nil {
			s.log.Debug("attack dropped", zap.Stringer("attacker", intent.Attacker), zap.Error(err))
			s.emitter.Emit(component.CombatEvent{Type: component.EventAttackDropped, Attacker: intent.Attacker})
			continue
		}
		s.events = append(s.events, events...)
	}
	return s.events
}

// Attack resolves a single intent immediately and reports why it failed.
// Unlike the queued path it does not fall back to default weapon stats for
// an unknown weapon, and a miss does not start the cooldown.
func (s *CombatSystem) Attack(intent component.AttackIntent, storage component.CombatStorage, collision component.CollisionQuery) ([]component.DamageEvent, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}
	events, err := s.resolve(intent, storage, collision, true)
	if err != nil {
		return nil, err
	}
	s.events = append(s.events, events...)
	return events, nil
}

func validateIntent(intent component.AttackIntent) error {
	if !intent.Attacker.Valid() || intent.Target == nil || intent.Shape == nil {
		return ErrInvalidTarget
	}
	if t, ok := intent.Target.(component.TargetEntity); ok {
		if !t.Entity.Valid() || t.Entity == intent.Attacker {
			return ErrInvalidTarget
		}
	}
	return nil
}

// resolve runs one intent. In strict mode any miss is an error and leaves
// the attacker untouched; otherwise a swing that hits nothing still costs
// the cooldown.
func (s *CombatSystem) resolve(intent component.AttackIntent, storage component.CombatStorage, collision component.CollisionQuery, strict bool) ([]component.DamageEvent, error) {
	if storage == nil {
		return nil, &EntityNotFoundError{Entity: intent.Attacker}
	}
	attacker, ok := storage.CombatPosition(intent.Attacker)
	if !ok {
		return nil, &EntityNotFoundError{Entity: intent.Attacker}
	}
	live, ok := storage.Stats(intent.Attacker)
	if !ok {
		return nil, &EntityNotFoundError{Entity: intent.Attacker}
	}
	snapshot := live.Clone()
	if snapshot.IsDead() {
		return nil, fmt.Errorf("%w: attacker %s is dead", ErrInvalidTarget, intent.Attacker)
	}
	if !snapshot.CanAttack() {
		return nil, &CooldownError{Remaining: snapshot.AttackCooldown}
	}

	weapon := component.DefaultWeaponStats()
	if intent.Weapon != component.NoWeapon {
		w, ok := storage.Weapon(intent.Weapon)
		switch {
		case ok:
			weapon = w
		case strict:
			return nil, fmt.Errorf("%w: item %d", ErrNoWeapon, intent.Weapon)
		}
	}

	var (
		events []component.DamageEvent
		err    error
	)
	switch shape := intent.Shape.(type) {
	case component.Melee:
		events, err = s.melee(intent, attacker, snapshot, weapon, shape, storage)
	case component.Ranged:
		s.spawnProjectile(intent, attacker, snapshot, weapon, shape)
	case component.Area:
		events, err = s.area(intent, attacker, snapshot, weapon, shape, storage, collision)
	default:
		return nil, ErrInvalidTarget
	}
	if err != nil {
		if strict {
			return nil, err
		}
		s.log.Debug("attack missed", zap.Stringer("attacker", intent.Attacker), zap.Error(err))
		events = nil
	}

	live.SetCooldown(weapon.Cooldown)
	for _, ev := range events {
		s.emitter.Emit(component.EventFromDamage(component.EventHit, ev))
	}
	return events, nil
}

func (s *CombatSystem) melee(intent component.AttackIntent, attacker component.CombatPosition, stats *component.CombatStats, weapon component.WeaponStats, shape component.Melee, storage component.CombatStorage) ([]component.DamageEvent, error) {
	var target component.CombatPosition
	switch t := intent.Target.(type) {
	case component.TargetEntity:
		p, ok := storage.CombatPosition(t.Entity)
		if !ok {
			return nil, &EntityNotFoundError{Entity: t.Entity}
		}
		target = p
	case component.TargetPosition:
		target = component.CombatPosition{Pos: t.Pos}
	case component.TargetDirection:
		target = component.CombatPosition{Pos: attacker.Pos.Add(t.Dir.Scale(shape.Range))}
	default:
		return nil, ErrInvalidTarget
	}

	distance := attacker.DistanceTo(target)
	if distance > shape.Range {
		return nil, &OutOfRangeError{Distance: distance, Range: shape.Range}
	}
	if diff := common.AngleDiff(attacker.AngleTo(target), attacker.Facing); diff > shape.Arc/2 {
		return nil, fmt.Errorf("%w: %.2f rad off facing, arc %.2f", ErrOutOfRange, diff, shape.Arc)
	}

	t, ok := intent.Target.(component.TargetEntity)
	if !ok {
		// Swings at a point or direction hit nothing.
		return nil, nil
	}
	targetStats, ok := storage.Stats(t.Entity)
	if !ok {
		return nil, &EntityNotFoundError{Entity: t.Entity}
	}
	ev := s.calculateDamage(intent.Attacker, t.Entity, stats, targetStats, weapon, target.Pos)
	return []component.DamageEvent{ev}, nil
}

func (s *CombatSystem) area(intent component.AttackIntent, attacker component.CombatPosition, stats *component.CombatStats, weapon component.WeaponStats, shape component.Area, storage component.CombatStorage, _ component.CollisionQuery) ([]component.DamageEvent, error) {
	var center common.Vec2
	switch t := intent.Target.(type) {
	case component.TargetEntity:
		p, ok := storage.CombatPosition(t.Entity)
		if !ok {
			return nil, &EntityNotFoundError{Entity: t.Entity}
		}
		center = p.Pos
	case component.TargetPosition:
		center = t.Pos
	case component.TargetDirection:
		center = attacker.Pos.Add(t.Dir)
	default:
		return nil, ErrInvalidTarget
	}

	// Only an explicitly targeted entity is damaged; area sweeps over every
	// entity in the radius belong to the host, which knows who is nearby.
	t, ok := intent.Target.(component.TargetEntity)
	if !ok {
		return nil, nil
	}
	targetStats, ok := storage.Stats(t.Entity)
	if !ok {
		return nil, &EntityNotFoundError{Entity: t.Entity}
	}

	distance := common.Distance(attacker.Pos, center)
	mult := 1.0
	if shape.Falloff && distance > 0 {
		mult = max(0, 1-distance/shape.Radius)
	}
	if mult <= 0 {
		return nil, &OutOfRangeError{Distance: distance, Range: shape.Radius}
	}
	ev := s.calculateDamage(intent.Attacker, t.Entity, stats, targetStats, weapon, center)
	ev.Damage *= mult
	return []component.DamageEvent{ev}, nil
}

func (s *CombatSystem) spawnProjectile(intent component.AttackIntent, attacker component.CombatPosition, stats *component.CombatStats, weapon component.WeaponStats, shape component.Ranged) {
	var dir common.Vec2
	switch t := intent.Target.(type) {
	case component.TargetEntity:
		// Entity targets fire along the attacker's facing.
		dir = common.FromAngle(attacker.Facing)
	case component.TargetPosition:
		dir = t.Pos.Sub(attacker.Pos).Normalize()
	case component.TargetDirection:
		dir = t.Dir.Normalize()
	}
	if dir.IsZero() {
		dir = common.V(1, 0)
	}

	p := component.NewProjectile(intent.Attacker, attacker.Pos, dir.Scale(shape.Speed), weapon.Damage*stats.DamageMultiplier, shape.Kind)
	p.DamageType = intent.DamageType
	p.Knockback = weapon.Knockback
	s.projectiles = append(s.projectiles, p)

	s.log.Debug("projectile spawned",
		zap.Stringer("source", intent.Attacker),
		zap.Stringer("kind", shape.Kind),
		zap.Float64("speed", shape.Speed))
	s.emitter.Emit(component.CombatEvent{
		Type:       component.EventProjectileSpawned,
		Attacker:   intent.Attacker,
		Damage:     p.Damage,
		DamageType: p.DamageType,
		Position:   p.Position,
		Projectile: p.Kind,
	})
}
