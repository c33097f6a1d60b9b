package store

import (
	"go.uber.org/zap"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
)

// KnockbackSink receives knockback impulses, typically the physics space.
type KnockbackSink interface {
	ApplyImpulse(e ecs.Entity, impulse common.Vec2)
}

// Store is an in-memory entity store satisfying both
// component.CombatStorage and component.NPCStorage.
type Store struct {
	positions ecs.SparseSet[common.Vec2]
	facings   ecs.SparseSet[float64]
	stats     ecs.SparseSet[*component.CombatStats]
	weapons   map[component.ItemID]component.WeaponStats

	sink   KnockbackSink
	deaths []ecs.Entity
	log    *zap.Logger
}

var (
	_ component.CombatStorage = (*Store)(nil)
	_ component.NPCStorage    = (*Store)(nil)
)

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithKnockbackSink forwards ApplyKnockback to sink.
func WithKnockbackSink(sink KnockbackSink) Option {
	return func(s *Store) { s.sink = sink }
}

func New(opts ...Option) *Store {
	s := &Store{
		weapons: make(map[component.ItemID]component.WeaponStats),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers e at pos. A nil stats leaves e without combat stats.
func (s *Store) Add(e ecs.Entity, pos common.Vec2, facing float64, stats *component.CombatStats) {
	s.positions.Set(e, pos)
	s.facings.Set(e, facing)
	if stats != nil {
		s.stats.Set(e, stats)
	}
}

// Remove forgets everything about e.
func (s *Store) Remove(e ecs.Entity) {
	s.positions.Remove(e)
	s.facings.Remove(e)
	s.stats.Remove(e)
}

func (s *Store) Has(e ecs.Entity) bool {
	return s.positions.Has(e)
}

// Entities lists every stored entity in insertion order (modulo removals).
func (s *Store) Entities() []ecs.Entity {
	return s.positions.Entities()
}

func (s *Store) SetWeapon(id component.ItemID, w component.WeaponStats) {
	s.weapons[id] = w
}

func (s *Store) Weapon(id component.ItemID) (component.WeaponStats, bool) {
	w, ok := s.weapons[id]
	return w, ok
}

func (s *Store) Stats(e ecs.Entity) (*component.CombatStats, bool) {
	return s.stats.Get(e)
}

func (s *Store) CombatPosition(e ecs.Entity) (component.CombatPosition, bool) {
	pos, ok := s.positions.Get(e)
	if !ok {
		return component.CombatPosition{}, false
	}
	facing, _ := s.facings.Get(e)
	return component.CombatPosition{Pos: pos, Facing: facing}, true
}

func (s *Store) ApplyKnockback(e ecs.Entity, impulse common.Vec2) {
	if s.sink == nil {
		return
	}
	s.sink.ApplyImpulse(e, impulse)
}

// OnDeath records e; the owner collects deaths with TakeDeaths.
func (s *Store) OnDeath(e ecs.Entity) {
	s.log.Info("entity died", zap.Stringer("entity", e))
	s.deaths = append(s.deaths, e)
}

// TakeDeaths returns and clears the deaths recorded since the last call.
func (s *Store) TakeDeaths() []ecs.Entity {
	out := s.deaths
	s.deaths = nil
	return out
}

// TickCooldowns advances every combatant's attack cooldown.
func (s *Store) TickCooldowns(dt float64) {
	s.stats.Each(func(_ ecs.Entity, st *component.CombatStats) bool {
		st.Tick(dt)
		return true
	})
}

func (s *Store) Position(e ecs.Entity) (common.Vec2, bool) {
	return s.positions.Get(e)
}

func (s *Store) SetPosition(e ecs.Entity, pos common.Vec2) {
	s.positions.Set(e, pos)
}

func (s *Store) Facing(e ecs.Entity) (float64, bool) {
	return s.facings.Get(e)
}

func (s *Store) SetFacing(e ecs.Entity, facing float64) {
	s.facings.Set(e, facing)
}

func (s *Store) HealthPercent(e ecs.Entity) (float64, bool) {
	st, ok := s.stats.Get(e)
	if !ok {
		return 0, false
	}
	return st.HealthPercent(), true
}
