package component

import (
	"fmt"
	"math"
	"strings"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/ecs"
)

// DamageType selects which mitigation applies to a hit.
type DamageType uint8

const (
	DamagePhysical DamageType = iota
	DamageFire
	DamageIce
	DamageElectric
	DamagePoison
	DamageTrue
)

var damageTypeNames = [...]string{"physical", "fire", "ice", "electric", "poison", "true"}

func (d DamageType) String() string {
	if int(d) < len(damageTypeNames) {
		return damageTypeNames[d]
	}
	return fmt.Sprintf("DamageType(%d)", d)
}

// UnmarshalText lets prefab files name damage types.
func (d *DamageType) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range damageTypeNames {
		if n == name {
			*d = DamageType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown damage type %q", name)
}

// ItemID references a weapon in combat storage. NoWeapon means "use defaults".
type ItemID uint32

const NoWeapon ItemID = 0

// ProjectileKind is the flavour of a ranged attack's projectile.
type ProjectileKind uint8

const (
	ProjectileArrow ProjectileKind = iota
	ProjectileBolt
	ProjectileMagic
	ProjectileThrown
	ProjectileBullet
)

var projectileKindNames = [...]string{"arrow", "bolt", "magic", "thrown", "bullet"}

func (k ProjectileKind) String() string {
	if int(k) < len(projectileKindNames) {
		return projectileKindNames[k]
	}
	return fmt.Sprintf("ProjectileKind(%d)", k)
}

func (k *ProjectileKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range projectileKindNames {
		if n == name {
			*k = ProjectileKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown projectile kind %q", name)
}

// AttackShape is one of Melee, Ranged or Area.
type AttackShape interface {
	isAttackShape()
}

// Melee hits a single target within Range whose bearing lies inside Arc
// (radians, centred on the attacker's facing).
type Melee struct {
	Range float64
	Arc   float64
}

// Ranged spawns a projectile travelling at Speed.
type Ranged struct {
	Kind  ProjectileKind
	Speed float64
}

// Area damages around a centre point, optionally scaled down with distance.
type Area struct {
	Radius  float64
	Falloff bool
}

func (Melee) isAttackShape()  {}
func (Ranged) isAttackShape() {}
func (Area) isAttackShape()   {}

// DefaultAttackShape is a short quarter-circle swing.
func DefaultAttackShape() AttackShape {
	return Melee{Range: 1.5, Arc: math.Pi / 2}
}

// AttackTarget is one of TargetEntity, TargetPosition or TargetDirection.
type AttackTarget interface {
	isAttackTarget()
}

type TargetEntity struct {
	Entity ecs.Entity
}

type TargetPosition struct {
	Pos common.Vec2
}

// TargetDirection is relative to the attacker.
type TargetDirection struct {
	Dir common.Vec2
}

func (TargetEntity) isAttackTarget()    {}
func (TargetPosition) isAttackTarget()  {}
func (TargetDirection) isAttackTarget() {}

// AttackIntent is a request to attack, consumed once by the combat system.
type AttackIntent struct {
	Attacker   ecs.Entity
	Target     AttackTarget
	Weapon     ItemID
	Shape      AttackShape
	BaseDamage float64
	DamageType DamageType
}

func NewAttackIntent(attacker ecs.Entity, target AttackTarget) AttackIntent {
	return AttackIntent{
		Attacker:   attacker,
		Target:     target,
		Weapon:     NoWeapon,
		Shape:      DefaultAttackShape(),
		BaseDamage: 10,
		DamageType: DamagePhysical,
	}
}

func (a AttackIntent) WithWeapon(id ItemID) AttackIntent {
	a.Weapon = id
	return a
}

func (a AttackIntent) WithShape(shape AttackShape) AttackIntent {
	a.Shape = shape
	return a
}

func (a AttackIntent) WithDamage(damage float64) AttackIntent {
	a.BaseDamage = damage
	return a
}

func (a AttackIntent) WithDamageType(t DamageType) AttackIntent {
	a.DamageType = t
	return a
}

// DamageEvent is the resolved outcome of a hit. A zero Source means the
// damage came from the environment.
type DamageEvent struct {
	Source     ecs.Entity
	Target     ecs.Entity
	Damage     float64
	DamageType DamageType
	Position   common.Vec2
	Knockback  common.Vec2
	Critical   bool
	Blocked    float64
	Resisted   float64
}

// HasKnockback reports whether the event carries a knockback impulse.
func (e DamageEvent) HasKnockback() bool {
	return !e.Knockback.IsZero()
}

// RawDamage is the damage before mitigation.
func (e DamageEvent) RawDamage() float64 {
	return e.Damage + e.Blocked + e.Resisted
}
