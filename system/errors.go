package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrOutOfRange     = errors.New("target out of range")
	ErrNoWeapon       = errors.New("no weapon equipped")
	ErrOnCooldown     = errors.New("attack on cooldown")
	ErrInvalidTarget  = errors.New("invalid target")

	ErrNPCNotFound       = errors.New("npc not found")
	ErrBehaviorNotFound  = errors.New("behavior tree not found")
	ErrPathfindingFailed = errors.New("pathfinding failed")
	ErrAlreadyRegistered = errors.New("npc already registered")
)

// EntityNotFoundError reports an entity missing from combat storage.
type EntityNotFoundError struct {
	Entity ecs.Entity
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity not found: %s", e.Entity)
}

func (e *EntityNotFoundError) Is(target error) bool { return target == ErrEntityNotFound }

type OutOfRangeError struct {
	Distance float64
	Range    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("target out of range: distance %.2f, range %.2f", e.Distance, e.Range)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

type CooldownError struct {
	Remaining float64
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("attack on cooldown: %.2fs remaining", e.Remaining)
}

func (e *CooldownError) Is(target error) bool { return target == ErrOnCooldown }

type NPCNotFoundError struct {
	Entity ecs.Entity
}

func (e *NPCNotFoundError) Error() string {
	return fmt.Sprintf("npc not found: %s", e.Entity)
}

func (e *NPCNotFoundError) Is(target error) bool { return target == ErrNPCNotFound }

type BehaviorNotFoundError struct {
	Type component.NPCType
}

func (e *BehaviorNotFoundError) Error() string {
	return fmt.Sprintf("behavior tree not found for npc type %s", e.Type)
}

func (e *BehaviorNotFoundError) Is(target error) bool { return target == ErrBehaviorNotFound }

type PathfindingFailedError struct {
	From common.Vec2
	To   common.Vec2
}

func (e *PathfindingFailedError) Error() string {
	return fmt.Sprintf("pathfinding failed from (%.2f, %.2f) to (%.2f, %.2f)", e.From.X, e.From.Y, e.To.X, e.To.Y)
}

func (e *PathfindingFailedError) Is(target error) bool { return target == ErrPathfindingFailed }

type AlreadyRegisteredError struct {
	Entity ecs.Entity
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("npc already registered: %s", e.Entity)
}

func (e *AlreadyRegisteredError) Is(target error) bool { return target == ErrAlreadyRegistered }
