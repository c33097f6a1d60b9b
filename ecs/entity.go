package ecs

import "strconv"

// Entity is an opaque generational handle. The low 32 bits hold the slot
// index and the high 32 bits the slot generation, so a stale handle to a
// recycled slot never compares equal to the new occupant.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

// FromRaw wraps a raw handle value produced by another store.
func FromRaw(raw uint64) Entity {
	return Entity(raw)
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// Index returns the slot index of the handle.
func (e Entity) Index() uint32 {
	return uint32(e.id())
}

// Raw returns the packed handle value.
func (e Entity) Raw() uint64 {
	return uint64(e)
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

// Valid reports whether e refers to any slot. The zero Entity is reserved
// as "no entity".
func (e Entity) Valid() bool {
	return e.id() > 0
}
