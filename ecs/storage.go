package ecs

// Allocator hands out entity handles, recycling destroyed slots with a
// bumped generation.
type Allocator struct {
	nextID entityID
	gen    []generation
	free   []entityID
}

// Create allocates a new live handle.
func (a *Allocator) Create() Entity {
	var id entityID
	if len(a.free) > 0 {
		id = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
	} else {
		a.nextID++
		id = a.nextID
		a.gen = append(a.gen, 0)
	}
	return makeEntity(id, a.gen[id-1])
}

// Destroy releases e. It reports false for stale or unknown handles.
func (a *Allocator) Destroy(e Entity) bool {
	if !a.IsAlive(e) {
		return false
	}
	id := e.id()
	a.gen[id-1]++
	a.free = append(a.free, id)
	return true
}

// IsAlive reports whether e is the current occupant of its slot.
func (a *Allocator) IsAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(a.gen) {
		return false
	}
	return a.gen[id-1] == e.generation()
}

// Reserve marks e as externally owned so Create never hands out its slot.
// Handles minted by another allocator may collide with this one; callers
// registering such handles use Reserve to keep the two spaces apart.
func (a *Allocator) Reserve(e Entity) {
	id := e.id()
	if id == 0 {
		return
	}
	for a.nextID < id {
		a.nextID++
		a.gen = append(a.gen, 0)
		if a.nextID < id {
			a.free = append(a.free, a.nextID)
		}
	}
	for i, f := range a.free {
		if f == id {
			a.free = append(a.free[:i], a.free[i+1:]...)
			break
		}
	}
	if a.gen[id-1] < e.generation() {
		a.gen[id-1] = e.generation()
	}
}
