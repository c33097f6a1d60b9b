package ecs

// SparseSet stores one value per entity in a dense slice indexed through a
// sparse slot table. Iteration follows the dense order, which only changes
// on Remove (the last element is swapped into the hole), so iteration is
// deterministic for a given sequence of inserts and removals.
type SparseSet[T any] struct {
	denseEntities []Entity
	denseValues   []T
	sparse        []int
}

// Has reports whether e (including its generation) is present.
func (s *SparseSet[T]) Has(e Entity) bool {
	idx, ok := s.index(e)
	return ok && idx >= 0
}

func (s *SparseSet[T]) index(e Entity) (int, bool) {
	if s == nil {
		return -1, false
	}
	slot := int(e.id())
	if slot <= 0 || slot-1 >= len(s.sparse) {
		return -1, false
	}
	idx := s.sparse[slot-1]
	if idx < 0 || idx >= len(s.denseEntities) || s.denseEntities[idx] != e {
		return -1, false
	}
	return idx, true
}

// Get returns the value stored for e.
func (s *SparseSet[T]) Get(e Entity) (T, bool) {
	var zero T
	idx, ok := s.index(e)
	if !ok {
		return zero, false
	}
	return s.denseValues[idx], true
}

// Occupant returns the handle stored in e's slot, whatever its generation.
func (s *SparseSet[T]) Occupant(e Entity) (Entity, bool) {
	slot := int(e.id())
	if s == nil || slot <= 0 || slot-1 >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[slot-1]
	if idx < 0 || idx >= len(s.denseEntities) {
		return 0, false
	}
	return s.denseEntities[idx], true
}

// Set inserts or replaces the value for e. A handle of another generation
// holding the same slot is evicted.
func (s *SparseSet[T]) Set(e Entity, v T) {
	slot := int(e.id())
	if s == nil || slot <= 0 {
		return
	}
	for len(s.sparse) < slot {
		s.sparse = append(s.sparse, -1)
	}
	if idx := s.sparse[slot-1]; idx >= 0 && idx < len(s.denseEntities) {
		s.denseEntities[idx] = e
		s.denseValues[idx] = v
		return
	}
	s.denseEntities = append(s.denseEntities, e)
	s.denseValues = append(s.denseValues, v)
	s.sparse[slot-1] = len(s.denseEntities) - 1
}

// Remove deletes e and returns the value it held.
func (s *SparseSet[T]) Remove(e Entity) (T, bool) {
	var zero T
	idx, ok := s.index(e)
	if !ok {
		return zero, false
	}
	removed := s.denseValues[idx]
	last := len(s.denseEntities) - 1
	lastEntity := s.denseEntities[last]

	s.denseEntities[idx] = lastEntity
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[int(lastEntity.id())-1] = idx

	s.denseEntities[last] = 0
	s.denseValues[last] = zero
	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[int(e.id())-1] = -1
	return removed, true
}

// Len returns the number of stored entities.
func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// Entities returns a copy of the dense entity list.
func (s *SparseSet[T]) Entities() []Entity {
	if s == nil || len(s.denseEntities) == 0 {
		return nil
	}
	out := make([]Entity, len(s.denseEntities))
	copy(out, s.denseEntities)
	return out
}

// Each visits entries in dense order. Returning false stops the walk.
func (s *SparseSet[T]) Each(fn func(e Entity, v T) bool) {
	if s == nil {
		return
	}
	for i, e := range s.denseEntities {
		if !fn(e, s.denseValues[i]) {
			return
		}
	}
}
