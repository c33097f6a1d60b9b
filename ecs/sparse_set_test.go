package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var a Allocator
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				e := a.Create()
				require.True(t, e.Valid())
				ents = append(ents, e)
			}
			for _, e := range ents {
				assert.True(t, a.IsAlive(e))
			}
			if c.destroyIndex >= 0 {
				require.True(t, a.Destroy(ents[c.destroyIndex]))
				assert.False(t, a.IsAlive(ents[c.destroyIndex]))
				assert.False(t, a.Destroy(ents[c.destroyIndex]), "double destroy")
			}
		})
	}
}

func TestAllocatorRecyclesWithNewGeneration(t *testing.T) {
	var a Allocator
	first := a.Create()
	require.True(t, a.Destroy(first))

	second := a.Create()
	assert.Equal(t, first.Index(), second.Index())
	assert.NotEqual(t, first, second)
	assert.False(t, a.IsAlive(first))
	assert.True(t, a.IsAlive(second))
}

func TestAllocatorReserve(t *testing.T) {
	var a Allocator
	external := makeEntity(3, 0)
	a.Reserve(external)
	assert.True(t, a.IsAlive(external))

	seen := map[uint32]bool{}
	for i := 0; i < 4; i++ {
		seen[a.Create().Index()] = true
	}
	assert.False(t, seen[3], "reserved slot handed out again")
}

func TestSparseSetOrderAndRemove(t *testing.T) {
	var a Allocator
	var s SparseSet[string]

	e1, e2, e3 := a.Create(), a.Create(), a.Create()
	s.Set(e1, "a")
	s.Set(e2, "b")
	s.Set(e3, "c")
	assert.Equal(t, []Entity{e1, e2, e3}, s.Entities())

	v, ok := s.Remove(e1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, []Entity{e3, e2}, s.Entities())
	assert.False(t, s.Has(e1))

	got, ok := s.Get(e3)
	require.True(t, ok)
	assert.Equal(t, "c", got)
	assert.Equal(t, 2, s.Len())
}

func TestSparseSetRejectsStaleHandle(t *testing.T) {
	var a Allocator
	var s SparseSet[int]

	stale := a.Create()
	s.Set(stale, 1)
	s.Remove(stale)
	a.Destroy(stale)

	fresh := a.Create()
	s.Set(fresh, 2)

	assert.False(t, s.Has(stale))
	_, ok := s.Get(stale)
	assert.False(t, ok)
	got, ok := s.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestSparseSetNewerGenerationEvictsOccupant(t *testing.T) {
	var s SparseSet[string]
	old := makeEntity(1, 0)
	newer := makeEntity(1, 1)
	s.Set(makeEntity(2, 0), "other")
	s.Set(old, "old")

	occ, ok := s.Occupant(newer)
	require.True(t, ok)
	assert.Equal(t, old, occ)

	s.Set(newer, "new")
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Has(old))
	got, ok := s.Get(newer)
	require.True(t, ok)
	assert.Equal(t, "new", got)

	_, ok = s.Remove(newer)
	require.True(t, ok)
	assert.Equal(t, []Entity{makeEntity(2, 0)}, s.Entities())
	_, ok = s.Occupant(newer)
	assert.False(t, ok)
}

func TestSparseSetEachStops(t *testing.T) {
	var a Allocator
	var s SparseSet[int]
	for i := 0; i < 5; i++ {
		s.Set(a.Create(), i)
	}
	visited := 0
	s.Each(func(Entity, int) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}
