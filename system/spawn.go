package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
	"github.com/milk9111/npcsim/ecs"
	"github.com/milk9111/npcsim/prefabs"
)

func (w *World) spawnWalls(walls []prefabs.RectSpec) {
	for _, r := range walls {
		w.Space.AddWall(r.AABB())
	}
}

func (w *World) spawnPlayer(spec prefabs.PlayerSpec) error {
	pos := spec.Position.Vec()
	if !w.Space.IsWalkable(pos) {
		return fmt.Errorf("player spawn (%.1f, %.1f) is inside a wall", pos.X, pos.Y)
	}
	weapon, err := w.weaponID(spec.Weapon)
	if err != nil {
		return fmt.Errorf("player: %w", err)
	}

	stats := component.NewCombatStats().WithArmor(spec.Armor)
	if spec.Health > 0 {
		stats.WithHealth(spec.Health)
	}
	if spec.Speed > 0 {
		w.playerSpeed = spec.Speed
	}

	e := w.alloc.Create()
	w.Store.Add(e, pos, 0, stats)
	w.Space.AddBody(e, pos, defaultPlayerRadius, 1)
	w.Player = e
	w.playerWeapon = weapon
	return nil
}

func (w *World) spawnNPCs(placed []prefabs.PlacedNPCSpec) error {
	for i, pn := range placed {
		e, err := w.SpawnArchetype(pn.Archetype, pn.Position.Vec())
		if err != nil {
			return fmt.Errorf("npc %d: %w", i, err)
		}
		if pn.Weapon != "" {
			id, err := w.weaponID(pn.Weapon)
			if err != nil {
				return fmt.Errorf("npc %d: %w", i, err)
			}
			st, _ := w.NPCs.State(e)
			st.WithWeapon(id)
		}
		if len(pn.Patrol) == 0 {
			continue
		}
		route := make([]common.Vec2, len(pn.Patrol))
		for j, p := range pn.Patrol {
			route[j] = p.Vec()
		}
		if err := w.NPCs.SetPatrol(e, route, w.Space); err != nil {
			return fmt.Errorf("npc %d (%s): %w", i, pn.Archetype, err)
		}
	}
	return nil
}

// SpawnArchetype places a new NPC of the named archetype at pos, with its
// stats, weapon and physics body.
func (w *World) SpawnArchetype(name string, pos common.Vec2) (ecs.Entity, error) {
	a, ok := w.archetypes[name]
	if !ok {
		return 0, fmt.Errorf("unknown archetype %q", name)
	}
	if !w.Space.IsWalkable(pos) {
		return 0, fmt.Errorf("archetype %s: spawn (%.1f, %.1f) is not walkable", name, pos.X, pos.Y)
	}
	stats, err := a.Stats()
	if err != nil {
		return 0, fmt.Errorf("archetype %s: %w", name, err)
	}
	weapon, err := w.weaponID(a.Weapon)
	if err != nil {
		return 0, fmt.Errorf("archetype %s: %w", name, err)
	}

	e, err := w.NPCs.SpawnNPC(a.Type, pos)
	if err != nil {
		return 0, err
	}
	st, _ := w.NPCs.State(e)
	a.Apply(st)
	st.WithWeapon(weapon)

	w.Store.Add(e, pos, 0, stats)
	w.Space.AddBody(e, pos, a.Radius, a.Mass)
	w.spawnedAs[e] = name
	w.log.Debug("archetype spawned", zap.String("archetype", name), zap.Stringer("entity", e))
	return e, nil
}

func (w *World) weaponID(name string) (component.ItemID, error) {
	if name == "" {
		return component.NoWeapon, nil
	}
	id, ok := w.weapons[name]
	if !ok {
		return component.NoWeapon, fmt.Errorf("unknown weapon %q", name)
	}
	return id, nil
}
