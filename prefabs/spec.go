package prefabs

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/component"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ArchetypeSpec tunes one NPC archetype. Unset optional fields keep the
// archetype defaults.
type ArchetypeSpec struct {
	Type         component.NPCType  `yaml:"type"`
	Tree         string             `yaml:"tree"`
	Speed        float64            `yaml:"speed"`
	AggroRange   *float64           `yaml:"aggro_range"`
	WanderRadius *float64           `yaml:"wander_radius"`
	Health       float64            `yaml:"health"`
	Armor        float64            `yaml:"armor"`
	Resistances  map[string]float64 `yaml:"resistances"`
	CritChance   *float64           `yaml:"crit_chance"`
	AttackSpeed  float64            `yaml:"attack_speed"`
	Weapon       string             `yaml:"weapon"`
	Radius       float64            `yaml:"radius"`
	Mass         float64            `yaml:"mass"`
	Color        *YAMLColor         `yaml:"color"`
}

type ArchetypesSpec struct {
	Archetypes map[string]ArchetypeSpec `yaml:"archetypes"`
}

func LoadArchetypes() (ArchetypesSpec, error) {
	spec, err := LoadSpec[ArchetypesSpec]("archetypes.yaml")
	if err != nil {
		return spec, err
	}
	for name, a := range spec.Archetypes {
		if _, err := a.Stats(); err != nil {
			return spec, fmt.Errorf("prefabs: archetype %s: %w", name, err)
		}
	}
	return spec, nil
}

// Stats builds the combat stats an archetype spawns with.
func (a ArchetypeSpec) Stats() (*component.CombatStats, error) {
	s := component.NewCombatStats()
	if a.Health > 0 {
		s.WithHealth(a.Health)
	}
	s.WithArmor(a.Armor)
	if a.AttackSpeed > 0 {
		s.WithAttackSpeed(a.AttackSpeed)
	}
	if a.CritChance != nil {
		s.WithCritChance(*a.CritChance)
	}
	for name, v := range a.Resistances {
		var t component.DamageType
		if err := t.UnmarshalText([]byte(name)); err != nil {
			return nil, err
		}
		s.WithResistance(t, v)
	}
	return s, nil
}

// Apply overrides the type defaults in st with the archetype's tuning.
func (a ArchetypeSpec) Apply(st *component.NPCState) {
	if a.Speed > 0 {
		st.WithSpeed(a.Speed)
	}
	if a.AggroRange != nil {
		st.WithAggroRange(*a.AggroRange)
	}
	if a.WanderRadius != nil {
		st.WithWanderRadius(*a.WanderRadius)
	}
}

// ShapeSpec is the YAML form of an attack shape. Arc is in degrees.
type ShapeSpec struct {
	Kind       string  `yaml:"kind"`
	Range      float64 `yaml:"range"`
	Arc        float64 `yaml:"arc"`
	Projectile string  `yaml:"projectile"`
	Speed      float64 `yaml:"speed"`
	Radius     float64 `yaml:"radius"`
	Falloff    bool    `yaml:"falloff"`
}

func (s ShapeSpec) Shape() (component.AttackShape, error) {
	switch strings.ToLower(strings.TrimSpace(s.Kind)) {
	case "", "melee":
		def := component.DefaultAttackShape().(component.Melee)
		m := component.Melee{Range: s.Range, Arc: s.Arc * math.Pi / 180}
		if m.Range <= 0 {
			m.Range = def.Range
		}
		if m.Arc <= 0 {
			m.Arc = def.Arc
		}
		return m, nil
	case "ranged":
		var kind component.ProjectileKind
		if s.Projectile != "" {
			if err := kind.UnmarshalText([]byte(s.Projectile)); err != nil {
				return nil, err
			}
		}
		if s.Speed <= 0 {
			return nil, fmt.Errorf("ranged shape needs a positive speed")
		}
		return component.Ranged{Kind: kind, Speed: s.Speed}, nil
	case "area":
		if s.Radius <= 0 {
			return nil, fmt.Errorf("area shape needs a positive radius")
		}
		return component.Area{Radius: s.Radius, Falloff: s.Falloff}, nil
	default:
		return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
}

type WeaponSpec struct {
	ID         component.ItemID `yaml:"id"`
	Damage     float64          `yaml:"damage"`
	DamageType string           `yaml:"damage_type"`
	Shape      ShapeSpec        `yaml:"shape"`
	Cooldown   float64          `yaml:"cooldown"`
	Knockback  *float64         `yaml:"knockback"`
	CritBonus  float64          `yaml:"crit_bonus"`
}

type WeaponsSpec struct {
	Weapons map[string]WeaponSpec `yaml:"weapons"`
}

// LoadWeapons reads the weapon table and rejects duplicate or zero ids.
func LoadWeapons() (WeaponsSpec, error) {
	spec, err := LoadSpec[WeaponsSpec]("weapons.yaml")
	if err != nil {
		return spec, err
	}
	seen := make(map[component.ItemID]string, len(spec.Weapons))
	for name, w := range spec.Weapons {
		if w.ID == component.NoWeapon {
			return spec, fmt.Errorf("prefabs: weapon %s: id must be non-zero", name)
		}
		if other, ok := seen[w.ID]; ok {
			return spec, fmt.Errorf("prefabs: weapons %s and %s share id %d", other, name, w.ID)
		}
		seen[w.ID] = name
		if _, err := w.Stats(); err != nil {
			return spec, fmt.Errorf("prefabs: weapon %s: %w", name, err)
		}
	}
	return spec, nil
}

func (w WeaponSpec) Stats() (component.WeaponStats, error) {
	shape, err := w.Shape.Shape()
	if err != nil {
		return component.WeaponStats{}, err
	}
	stats := component.NewWeaponStats(w.Damage).WithShape(shape).WithCritBonus(w.CritBonus)
	if w.DamageType != "" {
		var t component.DamageType
		if err := t.UnmarshalText([]byte(w.DamageType)); err != nil {
			return component.WeaponStats{}, err
		}
		stats = stats.WithDamageType(t)
	}
	if w.Cooldown > 0 {
		stats = stats.WithCooldown(w.Cooldown)
	}
	if w.Knockback != nil {
		stats = stats.WithKnockback(*w.Knockback)
	}
	return stats, nil
}

type RectSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

func (r RectSpec) AABB() common.AABB {
	return common.NewAABB(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p PointSpec) Vec() common.Vec2 {
	return common.V(p.X, p.Y)
}

type PlayerSpec struct {
	Position PointSpec `yaml:"position"`
	Health   float64   `yaml:"health"`
	Armor    float64   `yaml:"armor"`
	Speed    float64   `yaml:"speed"`
	Weapon   string    `yaml:"weapon"`
}

type PlacedNPCSpec struct {
	Archetype string      `yaml:"archetype"`
	Position  PointSpec   `yaml:"position"`
	Weapon    string      `yaml:"weapon"`
	Patrol    []PointSpec `yaml:"patrol"`
}

// ArenaSpec lays out a rectangular arena: walls, the player and NPCs.
type ArenaSpec struct {
	Name     string          `yaml:"name"`
	Width    float64         `yaml:"width"`
	Height   float64         `yaml:"height"`
	CellSize float64         `yaml:"cell_size"`
	Walls    []RectSpec      `yaml:"walls"`
	Player   PlayerSpec      `yaml:"player"`
	NPCs     []PlacedNPCSpec `yaml:"npcs"`
}

func LoadArena(name string) (ArenaSpec, error) {
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}
	spec, err := LoadSpec[ArenaSpec](name)
	if err != nil {
		return spec, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return spec, fmt.Errorf("prefabs: arena %s: width and height must be positive", name)
	}
	return spec, nil
}

func (a ArenaSpec) Bounds() common.AABB {
	return common.NewAABB(0, 0, a.Width, a.Height)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
