package physics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/npcsim/common"
	"github.com/milk9111/npcsim/ecs"
)

const (
	categoryWall uint = 1 << iota
	categoryBody
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeBody
)

const knockbackMaxDeltaV = 28.0

var (
	wallFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryWall, Mask: cp.ALL_CATEGORIES}
	bodyFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryBody, Mask: categoryWall}
	// queryFilter only reports static geometry.
	queryFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: categoryWall}
)

// Space owns the Chipmunk space holding static walls and the dynamic
// bodies that receive knockback. It answers collision, line-of-sight,
// walkability and waypoint queries for the combat and NPC systems.
type Space struct {
	space  *cp.Space
	bounds common.AABB
	walls  []common.AABB
	bodies map[ecs.Entity]*bodyInfo

	nav navGrid
}

type bodyInfo struct {
	body   *cp.Body
	shape  *cp.Shape
	radius float64
}

// NewSpace creates an empty, gravity-free space covering bounds. cellSize
// sets the navigation grid resolution used by NextWaypoint.
func NewSpace(bounds common.AABB, cellSize float64) *Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	space.SetDamping(0.05)

	s := &Space{
		space:  space,
		bounds: bounds,
		bodies: make(map[ecs.Entity]*bodyInfo),
	}
	s.nav = newNavGrid(bounds, cellSize)
	return s
}

func (s *Space) Bounds() common.AABB {
	return s.bounds
}

// Walls returns the static wall boxes in insertion order.
func (s *Space) Walls() []common.AABB {
	out := make([]common.AABB, len(s.walls))
	copy(out, s.walls)
	return out
}

// AddWall adds a static, solid box.
func (s *Space) AddWall(box common.AABB) {
	if s == nil || box.Width() <= 0 || box.Height() <= 0 {
		return
	}
	shape := cp.NewBox2(s.space.StaticBody, cp.BB{L: box.MinX, B: box.MinY, R: box.MaxX, T: box.MaxY}, 0)
	shape.SetFilter(wallFilter)
	shape.SetCollisionType(collisionTypeWall)
	shape.SetFriction(0.2)
	s.space.AddShape(shape)
	s.walls = append(s.walls, box)
	s.nav.invalidate()
}

// CheckCollision reports whether box overlaps any wall.
func (s *Space) CheckCollision(box common.AABB) bool {
	if s == nil {
		return false
	}
	hit := false
	s.space.BBQuery(cp.BB{L: box.MinX, B: box.MinY, R: box.MaxX, T: box.MaxY}, queryFilter, func(shape *cp.Shape, data interface{}) {
		hit = true
	}, nil)
	return hit
}

// HasLineOfSight reports whether the segment from -> to crosses no wall.
func (s *Space) HasLineOfSight(from, to common.Vec2) bool {
	if s == nil {
		return true
	}
	info := s.space.SegmentQueryFirst(toCP(from), toCP(to), 0, queryFilter)
	return info.Shape == nil
}

// IsWalkable reports whether pos lies inside the bounds and outside every wall.
func (s *Space) IsWalkable(pos common.Vec2) bool {
	if s == nil {
		return true
	}
	if !s.bounds.Contains(pos) {
		return false
	}
	info := s.space.PointQueryNearest(toCP(pos), 0, queryFilter)
	return info == nil || info.Shape == nil
}

// NextWaypoint returns the next point to head for on the way from -> to.
// A clear straight line yields to itself; otherwise the grid path is walked
// and the furthest visible cell along it is returned. ok is false when no
// path exists.
func (s *Space) NextWaypoint(from, to common.Vec2) (common.Vec2, bool) {
	if s == nil {
		return to, false
	}
	if s.HasLineOfSight(from, to) {
		return to, true
	}
	path := s.nav.path(s, from, to)
	if len(path) < 2 {
		return to, false
	}
	next := path[1]
	for _, p := range path[2:] {
		if !s.HasLineOfSight(from, p) {
			break
		}
		next = p
	}
	return next, true
}

// AddBody registers a dynamic circle for e at pos.
func (s *Space) AddBody(e ecs.Entity, pos common.Vec2, radius, mass float64) {
	if s == nil {
		return
	}
	s.RemoveBody(e)
	if mass <= 0 {
		mass = 1
	}
	if radius <= 0 {
		radius = 0.4
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(toCP(pos))
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFilter(bodyFilter)
	shape.SetCollisionType(collisionTypeBody)
	shape.SetFriction(0.2)
	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.bodies[e] = &bodyInfo{body: body, shape: shape, radius: radius}
}

func (s *Space) RemoveBody(e ecs.Entity) {
	if s == nil {
		return
	}
	info, ok := s.bodies[e]
	if !ok {
		return
	}
	s.space.RemoveShape(info.shape)
	s.space.RemoveBody(info.body)
	delete(s.bodies, e)
}

func (s *Space) HasBody(e ecs.Entity) bool {
	_, ok := s.bodies[e]
	return ok
}

// SetBodyPosition teleports e's body, keeping its velocity.
func (s *Space) SetBodyPosition(e ecs.Entity, pos common.Vec2) {
	if info, ok := s.bodies[e]; ok {
		info.body.SetPosition(toCP(pos))
	}
}

func (s *Space) BodyPosition(e ecs.Entity) (common.Vec2, bool) {
	info, ok := s.bodies[e]
	if !ok {
		return common.Vec2{}, false
	}
	return fromCP(info.body.Position()), true
}

// BodyRadius returns the radius e was added with, 0 without a body.
func (s *Space) BodyRadius(e ecs.Entity) float64 {
	info, ok := s.bodies[e]
	if !ok {
		return 0
	}
	return info.radius
}

// BodySpeed returns the magnitude of e's velocity.
func (s *Space) BodySpeed(e ecs.Entity) float64 {
	info, ok := s.bodies[e]
	if !ok {
		return 0
	}
	return info.body.Velocity().Length()
}

// ApplyImpulse pushes e's body. The velocity change along the impulse is
// capped so stacked hits don't launch bodies through the arena.
func (s *Space) ApplyImpulse(e ecs.Entity, impulse common.Vec2) {
	info, ok := s.bodies[e]
	if !ok || impulse.IsZero() {
		return
	}
	body := info.body
	body.ApplyImpulseAtWorldPoint(toCP(impulse), body.Position())

	n := impulse.Normalize()
	v := body.Velocity()
	along := v.X*n.X + v.Y*n.Y
	if along > knockbackMaxDeltaV {
		body.SetVelocityVector(cp.Vector{
			X: v.X - n.X*along + n.X*knockbackMaxDeltaV,
			Y: v.Y - n.Y*along + n.Y*knockbackMaxDeltaV,
		})
	}
}

// Step advances the simulation. Bodies only collide with walls.
func (s *Space) Step(dt float64) {
	if s == nil || dt <= 0 {
		return
	}
	s.space.Step(dt)
	for _, info := range s.bodies {
		v := info.body.Velocity()
		if math.Abs(v.X) < 1e-3 && math.Abs(v.Y) < 1e-3 {
			info.body.SetVelocityVector(cp.Vector{})
		}
	}
}

func toCP(v common.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) common.Vec2 {
	return common.Vec2{X: v.X, Y: v.Y}
}
