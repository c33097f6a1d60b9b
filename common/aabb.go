package common

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func NewAABB(minX, minY, maxX, maxY float64) AABB {
	return AABB{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// AABBFromCenter builds a box around center with the given half extents.
func AABBFromCenter(center Vec2, halfW, halfH float64) AABB {
	return AABB{
		MinX: center.X - halfW,
		MinY: center.Y - halfH,
		MaxX: center.X + halfW,
		MaxY: center.Y + halfH,
	}
}

func (b AABB) Center() Vec2 {
	return Vec2{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

func (b AABB) Width() float64  { return b.MaxX - b.MinX }
func (b AABB) Height() float64 { return b.MaxY - b.MinY }

func (b AABB) Intersects(other AABB) bool {
	return b.MinX < other.MaxX &&
		b.MaxX > other.MinX &&
		b.MinY < other.MaxY &&
		b.MaxY > other.MinY
}

func (b AABB) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}
