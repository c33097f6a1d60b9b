package physics

import (
	"container/heap"
	"math"

	"github.com/milk9111/npcsim/common"
)

const maxSearchNodes = 4096

// cell is a navigation grid coordinate.
type cell struct {
	X int
	Y int
}

// navGrid rasterises the walls into walkable/blocked cells. It is rebuilt
// lazily after walls change.
type navGrid struct {
	origin   common.Vec2
	size     float64
	cols     int
	rows     int
	blocked  []bool
	dirty    bool
	maxNodes int
}

func newNavGrid(bounds common.AABB, size float64) navGrid {
	if size <= 0 {
		size = 1
	}
	return navGrid{
		origin:   common.V(bounds.MinX, bounds.MinY),
		size:     size,
		cols:     int(math.Ceil(bounds.Width() / size)),
		rows:     int(math.Ceil(bounds.Height() / size)),
		dirty:    true,
		maxNodes: maxSearchNodes,
	}
}

func (g *navGrid) invalidate() {
	g.dirty = true
}

func (g *navGrid) rebuild(s *Space) {
	g.blocked = make([]bool, g.cols*g.rows)
	// Shrink slightly so walls that only touch a cell edge don't block it.
	const inset = 1e-3
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			minX := g.origin.X + float64(x)*g.size
			minY := g.origin.Y + float64(y)*g.size
			box := common.NewAABB(minX+inset, minY+inset, minX+g.size-inset, minY+g.size-inset)
			g.blocked[y*g.cols+x] = s.CheckCollision(box)
		}
	}
	g.dirty = false
}

func (g *navGrid) cellOf(p common.Vec2) (cell, bool) {
	x := int(math.Floor((p.X - g.origin.X) / g.size))
	y := int(math.Floor((p.Y - g.origin.Y) / g.size))
	return cell{X: x, Y: y}, g.inside(x, y)
}

func (g *navGrid) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

func (g *navGrid) center(c cell) common.Vec2 {
	return common.V(
		g.origin.X+(float64(c.X)+0.5)*g.size,
		g.origin.Y+(float64(c.Y)+0.5)*g.size,
	)
}

func (g *navGrid) isBlocked(x, y int) bool {
	return !g.inside(x, y) || g.blocked[y*g.cols+x]
}

// path returns world-space cell centres from -> to, ending exactly at to.
// The start cell may be blocked (an NPC brushing a wall); the goal may not.
func (g *navGrid) path(s *Space, from, to common.Vec2) []common.Vec2 {
	if g.cols <= 0 || g.rows <= 0 {
		return nil
	}
	if g.dirty {
		g.rebuild(s)
	}
	start, ok := g.cellOf(from)
	if !ok {
		return nil
	}
	goal, ok := g.cellOf(to)
	if !ok || g.isBlocked(goal.X, goal.Y) {
		return nil
	}
	cells := g.search(start, goal)
	if len(cells) == 0 {
		return nil
	}
	if len(cells) == 1 {
		return []common.Vec2{from, to}
	}
	out := make([]common.Vec2, 0, len(cells))
	out = append(out, from)
	for _, c := range cells[1 : len(cells)-1] {
		out = append(out, g.center(c))
	}
	return append(out, to)
}

var neighbors = [...]struct {
	dx, dy int
	cost   float64
}{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

// search is A* over the 8-connected grid. Diagonal steps may not cut
// blocked corners.
func (g *navGrid) search(start, goal cell) []cell {
	if start == goal {
		return []cell{start}
	}
	idx := func(c cell) int { return c.Y*g.cols + c.X }

	open := &openSet{}
	heap.Push(open, &openNode{c: start, f: octile(start, goal)})
	cameFrom := make(map[int]int, 128)
	gScore := map[int]float64{idx(start): 0}
	closed := make(map[int]bool, 128)

	for processed := 0; open.Len() > 0 && processed < g.maxNodes; processed++ {
		current := heap.Pop(open).(*openNode).c
		ci := idx(current)
		if closed[ci] {
			continue
		}
		closed[ci] = true
		if current == goal {
			return g.reconstruct(cameFrom, ci, idx(start))
		}
		for _, n := range neighbors {
			nx, ny := current.X+n.dx, current.Y+n.dy
			if g.isBlocked(nx, ny) {
				continue
			}
			if n.dx != 0 && n.dy != 0 && (g.isBlocked(current.X+n.dx, current.Y) || g.isBlocked(current.X, current.Y+n.dy)) {
				continue
			}
			next := cell{X: nx, Y: ny}
			ni := idx(next)
			if closed[ni] {
				continue
			}
			tentative := gScore[ci] + n.cost
			if prev, seen := gScore[ni]; seen && tentative >= prev {
				continue
			}
			cameFrom[ni] = ci
			gScore[ni] = tentative
			heap.Push(open, &openNode{c: next, g: tentative, f: tentative + octile(next, goal)})
		}
	}
	return nil
}

func (g *navGrid) reconstruct(cameFrom map[int]int, current, start int) []cell {
	path := make([]cell, 0, 32)
	for {
		path = append(path, cell{X: current % g.cols, Y: current / g.cols})
		if current == start {
			break
		}
		prev, ok := cameFrom[current]
		if !ok {
			return nil
		}
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func octile(a, b cell) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

type openNode struct {
	c cell
	g float64
	f float64
}

// openSet is a min-heap on f, ties broken by larger g then cell order so
// searches are reproducible.
type openSet []*openNode

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].g != o[j].g {
		return o[i].g > o[j].g
	}
	if o[i].c.Y != o[j].c.Y {
		return o[i].c.Y < o[j].c.Y
	}
	return o[i].c.X < o[j].c.X
}
func (o openSet) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(*openNode)) }
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}
