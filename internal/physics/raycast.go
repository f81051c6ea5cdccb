package physics

import (
	gomath "math"

	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

// Hit describes the first thing a ray touched.
type Hit struct {
	Point    math.Vec2
	Normal   math.Vec2
	Distance float32

	// Exactly one of TileHit or Collider is set.
	TileHit  bool
	Tile     tilemap.Coord
	Collider *Collider
}

// Raycast casts a ray from origin along dir up to maxDist and returns the
// nearest tile or collider whose layers match mask.
// A ray starting inside a matching tile or box hits at distance 0.
func (w *World) Raycast(origin, dir math.Vec2, maxDist float32, mask Layer) (Hit, bool) {
	dir = dir.Normalize()
	if dir == (math.Vec2{}) || maxDist < 0 {
		return Hit{}, false
	}

	best, found := w.raycastGrid(origin, dir, maxDist, mask)

	for _, c := range w.Colliders() {
		if c.Layer&mask == 0 {
			continue
		}
		t, normal, ok := intersectAABB(origin, dir, c.Box)
		if !ok || t > maxDist {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{
				Point:    origin.Add(dir.Scale(t)),
				Normal:   normal,
				Distance: t,
				Collider: c,
			}
			found = true
		}
	}

	return best, found
}

// raycastGrid walks the grid cell by cell (DDA) until it enters a matching tile.
func (w *World) raycastGrid(origin, dir math.Vec2, maxDist float32, mask Layer) (Hit, bool) {
	g := w.grid
	if g == nil {
		return Hit{}, false
	}

	solid := func(c tilemap.Coord) bool {
		return TileLayers(g.TileAt(c))&mask != 0
	}

	size := float64(g.TileSize)
	// Position in tile units
	px := float64(origin.X-g.Origin.X) / size
	py := float64(origin.Y-g.Origin.Y) / size
	cell := tilemap.Coord{X: int(gomath.Floor(px)), Y: int(gomath.Floor(py))}

	if solid(cell) {
		return Hit{
			Point:    origin,
			Normal:   dir.Scale(-1),
			Distance: 0,
			TileHit:  true,
			Tile:     cell,
		}, true
	}

	dx, dy := float64(dir.X), float64(dir.Y)

	// Distance along the ray (in tile units) to cross one cell on each axis
	deltaX, deltaY := gomath.Inf(1), gomath.Inf(1)
	if dx != 0 {
		deltaX = gomath.Abs(1 / dx)
	}
	if dy != 0 {
		deltaY = gomath.Abs(1 / dy)
	}

	var stepX, stepY int
	var sideX, sideY float64
	if dx < 0 {
		stepX = -1
		sideX = (px - float64(cell.X)) * deltaX
	} else {
		stepX = 1
		sideX = (float64(cell.X) + 1 - px) * deltaX
	}
	if dy < 0 {
		stepY = -1
		sideY = (py - float64(cell.Y)) * deltaY
	} else {
		stepY = 1
		sideY = (float64(cell.Y) + 1 - py) * deltaY
	}

	maxT := float64(maxDist) / size

	// Each step advances t by at least one cell on the dominant axis, so the
	// loop is bounded by maxT.
	for {
		var t float64
		var normal math.Vec2
		if sideX < sideY {
			t = sideX
			sideX += deltaX
			cell.X += stepX
			normal = math.Vec2{X: float32(-stepX)}
		} else {
			t = sideY
			sideY += deltaY
			cell.Y += stepY
			normal = math.Vec2{Y: float32(-stepY)}
		}

		if t > maxT || gomath.IsInf(t, 0) {
			return Hit{}, false
		}

		if solid(cell) {
			dist := float32(t * size)
			return Hit{
				Point:    origin.Add(dir.Scale(dist)),
				Normal:   normal,
				Distance: dist,
				TileHit:  true,
				Tile:     cell,
			}, true
		}
	}
}

// intersectAABB tests ray intersection with an axis-aligned box using slabs.
// If the ray starts inside the box it hits at t=0.
func intersectAABB(origin, dir math.Vec2, box AABB) (t float32, normal math.Vec2, hit bool) {
	if box.Contains(origin) {
		return 0, dir.Scale(-1), true
	}

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)
	var nmin math.Vec2

	// X slab
	if dir.X != 0 {
		t1 := (box.Min.X - origin.X) / dir.X
		t2 := (box.Max.X - origin.X) / dir.X
		n := math.Vec2{X: -1}
		if t1 > t2 {
			t1, t2 = t2, t1
			n = math.Vec2{X: 1}
		}
		if t1 > tmin {
			tmin = t1
			nmin = n
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.X < box.Min.X || origin.X > box.Max.X {
		return 0, math.Vec2{}, false
	}

	// Y slab
	if dir.Y != 0 {
		t1 := (box.Min.Y - origin.Y) / dir.Y
		t2 := (box.Max.Y - origin.Y) / dir.Y
		n := math.Vec2{Y: -1}
		if t1 > t2 {
			t1, t2 = t2, t1
			n = math.Vec2{Y: 1}
		}
		if t1 > tmin {
			tmin = t1
			nmin = n
		}
		if t2 < tmax {
			tmax = t2
		}
	} else if origin.Y < box.Min.Y || origin.Y > box.Max.Y {
		return 0, math.Vec2{}, false
	}

	if tmax < tmin || tmax < 0 || tmin < 0 {
		return 0, math.Vec2{}, false
	}
	return tmin, nmin, true
}
