// Package physics answers raycast and overlap queries against a tile grid
// and a set of axis-aligned colliders.
package physics

import (
	"sort"
	"strings"

	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

// Layer is a collision layer bitmask.
type Layer uint32

// Collision layers.
const (
	LayerGround Layer = 1 << iota
	LayerTrap
	LayerHero
	LayerEnemy
	LayerPickup

	AllLayers Layer = 0xffffffff
)

var layerNames = []struct {
	layer Layer
	name  string
}{
	{LayerGround, "ground"},
	{LayerTrap, "trap"},
	{LayerHero, "hero"},
	{LayerEnemy, "enemy"},
	{LayerPickup, "pickup"},
}

// String returns the layer names joined by '|'.
func (l Layer) String() string {
	if l == AllLayers {
		return "all"
	}
	var parts []string
	for _, ln := range layerNames {
		if l&ln.layer != 0 {
			parts = append(parts, ln.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseLayer parses a '|' separated list of layer names.
// Unknown names are reported with ok=false.
func ParseLayer(s string) (l Layer, ok bool) {
	if s == "all" {
		return AllLayers, true
	}
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		found := false
		for _, ln := range layerNames {
			if ln.name == part {
				l |= ln.layer
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return l, true
}

// TileLayers returns the layers a tile type occupies.
func TileLayers(t tilemap.Tile) Layer {
	switch t {
	case tilemap.Solid:
		return LayerGround
	case tilemap.Trap:
		return LayerGround | LayerTrap
	default:
		return 0
	}
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec2
	Max math.Vec2
}

// NewAABB creates a box centred at c with the given size.
func NewAABB(c math.Vec2, w, h float32) AABB {
	half := math.Vec2{X: w / 2, Y: h / 2}
	return AABB{Min: c.Sub(half), Max: c.Add(half)}
}

// Center returns the centre of the box.
func (b AABB) Center() math.Vec2 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the four corners of the box.
func (b AABB) Corners() [4]math.Vec2 {
	return [4]math.Vec2{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Min.X, Y: b.Max.Y},
		{X: b.Max.X, Y: b.Max.Y},
	}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p math.Vec2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Intersects checks if this box intersects another.
func (b AABB) Intersects(o AABB) bool {
	return !(b.Max.X < o.Min.X || o.Max.X < b.Min.X || b.Max.Y < o.Min.Y || o.Max.Y < b.Min.Y)
}

// DistanceToPoint returns the distance from p to the closest point of the box.
func (b AABB) DistanceToPoint(p math.Vec2) float32 {
	closest := math.Vec2{
		X: math.Clamp(p.X, b.Min.X, b.Max.X),
		Y: math.Clamp(p.Y, b.Min.Y, b.Max.Y),
	}
	return closest.Distance(p)
}

// Collider is a box on one or more layers.
type Collider struct {
	ID    string
	Box   AABB
	Layer Layer
}

// World holds the tile grid and the dynamic colliders of a level.
type World struct {
	grid      *tilemap.Grid
	colliders map[string]*Collider
}

// NewWorld creates a physics world over grid.
func NewWorld(grid *tilemap.Grid) *World {
	return &World{
		grid:      grid,
		colliders: make(map[string]*Collider),
	}
}

// Grid returns the tile grid.
func (w *World) Grid() *tilemap.Grid {
	return w.grid
}

// Add registers a collider, replacing any with the same ID.
func (w *World) Add(c *Collider) {
	w.colliders[c.ID] = c
}

// Remove unregisters a collider.
func (w *World) Remove(id string) {
	delete(w.colliders, id)
}

// Move updates a collider's box.
func (w *World) Move(id string, box AABB) {
	if c, ok := w.colliders[id]; ok {
		c.Box = box
	}
}

// Colliders returns all colliders sorted by ID.
func (w *World) Colliders() []*Collider {
	out := make([]*Collider, 0, len(w.colliders))
	for _, c := range w.colliders {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Overlap returns colliders on mask within radius of origin, sorted by ID.
func (w *World) Overlap(origin math.Vec2, radius float32, mask Layer) []*Collider {
	var out []*Collider
	for _, c := range w.Colliders() {
		if c.Layer&mask == 0 {
			continue
		}
		if c.Box.DistanceToPoint(origin) <= radius {
			out = append(out, c)
		}
	}
	return out
}

// OverlapBox returns colliders on mask intersecting box, sorted by ID.
func (w *World) OverlapBox(box AABB, mask Layer) []*Collider {
	var out []*Collider
	for _, c := range w.Colliders() {
		if c.Layer&mask != 0 && c.Box.Intersects(box) {
			out = append(out, c)
		}
	}
	return out
}

// TilesInBox returns the occupied cells a box covers whose layers match mask.
func (w *World) TilesInBox(box AABB, mask Layer) []tilemap.Coord {
	if w.grid == nil {
		return nil
	}
	lo := w.grid.WorldToGrid(box.Min)
	hi := w.grid.WorldToGrid(box.Max)
	var out []tilemap.Coord
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			c := tilemap.Coord{X: x, Y: y}
			if TileLayers(w.grid.TileAt(c))&mask != 0 {
				out = append(out, c)
			}
		}
	}
	return out
}
