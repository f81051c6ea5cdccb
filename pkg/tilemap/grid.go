// Package tilemap provides the 2D tile grid levels are built on.
package tilemap

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/pitrunner/pkg/math"
)

// Tile grid errors.
var (
	ErrUnknownTile     = errors.New("unknown tile rune")
	ErrInvalidGridSize = errors.New("invalid grid size")
	ErrRaggedRows      = errors.New("rows have different widths")
)

// Tile represents the occupancy type of a cell.
type Tile uint8

// Tile type constants.
const (
	Empty Tile = 0 // Nothing, walk or fall through
	Solid Tile = 1 // Ground or wall
	Trap  Tile = 2 // Solid ground with an embedded hazard (spikes)
)

// String returns a human-readable tile name.
func (t Tile) String() string {
	switch t {
	case Empty:
		return "Empty"
	case Solid:
		return "Solid"
	case Trap:
		return "Trap"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsOccupied returns true if the tile blocks movement.
func (t Tile) IsOccupied() bool {
	return t == Solid || t == Trap
}

// IsHazard returns true if standing on the tile hurts.
func (t Tile) IsHazard() bool {
	return t == Trap
}

// Coord is a cell coordinate. Row 0 is the bottom row.
type Coord struct {
	X, Y int
}

// Up returns the cell above.
func (c Coord) Up() Coord { return Coord{c.X, c.Y + 1} }

// Down returns the cell below.
func (c Coord) Down() Coord { return Coord{c.X, c.Y - 1} }

// Offset returns the cell dx, dy away.
func (c Coord) Offset(dx, dy int) Coord { return Coord{c.X + dx, c.Y + dy} }

// Grid is a fixed-size tile grid placed in world space.
type Grid struct {
	Width    int
	Height   int
	TileSize float32
	Origin   math.Vec2 // World position of the bottom-left corner of cell (0,0)
	Tiles    []Tile
}

// NewGrid creates an empty grid.
func NewGrid(width, height int, tileSize float32, origin math.Vec2) (*Grid, error) {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return nil, fmt.Errorf("%w: %dx%d@%g", ErrInvalidGridSize, width, height, tileSize)
	}
	return &Grid{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		Origin:   origin,
		Tiles:    make([]Tile, width*height),
	}, nil
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// TileAt returns the tile at c. Out-of-bounds cells are Empty.
func (g *Grid) TileAt(c Coord) Tile {
	if g == nil || !g.InBounds(c) {
		return Empty
	}
	return g.Tiles[c.Y*g.Width+c.X]
}

// SetTile sets the tile at c. Out-of-bounds writes are ignored.
func (g *Grid) SetTile(c Coord, t Tile) {
	if !g.InBounds(c) {
		return
	}
	g.Tiles[c.Y*g.Width+c.X] = t
}

// Fill sets every cell in the inclusive rectangle from a to b.
func (g *Grid) Fill(a, b Coord, t Tile) {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	for y := a.Y; y <= b.Y; y++ {
		for x := a.X; x <= b.X; x++ {
			g.SetTile(Coord{x, y}, t)
		}
	}
}

// IsOccupied checks if the cell at c blocks movement.
func (g *Grid) IsOccupied(c Coord) bool {
	return g.TileAt(c).IsOccupied()
}

// IsSurface reports whether c is occupied with an empty cell above it.
func (g *Grid) IsSurface(c Coord) bool {
	return g.IsOccupied(c) && !g.IsOccupied(c.Up())
}

// WorldToGrid converts a world position to the cell containing it.
func (g *Grid) WorldToGrid(p math.Vec2) Coord {
	rel := p.Sub(g.Origin)
	return Coord{
		X: int(gomath.Floor(float64(rel.X / g.TileSize))),
		Y: int(gomath.Floor(float64(rel.Y / g.TileSize))),
	}
}

// GridToWorld converts a cell coordinate to the world position of its centre.
func (g *Grid) GridToWorld(c Coord) math.Vec2 {
	return math.Vec2{
		X: g.Origin.X + (float32(c.X)+0.5)*g.TileSize,
		Y: g.Origin.Y + (float32(c.Y)+0.5)*g.TileSize,
	}
}

// CellSize returns the tile edge length in world units.
func (g *Grid) CellSize() float32 {
	return g.TileSize
}

// Bounds returns the grid size in cells.
func (g *Grid) Bounds() (width, height int) {
	return g.Width, g.Height
}

// CountByType returns the count of cells for each type.
func (g *Grid) CountByType() map[Tile]int {
	counts := make(map[Tile]int)
	for _, t := range g.Tiles {
		counts[t]++
	}
	return counts
}
