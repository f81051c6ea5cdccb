package tilemap

import (
	"fmt"
	"unicode/utf8"

	"github.com/Faultbox/pitrunner/pkg/math"
)

// Tile runes used by ParseRows and Rows.
const (
	RuneEmpty = '.'
	RuneSolid = '#'
	RuneTrap  = '^'
)

// ParseRows builds a grid from ASCII rows, top row first.
// '#' is solid, '^' is a trap, '.' and ' ' are empty.
func ParseRows(rows []string, tileSize float32, origin math.Vec2) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidGridSize)
	}

	width := utf8.RuneCountInString(rows[0])
	grid, err := NewGrid(width, len(rows), tileSize, origin)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if n := utf8.RuneCountInString(row); n != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRows, i, n, width)
		}
		y := len(rows) - 1 - i
		x := 0
		for _, r := range row {
			t, err := tileFromRune(r)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, x, err)
			}
			grid.SetTile(Coord{x, y}, t)
			x++
		}
	}

	return grid, nil
}

// Rows renders the grid back to ASCII rows, top row first.
func (g *Grid) Rows() []string {
	rows := make([]string, g.Height)
	buf := make([]rune, g.Width)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			switch g.TileAt(Coord{x, y}) {
			case Solid:
				buf[x] = RuneSolid
			case Trap:
				buf[x] = RuneTrap
			default:
				buf[x] = RuneEmpty
			}
		}
		rows[g.Height-1-y] = string(buf)
	}
	return rows
}

func tileFromRune(r rune) (Tile, error) {
	switch r {
	case RuneEmpty, ' ':
		return Empty, nil
	case RuneSolid:
		return Solid, nil
	case RuneTrap:
		return Trap, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownTile, r)
	}
}
