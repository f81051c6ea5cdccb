// Package world handles level loading and management.
package world

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

// Level errors.
var (
	ErrNoRows       = errors.New("level has no rows")
	ErrBadCollider  = errors.New("invalid collider")
	ErrSpawnBlocked = errors.New("spawn point is inside a solid tile")
)

// Level is a loaded level.
type Level struct {
	Name      string
	Grid      *tilemap.Grid
	Spawn     math.Vec2 // Feet of the hero
	Goal      math.OptVec2
	Colliders []physics.Collider
}

type levelFile struct {
	Name      string         `yaml:"name"`
	TileSize  float32        `yaml:"tile_size"`
	Origin    math.Vec2      `yaml:"origin"`
	Spawn     *math.Vec2     `yaml:"spawn"`
	Goal      *math.Vec2     `yaml:"goal"`
	Rows      []string       `yaml:"rows"`
	Colliders []colliderFile `yaml:"colliders"`
}

type colliderFile struct {
	ID    string    `yaml:"id"`
	Layer string    `yaml:"layer"`
	Min   math.Vec2 `yaml:"min"`
	Max   math.Vec2 `yaml:"max"`
}

// LoadLevel reads a level from a YAML file.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	lvl, err := ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes a level from YAML.
//
// Rows are ASCII, top row first. tile_size defaults to 1. Without a spawn
// the hero starts on the top surface of column 1.
func ParseLevel(data []byte) (*Level, error) {
	var f levelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing level: %w", err)
	}
	if len(f.Rows) == 0 {
		return nil, ErrNoRows
	}
	if f.TileSize == 0 {
		f.TileSize = 1
	}

	grid, err := tilemap.ParseRows(f.Rows, f.TileSize, f.Origin)
	if err != nil {
		return nil, err
	}

	lvl := &Level{Name: f.Name, Grid: grid}

	if f.Spawn != nil {
		lvl.Spawn = *f.Spawn
		above := lvl.Spawn.Add(math.Vec2{Y: grid.TileSize / 100})
		if grid.IsOccupied(grid.WorldToGrid(above)) {
			return nil, fmt.Errorf("%w: (%g, %g)", ErrSpawnBlocked, lvl.Spawn.X, lvl.Spawn.Y)
		}
	} else {
		lvl.Spawn = SurfaceAt(grid, 1)
	}
	if f.Goal != nil {
		lvl.Goal = math.Some(*f.Goal)
	}

	for i, c := range f.Colliders {
		layer, ok := physics.ParseLayer(c.Layer)
		if !ok {
			return nil, fmt.Errorf("%w %d (%s): unknown layer %q", ErrBadCollider, i, c.ID, c.Layer)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("collider-%d", i)
		}
		if c.Max.X < c.Min.X || c.Max.Y < c.Min.Y {
			return nil, fmt.Errorf("%w %d (%s): max below min", ErrBadCollider, i, c.ID)
		}
		lvl.Colliders = append(lvl.Colliders, physics.Collider{
			ID:    c.ID,
			Box:   physics.AABB{Min: c.Min, Max: c.Max},
			Layer: layer,
		})
	}

	return lvl, nil
}

// SurfaceAt returns the feet position standing on the topmost occupied
// tile of column col, or the bottom of the grid when the column is empty.
func SurfaceAt(g *tilemap.Grid, col int) math.Vec2 {
	x := g.GridToWorld(tilemap.Coord{X: col}).X
	for y := g.Height - 1; y >= 0; y-- {
		if g.IsOccupied(tilemap.Coord{X: col, Y: y}) {
			return math.Vec2{X: x, Y: g.Origin.Y + float32(y+1)*g.TileSize}
		}
	}
	return math.Vec2{X: x, Y: g.Origin.Y}
}

// Physics builds a physics world over the level grid and colliders.
func (l *Level) Physics() *physics.World {
	w := physics.NewWorld(l.Grid)
	for i := range l.Colliders {
		c := l.Colliders[i]
		w.Add(&c)
	}
	return w
}

// Manager manages the current level and level transitions.
type Manager struct {
	current *Level
	loading bool
}

// NewManager creates a new level manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current level.
func (m *Manager) Current() *Level {
	return m.current
}

// LoadLevel loads a level file and makes it current. The current level is
// kept when loading fails.
func (m *Manager) LoadLevel(path string) error {
	m.loading = true
	defer func() { m.loading = false }()

	lvl, err := LoadLevel(path)
	if err != nil {
		return fmt.Errorf("loading level: %w", err)
	}

	m.current = lvl
	return nil
}

// IsLoading returns whether a level is currently loading.
func (m *Manager) IsLoading() bool {
	return m.loading
}
