// Package perception answers the hero's sensing queries: what lies inside
// its field of view wedge, whether a pit opens ahead, and where a jump can
// land.
//
// Every tile lookup goes through the TileGrid coordinate transform, so all
// results are grid-aligned.
package perception

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

// ErrInvalidWedge is returned by Wedge.Validate.
var ErrInvalidWedge = errors.New("invalid field of view wedge")

// Physics is the collision backend perception queries.
type Physics interface {
	Raycast(origin, dir math.Vec2, maxDist float32, mask physics.Layer) (physics.Hit, bool)
	Overlap(origin math.Vec2, radius float32, mask physics.Layer) []*physics.Collider
}

// TileGrid is the level tile grid.
type TileGrid interface {
	TileAt(c tilemap.Coord) tilemap.Tile
	WorldToGrid(p math.Vec2) tilemap.Coord
	GridToWorld(c tilemap.Coord) math.Vec2
	CellSize() float32
	Bounds() (width, height int)
}

// Wedge is the angular and radial sensing region of an agent archetype.
// Angles are in degrees and measured for an agent facing +X; they are
// mirrored when the agent faces -X.
type Wedge struct {
	InnerRadius float32   `yaml:"inner_radius"`
	OuterRadius float32   `yaml:"outer_radius"`
	HalfAngle   float32   `yaml:"half_angle"`
	Direction   float32   `yaml:"direction"` // Centre line, 0 is straight ahead, negative looks down
	Offset      math.Vec2 `yaml:"offset"`    // From the feet to the wedge apex
}

// Validate checks the radii and angles.
func (w Wedge) Validate() error {
	switch {
	case w.InnerRadius < 0:
		return fmt.Errorf("%w: inner radius %g < 0", ErrInvalidWedge, w.InnerRadius)
	case w.OuterRadius <= w.InnerRadius:
		return fmt.Errorf("%w: outer radius %g <= inner radius %g", ErrInvalidWedge, w.OuterRadius, w.InnerRadius)
	case w.HalfAngle <= 0 || w.HalfAngle > 180:
		return fmt.Errorf("%w: half angle %g outside (0, 180]", ErrInvalidWedge, w.HalfAngle)
	case w.Direction < -180 || w.Direction > 180:
		return fmt.Errorf("%w: direction %g outside [-180, 180]", ErrInvalidWedge, w.Direction)
	}
	return nil
}

// Pose is where an agent stands and which way it looks.
type Pose struct {
	Position math.Vec2 // Feet
	Facing   float32   // +1 or -1
}

// facing returns the pose facing normalised to +1 or -1.
func (p Pose) facing() float32 {
	if p.Facing < 0 {
		return -1
	}
	return 1
}

// Sighting is a collider seen inside the wedge.
type Sighting struct {
	Collider *physics.Collider
	Distance float32
}

// FieldOfView runs wedge queries for one agent archetype.
type FieldOfView struct {
	Physics Physics
	Grid    TileGrid
	Wedge   Wedge

	// OcclusionMask is the layer set occlusion rays test against.
	// Agents exclude their own layer so they do not occlude themselves.
	OcclusionMask physics.Layer
}

// New creates a FieldOfView with occlusion against every layer.
func New(p Physics, grid TileGrid, wedge Wedge) *FieldOfView {
	return &FieldOfView{
		Physics:       p,
		Grid:          grid,
		Wedge:         wedge,
		OcclusionMask: physics.AllLayers,
	}
}

// Origin returns the wedge apex for pose.
func (f *FieldOfView) Origin(pose Pose) math.Vec2 {
	off := f.Wedge.Offset
	off.X *= pose.facing()
	return pose.Position.Add(off)
}

// direction returns the world direction of a wedge-relative angle.
func (f *FieldOfView) direction(pose Pose, deg float32) math.Vec2 {
	d := math.FromAngle(deg)
	d.X *= pose.facing()
	return d
}

// inWedge reports whether p lies in the angular wedge and radius band.
func (f *FieldOfView) inWedge(pose Pose, origin, p math.Vec2) bool {
	to := p.Sub(origin)
	dist := to.Length()
	if dist < f.Wedge.InnerRadius || dist > f.Wedge.OuterRadius {
		return false
	}
	if dist == 0 {
		return true
	}
	return to.AngleTo(f.direction(pose, f.Wedge.Direction)) <= f.Wedge.HalfAngle
}

// Contains returns the colliders on layer with at least one box corner in
// the wedge and an unobstructed line from the origin to their centre,
// nearest first.
func (f *FieldOfView) Contains(pose Pose, layer physics.Layer) []Sighting {
	origin := f.Origin(pose)

	var out []Sighting
	for _, c := range f.Physics.Overlap(origin, f.Wedge.OuterRadius, layer) {
		seen := false
		for _, corner := range c.Box.Corners() {
			if f.inWedge(pose, origin, corner) {
				seen = true
				break
			}
		}
		if !seen {
			continue
		}

		center := c.Box.Center()
		dist := origin.Distance(center)
		if dist > 0 {
			hit, ok := f.Physics.Raycast(origin, center.Sub(origin), dist, f.OcclusionMask)
			if !ok || hit.Collider != c {
				continue
			}
		}
		out = append(out, Sighting{Collider: c, Distance: dist})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}
