package perception

import (
	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

// Pit search defaults.
const (
	DefaultMaxRise               = 3
	DefaultMaxDrop               = 4
	DefaultPitDepthLandingOffset = 0.35
	DefaultRunwayBase            = 3
	DefaultRunwayPerDepth        = 0.65

	// nudge offsets sample points off tile boundaries, in tile units.
	nudge = 0.01
)

// PitSearch tunes the endpoint search of CheckForPit.
type PitSearch struct {
	MaxRise int // Rows scanned above the ledge row, including it
	MaxDrop int // Rows scanned below the ledge row

	// Forward shift of a low landing per world unit of depth. Empirical.
	PitDepthLandingOffset float32

	// A low landing needs RunwayBase + i*RunwayPerDepth world units of
	// walkable ground, where i is the row index below the ledge.
	RunwayBase     float32
	RunwayPerDepth float32
}

// DefaultPitSearch returns the tuned defaults.
func DefaultPitSearch() PitSearch {
	return PitSearch{
		MaxRise:               DefaultMaxRise,
		MaxDrop:               DefaultMaxDrop,
		PitDepthLandingOffset: DefaultPitDepthLandingOffset,
		RunwayBase:            DefaultRunwayBase,
		RunwayPerDepth:        DefaultRunwayPerDepth,
	}
}

// PitResult is the outcome of CheckForPit.
type PitResult struct {
	Found     bool          // A ledge was detected
	Ground    physics.Hit   // The lower boundary ray hit
	GroundHit bool          // Ground is valid
	Ledge     tilemap.Coord // Last walkable tile before the pit
	Edge      math.Vec2     // Top corner of the ledge on the pit side
	Endpoints []math.Vec2   // High route first, then low route
}

// CheckForPit casts the lower wedge boundary ray to find the next ground
// contact and decides whether a ledge opens after it. When one does it looks
// for up to two landing endpoints: a high route across the pit and a low
// route into it.
func (f *FieldOfView) CheckForPit(pose Pose, ground, trap physics.Layer, ignoreInGroundTraps bool) PitResult {
	return f.CheckForPitWith(pose, ground, trap, ignoreInGroundTraps, DefaultPitSearch())
}

// CheckForPitWith is CheckForPit with explicit search tuning.
func (f *FieldOfView) CheckForPitWith(pose Pose, ground, trap physics.Layer, ignoreInGroundTraps bool, search PitSearch) PitResult {
	var res PitResult

	facing := pose.facing()
	origin := f.Origin(pose)
	size := f.Grid.CellSize()

	dir := f.direction(pose, f.Wedge.Direction-f.Wedge.HalfAngle)
	hit, ok := f.Physics.Raycast(origin, dir, f.Wedge.OuterRadius, ground)
	if !ok || !hit.TileHit {
		return res
	}
	res.Ground, res.GroundHit = hit, true

	contact := f.Grid.WorldToGrid(hit.Point.Sub(hit.Normal.Scale(nudge * size)))
	step := int(facing)
	if !f.occupied(contact) || f.occupied(contact.Up()) || f.occupied(contact.Offset(step, 0)) {
		return res
	}

	res.Found = true
	res.Ledge = contact
	res.Edge = f.ledgeEdge(contact, facing)

	extent := (origin.X + facing*f.Wedge.OuterRadius - res.Edge.X) * facing
	if extent < size {
		extent = size
	}

	if ep, ok := f.highRoute(contact, res.Edge, facing, extent, ground, search); ok {
		res.Endpoints = append(res.Endpoints, ep)
	}
	if ep, ok := f.lowRoute(contact, res.Edge, facing, extent, ground, trap, ignoreInGroundTraps, search); ok {
		res.Endpoints = append(res.Endpoints, ep)
	}
	return res
}

// ledgeEdge returns the top corner of the ledge tile on the facing side.
func (f *FieldOfView) ledgeEdge(ledge tilemap.Coord, facing float32) math.Vec2 {
	center := f.Grid.GridToWorld(ledge)
	half := f.Grid.CellSize() / 2
	return math.Vec2{X: center.X + facing*half, Y: center.Y + half}
}

// rowStart is the point just past the ledge edge at the centre of row.
func (f *FieldOfView) rowStart(edge math.Vec2, ledge tilemap.Coord, row int, facing float32) math.Vec2 {
	size := f.Grid.CellSize()
	y := f.Grid.GridToWorld(tilemap.Coord{X: ledge.X, Y: row}).Y
	return math.Vec2{X: edge.X + facing*nudge*size, Y: y}
}

// highRoute scans from the ledge row upward for the far side of the pit.
func (f *FieldOfView) highRoute(ledge tilemap.Coord, edge math.Vec2, facing, extent float32, ground physics.Layer, search PitSearch) (math.Vec2, bool) {
	size := f.Grid.CellSize()
	ahead := math.Vec2{X: facing}

	for i := 0; i <= search.MaxRise; i++ {
		start := f.rowStart(edge, ledge, ledge.Y+i, facing)
		if f.occupied(f.Grid.WorldToGrid(start)) {
			break
		}
		hit, ok := f.Physics.Raycast(start, ahead, extent, ground)
		if !ok {
			continue
		}
		return f.FindJumpEndpoint(hit.Point.Add(ahead.Scale(nudge * size))), true
	}
	return math.Vec2{}, false
}

// lowRoute scans downward from the row below the ledge. Only the first
// candidate lower than the ledge is considered.
func (f *FieldOfView) lowRoute(ledge tilemap.Coord, edge math.Vec2, facing, extent float32, ground, trap physics.Layer, ignoreTraps bool, search PitSearch) (math.Vec2, bool) {
	size := f.Grid.CellSize()
	ahead := math.Vec2{X: facing}

	for i := 1; i <= search.MaxDrop; i++ {
		row := ledge.Y - i
		if row < 0 {
			break
		}

		start := f.rowStart(edge, ledge, row, facing)
		var ep math.Vec2
		if f.occupied(f.Grid.WorldToGrid(start)) {
			// Pit floor right below the edge
			ep = f.FindJumpEndpoint(start)
		} else {
			hit, ok := f.Physics.Raycast(start, ahead, extent, ground)
			if !ok {
				continue
			}
			ep = f.FindJumpEndpoint(hit.Point.Add(ahead.Scale(nudge * size)))
		}

		if f.Grid.WorldToGrid(ep).Y > ledge.Y {
			continue
		}

		depth := edge.Y - (ep.Y - size/2)
		landing := ep.Add(math.Vec2{X: facing * search.PitDepthLandingOffset * depth})

		support := f.Grid.WorldToGrid(landing).Down()
		if f.Grid.TileAt(support).IsHazard() && !ignoreTraps {
			return math.Vec2{}, false
		}
		if len(f.Physics.Overlap(landing, size/2, trap)) > 0 {
			return math.Vec2{}, false
		}

		need := search.RunwayBase + float32(i)*search.RunwayPerDepth
		if f.runway(support, int(facing), ignoreTraps) < need {
			return math.Vec2{}, false
		}
		return landing, true
	}
	return math.Vec2{}, false
}

// runway measures the contiguous walkable ground from c onward, in world
// units.
func (f *FieldOfView) runway(c tilemap.Coord, step int, ignoreTraps bool) float32 {
	w, _ := f.Grid.Bounds()
	n := 0
	for ; n <= w; n++ {
		t := f.Grid.TileAt(c)
		if !f.surface(c) || (t.IsHazard() && !ignoreTraps) {
			break
		}
		c = c.Offset(step, 0)
	}
	return float32(n) * f.Grid.CellSize()
}

func (f *FieldOfView) occupied(c tilemap.Coord) bool {
	return f.Grid.TileAt(c).IsOccupied()
}

func (f *FieldOfView) surface(c tilemap.Coord) bool {
	return f.occupied(c) && !f.occupied(c.Up())
}
