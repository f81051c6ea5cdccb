package perception

import (
	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// FindJumpEndpoint returns the centre of the first empty tile at or above
// the tile containing p. Cells above the grid are empty, so the scan is
// bounded by the grid height.
func (f *FieldOfView) FindJumpEndpoint(p math.Vec2) math.Vec2 {
	c := f.Grid.WorldToGrid(p)
	_, h := f.Grid.Bounds()
	for c.Y < h && f.occupied(c) {
		c = c.Up()
	}
	return f.Grid.GridToWorld(c)
}

// CheckForWall casts a horizontal ray of the given length ahead of the
// agent, height above its feet.
func (f *FieldOfView) CheckForWall(pose Pose, length, height float32, ground physics.Layer) (physics.Hit, bool) {
	start := pose.Position.Add(math.Vec2{Y: height})
	return f.Physics.Raycast(start, math.Vec2{X: pose.facing()}, length, ground)
}
