package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

func testWorld(t *testing.T, rows ...string) *World {
	t.Helper()
	grid, err := tilemap.ParseRows(rows, 1, math.Vec2{})
	require.NoError(t, err)
	return NewWorld(grid)
}

func TestRaycast_HorizontalHitsWallFace(t *testing.T) {
	w := testWorld(t,
		"......",
		"....#.",
		"######",
	)

	hit, ok := w.Raycast(math.Vec2{X: 0.5, Y: 1.5}, math.Vec2{X: 1}, 10, LayerGround)
	require.True(t, ok)
	require.True(t, hit.TileHit)
	require.Equal(t, tilemap.Coord{X: 4, Y: 1}, hit.Tile)
	require.InDelta(t, 3.5, hit.Distance, 1e-5)
	require.InDelta(t, 4.0, hit.Point.X, 1e-5)
	require.Equal(t, math.Vec2{X: -1}, hit.Normal)
}

func TestRaycast_DownwardHitsTopFace(t *testing.T) {
	w := testWorld(t,
		"....",
		"....",
		"####",
	)

	hit, ok := w.Raycast(math.Vec2{X: 1.5, Y: 2.5}, math.Vec2{Y: -1}, 10, LayerGround)
	require.True(t, ok)
	require.Equal(t, tilemap.Coord{X: 1, Y: 0}, hit.Tile)
	require.InDelta(t, 1.0, hit.Point.Y, 1e-5)
	require.Equal(t, math.Vec2{Y: 1}, hit.Normal)
}

func TestRaycast_DiagonalEntersFirstSolidCell(t *testing.T) {
	w := testWorld(t,
		".....",
		".....",
		"#####",
	)

	hit, ok := w.Raycast(math.Vec2{X: 0.3, Y: 2.5}, math.Vec2{X: 1, Y: -1}, 10, LayerGround)
	require.True(t, ok)
	require.Equal(t, tilemap.Coord{X: 1, Y: 0}, hit.Tile)
	require.InDelta(t, 1.0, hit.Point.Y, 1e-4)
	require.InDelta(t, 1.8, hit.Point.X, 1e-4)
}

func TestRaycast_MissBeyondMaxDistance(t *testing.T) {
	w := testWorld(t,
		"........#",
	)

	_, ok := w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 5, LayerGround)
	require.False(t, ok)

	_, ok = w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 8, LayerGround)
	require.True(t, ok)
}

func TestRaycast_LeavesGridWithoutHit(t *testing.T) {
	w := testWorld(t, "...")

	_, ok := w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: -1, Y: 0.3}, 100, AllLayers)
	require.False(t, ok)
}

func TestRaycast_StartInsideSolid(t *testing.T) {
	w := testWorld(t, "##..")

	hit, ok := w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 10, LayerGround)
	require.True(t, ok)
	require.Zero(t, hit.Distance)
	require.Equal(t, tilemap.Coord{X: 0, Y: 0}, hit.Tile)
}

func TestRaycast_LayerMaskFiltersTiles(t *testing.T) {
	w := testWorld(t, "..^.#")

	hit, ok := w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 10, LayerTrap)
	require.True(t, ok)
	require.Equal(t, 2, hit.Tile.X)

	// Traps are also ground
	hit, ok = w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 10, LayerGround)
	require.True(t, ok)
	require.Equal(t, 2, hit.Tile.X)

	_, ok = w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 10, LayerEnemy)
	require.False(t, ok)
}

func TestRaycast_ColliderNearerThanTile(t *testing.T) {
	w := testWorld(t, ".........#")
	w.Add(&Collider{ID: "crate", Layer: LayerEnemy, Box: AABB{
		Min: math.Vec2{X: 4, Y: 0},
		Max: math.Vec2{X: 5, Y: 1},
	}})

	hit, ok := w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 20, AllLayers)
	require.True(t, ok)
	require.False(t, hit.TileHit)
	require.NotNil(t, hit.Collider)
	require.Equal(t, "crate", hit.Collider.ID)
	require.InDelta(t, 3.5, hit.Distance, 1e-5)
	require.Equal(t, math.Vec2{X: -1}, hit.Normal)

	// Masked out, the wall tile is hit instead
	hit, ok = w.Raycast(math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 1}, 20, LayerGround)
	require.True(t, ok)
	require.True(t, hit.TileHit)
	require.Equal(t, 9, hit.Tile.X)
}

func TestRaycast_ColliderBehindOrigin(t *testing.T) {
	w := testWorld(t, "..........")
	w.Add(&Collider{ID: "behind", Layer: LayerEnemy, Box: NewAABB(math.Vec2{X: 1, Y: 0.5}, 0.5, 0.5)})

	_, ok := w.Raycast(math.Vec2{X: 5, Y: 0.5}, math.Vec2{X: 1}, 20, LayerEnemy)
	require.False(t, ok)
}

func TestRaycast_ZeroDirection(t *testing.T) {
	w := testWorld(t, "#")
	_, ok := w.Raycast(math.Vec2{X: 5, Y: 5}, math.Vec2{}, 20, AllLayers)
	require.False(t, ok)
}

func TestOverlap(t *testing.T) {
	w := testWorld(t, "..........")
	w.Add(&Collider{ID: "b", Layer: LayerEnemy, Box: NewAABB(math.Vec2{X: 3, Y: 0}, 1, 1)})
	w.Add(&Collider{ID: "a", Layer: LayerEnemy, Box: NewAABB(math.Vec2{X: 2, Y: 0}, 1, 1)})
	w.Add(&Collider{ID: "far", Layer: LayerEnemy, Box: NewAABB(math.Vec2{X: 9, Y: 0}, 1, 1)})
	w.Add(&Collider{ID: "coin", Layer: LayerPickup, Box: NewAABB(math.Vec2{X: 1, Y: 0}, 1, 1)})

	got := w.Overlap(math.Vec2{}, 3, LayerEnemy)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, "b", got[1].ID)

	got = w.Overlap(math.Vec2{}, 3, LayerEnemy|LayerPickup)
	require.Len(t, got, 3)

	w.Remove("a")
	require.Len(t, w.Overlap(math.Vec2{}, 3, LayerEnemy), 1)
}

func TestTilesInBox(t *testing.T) {
	w := testWorld(t,
		"....",
		".^#.",
	)

	got := w.TilesInBox(AABB{Min: math.Vec2{X: 0.5, Y: 0.2}, Max: math.Vec2{X: 2.5, Y: 0.8}}, LayerTrap)
	require.Equal(t, []tilemap.Coord{{X: 1, Y: 0}}, got)

	got = w.TilesInBox(AABB{Min: math.Vec2{X: 0.5, Y: 0.2}, Max: math.Vec2{X: 2.5, Y: 0.8}}, LayerGround)
	require.Len(t, got, 2)
}

func TestLayer_StringAndParse(t *testing.T) {
	require.Equal(t, "ground|trap", (LayerGround | LayerTrap).String())
	require.Equal(t, "none", Layer(0).String())
	require.Equal(t, "all", AllLayers.String())

	l, ok := ParseLayer("enemy | pickup")
	require.True(t, ok)
	require.Equal(t, LayerEnemy|LayerPickup, l)

	_, ok = ParseLayer("lava")
	require.False(t, ok)
}
