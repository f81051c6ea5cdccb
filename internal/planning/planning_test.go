package planning

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/pitrunner/internal/behaviour"
	bb "github.com/Faultbox/pitrunner/internal/blackboard"
	"github.com/Faultbox/pitrunner/internal/perception"
	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

var pitLevel = []string{
	"....................",
	"....................",
	"....................",
	"....................",
	"....................",
	"##########...#######",
	"##########...#######",
	"####################",
}

var wallLevel = []string{
	"....................",
	"....................",
	"....................",
	"....................",
	"............#.......",
	"............#.......",
	"####################",
	"####################",
	"####################",
}

func newFOV(t *testing.T, rows []string) *perception.FieldOfView {
	t.Helper()
	grid, err := tilemap.ParseRows(rows, 1, math.Vec2{})
	require.NoError(t, err)
	return perception.New(physics.NewWorld(grid), grid, perception.Wedge{
		OuterRadius: 6,
		HalfAngle:   30,
		Direction:   -20,
		Offset:      math.Vec2{Y: 1},
	})
}

func newBoard(x float32) *bb.Blackboard {
	b := bb.New()
	DeclareKeys(b)
	b.Set(bb.Position, math.Vec2{X: x, Y: 3})
	b.Set(bb.Grounded, true)
	return b
}

func launchXs(q *JumpQueue) []float32 {
	var xs []float32
	for _, a := range q.Items() {
		xs = append(xs, a.Launch.X)
	}
	return xs
}

func TestJumpQueue_SortedAfterAnyInsertions(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	q := NewJumpQueue()
	for i := 0; i < 100; i++ {
		q.Insert(JumpAction{Launch: math.Vec2{X: rng.Float32() * 50}})
		xs := launchXs(q)
		for j := 1; j < len(xs); j++ {
			require.LessOrEqual(t, xs[j-1], xs[j])
		}
	}
	require.Equal(t, 100, q.Len())
}

func TestJumpQueue_PeekPopFacing(t *testing.T) {
	q := NewJumpQueue()
	_, ok := q.Pop()
	require.False(t, ok)

	for _, x := range []float32{5, 1, 3} {
		q.Insert(JumpAction{Launch: math.Vec2{X: x}})
	}
	assert.Equal(t, []float32{1, 3, 5}, launchXs(q))

	q.SetFacing(-1)
	assert.Equal(t, []float32{5, 3, 1}, launchXs(q))
	q.Insert(JumpAction{Launch: math.Vec2{X: 4}})
	assert.Equal(t, []float32{5, 4, 3, 1}, launchXs(q))

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, float32(5), head.Launch.X)

	popped, _ := q.Pop()
	assert.Equal(t, head, popped)
	assert.Equal(t, 3, q.Len())

	q.Clear()
	assert.Zero(t, q.Len())
}

func TestSolveLaunchSpeed(t *testing.T) {
	traj := DefaultTunables().Trajectory

	v0, err := SolveLaunchSpeed(math.Vec2{X: 9.7, Y: 3}, math.Vec2{X: 13.5, Y: 3.5}, traj)
	require.NoError(t, err)
	// Empirical correction included, so only approximate
	assert.InDelta(t, 7.95, v0, 0.01)

	again, err := SolveLaunchSpeed(math.Vec2{X: 9.7, Y: 3}, math.Vec2{X: 13.5, Y: 3.5}, traj)
	require.NoError(t, err)
	assert.Equal(t, v0, again)

	// Direction of travel does not matter, only distance
	mirrored, err := SolveLaunchSpeed(math.Vec2{X: 13.5, Y: 3}, math.Vec2{X: 9.7, Y: 3.5}, traj)
	require.NoError(t, err)
	assert.Equal(t, v0, mirrored)
}

func TestSolveLaunchSpeed_Degenerate(t *testing.T) {
	traj := DefaultTunables().Trajectory

	_, err := SolveLaunchSpeed(math.Vec2{X: 4, Y: 3}, math.Vec2{X: 4, Y: 6}, traj)
	assert.ErrorIs(t, err, ErrNoHorizontalDistance)

	v0, err := SolveLaunchSpeed(math.Vec2{X: 0, Y: 10}, math.Vec2{X: 1, Y: 0}, traj)
	assert.ErrorIs(t, err, ErrBelowMinimumSpeed)
	assert.Less(t, v0, traj.MinLaunchSpeed)

	bad := traj
	bad.DashSpeed = 0
	_, err = SolveLaunchSpeed(math.Vec2{}, math.Vec2{X: 2}, bad)
	assert.ErrorIs(t, err, ErrInvalidTrajectory)
}

func TestTunablesValidate(t *testing.T) {
	require.NoError(t, DefaultTunables().Validate())

	tun := DefaultTunables()
	tun.Trajectory.Force = Range{Min: 5, Max: 1}
	assert.ErrorIs(t, tun.Validate(), ErrInvalidTunables)

	tun = DefaultTunables()
	tun.Trajectory.Angle = 90
	assert.ErrorIs(t, tun.Validate(), ErrInvalidTunables)
}

func TestLookForPit_ReferenceScenario(t *testing.T) {
	fov := newFOV(t, pitLevel)
	board := newBoard(8.5)
	leaf := NewLookForPit(board, fov, DefaultTunables(), nil)

	require.Equal(t, behaviour.Success, behaviour.Run(leaf))

	q := Queue(board)
	require.Equal(t, 1, q.Len())
	head, _ := q.Peek()
	assert.InDelta(t, 9.7, head.Launch.X, 1e-5)
	assert.Equal(t, float32(3), head.Launch.Y)
	land, ok := head.Land.Get()
	require.True(t, ok)
	assert.Equal(t, math.Vec2{X: 13.5, Y: 3.5}, land)

	// Walking on re-sights the same ledge, which is deduplicated
	for _, x := range []float32{8.6, 8.8, 9.0} {
		board.Set(bb.Position, math.Vec2{X: x, Y: 3})
		require.Equal(t, behaviour.Success, behaviour.Run(leaf))
	}
	assert.Equal(t, 1, q.Len())
}

func TestLookForPit_DropsPassedHead(t *testing.T) {
	fov := newFOV(t, pitLevel)
	board := newBoard(8.5)
	leaf := NewLookForGround(board, fov, DefaultTunables(), nil)
	assert.Equal(t, "LookForGround", leaf.Name())

	require.Equal(t, behaviour.Success, behaviour.Run(leaf))
	require.Equal(t, 1, Queue(board).Len())

	// Inside the dead zone the jump is kept
	board.Set(bb.Position, math.Vec2{X: 10.1, Y: 3})
	require.Equal(t, behaviour.Success, behaviour.Run(leaf))
	require.Equal(t, 1, Queue(board).Len())

	board.Set(bb.Position, math.Vec2{X: 10.3, Y: 3})
	assert.Equal(t, behaviour.Failure, behaviour.Run(leaf))
	assert.Zero(t, Queue(board).Len())
}

func TestLookForPit_DropTickSkipsSighting(t *testing.T) {
	fov := newFOV(t, wallLevel)
	board := newBoard(10.8)
	leaf := NewLookForPit(board, fov, DefaultTunables(), nil)
	Queue(board).Insert(JumpAction{Launch: math.Vec2{X: 5, Y: 3}})

	// The wall is in range, but this tick only drops the passed jump
	assert.Equal(t, behaviour.Failure, behaviour.Run(leaf))
	assert.Zero(t, Queue(board).Len())

	require.Equal(t, behaviour.Success, behaviour.Run(leaf))
	head, ok := Queue(board).Peek()
	require.True(t, ok)
	assert.InDelta(t, 11.7, head.Launch.X, 1e-5)
}

func TestLookForPit_NothingAhead(t *testing.T) {
	fov := newFOV(t, pitLevel)
	board := newBoard(2)

	assert.Equal(t, behaviour.Failure, behaviour.Run(NewLookForPit(board, fov, DefaultTunables(), nil)))
	assert.False(t, bb.Value[math.OptVec2](board, bb.LastSighting).IsSet())
}

func TestLookForPit_Wall(t *testing.T) {
	fov := newFOV(t, wallLevel)
	board := newBoard(10.8)

	require.Equal(t, behaviour.Success, behaviour.Run(NewLookForPit(board, fov, DefaultTunables(), nil)))

	head, ok := Queue(board).Peek()
	require.True(t, ok)
	assert.InDelta(t, 11.7, head.Launch.X, 1e-5)
	assert.Equal(t, float32(3), head.Launch.Y)
	land, ok := head.Land.Get()
	require.True(t, ok)
	assert.Equal(t, math.Vec2{X: 12.5, Y: 5.5}, land)
}

func TestLookForObstacle(t *testing.T) {
	tun := DefaultTunables()

	t.Run("nothing to do", func(t *testing.T) {
		board := newBoard(0)
		assert.Equal(t, behaviour.Failure, behaviour.Run(NewLookForObstacle(board, tun, nil)))
	})

	t.Run("promotes head", func(t *testing.T) {
		board := newBoard(8.5)
		Queue(board).Insert(JumpAction{Launch: math.Vec2{X: 9.7, Y: 3}, Land: math.Some(math.Vec2{X: 13.5, Y: 3.5})})

		require.Equal(t, behaviour.Success, behaviour.Run(NewLookForObstacle(board, tun, nil)))
		active, ok := Active(board)
		require.True(t, ok)
		assert.Equal(t, math.Vec2{X: 9.7, Y: 3}, active.Launch)
		assert.InDelta(t, 0.5, bb.Value[float32](board, bb.MinJumpHeight), 1e-6)
		assert.Zero(t, Queue(board).Len())

		// Still active with an empty queue
		assert.Equal(t, behaviour.Success, behaviour.Run(NewLookForObstacle(board, tun, nil)))
	})

	t.Run("nearer head displaces active", func(t *testing.T) {
		board := newBoard(10)
		setActive(board, JumpAction{Launch: math.Vec2{X: 20, Y: 3}})
		Queue(board).Insert(JumpAction{Launch: math.Vec2{X: 12, Y: 3}})

		require.Equal(t, behaviour.Success, behaviour.Run(NewLookForObstacle(board, tun, nil)))
		active, _ := Active(board)
		assert.Equal(t, float32(12), active.Launch.X)
		assert.Equal(t, []float32{20}, launchXs(Queue(board)))
	})

	t.Run("farther head waits", func(t *testing.T) {
		board := newBoard(10)
		setActive(board, JumpAction{Launch: math.Vec2{X: 12, Y: 3}})
		Queue(board).Insert(JumpAction{Launch: math.Vec2{X: 20, Y: 3}})

		require.Equal(t, behaviour.Success, behaviour.Run(NewLookForObstacle(board, tun, nil)))
		active, _ := Active(board)
		assert.Equal(t, float32(12), active.Launch.X)
		assert.Equal(t, 1, Queue(board).Len())
	})

	t.Run("passed active is cleared", func(t *testing.T) {
		board := newBoard(10)
		setActive(board, JumpAction{Launch: math.Vec2{X: 5, Y: 3}})

		assert.Equal(t, behaviour.Failure, behaviour.Run(NewLookForObstacle(board, tun, nil)))
		_, ok := Active(board)
		assert.False(t, ok)
	})
}

func TestApproachLaunch(t *testing.T) {
	tun := DefaultTunables()
	board := newBoard(8.5)
	leaf := NewApproachLaunch(board, tun)

	assert.Equal(t, behaviour.Failure, behaviour.Run(leaf))

	setActive(board, JumpAction{Launch: math.Vec2{X: 9.7, Y: 3}})
	assert.Equal(t, behaviour.Running, behaviour.Run(leaf))
	assert.True(t, bb.Value[bool](board, bb.IsMoving))

	board.Set(bb.Position, math.Vec2{X: 9.6, Y: 3})
	assert.Equal(t, behaviour.Success, behaviour.Run(leaf))

	board.Set(bb.Grounded, false)
	assert.Equal(t, behaviour.Running, behaviour.Run(leaf))
}

func TestDecideJumpForce(t *testing.T) {
	traj := DefaultTunables().Trajectory

	t.Run("blind jump", func(t *testing.T) {
		board := newBoard(9.7)
		setActive(board, JumpAction{Launch: math.Vec2{X: 9.7, Y: 3}})

		require.Equal(t, behaviour.Success, behaviour.Run(NewDecideJumpForce(board, traj, nil)))
		assert.Equal(t, traj.Force.Max, bb.Value[float32](board, bb.JumpForce))
		assert.True(t, bb.Value[bool](board, bb.CanJump))
	})

	t.Run("solved", func(t *testing.T) {
		board := newBoard(9.7)
		setActive(board, JumpAction{Launch: math.Vec2{X: 9.7, Y: 3}, Land: math.Some(math.Vec2{X: 13.5, Y: 3.5})})
		leaf := NewDecideJumpForce(board, traj, nil)

		require.Equal(t, behaviour.Success, behaviour.Run(leaf))
		first := bb.Value[float32](board, bb.JumpForce)
		assert.InDelta(t, 7.95, first, 0.01)
		assert.Greater(t, bb.Value[float32](board, bb.ApexHeight), float32(0.5))

		require.Equal(t, behaviour.Success, behaviour.Run(leaf))
		assert.Equal(t, first, bb.Value[float32](board, bb.JumpForce))
	})

	t.Run("clamped", func(t *testing.T) {
		board := newBoard(0)
		setActive(board, JumpAction{Launch: math.Vec2{Y: 3}, Land: math.Some(math.Vec2{X: 30, Y: 3})})
		leaf := NewDecideJumpForce(board, traj, nil)

		require.Equal(t, behaviour.Success, behaviour.Run(leaf))
		assert.Equal(t, traj.Force.Max, bb.Value[float32](board, bb.JumpForce))

		leaf.SetForceRange(Range{Min: 2, Max: 20})
		require.Equal(t, behaviour.Success, behaviour.Run(leaf))
		assert.Equal(t, float32(20), bb.Value[float32](board, bb.JumpForce))
	})

	t.Run("abort resets active jump", func(t *testing.T) {
		board := newBoard(0)
		board.Set(bb.Position, math.Vec2{X: 0, Y: 10})
		setActive(board, JumpAction{Launch: math.Vec2{Y: 10}, Land: math.Some(math.Vec2{X: 1, Y: 0})})
		board.Set(bb.ApexHeight, float32(2))
		board.Set(bb.CanJump, true)

		require.Equal(t, behaviour.Failure, behaviour.Run(NewDecideJumpForce(board, traj, nil)))
		assert.False(t, bb.Value[math.OptVec2](board, bb.LaunchPoint).IsSet())
		assert.False(t, bb.Value[math.OptVec2](board, bb.LandPoint).IsSet())
		assert.Zero(t, bb.Value[float32](board, bb.MinJumpHeight))
		assert.Zero(t, bb.Value[float32](board, bb.ApexHeight))
		assert.False(t, bb.Value[bool](board, bb.CanJump))
	})
}

func TestLeap(t *testing.T) {
	board := newBoard(9.7)
	leaf := NewLeap(board)

	assert.Equal(t, behaviour.Failure, behaviour.Run(leaf))

	setActive(board, JumpAction{Launch: math.Vec2{X: 9.7, Y: 3}})
	board.Set(bb.CanJump, true)
	require.Equal(t, behaviour.Success, behaviour.Run(leaf))
	assert.True(t, bb.Value[bool](board, bb.JumpRequested))
	_, ok := Active(board)
	assert.False(t, ok)
}
