package planning

import (
	bb "github.com/Faultbox/pitrunner/internal/blackboard"
	"github.com/Faultbox/pitrunner/internal/perception"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// DeclareKeys declares every key the planning leaves read or write.
func DeclareKeys(b *bb.Blackboard) {
	b.Declare(bb.Position, math.Vec2{})
	b.Declare(bb.Facing, float32(1))
	b.Declare(bb.Grounded, false)

	b.Declare(bb.IsMoving, false)
	b.Declare(bb.JumpForce, float32(0))
	b.Declare(bb.CanJump, false)
	b.Declare(bb.JumpRequested, false)

	b.Declare(bb.PendingJumps, NewJumpQueue())
	b.Declare(bb.LastSighting, math.None())
	b.Declare(bb.LaunchPoint, math.None())
	b.Declare(bb.LandPoint, math.None())
	b.Declare(bb.MinJumpHeight, float32(0))
	b.Declare(bb.ApexHeight, float32(0))
}

// Queue returns the agent's pending jump queue, creating it if needed.
func Queue(b *bb.Blackboard) *JumpQueue {
	q := bb.Value[*JumpQueue](b, bb.PendingJumps)
	if q == nil {
		q = NewJumpQueue()
		b.Set(bb.PendingJumps, q)
	}
	return q
}

// Active returns the active jump, if one is set.
func Active(b *bb.Blackboard) (JumpAction, bool) {
	launch, ok := bb.Value[math.OptVec2](b, bb.LaunchPoint).Get()
	if !ok {
		return JumpAction{}, false
	}
	return JumpAction{Launch: launch, Land: bb.Value[math.OptVec2](b, bb.LandPoint)}, true
}

func setActive(b *bb.Blackboard, a JumpAction) {
	b.Set(bb.LaunchPoint, math.Some(a.Launch))
	b.Set(bb.LandPoint, a.Land)
	var minHeight float32
	if land, ok := a.Land.Get(); ok {
		minHeight = land.Y - a.Launch.Y
	}
	b.Set(bb.MinJumpHeight, minHeight)
	b.Set(bb.ApexHeight, float32(0))
}

// ClearActive resets the four active jump fields.
func ClearActive(b *bb.Blackboard) {
	b.Set(bb.LaunchPoint, math.None())
	b.Set(bb.LandPoint, math.None())
	b.Set(bb.MinJumpHeight, float32(0))
	b.Set(bb.ApexHeight, float32(0))
}

func poseOf(b *bb.Blackboard) perception.Pose {
	return perception.Pose{
		Position: bb.Value[math.Vec2](b, bb.Position),
		Facing:   facingOf(b),
	}
}

func facingOf(b *bb.Blackboard) float32 {
	if bb.Value[float32](b, bb.Facing) < 0 {
		return -1
	}
	return 1
}

// ahead is how far p lies in front of the agent along its facing.
// Negative values are behind.
func ahead(p math.Vec2, pose perception.Pose) float32 {
	f := float32(1)
	if pose.Facing < 0 {
		f = -1
	}
	return (p.X - pose.Position.X) * f
}
