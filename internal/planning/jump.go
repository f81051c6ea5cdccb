package planning

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pitrunner/internal/behaviour"
	bb "github.com/Faultbox/pitrunner/internal/blackboard"
	"github.com/Faultbox/pitrunner/internal/logger"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// ApproachLaunch walks the agent to the active launch point. It runs while
// the point is still ahead or the agent is airborne.
type ApproachLaunch struct {
	behaviour.Base
	board *bb.Blackboard
	tun   Tunables
}

// NewApproachLaunch creates the leaf.
func NewApproachLaunch(board *bb.Blackboard, tun Tunables) *ApproachLaunch {
	return &ApproachLaunch{Base: behaviour.NewBase("ApproachLaunch"), board: board, tun: tun}
}

// Evaluate implements behaviour.Node.
func (a *ApproachLaunch) Evaluate() behaviour.Status {
	active, ok := Active(a.board)
	if !ok {
		return behaviour.Failure
	}
	a.board.Set(bb.IsMoving, true)

	if !bb.Value[bool](a.board, bb.Grounded) {
		return behaviour.Running
	}
	if ahead(active.Launch, poseOf(a.board)) > a.tun.LaunchTolerance {
		return behaviour.Running
	}
	return behaviour.Success
}

// DecideJumpForce solves the launch speed from the agent's position to the
// active landing point.
//
// Without a landing point it jumps blind at full force. A degenerate
// trajectory aborts the active jump and fails.
type DecideJumpForce struct {
	behaviour.Base
	board *bb.Blackboard
	traj  Trajectory
	log   *zap.Logger
}

// NewDecideJumpForce creates the leaf. A nil log uses the global logger.
func NewDecideJumpForce(board *bb.Blackboard, traj Trajectory, log *zap.Logger) *DecideJumpForce {
	return &DecideJumpForce{
		Base:  behaviour.NewBase("DecideJumpForce"),
		board: board,
		traj:  traj,
		log:   logger.Named(log, "planning"),
	}
}

// SetForceRange replaces the clamp range, e.g. after a power-up.
func (d *DecideJumpForce) SetForceRange(r Range) {
	d.traj.Force = r
}

// Evaluate implements behaviour.Node.
func (d *DecideJumpForce) Evaluate() behaviour.Status {
	pos := bb.Value[math.Vec2](d.board, bb.Position)

	land, ok := bb.Value[math.OptVec2](d.board, bb.LandPoint).Get()
	if !ok {
		d.board.Set(bb.JumpForce, d.traj.Force.Max)
		d.board.Set(bb.ApexHeight, ApexHeight(d.traj.Force.Max, d.traj))
		d.board.Set(bb.CanJump, true)
		d.log.Info("blind jump", zap.Float32("force", d.traj.Force.Max))
		return behaviour.Success
	}

	v0, err := SolveLaunchSpeed(pos, land, d.traj)
	if err != nil {
		ClearActive(d.board)
		d.board.Set(bb.CanJump, false)
		d.log.Warn("jump aborted", zap.Error(err))
		return behaviour.Failure
	}

	v0 = d.traj.Force.Clamp(v0)
	d.board.Set(bb.JumpForce, v0)
	d.board.Set(bb.ApexHeight, ApexHeight(v0, d.traj))
	d.board.Set(bb.CanJump, true)
	d.log.Info("jump solved",
		zap.Float32("v0", v0),
		zap.Float32("dx", land.X-pos.X),
		zap.Float32("dy", land.Y-pos.Y))
	return behaviour.Success
}

// Leap hands a solved jump to locomotion and frees the active slot.
type Leap struct {
	behaviour.Base
	board *bb.Blackboard
}

// NewLeap creates the leaf.
func NewLeap(board *bb.Blackboard) *Leap {
	return &Leap{Base: behaviour.NewBase("Leap"), board: board}
}

// Evaluate implements behaviour.Node.
func (l *Leap) Evaluate() behaviour.Status {
	if !bb.Value[bool](l.board, bb.CanJump) {
		return behaviour.Failure
	}
	l.board.Set(bb.JumpRequested, true)
	l.board.Set(bb.LaunchPoint, math.None())
	l.board.Set(bb.LandPoint, math.None())
	return behaviour.Success
}
