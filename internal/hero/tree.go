package hero

import (
	"github.com/Faultbox/pitrunner/internal/behaviour"
	bb "github.com/Faultbox/pitrunner/internal/blackboard"
	"github.com/Faultbox/pitrunner/internal/planning"
)

// buildTree assembles
//
//	Selector
//	├── Sequence: IsStunned, StunCountdown
//	├── Sequence: not IsStunned, LookForPit, LookForObstacle,
//	│             ApproachLaunch, DecideJumpForce, Leap
//	└── Move
func (a *Agent) buildTree(tun planning.Tunables) behaviour.Node {
	a.decide = planning.NewDecideJumpForce(a.board, tun.Trajectory, a.log)

	stunned := behaviour.NewSequence("Stunned",
		a.isStunned(),
		behaviour.NewAction("StunCountdown", a.stunCountdown),
	)

	jump := behaviour.NewSequence("Jump",
		behaviour.Invert("NotStunned", a.isStunned()),
		planning.NewLookForPit(a.board, a.fov, tun, a.log),
		planning.NewLookForObstacle(a.board, tun, a.log),
		planning.NewApproachLaunch(a.board, tun),
		a.decide,
		planning.NewLeap(a.board),
	)

	move := behaviour.NewAction("Move", func() behaviour.Status {
		a.board.Set(bb.IsMoving, true)
		return behaviour.Success
	})

	return behaviour.NewSelector("Hero", stunned, jump, move)
}

func (a *Agent) isStunned() behaviour.Node {
	return behaviour.NewCondition("IsStunned", func() bool {
		return bb.Value[bool](a.board, bb.IsStunned)
	})
}

// stunCountdown holds the hero still until the stun wears off.
func (a *Agent) stunCountdown() behaviour.Status {
	left := bb.Value[float32](a.board, bb.StunDuration) - a.step
	if left <= 0 {
		a.board.Set(bb.StunDuration, float32(0))
		a.board.Set(bb.IsStunned, false)
		return behaviour.Success
	}
	a.board.Set(bb.StunDuration, left)
	return behaviour.Running
}
