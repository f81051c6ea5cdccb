package planning

import (
	"go.uber.org/zap"

	"github.com/Faultbox/pitrunner/internal/behaviour"
	bb "github.com/Faultbox/pitrunner/internal/blackboard"
	"github.com/Faultbox/pitrunner/internal/logger"
	"github.com/Faultbox/pitrunner/internal/perception"
	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// Layers the planning leaves sense.
const (
	GroundLayer = physics.LayerGround
	TrapLayer   = physics.LayerTrap
)

// LookForPit records pits and walls ahead into the pending jump queue.
//
// Each tick it drops a queue head the agent has walked past, then runs the
// wall ray and the pit check. A new sighting is queued unless its launch x
// is within DedupeDistance of the last one recorded. It succeeds while
// there is a pending or active jump.
type LookForPit struct {
	behaviour.Base
	board *bb.Blackboard
	fov   *perception.FieldOfView
	tun   Tunables
	log   *zap.Logger
}

// NewLookForPit creates the leaf. A nil log uses the global logger.
func NewLookForPit(board *bb.Blackboard, fov *perception.FieldOfView, tun Tunables, log *zap.Logger) *LookForPit {
	return newLook("LookForPit", board, fov, tun, log)
}

// NewLookForGround is NewLookForPit under the name older trees use.
func NewLookForGround(board *bb.Blackboard, fov *perception.FieldOfView, tun Tunables, log *zap.Logger) *LookForPit {
	return newLook("LookForGround", board, fov, tun, log)
}

func newLook(name string, board *bb.Blackboard, fov *perception.FieldOfView, tun Tunables, log *zap.Logger) *LookForPit {
	return &LookForPit{
		Base:  behaviour.NewBase(name),
		board: board,
		fov:   fov,
		tun:   tun,
		log:   logger.Named(log, "planning"),
	}
}

// Evaluate implements behaviour.Node.
func (l *LookForPit) Evaluate() behaviour.Status {
	pose := poseOf(l.board)
	q := Queue(l.board)
	q.SetFacing(pose.Facing)

	// A dropped head ends the look for this tick; sighting resumes on the next.
	if head, ok := q.Peek(); ok && -ahead(head.Launch, pose) > l.tun.DeadZone {
		q.Pop()
		l.log.Debug("passed pending jump", zap.Stringer("jump", head))
	} else if a, ok := l.sight(pose); ok {
		l.record(q, a)
	}

	if _, ok := Active(l.board); ok || q.Len() > 0 {
		return behaviour.Success
	}
	return behaviour.Failure
}

// sight runs the wall ray, then the pit check.
func (l *LookForPit) sight(pose perception.Pose) (JumpAction, bool) {
	f := pose.Facing
	if f < 0 {
		f = -1
	} else {
		f = 1
	}

	if hit, ok := l.fov.CheckForWall(pose, l.tun.WallRayLength, l.tun.WallRayHeight, GroundLayer); ok {
		into := hit.Point.Sub(hit.Normal.Scale(0.01 * l.fov.Grid.CellSize()))
		return JumpAction{
			Launch: math.Vec2{X: hit.Point.X - f*l.tun.LaunchEdgeOffset, Y: pose.Position.Y},
			Land:   math.Some(l.fov.FindJumpEndpoint(into)),
		}, true
	}

	res := l.fov.CheckForPitWith(pose, GroundLayer, TrapLayer, l.tun.IgnoreInGroundTraps, l.tun.PitSearch())
	if !res.Found {
		return JumpAction{}, false
	}

	a := JumpAction{Launch: math.Vec2{X: res.Edge.X - f*l.tun.LaunchEdgeOffset, Y: res.Edge.Y}}
	if len(res.Endpoints) > 0 {
		a.Land = math.Some(res.Endpoints[0])
	}
	return a, true
}

func (l *LookForPit) record(q *JumpQueue, a JumpAction) {
	if last, ok := bb.Value[math.OptVec2](l.board, bb.LastSighting).Get(); ok {
		if math.Abs(a.Launch.X-last.X) <= l.tun.DedupeDistance {
			return
		}
	}
	q.Insert(a)
	l.board.Set(bb.LastSighting, math.Some(a.Launch))
	l.log.Info("jump queued", zap.Stringer("jump", a), zap.Int("pending", q.Len()))
}

// LookForObstacle promotes the nearest pending jump to the active slot.
//
// An active jump the agent has walked past is cleared first. The queue head
// is promoted when no jump is active or when it is nearer than the active
// one, which then goes back into the queue. It fails only when nothing is
// active and nothing is pending.
type LookForObstacle struct {
	behaviour.Base
	board *bb.Blackboard
	tun   Tunables
	log   *zap.Logger
}

// NewLookForObstacle creates the leaf. A nil log uses the global logger.
func NewLookForObstacle(board *bb.Blackboard, tun Tunables, log *zap.Logger) *LookForObstacle {
	return &LookForObstacle{
		Base:  behaviour.NewBase("LookForObstacle"),
		board: board,
		tun:   tun,
		log:   logger.Named(log, "planning"),
	}
}

// Evaluate implements behaviour.Node.
func (l *LookForObstacle) Evaluate() behaviour.Status {
	pose := poseOf(l.board)
	q := Queue(l.board)

	active, hasActive := Active(l.board)
	if hasActive && -ahead(active.Launch, pose) > l.tun.DeadZone {
		ClearActive(l.board)
		hasActive = false
		l.log.Debug("passed active jump", zap.Stringer("jump", active))
	}

	if head, ok := q.Peek(); ok {
		if !hasActive || ahead(head.Launch, pose) < ahead(active.Launch, pose) {
			q.Pop()
			if hasActive {
				q.Insert(active)
			}
			setActive(l.board, head)
			hasActive = true
			l.log.Debug("jump promoted", zap.Stringer("jump", head))
		}
	}

	if !hasActive {
		return behaviour.Failure
	}
	return behaviour.Success
}
