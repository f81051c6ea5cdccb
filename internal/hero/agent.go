// Package hero hosts the hero's behaviour tree: it owns the blackboard and
// the root node, ticks the tree once per simulation step, and translates
// the blackboard outputs into locomotion calls.
package hero

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/pitrunner/internal/behaviour"
	bb "github.com/Faultbox/pitrunner/internal/blackboard"
	"github.com/Faultbox/pitrunner/internal/logger"
	"github.com/Faultbox/pitrunner/internal/perception"
	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/internal/planning"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// Agent errors.
var (
	ErrInvalidArchetype = errors.New("invalid archetype")
	ErrMissingEnv       = errors.New("environment needs physics and a tile grid")
	ErrNoLocomotion     = errors.New("no locomotion controller")
	ErrDespawned        = errors.New("agent despawned")
)

// DefaultStep is the simulation step used when Env.Step is unset.
const DefaultStep = float32(1) / 60

// Locomotion is the controller that moves the hero's physics body.
type Locomotion interface {
	Position() math.Vec2 // Feet
	Facing() float32
	Grounded() bool

	SetMoving(moving bool)
	SetSpeedPenalty(penalty float32)
	SetStunned(stunned bool)
	Jump(force float32)
}

// Env is the world an agent senses.
type Env struct {
	Physics perception.Physics
	Grid    perception.TileGrid
	Step    float32 // Seconds per tick
}

// Angles holds the archetype launch angles in degrees.
type Angles struct {
	Jump float32 `yaml:"jump"`
}

// Archetype is the immutable configuration of a kind of hero.
type Archetype struct {
	Name      string           `yaml:"name"`
	Wedge     perception.Wedge `yaml:"wedge"`
	DashSpeed float32          `yaml:"dash_speed"`
	WalkSpeed float32          `yaml:"walk_speed"`
	JumpForce planning.Range   `yaml:"jump_force"`
	Angles    Angles           `yaml:"angles"`
	BodySize  math.Vec2        `yaml:"body_size"`
}

// DefaultArchetype returns the runner archetype.
func DefaultArchetype() Archetype {
	return Archetype{
		Name: "runner",
		Wedge: perception.Wedge{
			InnerRadius: 0,
			OuterRadius: 6,
			HalfAngle:   30,
			Direction:   -20,
			Offset:      math.Vec2{Y: 1},
		},
		DashSpeed: 6,
		WalkSpeed: 4,
		JumpForce: planning.Range{Min: 2, Max: 12},
		Angles:    Angles{Jump: 60},
		BodySize:  math.Vec2{X: 0.6, Y: 1.4},
	}
}

// Validate checks the archetype.
func (a Archetype) Validate() error {
	if err := a.Wedge.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArchetype, err)
	}
	switch {
	case a.DashSpeed <= 0:
		return fmt.Errorf("%w: dash speed %g", ErrInvalidArchetype, a.DashSpeed)
	case a.WalkSpeed <= 0:
		return fmt.Errorf("%w: walk speed %g", ErrInvalidArchetype, a.WalkSpeed)
	case a.JumpForce.Min < 0 || a.JumpForce.Min > a.JumpForce.Max:
		return fmt.Errorf("%w: jump force [%g, %g]", ErrInvalidArchetype, a.JumpForce.Min, a.JumpForce.Max)
	case a.Angles.Jump <= 0 || a.Angles.Jump >= 90:
		return fmt.Errorf("%w: jump angle %g", ErrInvalidArchetype, a.Angles.Jump)
	case a.BodySize.X <= 0 || a.BodySize.Y <= 0:
		return fmt.Errorf("%w: body size %gx%g", ErrInvalidArchetype, a.BodySize.X, a.BodySize.Y)
	}
	return nil
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger the agent and its leaves use.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		a.log = l
	}
}

// Agent is one hero. It is driven from the simulation thread only.
type Agent struct {
	board  *bb.Blackboard
	root   behaviour.Node
	decide *planning.DecideJumpForce
	fov    *perception.FieldOfView
	loc    Locomotion
	arch   Archetype
	step   float32
	ticks  uint64
	log    *zap.Logger
}

// Initialize builds an agent, its blackboard and its behaviour tree.
//
// The archetype's dash speed, jump force range and jump angle override the
// matching trajectory tunables.
func Initialize(env Env, arch Archetype, tun planning.Tunables, loc Locomotion, opts ...Option) (*Agent, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	if env.Physics == nil || env.Grid == nil {
		return nil, ErrMissingEnv
	}
	if loc == nil {
		return nil, ErrNoLocomotion
	}

	tun.Trajectory.DashSpeed = arch.DashSpeed
	tun.Trajectory.Force = arch.JumpForce
	tun.Trajectory.Angle = arch.Angles.Jump
	if err := tun.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		board: bb.New(),
		loc:   loc,
		arch:  arch,
		step:  env.Step,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.step <= 0 {
		a.step = DefaultStep
	}
	a.log = logger.Named(a.log, "hero")

	a.fov = perception.New(env.Physics, env.Grid, arch.Wedge)
	a.fov.OcclusionMask = physics.AllLayers &^ physics.LayerHero

	planning.DeclareKeys(a.board)
	a.board.Declare(bb.IsStunned, false)
	a.board.Declare(bb.StunDuration, float32(0))
	a.board.Declare(bb.SpeedPenalty, float32(0))

	a.root = a.buildTree(tun)

	a.log.Debug("agent initialized",
		zap.String("archetype", arch.Name),
		zap.Float32("dash", arch.DashSpeed),
		zap.Float32("min_force", arch.JumpForce.Min),
		zap.Float32("max_force", arch.JumpForce.Max))
	return a, nil
}

// Tick writes the pose, evaluates the tree once and applies the outputs to
// locomotion.
//
// A blackboard type mismatch aborts the tick: it is logged and returned as
// an error wrapping *blackboard.TypeError, and locomotion is left alone.
func (a *Agent) Tick() (behaviour.Status, error) {
	if a.board == nil {
		return behaviour.Failure, ErrDespawned
	}
	a.ticks++

	a.writePose()

	status, err := a.evaluate()
	if err != nil {
		return status, err
	}

	a.apply()
	logger.Tick(a.log, a.ticks, func() []zap.Field {
		return []zap.Field{zap.Stringer("status", status), zap.Bool("moving", a.IsMoving())}
	})
	return status, nil
}

func (a *Agent) writePose() {
	a.board.Set(bb.Position, a.loc.Position())
	a.board.Set(bb.Facing, a.loc.Facing())
	a.board.Set(bb.Grounded, a.loc.Grounded())
	a.board.Set(bb.IsMoving, false)
}

func (a *Agent) evaluate() (status behaviour.Status, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		te, ok := r.(*bb.TypeError)
		if !ok {
			panic(r)
		}
		a.log.Error("tick aborted", zap.Uint64("tick", a.ticks), zap.Error(te))
		status, err = behaviour.Failure, fmt.Errorf("hero: tick %d: %w", a.ticks, te)
	}()
	return behaviour.Run(a.root), nil
}

func (a *Agent) apply() {
	stunned := a.IsStunned()
	a.loc.SetStunned(stunned)
	a.loc.SetSpeedPenalty(a.SpeedPenalty())
	a.loc.SetMoving(a.IsMoving() && !stunned)

	if bb.Value[bool](a.board, bb.JumpRequested) {
		force := a.JumpForce()
		a.loc.Jump(force)
		a.board.Set(bb.JumpRequested, false)
		a.board.Set(bb.CanJump, false)
		pos := a.loc.Position()
		a.log.Info("jump", zap.Float32("force", force), zap.Float32("x", pos.X), zap.Float32("y", pos.Y))
	}
}

// Stun stops the hero for duration seconds. A longer stun already running
// is kept.
func (a *Agent) Stun(duration float32) {
	if a.board == nil || duration <= 0 {
		return
	}
	a.board.Set(bb.IsStunned, true)
	if duration > a.StunDuration() {
		a.board.Set(bb.StunDuration, duration)
	}
}

// Slow sets the walking speed penalty, clamped to [0, 1].
func (a *Agent) Slow(penalty float32) {
	if a.board == nil {
		return
	}
	a.board.Set(bb.SpeedPenalty, math.Clamp(penalty, 0, 1))
}

// SetJumpForceRange changes the clamp range of the trajectory solver.
func (a *Agent) SetJumpForceRange(r planning.Range) {
	a.arch.JumpForce = r
	if a.decide != nil {
		a.decide.SetForceRange(r)
	}
}

// Despawn tears down the blackboard and tree. Later ticks fail with
// ErrDespawned, and a node kept from the old tree panics with
// blackboard.ErrClosed on its first write.
func (a *Agent) Despawn() {
	if a.board == nil {
		return
	}
	a.board.Close()
	a.board = nil
	a.root = nil
	a.decide = nil
	a.log.Debug("agent despawned", zap.Uint64("ticks", a.ticks))
}

// IsMoving reports whether the tree wants the hero to walk.
func (a *Agent) IsMoving() bool { return bb.Value[bool](a.board, bb.IsMoving) }

// JumpForce is the launch speed of the last solved jump.
func (a *Agent) JumpForce() float32 { return bb.Value[float32](a.board, bb.JumpForce) }

// IsStunned reports whether the hero is stunned.
func (a *Agent) IsStunned() bool { return bb.Value[bool](a.board, bb.IsStunned) }

// StunDuration is the remaining stun time in seconds.
func (a *Agent) StunDuration() float32 { return bb.Value[float32](a.board, bb.StunDuration) }

// SpeedPenalty is the walking speed reduction in [0, 1].
func (a *Agent) SpeedPenalty() float32 { return bb.Value[float32](a.board, bb.SpeedPenalty) }

// Board exposes the blackboard for diagnostics. It is nil after Despawn.
func (a *Agent) Board() *bb.Blackboard { return a.board }

// Root returns the tree root. It is nil after Despawn.
func (a *Agent) Root() behaviour.Node { return a.root }

// FieldOfView returns the agent's sensing wedge.
func (a *Agent) FieldOfView() *perception.FieldOfView { return a.fov }

// Archetype returns the agent's archetype.
func (a *Agent) Archetype() Archetype { return a.arch }

// Ticks returns the number of ticks run.
func (a *Agent) Ticks() uint64 { return a.ticks }
