package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/pitrunner/internal/behaviour"
	"github.com/Faultbox/pitrunner/internal/hero"
	"github.com/Faultbox/pitrunner/internal/logger"
	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/internal/planning"
	"github.com/Faultbox/pitrunner/internal/world"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// ErrNoLevel is returned by NewRunner without a level.
var ErrNoLevel = errors.New("no level")

// Outcome is how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeGoal    Outcome = "goal"
	OutcomeFell    Outcome = "fell"
	OutcomeTimeout Outcome = "timeout"
	OutcomeError   Outcome = "error"
)

// Config holds the simulation settings.
type Config struct {
	Step     float32 `yaml:"step"`      // Seconds per tick
	MaxTicks int     `yaml:"max_ticks"` // 0 runs until goal or fall
	TrapStun float32 `yaml:"trap_stun"` // Seconds stunned when touching a trap
	Trace    bool    `yaml:"trace"`     // Record a frame per tick
}

// DefaultConfig returns the default simulation settings.
func DefaultConfig() Config {
	return Config{
		Step:     hero.DefaultStep,
		MaxTicks: 1800,
		TrapStun: 0.5,
	}
}

// Frame is the state of the hero after one tick.
type Frame struct {
	Tick     uint64  `yaml:"tick"`
	X        float32 `yaml:"x"`
	Y        float32 `yaml:"y"`
	VX       float32 `yaml:"vx"`
	VY       float32 `yaml:"vy"`
	Grounded bool    `yaml:"grounded"`
	Moving   bool    `yaml:"moving"`
	Stunned  bool    `yaml:"stunned"`
	Status   string  `yaml:"status"`
	Jump     float32 `yaml:"jump,omitempty"` // Launch speed when the hero jumped this tick
}

// Result summarises a run.
type Result struct {
	RunID   string    `yaml:"run_id"`
	Outcome Outcome   `yaml:"outcome"`
	Ticks   uint64    `yaml:"ticks"`
	Jumps   int       `yaml:"jumps"`
	Stuns   int       `yaml:"stuns"`
	Final   math.Vec2 `yaml:"final"`
	Frames  []Frame   `yaml:"frames,omitempty"`
}

// Runner steps one hero through a level.
type Runner struct {
	id    string
	cfg   Config
	level *world.Level
	phys  *physics.World
	body  *Body
	agent *hero.Agent
	log   *zap.Logger

	touching bool // Trap contact on the previous tick
}

// NewRunner builds the physics world, the hero body and the agent for a
// level.
func NewRunner(level *world.Level, arch hero.Archetype, tun planning.Tunables, cfg Config, log *zap.Logger) (*Runner, error) {
	if level == nil || level.Grid == nil {
		return nil, ErrNoLevel
	}
	if cfg.Step <= 0 {
		cfg.Step = hero.DefaultStep
	}
	id := uuid.NewString()
	log = logger.ForRun(log, id)

	r := &Runner{id: id, cfg: cfg, level: level, phys: level.Physics(), log: log}
	r.body = NewBody(r.phys, BodyConfig{
		Size:      arch.BodySize,
		WalkSpeed: arch.WalkSpeed,
		DashSpeed: arch.DashSpeed,
		JumpAngle: arch.Angles.Jump,
		Gravity:   tun.Trajectory.Gravity,
	}, level.Spawn)

	env := hero.Env{Physics: r.phys, Grid: level.Grid, Step: cfg.Step}
	agent, err := hero.Initialize(env, arch, tun, r.body, hero.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("initializing hero: %w", err)
	}
	r.agent = agent
	return r, nil
}

// ID identifies the run in logs and results.
func (r *Runner) ID() string { return r.id }

// Agent returns the hero agent.
func (r *Runner) Agent() *hero.Agent { return r.agent }

// Body returns the hero body.
func (r *Runner) Body() *Body { return r.body }

// Run ticks until the hero reaches the goal, falls out of the level, runs
// out of ticks or ctx is done.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: r.id}
	defer r.agent.Despawn()

	for r.cfg.MaxTicks <= 0 || res.Ticks < uint64(r.cfg.MaxTicks) {
		if err := ctx.Err(); err != nil {
			return r.finish(res, OutcomeError), err
		}

		jumps := r.body.Jumps()
		status, err := r.agent.Tick()
		if err != nil {
			return r.finish(res, OutcomeError), err
		}
		r.body.Step(r.cfg.Step)
		res.Ticks++

		if r.trapContact() {
			res.Stuns++
			r.agent.Stun(r.cfg.TrapStun)
			r.log.Info("trap", zap.Float32("x", r.body.Position().X), zap.Float32("stun", r.cfg.TrapStun))
		}

		jumped := r.body.Jumps() > jumps
		logger.Tick(r.log, res.Ticks, func() []zap.Field {
			return r.frame(res.Ticks, status, jumped).fields()
		})
		if r.cfg.Trace {
			res.Frames = append(res.Frames, r.frame(res.Ticks, status, jumped))
		}

		if r.reachedGoal() {
			return r.finish(res, OutcomeGoal), nil
		}
		if r.fell() {
			return r.finish(res, OutcomeFell), nil
		}
	}

	return r.finish(res, OutcomeTimeout), nil
}

func (r *Runner) frame(tick uint64, status behaviour.Status, jumped bool) Frame {
	pos, vel := r.body.Position(), r.body.Velocity()
	f := Frame{
		Tick:     tick,
		X:        pos.X,
		Y:        pos.Y,
		VX:       vel.X,
		VY:       vel.Y,
		Grounded: r.body.Grounded(),
		Moving:   r.agent.IsMoving(),
		Stunned:  r.agent.IsStunned(),
		Status:   status.String(),
	}
	if jumped {
		f.Jump = r.agent.JumpForce()
	}
	return f
}

// fields are the trace log fields of a frame. The tick is added by
// logger.Tick.
func (f Frame) fields() []zap.Field {
	fields := []zap.Field{
		zap.Float32("x", f.X),
		zap.Float32("y", f.Y),
		zap.Float32("vx", f.VX),
		zap.Float32("vy", f.VY),
		zap.Bool("grounded", f.Grounded),
		zap.String("status", f.Status),
	}
	if f.Stunned {
		fields = append(fields, zap.Bool("stunned", true))
	}
	if f.Jump > 0 {
		fields = append(fields, zap.Float32("jump", f.Jump))
	}
	return fields
}

func (r *Runner) finish(res Result, outcome Outcome) Result {
	res.Outcome = outcome
	res.Jumps = r.body.Jumps()
	res.Final = r.body.Position()
	r.log.Info("run finished",
		zap.String("outcome", string(outcome)),
		zap.Uint64("ticks", res.Ticks),
		zap.Int("jumps", res.Jumps),
		zap.Float32("x", res.Final.X),
		zap.Float32("y", res.Final.Y))
	return res
}

// trapContact reports a new contact with a trap tile under the feet or a
// trap collider. Staying on a trap does not stun again.
func (r *Runner) trapContact() bool {
	box := r.body.Box()
	feet := box
	feet.Min.Y -= 2 * skin
	touching := len(r.phys.TilesInBox(feet, physics.LayerTrap)) > 0 ||
		len(r.phys.OverlapBox(box, physics.LayerTrap)) > 0

	entered := touching && !r.touching
	r.touching = touching
	return entered
}

func (r *Runner) reachedGoal() bool {
	goal, ok := r.level.Goal.Get()
	if !ok {
		return false
	}
	pos := r.body.Position()
	return math.Abs(pos.X-goal.X) <= 0.5*r.level.Grid.TileSize && math.Abs(pos.Y-goal.Y) <= r.level.Grid.TileSize
}

func (r *Runner) fell() bool {
	return r.body.Position().Y < r.level.Grid.Origin.Y-r.level.Grid.TileSize
}
