// Package sim runs a hero through a level: a kinematic body moves over the
// tile grid and the agent's tree drives it, one fixed step at a time.
package sim

import (
	gomath "math"

	"github.com/Faultbox/pitrunner/internal/physics"
	"github.com/Faultbox/pitrunner/pkg/math"
)

// skin keeps resolved boxes from touching tile faces.
const skin = float32(1e-3)

// HeroID is the collider ID the hero body registers.
const HeroID = "hero"

// BodyConfig holds the motion constants of a body.
type BodyConfig struct {
	Size      math.Vec2 // Width and height
	WalkSpeed float32
	DashSpeed float32 // Horizontal speed in the air after a jump
	JumpAngle float32 // Degrees above horizontal
	Gravity   float32
	Facing    float32 // 1 or -1
}

// Body is a kinematic box that the hero's locomotion controls. It collides
// with ground tiles and registers itself on LayerHero.
type Body struct {
	world *physics.World
	cfg   BodyConfig

	pos      math.Vec2 // Feet
	vel      math.Vec2
	facing   float32
	grounded bool
	blocked  bool
	dashing  bool // Airborne after a jump

	moving  bool
	stunned bool
	penalty float32
	jump    float32 // Pending launch speed, 0 for none
	jumps   int
}

// NewBody places a body with its feet at spawn and registers its collider.
func NewBody(world *physics.World, cfg BodyConfig, spawn math.Vec2) *Body {
	if cfg.Facing == 0 {
		cfg.Facing = 1
	}
	b := &Body{
		world:  world,
		cfg:    cfg,
		pos:    spawn,
		facing: cfg.Facing,
	}
	world.Add(&physics.Collider{ID: HeroID, Box: b.Box(), Layer: physics.LayerHero})
	return b
}

// Position returns the feet position.
func (b *Body) Position() math.Vec2 { return b.pos }

// Facing returns 1 when facing right and -1 when facing left.
func (b *Body) Facing() float32 { return b.facing }

// Grounded reports whether the body rested on ground after the last step.
func (b *Body) Grounded() bool { return b.grounded }

// SetMoving starts or stops walking.
func (b *Body) SetMoving(moving bool) { b.moving = moving }

// SetSpeedPenalty scales walking speed by 1-penalty.
func (b *Body) SetSpeedPenalty(penalty float32) { b.penalty = math.Clamp(penalty, 0, 1) }

// SetStunned freezes horizontal control.
func (b *Body) SetStunned(stunned bool) { b.stunned = stunned }

// Jump requests a launch at the given speed on the next grounded step.
func (b *Body) Jump(force float32) {
	if force > 0 {
		b.jump = force
	}
}

// Velocity returns the current velocity.
func (b *Body) Velocity() math.Vec2 { return b.vel }

// Blocked reports whether the last step ran into a wall.
func (b *Body) Blocked() bool { return b.blocked }

// Jumps returns the number of launches performed.
func (b *Body) Jumps() int { return b.jumps }

// Box returns the body's bounding box.
func (b *Body) Box() physics.AABB {
	half := b.cfg.Size.X / 2
	return physics.AABB{
		Min: math.Vec2{X: b.pos.X - half, Y: b.pos.Y},
		Max: math.Vec2{X: b.pos.X + half, Y: b.pos.Y + b.cfg.Size.Y},
	}
}

// Step advances the body by dt seconds.
func (b *Body) Step(dt float32) {
	if b.jump > 0 && b.grounded && !b.stunned {
		rad := float64(b.cfg.JumpAngle) * gomath.Pi / 180
		b.vel.Y = b.jump * float32(gomath.Sin(rad))
		b.vel.X = b.cfg.DashSpeed * b.facing
		b.grounded = false
		b.dashing = true
		b.jumps++
	}
	b.jump = 0

	switch {
	case b.dashing:
		b.vel.X = b.cfg.DashSpeed * b.facing
	case b.grounded && b.moving && !b.stunned:
		b.vel.X = b.cfg.WalkSpeed * (1 - b.penalty) * b.facing
	case b.grounded:
		b.vel.X = 0
	}
	b.vel.Y -= b.cfg.Gravity * dt

	b.moveX(b.vel.X * dt)
	b.moveY(b.vel.Y * dt)

	b.world.Move(HeroID, b.Box())
}

func (b *Body) moveX(dx float32) {
	b.blocked = false
	if dx == 0 {
		return
	}
	b.pos.X += dx

	solids := b.solids(b.shrunk())
	if len(solids) == 0 {
		return
	}

	half := b.cfg.Size.X / 2
	if dx > 0 {
		left := float32(gomath.Inf(1))
		for _, s := range solids {
			left = min(left, s.Min.X)
		}
		b.pos.X = left - half - skin
	} else {
		right := float32(gomath.Inf(-1))
		for _, s := range solids {
			right = max(right, s.Max.X)
		}
		b.pos.X = right + half + skin
	}
	b.vel.X = 0
	b.blocked = true
}

func (b *Body) moveY(dy float32) {
	b.grounded = false
	if dy == 0 {
		return
	}
	b.pos.Y += dy

	box := b.shrunk()
	if dy < 0 {
		box.Min.Y = b.pos.Y
	}
	solids := b.solids(box)
	if len(solids) == 0 {
		return
	}

	if dy < 0 {
		top := float32(gomath.Inf(-1))
		for _, s := range solids {
			top = max(top, s.Max.Y)
		}
		b.pos.Y = top
		b.grounded = true
		b.dashing = false
	} else {
		bottom := float32(gomath.Inf(1))
		for _, s := range solids {
			bottom = min(bottom, s.Min.Y)
		}
		b.pos.Y = bottom - b.cfg.Size.Y - skin
	}
	b.vel.Y = 0
}

// solids returns the ground tiles and ground colliders overlapping box.
func (b *Body) solids(box physics.AABB) []physics.AABB {
	var out []physics.AABB
	if g := b.world.Grid(); g != nil {
		for _, c := range b.world.TilesInBox(box, physics.LayerGround) {
			lo := math.Vec2{X: g.Origin.X + float32(c.X)*g.TileSize, Y: g.Origin.Y + float32(c.Y)*g.TileSize}
			out = append(out, physics.AABB{Min: lo, Max: lo.Add(math.Vec2{X: g.TileSize, Y: g.TileSize})})
		}
	}
	for _, c := range b.world.OverlapBox(box, physics.LayerGround) {
		if c.ID != HeroID {
			out = append(out, c.Box)
		}
	}
	return out
}

// shrunk is the box pulled in by skin so faces it rests on do not count.
func (b *Body) shrunk() physics.AABB {
	box := b.Box()
	box.Min = box.Min.Add(math.Vec2{X: skin, Y: skin})
	box.Max = box.Max.Sub(math.Vec2{X: skin, Y: skin})
	return box
}
