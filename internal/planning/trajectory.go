package planning

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/pitrunner/pkg/math"
)

// Degenerate trajectories.
var (
	ErrNoHorizontalDistance = errors.New("landing point is straight above or below launch")
	ErrBelowMinimumSpeed    = errors.New("launch speed below minimum")
	ErrInvalidTrajectory    = errors.New("invalid trajectory parameters")
)

// SolveLaunchSpeed returns the launch speed v0 that carries a jump at
// p.Angle and p.DashSpeed from launch to land.
//
// The flight time is the horizontal distance over the dash speed. Solving
// dy = v0*sin(a)*t - g*t*t/2 for v0 and subtracting ElevationCorrection*dy
// gives the result. The result is not clamped. A speed below
// MinLaunchSpeed is returned together with ErrBelowMinimumSpeed.
func SolveLaunchSpeed(launch, land math.Vec2, p Trajectory) (float32, error) {
	dx := math.Abs(land.X - launch.X)
	if dx < p.MinHorizontal || dx == 0 {
		return 0, fmt.Errorf("%w: dx=%g", ErrNoHorizontalDistance, dx)
	}
	if p.DashSpeed <= 0 {
		return 0, fmt.Errorf("%w: dash speed %g", ErrInvalidTrajectory, p.DashSpeed)
	}
	sin := float32(gomath.Sin(float64(p.Angle) * gomath.Pi / 180))
	if sin <= 0 {
		return 0, fmt.Errorf("%w: angle %g", ErrInvalidTrajectory, p.Angle)
	}

	t := dx / p.DashSpeed
	dy := land.Y - launch.Y

	v0 := (dy + 0.5*p.Gravity*t*t) / (sin * t)
	v0 -= p.ElevationCorrection * dy

	if v0 < p.MinLaunchSpeed {
		return v0, fmt.Errorf("%w: v0=%.3f < %.3f", ErrBelowMinimumSpeed, v0, p.MinLaunchSpeed)
	}
	return v0, nil
}

// ApexHeight returns the rise of a jump launched at v0 above the launch
// point.
func ApexHeight(v0 float32, p Trajectory) float32 {
	vy := float64(v0) * gomath.Sin(float64(p.Angle)*gomath.Pi/180)
	return float32(vy * vy / (2 * float64(p.Gravity)))
}
