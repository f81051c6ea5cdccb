package planning

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pitrunner/internal/perception"
)

// ErrInvalidTunables is returned by Tunables.Validate.
var ErrInvalidTunables = errors.New("invalid planning tunables")

// Range is a closed float interval.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// Clamp limits x to the range.
func (r Range) Clamp(x float32) float32 {
	if x < r.Min {
		return r.Min
	}
	if x > r.Max {
		return r.Max
	}
	return x
}

// Trajectory parameterises the launch speed solver.
//
// Angle, DashSpeed and Force come from the hero archetype and Gravity from
// the physics config, so they are not read from the planning section.
type Trajectory struct {
	Angle     float32 `yaml:"-"` // Launch angle in degrees above horizontal
	Gravity   float32 `yaml:"-"`
	DashSpeed float32 `yaml:"-"` // Horizontal speed during a jump
	Force     Range   `yaml:"-"` // Allowed launch speeds

	// Speed subtracted per world unit of rise. Empirical, not derived.
	ElevationCorrection float32 `yaml:"elevation_correction"`
	MinLaunchSpeed      float32 `yaml:"min_launch_speed"`
	MinHorizontal       float32 `yaml:"min_horizontal"`
}

// Tunables holds the planning constants.
type Tunables struct {
	DeadZone            float32 `yaml:"dead_zone"`          // Distance past a launch point before it is dropped
	DedupeDistance      float32 `yaml:"dedupe_distance"`    // Minimum launch x change for a new sighting
	LaunchEdgeOffset    float32 `yaml:"launch_edge_offset"` // Launch this far before the ledge edge
	LaunchTolerance     float32 `yaml:"launch_tolerance"`   // Close enough to the launch point to jump
	WallRayLength       float32 `yaml:"wall_ray_length"`
	WallRayHeight       float32 `yaml:"wall_ray_height"`
	IgnoreInGroundTraps bool    `yaml:"ignore_in_ground_traps"`

	PitDepthLandingOffset float32 `yaml:"pit_depth_landing_offset"`
	RunwayBase            float32 `yaml:"runway_base"`
	RunwayPerDepth        float32 `yaml:"runway_per_depth"`
	MaxRise               int     `yaml:"max_rise"`
	MaxDrop               int     `yaml:"max_drop"`

	Trajectory Trajectory `yaml:"trajectory"`
}

// DefaultTunables returns the tuned defaults.
func DefaultTunables() Tunables {
	return Tunables{
		DeadZone:         0.5,
		DedupeDistance:   1.1,
		LaunchEdgeOffset: 0.3,
		LaunchTolerance:  0.15,
		WallRayLength:    1.5,
		WallRayHeight:    0.5,

		PitDepthLandingOffset: perception.DefaultPitDepthLandingOffset,
		RunwayBase:            perception.DefaultRunwayBase,
		RunwayPerDepth:        perception.DefaultRunwayPerDepth,
		MaxRise:               perception.DefaultMaxRise,
		MaxDrop:               perception.DefaultMaxDrop,

		Trajectory: Trajectory{
			Angle:               60,
			Gravity:             20,
			DashSpeed:           6,
			Force:               Range{Min: 2, Max: 12},
			ElevationCorrection: 0.55,
			MinLaunchSpeed:      1.0,
			MinHorizontal:       1e-3,
		},
	}
}

// PitSearch returns the perception search settings.
func (t Tunables) PitSearch() perception.PitSearch {
	return perception.PitSearch{
		MaxRise:               t.MaxRise,
		MaxDrop:               t.MaxDrop,
		PitDepthLandingOffset: t.PitDepthLandingOffset,
		RunwayBase:            t.RunwayBase,
		RunwayPerDepth:        t.RunwayPerDepth,
	}
}

// Validate checks the tunables for values the planner cannot work with.
func (t Tunables) Validate() error {
	tr := t.Trajectory
	switch {
	case t.DeadZone < 0 || t.DedupeDistance < 0 || t.LaunchTolerance < 0:
		return fmt.Errorf("%w: negative distance", ErrInvalidTunables)
	case t.MaxRise < 0 || t.MaxDrop < 0:
		return fmt.Errorf("%w: negative scan rows", ErrInvalidTunables)
	case tr.Angle <= 0 || tr.Angle >= 90:
		return fmt.Errorf("%w: jump angle %g outside (0, 90)", ErrInvalidTunables, tr.Angle)
	case tr.Gravity <= 0:
		return fmt.Errorf("%w: gravity %g <= 0", ErrInvalidTunables, tr.Gravity)
	case tr.DashSpeed <= 0:
		return fmt.Errorf("%w: dash speed %g <= 0", ErrInvalidTunables, tr.DashSpeed)
	case tr.Force.Min > tr.Force.Max:
		return fmt.Errorf("%w: jump force range [%g, %g]", ErrInvalidTunables, tr.Force.Min, tr.Force.Max)
	}
	return nil
}
