// Package config handles simulator configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pitrunner/internal/hero"
	"github.com/Faultbox/pitrunner/internal/planning"
	"github.com/Faultbox/pitrunner/internal/sim"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulator settings.
type Config struct {
	Hero       hero.Archetype    `yaml:"hero"`
	Planning   planning.Tunables `yaml:"planning"`
	Physics    PhysicsConfig     `yaml:"physics"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Logging    LoggingConfig     `yaml:"logging"`
}

// PhysicsConfig holds world physics settings.
type PhysicsConfig struct {
	Gravity  float32 `yaml:"gravity"`
	TickRate int     `yaml:"tick_rate"` // Ticks per second
}

// SimulationConfig holds run settings.
type SimulationConfig struct {
	Level    string  `yaml:"level"`     // Level file to run when none is given
	MaxTicks int     `yaml:"max_ticks"` // 0 runs until goal or fall
	TrapStun float32 `yaml:"trap_stun"` // Seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	tun := planning.DefaultTunables()
	run := sim.DefaultConfig()
	return &Config{
		Hero:     hero.DefaultArchetype(),
		Planning: tun,
		Physics: PhysicsConfig{
			Gravity:  tun.Trajectory.Gravity,
			TickRate: 60,
		},
		Simulation: SimulationConfig{
			MaxTicks: run.MaxTicks,
			TrapStun: run.TrapStun,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the sections that are not validated by their packages.
func (c *Config) Validate() error {
	if c.Physics.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate %d", ErrInvalidConfig, c.Physics.TickRate)
	}
	if c.Physics.Gravity <= 0 {
		return fmt.Errorf("%w: gravity %g", ErrInvalidConfig, c.Physics.Gravity)
	}
	if c.Simulation.MaxTicks < 0 || c.Simulation.TrapStun < 0 {
		return fmt.Errorf("%w: negative simulation limits", ErrInvalidConfig)
	}
	if err := c.Hero.Validate(); err != nil {
		return err
	}
	return c.Tunables().Validate()
}

// Tunables returns the planning tunables with the physics gravity applied.
func (c *Config) Tunables() planning.Tunables {
	tun := c.Planning
	tun.Trajectory.Gravity = c.Physics.Gravity
	return tun
}

// Sim returns the runner settings.
func (c *Config) Sim(trace bool) sim.Config {
	step := hero.DefaultStep
	if c.Physics.TickRate > 0 {
		step = 1 / float32(c.Physics.TickRate)
	}
	return sim.Config{
		Step:     step,
		MaxTicks: c.Simulation.MaxTicks,
		TrapStun: c.Simulation.TrapStun,
		Trace:    trace,
	}
}
