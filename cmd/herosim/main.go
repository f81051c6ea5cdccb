// herosim runs the hero AI headless over tile levels.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	gomath "math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/pitrunner/internal/config"
	"github.com/Faultbox/pitrunner/internal/logger"
	"github.com/Faultbox/pitrunner/internal/planning"
	"github.com/Faultbox/pitrunner/internal/sim"
	"github.com/Faultbox/pitrunner/internal/world"
	"github.com/Faultbox/pitrunner/pkg/math"
	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "run":
		err = cmdRun(cfg, args)
	case "info":
		err = cmdInfo(cfg, args)
	case "solve":
		err = cmdSolve(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`herosim - headless hero AI simulator

Usage:
  herosim [flags] <command> [options]

Flags:
  -config <file>   Config file (default ./config.yaml or the user config dir)
  -debug           Debug logging
  -level <file>    Level to run when none is given to run
  -ticks <n>       Maximum ticks (0 = unlimited)
  -log <file>      Also log to a rotating file

Commands:
  run [-trace out.yaml] [level.yaml]   Run a level and print the outcome
  info <level.yaml>                    Show tiles, colliders and the route
  solve <fromX,fromY> <toX,toY>        Solve the launch speed of a jump
  config [-o file | -save]             Print or write the effective config

Examples:
  herosim run levels/pit.yaml
  herosim -debug run -trace frames.yaml levels/pit.yaml
  herosim info levels/pit.yaml
  herosim solve 9.7,3 13.5,3.5
  herosim -ticks 600 config -o config.yaml`)
}

func cmdRun(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	trace := fs.String("trace", "", "Write every frame to this YAML file")
	fs.Parse(args)

	path := cfg.Simulation.Level
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		return errors.New("usage: herosim run [-trace out.yaml] <level.yaml>")
	}

	m := world.NewManager()
	if err := m.LoadLevel(path); err != nil {
		return err
	}
	lvl := m.Current()

	r, err := sim.NewRunner(lvl, cfg.Hero, cfg.Tunables(), cfg.Sim(*trace != ""), logger.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running level", zap.String("level", lvl.Name), zap.String("path", path))
	res, err := r.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Level:    %s\n", lvl.Name)
	fmt.Printf("Outcome:  %s\n", res.Outcome)
	fmt.Printf("Ticks:    %d (%.2fs)\n", res.Ticks, float32(res.Ticks)*cfg.Sim(false).Step)
	fmt.Printf("Jumps:    %d\n", res.Jumps)
	fmt.Printf("Stuns:    %d\n", res.Stuns)
	fmt.Printf("Final:    (%.2f, %.2f)\n", res.Final.X, res.Final.Y)

	if *trace != "" {
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding trace: %w", err)
		}
		if err := os.WriteFile(*trace, data, 0644); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		fmt.Printf("Trace:    %s (%d frames)\n", *trace, len(res.Frames))
	}
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: herosim info <level.yaml>")
	}

	lvl, err := world.LoadLevel(args[0])
	if err != nil {
		return err
	}
	g := lvl.Grid

	fmt.Printf("Level:    %s\n", lvl.Name)
	fmt.Printf("Size:     %dx%d tiles of %g\n", g.Width, g.Height, g.TileSize)
	fmt.Printf("Spawn:    (%.2f, %.2f)\n", lvl.Spawn.X, lvl.Spawn.Y)
	fmt.Printf("Goal:     %s\n", lvl.Goal)
	fmt.Println()

	fmt.Println("Tiles by type:")
	counts := g.CountByType()
	types := make([]tilemap.Tile, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Printf("  %-8s %d\n", t, counts[t])
	}

	if len(lvl.Colliders) > 0 {
		fmt.Println()
		fmt.Println("Colliders:")
		for _, c := range lvl.Colliders {
			fmt.Printf("  %-12s %-14s (%.2f, %.2f) - (%.2f, %.2f)\n",
				c.ID, c.Layer, c.Box.Min.X, c.Box.Min.Y, c.Box.Max.X, c.Box.Max.Y)
		}
	}

	goal, ok := lvl.Goal.Get()
	if !ok {
		return nil
	}
	fmt.Println()
	maxJump := jumpReach(cfg, g.TileSize)
	rf := world.NewRouteFinder(g, maxJump)
	route := rf.FindRoute(standingCell(g, lvl.Spawn), standingCell(g, goal))
	if route == nil {
		fmt.Printf("Route:    none (jump reach %d tiles)\n", maxJump)
		return nil
	}
	fmt.Printf("Route:    %d steps, %d jumps (jump reach %d tiles)\n", len(route), world.Jumps(route), maxJump)
	return nil
}

// jumpReach is the horizontal distance of a full-force flat jump in tiles.
func jumpReach(cfg *config.Config, tileSize float32) int {
	rad := float64(cfg.Hero.Angles.Jump) * gomath.Pi / 180
	flight := 2 * float64(cfg.Hero.JumpForce.Max) * gomath.Sin(rad) / float64(cfg.Physics.Gravity)
	return int(float64(cfg.Hero.DashSpeed) * flight / float64(tileSize))
}

// standingCell is the cell holding a feet position.
func standingCell(g *tilemap.Grid, feet math.Vec2) tilemap.Coord {
	return g.WorldToGrid(feet.Add(math.Vec2{Y: g.TileSize / 100}))
}

func cmdSolve(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: herosim solve <fromX,fromY> <toX,toY>")
	}

	from, err := parseVec(args[0])
	if err != nil {
		return err
	}
	to, err := parseVec(args[1])
	if err != nil {
		return err
	}

	traj := cfg.Tunables().Trajectory
	traj.DashSpeed = cfg.Hero.DashSpeed
	traj.Force = cfg.Hero.JumpForce
	traj.Angle = cfg.Hero.Angles.Jump

	v0, err := planning.SolveLaunchSpeed(from, to, traj)
	switch {
	case errors.Is(err, planning.ErrBelowMinimumSpeed):
		fmt.Printf("Abort:    %v (v0 %.3f)\n", err, v0)
		return nil
	case err != nil:
		fmt.Printf("Abort:    %v\n", err)
		return nil
	}

	clamped := traj.Force.Clamp(v0)
	fmt.Printf("v0:       %.3f\n", v0)
	if clamped != v0 {
		fmt.Printf("Clamped:  %.3f [%g, %g]\n", clamped, traj.Force.Min, traj.Force.Max)
	}
	fmt.Printf("Apex:     %.3f\n", planning.ApexHeight(clamped, traj))
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("o", "", "Write the config to this file")
	save := fs.Bool("save", false, "Write the config to the user config directory")
	fs.Parse(args)

	switch {
	case *out != "" && *save:
		return errors.New("usage: herosim config [-o file | -save]")
	case *out != "":
		if err := cfg.SaveTo(*out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *out)
	case *save:
		path, err := cfg.Save()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	default:
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
	}
	return nil
}

// parseVec parses "x,y".
func parseVec(s string) (math.Vec2, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return math.Vec2{}, fmt.Errorf("bad point %q, want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return math.Vec2{}, fmt.Errorf("bad x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return math.Vec2{}, fmt.Errorf("bad y in %q: %w", s, err)
	}
	return math.Vec2{X: float32(x), Y: float32(y)}, nil
}
