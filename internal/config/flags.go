package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagLevel  = flag.String("level", "", "Level file to run")
	flagTicks  = flag.Int("ticks", -1, "Maximum ticks (0 = unlimited)")
	flagLog    = flag.String("log", "", "Log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLevel != "" {
		cfg.Simulation.Level = *flagLevel
	}
	if *flagTicks >= 0 {
		cfg.Simulation.MaxTicks = *flagTicks
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
}
